package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/api-sage/core-banking-ledger/src/internal/adapter/events"
	"github.com/api-sage/core-banking-ledger/src/internal/adapter/http/controller"
	"github.com/api-sage/core-banking-ledger/src/internal/adapter/http/middleware"
	"github.com/api-sage/core-banking-ledger/src/internal/adapter/http/router"
	"github.com/api-sage/core-banking-ledger/src/internal/adapter/repository/postgres"
	"github.com/api-sage/core-banking-ledger/src/internal/config"
	"github.com/api-sage/core-banking-ledger/src/internal/domain"
	"github.com/api-sage/core-banking-ledger/src/internal/usecase/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := postgres.RunMigrations(ctx, cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		cancel()
		log.Fatalf("run migrations: %v", err)
	}

	db, err := postgres.Open(ctx, cfg.DatabaseDSN)
	cancel()
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	clock := domain.SystemClock{}
	store := postgres.NewLedgerStore(db, cfg.LockTimeout)
	publisher := events.NewLogPublisher()
	references := domain.NewReferenceGenerator(clock)

	accountService := services.NewAccountService(store, publisher, clock, cfg.DormancyDays)
	transactionService := services.NewTransactionService(store, publisher, references, clock)
	transferService := services.NewTransferService(store, publisher, references, clock)

	authMiddleware := middleware.BasicAuth(cfg.ChannelID, cfg.ChannelKey)
	mux := router.New(
		controller.NewAccountController(accountService),
		controller.NewTransactionController(transactionService),
		controller.NewTransferController(transferService),
		authMiddleware,
	)

	log.Printf("ledger server listening on %s", cfg.ServerAddr)
	if err := http.ListenAndServe(cfg.ServerAddr, mux); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
