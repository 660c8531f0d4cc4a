package service_interfaces

import (
	"context"

	"github.com/api-sage/core-banking-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/core-banking-ledger/src/internal/commons"
)

type TransactionService interface {
	ProcessTransaction(ctx context.Context, req models.ProcessTransactionRequest) (commons.Response[models.TransactionResponse], error)
}
