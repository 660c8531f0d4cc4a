package service_interfaces

import (
	"context"

	"github.com/api-sage/core-banking-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/core-banking-ledger/src/internal/commons"
)

type AccountService interface {
	CreateAccount(ctx context.Context, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error)
	GetAccount(ctx context.Context, ownerID string, accountID string) (commons.Response[models.AccountResponse], error)
	ChangeStatus(ctx context.Context, req models.ChangeStatusRequest) (commons.Response[models.AccountResponse], error)
	UpdateAccount(ctx context.Context, req models.UpdateAccountRequest) (commons.Response[models.AccountResponse], error)
	DeleteAccount(ctx context.Context, req models.DeleteAccountRequest) (commons.Response[models.DeleteAccountResponse], error)
	ListTransactions(ctx context.Context, ownerID string, accountID string) (commons.Response[models.ListTransactionsResponse], error)
	SweepDormantAccounts(ctx context.Context) (commons.Response[models.SweepDormantResponse], error)
}
