package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/api-sage/core-banking-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/core-banking-ledger/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/core-banking-ledger/src/internal/commons"
	"github.com/api-sage/core-banking-ledger/src/internal/domain"
	"github.com/api-sage/core-banking-ledger/src/internal/logger"
	"github.com/api-sage/core-banking-ledger/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

var _ service_interfaces.TransactionService = (*TransactionService)(nil)

// TransactionService processes single-account deposits and withdrawals. The
// account row lock is held for the duration of one atomic unit; the
// completion event goes out only after the unit commits.
type TransactionService struct {
	store      repo_interfaces.LedgerStore
	publisher  domain.EventPublisher
	references *domain.ReferenceGenerator
	clock      domain.Clock
}

func NewTransactionService(
	store repo_interfaces.LedgerStore,
	publisher domain.EventPublisher,
	references *domain.ReferenceGenerator,
	clock domain.Clock,
) *TransactionService {
	return &TransactionService{
		store:      store,
		publisher:  publisher,
		references: references,
		clock:      clock,
	}
}

func (s *TransactionService) ProcessTransaction(ctx context.Context, req models.ProcessTransactionRequest) (commons.Response[models.TransactionResponse], error) {
	logger.Info("transaction service process request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("transaction service process validation failed", err, nil)
		return commons.ErrorResponse[models.TransactionResponse]("validation failed", err.Error()), err
	}

	ownerID := strings.TrimSpace(req.OwnerID)
	accountID := strings.TrimSpace(req.AccountID)
	txType := domain.TransactionType(strings.ToUpper(strings.TrimSpace(req.Type)))
	description := strings.TrimSpace(req.Description)
	amountValue, _ := decimal.NewFromString(strings.TrimSpace(req.Amount))

	var created domain.Transaction
	var reactivated bool
	var err error

	for attempt := 0; attempt < maxAllocationAttempts; attempt++ {
		reference := s.references.TransactionReference()

		err = s.store.InTransaction(ctx, func(tx repo_interfaces.LedgerTx) error {
			accounts, lockErr := tx.LockAccounts(ctx, accountID)
			if lockErr != nil {
				return lockErr
			}
			account := accounts[accountID]

			if account.OwnerID != ownerID {
				return domain.ErrForbidden
			}

			operation := domain.DirectionOf(txType)
			if !domain.StatusPermits(account.Status, operation) {
				return fmt.Errorf("%w: %s not permitted while account is %s",
					domain.ErrIllegalOperationForState, operation, account.Status)
			}

			amount := domain.NewMoney(amountValue, account.Balance.Currency)
			newBalance, policyErr := domain.ComputeNewBalance(account, txType, amount)
			if policyErr != nil {
				return policyErr
			}

			// Any successful activity reactivates a dormant account.
			reactivated = account.Status == domain.AccountStatusInactive
			if reactivated {
				account.Status = domain.AccountStatusActive
			}

			account.Balance = newBalance
			account.LastActivityAt = s.clock.Now()

			if _, saveErr := tx.SaveAccount(ctx, account); saveErr != nil {
				return saveErr
			}

			var createErr error
			created, createErr = tx.CreateTransaction(ctx, domain.Transaction{
				ReferenceNumber: reference,
				AccountID:       account.ID,
				Type:            txType,
				Amount:          amount,
				BalanceAfter:    newBalance,
				Status:          domain.TransactionStatusCompleted,
				Description:     description,
			})
			return createErr
		})
		if err == nil || !errors.Is(err, domain.ErrDuplicateReference) {
			break
		}
	}
	if errors.Is(err, domain.ErrDuplicateReference) {
		err = domain.ErrReferenceAllocation
	}
	if err != nil {
		logger.Error("transaction service process failed", err, logger.Fields{
			"accountId": accountID,
			"type":      txType,
		})
		return failureResponse[models.TransactionResponse](err, "failed to process transaction"), err
	}

	s.publishCompleted(ctx, created)
	if reactivated {
		s.publish(ctx, domain.AccountStatusChangedEvent{
			AccountID:  accountID,
			From:       domain.AccountStatusInactive,
			To:         domain.AccountStatusActive,
			ChangedBy:  "system",
			OccurredAt: s.clock.Now(),
		})
	}

	logger.Info("transaction service process success", logger.Fields{
		"transactionId":   created.ID,
		"referenceNumber": created.ReferenceNumber,
		"accountId":       created.AccountID,
	})

	return commons.SuccessResponse("transaction completed", mapTransactionToResponse(created)), nil
}

func (s *TransactionService) publishCompleted(ctx context.Context, txn domain.Transaction) {
	s.publish(ctx, domain.TransactionCompletedEvent{
		TransactionID:     txn.ID,
		ReferenceNumber:   txn.ReferenceNumber,
		TransferReference: txn.TransferReference,
		AccountID:         txn.AccountID,
		Type:              txn.Type,
		Amount:            txn.Amount,
		BalanceAfter:      txn.BalanceAfter,
		OccurredAt:        s.clock.Now(),
	})
}

func (s *TransactionService) publish(ctx context.Context, event domain.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Error("transaction service event publication failed", err, logger.Fields{
			"kind": event.EventKind(),
		})
	}
}
