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

var _ service_interfaces.TransferService = (*TransferService)(nil)

// TransferService coordinates two-account transfers. Both row locks are
// acquired in canonical order before any state changes, the two legs persist
// as one atomic unit, and events go out only after commit.
type TransferService struct {
	store      repo_interfaces.LedgerStore
	publisher  domain.EventPublisher
	references *domain.ReferenceGenerator
	clock      domain.Clock
}

func NewTransferService(
	store repo_interfaces.LedgerStore,
	publisher domain.EventPublisher,
	references *domain.ReferenceGenerator,
	clock domain.Clock,
) *TransferService {
	return &TransferService{
		store:      store,
		publisher:  publisher,
		references: references,
		clock:      clock,
	}
}

func (s *TransferService) TransferFunds(ctx context.Context, req models.TransferRequest) (commons.Response[models.TransferResponse], error) {
	logger.Info("transfer service transfer request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("transfer service transfer validation failed", err, nil)
		return commons.ErrorResponse[models.TransferResponse]("validation failed", err.Error()), err
	}

	initiatorID := strings.TrimSpace(req.InitiatorID)
	sourceID := strings.TrimSpace(req.SourceAccountID)
	targetID := strings.TrimSpace(req.TargetAccountID)
	description := strings.TrimSpace(req.Description)
	amountValue, _ := decimal.NewFromString(strings.TrimSpace(req.Amount))

	var sourceLeg, targetLeg domain.Transaction
	var transferReference string
	var reactivatedIDs []string
	var err error

	for attempt := 0; attempt < maxAllocationAttempts; attempt++ {
		// Only the per-leg references are uniqueness-checked on insert. The
		// shared correlator is not; a same-millisecond collision between two
		// unrelated transfers is tolerated since each leg stays addressable
		// by its own reference.
		transferReference = s.references.TransferReference()
		sourceReference := s.references.TransferReference()
		targetReference := s.references.TransferReference()
		reactivatedIDs = nil

		err = s.store.InTransaction(ctx, func(tx repo_interfaces.LedgerTx) error {
			// LockAccounts orders the ids canonically, so two transfers
			// with swapped source/target cannot deadlock.
			accounts, lockErr := tx.LockAccounts(ctx, sourceID, targetID)
			if lockErr != nil {
				return lockErr
			}
			source := accounts[sourceID]
			target := accounts[targetID]

			// Only the source account must belong to the initiator;
			// transfers to third-party accounts are allowed.
			if source.OwnerID != initiatorID {
				return domain.ErrForbidden
			}

			if !domain.StatusPermits(source.Status, domain.OperationDebit) {
				return fmt.Errorf("%w: source account is %s", domain.ErrIllegalOperationForState, source.Status)
			}
			if !domain.StatusPermits(target.Status, domain.OperationCredit) {
				return fmt.Errorf("%w: target account is %s", domain.ErrIllegalOperationForState, target.Status)
			}

			if source.Balance.Currency != target.Balance.Currency {
				return fmt.Errorf("%w: source is %s, target is %s",
					domain.ErrCurrencyMismatch, source.Balance.Currency, target.Balance.Currency)
			}

			amount := domain.NewMoney(amountValue, source.Balance.Currency)
			newSourceBalance, policyErr := domain.ComputeNewBalance(source, domain.TransactionTypeWithdrawal, amount)
			if policyErr != nil {
				return policyErr
			}
			newTargetBalance, policyErr := domain.ComputeNewBalance(target, domain.TransactionTypeDeposit, amount)
			if policyErr != nil {
				return policyErr
			}

			now := s.clock.Now()
			for _, account := range []*domain.Account{&source, &target} {
				if account.Status == domain.AccountStatusInactive {
					account.Status = domain.AccountStatusActive
					reactivatedIDs = append(reactivatedIDs, account.ID)
				}
				account.LastActivityAt = now
			}
			source.Balance = newSourceBalance
			target.Balance = newTargetBalance

			if _, saveErr := tx.SaveAccount(ctx, source); saveErr != nil {
				return saveErr
			}
			if _, saveErr := tx.SaveAccount(ctx, target); saveErr != nil {
				return saveErr
			}

			var createErr error
			sourceLeg, createErr = tx.CreateTransaction(ctx, domain.Transaction{
				ReferenceNumber:   sourceReference,
				TransferReference: transferReference,
				AccountID:         source.ID,
				Type:              domain.TransactionTypeWithdrawal,
				Amount:            amount,
				BalanceAfter:      newSourceBalance,
				Status:            domain.TransactionStatusCompleted,
				Description:       description,
			})
			if createErr != nil {
				return createErr
			}

			targetLeg, createErr = tx.CreateTransaction(ctx, domain.Transaction{
				ReferenceNumber:   targetReference,
				TransferReference: transferReference,
				AccountID:         target.ID,
				Type:              domain.TransactionTypeDeposit,
				Amount:            amount,
				BalanceAfter:      newTargetBalance,
				Status:            domain.TransactionStatusCompleted,
				Description:       description,
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
		logger.Error("transfer service transfer failed", err, logger.Fields{
			"sourceAccountId": sourceID,
			"targetAccountId": targetID,
		})
		return failureResponse[models.TransferResponse](err, "failed to process transfer"), err
	}

	for _, leg := range []domain.Transaction{sourceLeg, targetLeg} {
		s.publish(ctx, domain.TransactionCompletedEvent{
			TransactionID:     leg.ID,
			ReferenceNumber:   leg.ReferenceNumber,
			TransferReference: leg.TransferReference,
			AccountID:         leg.AccountID,
			Type:              leg.Type,
			Amount:            leg.Amount,
			BalanceAfter:      leg.BalanceAfter,
			OccurredAt:        s.clock.Now(),
		})
	}
	for _, accountID := range reactivatedIDs {
		s.publish(ctx, domain.AccountStatusChangedEvent{
			AccountID:  accountID,
			From:       domain.AccountStatusInactive,
			To:         domain.AccountStatusActive,
			ChangedBy:  "system",
			OccurredAt: s.clock.Now(),
		})
	}

	logger.Info("transfer service transfer success", logger.Fields{
		"transferReference": transferReference,
		"sourceAccountId":   sourceID,
		"targetAccountId":   targetID,
	})

	response := models.TransferResponse{
		TransferReference: transferReference,
		SourceTransaction: mapTransactionToResponse(sourceLeg),
		TargetTransaction: mapTransactionToResponse(targetLeg),
		Status:            string(domain.TransactionStatusCompleted),
	}

	return commons.SuccessResponse("transfer completed", response), nil
}

func (s *TransferService) publish(ctx context.Context, event domain.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Error("transfer service event publication failed", err, logger.Fields{
			"kind": event.EventKind(),
		})
	}
}
