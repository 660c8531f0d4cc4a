package services

import (
	"context"
	"errors"
	"strings"

	"github.com/api-sage/core-banking-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/core-banking-ledger/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/core-banking-ledger/src/internal/commons"
	"github.com/api-sage/core-banking-ledger/src/internal/domain"
	"github.com/api-sage/core-banking-ledger/src/internal/logger"
	"github.com/api-sage/core-banking-ledger/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

var _ service_interfaces.AccountService = (*AccountService)(nil)

type AccountService struct {
	store        repo_interfaces.LedgerStore
	publisher    domain.EventPublisher
	clock        domain.Clock
	dormancyDays int
}

func NewAccountService(
	store repo_interfaces.LedgerStore,
	publisher domain.EventPublisher,
	clock domain.Clock,
	dormancyDays int,
) *AccountService {
	return &AccountService{
		store:        store,
		publisher:    publisher,
		clock:        clock,
		dormancyDays: dormancyDays,
	}
}

func (s *AccountService) CreateAccount(ctx context.Context, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service create account request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("account service create account validation failed", err, nil)
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	ownerID := strings.TrimSpace(req.OwnerID)
	accountType := domain.AccountType(strings.ToUpper(strings.TrimSpace(req.AccountType)))
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))

	balance, err := parseInitialBalance(req.InitialBalance, currency)
	if err != nil {
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	creditLimit := domain.ZeroMoney(currency)
	if accountType == domain.AccountTypeCredit {
		// CREDIT accounts always open at zero; any requested initial
		// balance is ignored.
		balance = domain.ZeroMoney(currency)

		limit, parseErr := decimal.NewFromString(strings.TrimSpace(req.CreditLimit))
		if parseErr != nil {
			return commons.ErrorResponse[models.AccountResponse]("validation failed", "creditLimit must be numeric"), parseErr
		}
		creditLimit = domain.NewMoney(limit, currency)
	}

	now := s.clock.Now()
	account := domain.Account{
		OwnerID:        ownerID,
		Type:           accountType,
		Status:         domain.AccountStatusActive,
		Balance:        balance,
		CreditLimit:    creditLimit,
		LastActivityAt: now,
	}

	var created domain.Account
	for attempt := 0; attempt < maxAllocationAttempts; attempt++ {
		account.AccountNumber = generateAccountNumber(s.clock)
		created, err = s.store.CreateAccount(ctx, account)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrDuplicateAccountNumber) {
			logger.Error("account service create account repository failed", err, logger.Fields{
				"ownerId": ownerID,
			})
			return commons.ErrorResponse[models.AccountResponse]("failed to create account", "Unable to create account right now"), err
		}
	}
	if err != nil {
		err = domain.ErrReferenceAllocation
		return failureResponse[models.AccountResponse](err, "failed to create account"), err
	}

	s.publish(ctx, domain.AccountCreatedEvent{
		AccountID:     created.ID,
		AccountNumber: created.AccountNumber,
		OwnerID:       created.OwnerID,
		AccountType:   created.Type,
		OccurredAt:    now,
	})

	logger.Info("account service create account success", logger.Fields{
		"accountId":     created.ID,
		"accountNumber": created.AccountNumber,
		"ownerId":       created.OwnerID,
	})

	return commons.SuccessResponse("account created successfully", mapAccountToResponse(created)), nil
}

func (s *AccountService) GetAccount(ctx context.Context, ownerID string, accountID string) (commons.Response[models.AccountResponse], error) {
	account, err := s.loadOwnedAccount(ctx, ownerID, accountID)
	if err != nil {
		return failureResponse[models.AccountResponse](err, "failed to get account"), err
	}

	return commons.SuccessResponse("account retrieved", mapAccountToResponse(account)), nil
}

func (s *AccountService) ChangeStatus(ctx context.Context, req models.ChangeStatusRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service change status request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	accountID := strings.TrimSpace(req.AccountID)
	newStatus := domain.AccountStatus(strings.ToUpper(strings.TrimSpace(req.NewStatus)))
	reason := strings.TrimSpace(req.Reason)

	var updated domain.Account
	var previous domain.AccountStatus

	err := s.store.InTransaction(ctx, func(tx repo_interfaces.LedgerTx) error {
		accounts, err := tx.LockAccounts(ctx, accountID)
		if err != nil {
			return err
		}
		account := accounts[accountID]
		previous = account.Status

		if err := domain.ValidateTransition(account.Status, newStatus, reason, false); err != nil {
			return err
		}

		if newStatus == domain.AccountStatusClosed {
			if !account.Balance.IsZero() {
				return domain.ErrBalanceNotZero
			}
			hasHistory, err := tx.HasTransactionHistory(ctx, account.ID)
			if err != nil {
				return err
			}
			if hasHistory {
				return domain.ErrHasTransactionHistory
			}
		}

		account.Status = newStatus
		updated, err = tx.SaveAccount(ctx, account)
		return err
	})
	if err != nil {
		logger.Error("account service change status failed", err, logger.Fields{
			"accountId": accountID,
			"newStatus": newStatus,
		})
		return failureResponse[models.AccountResponse](err, "failed to change account status"), err
	}

	s.publish(ctx, domain.AccountStatusChangedEvent{
		AccountID:  updated.ID,
		From:       previous,
		To:         updated.Status,
		Reason:     reason,
		ChangedBy:  strings.TrimSpace(req.RequestedBy),
		OccurredAt: s.clock.Now(),
	})

	return commons.SuccessResponse("account status changed", mapAccountToResponse(updated)), nil
}

// UpdateAccount is the optimistic path for non-financial field changes. No
// lock is held; a stale version surfaces as a conflict the caller resolves
// by reloading.
func (s *AccountService) UpdateAccount(ctx context.Context, req models.UpdateAccountRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service update account request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	account, err := s.loadOwnedAccount(ctx, req.OwnerID, req.AccountID)
	if err != nil {
		return failureResponse[models.AccountResponse](err, "failed to update account"), err
	}

	if !domain.StatusPermits(account.Status, domain.OperationUpdate) {
		err := domain.ErrIllegalOperationForState
		return failureResponse[models.AccountResponse](err, "failed to update account"), err
	}

	account.Type = domain.AccountType(strings.ToUpper(strings.TrimSpace(req.AccountType)))
	account.Version = req.Version

	updated, err := s.store.UpdateAccountFields(ctx, account)
	if err != nil {
		logger.Error("account service update account failed", err, logger.Fields{
			"accountId": account.ID,
		})
		return failureResponse[models.AccountResponse](err, "failed to update account"), err
	}

	return commons.SuccessResponse("account updated", mapAccountToResponse(updated)), nil
}

func (s *AccountService) DeleteAccount(ctx context.Context, req models.DeleteAccountRequest) (commons.Response[models.DeleteAccountResponse], error) {
	logger.Info("account service delete account request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.DeleteAccountResponse]("validation failed", err.Error()), err
	}

	accountID := strings.TrimSpace(req.AccountID)
	ownerID := strings.TrimSpace(req.OwnerID)

	err := s.store.InTransaction(ctx, func(tx repo_interfaces.LedgerTx) error {
		accounts, err := tx.LockAccounts(ctx, accountID)
		if err != nil {
			return err
		}
		account := accounts[accountID]

		if account.OwnerID != ownerID {
			return domain.ErrForbidden
		}
		if !domain.StatusPermits(account.Status, domain.OperationDelete) {
			return domain.ErrIllegalOperationForState
		}
		if !account.Balance.IsZero() {
			return domain.ErrBalanceNotZero
		}

		hasHistory, err := tx.HasTransactionHistory(ctx, account.ID)
		if err != nil {
			return err
		}
		if hasHistory {
			return domain.ErrHasTransactionHistory
		}

		return tx.DeleteAccount(ctx, account.ID)
	})
	if err != nil {
		logger.Error("account service delete account failed", err, logger.Fields{
			"accountId": accountID,
		})
		return failureResponse[models.DeleteAccountResponse](err, "failed to delete account"), err
	}

	response := models.DeleteAccountResponse{AccountID: accountID, Deleted: true}
	return commons.SuccessResponse("account deleted", response), nil
}

func (s *AccountService) ListTransactions(ctx context.Context, ownerID string, accountID string) (commons.Response[models.ListTransactionsResponse], error) {
	account, err := s.loadOwnedAccount(ctx, ownerID, accountID)
	if err != nil {
		return failureResponse[models.ListTransactionsResponse](err, "failed to list transactions"), err
	}

	transactions, err := s.store.ListTransactions(ctx, account.ID)
	if err != nil {
		logger.Error("account service list transactions failed", err, logger.Fields{
			"accountId": account.ID,
		})
		return failureResponse[models.ListTransactionsResponse](err, "failed to list transactions"), err
	}

	response := models.ListTransactionsResponse{
		AccountID:    account.ID,
		Transactions: make([]models.TransactionResponse, 0, len(transactions)),
	}
	for _, txn := range transactions {
		response.Transactions = append(response.Transactions, mapTransactionToResponse(txn))
	}

	return commons.SuccessResponse("transactions retrieved", response), nil
}

// SweepDormantAccounts is invoked by the external scheduler. It moves every
// ACTIVE account with no activity inside the dormancy window to INACTIVE.
// A failure on one account is logged and the sweep continues.
func (s *AccountService) SweepDormantAccounts(ctx context.Context) (commons.Response[models.SweepDormantResponse], error) {
	cutoff := s.clock.Now().AddDate(0, 0, -s.dormancyDays)

	dormant, err := s.store.ListDormantAccounts(ctx, cutoff)
	if err != nil {
		logger.Error("account service dormancy sweep listing failed", err, nil)
		return failureResponse[models.SweepDormantResponse](err, "failed to sweep dormant accounts"), err
	}

	var deactivated []string
	for _, candidate := range dormant {
		accountID := candidate.ID

		err := s.store.InTransaction(ctx, func(tx repo_interfaces.LedgerTx) error {
			accounts, err := tx.LockAccounts(ctx, accountID)
			if err != nil {
				return err
			}
			account := accounts[accountID]

			// Re-check under the lock; activity may have arrived since listing.
			if account.Status != domain.AccountStatusActive || !account.LastActivityAt.Before(cutoff) {
				return nil
			}
			if err := domain.ValidateTransition(account.Status, domain.AccountStatusInactive, "", true); err != nil {
				return err
			}

			account.Status = domain.AccountStatusInactive
			_, err = tx.SaveAccount(ctx, account)
			if err == nil {
				deactivated = append(deactivated, account.ID)
			}
			return err
		})
		if err != nil {
			logger.Error("account service dormancy sweep account failed", err, logger.Fields{
				"accountId": accountID,
			})
			continue
		}
	}

	for _, accountID := range deactivated {
		s.publish(ctx, domain.AccountStatusChangedEvent{
			AccountID:  accountID,
			From:       domain.AccountStatusActive,
			To:         domain.AccountStatusInactive,
			ChangedBy:  "system",
			OccurredAt: s.clock.Now(),
		})
	}

	response := models.SweepDormantResponse{DeactivatedAccountIDs: deactivated}
	return commons.SuccessResponse("dormant accounts deactivated", response), nil
}

func (s *AccountService) loadOwnedAccount(ctx context.Context, ownerID string, accountID string) (domain.Account, error) {
	accountID = strings.TrimSpace(accountID)
	ownerID = strings.TrimSpace(ownerID)

	account, err := s.store.GetAccountByID(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}
	if account.OwnerID != ownerID {
		return domain.Account{}, domain.ErrForbidden
	}

	return account, nil
}

func (s *AccountService) publish(ctx context.Context, event domain.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Error("account service event publication failed", err, logger.Fields{
			"kind": event.EventKind(),
		})
	}
}

func parseInitialBalance(raw string, currency string) (domain.Money, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.ZeroMoney(currency), nil
	}

	return domain.MoneyFromString(raw, currency)
}
