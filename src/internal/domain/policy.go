package domain

// ComputeNewBalance applies the accounting rule for the account's type and
// returns the balance after the transaction, or InsufficientFundsError when
// a withdrawal is not affordable. Deposits are unconditional: paying down a
// CREDIT account past zero into positive territory is allowed credit.
func ComputeNewBalance(account Account, txType TransactionType, amount Money) (Money, error) {
	if txType == TransactionTypeDeposit {
		return account.Balance.Add(amount)
	}

	newBalance, err := account.Balance.Sub(amount)
	if err != nil {
		return Money{}, err
	}

	if account.Type == AccountTypeCredit {
		floor := account.CreditLimit.Neg()
		cmp, err := newBalance.Cmp(floor)
		if err != nil {
			return Money{}, err
		}
		if cmp < 0 {
			available, err := account.AvailableCredit()
			if err != nil {
				return Money{}, err
			}
			return Money{}, InsufficientFundsError{Requested: amount, Available: available}
		}
		return newBalance, nil
	}

	if newBalance.IsNegative() {
		return Money{}, InsufficientFundsError{Requested: amount, Available: account.Balance}
	}

	return newBalance, nil
}

// DirectionOf maps a transaction type to the operation the status permission
// matrix gates on.
func DirectionOf(txType TransactionType) Operation {
	if txType == TransactionTypeDeposit {
		return OperationCredit
	}

	return OperationDebit
}
