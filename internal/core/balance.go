package core

// Balance is the accumulated position of one account.
type Balance struct {
	IncomeCents  int64
	ExpenseCents int64
	NetCents     int64
	Currency     string
}

// ComputeBalances folds a user's transactions into per-account balances.
// Income adds to income and net, expense adds to expense and subtracts
// from net, transfers touch nothing: a transfer is recorded as a single
// row with no destination account, so folding it into either side would
// invent the missing leg. Accounts without transactions still get a zero
// entry so every account renders a balance.
//
// The fold is a pure function of its inputs; recomputing over the same
// rows always yields the same map.
func ComputeBalances(accounts []Account, txs []TransactionDetail) map[int64]Balance {
	balances := make(map[int64]Balance, len(accounts))
	for _, a := range accounts {
		balances[a.ID] = Balance{Currency: a.Currency}
	}

	for _, tx := range txs {
		b, ok := balances[tx.AccountID]
		if !ok {
			b = Balance{Currency: tx.Account.Currency}
		}
		switch tx.Kind {
		case KindIncome:
			b.IncomeCents += tx.Amount.Cents
			b.NetCents += tx.Amount.Cents
		case KindExpense:
			b.ExpenseCents += tx.Amount.Cents
			b.NetCents -= tx.Amount.Cents
		case KindTransfer:
			// balance-neutral
		}
		balances[tx.AccountID] = b
	}

	return balances
}
