package core

import (
	"reflect"
	"testing"
	"time"
)

func detail(acc Account, kind Kind, cents int64) TransactionDetail {
	return TransactionDetail{
		Transaction: Transaction{
			AccountID: acc.ID,
			Amount:    Money{Cents: cents},
			Date:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local),
			Kind:      kind,
		},
		Account: acc,
	}
}

func TestComputeBalancesWalletScenario(t *testing.T) {
	wallet := Account{ID: 1, Name: "Wallet", Currency: "PEN"}
	txs := []TransactionDetail{
		detail(wallet, KindIncome, 10000), // 100.00 income
		detail(wallet, KindExpense, 3050), // 30.50 expense
	}

	got := ComputeBalances([]Account{wallet}, txs)
	want := Balance{IncomeCents: 10000, ExpenseCents: 3050, NetCents: 6950, Currency: "PEN"}
	if got[wallet.ID] != want {
		t.Fatalf("wallet balance = %+v, want %+v", got[wallet.ID], want)
	}
}

func TestComputeBalancesTransferIsNeutral(t *testing.T) {
	wallet := Account{ID: 1, Name: "Wallet", Currency: "PEN"}
	txs := []TransactionDetail{
		detail(wallet, KindIncome, 10000),
		detail(wallet, KindExpense, 3050),
		detail(wallet, KindTransfer, 5000),
	}

	got := ComputeBalances([]Account{wallet}, txs)
	b := got[wallet.ID]
	if b.NetCents != 6950 || b.IncomeCents != 10000 || b.ExpenseCents != 3050 {
		t.Fatalf("transfer changed the balance: %+v", b)
	}
}

func TestComputeBalancesNetIdentity(t *testing.T) {
	acc := Account{ID: 7, Currency: "USD"}
	txs := []TransactionDetail{
		detail(acc, KindIncome, 500),
		detail(acc, KindIncome, 1500),
		detail(acc, KindExpense, 300),
		detail(acc, KindExpense, 900),
		detail(acc, KindTransfer, 12345),
	}

	b := ComputeBalances([]Account{acc}, txs)[acc.ID]
	if b.NetCents != b.IncomeCents-b.ExpenseCents {
		t.Fatalf("net %d != income %d - expense %d", b.NetCents, b.IncomeCents, b.ExpenseCents)
	}
	if b.Currency != "USD" {
		t.Fatalf("currency = %q, want USD", b.Currency)
	}
}

func TestComputeBalancesZeroEntryForIdleAccounts(t *testing.T) {
	idle := Account{ID: 2, Name: "Savings", Currency: "PEN"}
	got := ComputeBalances([]Account{idle}, nil)
	b, ok := got[idle.ID]
	if !ok {
		t.Fatal("idle account missing from balance map")
	}
	if b.NetCents != 0 || b.IncomeCents != 0 || b.ExpenseCents != 0 {
		t.Fatalf("idle account should be zero: %+v", b)
	}
	if b.Currency != "PEN" {
		t.Fatalf("currency = %q, want PEN", b.Currency)
	}
}

func TestComputeBalancesIsPure(t *testing.T) {
	a := Account{ID: 1, Currency: "PEN"}
	b := Account{ID: 2, Currency: "USD"}
	txs := []TransactionDetail{
		detail(a, KindIncome, 100),
		detail(b, KindExpense, 200),
		detail(a, KindTransfer, 300),
	}

	first := ComputeBalances([]Account{a, b}, txs)
	second := ComputeBalances([]Account{a, b}, txs)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("fold is not idempotent: %+v vs %+v", first, second)
	}
}

func TestComputeBalancesUnknownAccountFallsBackToJoin(t *testing.T) {
	// A transaction whose account is not in the account list (stale list)
	// still accumulates, taking the currency from the joined account row.
	acc := Account{ID: 9, Currency: "USD"}
	got := ComputeBalances(nil, []TransactionDetail{detail(acc, KindIncome, 700)})
	b := got[acc.ID]
	if b.NetCents != 700 || b.Currency != "USD" {
		t.Fatalf("unexpected balance for unlisted account: %+v", b)
	}
}
