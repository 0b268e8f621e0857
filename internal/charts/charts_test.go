package charts

import (
	"bytes"
	"testing"

	"finanzas/internal/core"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G'}

func TestGenerateBalanceChart(t *testing.T) {
	g := NewChartGenerator()

	t.Run("no accounts yields no image", func(t *testing.T) {
		img, err := g.GenerateBalanceChart(nil, nil)
		if err != nil {
			t.Fatalf("GenerateBalanceChart() error = %v", err)
		}
		if img != nil {
			t.Errorf("expected nil image, got %d bytes", len(img))
		}
	})

	t.Run("all-zero balances yield no image", func(t *testing.T) {
		accounts := []core.Account{{ID: 1, Name: "Wallet"}}
		balances := map[int64]core.Balance{1: {Currency: "PEN"}}
		img, err := g.GenerateBalanceChart(accounts, balances)
		if err != nil {
			t.Fatalf("GenerateBalanceChart() error = %v", err)
		}
		if img != nil {
			t.Errorf("expected nil image, got %d bytes", len(img))
		}
	})

	t.Run("renders PNG for real balances", func(t *testing.T) {
		accounts := []core.Account{
			{ID: 1, Name: "Wallet"},
			{ID: 2, Name: "Savings"},
		}
		balances := map[int64]core.Balance{
			1: {IncomeCents: 10000, ExpenseCents: 3050, NetCents: 6950, Currency: "PEN"},
			2: {IncomeCents: 50000, NetCents: 50000, Currency: "PEN"},
		}

		img, err := g.GenerateBalanceChart(accounts, balances)
		if err != nil {
			t.Fatalf("GenerateBalanceChart() error = %v", err)
		}
		if len(img) == 0 {
			t.Fatal("expected image bytes")
		}
		if !bytes.HasPrefix(img, pngHeader) {
			t.Errorf("output does not look like a PNG, starts with % x", img[:4])
		}
	})
}
