package core

import (
	"strings"
	"testing"
	"time"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in  string
		out Kind
		ok  bool
	}{
		{"income", KindIncome, true},
		{"expense", KindExpense, true},
		{"transfer", KindTransfer, true},
		{" income ", KindIncome, true},
		{"INCOME", "", false},
		{"withdrawal", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q: got (%q, %v), want %q", tc.in, got, err, tc.out)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-06-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("got %v, want local midnight %v", got, want)
	}

	for _, bad := range []string{"", "15/06/2024", "2024-13-01", "not a date"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("%q expected error", bad)
		}
	}
}

func TestAccountValidate(t *testing.T) {
	valid := Account{Name: "Wallet", Currency: "PEN"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid account rejected: %v", err)
	}

	cases := []struct {
		name string
		acc  Account
	}{
		{"empty name", Account{Name: "  ", Currency: "PEN"}},
		{"long name", Account{Name: strings.Repeat("x", 101), Currency: "PEN"}},
		{"missing currency", Account{Name: "Wallet", Currency: ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.acc.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCategoryValidate(t *testing.T) {
	valid := Category{Name: "Sueldo", Kind: KindIncome}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid category rejected: %v", err)
	}
	if err := (Category{Name: "Comida", Kind: "snack"}).Validate(); err == nil {
		t.Fatal("unknown kind should not validate")
	}
	if err := (Category{Name: "", Kind: KindExpense}).Validate(); err == nil {
		t.Fatal("empty name should not validate")
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		AccountID: 1,
		Amount:    Money{Cents: 1000},
		Date:      time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local),
		Kind:      KindExpense,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
	}{
		{"no account", func(tx *Transaction) { tx.AccountID = 0 }},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }},
		{"bad kind", func(tx *Transaction) { tx.Kind = "loan" }},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("d", 201) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := valid
			tc.mutate(&tx)
			if err := tx.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
