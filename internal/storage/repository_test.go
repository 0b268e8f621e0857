package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"finanzas/internal/core"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustCreateAccount(t *testing.T, repo *SQLiteRepository, userID, name string) core.Account {
	t.Helper()
	a, err := repo.CreateAccount(context.Background(), core.Account{
		UserID:   userID,
		Name:     name,
		Currency: "PEN",
	})
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	return a
}

func mustCreateTransaction(t *testing.T, repo *SQLiteRepository, tx core.Transaction) core.Transaction {
	t.Helper()
	if tx.Date.IsZero() {
		tx.Date = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	}
	created, err := repo.CreateTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	return created
}

func TestAccountLifecycle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	a := mustCreateAccount(t, repo, "user-1", "Wallet")
	if a.ID == 0 {
		t.Fatal("expected assigned account id")
	}

	a.Name = "Cash Wallet"
	a.IsCredit = true
	affected, err := repo.UpdateAccount(ctx, "user-1", a)
	if err != nil {
		t.Fatalf("UpdateAccount() error = %v", err)
	}
	if affected != 1 {
		t.Fatalf("UpdateAccount() affected = %d, want 1", affected)
	}

	got, err := repo.GetAccount(ctx, "user-1", a.ID)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if got.Name != "Cash Wallet" || !got.IsCredit {
		t.Errorf("GetAccount() = %+v, want updated name and credit flag", got)
	}

	affected, err = repo.DeleteAccount(ctx, "user-1", a.ID)
	if err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	if affected != 1 {
		t.Fatalf("DeleteAccount() affected = %d, want 1", affected)
	}
}

func TestOwnershipScoping(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	a := mustCreateAccount(t, repo, "user-1", "Wallet")

	t.Run("update by other user is a no-op", func(t *testing.T) {
		affected, err := repo.UpdateAccount(ctx, "user-2", core.Account{ID: a.ID, Name: "Stolen", Currency: "PEN"})
		if err != nil {
			t.Fatalf("UpdateAccount() error = %v", err)
		}
		if affected != 0 {
			t.Fatalf("UpdateAccount() affected = %d, want 0", affected)
		}
	})

	t.Run("delete by other user is a no-op", func(t *testing.T) {
		affected, err := repo.DeleteAccount(ctx, "user-2", a.ID)
		if err != nil {
			t.Fatalf("DeleteAccount() error = %v", err)
		}
		if affected != 0 {
			t.Fatalf("DeleteAccount() affected = %d, want 0", affected)
		}
	})

	t.Run("get by other user reports not found", func(t *testing.T) {
		if _, err := repo.GetAccount(ctx, "user-2", a.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("GetAccount() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("lists stay per user", func(t *testing.T) {
		mustCreateAccount(t, repo, "user-2", "Other Wallet")

		accounts, err := repo.ListAccounts(ctx, "user-1")
		if err != nil {
			t.Fatalf("ListAccounts() error = %v", err)
		}
		if len(accounts) != 1 || accounts[0].Name != "Wallet" {
			t.Errorf("ListAccounts(user-1) = %+v, want only Wallet", accounts)
		}
	})
}

func TestDeleteAccountWithTransactions(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	a := mustCreateAccount(t, repo, "user-1", "Wallet")
	mustCreateTransaction(t, repo, core.Transaction{
		UserID:    "user-1",
		AccountID: a.ID,
		Amount:    core.Money{Cents: 1500},
		Kind:      core.KindExpense,
	})

	if _, err := repo.DeleteAccount(ctx, "user-1", a.ID); !errors.Is(err, ErrAccountInUse) {
		t.Fatalf("DeleteAccount() error = %v, want ErrAccountInUse", err)
	}
}

func TestCategories(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first, err := repo.CreateCategory(ctx, core.Category{UserID: "user-1", Name: "Groceries", Kind: core.KindExpense, Icon: "🛒"})
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	second, err := repo.CreateCategory(ctx, core.Category{UserID: "user-1", Name: "Salary", Kind: core.KindIncome})
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}

	categories, err := repo.ListCategories(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("ListCategories() returned %d categories, want 2", len(categories))
	}
	if categories[0].ID != second.ID || categories[1].ID != first.ID {
		t.Errorf("ListCategories() order = [%d, %d], want newest first", categories[0].ID, categories[1].ID)
	}
	if categories[1].Icon != "🛒" {
		t.Errorf("category icon = %q, want 🛒", categories[1].Icon)
	}
	if categories[0].Icon != "" {
		t.Errorf("category without icon = %q, want empty", categories[0].Icon)
	}
}

func TestTransactionListOrderingAndJoins(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	a := mustCreateAccount(t, repo, "user-1", "Wallet")
	cat, err := repo.CreateCategory(ctx, core.Category{UserID: "user-1", Name: "Groceries", Kind: core.KindExpense})
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}

	older := mustCreateTransaction(t, repo, core.Transaction{
		UserID:    "user-1",
		AccountID: a.ID,
		Amount:    core.Money{Cents: 1000},
		Kind:      core.KindExpense,
		Date:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	newer := mustCreateTransaction(t, repo, core.Transaction{
		UserID:     "user-1",
		AccountID:  a.ID,
		CategoryID: &cat.ID,
		Amount:     core.Money{Cents: 2500},
		Kind:       core.KindExpense,
		Date:       time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
	})

	list, err := repo.ListTransactions(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ListTransactions() returned %d rows, want 2", len(list))
	}
	if list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Errorf("ListTransactions() order = [%d, %d], want newest date first", list[0].ID, list[1].ID)
	}
	if list[0].Account.Name != "Wallet" {
		t.Errorf("joined account name = %q, want Wallet", list[0].Account.Name)
	}
	if list[0].Category == nil || list[0].Category.Name != "Groceries" {
		t.Errorf("joined category = %+v, want Groceries", list[0].Category)
	}
	if list[1].Category != nil {
		t.Errorf("uncategorized row got category %+v", list[1].Category)
	}
}

func TestTransactionUpdateResetsExport(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	a := mustCreateAccount(t, repo, "user-1", "Wallet")
	tx := mustCreateTransaction(t, repo, core.Transaction{
		UserID:    "user-1",
		AccountID: a.ID,
		Amount:    core.Money{Cents: 1000},
		Kind:      core.KindExpense,
	})

	if err := repo.MarkExported(ctx, tx.ID); err != nil {
		t.Fatalf("MarkExported() error = %v", err)
	}
	unexported, err := repo.ListUnexported(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnexported() error = %v", err)
	}
	if len(unexported) != 0 {
		t.Fatalf("ListUnexported() after export returned %d rows, want 0", len(unexported))
	}

	tx.Amount = core.Money{Cents: 2000}
	affected, err := repo.UpdateTransaction(ctx, "user-1", tx)
	if err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}
	if affected != 1 {
		t.Fatalf("UpdateTransaction() affected = %d, want 1", affected)
	}

	unexported, err = repo.ListUnexported(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnexported() error = %v", err)
	}
	if len(unexported) != 1 || unexported[0].ID != tx.ID {
		t.Fatalf("ListUnexported() after update = %+v, want the updated row", unexported)
	}
	if unexported[0].Amount.Cents != 2000 {
		t.Errorf("updated amount = %d cents, want 2000", unexported[0].Amount.Cents)
	}
}

func TestDeleteCategoryKeepsTransactions(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	a := mustCreateAccount(t, repo, "user-1", "Wallet")
	cat, err := repo.CreateCategory(ctx, core.Category{UserID: "user-1", Name: "Groceries", Kind: core.KindExpense})
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	tx := mustCreateTransaction(t, repo, core.Transaction{
		UserID:     "user-1",
		AccountID:  a.ID,
		CategoryID: &cat.ID,
		Amount:     core.Money{Cents: 1000},
		Kind:       core.KindExpense,
	})

	if _, err := repo.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	got, err := repo.GetTransactionDetail(ctx, tx.ID)
	if err != nil {
		t.Fatalf("GetTransactionDetail() error = %v", err)
	}
	if got.CategoryID != nil || got.Category != nil {
		t.Errorf("transaction after category delete = %+v, want detached category", got)
	}
}
