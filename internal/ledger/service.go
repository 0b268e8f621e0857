// Package ledger implements the application operations over accounts,
// categories and transactions. All operations are scoped to the calling
// user; rows belonging to anyone else are invisible to them.
package ledger

import (
	"context"
	"errors"
	"log/slog"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/storage"
)

// Store is the persistence surface the service needs. Implemented by
// storage.SQLiteRepository.
type Store interface {
	CreateAccount(ctx context.Context, a core.Account) (core.Account, error)
	UpdateAccount(ctx context.Context, userID string, a core.Account) (int64, error)
	DeleteAccount(ctx context.Context, userID string, id int64) (int64, error)
	GetAccount(ctx context.Context, userID string, id int64) (core.Account, error)
	ListAccounts(ctx context.Context, userID string) ([]core.Account, error)

	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	GetCategory(ctx context.Context, userID string, id int64) (core.Category, error)
	ListCategories(ctx context.Context, userID string) ([]core.Category, error)

	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, userID string, t core.Transaction) (int64, error)
	DeleteTransaction(ctx context.Context, userID string, id int64) (int64, error)
	ListTransactions(ctx context.Context, userID string) ([]core.TransactionDetail, error)
}

// Publisher sends change notifications after successful mutations.
type Publisher interface {
	PublishChange(ctx context.Context, msg *amqp.ChangeMessage) error
}

// Result is the outcome of a mutation as shown to the user. Err is a
// user-facing message, never a wrapped internal error.
type Result struct {
	OK  bool
	Err string
}

func succeed() Result        { return Result{OK: true} }
func fail(msg string) Result { return Result{Err: msg} }

type Service struct {
	store     Store
	publisher Publisher
}

// NewService builds a ledger service. publisher may be nil; mutations
// then skip change notifications.
func NewService(store Store, publisher Publisher) *Service {
	return &Service{store: store, publisher: publisher}
}

// publishChange notifies the worker of a mutation. A broker failure is
// logged and swallowed: the request already committed and must succeed.
func (s *Service) publishChange(ctx context.Context, entity, action string, id int64, userID string) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewChangeMessage(entity, action, id, userID)
	if err := s.publisher.PublishChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change message",
			"error", err,
			"entity", entity,
			"action", action,
			"id", id)
	}
}

// requireUser rejects mutations carrying no identity before any store
// access happens.
func requireUser(userID string) Result {
	if userID == "" {
		return fail("not signed in")
	}
	return succeed()
}

func (s *Service) CreateAccount(ctx context.Context, userID string, a core.Account) (core.Account, Result) {
	if res := requireUser(userID); !res.OK {
		return core.Account{}, res
	}
	a.UserID = userID
	if a.Currency == "" {
		a.Currency = core.DefaultCurrency
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, fail(err.Error())
	}

	created, err := s.store.CreateAccount(ctx, a)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create account", "error", err, "user_id", userID)
		return core.Account{}, fail("could not create account")
	}

	s.publishChange(ctx, amqp.EntityAccount, amqp.ActionCreated, created.ID, userID)
	return created, succeed()
}

func (s *Service) UpdateAccount(ctx context.Context, userID string, a core.Account) Result {
	if res := requireUser(userID); !res.OK {
		return res
	}
	if a.Currency == "" {
		a.Currency = core.DefaultCurrency
	}
	if err := a.Validate(); err != nil {
		return fail(err.Error())
	}

	affected, err := s.store.UpdateAccount(ctx, userID, a)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to update account", "error", err, "account_id", a.ID, "user_id", userID)
		return fail("could not update account")
	}
	if affected == 0 {
		// Row missing or owned by someone else. Either way the caller
		// learns nothing beyond "nothing happened".
		slog.WarnContext(ctx, "Account update matched no rows", "account_id", a.ID, "user_id", userID)
		return succeed()
	}

	s.publishChange(ctx, amqp.EntityAccount, amqp.ActionUpdated, a.ID, userID)
	return succeed()
}

func (s *Service) DeleteAccount(ctx context.Context, userID string, id int64) Result {
	if res := requireUser(userID); !res.OK {
		return res
	}
	affected, err := s.store.DeleteAccount(ctx, userID, id)
	if errors.Is(err, storage.ErrAccountInUse) {
		return fail("account still has transactions")
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to delete account", "error", err, "account_id", id, "user_id", userID)
		return fail("could not delete account")
	}
	if affected == 0 {
		slog.WarnContext(ctx, "Account delete matched no rows", "account_id", id, "user_id", userID)
		return succeed()
	}

	s.publishChange(ctx, amqp.EntityAccount, amqp.ActionDeleted, id, userID)
	return succeed()
}

func (s *Service) CreateCategory(ctx context.Context, userID string, c core.Category) (core.Category, Result) {
	if res := requireUser(userID); !res.OK {
		return core.Category{}, res
	}
	c.UserID = userID
	if err := c.Validate(); err != nil {
		return core.Category{}, fail(err.Error())
	}

	created, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create category", "error", err, "user_id", userID)
		return core.Category{}, fail("could not create category")
	}

	s.publishChange(ctx, amqp.EntityCategory, amqp.ActionCreated, created.ID, userID)
	return created, succeed()
}

// checkReferences verifies that the account and optional category a
// transaction points at exist and belong to userID.
func (s *Service) checkReferences(ctx context.Context, userID string, t core.Transaction) Result {
	if _, err := s.store.GetAccount(ctx, userID, t.AccountID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fail("account not found")
		}
		slog.ErrorContext(ctx, "Failed to verify account", "error", err, "account_id", t.AccountID)
		return fail("could not verify account")
	}
	if t.CategoryID != nil {
		if _, err := s.store.GetCategory(ctx, userID, *t.CategoryID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fail("category not found")
			}
			slog.ErrorContext(ctx, "Failed to verify category", "error", err, "category_id", *t.CategoryID)
			return fail("could not verify category")
		}
	}
	return succeed()
}

func (s *Service) CreateTransaction(ctx context.Context, userID string, t core.Transaction) (core.Transaction, Result) {
	if res := requireUser(userID); !res.OK {
		return core.Transaction{}, res
	}
	t.UserID = userID
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fail(err.Error())
	}
	if res := s.checkReferences(ctx, userID, t); !res.OK {
		return core.Transaction{}, res
	}

	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create transaction", "error", err, "user_id", userID)
		return core.Transaction{}, fail("could not create transaction")
	}

	s.publishChange(ctx, amqp.EntityTransaction, amqp.ActionCreated, created.ID, userID)
	return created, succeed()
}

func (s *Service) UpdateTransaction(ctx context.Context, userID string, t core.Transaction) Result {
	if res := requireUser(userID); !res.OK {
		return res
	}
	t.UserID = userID
	if err := t.Validate(); err != nil {
		return fail(err.Error())
	}
	if res := s.checkReferences(ctx, userID, t); !res.OK {
		return res
	}

	affected, err := s.store.UpdateTransaction(ctx, userID, t)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to update transaction", "error", err, "transaction_id", t.ID, "user_id", userID)
		return fail("could not update transaction")
	}
	if affected == 0 {
		slog.WarnContext(ctx, "Transaction update matched no rows", "transaction_id", t.ID, "user_id", userID)
		return succeed()
	}

	s.publishChange(ctx, amqp.EntityTransaction, amqp.ActionUpdated, t.ID, userID)
	return succeed()
}

func (s *Service) DeleteTransaction(ctx context.Context, userID string, id int64) Result {
	if res := requireUser(userID); !res.OK {
		return res
	}
	affected, err := s.store.DeleteTransaction(ctx, userID, id)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to delete transaction", "error", err, "transaction_id", id, "user_id", userID)
		return fail("could not delete transaction")
	}
	if affected == 0 {
		slog.WarnContext(ctx, "Transaction delete matched no rows", "transaction_id", id, "user_id", userID)
		return succeed()
	}

	s.publishChange(ctx, amqp.EntityTransaction, amqp.ActionDeleted, id, userID)
	return succeed()
}

// Queries return empty slices on error so views render an empty state
// instead of failing the whole page. Errors are logged here.

func (s *Service) ListAccounts(ctx context.Context, userID string) []core.Account {
	if userID == "" {
		return nil
	}
	accounts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list accounts", "error", err, "user_id", userID)
		return nil
	}
	return accounts
}

func (s *Service) ListCategories(ctx context.Context, userID string) []core.Category {
	if userID == "" {
		return nil
	}
	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list categories", "error", err, "user_id", userID)
		return nil
	}
	return categories
}

func (s *Service) ListTransactions(ctx context.Context, userID string) []core.TransactionDetail {
	if userID == "" {
		return nil
	}
	transactions, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list transactions", "error", err, "user_id", userID)
		return nil
	}
	return transactions
}

// Balances folds every transaction of the user into per-account totals.
// Accounts without transactions still get a zero entry.
func (s *Service) Balances(ctx context.Context, userID string) (map[int64]core.Balance, []core.Account) {
	accounts := s.ListAccounts(ctx, userID)
	transactions := s.ListTransactions(ctx, userID)
	return core.ComputeBalances(accounts, transactions), accounts
}
