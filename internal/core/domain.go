package core

import (
	"errors"
	"strings"
	"time"
)

const (
	KindIncome   Kind = "income"
	KindExpense  Kind = "expense"
	KindTransfer Kind = "transfer"
)

// DefaultCurrency is applied to accounts created without an explicit currency.
const DefaultCurrency = "PEN"

// DefaultIcon marks categories created without an icon glyph.
const DefaultIcon = "🏷️"

type (
	// Kind classifies both transactions and categories.
	Kind string

	// Account is a named store of money a user tracks (cash, bank, card).
	Account struct {
		ID        int64
		UserID    string
		Name      string
		Currency  string
		IsCredit  bool
		CreatedAt time.Time
	}

	// Category is a user-defined label classifying transactions.
	// Categories are create-only: the UI never updates or deletes them.
	Category struct {
		ID     int64
		UserID string
		Name   string
		Kind   Kind
		Icon   string
	}

	// Transaction is a single dated monetary event affecting one account.
	// Amount is always positive; Kind determines the sign during aggregation.
	Transaction struct {
		ID          int64
		UserID      string
		AccountID   int64
		CategoryID  *int64
		Amount      Money
		Description string
		Date        time.Time
		Kind        Kind
		CreatedAt   time.Time
	}

	// TransactionDetail is a transaction joined with its account and,
	// when present, its category.
	TransactionDetail struct {
		Transaction
		Account  Account
		Category *Category
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidKind     = errors.New("invalid transaction type")
	ErrEmptyName       = errors.New("empty name")
	ErrMissingAccount  = errors.New("missing account reference")
	ErrMissingCurrency = errors.New("missing currency")
)

// Valid reports whether k is one of the three known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindIncome, KindExpense, KindTransfer:
		return true
	default:
		return false
	}
}

// ParseKind validates a user-supplied type string.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSpace(s))
	if !k.Valid() {
		return "", ErrInvalidKind
	}
	return k, nil
}

// ParseDate parses a date-only string (YYYY-MM-DD) into a timestamp at
// local midnight. The transaction date is user-supplied and distinct from
// the system-assigned creation time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if len(a.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if strings.TrimSpace(a.Currency) == "" {
		return ErrMissingCurrency
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if !c.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.AccountID <= 0 {
		return ErrMissingAccount
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}
