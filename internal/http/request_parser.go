// This file turns HTMX form submissions into domain values. All text
// inputs pass through sanitizeInput before reaching the ledger.

package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"finanzas/internal/core"
)

// parsePathID reads the {id} path segment as a positive integer.
func parsePathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// parseAccountForm extracts an account from form values. Checkboxes
// arrive as "on" when ticked and are absent otherwise.
func parseAccountForm(form url.Values) core.Account {
	return core.Account{
		Name:     sanitizeInput(form.Get("name")),
		Currency: strings.ToUpper(sanitizeInput(form.Get("currency"))),
		IsCredit: form.Get("is_credit") == "on",
	}
}

func parseCategoryForm(form url.Values) (core.Category, error) {
	kind, err := core.ParseKind(sanitizeInput(form.Get("kind")))
	if err != nil {
		return core.Category{}, err
	}
	icon := sanitizeInput(form.Get("icon"))
	if icon == "" {
		icon = core.DefaultIcon
	}
	return core.Category{
		Name: sanitizeInput(form.Get("name")),
		Kind: kind,
		Icon: icon,
	}, nil
}

func parseTransactionForm(form url.Values) (core.Transaction, error) {
	accountID, err := strconv.ParseInt(strings.TrimSpace(form.Get("account_id")), 10, 64)
	if err != nil || accountID <= 0 {
		return core.Transaction{}, fmt.Errorf("invalid account")
	}

	var categoryID *int64
	if raw := strings.TrimSpace(form.Get("category_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return core.Transaction{}, fmt.Errorf("invalid category")
		}
		categoryID = &id
	}

	amount, err := core.ParseAmount(form.Get("amount"))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid amount")
	}

	date, err := core.ParseDate(strings.TrimSpace(form.Get("date")))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid date")
	}

	kind, err := core.ParseKind(sanitizeInput(form.Get("kind")))
	if err != nil {
		return core.Transaction{}, err
	}

	return core.Transaction{
		AccountID:   accountID,
		CategoryID:  categoryID,
		Amount:      amount,
		Description: sanitizeInput(form.Get("description")),
		Date:        date,
		Kind:        kind,
	}, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// ParseFormOrFail parses the request form and returns an error response
// on failure. Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}
