package http

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"finanzas/internal/auth"
	"finanzas/internal/core"
	"finanzas/internal/metrics"
)

type accountView struct {
	ID       int64
	Name     string
	Currency string
	IsCredit bool
	Income   string
	Expense  string
	Net      string
}

type categoryView struct {
	ID   int64
	Name string
	Icon string
	Kind string
}

type transactionView struct {
	ID          int64
	Date        string
	Description string
	Account     string
	Category    string
	Kind        string
	Amount      string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.identity.Resolve(r.Context(), r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	accounts := s.ledger.ListAccounts(r.Context(), userID)
	categories := s.ledger.ListCategories(r.Context(), userID)

	data := struct {
		Accounts   []core.Account
		Categories []categoryView
		Today      string
	}{
		Accounts: accounts,
		Today:    time.Now().Format("2006-01-02"),
	}
	for _, c := range categories {
		data.Categories = append(data.Categories, categoryView{
			ID:   c.ID,
			Name: c.Name,
			Icon: c.Icon,
			Kind: string(c.Kind),
		})
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.identity.Resolve(r.Context(), r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.renderLogin(w, r, "")
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, errMsg string) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	data := struct{ Error string }{Error: errMsg}
	if err := s.templates.ExecuteTemplate(w, "login.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Login template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	// Static mode has no credentials; everyone is already signed in.
	if s.gate == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderLogin(w, r, "Invalid request format")
		return
	}

	email := sanitizeInput(r.Form.Get("email"))
	password := r.Form.Get("password")
	if email == "" || password == "" {
		s.renderLogin(w, r, "Email and password are required")
		return
	}

	session, err := s.gate.SignIn(r.Context(), email, password)
	if err != nil {
		s.renderLogin(w, r, "Invalid email or password")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    session.AccessToken,
		Path:     "/",
		MaxAge:   session.ExpiresIn,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.gate != nil {
		if cookie, err := r.Cookie(auth.AccessTokenCookie); err == nil {
			s.gate.SignOut(cookie.Value)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// renderPartial executes a template into the partial cache, serving the
// cached copy on subsequent requests until a mutation invalidates it.
func (s *Server) renderPartial(w http.ResponseWriter, r *http.Request, userID, view, tmpl string, build func() any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	key := s.partialKey(userID, view)
	if html, found := s.partials.Get(key); found {
		metrics.CacheHit()
		_, _ = w.Write([]byte(html))
		return
	}
	metrics.CacheMiss()

	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, tmpl, build()); err != nil {
		slog.ErrorContext(r.Context(), "Partial template execution failed", "error", err, "template", tmpl)
		_, _ = w.Write([]byte(`<div class="placeholder">Something went wrong loading this view</div>`))
		return
	}

	s.partials.Set(key, buf.String())
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleBalancesPartial(w http.ResponseWriter, r *http.Request, userID string) {
	s.renderPartial(w, r, userID, "balances", "balances.html", func() any {
		balances, accounts := s.ledger.Balances(r.Context(), userID)

		var rows []accountView
		for _, a := range accounts {
			b := balances[a.ID]
			rows = append(rows, accountView{
				ID:       a.ID,
				Name:     a.Name,
				Currency: a.Currency,
				IsCredit: a.IsCredit,
				Income:   formatMoney(b.IncomeCents, ""),
				Expense:  formatMoney(b.ExpenseCents, ""),
				Net:      formatMoney(b.NetCents, b.Currency),
			})
		}
		return struct{ Accounts []accountView }{Accounts: rows}
	})
}

func (s *Server) handleTransactionsPartial(w http.ResponseWriter, r *http.Request, userID string) {
	s.renderPartial(w, r, userID, "transactions", "transactions.html", func() any {
		details := s.ledger.ListTransactions(r.Context(), userID)

		var rows []transactionView
		for _, d := range details {
			category := ""
			if d.Category != nil {
				category = d.Category.Icon + " " + d.Category.Name
			}
			amount := formatMoney(d.Amount.Cents, d.Account.Currency)
			if d.Kind == core.KindExpense {
				amount = "-" + amount
			}
			rows = append(rows, transactionView{
				ID:          d.ID,
				Date:        d.Date.Format("2006-01-02"),
				Description: template.HTMLEscapeString(d.Description),
				Account:     d.Account.Name,
				Category:    category,
				Kind:        string(d.Kind),
				Amount:      amount,
			})
		}
		return struct{ Transactions []transactionView }{Transactions: rows}
	})
}

func (s *Server) handleBalanceChart(w http.ResponseWriter, r *http.Request, userID string) {
	balances, accounts := s.ledger.Balances(r.Context(), userID)

	img, err := s.charts.GenerateBalanceChart(accounts, balances)
	if err != nil {
		slog.ErrorContext(r.Context(), "Balance chart render failed", "error", err)
		http.Error(w, "chart unavailable", http.StatusInternalServerError)
		return
	}
	if img == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(img)
}
