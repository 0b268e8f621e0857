package http

import (
	"html/template"
	"log/slog"
	"net/http"

	"finanzas/internal/amqp"
	"finanzas/internal/metrics"
)

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request, userID string) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	account := parseAccountForm(r.Form)
	created, result := s.ledger.CreateAccount(r.Context(), userID, account)
	metrics.ObserveMutation(amqp.EntityAccount, result.OK)
	if !result.OK {
		UnprocessableEntityError(result.Err).Write(w)
		return
	}

	s.invalidatePartials(userID)
	slog.InfoContext(r.Context(), "Account created",
		"account_id", created.ID,
		"name", created.Name,
		"currency", created.Currency)

	NewHTMXResponse().
		TriggerLedgerChanged(amqp.EntityAccount).
		TriggerFormReset().
		TriggerSuccessNotification("Account created: " + template.HTMLEscapeString(created.Name)).
		Write(w)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request, userID string) {
	id, err := parsePathID(r)
	if err != nil {
		BadRequestError("Invalid account id").Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	account := parseAccountForm(r.Form)
	account.ID = id
	result := s.ledger.UpdateAccount(r.Context(), userID, account)
	metrics.ObserveMutation(amqp.EntityAccount, result.OK)
	if !result.OK {
		UnprocessableEntityError(result.Err).Write(w)
		return
	}

	s.invalidatePartials(userID)
	NewHTMXResponse().
		TriggerLedgerChanged(amqp.EntityAccount).
		TriggerSuccessNotification("Account updated").
		Write(w)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request, userID string) {
	id, err := parsePathID(r)
	if err != nil {
		BadRequestError("Invalid account id").Write(w)
		return
	}

	result := s.ledger.DeleteAccount(r.Context(), userID, id)
	metrics.ObserveMutation(amqp.EntityAccount, result.OK)
	if !result.OK {
		UnprocessableEntityError(result.Err).
			TriggerErrorNotification(result.Err).
			Write(w)
		return
	}

	s.invalidatePartials(userID)
	NewHTMXResponse().
		TriggerLedgerChanged(amqp.EntityAccount).
		TriggerSuccessNotification("Account deleted").
		Write(w)
}
