package http

import (
	"html/template"
	"log/slog"
	"net/http"

	"finanzas/internal/amqp"
	"finanzas/internal/metrics"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	tx, err := parseTransactionForm(r.Form)
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	created, result := s.ledger.CreateTransaction(r.Context(), userID, tx)
	metrics.ObserveMutation(amqp.EntityTransaction, result.OK)
	if !result.OK {
		UnprocessableEntityError(result.Err).Write(w)
		return
	}

	s.invalidatePartials(userID)
	slog.InfoContext(r.Context(), "Transaction created",
		"transaction_id", created.ID,
		"account_id", created.AccountID,
		"amount_cents", created.Amount.Cents,
		"kind", string(created.Kind))

	NewHTMXResponse().
		TriggerLedgerChanged(amqp.EntityTransaction).
		TriggerFormReset().
		TriggerSuccessNotification("Transaction saved: " + template.HTMLEscapeString(created.Description)).
		Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	id, err := parsePathID(r)
	if err != nil {
		BadRequestError("Invalid transaction id").Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	tx, err := parseTransactionForm(r.Form)
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	tx.ID = id

	result := s.ledger.UpdateTransaction(r.Context(), userID, tx)
	metrics.ObserveMutation(amqp.EntityTransaction, result.OK)
	if !result.OK {
		UnprocessableEntityError(result.Err).Write(w)
		return
	}

	s.invalidatePartials(userID)
	NewHTMXResponse().
		TriggerLedgerChanged(amqp.EntityTransaction).
		TriggerSuccessNotification("Transaction updated").
		Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	id, err := parsePathID(r)
	if err != nil {
		BadRequestError("Invalid transaction id").Write(w)
		return
	}

	result := s.ledger.DeleteTransaction(r.Context(), userID, id)
	metrics.ObserveMutation(amqp.EntityTransaction, result.OK)
	if !result.OK {
		UnprocessableEntityError(result.Err).Write(w)
		return
	}

	s.invalidatePartials(userID)
	NewHTMXResponse().
		TriggerLedgerChanged(amqp.EntityTransaction).
		TriggerSuccessNotification("Transaction deleted").
		Write(w)
}
