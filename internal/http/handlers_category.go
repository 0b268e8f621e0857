package http

import (
	"html/template"
	"log/slog"
	"net/http"

	"finanzas/internal/amqp"
	"finanzas/internal/metrics"
)

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, userID string) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	category, err := parseCategoryForm(r.Form)
	if err != nil {
		UnprocessableEntityError("Invalid category type").Write(w)
		return
	}

	created, result := s.ledger.CreateCategory(r.Context(), userID, category)
	metrics.ObserveMutation(amqp.EntityCategory, result.OK)
	if !result.OK {
		UnprocessableEntityError(result.Err).Write(w)
		return
	}

	s.invalidatePartials(userID)
	slog.InfoContext(r.Context(), "Category created",
		"category_id", created.ID,
		"name", created.Name,
		"kind", string(created.Kind))

	NewHTMXResponse().
		TriggerLedgerChanged(amqp.EntityCategory).
		TriggerFormReset().
		TriggerSuccessNotification("Category created: " + template.HTMLEscapeString(created.Name)).
		Write(w)
}
