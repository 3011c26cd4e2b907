package handlers

import (
	"net/http"
	"time"
)

// handleListEvents returns the events visible to the caller
func (h *Handlers) handleListEvents(w http.ResponseWriter, r *http.Request) {
	scope, err := h.callerScope(r)
	if err != nil {
		respondError(w, err)
		return
	}

	events, err := h.Analytics.ListEvents(r.Context(), scope)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, EventsResponse{Events: events})
}

// handleGetPaymentDefinition returns the athlete-facing payment definition
// of an event
func (h *Handlers) handleGetPaymentDefinition(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	scope, err := h.callerScope(r)
	if err != nil {
		respondError(w, err)
		return
	}

	definition, err := h.Analytics.EventPaymentDefinition(r.Context(), scope, eventID)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := PaymentDefinitionResponse{
		ID:      definition.ID,
		Name:    definition.Name,
		DueDate: definition.DueDate.Format(time.RFC3339),
		Items:   []PaymentItemResponse{},
	}
	for _, item := range definition.Items {
		resp.Items = append(resp.Items, PaymentItemResponse{
			ID:              item.ID,
			Name:            item.Name,
			UnitValueCents:  item.UnitValueCents,
			QuantityEnabled: item.QuantityEnabled,
			Required:        item.Required,
		})
	}
	respondOK(w, resp)
}

// handleEventSummaries returns the per-event analytics DTOs for the caller's
// scope
func (h *Handlers) handleEventSummaries(w http.ResponseWriter, r *http.Request) {
	scope, err := h.callerScope(r)
	if err != nil {
		respondError(w, err)
		return
	}

	summaries, err := h.Analytics.SummarizeEvents(r.Context(), scope)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, summaries)
}
