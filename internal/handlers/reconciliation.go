package handlers

import (
	"net/http"
)

// handleConfirmAttendance confirms an athlete for an event, optionally with
// item quantities
func (h *Handlers) handleConfirmAttendance(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	athleteID, err := parseID(r, "athleteID")
	if err != nil {
		respondError(w, err)
		return
	}

	var req ConfirmAttendanceRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, err)
			return
		}
	}

	scope, err := h.callerScope(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Reconciliation.ConfirmAttendance(r.Context(), scope, eventID, athleteID, req.Items); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Attendance confirmed")
}

// handleCancelAttendance clears an athlete's confirmation for an event
func (h *Handlers) handleCancelAttendance(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	athleteID, err := parseID(r, "athleteID")
	if err != nil {
		respondError(w, err)
		return
	}

	scope, err := h.callerScope(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Reconciliation.CancelAttendance(r.Context(), scope, eventID, athleteID); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Attendance cancelled")
}

// handleRegisterPayment records paid quantities for an athlete's event items
func (h *Handlers) handleRegisterPayment(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	athleteID, err := parseID(r, "athleteID")
	if err != nil {
		respondError(w, err)
		return
	}

	var req RegisterPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	scope, err := h.callerScope(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Reconciliation.RegisterPayment(r.Context(), scope, eventID, athleteID, req.Items); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Payment registered")
}
