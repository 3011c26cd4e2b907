package handlers

import "github.com/teamops/teamledger/internal/models"

// LoginResponse reports the role the session was created for
type LoginResponse struct {
	Role string `json:"role"`
}

// PaymentItemResponse is the athlete-facing view of one payment item
type PaymentItemResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	UnitValueCents  int64  `json:"unit_value_cents"`
	QuantityEnabled bool   `json:"quantity_enabled"`
	Required        bool   `json:"required"`
}

// PaymentDefinitionResponse is the athlete-facing view of an event's payment
// definition. Fixed items are organizational overhead and never listed.
type PaymentDefinitionResponse struct {
	ID      int64                 `json:"id"`
	Name    string                `json:"name"`
	DueDate string                `json:"due_date"`
	Items   []PaymentItemResponse `json:"items"`
}

// EventsResponse wraps the event list
type EventsResponse struct {
	Events []models.Event `json:"events"`
}
