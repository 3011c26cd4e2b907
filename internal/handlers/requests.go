package handlers

import "github.com/teamops/teamledger/internal/services"

// LoginRequest carries either the admin password or a manager access code
type LoginRequest struct {
	Password   string `json:"password,omitempty"`
	AccessCode string `json:"access_code,omitempty"`
}

// ConfirmAttendanceRequest represents a confirmation with optional item quantities
type ConfirmAttendanceRequest struct {
	Items []services.ItemQuantity `json:"items,omitempty"`
}

// RegisterPaymentRequest represents a payment registration
type RegisterPaymentRequest struct {
	Items []services.ItemQuantity `json:"items"`
}
