package services

import (
	"context"

	"github.com/teamops/teamledger/internal/models"
)

// ReconciliationServicer defines the interface for attendance and payment
// reconciliation operations
type ReconciliationServicer interface {
	ConfirmAttendance(ctx context.Context, scope models.CallerScope, eventID, athleteID int64, items []ItemQuantity) error
	CancelAttendance(ctx context.Context, scope models.CallerScope, eventID, athleteID int64) error
	RegisterPayment(ctx context.Context, scope models.CallerScope, eventID, athleteID int64, items []ItemQuantity) error
	SetBroadcaster(b Broadcaster)
}

// AnalyticsServicer defines the interface for summary and reference reads
type AnalyticsServicer interface {
	SummarizeEvents(ctx context.Context, scope models.CallerScope) ([]EventSummary, error)
	ListEvents(ctx context.Context, scope models.CallerScope) ([]models.Event, error)
	EventPaymentDefinition(ctx context.Context, scope models.CallerScope, eventID int64) (*models.PaymentDefinition, error)
}

// ScopeServicer defines the interface for authorization scope resolution
type ScopeServicer interface {
	ResolveAccessCode(ctx context.Context, accessCode string) (*models.Manager, error)
	ResolveScope(ctx context.Context, role string, managerID int64) (models.CallerScope, error)
}

// Ensure concrete types implement interfaces
var (
	_ ReconciliationServicer = (*ReconciliationService)(nil)
	_ AnalyticsServicer      = (*AnalyticsService)(nil)
	_ ScopeServicer          = (*ScopeService)(nil)
)
