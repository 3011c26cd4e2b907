package repository

import (
	"context"
	"time"

	"github.com/teamops/teamledger/internal/models"
)

// OrganizationRepository defines organization and category reference data operations
type OrganizationRepository interface {
	CreateOrganization(ctx context.Context, name string) (int64, error)
	CreateCategory(ctx context.Context, organizationID int64, name string) (int64, error)
	ListCategories(ctx context.Context, organizationID int64) ([]models.Category, error)
}

// AthleteRepository defines athlete reference data operations
type AthleteRepository interface {
	CreateAthlete(ctx context.Context, name, email string) (int64, error)
	AssignAthleteCategory(ctx context.Context, athleteID, categoryID int64) error
	GetAthlete(ctx context.Context, id int64) (*models.Athlete, error)
	// ListEligibleAthletes returns athletes sharing at least one category with
	// the event. Each athlete's CategoryIDs holds only the shared categories.
	ListEligibleAthletes(ctx context.Context, eventID int64) ([]models.Athlete, error)
}

// ManagerRepository defines manager and authorization-scope data operations
type ManagerRepository interface {
	CreateManager(ctx context.Context, name, accessCode string) (int64, error)
	AssignManagerCategory(ctx context.Context, managerID, categoryID int64) error
	GetManagerByAccessCode(ctx context.Context, accessCode string) (*models.Manager, error)
	ListManagerCategoryIDs(ctx context.Context, managerID int64) ([]int64, error)
}

// EventRepository defines event and payment-definition reference data operations
type EventRepository interface {
	CreateEvent(ctx context.Context, organizationID int64, name, location, description string, date time.Time, categoryIDs []int64) (int64, error)
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	// ListEventsForCategories returns events sharing at least one of the given
	// categories, ordered by date then id. A nil slice means all events.
	ListEventsForCategories(ctx context.Context, categoryIDs []int64) ([]models.Event, error)
	CreatePaymentDefinition(ctx context.Context, eventID *int64, name string, dueDate time.Time) (int64, error)
	CreatePaymentItem(ctx context.Context, definitionID int64, name string, unitValueCents int64, quantityEnabled, required, isFixed bool) (int64, error)
	// GetEventPaymentDefinition returns the event's active payment definition
	// with items ordered by creation time, or ErrNotFound if the event has none.
	GetEventPaymentDefinition(ctx context.Context, eventID int64) (*models.PaymentDefinition, error)
}

// LedgerRepository defines the attendance and payment-ledger data operations.
// All upserts are single conditional statements so concurrent writers cannot
// produce duplicate rows or lost updates.
type LedgerRepository interface {
	GetAttendance(ctx context.Context, eventID, athleteID int64) (*models.Attendance, error)
	// ConfirmAttendance creates or updates the attendance for the pair,
	// setting confirmed and confirmed_at, and returns the attendance id.
	ConfirmAttendance(ctx context.Context, eventID, athleteID int64, confirmedAt time.Time) (int64, error)
	// EnsureAttendance creates the attendance as confirmed if it does not
	// exist; an existing row is left untouched. Returns the attendance id.
	EnsureAttendance(ctx context.Context, eventID, athleteID int64, confirmedAt time.Time) (int64, error)
	// CancelAttendance clears the confirmation flag and timestamp. Missing
	// rows are a no-op, not an error.
	CancelAttendance(ctx context.Context, eventID, athleteID int64) error

	GetLedgerEntry(ctx context.Context, attendanceID, paymentItemID int64) (*models.LedgerEntry, error)
	// UpsertConfirmedQuantity sets the entry's confirmed quantity, creating
	// the entry unpaid if absent.
	UpsertConfirmedQuantity(ctx context.Context, attendanceID, paymentItemID int64, quantity int) error
	// UpsertPaidQuantity marks the entry paid with the given quantity. The
	// confirmed quantity is backfilled only when its stored value is zero.
	UpsertPaidQuantity(ctx context.Context, attendanceID, paymentItemID int64, quantity int, paidAt time.Time) error
	DeleteLedgerEntry(ctx context.Context, attendanceID, paymentItemID int64) error

	ListAttendanceEntries(ctx context.Context, attendanceID int64) ([]models.LedgerEntry, error)
	ListEventAttendances(ctx context.Context, eventID int64) ([]models.Attendance, error)
	// ListEventLedgerRows returns every athlete-facing ledger entry for the
	// event joined with its item, fixed items excluded, ordered by item
	// creation then athlete.
	ListEventLedgerRows(ctx context.Context, eventID int64) ([]LedgerRow, error)
}

// LedgerRow is one event ledger entry joined with its payment item,
// as consumed by the analytics aggregator.
type LedgerRow struct {
	AthleteID         int64
	PaymentItemID     int64
	ItemName          string
	UnitValueCents    int64
	ConfirmedQuantity int
	PaidQuantity      int
	Paid              bool
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	OrganizationRepository
	AthleteRepository
	ManagerRepository
	EventRepository
	LedgerRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
