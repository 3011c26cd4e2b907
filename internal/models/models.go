package models

import "time"

// Organization represents a club or association that owns events and categories
type Organization struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Category represents a team category (age group, squad, division)
type Category struct {
	ID             int64  `json:"id"`
	OrganizationID int64  `json:"organization_id"`
	Name           string `json:"name"`
}

// Athlete represents a registered athlete
type Athlete struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email,omitempty"`
	CategoryIDs []int64 `json:"category_ids,omitempty"`
}

// Manager represents a staff member authorized for a set of categories
type Manager struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	AccessCode  string  `json:"-"`
	CategoryIDs []int64 `json:"category_ids,omitempty"`
}

// Event represents a match, trip or training session. Read-only from the
// reconciliation engine's perspective.
type Event struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Name           string    `json:"name"`
	Location       string    `json:"location"`
	Description    string    `json:"description,omitempty"`
	Date           time.Time `json:"date"`
	CategoryIDs    []int64   `json:"category_ids"`
}

// PaymentDefinition groups the chargeable items attached to an event
type PaymentDefinition struct {
	ID      int64         `json:"id"`
	EventID *int64        `json:"event_id,omitempty"`
	Name    string        `json:"name"`
	DueDate time.Time     `json:"due_date"`
	Items   []PaymentItem `json:"items"`
}

// PaymentItem is one chargeable item within a payment definition.
// UnitValueCents is an exact integer amount in cents.
type PaymentItem struct {
	ID              int64  `json:"id"`
	DefinitionID    int64  `json:"definition_id"`
	Name            string `json:"name"`
	UnitValueCents  int64  `json:"unit_value_cents"`
	QuantityEnabled bool   `json:"quantity_enabled"`
	Required        bool   `json:"required"`
	// IsFixed marks organizational overhead items that never appear in
	// athlete-facing ledgers.
	IsFixed bool `json:"is_fixed"`
}

// Attendance records one athlete's confirmation status for one event.
// At most one row exists per (event, athlete) pair.
type Attendance struct {
	ID          int64      `json:"id"`
	EventID     int64      `json:"event_id"`
	AthleteID   int64      `json:"athlete_id"`
	Confirmed   bool       `json:"confirmed"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

// LedgerEntry records one athlete's confirmed and paid quantities for one
// payment item within one attendance. At most one row exists per
// (attendance, item) pair.
type LedgerEntry struct {
	ID                int64      `json:"id"`
	AttendanceID      int64      `json:"attendance_id"`
	PaymentItemID     int64      `json:"payment_item_id"`
	ConfirmedQuantity int        `json:"confirmed_quantity"`
	PaidQuantity      int        `json:"paid_quantity"`
	Paid              bool       `json:"paid"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
}

// Discrepant reports whether the entry's paid quantity disagrees with its
// confirmed quantity. Entries that were never confirmed nor paid are not
// discrepant.
func (e LedgerEntry) Discrepant() bool {
	if e.ConfirmedQuantity == 0 && e.PaidQuantity == 0 {
		return false
	}
	return e.PaidQuantity != e.ConfirmedQuantity
}

// Caller roles
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

// CallerScope is the resolved authorization context for one call. It is
// always passed explicitly into service operations, never read from
// ambient state.
type CallerScope struct {
	Role        string  `json:"role"`
	ManagerID   int64   `json:"manager_id,omitempty"`
	CategoryIDs []int64 `json:"category_ids"`
}

// Admin reports whether the scope bypasses category checks
func (s CallerScope) Admin() bool {
	return s.Role == RoleAdmin
}

// Allows reports whether the scope covers at least one of the given
// category ids.
func (s CallerScope) Allows(categoryIDs []int64) bool {
	if s.Admin() {
		return true
	}
	for _, want := range categoryIDs {
		for _, have := range s.CategoryIDs {
			if want == have {
				return true
			}
		}
	}
	return false
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
