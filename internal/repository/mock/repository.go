package mock

import (
	"context"
	"sync"
	"time"

	"github.com/teamops/teamledger/internal/models"
	"github.com/teamops/teamledger/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database
// manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.ConfirmAttendanceError = errors.New("database error")
//	svc := services.NewReconciliationService(log, mockRepo)
//	err := svc.ConfirmAttendance(ctx, scope, eventID, athleteID, nil)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Event Errors =====
	GetEventError                  error
	ListEventsForCategoriesError   error
	GetEventPaymentDefinitionError error

	// ===== Athlete Errors =====
	GetAthleteError           error
	ListEligibleAthletesError error

	// ===== Manager Errors =====
	GetManagerByAccessCodeError error
	ListManagerCategoryIDsError error

	// ===== Attendance Errors =====
	GetAttendanceError     error
	ConfirmAttendanceError error
	EnsureAttendanceError  error
	CancelAttendanceError  error

	// ===== Ledger Errors =====
	GetLedgerEntryError          error
	UpsertConfirmedQuantityError error
	UpsertPaidQuantityError      error
	DeleteLedgerEntryError       error
	ListAttendanceEntriesError   error
	ListEventAttendancesError    error
	ListEventLedgerRowsError     error

	// FailAfter counters: when > 0, the corresponding method succeeds that
	// many times and fails with the configured error afterwards. Used to
	// drive mid-request failures in multi-item operations.
	UpsertConfirmedQuantityFailAfter int
	UpsertPaidQuantityFailAfter      int

	mu               sync.Mutex
	confirmedUpserts int
	paidUpserts      int
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

func (m *Repository) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	if m.GetEventError != nil {
		return nil, m.GetEventError
	}
	return m.FullRepository.GetEvent(ctx, id)
}

func (m *Repository) ListEventsForCategories(ctx context.Context, categoryIDs []int64) ([]models.Event, error) {
	if m.ListEventsForCategoriesError != nil {
		return nil, m.ListEventsForCategoriesError
	}
	return m.FullRepository.ListEventsForCategories(ctx, categoryIDs)
}

func (m *Repository) GetEventPaymentDefinition(ctx context.Context, eventID int64) (*models.PaymentDefinition, error) {
	if m.GetEventPaymentDefinitionError != nil {
		return nil, m.GetEventPaymentDefinitionError
	}
	return m.FullRepository.GetEventPaymentDefinition(ctx, eventID)
}

func (m *Repository) GetAthlete(ctx context.Context, id int64) (*models.Athlete, error) {
	if m.GetAthleteError != nil {
		return nil, m.GetAthleteError
	}
	return m.FullRepository.GetAthlete(ctx, id)
}

func (m *Repository) ListEligibleAthletes(ctx context.Context, eventID int64) ([]models.Athlete, error) {
	if m.ListEligibleAthletesError != nil {
		return nil, m.ListEligibleAthletesError
	}
	return m.FullRepository.ListEligibleAthletes(ctx, eventID)
}

func (m *Repository) GetManagerByAccessCode(ctx context.Context, accessCode string) (*models.Manager, error) {
	if m.GetManagerByAccessCodeError != nil {
		return nil, m.GetManagerByAccessCodeError
	}
	return m.FullRepository.GetManagerByAccessCode(ctx, accessCode)
}

func (m *Repository) ListManagerCategoryIDs(ctx context.Context, managerID int64) ([]int64, error) {
	if m.ListManagerCategoryIDsError != nil {
		return nil, m.ListManagerCategoryIDsError
	}
	return m.FullRepository.ListManagerCategoryIDs(ctx, managerID)
}

func (m *Repository) GetAttendance(ctx context.Context, eventID, athleteID int64) (*models.Attendance, error) {
	if m.GetAttendanceError != nil {
		return nil, m.GetAttendanceError
	}
	return m.FullRepository.GetAttendance(ctx, eventID, athleteID)
}

func (m *Repository) ConfirmAttendance(ctx context.Context, eventID, athleteID int64, confirmedAt time.Time) (int64, error) {
	if m.ConfirmAttendanceError != nil {
		return 0, m.ConfirmAttendanceError
	}
	return m.FullRepository.ConfirmAttendance(ctx, eventID, athleteID, confirmedAt)
}

func (m *Repository) EnsureAttendance(ctx context.Context, eventID, athleteID int64, confirmedAt time.Time) (int64, error) {
	if m.EnsureAttendanceError != nil {
		return 0, m.EnsureAttendanceError
	}
	return m.FullRepository.EnsureAttendance(ctx, eventID, athleteID, confirmedAt)
}

func (m *Repository) CancelAttendance(ctx context.Context, eventID, athleteID int64) error {
	if m.CancelAttendanceError != nil {
		return m.CancelAttendanceError
	}
	return m.FullRepository.CancelAttendance(ctx, eventID, athleteID)
}

func (m *Repository) GetLedgerEntry(ctx context.Context, attendanceID, paymentItemID int64) (*models.LedgerEntry, error) {
	if m.GetLedgerEntryError != nil {
		return nil, m.GetLedgerEntryError
	}
	return m.FullRepository.GetLedgerEntry(ctx, attendanceID, paymentItemID)
}

func (m *Repository) UpsertConfirmedQuantity(ctx context.Context, attendanceID, paymentItemID int64, quantity int) error {
	m.mu.Lock()
	if m.UpsertConfirmedQuantityError != nil {
		if m.UpsertConfirmedQuantityFailAfter <= 0 || m.confirmedUpserts >= m.UpsertConfirmedQuantityFailAfter {
			m.mu.Unlock()
			return m.UpsertConfirmedQuantityError
		}
	}
	m.confirmedUpserts++
	m.mu.Unlock()
	return m.FullRepository.UpsertConfirmedQuantity(ctx, attendanceID, paymentItemID, quantity)
}

func (m *Repository) UpsertPaidQuantity(ctx context.Context, attendanceID, paymentItemID int64, quantity int, paidAt time.Time) error {
	m.mu.Lock()
	if m.UpsertPaidQuantityError != nil {
		if m.UpsertPaidQuantityFailAfter <= 0 || m.paidUpserts >= m.UpsertPaidQuantityFailAfter {
			m.mu.Unlock()
			return m.UpsertPaidQuantityError
		}
	}
	m.paidUpserts++
	m.mu.Unlock()
	return m.FullRepository.UpsertPaidQuantity(ctx, attendanceID, paymentItemID, quantity, paidAt)
}

func (m *Repository) DeleteLedgerEntry(ctx context.Context, attendanceID, paymentItemID int64) error {
	if m.DeleteLedgerEntryError != nil {
		return m.DeleteLedgerEntryError
	}
	return m.FullRepository.DeleteLedgerEntry(ctx, attendanceID, paymentItemID)
}

func (m *Repository) ListAttendanceEntries(ctx context.Context, attendanceID int64) ([]models.LedgerEntry, error) {
	if m.ListAttendanceEntriesError != nil {
		return nil, m.ListAttendanceEntriesError
	}
	return m.FullRepository.ListAttendanceEntries(ctx, attendanceID)
}

func (m *Repository) ListEventAttendances(ctx context.Context, eventID int64) ([]models.Attendance, error) {
	if m.ListEventAttendancesError != nil {
		return nil, m.ListEventAttendancesError
	}
	return m.FullRepository.ListEventAttendances(ctx, eventID)
}

func (m *Repository) ListEventLedgerRows(ctx context.Context, eventID int64) ([]repository.LedgerRow, error) {
	if m.ListEventLedgerRowsError != nil {
		return nil, m.ListEventLedgerRowsError
	}
	return m.FullRepository.ListEventLedgerRows(ctx, eventID)
}

// Ensure the mock still satisfies the full repository surface
var _ repository.FullRepository = (*Repository)(nil)
