package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/teamops/teamledger/internal/errors"
	"github.com/teamops/teamledger/internal/logger"
	"github.com/teamops/teamledger/internal/models"
	"github.com/teamops/teamledger/internal/repository"
)

// ReconciliationServiceRepository defines the repository methods needed by
// ReconciliationService
type ReconciliationServiceRepository interface {
	repository.EventRepository
	repository.LedgerRepository
}

// Broadcaster pushes messages to connected dashboard clients
type Broadcaster interface {
	Broadcast(msg models.WSMessage)
}

// ItemQuantity is one (payment item, quantity) pair supplied by a caller
type ItemQuantity struct {
	PaymentItemID int64 `json:"payment_item_id"`
	Quantity      int   `json:"quantity"`
}

// ReconciliationService is the single writer of the attendance and payment
// ledger. It enforces the per-pair uniqueness invariants through atomic
// repository upserts and gates every operation on the caller's category
// scope before any mutation.
type ReconciliationService struct {
	log         logger.Logger
	repo        ReconciliationServiceRepository
	broadcaster Broadcaster
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(log logger.Logger, repo ReconciliationServiceRepository) *ReconciliationService {
	return &ReconciliationService{log: log, repo: repo}
}

// SetBroadcaster wires the hub that receives summary-invalidation messages
func (s *ReconciliationService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// authorizeEvent loads the event and checks it against the caller's scope.
// Both checks happen before any write.
func (s *ReconciliationService) authorizeEvent(ctx context.Context, scope models.CallerScope, eventID int64) (*models.Event, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NotFoundf("event %d not found", eventID)
	}
	if err != nil {
		return nil, err
	}
	if !scope.Allows(event.CategoryIDs) {
		return nil, errors.Authorizationf("caller has no authorized category for event %d", eventID)
	}
	return event, nil
}

// validateQuantities rejects negative quantities before any write
func validateQuantities(items []ItemQuantity) error {
	for _, item := range items {
		if item.Quantity < 0 {
			return errors.Validationf("negative quantity %d for payment item %d", item.Quantity, item.PaymentItemID)
		}
	}
	return nil
}

// quantityByItem indexes the supplied pairs by item id. A later duplicate
// for the same item wins.
func quantityByItem(items []ItemQuantity) map[int64]int {
	quantities := make(map[int64]int, len(items))
	for _, item := range items {
		quantities[item.PaymentItemID] = item.Quantity
	}
	return quantities
}

// ConfirmAttendance marks the athlete as confirmed for the event and applies
// the supplied item quantities to the athlete's ledger. The attendance upsert
// is a single conditional write, so concurrent confirmations for a new pair
// still end with exactly one row. The operation is idempotent.
//
// Per-item updates are applied independently; a failure partway through
// leaves earlier items applied and later ones untouched.
func (s *ReconciliationService) ConfirmAttendance(ctx context.Context, scope models.CallerScope, eventID, athleteID int64, items []ItemQuantity) error {
	if err := validateQuantities(items); err != nil {
		return err
	}
	if _, err := s.authorizeEvent(ctx, scope, eventID); err != nil {
		return err
	}

	attendanceID, err := s.repo.ConfirmAttendance(ctx, eventID, athleteID, time.Now())
	if err != nil {
		return err
	}

	if len(items) > 0 {
		if err := s.applyConfirmedItems(ctx, eventID, attendanceID, items); err != nil {
			return err
		}
	}

	s.log.Info("attendance confirmed", "event_id", eventID, "athlete_id", athleteID, "items", len(items))
	s.invalidateSummaries(eventID)
	return nil
}

// applyConfirmedItems walks the event's payment definition in item order and
// upserts or withdraws the athlete's confirmed quantities. Events without a
// payment definition accept the confirmation and ignore the items.
func (s *ReconciliationService) applyConfirmedItems(ctx context.Context, eventID, attendanceID int64, items []ItemQuantity) error {
	definition, err := s.repo.GetEventPaymentDefinition(ctx, eventID)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	quantities := quantityByItem(items)
	for _, item := range definition.Items {
		if item.IsFixed {
			// organizational overhead, never on an athlete's ledger
			continue
		}
		quantity := quantities[item.ID]
		if item.Required && quantity < 1 {
			// required-item enforcement is advisory here: the confirmation
			// goes through and the item is simply not recorded
			s.log.Debug("required item skipped at confirmation",
				"payment_item_id", item.ID, "attendance_id", attendanceID)
			continue
		}
		if quantity > 0 {
			if err := s.repo.UpsertConfirmedQuantity(ctx, attendanceID, item.ID, quantity); err != nil {
				return err
			}
			continue
		}
		// zero quantity on an optional item withdraws the confirmation
		if err := s.repo.DeleteLedgerEntry(ctx, attendanceID, item.ID); err != nil {
			return err
		}
	}
	return nil
}

// CancelAttendance clears the athlete's confirmation for the event. Ledger
// entries are deliberately untouched: a cancelled attendance keeps its
// confirmed and paid history. Cancelling a pair with no attendance is a
// no-op.
func (s *ReconciliationService) CancelAttendance(ctx context.Context, scope models.CallerScope, eventID, athleteID int64) error {
	if _, err := s.authorizeEvent(ctx, scope, eventID); err != nil {
		return err
	}

	if err := s.repo.CancelAttendance(ctx, eventID, athleteID); err != nil {
		return err
	}

	s.log.Info("attendance cancelled", "event_id", eventID, "athlete_id", athleteID)
	s.invalidateSummaries(eventID)
	return nil
}

// RegisterPayment records paid quantities for the supplied items. An absent
// attendance is created confirmed, since a payment implies participation; an
// existing attendance is left as found. For each item the paid quantity is
// set and the confirmed quantity backfilled only if it was zero, so
// "confirmed" stays a floor rather than a mirror of "paid". Payments are
// never reduced or cleared by this service.
func (s *ReconciliationService) RegisterPayment(ctx context.Context, scope models.CallerScope, eventID, athleteID int64, items []ItemQuantity) error {
	if len(items) == 0 {
		return ErrNoItemsSupplied
	}
	if err := validateQuantities(items); err != nil {
		return err
	}
	if _, err := s.authorizeEvent(ctx, scope, eventID); err != nil {
		return err
	}

	definition, err := s.repo.GetEventPaymentDefinition(ctx, eventID)
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NotFoundf("event %d has no payment definition", eventID)
	}
	if err != nil {
		return err
	}

	now := time.Now()
	attendanceID, err := s.repo.EnsureAttendance(ctx, eventID, athleteID, now)
	if err != nil {
		return err
	}

	quantities := quantityByItem(items)
	for _, item := range definition.Items {
		if item.IsFixed {
			continue
		}
		quantity := quantities[item.ID]
		if quantity <= 0 {
			// items not supplied, or supplied with zero, are left unchanged
			continue
		}
		if err := s.repo.UpsertPaidQuantity(ctx, attendanceID, item.ID, quantity, now); err != nil {
			return err
		}
	}

	s.log.Info("payment registered", "event_id", eventID, "athlete_id", athleteID, "items", len(items))
	s.invalidateSummaries(eventID)
	return nil
}

// invalidateSummaries tells connected dashboards that cached summary views
// for the event are stale
func (s *ReconciliationService) invalidateSummaries(eventID int64) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast(models.WSMessage{
		Type: "event_summary_invalidated",
		Payload: map[string]interface{}{
			"event_id": eventID,
		},
	})
}
