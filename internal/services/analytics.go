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

// AnalyticsServiceRepository defines the repository methods needed by
// AnalyticsService
type AnalyticsServiceRepository interface {
	repository.OrganizationRepository
	repository.AthleteRepository
	repository.EventRepository
	repository.LedgerRepository
}

// AnalyticsService produces event-level financial and participation
// summaries from the ledger. It is strictly read-only: summaries are
// recomputed on every call and are not transactional against concurrent
// reconciliation writes, so a summary may reflect a partially-applied
// multi-item request that races it.
type AnalyticsService struct {
	log  logger.Logger
	repo AnalyticsServiceRepository
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(log logger.Logger, repo AnalyticsServiceRepository) *AnalyticsService {
	return &AnalyticsService{log: log, repo: repo}
}

// ItemPaidTotal is the summed paid quantity for one payment item across an
// event
type ItemPaidTotal struct {
	PaymentItemID int64  `json:"payment_item_id"`
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
}

// AthleteItem is one athlete's ledger position against one payment item
type AthleteItem struct {
	PaymentItemID     int64  `json:"payment_item_id"`
	Name              string `json:"name"`
	ConfirmedQuantity int    `json:"confirmed_quantity"`
	PaidQuantity      int    `json:"paid_quantity"`
	Paid              bool   `json:"paid"`
	Discrepant        bool   `json:"discrepant"`
}

// AthleteSummary is one eligible athlete's participation and payment state
// for an event
type AthleteSummary struct {
	AthleteID int64         `json:"athlete_id"`
	Name      string        `json:"name"`
	Confirmed bool          `json:"confirmed"`
	Paid      bool          `json:"paid"`
	PaidItems []AthleteItem `json:"paid_items"`
	Items     []AthleteItem `json:"items"`
}

// EventSummary is the per-event analytics DTO
type EventSummary struct {
	EventID            int64            `json:"event_id"`
	Name               string           `json:"name"`
	Location           string           `json:"location"`
	Date               time.Time        `json:"date"`
	Categories         []string         `json:"categories"`
	ConfirmedCount     int              `json:"confirmed_count"`
	PaidCount          int              `json:"paid_count"`
	TotalReceivedCents int64            `json:"total_received_cents"`
	ItemsPaid          []ItemPaidTotal  `json:"items_paid"`
	Athletes           []AthleteSummary `json:"athletes"`
}

// ListEvents returns the events visible in the caller's scope ordered by
// date
func (s *AnalyticsService) ListEvents(ctx context.Context, scope models.CallerScope) ([]models.Event, error) {
	var categoryFilter []int64
	if !scope.Admin() {
		categoryFilter = scope.CategoryIDs
		if categoryFilter == nil {
			categoryFilter = []int64{}
		}
	}
	return s.repo.ListEventsForCategories(ctx, categoryFilter)
}

// EventPaymentDefinition returns the event's payment definition with fixed
// items stripped, the athlete-facing view. The caller must be scoped to the
// event.
func (s *AnalyticsService) EventPaymentDefinition(ctx context.Context, scope models.CallerScope, eventID int64) (*models.PaymentDefinition, error) {
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

	definition, err := s.repo.GetEventPaymentDefinition(ctx, eventID)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NotFoundf("event %d has no payment definition", eventID)
	}
	if err != nil {
		return nil, err
	}

	visible := definition.Items[:0]
	for _, item := range definition.Items {
		if !item.IsFixed {
			visible = append(visible, item)
		}
	}
	definition.Items = visible
	return definition, nil
}

// SummarizeEvents builds summaries for every event visible in the caller's
// scope, ordered by event date. The read is restartable: no cursor state is
// held between calls.
func (s *AnalyticsService) SummarizeEvents(ctx context.Context, scope models.CallerScope) ([]EventSummary, error) {
	var categoryFilter []int64
	if !scope.Admin() {
		categoryFilter = scope.CategoryIDs
		if categoryFilter == nil {
			categoryFilter = []int64{}
		}
	}

	events, err := s.repo.ListEventsForCategories(ctx, categoryFilter)
	if err != nil {
		return nil, err
	}

	summaries := make([]EventSummary, 0, len(events))
	categoryNames := make(map[int64]string)
	for _, event := range events {
		if err := s.loadCategoryNames(ctx, event.OrganizationID, categoryNames); err != nil {
			return nil, err
		}
		summary, err := s.summarizeEvent(ctx, scope, event, categoryNames)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// loadCategoryNames fills the name cache for an organization's categories
func (s *AnalyticsService) loadCategoryNames(ctx context.Context, organizationID int64, names map[int64]string) error {
	categories, err := s.repo.ListCategories(ctx, organizationID)
	if err != nil {
		return err
	}
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return nil
}

func (s *AnalyticsService) summarizeEvent(ctx context.Context, scope models.CallerScope, event models.Event, categoryNames map[int64]string) (*EventSummary, error) {
	attendances, err := s.repo.ListEventAttendances(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListEventLedgerRows(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	athletes, err := s.repo.ListEligibleAthletes(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	summary := &EventSummary{
		EventID:   event.ID,
		Name:      event.Name,
		Location:  event.Location,
		Date:      event.Date,
		ItemsPaid: []ItemPaidTotal{},
		Athletes:  []AthleteSummary{},
	}
	for _, catID := range event.CategoryIDs {
		summary.Categories = append(summary.Categories, categoryNames[catID])
	}

	confirmedBy := make(map[int64]bool)
	for _, a := range attendances {
		if a.Confirmed {
			confirmedBy[a.AthleteID] = true
			summary.ConfirmedCount++
		}
	}

	// Money always comes from paid quantities; confirmed quantities are a
	// participation signal only.
	paidAthletes := make(map[int64]bool)
	itemTotals := make(map[int64]int)
	rowsByAthlete := make(map[int64][]repository.LedgerRow)
	for _, row := range rows {
		rowsByAthlete[row.AthleteID] = append(rowsByAthlete[row.AthleteID], row)
		if !row.Paid {
			continue
		}
		if !paidAthletes[row.AthleteID] {
			paidAthletes[row.AthleteID] = true
			summary.PaidCount++
		}
		summary.TotalReceivedCents += row.UnitValueCents * int64(row.PaidQuantity)
		if _, seen := itemTotals[row.PaymentItemID]; !seen {
			summary.ItemsPaid = append(summary.ItemsPaid, ItemPaidTotal{
				PaymentItemID: row.PaymentItemID,
				Name:          row.ItemName,
			})
		}
		itemTotals[row.PaymentItemID] += row.PaidQuantity
	}
	for i := range summary.ItemsPaid {
		summary.ItemsPaid[i].Quantity = itemTotals[summary.ItemsPaid[i].PaymentItemID]
	}

	for _, athlete := range athletes {
		// eligibility is category overlap with the event; the caller only
		// sees athletes inside their own scope
		if !scope.Allows(athlete.CategoryIDs) {
			continue
		}
		summary.Athletes = append(summary.Athletes, buildAthleteSummary(athlete, confirmedBy[athlete.ID], rowsByAthlete[athlete.ID]))
	}
	return summary, nil
}

func buildAthleteSummary(athlete models.Athlete, confirmed bool, rows []repository.LedgerRow) AthleteSummary {
	summary := AthleteSummary{
		AthleteID: athlete.ID,
		Name:      athlete.Name,
		Confirmed: confirmed,
		PaidItems: []AthleteItem{},
		Items:     []AthleteItem{},
	}
	for _, row := range rows {
		if row.ConfirmedQuantity == 0 && row.PaidQuantity == 0 {
			continue
		}
		item := AthleteItem{
			PaymentItemID:     row.PaymentItemID,
			Name:              row.ItemName,
			ConfirmedQuantity: row.ConfirmedQuantity,
			PaidQuantity:      row.PaidQuantity,
			Paid:              row.Paid,
			Discrepant:        row.PaidQuantity != row.ConfirmedQuantity,
		}
		summary.Items = append(summary.Items, item)
		if row.Paid {
			summary.Paid = true
			summary.PaidItems = append(summary.PaidItems, item)
		}
	}
	return summary
}
