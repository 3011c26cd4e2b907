package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/teamops/teamledger/internal/logger"
	"github.com/teamops/teamledger/internal/models"
	"github.com/teamops/teamledger/internal/repository"
	"github.com/teamops/teamledger/internal/repository/mock"
	"github.com/teamops/teamledger/internal/services"
	"github.com/teamops/teamledger/internal/testutil"
)

// fixture is a seeded repository with the services wired on top of it.
// Event layout:
//
//	tournament (Under 15) — definition with fee (required), uniform and
//	  snacks (quantity-enabled), field rental (fixed)
//	camp (Under 17) — no payment definition
type fixture struct {
	repo           *mock.Repository
	reconciliation *services.ReconciliationService
	analytics      *services.AnalyticsService
	scopes         *services.ScopeService

	admin        models.CallerScope
	managerScope models.CallerScope

	catA, catB       int64
	tournament, camp int64
	fee, uniform     int64
	snacks, rental   int64
	ana, bruno       int64
	managerID        int64
	accessCode       string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	log := logger.NewWithWriter(io.Discard, slog.LevelError)
	repo := mock.NewRepository(testutil.NewTestRepository(t))

	real := repo.FullRepository.(*repository.Repository)
	orgID, err := real.CreateOrganization(ctx, "Riverside FC")
	if err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}
	catA, err := real.CreateCategory(ctx, orgID, "Under 15")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	catB, err := real.CreateCategory(ctx, orgID, "Under 17")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}

	tournament, err := real.CreateEvent(ctx, orgID, "Spring Tournament", "City Arena", "", time.Date(2026, 4, 12, 9, 0, 0, 0, time.UTC), []int64{catA})
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	camp, err := real.CreateEvent(ctx, orgID, "U17 Camp", "", "", time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC), []int64{catB})
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	defID, err := real.CreatePaymentDefinition(ctx, &tournament, "Spring Tournament fees", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("CreatePaymentDefinition failed: %v", err)
	}
	fee, err := real.CreatePaymentItem(ctx, defID, "Registration fee", 3000, false, true, false)
	if err != nil {
		t.Fatalf("CreatePaymentItem failed: %v", err)
	}
	uniform, err := real.CreatePaymentItem(ctx, defID, "Uniform", 5000, true, false, false)
	if err != nil {
		t.Fatalf("CreatePaymentItem failed: %v", err)
	}
	snacks, err := real.CreatePaymentItem(ctx, defID, "Snacks", 1000, true, false, false)
	if err != nil {
		t.Fatalf("CreatePaymentItem failed: %v", err)
	}
	rental, err := real.CreatePaymentItem(ctx, defID, "Field rental", 20000, false, false, true)
	if err != nil {
		t.Fatalf("CreatePaymentItem failed: %v", err)
	}

	ana, err := real.CreateAthlete(ctx, "Ana Souza", "ana@example.com")
	if err != nil {
		t.Fatalf("CreateAthlete failed: %v", err)
	}
	if err := real.AssignAthleteCategory(ctx, ana, catA); err != nil {
		t.Fatalf("AssignAthleteCategory failed: %v", err)
	}
	bruno, err := real.CreateAthlete(ctx, "Bruno Lima", "")
	if err != nil {
		t.Fatalf("CreateAthlete failed: %v", err)
	}
	if err := real.AssignAthleteCategory(ctx, bruno, catB); err != nil {
		t.Fatalf("AssignAthleteCategory failed: %v", err)
	}

	accessCode := "MG-4411"
	managerID, err := real.CreateManager(ctx, "Marcos Silva", accessCode)
	if err != nil {
		t.Fatalf("CreateManager failed: %v", err)
	}
	if err := real.AssignManagerCategory(ctx, managerID, catA); err != nil {
		t.Fatalf("AssignManagerCategory failed: %v", err)
	}

	return &fixture{
		repo:           repo,
		reconciliation: services.NewReconciliationService(log, repo),
		analytics:      services.NewAnalyticsService(log, repo),
		scopes:         services.NewScopeService(log, repo),
		admin:          models.CallerScope{Role: models.RoleAdmin},
		managerScope: models.CallerScope{
			Role:        models.RoleManager,
			ManagerID:   managerID,
			CategoryIDs: []int64{catA},
		},
		catA:       catA,
		catB:       catB,
		tournament: tournament,
		camp:       camp,
		fee:        fee,
		uniform:    uniform,
		snacks:     snacks,
		rental:     rental,
		ana:        ana,
		bruno:      bruno,
		managerID:  managerID,
		accessCode: accessCode,
	}
}

// entry fetches the ledger entry for (event, athlete, item), failing the test
// when the attendance is missing
func (f *fixture) entry(t *testing.T, eventID, athleteID, itemID int64) *models.LedgerEntry {
	t.Helper()
	ctx := context.Background()
	attendance, err := f.repo.GetAttendance(ctx, eventID, athleteID)
	if err != nil {
		t.Fatalf("GetAttendance failed: %v", err)
	}
	e, err := f.repo.GetLedgerEntry(ctx, attendance.ID, itemID)
	if err != nil {
		t.Fatalf("GetLedgerEntry failed: %v", err)
	}
	return e
}
