package services_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/teamops/teamledger/internal/errors"
	"github.com/teamops/teamledger/internal/models"
	"github.com/teamops/teamledger/internal/services"
)

func TestResolveAccessCode_ReturnsManager(t *testing.T) {
	f := newFixture(t)

	manager, err := f.scopes.ResolveAccessCode(context.Background(), f.accessCode)
	if err != nil {
		t.Fatalf("ResolveAccessCode failed: %v", err)
	}
	if manager.ID != f.managerID {
		t.Errorf("expected manager %d, got %d", f.managerID, manager.ID)
	}
	if manager.Name != "Marcos Silva" {
		t.Errorf("unexpected manager name %q", manager.Name)
	}
}

func TestResolveAccessCode_InvalidCode(t *testing.T) {
	f := newFixture(t)

	if _, err := f.scopes.ResolveAccessCode(context.Background(), "NO-SUCH-CODE"); !stderrors.Is(err, services.ErrInvalidAccessCode) {
		t.Fatalf("expected ErrInvalidAccessCode, got %v", err)
	}
}

func TestResolveScope_Admin(t *testing.T) {
	f := newFixture(t)

	scope, err := f.scopes.ResolveScope(context.Background(), models.RoleAdmin, 0)
	if err != nil {
		t.Fatalf("ResolveScope failed: %v", err)
	}
	if !scope.Admin() {
		t.Error("expected an admin scope")
	}
	if !scope.Allows([]int64{f.catA, f.catB}) || !scope.Allows([]int64{9999}) {
		t.Error("admin scope must allow every category")
	}
}

func TestResolveScope_Manager(t *testing.T) {
	f := newFixture(t)

	scope, err := f.scopes.ResolveScope(context.Background(), models.RoleManager, f.managerID)
	if err != nil {
		t.Fatalf("ResolveScope failed: %v", err)
	}
	if scope.Admin() {
		t.Error("manager scope must not be admin")
	}
	if !scope.Allows([]int64{f.catA}) {
		t.Error("expected the assigned category to be allowed")
	}
	if scope.Allows([]int64{f.catB}) {
		t.Error("unassigned category must be denied")
	}
	if scope.Allows(nil) {
		t.Error("an event with no categories must be denied to managers")
	}
}

func TestResolveScope_UnknownRole(t *testing.T) {
	f := newFixture(t)

	if _, err := f.scopes.ResolveScope(context.Background(), "viewer", 0); errors.KindOf(err) != errors.ErrAuthorization {
		t.Fatalf("expected authorization error, got %v", err)
	}
}
