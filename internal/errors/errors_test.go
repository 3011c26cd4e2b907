package errors

import (
	stderrors "errors"
	"testing"
)

func TestConstructorsSetKind(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind Kind
	}{
		{"not found", NotFound("event not found"), ErrNotFound},
		{"not found formatted", NotFoundf("event %d not found", 7), ErrNotFound},
		{"validation", Validation("bad quantity"), ErrValidation},
		{"validation formatted", Validationf("negative quantity %d", -1), ErrValidation},
		{"authorization", Authorization("denied"), ErrAuthorization},
		{"authorization formatted", Authorizationf("unknown role %q", "x"), ErrAuthorization},
		{"internal", Internal(stderrors.New("boom")), ErrInternal},
		{"internal formatted", Internalf("bad state %d", 2), ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("expected kind %d, got %d", tt.kind, tt.err.Kind)
			}
			if tt.err.Error() == "" {
				t.Error("expected a non-empty message")
			}
		})
	}
}

func TestErrorMessageIncludesWrapped(t *testing.T) {
	inner := stderrors.New("disk full")
	err := Wrap(inner, ErrInternal, "saving entry")

	if got := err.Error(); got != "saving entry: disk full" {
		t.Errorf("unexpected message %q", got)
	}
	if !stderrors.Is(err, inner) {
		t.Error("expected wrapped error to unwrap")
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(NotFound("x")) != ErrNotFound {
		t.Error("expected ErrNotFound")
	}
	if KindOf(stderrors.New("plain")) != ErrInternal {
		t.Error("expected plain errors to map to ErrInternal")
	}
}
