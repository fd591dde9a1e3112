package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "not found error", err: ErrOrderNotFound, want: true},
		{name: "wrapped not found", err: fmt.Errorf("order 5: %w", ErrOrderNotFound), want: true},
		{name: "other error", err: ErrStorageRead, want: false},
		{name: "nil error", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.want {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsStorageError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "read", err: fmt.Errorf("%w: boom", ErrStorageRead), want: true},
		{name: "format", err: errors.Join(ErrStorageFormat, errors.New("bad json")), want: true},
		{name: "write", err: ErrStorageWrite, want: true},
		{name: "not found", err: ErrOrderNotFound, want: false},
		{name: "nil error", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStorageError(tt.err); got != tt.want {
				t.Errorf("IsStorageError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := error(&ValidationError{Problems: []error{ErrTelRequired, ErrCakesRequired}})

	if !errors.Is(err, ErrValidation) {
		t.Fatal("expected ErrValidation")
	}
	if !errors.Is(err, ErrCakesRequired) {
		t.Fatal("expected ErrCakesRequired to be reachable")
	}
	if errors.Is(err, ErrEmailRequired) {
		t.Fatal("unexpected ErrEmailRequired")
	}
	want := "validation failed: tel is required; order must contain at least one cake"
	if err.Error() != want {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestTransitionError(t *testing.T) {
	err := ValidateTransition(OrderStatusHandedOver, OrderStatusReceived)

	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransitionError, got %T", err)
	}
	if te.From != OrderStatusHandedOver || te.To != OrderStatusReceived {
		t.Fatalf("unexpected transition %s -> %s", te.From, te.To)
	}
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatal("expected ErrInvalidTransition")
	}
}
