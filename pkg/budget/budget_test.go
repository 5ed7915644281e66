package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	qerrors "github.com/matzehuels/qreuse/pkg/errors"
)

func TestMeter_StepLimit(t *testing.T) {
	m := NewMeter(context.Background(), "graph", Limits{MaxSteps: 3})
	for i := range 3 {
		if err := m.Tick(); err != nil {
			t.Fatalf("Tick() %d error: %v", i, err)
		}
	}
	err := m.Tick()
	var be *qerrors.BudgetExceededError
	if !errors.As(err, &be) {
		t.Fatalf("Tick() error = %v, want BudgetExceededError", err)
	}
	if be.Stage != "graph" || be.Limit != 3 || be.Steps != 3 {
		t.Errorf("got %+v", be)
	}
}

func TestMeter_Unlimited(t *testing.T) {
	m := NewMeter(context.Background(), "x", Limits{})
	for range 10 * checkEvery {
		if err := m.Tick(); err != nil {
			t.Fatalf("Tick() error: %v", err)
		}
	}
	if m.Steps() != 10*checkEvery {
		t.Errorf("Steps() = %d", m.Steps())
	}
}

func TestMeter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMeter(ctx, "x", Limits{})
	if err := m.Check(); !errors.Is(err, context.Canceled) {
		t.Errorf("Check() error = %v, want context.Canceled", err)
	}
}

func TestMeter_FirstTickPolls(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMeter(ctx, "x", Limits{})
	if err := m.Tick(); !errors.Is(err, context.Canceled) {
		t.Errorf("first Tick() error = %v, want context.Canceled", err)
	}
}

func TestMeter_Deadline(t *testing.T) {
	m := NewMeter(context.Background(), "mrv", Limits{Timeout: time.Nanosecond})
	time.Sleep(time.Millisecond)
	err := m.Check()
	if !qerrors.Is(err, qerrors.ErrCodeBudgetExceeded) {
		t.Errorf("Check() error = %v, want BUDGET_EXCEEDED", err)
	}
}

func TestMeter_ContextDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)
	m := NewMeter(ctx, "x", Limits{})
	if err := m.Check(); !qerrors.Is(err, qerrors.ErrCodeBudgetExceeded) {
		t.Errorf("Check() error = %v, want BUDGET_EXCEEDED", err)
	}
}
