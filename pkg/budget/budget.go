// Package budget bounds search effort by step count and wall-clock time.
//
// Every search loop in the analysis (augmenting paths, backtracking,
// closure rounds) owns a [Meter] and calls [Meter.Tick] once per unit of
// work. Tick returns a *errors.BudgetExceededError once the step limit or
// the deadline is reached, and the caller's context error if the caller
// cancelled.
package budget

import (
	"context"
	"time"

	qerrors "github.com/matzehuels/qreuse/pkg/errors"
)

// Limits configures a Meter. Zero values mean unlimited.
type Limits struct {
	MaxSteps int64
	Timeout  time.Duration
}

// DefaultLimits are used by the CLI and server when no configuration is
// given.
var DefaultLimits = Limits{MaxSteps: 5_000_000, Timeout: 30 * time.Second}

// checkEvery is how many ticks pass between context polls. The first tick
// always polls.
const checkEvery = 1024

// Meter counts steps for one stage of a search. It is not safe for
// concurrent use; give each goroutine its own Meter.
type Meter struct {
	ctx      context.Context
	stage    string
	limit    int64
	deadline time.Time
	steps    int64
}

// NewMeter returns a meter for stage. A zero Timeout leaves only the
// context's own deadline, if any.
func NewMeter(ctx context.Context, stage string, l Limits) *Meter {
	m := &Meter{ctx: ctx, stage: stage, limit: l.MaxSteps}
	if l.Timeout > 0 {
		m.deadline = time.Now().Add(l.Timeout)
	}
	return m
}

// Tick records one step.
func (m *Meter) Tick() error {
	m.steps++
	if m.limit > 0 && m.steps > m.limit {
		return &qerrors.BudgetExceededError{Stage: m.stage, Steps: m.steps - 1, Limit: m.limit}
	}
	if m.steps != 1 && m.steps%checkEvery != 0 {
		return nil
	}
	return m.poll()
}

// Check polls the context and deadline without consuming a step.
func (m *Meter) Check() error { return m.poll() }

func (m *Meter) poll() error {
	if err := m.ctx.Err(); err != nil {
		if err == context.DeadlineExceeded {
			return &qerrors.BudgetExceededError{Stage: m.stage, Steps: m.steps}
		}
		return err
	}
	if !m.deadline.IsZero() && time.Now().After(m.deadline) {
		return &qerrors.BudgetExceededError{Stage: m.stage, Steps: m.steps}
	}
	return nil
}

// Steps returns the number of steps recorded so far.
func (m *Meter) Steps() int64 { return m.steps }

// Stage returns the stage label.
func (m *Meter) Stage() string { return m.stage }
