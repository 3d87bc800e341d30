package inflight

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Status of a unit of work in the gate.
type Status int

const (
	// StatusPending means no request has been made for the unit yet.
	StatusPending Status = iota
	StatusInFlight
	StatusCompleted
	StatusTimedOut
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInFlight:
		return "in-flight"
	case StatusCompleted:
		return "completed"
	case StatusTimedOut:
		return "timed-out"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ErrInFlight rejects a request for a unit that already has one
// outstanding. The caller is never queued.
var ErrInFlight = errors.New("request already in flight for this unit")

// ErrSettled rejects a request for a unit that already completed,
// failed, or timed out. Settled units are never retried.
var ErrSettled = errors.New("unit already settled")

// TimeoutError reports a request that exceeded the wait ceiling.
type TimeoutError struct {
	Unit string
	Wait time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request for %s timed out after %s", e.Unit, e.Wait)
}

// Gate enforces one request in flight per unit of work, with a bounded
// wait. Whatever a request's fate, the unit settles exactly once;
// late results from a timed-out request are discarded.
type Gate struct {
	wait time.Duration

	mu    sync.Mutex
	units map[string]Status
}

// NewGate builds a gate with the given per-request wait ceiling.
func NewGate(wait time.Duration) *Gate {
	return &Gate{
		wait:  wait,
		units: make(map[string]Status),
	}
}

// Do runs fn for the unit. It returns ErrInFlight immediately when the
// unit already has an outstanding request, ErrSettled when the unit is
// done, and a *TimeoutError when fn outlives the wait ceiling. The
// context handed to fn is cancelled at the ceiling.
func (g *Gate) Do(ctx context.Context, unit string, fn func(context.Context) error) error {
	g.mu.Lock()
	switch g.units[unit] {
	case StatusInFlight:
		g.mu.Unlock()
		return ErrInFlight
	case StatusCompleted, StatusTimedOut, StatusFailed:
		g.mu.Unlock()
		return ErrSettled
	}
	g.units[unit] = StatusInFlight
	g.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, g.wait)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			g.set(unit, StatusFailed)
			return err
		}
		g.set(unit, StatusCompleted)
		return nil
	case <-ctx.Done():
		g.set(unit, StatusTimedOut)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &TimeoutError{Unit: unit, Wait: g.wait}
		}
		return ctx.Err()
	}
}

// Status reports the unit's current state. Unknown units are pending.
func (g *Gate) Status(unit string) Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.units[unit]
}

// Skipped lists the units that failed or timed out, sorted.
func (g *Gate) Skipped() []string {
	return g.unitsIn(StatusFailed, StatusTimedOut)
}

// Completed lists the units that finished cleanly, sorted.
func (g *Gate) Completed() []string {
	return g.unitsIn(StatusCompleted)
}

func (g *Gate) unitsIn(statuses ...Status) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []string
	for unit, status := range g.units {
		for _, want := range statuses {
			if status == want {
				out = append(out, unit)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

func (g *Gate) set(unit string, status Status) {
	g.mu.Lock()
	g.units[unit] = status
	g.mu.Unlock()
}
