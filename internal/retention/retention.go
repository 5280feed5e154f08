// Package retention decides which dated snapshots of a root are kept.
//
// Four rules are applied in order, each only ever adding keeps:
//
//	o  the oldest snapshot
//	m  at least one snapshot every MonthlyGapDays, over the whole history
//	w  at least one snapshot every WeeklyGapDays, within WeeklyWindowDays of the newest
//	d  the newest KeepLatest snapshots
package retention

import (
	"fmt"
	"sync"

	"github.com/raoulx24/thinning/internal/snapshot"
)

// Policy holds the retention parameters.
type Policy struct {
	MonthlyGapDays   int
	WeeklyGapDays    int
	WeeklyWindowDays int
	KeepLatest       int
}

// DefaultPolicy returns 28/7/90/30.
func DefaultPolicy() Policy {
	return Policy{
		MonthlyGapDays:   28,
		WeeklyGapDays:    7,
		WeeklyWindowDays: 90,
		KeepLatest:       30,
	}
}

func (p Policy) Validate() error {
	if p.MonthlyGapDays < 1 {
		return fmt.Errorf("monthly gap must be at least 1 day, got %d", p.MonthlyGapDays)
	}
	if p.WeeklyGapDays < 1 {
		return fmt.Errorf("weekly gap must be at least 1 day, got %d", p.WeeklyGapDays)
	}
	if p.WeeklyWindowDays < 0 {
		return fmt.Errorf("weekly window must not be negative, got %d", p.WeeklyWindowDays)
	}
	if p.KeepLatest < 0 {
		return fmt.Errorf("keep-latest must not be negative, got %d", p.KeepLatest)
	}
	return nil
}

type Engine struct {
	mu     sync.RWMutex
	policy Policy
}

func New(p Policy) *Engine {
	return &Engine{policy: p}
}

func (e *Engine) Policy() Policy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.policy
}

// UpdateConfig swaps the policy used by subsequent Tag calls.
func (e *Engine) UpdateConfig(p Policy) {
	e.mu.Lock()
	e.policy = p
	e.mu.Unlock()
}

// Tag returns a copy of snaps with Keep and Reason filled in.
// snaps must be sorted oldest first; an empty input yields nil.
func (e *Engine) Tag(snaps []snapshot.Snapshot) []snapshot.Snapshot {
	if len(snaps) == 0 {
		return nil
	}
	p := e.Policy()

	out := make([]snapshot.Snapshot, len(snaps))
	copy(out, snaps)

	out[0].MarkKeep(snapshot.ReasonOldest)

	tagEvery(out, p.MonthlyGapDays, snapshot.ReasonMonthly, out[0].Ordinal)

	tagEvery(out, p.WeeklyGapDays, snapshot.ReasonWeekly, out[len(out)-1].Ordinal-p.WeeklyWindowDays)

	latest := p.KeepLatest
	if latest > len(out) {
		latest = len(out)
	}
	for i := len(out) - latest; i < len(out); i++ {
		out[i].MarkKeep(snapshot.ReasonLatest)
	}

	return out
}

// tagEvery keeps enough snapshots that no gap between kept ones exceeds n days.
// Only snapshots at or after starting receive the tag, but the gap anchor
// still advances over the ones before it.
func tagEvery(snaps []snapshot.Snapshot, n int, tag rune, starting int) {
	last := snaps[0].Ordinal
	prev := &snaps[0]

	for i := range snaps {
		d := &snaps[i]

		if d.Keep {
			last = d.Ordinal
			prev = d
			continue
		}

		switch gap := d.Ordinal - last; {
		case gap == n:
			if d.Ordinal >= starting {
				d.MarkKeep(tag)
			}
			last = d.Ordinal

		case gap > n:
			// close the gap at the snapshot just before it
			if prev.Ordinal >= starting {
				prev.MarkKeep(tag)
			}
			last = prev.Ordinal

			if d.Ordinal-last >= n {
				if d.Ordinal >= starting {
					d.MarkKeep(tag)
				}
				last = d.Ordinal
			}
		}

		prev = d
	}
}
