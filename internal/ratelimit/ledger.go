package ratelimit

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"
)

// retention is the longest window the ledger answers queries for. Entries
// older than this are dropped whenever an identifier is touched.
const retention = time.Hour

const shardCount = 16

// Thresholds are the per-window request counts above which an identifier is
// considered suspicious.
type Thresholds struct {
	ShortTerm  int // requests per minute
	MediumTerm int // requests per 5 minutes
	LongTerm   int // requests per hour
}

// DefaultThresholds mirror the admission controller defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{ShortTerm: 30, MediumTerm: 80, LongTerm: 150}
}

// WindowCounts reports request counts per tracked window.
type WindowCounts struct {
	Minute      int `json:"minute"`
	FiveMinutes int `json:"five_minutes"`
	Hour        int `json:"hour"`
}

// Suspicion is the result of a threshold check. Reason names the tier and
// count that triggered it.
type Suspicion struct {
	Suspicious bool         `json:"suspicious"`
	Reason     string       `json:"reason,omitempty"`
	Counts     WindowCounts `json:"counts"`
}

type shard struct {
	mu      sync.Mutex
	entries map[string][]time.Time
}

// Ledger is a process-local sliding-window counter of request timestamps per
// client identifier. It is a fast heuristic layer: counts are approximate
// under heavy concurrency and the whole structure is lost on restart.
type Ledger struct {
	shards [shardCount]*shard
	now    func() time.Time
}

// NewLedger returns an empty ledger. Tests can instantiate isolated
// instances instead of sharing process state.
func NewLedger() *Ledger {
	l := &Ledger{now: time.Now}
	for i := range l.shards {
		l.shards[i] = &shard{entries: make(map[string][]time.Time)}
	}
	return l
}

func (l *Ledger) shardFor(identifier string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identifier))
	return l.shards[h.Sum32()%shardCount]
}

// Record appends the current time to the identifier's timestamp list and
// prunes entries older than the retention window.
func (l *Ledger) Record(identifier string) {
	now := l.now()
	s := l.shardFor(identifier)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[identifier] = pruneBefore(append(s.entries[identifier], now), now.Add(-retention))
}

// CountWithin returns how many requests the identifier made inside the
// trailing window.
func (l *Ledger) CountWithin(identifier string, window time.Duration) int {
	now := l.now()
	cutoff := now.Add(-window)
	s := l.shardFor(identifier)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, ts := range s.entries[identifier] {
		if ts.After(cutoff) {
			n++
		}
	}
	return n
}

// Counts returns the identifier's request counts for all tracked windows.
func (l *Ledger) Counts(identifier string) WindowCounts {
	now := l.now()
	s := l.shardFor(identifier)
	s.mu.Lock()
	defer s.mu.Unlock()
	var c WindowCounts
	for _, ts := range s.entries[identifier] {
		age := now.Sub(ts)
		if age < time.Minute {
			c.Minute++
		}
		if age < 5*time.Minute {
			c.FiveMinutes++
		}
		if age < time.Hour {
			c.Hour++
		}
	}
	return c
}

// Total returns every retained timestamp count for the identifier.
func (l *Ledger) Total(identifier string) int {
	s := l.shardFor(identifier)
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries[identifier])
}

// Suspicious evaluates the identifier against the given thresholds. The
// first exceeded tier, shortest window first, supplies the reason.
func (l *Ledger) Suspicious(identifier string, th Thresholds) Suspicion {
	c := l.Counts(identifier)
	switch {
	case c.Minute > th.ShortTerm:
		return Suspicion{Suspicious: true, Reason: fmt.Sprintf("Excessive requests in 1 minute: %d", c.Minute), Counts: c}
	case c.FiveMinutes > th.MediumTerm:
		return Suspicion{Suspicious: true, Reason: fmt.Sprintf("Excessive requests in 5 minutes: %d", c.FiveMinutes), Counts: c}
	case c.Hour > th.LongTerm:
		return Suspicion{Suspicious: true, Reason: fmt.Sprintf("Excessive requests in 1 hour: %d", c.Hour), Counts: c}
	}
	return Suspicion{Counts: c}
}

// Prune drops retained timestamps older than the retention window and
// removes empty identifiers. Safe to run concurrently with live traffic and
// idempotent when nothing has expired.
func (l *Ledger) Prune() {
	now := l.now()
	cutoff := now.Add(-retention)
	for _, s := range l.shards {
		s.mu.Lock()
		for id, stamps := range s.entries {
			kept := pruneBefore(stamps, cutoff)
			if len(kept) == 0 {
				delete(s.entries, id)
				continue
			}
			s.entries[id] = kept
		}
		s.mu.Unlock()
	}
}

func pruneBefore(stamps []time.Time, cutoff time.Time) []time.Time {
	kept := stamps[:0]
	for _, ts := range stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}
