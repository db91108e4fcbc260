// Package governance implements per-MAC request throttling and the
// unknown/misbehaving-MAC quarantine list, ticked on a poll interval.
package governance

import (
	"net"
	"sync"
	"time"
)

// ignoreEntry is an IgnoreEntry (spec §3): a MAC and its remaining
// quarantine seconds, decremented on every tick.
type ignoreEntry struct {
	mac       string
	remaining int
}

// Governor holds the shared, mutex-guarded request-governance state
// (spec §4.4). Grounded on the Python original's _logDHCPAccess /
// _ignored_addresses / getStats, not on the teacher's token-bucket
// ratelimit.go (see DESIGN.md).
type Governor struct {
	mu          sync.Mutex
	enabled     bool
	threshold   int
	assignments map[string]int
	ignored     []ignoreEntry

	packetsProcessed int
	packetsDiscarded int
	timeTaken        time.Duration
}

// New creates a Governor. threshold is the per-MAC request budget per poll
// window (spec §4.4); enabled toggles whether admit() ever rejects based on
// the threshold (quarantine/tick bookkeeping still runs either way).
func New(enabled bool, threshold int) *Governor {
	return &Governor{
		enabled:     enabled,
		threshold:   threshold,
		assignments: make(map[string]int),
	}
}

// Admit implements spec §4.4's admit(mac): rejects MACs already under
// quarantine, then counts the request and quarantines the MAC if it has
// now exceeded threshold. misbehaveTimeout is the quarantine duration
// applied on threshold breach.
func (g *Governor) Admit(mac net.HardwareAddr, misbehaveTimeout int) bool {
	key := mac.String()

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.isIgnoredLocked(key) {
		return false
	}

	g.assignments[key]++
	if g.enabled && g.assignments[key] > g.threshold {
		g.ignored = append(g.ignored, ignoreEntry{mac: key, remaining: misbehaveTimeout})
		return false
	}
	return true
}

// Quarantine implements spec §4.4's quarantine(mac, seconds): used for
// unknown MACs and malformed INFORMs without ciaddr.
func (g *Governor) Quarantine(mac net.HardwareAddr, seconds int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ignored = append(g.ignored, ignoreEntry{mac: mac.String(), remaining: seconds})
}

// IsIgnored reports whether mac is currently under quarantine.
func (g *Governor) IsIgnored(mac net.HardwareAddr) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isIgnoredLocked(mac.String())
}

func (g *Governor) isIgnoredLocked(key string) bool {
	for _, e := range g.ignored {
		if e.mac == key {
			return true
		}
	}
	return false
}

// RecordProcessed and RecordDiscarded feed the poll-record counters
// (spec §3 PollRecord); RecordDuration folds per-packet handling time into
// time_taken_seconds (supplemented feature, SPEC_FULL.md §D, grounded on
// the Python original's _logTimeTaken).
func (g *Governor) RecordProcessed() {
	g.mu.Lock()
	g.packetsProcessed++
	g.mu.Unlock()
}

func (g *Governor) RecordDiscarded() {
	g.mu.Lock()
	g.packetsDiscarded++
	g.mu.Unlock()
}

func (g *Governor) RecordDuration(d time.Duration) {
	g.mu.Lock()
	g.timeTaken += d
	g.mu.Unlock()
}

// PollSnapshot is the PollRecord produced by Tick (spec §3).
type PollSnapshot struct {
	PacketsProcessed int
	PacketsDiscarded int
	TimeTaken        time.Duration
	IgnoredMACCount  int
}

// Tick implements spec §4.4's tick(): ages out the ignore list, resets the
// per-poll assignment counters, and returns+resets the processed/discarded/
// elapsed counters. Called every polling_interval seconds from a separate
// timer goroutine (spec §5).
func (g *Governor) Tick(interval time.Duration) PollSnapshot {
	seconds := int(interval / time.Second)
	if seconds <= 0 {
		seconds = 1
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	kept := g.ignored[:0]
	for _, e := range g.ignored {
		e.remaining -= seconds
		if e.remaining > 0 {
			kept = append(kept, e)
		}
	}
	g.ignored = kept

	snapshot := PollSnapshot{
		PacketsProcessed: g.packetsProcessed,
		PacketsDiscarded: g.packetsDiscarded,
		TimeTaken:        g.timeTaken,
		IgnoredMACCount:  len(g.ignored),
	}

	g.assignments = make(map[string]int)
	g.packetsProcessed = 0
	g.packetsDiscarded = 0
	g.timeTaken = 0

	return snapshot
}
