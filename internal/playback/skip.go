// Package playback holds the playback engine contract and the dead-time
// skipping logic driven by action_start/action_end markers.
package playback

import (
	"sort"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
)

// Default tuning for SkipGuard.
const (
	DefaultGuardBand = 0.5
	DefaultDebounce  = 1.0
)

// SkipZone is a [Start, End) interval of dead time, in video seconds.
type SkipZone struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// ComputeSkipZones pairs every action_end with the next later action_start.
// Only the most recent end before a start counts, and a start without a
// pending end opens nothing. Input order is irrelevant; ties keep input order.
func ComputeSkipZones(events []model.TaggedEvent) []SkipZone {
	if len(events) < 2 {
		return nil
	}
	sorted := make([]model.TaggedEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })

	var zones []SkipZone
	var lastEnd *float64
	for _, e := range sorted {
		switch e.Type {
		case model.EventActionEnd:
			ts := e.Timestamp
			lastEnd = &ts
		case model.EventActionStart:
			if lastEnd != nil && e.Timestamp > *lastEnd {
				zones = append(zones, SkipZone{Start: *lastEnd, End: e.Timestamp})
				lastEnd = nil
			}
		}
	}
	return zones
}

// SkipGuard decides at playback time whether to jump over a zone. It keeps
// the landing point of the last programmatic skip so the player's own
// time updates right after a seek do not trigger another one.
type SkipGuard struct {
	GuardBand float64 // no skip in the last GuardBand seconds of a zone
	Debounce  float64 // no skip within Debounce seconds of the last landing

	lastLanding *float64
}

// NewSkipGuard returns a guard with the default half-second guard band and
// one-second debounce.
func NewSkipGuard() *SkipGuard {
	return &SkipGuard{GuardBand: DefaultGuardBand, Debounce: DefaultDebounce}
}

// Check returns the seek target when t lies inside a zone (minus the guard
// band) and the last landing is not within the debounce window of t. A
// positive answer is recorded as the new landing point.
func (g *SkipGuard) Check(t float64, zones []SkipZone) (float64, bool) {
	if g.lastLanding != nil && abs(t-*g.lastLanding) < g.Debounce {
		return 0, false
	}
	for _, z := range zones {
		if t >= z.Start && t < z.End-g.GuardBand {
			target := z.End
			g.lastLanding = &target
			return target, true
		}
	}
	return 0, false
}

// Reset forgets the last landing point.
func (g *SkipGuard) Reset() { g.lastLanding = nil }

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
