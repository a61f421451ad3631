package session

import (
	"fmt"
	"sort"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
	"github.com/maxviazov/hoops-tagging-service/internal/playback"
	"github.com/maxviazov/hoops-tagging-service/internal/stats"
)

// EventInput is a partial event as selected by the user. The controller
// fills in id, timestamp and description.
type EventInput struct {
	Type              model.EventType
	PlayerID          string
	Points            int
	Missed            bool
	AndOne            bool
	ReboundPlayerID   string
	SubstitutionOutID string
}

// AddEvent stamps the input with the current playback time and appends it
// to the log. A player-centric event without a selected player is not an
// error: it is dropped and added is false.
func (c *Controller) AddEvent(in EventInput) (ev model.TaggedEvent, added bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateReady || c.player == nil {
		return model.TaggedEvent{}, false, ErrNotReady
	}
	if !in.Type.Valid() {
		return model.TaggedEvent{}, false, fmt.Errorf("%w: unknown type %q", model.ErrInvalidEvent, in.Type)
	}
	if in.Type.NeedsPlayer() && in.PlayerID == "" {
		c.log.Debug().Str("type", string(in.Type)).Msg("event dropped: no player selected")
		return model.TaggedEvent{}, false, nil
	}

	roster := model.NewRoster(c.players)
	ev = model.TaggedEvent{Type: in.Type}
	if in.Type.NeedsPlayer() {
		if ev.Player, err = rosterRef(roster, in.PlayerID); err != nil {
			return model.TaggedEvent{}, false, err
		}
	}

	switch in.Type {
	case model.EventShot:
		shot := model.Shot{Points: in.Points, Missed: in.Missed}
		if in.Missed {
			if shot.Rebounder, err = rosterRef(roster, in.ReboundPlayerID); err != nil {
				return model.TaggedEvent{}, false, err
			}
		} else {
			shot.AndOne = in.AndOne
		}
		ev.Detail = shot
	case model.EventSubstitution:
		sub := model.Substitution{}
		if sub.Out, err = rosterRef(roster, in.SubstitutionOutID); err != nil {
			return model.TaggedEvent{}, false, err
		}
		ev.Detail = sub
	}

	ev.ID = c.newID()
	ev.Timestamp = c.player.CurrentTime()
	if err := ev.Validate(); err != nil {
		return model.TaggedEvent{}, false, err
	}
	ev.Description = model.Describe(ev)

	c.events = append(c.events, ev)
	c.touch()
	c.log.Debug().Str("event_id", ev.ID).Str("type", string(ev.Type)).Float64("ts", ev.Timestamp).Msg("event added")
	return ev, true, nil
}

// rosterRef resolves an optional player id. Empty ids yield a zero ref.
func rosterRef(roster model.Roster, id string) (model.PlayerRef, error) {
	if id == "" {
		return model.PlayerRef{}, nil
	}
	p, ok := roster.Lookup(model.PlayerRef{ID: id})
	if !ok {
		return model.PlayerRef{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	return p.Ref(), nil
}

// DeleteEvent removes one event. Other events are never affected.
func (c *Controller) DeleteEvent(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.events {
		if c.events[i].ID == id {
			c.events = append(c.events[:i], c.events[i+1:]...)
			c.touch()
			c.log.Debug().Str("event_id", id).Msg("event deleted")
			return nil
		}
	}
	return ErrEventNotFound
}

// Events returns the log ordered by timestamp; simultaneous events keep
// the order they were tagged in.
func (c *Controller) Events() []model.TaggedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sortedEventsLocked()
}

func (c *Controller) sortedEventsLocked() []model.TaggedEvent {
	out := make([]model.TaggedEvent, len(c.events))
	copy(out, c.events)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// Stats returns the box score for the current log, recomputing only when
// the log or roster changed since the last read.
func (c *Controller) Stats() model.ExtractedGameStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stats == nil || c.statsRev != c.revision {
		s := stats.Extract(c.players, c.events)
		c.stats = &s
		c.statsRev = c.revision
	}
	out := *c.stats
	out.PlayerStats = make([]model.PlayerGameStats, len(c.stats.PlayerStats))
	copy(out.PlayerStats, c.stats.PlayerStats)
	return out
}

// SkipZones returns the dead-time zones of the current log.
func (c *Controller) SkipZones() []playback.SkipZone {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]playback.SkipZone(nil), c.skipZonesLocked()...)
}

func (c *Controller) skipZonesLocked() []playback.SkipZone {
	if !c.zonesValid || c.zonesRev != c.revision {
		c.zones = playback.ComputeSkipZones(c.events)
		c.zonesRev = c.revision
		c.zonesValid = true
	}
	return c.zones
}
