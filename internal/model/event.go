package model

import (
	"errors"
	"fmt"
)

// EventType is the closed set of things that can be tagged on a video.
type EventType string

const (
	EventStartOfQuarter EventType = "start_of_quarter"
	EventTimeout        EventType = "timeout"
	EventSubstitution   EventType = "substitution"
	EventShot           EventType = "shot"
	EventRebound        EventType = "rebound"
	EventFoul           EventType = "foul"
	EventAssist         EventType = "assist"
	EventSteal          EventType = "steal"
	EventBlock          EventType = "block"
	EventTurnover       EventType = "turnover"
	EventHighlight      EventType = "highlight"
	EventLearning       EventType = "learning"
	EventActionStart    EventType = "action_start"
	EventActionEnd      EventType = "action_end"
)

// EventTypes lists every known type in display order.
var EventTypes = []EventType{
	EventStartOfQuarter, EventTimeout, EventSubstitution, EventShot, EventRebound,
	EventFoul, EventAssist, EventSteal, EventBlock, EventTurnover,
	EventHighlight, EventLearning, EventActionStart, EventActionEnd,
}

// Valid reports whether t belongs to the closed set.
func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// NeedsPlayer reports whether events of this type must reference a player.
func (t EventType) NeedsPlayer() bool {
	switch t {
	case EventShot, EventRebound, EventFoul, EventAssist, EventSteal,
		EventBlock, EventTurnover, EventSubstitution:
		return true
	default:
		return false
	}
}

// Point values a shot can carry.
const (
	FreeThrow    = 1
	TwoPointer   = 2
	ThreePointer = 3
)

// EventDetail is the type-specific payload of an event. The set of
// implementations is closed: Shot and Substitution.
type EventDetail interface {
	detailOf() EventType
}

// Shot is the payload of a shot event.
type Shot struct {
	Points    int
	Missed    bool
	AndOne    bool      // made shots only
	Rebounder PlayerRef // missed shots only
}

func (Shot) detailOf() EventType { return EventShot }

// Substitution is the payload of a substitution event; Out may be zero.
type Substitution struct {
	Out PlayerRef
}

func (Substitution) detailOf() EventType { return EventSubstitution }

// TaggedEvent is one entry of a session's event log.
type TaggedEvent struct {
	ID          string
	Timestamp   float64
	Type        EventType
	Player      PlayerRef
	Detail      EventDetail
	Description string
}

// ShotDetail returns the shot payload if e is a shot.
func (e TaggedEvent) ShotDetail() (Shot, bool) {
	s, ok := e.Detail.(Shot)
	return s, ok
}

// SubstitutionDetail returns the substitution payload if e is a substitution.
func (e TaggedEvent) SubstitutionDetail() (Substitution, bool) {
	s, ok := e.Detail.(Substitution)
	return s, ok
}

// ErrInvalidEvent marks structural violations of the event invariants.
var ErrInvalidEvent = errors.New("invalid event")

// Validate checks that the fields present match the event type.
func (e TaggedEvent) Validate() error {
	if !e.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	if e.Timestamp < 0 {
		return fmt.Errorf("%w: negative timestamp", ErrInvalidEvent)
	}
	if e.Type.NeedsPlayer() && e.Player.IsZero() {
		return fmt.Errorf("%w: %s requires a player", ErrInvalidEvent, e.Type)
	}
	if !e.Type.NeedsPlayer() && !e.Player.IsZero() {
		return fmt.Errorf("%w: %s carries no player", ErrInvalidEvent, e.Type)
	}

	switch e.Type {
	case EventShot:
		shot, ok := e.ShotDetail()
		if !ok {
			return fmt.Errorf("%w: shot without shot detail", ErrInvalidEvent)
		}
		if shot.Points < FreeThrow || shot.Points > ThreePointer {
			return fmt.Errorf("%w: shot points must be 1, 2 or 3", ErrInvalidEvent)
		}
		if shot.Missed && shot.AndOne {
			return fmt.Errorf("%w: missed shot cannot be an and-one", ErrInvalidEvent)
		}
		if !shot.Missed && !shot.Rebounder.IsZero() {
			return fmt.Errorf("%w: made shot cannot have a rebounder", ErrInvalidEvent)
		}
	case EventSubstitution:
		if e.Detail != nil {
			if _, ok := e.SubstitutionDetail(); !ok {
				return fmt.Errorf("%w: substitution with foreign detail", ErrInvalidEvent)
			}
		}
	default:
		if e.Detail != nil {
			return fmt.Errorf("%w: %s carries no detail", ErrInvalidEvent, e.Type)
		}
	}
	return nil
}
