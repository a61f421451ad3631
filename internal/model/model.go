// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes; the only behavior here is
// event validation, description rendering and the JSON wire format.
package model

import "strings"

// Position is a player's roster position.
type Position string

const (
	PositionGuard   Position = "Guard"
	PositionForward Position = "Forward"
	PositionCenter  Position = "Center"
)

// Valid reports whether p is one of the known roster positions.
func (p Position) Valid() bool {
	switch p {
	case PositionGuard, PositionForward, PositionCenter:
		return true
	default:
		return false
	}
}

// ParsePosition normalizes loose input ("guard", " CENTER ") to a Position.
// Unknown values are returned trimmed so validation can report them.
func ParsePosition(s string) Position {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "guard", "g":
		return PositionGuard
	case "forward", "f":
		return PositionForward
	case "center", "c":
		return PositionCenter
	default:
		return Position(s)
	}
}

// Player is one roster entry of a tagging session.
type Player struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	JerseyNumber int      `json:"jerseyNumber"`
	Position     Position `json:"position"`
}

// Ref returns a reference to p suitable for embedding in events.
func (p Player) Ref() PlayerRef {
	return PlayerRef{ID: p.ID, Name: p.Name}
}

// PlayerRef points at a player by stable id and carries the name known at
// tagging time. Legacy saves only have the name; ID stays empty until the
// roster lookup in ResolveLegacyRefs fills it in.
type PlayerRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// IsZero reports whether the reference points at nobody.
func (r PlayerRef) IsZero() bool { return r.ID == "" && r.Name == "" }

// Key is the aggregation key for stats: the id when known, the name otherwise.
func (r PlayerRef) Key() string {
	if r.ID != "" {
		return r.ID
	}
	if r.Name == "" {
		return ""
	}
	return "name:" + r.Name
}

// Roster is an indexed view over a player list.
type Roster struct {
	byID   map[string]Player
	byName map[string]Player
}

// NewRoster indexes players by id and by name. On duplicate names the first
// entry wins, matching how legacy name references were resolved.
func NewRoster(players []Player) Roster {
	r := Roster{byID: make(map[string]Player, len(players)), byName: make(map[string]Player, len(players))}
	for _, p := range players {
		r.byID[p.ID] = p
		if _, dup := r.byName[p.Name]; !dup {
			r.byName[p.Name] = p
		}
	}
	return r
}

// Lookup resolves a reference: by id first, then by name.
func (r Roster) Lookup(ref PlayerRef) (Player, bool) {
	if ref.ID != "" {
		if p, ok := r.byID[ref.ID]; ok {
			return p, true
		}
	}
	if ref.Name != "" {
		if p, ok := r.byName[ref.Name]; ok {
			return p, true
		}
	}
	return Player{}, false
}

// Resolve fills the id (and refreshes the name) of ref from the roster.
// Unknown references come back unchanged.
func (r Roster) Resolve(ref PlayerRef) PlayerRef {
	if ref.IsZero() {
		return ref
	}
	if p, ok := r.Lookup(ref); ok {
		return p.Ref()
	}
	return ref
}
