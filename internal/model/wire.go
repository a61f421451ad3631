package model

import "encoding/json"

// wireEvent is the flat JSON shape events have always been stored in.
// Optional fields depend on the type; the *Id fields were added with
// save version 2.0 and are absent from legacy files.
type wireEvent struct {
	ID                string    `json:"id"`
	Timestamp         float64   `json:"timestamp"`
	Type              EventType `json:"type"`
	Player            string    `json:"player,omitempty"`
	PlayerID          string    `json:"playerId,omitempty"`
	Points            *int      `json:"points,omitempty"`
	Missed            *bool     `json:"missed,omitempty"`
	AndOne            *bool     `json:"andOne,omitempty"`
	ReboundPlayer     string    `json:"reboundPlayer,omitempty"`
	ReboundPlayerID   string    `json:"reboundPlayerId,omitempty"`
	SubstitutionOut   string    `json:"substitutionOut,omitempty"`
	SubstitutionOutID string    `json:"substitutionOutId,omitempty"`
	Description       string    `json:"description"`
}

// MarshalJSON flattens the event into the wire shape.
func (e TaggedEvent) MarshalJSON() ([]byte, error) {
	w := wireEvent{
		ID:          e.ID,
		Timestamp:   e.Timestamp,
		Type:        e.Type,
		Player:      e.Player.Name,
		PlayerID:    e.Player.ID,
		Description: e.Description,
	}
	switch d := e.Detail.(type) {
	case Shot:
		points, missed := d.Points, d.Missed
		w.Points, w.Missed = &points, &missed
		if d.Missed {
			w.ReboundPlayer, w.ReboundPlayerID = d.Rebounder.Name, d.Rebounder.ID
		} else {
			andOne := d.AndOne
			w.AndOne = &andOne
		}
	case Substitution:
		w.SubstitutionOut, w.SubstitutionOutID = d.Out.Name, d.Out.ID
	}
	return json.Marshal(w)
}

// UnmarshalJSON rebuilds the typed detail from the flat wire shape.
// Fields that do not belong to the event type are ignored.
func (e *TaggedEvent) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := TaggedEvent{
		ID:          w.ID,
		Timestamp:   w.Timestamp,
		Type:        w.Type,
		Description: w.Description,
	}
	if w.Type.NeedsPlayer() {
		out.Player = PlayerRef{ID: w.PlayerID, Name: w.Player}
	}
	switch w.Type {
	case EventShot:
		var shot Shot
		if w.Points != nil {
			shot.Points = *w.Points
		}
		if w.Missed != nil {
			shot.Missed = *w.Missed
		}
		if shot.Missed {
			shot.Rebounder = PlayerRef{ID: w.ReboundPlayerID, Name: w.ReboundPlayer}
		} else if w.AndOne != nil {
			shot.AndOne = *w.AndOne
		}
		out.Detail = shot
	case EventSubstitution:
		out.Detail = Substitution{Out: PlayerRef{ID: w.SubstitutionOutID, Name: w.SubstitutionOut}}
	}
	*e = out
	return nil
}

// ResolveLegacyRefs maps name-only player references onto roster ids.
// References that already carry an id, or whose name is not on the
// roster, are left untouched so no data is dropped.
func ResolveLegacyRefs(players []Player, events []TaggedEvent) []TaggedEvent {
	roster := NewRoster(players)
	resolve := func(ref PlayerRef) PlayerRef {
		if ref.ID != "" || ref.Name == "" {
			return ref
		}
		return roster.Resolve(ref)
	}
	out := make([]TaggedEvent, len(events))
	for i, e := range events {
		e.Player = resolve(e.Player)
		switch d := e.Detail.(type) {
		case Shot:
			d.Rebounder = resolve(d.Rebounder)
			e.Detail = d
		case Substitution:
			d.Out = resolve(d.Out)
			e.Detail = d
		}
		out[i] = e
	}
	return out
}
