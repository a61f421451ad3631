package model

import "strings"

var actionLabels = map[EventType]string{
	EventRebound:  "Rebound",
	EventFoul:     "Foul",
	EventAssist:   "Assist",
	EventSteal:    "Steal",
	EventBlock:    "Block",
	EventTurnover: "Turnover",
}

var markerLabels = map[EventType]string{
	EventStartOfQuarter: "Start of Quarter",
	EventTimeout:        "Time Out",
	EventHighlight:      "Highlight",
	EventLearning:       "Learning",
	EventActionStart:    "Action Start",
	EventActionEnd:      "Action Ende",
}

// ShotName names a shot by its point value: 3 is a three, 2 a two, anything else a free throw.
func ShotName(points int) string {
	switch points {
	case ThreePointer:
		return "three"
	case TwoPointer:
		return "two"
	default:
		return "free throw"
	}
}

// Describe renders the canonical human-readable description of an event.
// It never fails: missing optional fields are simply left out.
func Describe(e TaggedEvent) string {
	switch e.Type {
	case EventShot:
		shot, _ := e.ShotDetail()
		parts := []string{"Shot " + e.Player.Name + ": " + ShotName(shot.Points)}
		if shot.Missed {
			parts = append(parts, "Missed")
			if shot.Rebounder.Name != "" {
				parts = append(parts, "Rebound "+shot.Rebounder.Name)
			}
		} else {
			parts = append(parts, "Made")
			if shot.AndOne {
				parts = append(parts, "And-1")
			}
		}
		return strings.Join(parts, ". ")
	case EventSubstitution:
		parts := []string{labelled("Substitution", e.Player.Name)}
		if sub, ok := e.SubstitutionDetail(); ok && sub.Out.Name != "" {
			parts = append(parts, "Substitution out "+sub.Out.Name)
		}
		return strings.Join(parts, ". ")
	}
	if label, ok := actionLabels[e.Type]; ok {
		return labelled(label, e.Player.Name)
	}
	if label, ok := markerLabels[e.Type]; ok {
		return label
	}
	return string(e.Type)
}

func labelled(label, name string) string {
	if name == "" {
		return label
	}
	return label + " " + name
}
