// Package stats reduces an event log into box-score statistics.
// Everything here is a pure function of (roster, events); callers may
// recompute as often as they like.
package stats

import (
	"math"
	"sort"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
)

// UnknownPosition is shown for players that are referenced by events but
// missing from the roster.
const UnknownPosition = "-"

// Extract computes one line per player with at least one player-centric
// event plus the team aggregate. Input order does not matter.
func Extract(roster []model.Player, events []model.TaggedEvent) model.ExtractedGameStats {
	players := model.NewRoster(roster)
	lines := make(map[string]*model.PlayerGameStats)
	// off-roster lines by display name
	strays := make(map[string]*model.PlayerGameStats)

	lineFor := func(ref model.PlayerRef) *model.PlayerGameStats {
		key := ref.Key()
		if l, ok := lines[key]; ok {
			return l
		}
		p, onRoster := players.Lookup(ref)
		if !onRoster && ref.Name != "" {
			// an id reference and a name reference to the same removed
			// player share a line unless both carry different ids
			if l, ok := strays[ref.Name]; ok && (l.PlayerID == "" || ref.ID == "" || l.PlayerID == ref.ID) {
				if l.PlayerID == "" {
					l.PlayerID = ref.ID
				}
				lines[key] = l
				return l
			}
		}
		l := &model.PlayerGameStats{Key: key, PlayerID: ref.ID, Name: ref.Name, Position: UnknownPosition}
		if onRoster {
			l.PlayerID = p.ID
			l.Name = p.Name
			l.JerseyNumber = p.JerseyNumber
			l.Position = string(p.Position)
		} else if ref.Name != "" {
			if _, ok := strays[ref.Name]; !ok {
				strays[ref.Name] = l
			}
		}
		lines[key] = l
		return l
	}

	for _, e := range events {
		if !e.Type.NeedsPlayer() || e.Player.IsZero() {
			continue
		}
		// resolve first so name-only and id references to one player share a line
		l := lineFor(players.Resolve(e.Player))
		switch e.Type {
		case model.EventShot:
			shot, _ := e.ShotDetail()
			addShot(l, shot)
		case model.EventRebound:
			l.Rebounds++
		case model.EventAssist:
			l.Assists++
		case model.EventSteal:
			l.Steals++
		case model.EventBlock:
			l.Blocks++
		case model.EventTurnover:
			l.Turnovers++
		case model.EventFoul:
			l.Fouls++
		case model.EventSubstitution:
			l.Substitutions++
		}
	}

	out := model.ExtractedGameStats{PlayerStats: make([]model.PlayerGameStats, 0, len(lines))}
	seen := make(map[*model.PlayerGameStats]bool, len(lines))
	for _, l := range lines {
		if seen[l] {
			continue
		}
		seen[l] = true
		finishLine(&l.FieldGoals)
		finishLine(&l.ThreePointers)
		finishLine(&l.FreeThrows)
		out.PlayerStats = append(out.PlayerStats, *l)
	}
	sortLines(out.PlayerStats)
	out.TeamStats = teamTotals(out.PlayerStats)
	return out
}

// addShot buckets a shot by its point value: 1 is a free throw, 3 a
// three-pointer (also a field goal), anything else a two-point field goal.
func addShot(l *model.PlayerGameStats, shot model.Shot) {
	made := !shot.Missed
	switch shot.Points {
	case model.FreeThrow:
		count(&l.FreeThrows, made)
	case model.ThreePointer:
		count(&l.ThreePointers, made)
		count(&l.FieldGoals, made)
	default:
		count(&l.FieldGoals, made)
	}
	if made {
		l.Points += shot.Points
	}
}

func count(s *model.ShootingLine, made bool) {
	s.Attempted++
	if made {
		s.Made++
	}
}

func finishLine(s *model.ShootingLine) {
	s.Pct = Percentage(s.Made, s.Attempted)
}

func teamTotals(lines []model.PlayerGameStats) model.TeamGameStats {
	var t model.TeamGameStats
	for _, l := range lines {
		t.Points += l.Points
		t.Rebounds += l.Rebounds
		t.Assists += l.Assists
		t.Steals += l.Steals
		t.Blocks += l.Blocks
		t.Turnovers += l.Turnovers
		t.Fouls += l.Fouls
		t.FieldGoals.Made += l.FieldGoals.Made
		t.FieldGoals.Attempted += l.FieldGoals.Attempted
		t.ThreePointers.Made += l.ThreePointers.Made
		t.ThreePointers.Attempted += l.ThreePointers.Attempted
		t.FreeThrows.Made += l.FreeThrows.Made
		t.FreeThrows.Attempted += l.FreeThrows.Attempted
	}
	finishLine(&t.FieldGoals)
	finishLine(&t.ThreePointers)
	finishLine(&t.FreeThrows)
	return t
}

// sortLines orders by jersey, then name, then key so output is stable
// regardless of map iteration and input order.
func sortLines(lines []model.PlayerGameStats) {
	sort.Slice(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.JerseyNumber != b.JerseyNumber {
			return a.JerseyNumber < b.JerseyNumber
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Key < b.Key
	})
}

// Percentage returns made/attempted as a whole percent rounded half up,
// or 0 when there were no attempts.
func Percentage(made, attempted int) int {
	if attempted <= 0 {
		return 0
	}
	return int(math.Floor(float64(made)/float64(attempted)*100 + 0.5))
}

// HasContribution reports whether a line carries any box-score stat.
// Substitutions alone do not count.
func HasContribution(l model.PlayerGameStats) bool {
	return l.Points != 0 || l.FieldGoals.Attempted != 0 || l.ThreePointers.Attempted != 0 ||
		l.FreeThrows.Attempted != 0 || l.Assists != 0 || l.Rebounds != 0 || l.Steals != 0 ||
		l.Blocks != 0 || l.Turnovers != 0 || l.Fouls != 0
}

// Contributors filters lines down to the ones worth displaying.
func Contributors(lines []model.PlayerGameStats) []model.PlayerGameStats {
	out := make([]model.PlayerGameStats, 0, len(lines))
	for _, l := range lines {
		if HasContribution(l) {
			out = append(out, l)
		}
	}
	return out
}
