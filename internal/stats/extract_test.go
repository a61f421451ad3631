package stats_test

import (
	"bytes"
	"encoding/csv"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
	"github.com/maxviazov/hoops-tagging-service/internal/stats"
)

var roster = []model.Player{
	{ID: "a", Name: "Anna", JerseyNumber: 4, Position: model.PositionGuard},
	{ID: "b", Name: "Bea", JerseyNumber: 11, Position: model.PositionForward},
	{ID: "c", Name: "Cleo", JerseyNumber: 15, Position: model.PositionCenter},
}

func shot(p string, points int, missed bool) model.TaggedEvent {
	return model.TaggedEvent{Type: model.EventShot, Player: model.PlayerRef{ID: p}, Detail: model.Shot{Points: points, Missed: missed}}
}

func action(typ model.EventType, p string) model.TaggedEvent {
	return model.TaggedEvent{Type: typ, Player: model.PlayerRef{ID: p}}
}

func sampleLog() []model.TaggedEvent {
	return []model.TaggedEvent{
		{Type: model.EventStartOfQuarter},
		shot("a", 3, false),
		shot("a", 3, true),
		shot("a", 2, false),
		shot("a", 1, false),
		shot("a", 1, true),
		action(model.EventAssist, "b"),
		action(model.EventRebound, "c"),
		action(model.EventRebound, "c"),
		action(model.EventBlock, "c"),
		action(model.EventSteal, "b"),
		action(model.EventTurnover, "b"),
		action(model.EventFoul, "c"),
		shot("b", 2, true),
		{Type: model.EventSubstitution, Player: model.PlayerRef{ID: "c"}, Detail: model.Substitution{Out: model.PlayerRef{ID: "a"}}},
		{Type: model.EventActionStart, Timestamp: 1},
		{Type: model.EventActionEnd, Timestamp: 2},
		{Type: model.EventTimeout},
		{Type: model.EventHighlight},
	}
}

func lineByID(t *testing.T, s model.ExtractedGameStats, id string) model.PlayerGameStats {
	t.Helper()
	for _, l := range s.PlayerStats {
		if l.PlayerID == id {
			return l
		}
	}
	t.Fatalf("no line for %s", id)
	return model.PlayerGameStats{}
}

func TestExtract_Buckets(t *testing.T) {
	got := stats.Extract(roster, sampleLog())
	require.Len(t, got.PlayerStats, 3)

	anna := lineByID(t, got, "a")
	assert.Equal(t, 6, anna.Points) // 3 + 2 + 1, misses add nothing
	assert.Equal(t, model.ShootingLine{Made: 2, Attempted: 3, Pct: 67}, anna.FieldGoals)
	assert.Equal(t, model.ShootingLine{Made: 1, Attempted: 2, Pct: 50}, anna.ThreePointers)
	assert.Equal(t, model.ShootingLine{Made: 1, Attempted: 2, Pct: 50}, anna.FreeThrows)
	assert.Equal(t, 4, anna.JerseyNumber)
	assert.Equal(t, "Guard", anna.Position)

	bea := lineByID(t, got, "b")
	assert.Equal(t, 1, bea.Assists)
	assert.Equal(t, 1, bea.Steals)
	assert.Equal(t, 1, bea.Turnovers)
	assert.Equal(t, model.ShootingLine{Made: 0, Attempted: 1, Pct: 0}, bea.FieldGoals)

	cleo := lineByID(t, got, "c")
	assert.Equal(t, 2, cleo.Rebounds)
	assert.Equal(t, 1, cleo.Blocks)
	assert.Equal(t, 1, cleo.Fouls)
	assert.Equal(t, 1, cleo.Substitutions)

	assert.Equal(t, 6, got.TeamStats.Points)
	assert.Equal(t, model.ShootingLine{Made: 2, Attempted: 4, Pct: 50}, got.TeamStats.FieldGoals)
}

func TestExtract_Idempotent(t *testing.T) {
	log := sampleLog()
	assert.Equal(t, stats.Extract(roster, log), stats.Extract(roster, log))
}

func TestExtract_OrderIndependent(t *testing.T) {
	forward := []model.TaggedEvent{shot("a", 3, false), action(model.EventAssist, "b")}
	reverse := []model.TaggedEvent{forward[1], forward[0]}
	assert.Equal(t, stats.Extract(roster, forward), stats.Extract(roster, reverse))

	log := sampleLog()
	want := stats.Extract(roster, log)
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]model.TaggedEvent(nil), log...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, stats.Extract(roster, shuffled))
	}
}

func TestExtract_TeamIsSumOfPlayers(t *testing.T) {
	got := stats.Extract(roster, sampleLog())
	var sum model.TeamGameStats
	for _, l := range got.PlayerStats {
		sum.Points += l.Points
		sum.Rebounds += l.Rebounds
		sum.Assists += l.Assists
		sum.Steals += l.Steals
		sum.Blocks += l.Blocks
		sum.Turnovers += l.Turnovers
		sum.Fouls += l.Fouls
	}
	team := got.TeamStats
	assert.Equal(t, sum.Points, team.Points)
	assert.Equal(t, sum.Rebounds, team.Rebounds)
	assert.Equal(t, sum.Assists, team.Assists)
	assert.Equal(t, sum.Steals, team.Steals)
	assert.Equal(t, sum.Blocks, team.Blocks)
	assert.Equal(t, sum.Turnovers, team.Turnovers)
	assert.Equal(t, sum.Fouls, team.Fouls)
}

func TestExtract_TeamPercentagesFromSums(t *testing.T) {
	// 1/1 and 0/9: averaging player percentages would give 50.
	log := []model.TaggedEvent{shot("a", 2, false)}
	for i := 0; i < 9; i++ {
		log = append(log, shot("b", 2, true))
	}
	got := stats.Extract(roster, log)
	assert.Equal(t, 10, got.TeamStats.FieldGoals.Pct)
}

func TestExtract_PercentageBounds(t *testing.T) {
	got := stats.Extract(roster, sampleLog())
	check := func(s model.ShootingLine) {
		assert.GreaterOrEqual(t, s.Attempted, s.Made)
		assert.GreaterOrEqual(t, s.Pct, 0)
		assert.LessOrEqual(t, s.Pct, 100)
		if s.Attempted == 0 {
			assert.Equal(t, 0, s.Pct)
		}
	}
	for _, l := range got.PlayerStats {
		check(l.FieldGoals)
		check(l.ThreePointers)
		check(l.FreeThrows)
	}
	check(got.TeamStats.FieldGoals)
	check(got.TeamStats.ThreePointers)
	check(got.TeamStats.FreeThrows)
}

func TestExtract_Empty(t *testing.T) {
	got := stats.Extract(roster, nil)
	require.NotNil(t, got.PlayerStats)
	assert.Len(t, got.PlayerStats, 0)
	assert.Equal(t, model.TeamGameStats{}, got.TeamStats)
}

func TestExtract_UnknownPlayerStillCounts(t *testing.T) {
	log := []model.TaggedEvent{
		{Type: model.EventShot, Player: model.PlayerRef{Name: "Walk-on"}, Detail: model.Shot{Points: 2}},
		{Type: model.EventRebound, Player: model.PlayerRef{Name: "Walk-on"}},
	}
	got := stats.Extract(roster, log)
	require.Len(t, got.PlayerStats, 1)
	l := got.PlayerStats[0]
	assert.Equal(t, "Walk-on", l.Name)
	assert.Equal(t, 0, l.JerseyNumber)
	assert.Equal(t, stats.UnknownPosition, l.Position)
	assert.Equal(t, 2, l.Points)
	assert.Equal(t, 1, l.Rebounds)
	assert.Equal(t, 2, got.TeamStats.Points)
}

func TestExtract_LegacyNameMatchesRoster(t *testing.T) {
	got := stats.Extract(roster, []model.TaggedEvent{
		{Type: model.EventAssist, Player: model.PlayerRef{Name: "Bea"}},
	})
	require.Len(t, got.PlayerStats, 1)
	assert.Equal(t, 11, got.PlayerStats[0].JerseyNumber)
}

func TestExtract_RemovedPlayerKeepsOneLine(t *testing.T) {
	log := []model.TaggedEvent{
		{Type: model.EventSteal, Player: model.PlayerRef{ID: "p1", Name: "Dora"}},
		{Type: model.EventShot, Player: model.PlayerRef{Name: "Dora"}, Detail: model.Shot{Points: 2}},
		{Type: model.EventBlock, Player: model.PlayerRef{ID: "p2", Name: "Dora"}},
	}
	got := stats.Extract(roster, log)
	require.Len(t, got.PlayerStats, 2, "distinct ids stay apart")

	merged := lineByID(t, got, "p1")
	assert.Equal(t, "Dora", merged.Name)
	assert.Equal(t, 1, merged.Steals)
	assert.Equal(t, 2, merged.Points)
	assert.Equal(t, 1, lineByID(t, got, "p2").Blocks)

	// name first, id later
	got = stats.Extract(roster, []model.TaggedEvent{log[1], log[0]})
	require.Len(t, got.PlayerStats, 1)
	assert.Equal(t, "p1", got.PlayerStats[0].PlayerID)
	assert.Equal(t, 2, got.TeamStats.Points)
	assert.Equal(t, 1, got.TeamStats.Steals)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, stats.Percentage(0, 0))
	assert.Equal(t, 0, stats.Percentage(3, 0))
	assert.Equal(t, 33, stats.Percentage(1, 3))
	assert.Equal(t, 67, stats.Percentage(2, 3))
	assert.Equal(t, 50, stats.Percentage(1, 2))
	assert.Equal(t, 100, stats.Percentage(4, 4))
	assert.Equal(t, 13, stats.Percentage(1, 8)) // 12.5 rounds up
}

func TestContributors(t *testing.T) {
	got := stats.Extract(roster, []model.TaggedEvent{
		{Type: model.EventSubstitution, Player: model.PlayerRef{ID: "a"}, Detail: model.Substitution{}},
		action(model.EventFoul, "b"),
	})
	require.Len(t, got.PlayerStats, 2)
	contrib := stats.Contributors(got.PlayerStats)
	require.Len(t, contrib, 1)
	assert.Equal(t, "b", contrib[0].PlayerID)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, stats.WriteCSV(&buf, stats.Extract(roster, sampleLog())))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5) // header + 3 players + team
	assert.Equal(t, "player", rows[0][0])
	assert.Equal(t, []string{"Anna", "4", "Guard", "6", "2", "3", "67%", "1", "2", "50%", "1", "2", "50%", "0", "0", "0", "0", "0", "0", "0"}, rows[1])
	assert.Equal(t, "TEAM", rows[4][0])
	// Cleo never shot: percentages show the no-attempt sentinel.
	assert.Equal(t, stats.NoAttempts, rows[3][6])
}
