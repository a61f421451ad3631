package playback_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
	"github.com/maxviazov/hoops-tagging-service/internal/playback"
)

func marker(typ model.EventType, ts float64) model.TaggedEvent {
	return model.TaggedEvent{Type: typ, Timestamp: ts}
}

func TestComputeSkipZones(t *testing.T) {
	cases := []struct {
		name   string
		events []model.TaggedEvent
		want   []playback.SkipZone
	}{
		{"empty", nil, nil},
		{"single", []model.TaggedEvent{marker(model.EventActionEnd, 10)}, nil},
		{
			"end then start",
			[]model.TaggedEvent{marker(model.EventActionEnd, 10), marker(model.EventActionStart, 25)},
			[]playback.SkipZone{{Start: 10, End: 25}},
		},
		{
			"unmatched start before the end adds nothing",
			[]model.TaggedEvent{marker(model.EventActionEnd, 10), marker(model.EventActionStart, 25), marker(model.EventActionStart, 5)},
			[]playback.SkipZone{{Start: 10, End: 25}},
		},
		{
			"input order does not matter",
			[]model.TaggedEvent{marker(model.EventActionStart, 25), marker(model.EventActionEnd, 10)},
			[]playback.SkipZone{{Start: 10, End: 25}},
		},
		{
			"consecutive ends keep the latest",
			[]model.TaggedEvent{marker(model.EventActionEnd, 10), marker(model.EventActionEnd, 18), marker(model.EventActionStart, 25)},
			[]playback.SkipZone{{Start: 18, End: 25}},
		},
		{
			"start at the same time as end opens nothing",
			[]model.TaggedEvent{marker(model.EventActionEnd, 10), marker(model.EventActionStart, 10)},
			nil,
		},
		{
			"several zones, other events ignored",
			[]model.TaggedEvent{
				marker(model.EventActionStart, 0),
				marker(model.EventActionEnd, 30),
				{Type: model.EventRebound, Timestamp: 35, Player: model.PlayerRef{ID: "a"}},
				marker(model.EventActionStart, 40),
				marker(model.EventActionEnd, 70),
				marker(model.EventTimeout, 72),
				marker(model.EventActionStart, 90),
				marker(model.EventActionStart, 95),
			},
			[]playback.SkipZone{{Start: 30, End: 40}, {Start: 70, End: 90}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, playback.ComputeSkipZones(tc.events))
		})
	}
}

func TestSkipGuard_Check(t *testing.T) {
	zones := []playback.SkipZone{{Start: 10, End: 25}, {Start: 40, End: 41}}

	t.Run("inside zone seeks to end", func(t *testing.T) {
		g := playback.NewSkipGuard()
		target, ok := g.Check(12, zones)
		require.True(t, ok)
		assert.Equal(t, 25.0, target)
	})

	t.Run("zone start is inclusive", func(t *testing.T) {
		g := playback.NewSkipGuard()
		_, ok := g.Check(10, zones)
		assert.True(t, ok)
	})

	t.Run("guard band before zone end", func(t *testing.T) {
		g := playback.NewSkipGuard()
		_, ok := g.Check(24.6, zones)
		assert.False(t, ok)
		_, ok = g.Check(24.4, zones)
		assert.True(t, ok)
	})

	t.Run("outside any zone", func(t *testing.T) {
		g := playback.NewSkipGuard()
		_, ok := g.Check(30, zones)
		assert.False(t, ok)
	})

	t.Run("debounce after landing", func(t *testing.T) {
		g := playback.NewSkipGuard()
		_, ok := g.Check(12, zones)
		require.True(t, ok)
		// the player reports times around the landing point
		_, ok = g.Check(25.2, zones)
		assert.False(t, ok)
		// a zone close to the last landing is suppressed as well
		near := []playback.SkipZone{{Start: 25, End: 60}}
		_, ok = g.Check(25.5, near)
		assert.False(t, ok)
		_, ok = g.Check(26.5, near)
		assert.True(t, ok)
	})

	t.Run("reset clears debounce", func(t *testing.T) {
		g := playback.NewSkipGuard()
		_, _ = g.Check(12, zones)
		g.Reset()
		_, ok := g.Check(24.4, zones)
		assert.True(t, ok)
	})

	t.Run("zone shorter than guard band never fires", func(t *testing.T) {
		g := playback.NewSkipGuard()
		_, ok := g.Check(40.2, zones)
		assert.True(t, ok, "40.2 < 41-0.5")
		g.Reset()
		_, ok = g.Check(40.6, zones)
		assert.False(t, ok)
	})
}

func TestRemotePlayer(t *testing.T) {
	p := playback.NewRemotePlayer()

	var times []float64
	p.OnTimeUpdate(func(s float64) { times = append(times, s) })
	readyCalls := 0
	p.OnReady(func() { readyCalls++ })

	p.ReportTime(3)
	assert.Equal(t, []float64{3}, times)
	assert.Equal(t, 3.0, p.CurrentTime())

	p.MarkReady()
	p.MarkReady()
	assert.Equal(t, 1, readyCalls)
	assert.True(t, p.Ready())

	late := 0
	p.OnReady(func() { late++ })
	assert.Equal(t, 1, late, "listeners registered after ready fire at once")

	_, ok := p.TakeSeek()
	assert.False(t, ok)
	p.SeekTo(10)
	p.SeekTo(20)
	s, ok := p.TakeSeek()
	require.True(t, ok)
	assert.Equal(t, 20.0, s)
	_, ok = p.TakeSeek()
	assert.False(t, ok)
}

func TestRemotePlayer_ListenerMaySeek(t *testing.T) {
	p := playback.NewRemotePlayer()
	p.OnTimeUpdate(func(s float64) {
		if s < 5 {
			p.SeekTo(5)
		}
	})
	p.ReportTime(1)
	s, ok := p.TakeSeek()
	require.True(t, ok)
	assert.Equal(t, 5.0, s)
}
