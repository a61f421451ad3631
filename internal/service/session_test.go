package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/itbasis/go-clock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
	"github.com/maxviazov/hoops-tagging-service/internal/repository"
	"github.com/maxviazov/hoops-tagging-service/internal/repository/memory"
	"github.com/maxviazov/hoops-tagging-service/internal/service"
	"github.com/maxviazov/hoops-tagging-service/internal/session"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// brokenStore fails every call like an unreachable backend.
type brokenStore struct{}

var errDown = repository.Unavailable("save", errors.New("connection refused"))

func (brokenStore) Save(context.Context, string, model.SaveData) (string, error) { return "", errDown }
func (brokenStore) Load(context.Context, string) (model.SaveData, error) {
	return model.SaveData{}, errDown
}
func (brokenStore) Delete(context.Context, string) error                   { return errDown }
func (brokenStore) List(context.Context) ([]repository.SaveInfo, error) { return nil, errDown }

func newService(store repository.SaveStore) service.SessionService {
	return service.NewSessionService(store, service.Options{
		Clock: clock.NewMock(),
		NewID: sequentialIDs(),
	}, zerolog.New(io.Discard))
}

func twoPlayers() []service.PlayerInput {
	return []service.PlayerInput{
		{Name: "Anna", JerseyNumber: 4, Position: "guard"},
		{Name: "Ben", JerseyNumber: 12, Position: "Center"},
	}
}

// readySession creates a session whose client player already reported ready.
func readySession(t *testing.T, svc service.SessionService) (string, []model.Player) {
	t.Helper()
	ctx := context.Background()
	sum, err := svc.CreateSession(ctx, service.CreateSessionInput{VideoID: "vid-1", Players: twoPlayers()})
	require.NoError(t, err)
	_, err = svc.PlayerReady(ctx, sum.ID)
	require.NoError(t, err)
	players, err := svc.Players(ctx, sum.ID)
	require.NoError(t, err)
	require.Len(t, players, 2)
	return sum.ID, players
}

func tagAt(t *testing.T, svc service.SessionService, id string, at float64, in service.EventInput) model.TaggedEvent {
	t.Helper()
	ctx := context.Background()
	_, err := svc.ReportTime(ctx, id, at)
	require.NoError(t, err)
	ev, added, err := svc.AddEvent(ctx, id, in)
	require.NoError(t, err)
	require.True(t, added)
	return ev
}

func TestCreateSession_Validation(t *testing.T) {
	svc := newService(memory.NewSaveStore())
	ctx := context.Background()

	tests := []struct {
		name      string
		players   []service.PlayerInput
		wantField string
	}{
		{"empty name", []service.PlayerInput{{Name: "  ", JerseyNumber: 4, Position: "Guard"}}, "players[0].name"},
		{"long name", []service.PlayerInput{{Name: strings.Repeat("x", 51), JerseyNumber: 4, Position: "Guard"}}, "players[0].name"},
		{"jersey zero", []service.PlayerInput{{Name: "Anna", JerseyNumber: 0, Position: "Guard"}}, "players[0].jerseyNumber"},
		{"jersey too high", []service.PlayerInput{{Name: "Anna", JerseyNumber: 100, Position: "Guard"}}, "players[0].jerseyNumber"},
		{"unknown position", []service.PlayerInput{{Name: "Anna", JerseyNumber: 4, Position: "Libero"}}, "players[0].position"},
		{
			"duplicate jersey",
			[]service.PlayerInput{
				{Name: "Anna", JerseyNumber: 4, Position: "Guard"},
				{Name: "Cleo", JerseyNumber: 4, Position: "Forward"},
			},
			"players[1].jerseyNumber",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSession(ctx, service.CreateSessionInput{Players: tt.players})
			require.ErrorIs(t, err, service.ErrInvalidInput)
			fields := service.FieldErrors(err)
			require.NotEmpty(t, fields)
			assert.Equal(t, tt.wantField, fields[0].Field)
		})
	}
	assert.Empty(t, svc.ListSessions(ctx), "nothing registered on invalid input")
}

func TestSession_TagAndExport(t *testing.T) {
	svc := newService(memory.NewSaveStore())
	ctx := context.Background()
	id, players := readySession(t, svc)
	anna, ben := players[0], players[1]

	tagAt(t, svc, id, 12, service.EventInput{Type: "timeout"})
	tagAt(t, svc, id, 75, service.EventInput{Type: "shot", PlayerID: anna.ID, Points: 2})
	tagAt(t, svc, id, 90, service.EventInput{Type: "shot", PlayerID: ben.ID, Points: 3, Missed: true, ReboundPlayerID: anna.ID})

	events, err := svc.Events(ctx, id)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, 75.0, events[1].Timestamp)

	st, err := svc.Stats(ctx, id, false)
	require.NoError(t, err)
	assert.Equal(t, 2, st.TeamStats.Points)
	assert.Equal(t, 2, st.TeamStats.FieldGoals.Attempted)
	assert.Equal(t, 1, st.TeamStats.FieldGoals.Made)

	text, err := svc.ExportTimestamps(ctx, id)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "00:12 - Time Out\n01:15 - Shot Anna: two. Made\n"), text)

	var csv bytes.Buffer
	require.NoError(t, svc.ExportStatsCSV(ctx, id, &csv))
	assert.Contains(t, csv.String(), "Anna")
	assert.Contains(t, csv.String(), "TEAM")

	sum, err := svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Events)
	assert.True(t, sum.Dirty)
}

func TestSession_StatsHideIdlePlayersUnlessAll(t *testing.T) {
	svc := newService(memory.NewSaveStore())
	ctx := context.Background()
	id, players := readySession(t, svc)
	tagAt(t, svc, id, 5, service.EventInput{Type: "steal", PlayerID: players[0].ID})

	st, err := svc.Stats(ctx, id, false)
	require.NoError(t, err)
	require.Len(t, st.PlayerStats, 1)
	assert.Equal(t, "Anna", st.PlayerStats[0].Name)
}

func TestAddEvent_Rules(t *testing.T) {
	svc := newService(memory.NewSaveStore())
	ctx := context.Background()

	t.Run("not ready", func(t *testing.T) {
		sum, err := svc.CreateSession(ctx, service.CreateSessionInput{})
		require.NoError(t, err)
		_, _, err = svc.AddEvent(ctx, sum.ID, service.EventInput{Type: "timeout"})
		assert.ErrorIs(t, err, session.ErrNotReady)
	})

	id, players := readySession(t, svc)

	t.Run("missing player is ignored", func(t *testing.T) {
		_, added, err := svc.AddEvent(ctx, id, service.EventInput{Type: "foul"})
		require.NoError(t, err)
		assert.False(t, added)
	})
	t.Run("unknown type", func(t *testing.T) {
		_, _, err := svc.AddEvent(ctx, id, service.EventInput{Type: "dunk"})
		require.ErrorIs(t, err, service.ErrInvalidInput)
		assert.Equal(t, "type", service.FieldErrors(err)[0].Field)
	})
	t.Run("shot needs points", func(t *testing.T) {
		_, _, err := svc.AddEvent(ctx, id, service.EventInput{Type: "shot", PlayerID: players[0].ID, Points: 4})
		require.ErrorIs(t, err, service.ErrInvalidInput)
	})
	t.Run("unknown player", func(t *testing.T) {
		_, _, err := svc.AddEvent(ctx, id, service.EventInput{Type: "block", PlayerID: "ghost"})
		assert.ErrorIs(t, err, session.ErrPlayerNotFound)
	})
	t.Run("unknown session", func(t *testing.T) {
		_, _, err := svc.AddEvent(ctx, "nope", service.EventInput{Type: "timeout"})
		assert.ErrorIs(t, err, service.ErrNoSession)
	})
	t.Run("delete", func(t *testing.T) {
		ev := tagAt(t, svc, id, 3, service.EventInput{Type: "highlight"})
		require.NoError(t, svc.DeleteEvent(ctx, id, ev.ID))
		assert.ErrorIs(t, svc.DeleteEvent(ctx, id, ev.ID), session.ErrEventNotFound)
	})
}

func TestRoster_Edits(t *testing.T) {
	svc := newService(memory.NewSaveStore())
	ctx := context.Background()
	id, players := readySession(t, svc)
	tagAt(t, svc, id, 30, service.EventInput{Type: "assist", PlayerID: players[1].ID})

	cleo, err := svc.AddPlayer(ctx, id, service.PlayerInput{Name: "Cleo", JerseyNumber: 7, Position: "F"})
	require.NoError(t, err)
	assert.NotEmpty(t, cleo.ID)
	assert.Equal(t, model.PositionForward, cleo.Position)

	_, err = svc.AddPlayer(ctx, id, service.PlayerInput{Name: "Dee", JerseyNumber: 7, Position: "Guard"})
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.Equal(t, "jerseyNumber", service.FieldErrors(err)[0].Field)

	// keeping one's own number is not a conflict
	renamed, err := svc.UpdatePlayer(ctx, id, players[1].ID, service.PlayerInput{Name: "Benny", JerseyNumber: 12, Position: "Center"})
	require.NoError(t, err)
	assert.Equal(t, "Benny", renamed.Name)
	events, err := svc.Events(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, events[0].Description, "Benny")

	_, err = svc.UpdatePlayer(ctx, id, "ghost", service.PlayerInput{Name: "X", JerseyNumber: 1, Position: "Guard"})
	assert.ErrorIs(t, err, session.ErrPlayerNotFound)

	require.NoError(t, svc.RemovePlayer(ctx, id, cleo.ID))
	assert.ErrorIs(t, svc.RemovePlayer(ctx, id, cleo.ID), session.ErrPlayerNotFound)
}

func TestPlayback_SkipDirective(t *testing.T) {
	svc := newService(memory.NewSaveStore())
	ctx := context.Background()
	id, _ := readySession(t, svc)
	tagAt(t, svc, id, 10, service.EventInput{Type: "action_end"})
	tagAt(t, svc, id, 25, service.EventInput{Type: "action_start"})

	zones, err := svc.SkipZones(ctx, id)
	require.NoError(t, err)
	require.Len(t, zones, 1)

	d, err := svc.ReportTime(ctx, id, 12)
	require.NoError(t, err)
	assert.False(t, d.Seek)

	require.NoError(t, svc.SetSkip(ctx, id, true))
	d, err = svc.ReportTime(ctx, id, 12)
	require.NoError(t, err)
	assert.Equal(t, service.SeekDirective{Seek: true, SeekTo: 25}, d)

	require.NoError(t, svc.Seek(ctx, id, 3))
	d, err = svc.ReportTime(ctx, id, 25.1)
	require.NoError(t, err)
	assert.Equal(t, service.SeekDirective{Seek: true, SeekTo: 3}, d)

	_, err = svc.ReportTime(ctx, id, -1)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestPlayback_SeekBeforeReadyIsQueued(t *testing.T) {
	svc := newService(memory.NewSaveStore())
	ctx := context.Background()
	sum, err := svc.CreateSession(ctx, service.CreateSessionInput{})
	require.NoError(t, err)
	require.NoError(t, svc.Seek(ctx, sum.ID, 42))

	d, err := svc.PlayerReady(ctx, sum.ID)
	require.NoError(t, err)
	assert.Equal(t, service.SeekDirective{Seek: true, SeekTo: 42}, d)
}

func TestSaves_SaveAndLoad(t *testing.T) {
	store := memory.NewSaveStore()
	svc := newService(store)
	ctx := context.Background()
	id, players := readySession(t, svc)
	tagAt(t, svc, id, 8, service.EventInput{Type: "shot", PlayerID: players[0].ID, Points: 1, AndOne: false})

	handle, err := svc.Save(ctx, id)
	require.NoError(t, err)
	sum, err := svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.False(t, sum.Dirty)

	infos, err := svc.ListSaves(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, 1, infos[0].TotalEvents)

	// a fresh process sharing the store reopens the session from the handle
	other := newService(store)
	loaded, err := other.LoadSave(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, handle, loaded.ID)
	assert.Equal(t, 1, loaded.Events)
	assert.Equal(t, "vid-1", loaded.VideoID)
	assert.False(t, loaded.Dirty)

	_, err = other.LoadSave(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, svc.DeleteSave(ctx, handle))
	assert.ErrorIs(t, svc.DeleteSave(ctx, handle), repository.ErrNotFound)
}

func TestSaves_Import(t *testing.T) {
	svc := newService(memory.NewSaveStore())
	ctx := context.Background()

	legacy := `{
		"version": "1.0",
		"players": [{"id": "p1", "name": "Anna", "jerseyNumber": 4, "position": "Guard"}],
		"events": [{"id": "e1", "timestamp": 3, "type": "steal", "player": "Anna", "description": "Steal Anna"}]
	}`
	sum, err := svc.ImportSave(ctx, strings.NewReader(legacy))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Events)

	events, err := svc.Events(ctx, sum.ID)
	require.NoError(t, err)
	assert.Equal(t, "p1", events[0].Player.ID)

	infos, err := svc.ListSaves(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 1)

	_, err = svc.ImportSave(ctx, strings.NewReader(`{"version": "2.0", "players": []}`))
	assert.ErrorIs(t, err, model.ErrMalformedSave)
}

func TestSaves_StoreFailureKeepsWork(t *testing.T) {
	svc := newService(brokenStore{})
	ctx := context.Background()
	id, _ := readySession(t, svc)
	tagAt(t, svc, id, 1, service.EventInput{Type: "timeout"})

	_, err := svc.Save(ctx, id)
	require.ErrorIs(t, err, repository.ErrUnavailable)

	sum, err := svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.True(t, sum.Dirty)
	assert.NotEmpty(t, sum.LastSaveError)

	require.Error(t, svc.CloseSession(ctx, id))
	_, err = svc.GetSession(ctx, id)
	assert.NoError(t, err, "session stays registered after a failed final save")

	assert.ErrorIs(t, svc.Shutdown(ctx), repository.ErrUnavailable)
}

func TestCloseSession_SavesPendingWork(t *testing.T) {
	store := memory.NewSaveStore()
	svc := newService(store)
	ctx := context.Background()
	id, _ := readySession(t, svc)
	tagAt(t, svc, id, 1, service.EventInput{Type: "learning"})

	require.NoError(t, svc.CloseSession(ctx, id))
	_, err := svc.GetSession(ctx, id)
	assert.ErrorIs(t, err, service.ErrNoSession)

	data, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, data.Events, 1)
}
