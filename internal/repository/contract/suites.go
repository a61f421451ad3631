package contract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
	"github.com/maxviazov/hoops-tagging-service/internal/repository"
)

// SaveStoreFactory returns a store with no snapshots in it.
type SaveStoreFactory func(t *testing.T) (repository.SaveStore, func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

// SampleSave is a snapshot that touches every optional field of the save
// format.
func SampleSave(sessionID string) model.SaveData {
	anna := model.Player{ID: sessionID + "-anna", Name: "Anna", JerseyNumber: 4, Position: model.PositionGuard}
	ben := model.Player{ID: sessionID + "-ben", Name: "Ben", JerseyNumber: 12, Position: model.PositionCenter}
	game, video := 2, 0
	events := []model.TaggedEvent{
		{ID: "e1", Timestamp: 3, Type: model.EventStartOfQuarter},
		{ID: "e2", Timestamp: 12.5, Type: model.EventShot, Player: anna.Ref(),
			Detail: model.Shot{Points: 2, Missed: true, Rebounder: ben.Ref()}},
		{ID: "e3", Timestamp: 20, Type: model.EventShot, Player: ben.Ref(),
			Detail: model.Shot{Points: 3, AndOne: true}},
		{ID: "e4", Timestamp: 31.25, Type: model.EventSubstitution, Player: anna.Ref(),
			Detail: model.Substitution{Out: ben.Ref()}},
		{ID: "e5", Timestamp: 40, Type: model.EventActionEnd},
	}
	for i := range events {
		events[i].Description = model.Describe(events[i])
	}
	return model.SaveData{
		Version:      model.SaveVersion,
		Timestamp:    time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC),
		LastModified: time.Date(2025, 3, 1, 18, 29, 41, 0, time.UTC),
		VideoID:      "dQw4w9WgXcQ",
		PlaylistID:   "PL123",
		Players:      []model.Player{anna, ben},
		Events:       events,
		Metadata: model.SaveMetadata{
			TotalEvents:   len(events),
			TotalTimeSpan: model.TotalTimeSpan(events),
			ExportFormat:  model.ExportFormat,
		},
		GameNumber: &game,
		VideoIndex: &video,
	}
}

func RunSaveStoreContract(t *testing.T, makeStore SaveStoreFactory) {
	t.Helper()

	t.Run("save_and_load", func(t *testing.T) {
		store, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		want := SampleSave("s1")
		handle, err := store.Save(ctx, "s1", want)
		require.NoError(t, err)
		require.NotEmpty(t, handle)

		got, err := store.Load(ctx, handle)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("empty_session", func(t *testing.T) {
		store, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		want := model.SaveData{
			Version:  model.SaveVersion,
			Players:  []model.Player{},
			Events:   []model.TaggedEvent{},
			Metadata: model.SaveMetadata{ExportFormat: model.ExportFormat},
		}
		handle, err := store.Save(ctx, "empty", want)
		require.NoError(t, err)
		got, err := store.Load(ctx, handle)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("save_overwrites_session_slot", func(t *testing.T) {
		store, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		first := SampleSave("s1")
		h1, err := store.Save(ctx, "s1", first)
		require.NoError(t, err)

		second := SampleSave("s1")
		second.Events = second.Events[:2]
		second.Metadata.TotalEvents = 2
		h2, err := store.Save(ctx, "s1", second)
		require.NoError(t, err)
		assert.Equal(t, h1, h2)

		got, err := store.Load(ctx, h2)
		require.NoError(t, err)
		assert.Len(t, got.Events, 2)
	})

	t.Run("sessions_get_distinct_handles", func(t *testing.T) {
		store, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		h1, err := store.Save(ctx, "s1", SampleSave("s1"))
		require.NoError(t, err)
		h2, err := store.Save(ctx, "s2", SampleSave("s2"))
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)

		infos, err := store.List(ctx)
		require.NoError(t, err)
		handles := make([]string, 0, len(infos))
		for _, info := range infos {
			handles = append(handles, info.Handle)
			assert.Equal(t, 5, info.TotalEvents)
		}
		assert.ElementsMatch(t, []string{h1, h2}, handles)
	})

	t.Run("load_not_found", func(t *testing.T) {
		store, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		_, err := store.Load(context.Background(), "missing-handle")
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		store, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		handle, err := store.Save(ctx, "s1", SampleSave("s1"))
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, handle))
		_, err = store.Load(ctx, handle)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.ErrorIs(t, store.Delete(ctx, handle), repository.ErrNotFound)
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}
