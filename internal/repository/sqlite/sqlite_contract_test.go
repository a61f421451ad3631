package sqlite

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/maxviazov/hoops-tagging-service/internal/repository"
	"github.com/maxviazov/hoops-tagging-service/internal/repository/contract"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "saves.db")
	s, err := Open(context.Background(), path, zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return s
}

func TestSaveStore_SQLiteContract(t *testing.T) {
	contract.RunSaveStoreContract(t, func(t *testing.T) (repository.SaveStore, func()) {
		s := openTemp(t)
		return s, func() { _ = s.Close() }
	})
}

func TestPinger_SQLiteContract(t *testing.T) {
	contract.RunPingerContract(t, func(t *testing.T) (repository.Pinger, func()) {
		s := openTemp(t)
		return s, func() { _ = s.Close() }
	})
}

func TestOpen_ReappliesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves.db")
	ctx := context.Background()

	s, err := Open(ctx, path, zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := s.Save(ctx, "s1", contract.SampleSave("s1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = s.Close()

	s, err = Open(ctx, path, zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s.Close()
	got, err := s.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("load after reopen: %v", err)
	}
	if len(got.Events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(got.Events))
	}
}

func TestStore_ClosedReportsUnavailable(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	_ = s.Close()

	if _, err := s.Save(ctx, "s1", contract.SampleSave("s1")); !errors.Is(err, repository.ErrUnavailable) {
		t.Fatalf("save: expected ErrUnavailable, got %v", err)
	}
	if _, err := s.Load(ctx, "s1"); !errors.Is(err, repository.ErrUnavailable) {
		t.Fatalf("load: expected ErrUnavailable, got %v", err)
	}
	if err := s.Delete(ctx, "s1"); !errors.Is(err, repository.ErrUnavailable) {
		t.Fatalf("delete: expected ErrUnavailable, got %v", err)
	}
	if _, err := s.List(ctx); !errors.Is(err, repository.ErrUnavailable) {
		t.Fatalf("list: expected ErrUnavailable, got %v", err)
	}
}
