package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
	"github.com/maxviazov/hoops-tagging-service/internal/repository"
	"github.com/maxviazov/hoops-tagging-service/internal/session"
)

// Save persists the session right away. The handle names the session's
// slot in the store and stays the same across saves.
func (s *sessionService) Save(ctx context.Context, id string) (string, error) {
	start := time.Now()
	l, err := s.lookup(id)
	if err != nil {
		return "", err
	}
	handle, err := l.ctrl.Save(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("session_id", id).Msg("save failed")
		return "", err
	}
	s.log.Info().Dur("took", time.Since(start)).Str("session_id", id).Str("handle", handle).Msg("session saved")
	return handle, nil
}

// ImportSave opens a new session from an uploaded save document. The
// imported state is persisted under the new session's handle.
func (s *sessionService) ImportSave(ctx context.Context, r io.Reader) (session.Summary, error) {
	data, err := model.DecodeSaveData(r)
	if err != nil {
		s.log.Debug().Err(err).Msg("import rejected")
		return session.Summary{}, err
	}

	s.mu.Lock()
	l := s.open(s.opts.NewID(), session.Options{})
	s.mu.Unlock()
	l.ctrl.Restore(data)

	if _, err := l.ctrl.Save(ctx); err != nil {
		// the session is usable; the store can catch up on the next save
		s.log.Warn().Err(err).Str("session_id", l.ctrl.ID()).Msg("imported session not persisted")
	}
	sum := l.ctrl.Summary()
	s.log.Info().Str("session_id", sum.ID).Int("events", sum.Events).Bool("legacy", data.IsLegacy()).Msg("save imported")
	return sum, nil
}

func (s *sessionService) ListSaves(ctx context.Context) ([]repository.SaveInfo, error) {
	return s.store.List(ctx)
}

func (s *sessionService) GetSave(ctx context.Context, handle string) (model.SaveData, error) {
	if handle == "" {
		return model.SaveData{}, NewInvalidInputError([]FieldError{{Field: "handle", Message: "must not be empty"}})
	}
	return s.store.Load(ctx, handle)
}

// LoadSave restores a stored save into the session that owns the handle,
// opening that session if it is not live. Nothing is merged: the session's
// roster and log are replaced.
func (s *sessionService) LoadSave(ctx context.Context, handle string) (session.Summary, error) {
	data, err := s.GetSave(ctx, handle)
	if err != nil {
		return session.Summary{}, err
	}

	s.mu.Lock()
	l, ok := s.sessions[handle]
	if !ok {
		l = s.open(handle, session.Options{})
	}
	s.mu.Unlock()

	l.ctrl.Restore(data)
	s.log.Info().Str("handle", handle).Bool("reopened", !ok).Int("events", len(data.Events)).Msg("save loaded")
	return l.ctrl.Summary(), nil
}

// DeleteSave removes the stored save. A live session under the same handle
// keeps running and is marked unsaved by its next edit.
func (s *sessionService) DeleteSave(ctx context.Context, handle string) error {
	if handle == "" {
		return NewInvalidInputError([]FieldError{{Field: "handle", Message: "must not be empty"}})
	}
	if err := s.store.Delete(ctx, handle); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Str("handle", handle).Msg("delete save failed")
		}
		return fmt.Errorf("delete save %s: %w", handle, err)
	}
	s.log.Info().Str("handle", handle).Msg("save deleted")
	return nil
}
