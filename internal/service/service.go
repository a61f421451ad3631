// Package service holds use-case orchestration between the HTTP layer, live
// tagging sessions and the save store.
// Kept intentionally lean: only use-case coordination, validation and domain error shaping.
package service

import (
	"context"
	"errors"
	"io"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
	"github.com/maxviazov/hoops-tagging-service/internal/playback"
	"github.com/maxviazov/hoops-tagging-service/internal/repository"
	"github.com/maxviazov/hoops-tagging-service/internal/session"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// ErrNoSession is returned for ids that name no live session.
var ErrNoSession = errors.New("session not found")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// NewInvalidInputError builds an aggregated validation error if any field errors are present.
func NewInvalidInputError(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	var v *invalidInputError
	if errors.As(err, &v) {
		return v.Fields()
	}
	return nil
}

// SeekDirective tells a remote player where to jump, if anywhere.
type SeekDirective struct {
	Seek   bool    `json:"seek"`
	SeekTo float64 `json:"seekTo,omitempty"`
}

// SessionService defines the tagging use cases.
type SessionService interface {
	CreateSession(ctx context.Context, in CreateSessionInput) (session.Summary, error)
	GetSession(ctx context.Context, id string) (session.Summary, error)
	ListSessions(ctx context.Context) []session.Summary
	CloseSession(ctx context.Context, id string) error

	Players(ctx context.Context, id string) ([]model.Player, error)
	AddPlayer(ctx context.Context, id string, in PlayerInput) (model.Player, error)
	UpdatePlayer(ctx context.Context, id, playerID string, in PlayerInput) (model.Player, error)
	RemovePlayer(ctx context.Context, id, playerID string) error

	PlayerReady(ctx context.Context, id string) (SeekDirective, error)
	ReportTime(ctx context.Context, id string, seconds float64) (SeekDirective, error)
	Seek(ctx context.Context, id string, seconds float64) error
	SetSkip(ctx context.Context, id string, enabled bool) error

	Events(ctx context.Context, id string) ([]model.TaggedEvent, error)
	AddEvent(ctx context.Context, id string, in EventInput) (model.TaggedEvent, bool, error)
	DeleteEvent(ctx context.Context, id, eventID string) error

	Stats(ctx context.Context, id string, all bool) (model.ExtractedGameStats, error)
	SkipZones(ctx context.Context, id string) ([]playback.SkipZone, error)
	ExportTimestamps(ctx context.Context, id string) (string, error)
	ExportStatsCSV(ctx context.Context, id string, w io.Writer) error
	ExportStatsJSON(ctx context.Context, id string, w io.Writer) error
	ExportSave(ctx context.Context, id string) (model.SaveData, error)

	Save(ctx context.Context, id string) (string, error)
	ImportSave(ctx context.Context, r io.Reader) (session.Summary, error)
	ListSaves(ctx context.Context) ([]repository.SaveInfo, error)
	GetSave(ctx context.Context, handle string) (model.SaveData, error)
	LoadSave(ctx context.Context, handle string) (session.Summary, error)
	DeleteSave(ctx context.Context, handle string) error

	// Shutdown flushes unsaved sessions to the store.
	Shutdown(ctx context.Context) error
}
