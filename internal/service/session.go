package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/itbasis/go-clock"
	"github.com/rs/zerolog"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
	"github.com/maxviazov/hoops-tagging-service/internal/playback"
	"github.com/maxviazov/hoops-tagging-service/internal/repository"
	"github.com/maxviazov/hoops-tagging-service/internal/session"
	"github.com/maxviazov/hoops-tagging-service/internal/stats"
)

// Options tune the sessions the service creates. Zero values fall back to
// the session package defaults.
type Options struct {
	Clock         clock.Clock
	AutosaveDelay time.Duration
	GuardBand     float64
	Debounce      float64
	NewID         func() string
}

// live is one registered session and the remote player driving it.
type live struct {
	ctrl   *session.Controller
	player *playback.RemotePlayer
}

type sessionService struct {
	store repository.SaveStore
	opts  Options

	mu       sync.RWMutex
	sessions map[string]*live

	log zerolog.Logger
}

func NewSessionService(store repository.SaveStore, opts Options, logger zerolog.Logger) SessionService {
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	l := logger.With().Str("module", "service").Str("component", "session").Logger()
	return &sessionService{store: store, opts: opts, sessions: make(map[string]*live), log: l}
}

// open registers a fresh controller under id with a remote player attached.
// Callers hold s.mu.
func (s *sessionService) open(id string, base session.Options) *live {
	base.ID = id
	base.Clock = s.opts.Clock
	base.AutosaveDelay = s.opts.AutosaveDelay
	base.GuardBand = s.opts.GuardBand
	base.Debounce = s.opts.Debounce
	base.NewID = s.opts.NewID
	base.Logger = s.log
	base.Save = func(ctx context.Context, data model.SaveData) (string, error) {
		return s.store.Save(ctx, id, data)
	}

	l := &live{ctrl: session.New(base), player: playback.NewRemotePlayer()}
	// a fresh controller is idle, so attaching cannot fail
	_ = l.ctrl.Attach(l.player)
	s.sessions[id] = l
	return l
}

func (s *sessionService) lookup(id string) (*live, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSession, id)
	}
	return l, nil
}

func (s *sessionService) CreateSession(ctx context.Context, in CreateSessionInput) (session.Summary, error) {
	start := time.Now()
	ferrs := structFieldErrors(in)
	players := make([]model.Player, 0, len(in.Players))
	for i, pi := range in.Players {
		field := "players[" + strconv.Itoa(i) + "]."
		p, perrs := normalizePlayer(pi, field)
		ferrs = append(ferrs, perrs...)
		if len(perrs) == 0 {
			ferrs = append(ferrs, jerseyConflict(players, p.JerseyNumber, "", field+"jerseyNumber")...)
		}
		p.ID = s.opts.NewID()
		players = append(players, p)
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", FieldErrors(err)).Msg("session validation failed")
		return session.Summary{}, err
	}

	s.mu.Lock()
	l := s.open(s.opts.NewID(), session.Options{
		VideoID:    in.VideoID,
		PlaylistID: in.PlaylistID,
		GameNumber: in.GameNumber,
		VideoIndex: in.VideoIndex,
		Players:    players,
	})
	s.mu.Unlock()

	sum := l.ctrl.Summary()
	s.log.Info().Dur("took", time.Since(start)).Str("session_id", sum.ID).Int("players", sum.Players).Msg("session created")
	return sum, nil
}

func (s *sessionService) GetSession(ctx context.Context, id string) (session.Summary, error) {
	l, err := s.lookup(id)
	if err != nil {
		return session.Summary{}, err
	}
	return l.ctrl.Summary(), nil
}

func (s *sessionService) ListSessions(ctx context.Context) []session.Summary {
	s.mu.RLock()
	out := make([]session.Summary, 0, len(s.sessions))
	for _, l := range s.sessions {
		out = append(out, l.ctrl.Summary())
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CloseSession unregisters the session after a final save of unsaved work.
// A failed save keeps the session registered so the log is not lost.
func (s *sessionService) CloseSession(ctx context.Context, id string) error {
	l, err := s.lookup(id)
	if err != nil {
		return err
	}
	if l.ctrl.Summary().Dirty {
		if _, err := l.ctrl.Save(ctx); err != nil {
			s.log.Error().Err(err).Str("session_id", id).Msg("final save failed, session kept")
			return err
		}
	}
	l.ctrl.Detach()

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.log.Info().Str("session_id", id).Msg("session closed")
	return nil
}

func (s *sessionService) Players(ctx context.Context, id string) ([]model.Player, error) {
	l, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return l.ctrl.Players(), nil
}

func (s *sessionService) AddPlayer(ctx context.Context, id string, in PlayerInput) (model.Player, error) {
	l, err := s.lookup(id)
	if err != nil {
		return model.Player{}, err
	}
	p, ferrs := normalizePlayer(in, "")
	if len(ferrs) == 0 {
		ferrs = jerseyConflict(l.ctrl.Players(), p.JerseyNumber, "", "jerseyNumber")
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Str("session_id", id).Msg("player validation failed")
		return model.Player{}, err
	}
	out, err := l.ctrl.AddPlayer(p)
	if err != nil {
		return model.Player{}, err
	}
	s.log.Info().Str("session_id", id).Str("player_id", out.ID).Msg("player added")
	return out, nil
}

func (s *sessionService) UpdatePlayer(ctx context.Context, id, playerID string, in PlayerInput) (model.Player, error) {
	l, err := s.lookup(id)
	if err != nil {
		return model.Player{}, err
	}
	roster := l.ctrl.Players()
	if !containsPlayer(roster, playerID) {
		return model.Player{}, fmt.Errorf("%w: %s", session.ErrPlayerNotFound, playerID)
	}
	p, ferrs := normalizePlayer(in, "")
	if len(ferrs) == 0 {
		ferrs = jerseyConflict(roster, p.JerseyNumber, playerID, "jerseyNumber")
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		return model.Player{}, err
	}
	p.ID = playerID
	if err := l.ctrl.UpdatePlayer(p); err != nil {
		return model.Player{}, err
	}
	s.log.Info().Str("session_id", id).Str("player_id", playerID).Msg("player updated")
	return p, nil
}

func (s *sessionService) RemovePlayer(ctx context.Context, id, playerID string) error {
	l, err := s.lookup(id)
	if err != nil {
		return err
	}
	return l.ctrl.RemovePlayer(playerID)
}

func (s *sessionService) PlayerReady(ctx context.Context, id string) (SeekDirective, error) {
	l, err := s.lookup(id)
	if err != nil {
		return SeekDirective{}, err
	}
	l.player.MarkReady()
	return takeSeek(l.player), nil
}

// ReportTime feeds the client's playback position to the session. The
// reply carries any jump the session wants the client to make.
func (s *sessionService) ReportTime(ctx context.Context, id string, seconds float64) (SeekDirective, error) {
	if seconds < 0 {
		return SeekDirective{}, NewInvalidInputError([]FieldError{{Field: "seconds", Message: "must be >= 0"}})
	}
	l, err := s.lookup(id)
	if err != nil {
		return SeekDirective{}, err
	}
	l.player.ReportTime(seconds)
	return takeSeek(l.player), nil
}

func (s *sessionService) Seek(ctx context.Context, id string, seconds float64) error {
	if seconds < 0 {
		return NewInvalidInputError([]FieldError{{Field: "seconds", Message: "must be >= 0"}})
	}
	l, err := s.lookup(id)
	if err != nil {
		return err
	}
	l.ctrl.SeekTo(seconds)
	return nil
}

func (s *sessionService) SetSkip(ctx context.Context, id string, enabled bool) error {
	l, err := s.lookup(id)
	if err != nil {
		return err
	}
	l.ctrl.SetSkipEnabled(enabled)
	return nil
}

func (s *sessionService) Events(ctx context.Context, id string) ([]model.TaggedEvent, error) {
	l, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return l.ctrl.Events(), nil
}

func (s *sessionService) AddEvent(ctx context.Context, id string, in EventInput) (model.TaggedEvent, bool, error) {
	typ, ferrs := normalizeEvent(in)
	if err := NewInvalidInputError(ferrs); err != nil {
		return model.TaggedEvent{}, false, err
	}
	l, err := s.lookup(id)
	if err != nil {
		return model.TaggedEvent{}, false, err
	}
	ev, added, err := l.ctrl.AddEvent(session.EventInput{
		Type:              typ,
		PlayerID:          in.PlayerID,
		Points:            in.Points,
		Missed:            in.Missed,
		AndOne:            in.AndOne,
		ReboundPlayerID:   in.ReboundPlayerID,
		SubstitutionOutID: in.SubstitutionOutID,
	})
	if err != nil {
		return model.TaggedEvent{}, false, err
	}
	if added {
		s.log.Debug().Str("session_id", id).Str("event_id", ev.ID).Str("type", string(ev.Type)).Float64("ts", ev.Timestamp).Msg("event tagged")
	}
	return ev, added, nil
}

func (s *sessionService) DeleteEvent(ctx context.Context, id, eventID string) error {
	l, err := s.lookup(id)
	if err != nil {
		return err
	}
	return l.ctrl.DeleteEvent(eventID)
}

// Stats returns the box score. Unless all is set, players without any
// counted stat are left out.
func (s *sessionService) Stats(ctx context.Context, id string, all bool) (model.ExtractedGameStats, error) {
	l, err := s.lookup(id)
	if err != nil {
		return model.ExtractedGameStats{}, err
	}
	st := l.ctrl.Stats()
	if !all {
		st.PlayerStats = stats.Contributors(st.PlayerStats)
	}
	return st, nil
}

func (s *sessionService) SkipZones(ctx context.Context, id string) ([]playback.SkipZone, error) {
	l, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return l.ctrl.SkipZones(), nil
}

func (s *sessionService) ExportTimestamps(ctx context.Context, id string) (string, error) {
	l, err := s.lookup(id)
	if err != nil {
		return "", err
	}
	return l.ctrl.ExportTimestamps(), nil
}

func (s *sessionService) ExportStatsCSV(ctx context.Context, id string, w io.Writer) error {
	st, err := s.Stats(ctx, id, false)
	if err != nil {
		return err
	}
	return stats.WriteCSV(w, st)
}

func (s *sessionService) ExportStatsJSON(ctx context.Context, id string, w io.Writer) error {
	st, err := s.Stats(ctx, id, false)
	if err != nil {
		return err
	}
	return stats.WriteJSON(w, st)
}

func (s *sessionService) ExportSave(ctx context.Context, id string) (model.SaveData, error) {
	l, err := s.lookup(id)
	if err != nil {
		return model.SaveData{}, err
	}
	return l.ctrl.GenerateSaveData(), nil
}

// Shutdown saves every dirty session. All sessions are attempted; the
// returned error joins the individual failures.
func (s *sessionService) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	all := make([]*live, 0, len(s.sessions))
	for _, l := range s.sessions {
		all = append(all, l)
	}
	s.mu.RUnlock()

	var errs []error
	saved := 0
	for _, l := range all {
		if l.ctrl.Summary().Dirty {
			if _, err := l.ctrl.Save(ctx); err != nil {
				errs = append(errs, fmt.Errorf("session %s: %w", l.ctrl.ID(), err))
				continue
			}
			saved++
		}
		l.ctrl.Detach()
	}
	s.log.Info().Int("sessions", len(all)).Int("saved", saved).Int("failed", len(errs)).Msg("sessions flushed")
	return errors.Join(errs...)
}

func takeSeek(p *playback.RemotePlayer) SeekDirective {
	if t, ok := p.TakeSeek(); ok {
		return SeekDirective{Seek: true, SeekTo: t}
	}
	return SeekDirective{}
}

func containsPlayer(roster []model.Player, id string) bool {
	for _, p := range roster {
		if p.ID == id {
			return true
		}
	}
	return false
}

var _ SessionService = (*sessionService)(nil)
