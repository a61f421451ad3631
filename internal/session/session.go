// Package session owns the in-memory state of one video tagging session:
// roster, event log, playback coupling and auto-save. All mutations go
// through Controller; derived data (stats, skip zones) is recomputed lazily.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/itbasis/go-clock"
	"github.com/rs/zerolog"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
	"github.com/maxviazov/hoops-tagging-service/internal/playback"
)

// Domain errors surfaced by the controller.
var (
	ErrNotReady       = errors.New("session not ready")
	ErrEventNotFound  = errors.New("event not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayerExists   = errors.New("player already exists")
	ErrAttached       = errors.New("session already has a player attached")
	ErrNoStore        = errors.New("session has no save store")
)

// State is the lifecycle position of a session.
type State int

const (
	StateIdle    State = iota // no video loaded
	StateLoading              // player initializing, seeks are queued
	StateReady                // events flow
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "idle"
	}
}

// MarshalText renders the state by name in JSON payloads.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*s = StateIdle
	case "loading":
		*s = StateLoading
	case "ready":
		*s = StateReady
	default:
		return fmt.Errorf("unknown session state %q", b)
	}
	return nil
}

// DefaultAutosaveDelay is the idle window batched into one auto-save.
const DefaultAutosaveDelay = 2 * time.Second

// Options configure a new Controller. Zero values pick sensible defaults.
type Options struct {
	ID         string
	VideoID    string
	PlaylistID string
	GameNumber *int
	VideoIndex *int
	Players    []model.Player

	Clock         clock.Clock
	AutosaveDelay time.Duration
	Save          SaveFunc // nil disables auto-save
	GuardBand     float64
	Debounce      float64
	NewID         func() string
	Logger        zerolog.Logger
}

// Controller is the single entry point for mutating a session.
type Controller struct {
	mu sync.Mutex

	id         string
	videoID    string
	playlistID string
	gameNumber *int
	videoIndex *int

	players []model.Player
	events  []model.TaggedEvent

	state       State
	player      playback.Player
	generation  uint64 // bumps on attach/detach so stale callbacks are ignored
	pendingSeek *float64
	skipEnabled bool
	guard       *playback.SkipGuard

	revision     uint64
	statsRev     uint64
	stats        *model.ExtractedGameStats
	zonesRev     uint64
	zones        []playback.SkipZone
	zonesValid   bool
	lastModified time.Time

	clock       clock.Clock
	newID       func() string
	save        SaveFunc
	autosave    *autosaver
	dirty       bool
	lastSavedAt time.Time
	lastSaveErr error
	log         zerolog.Logger
}

// New creates an idle session.
func New(opts Options) *Controller {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.AutosaveDelay <= 0 {
		opts.AutosaveDelay = DefaultAutosaveDelay
	}
	guard := playback.NewSkipGuard()
	if opts.GuardBand > 0 {
		guard.GuardBand = opts.GuardBand
	}
	if opts.Debounce > 0 {
		guard.Debounce = opts.Debounce
	}

	c := &Controller{
		id:           opts.ID,
		videoID:      opts.VideoID,
		playlistID:   opts.PlaylistID,
		gameNumber:   opts.GameNumber,
		videoIndex:   opts.VideoIndex,
		players:      append([]model.Player(nil), opts.Players...),
		guard:        guard,
		clock:        opts.Clock,
		newID:        opts.NewID,
		save:         opts.Save,
		lastModified: opts.Clock.Now().UTC(),
		log:          opts.Logger.With().Str("module", "session").Str("session_id", opts.ID).Logger(),
	}
	if c.save != nil {
		c.autosave = newAutosaver(opts.Clock, opts.AutosaveDelay, c.flushAutosave)
	}
	return c
}

// ID returns the session identifier.
func (c *Controller) ID() string { return c.id }

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Attach couples a video player to the session and moves it to Loading.
// The session turns Ready when the player reports ready.
func (c *Controller) Attach(p playback.Player) error {
	c.mu.Lock()
	if c.player != nil {
		c.mu.Unlock()
		return ErrAttached
	}
	c.generation++
	gen := c.generation
	c.player = p
	c.state = StateLoading
	c.mu.Unlock()

	c.log.Debug().Msg("player attached")
	p.OnTimeUpdate(func(t float64) { c.handleTimeUpdate(gen, t) })
	p.OnReady(func() { c.handleReady(gen) })
	return nil
}

// Detach releases the player and returns the session to Idle. Pending
// seeks and the scheduled auto-save are dropped; the log is kept.
func (c *Controller) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.player = nil
	c.state = StateIdle
	c.pendingSeek = nil
	c.guard.Reset()
	if c.autosave != nil {
		c.autosave.Stop()
	}
	c.log.Debug().Bool("dirty", c.dirty).Msg("player detached")
}

func (c *Controller) handleReady(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.player == nil {
		c.mu.Unlock()
		return
	}
	c.state = StateReady
	p := c.player
	seek := c.pendingSeek
	c.pendingSeek = nil
	c.mu.Unlock()

	c.log.Debug().Msg("player ready")
	if seek != nil {
		p.SeekTo(*seek)
	}
}

func (c *Controller) handleTimeUpdate(gen uint64, t float64) {
	c.mu.Lock()
	if gen != c.generation || c.state != StateReady || !c.skipEnabled {
		c.mu.Unlock()
		return
	}
	target, ok := c.guard.Check(t, c.skipZonesLocked())
	p := c.player
	c.mu.Unlock()

	if ok {
		c.log.Debug().Float64("from", t).Float64("to", target).Msg("skipping dead time")
		p.SeekTo(target)
	}
}

// SeekTo jumps playback to ts. Before the player is ready the request is
// parked; a later request replaces an unfulfilled one.
func (c *Controller) SeekTo(ts float64) {
	c.mu.Lock()
	if c.state != StateReady || c.player == nil {
		c.pendingSeek = &ts
		c.mu.Unlock()
		return
	}
	p := c.player
	c.mu.Unlock()
	p.SeekTo(ts)
}

// PendingSeek reports the parked seek request, if any.
func (c *Controller) PendingSeek() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingSeek == nil {
		return 0, false
	}
	return *c.pendingSeek, true
}

// SetSkipEnabled toggles automatic dead-time skipping.
func (c *Controller) SetSkipEnabled(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skipEnabled = on
	c.guard.Reset()
}

// SkipEnabled reports whether dead-time skipping is on.
func (c *Controller) SkipEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.skipEnabled
}

// touch marks the log as changed: caches go stale and auto-save re-arms.
// Callers hold c.mu.
func (c *Controller) touch() {
	c.revision++
	c.dirty = true
	c.lastModified = c.clock.Now().UTC()
	if c.autosave != nil {
		c.autosave.Schedule()
	}
}
