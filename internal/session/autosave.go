package session

import (
	"context"
	"sync"
	"time"

	"github.com/itbasis/go-clock"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
)

// SaveFunc persists a snapshot and returns the handle it was stored under.
type SaveFunc func(ctx context.Context, data model.SaveData) (string, error)

const autosaveTimeout = 10 * time.Second

// autosaver batches mutations over an idle window: every Schedule pushes
// the deadline out by delay, and fn runs once the window passes quietly.
type autosaver struct {
	clock clock.Clock
	delay time.Duration
	fn    func()

	mu    sync.Mutex
	timer interface{ Stop() bool }
}

func newAutosaver(clk clock.Clock, delay time.Duration, fn func()) *autosaver {
	return &autosaver{clock: clk, delay: delay, fn: fn}
}

// Schedule (re)arms the timer.
func (a *autosaver) Schedule() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = a.clock.AfterFunc(a.delay, a.fn)
}

// Stop cancels a pending run.
func (a *autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// flushAutosave is the timer callback. A failed write leaves the session
// dirty; the next mutation re-arms the timer and retries.
func (c *Controller) flushAutosave() {
	ctx, cancel := context.WithTimeout(context.Background(), autosaveTimeout)
	defer cancel()
	if _, err := c.persist(ctx); err != nil {
		c.log.Error().Err(err).Msg("auto-save failed")
	}
}

// Save writes a snapshot through the configured SaveFunc right away and
// cancels any pending auto-save.
func (c *Controller) Save(ctx context.Context) (string, error) {
	if c.save == nil {
		return "", ErrNoStore
	}
	c.autosave.Stop()
	return c.persist(ctx)
}

func (c *Controller) persist(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.save == nil {
		c.mu.Unlock()
		return "", ErrNoStore
	}
	data := c.saveDataLocked()
	rev := c.revision
	c.mu.Unlock()

	handle, err := c.save(ctx, data)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastSaveErr = err
		return "", err
	}
	c.lastSaveErr = nil
	c.lastSavedAt = c.clock.Now().UTC()
	// mutations that raced the write keep the session dirty
	if c.revision == rev {
		c.dirty = false
	}
	c.log.Debug().Str("handle", handle).Int("events", len(data.Events)).Msg("session saved")
	return handle, nil
}
