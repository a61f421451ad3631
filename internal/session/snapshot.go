package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
)

// GenerateSaveData builds a fresh snapshot of the whole session.
func (c *Controller) GenerateSaveData() model.SaveData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveDataLocked()
}

func (c *Controller) saveDataLocked() model.SaveData {
	events := c.sortedEventsLocked()
	return model.SaveData{
		Version:      model.SaveVersion,
		Timestamp:    c.clock.Now().UTC(),
		LastModified: c.lastModified,
		VideoID:      c.videoID,
		PlaylistID:   c.playlistID,
		Players:      append([]model.Player{}, c.players...),
		Events:       events,
		Metadata: model.SaveMetadata{
			TotalEvents:   len(events),
			TotalTimeSpan: model.TotalTimeSpan(events),
			ExportFormat:  model.ExportFormat,
		},
		GameNumber: copyInt(c.gameNumber),
		VideoIndex: copyInt(c.videoIndex),
	}
}

// Restore replaces roster, log and video metadata with the snapshot. Nothing
// is merged. The restored state counts as saved.
func (c *Controller) Restore(data model.SaveData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.videoID = data.VideoID
	c.playlistID = data.PlaylistID
	c.gameNumber = copyInt(data.GameNumber)
	c.videoIndex = copyInt(data.VideoIndex)
	c.players = append([]model.Player{}, data.Players...)
	c.events = append([]model.TaggedEvent{}, data.Events...)
	c.lastModified = data.LastModified
	if c.lastModified.IsZero() {
		c.lastModified = c.clock.Now().UTC()
	}
	c.revision++
	c.dirty = false
	c.guard.Reset()
	if c.autosave != nil {
		c.autosave.Stop()
	}
	c.log.Info().Int("players", len(data.Players)).Int("events", len(data.Events)).Msg("session restored")
}

// ExportTimestamps renders the log as "mm:ss - description" lines in
// timestamp order.
func (c *Controller) ExportTimestamps() string {
	return FormatTimestamps(c.Events())
}

// FormatTimestamps renders already sorted events one per line.
func FormatTimestamps(events []model.TaggedEvent) string {
	var b strings.Builder
	for _, e := range events {
		b.WriteString(FormatClock(e.Timestamp))
		b.WriteString(" - ")
		b.WriteString(e.Description)
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatClock renders seconds as mm:ss, truncating fractions. Minutes are
// not wrapped into hours.
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	s := int(seconds)
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

// TaggedMinutes is the span of tagged video in minutes (latest timestamp
// / 60). It approximates minutes played and is labelled as such wherever
// it is shown.
func (c *Controller) TaggedMinutes() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.TotalTimeSpan(c.events) / 60
}

// Summary is a point-in-time view of session bookkeeping.
type Summary struct {
	ID            string    `json:"id"`
	State         State     `json:"state"`
	VideoID       string    `json:"videoId,omitempty"`
	PlaylistID    string    `json:"playlistId,omitempty"`
	GameNumber    *int      `json:"gameNumber,omitempty"`
	VideoIndex    *int      `json:"videoIndex,omitempty"`
	Players       int       `json:"players"`
	Events        int       `json:"events"`
	SkipEnabled   bool      `json:"skipEnabled"`
	Revision      uint64    `json:"revision"`
	Dirty         bool      `json:"dirty"`
	LastModified  time.Time `json:"lastModified"`
	LastSavedAt   time.Time `json:"lastSavedAt,omitzero"`
	LastSaveError string    `json:"lastSaveError,omitempty"`
	// TaggedMinutes approximates minutes played from the latest timestamp.
	TaggedMinutes float64 `json:"taggedMinutesApprox"`
}

// Summary reports the session's bookkeeping state.
func (c *Controller) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Summary{
		ID:            c.id,
		State:         c.state,
		VideoID:       c.videoID,
		PlaylistID:    c.playlistID,
		GameNumber:    copyInt(c.gameNumber),
		VideoIndex:    copyInt(c.videoIndex),
		Players:       len(c.players),
		Events:        len(c.events),
		SkipEnabled:   c.skipEnabled,
		Revision:      c.revision,
		Dirty:         c.dirty,
		LastModified:  c.lastModified,
		LastSavedAt:   c.lastSavedAt,
		TaggedMinutes: model.TotalTimeSpan(c.events) / 60,
	}
	if c.lastSaveErr != nil {
		s.LastSaveError = c.lastSaveErr.Error()
	}
	return s
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
