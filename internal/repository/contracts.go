package repository

import (
	"context"
	"time"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SaveStore is the persistence bridge for session snapshots. Handles are
// opaque to callers; implementations key them by session id so repeated
// saves of one session overwrite a single slot.
type SaveStore interface {
	// Save upserts the snapshot of sessionID and returns its handle.
	Save(ctx context.Context, sessionID string, data model.SaveData) (string, error)
	// Load returns the snapshot stored under handle or ErrNotFound.
	Load(ctx context.Context, handle string) (model.SaveData, error)
	// Delete removes the snapshot or reports ErrNotFound.
	Delete(ctx context.Context, handle string) error
	// List returns stored handles, oldest first.
	List(ctx context.Context) ([]SaveInfo, error)
}

// SaveInfo is the listing entry of one stored snapshot.
type SaveInfo struct {
	Handle       string    `json:"handle"`
	LastModified time.Time `json:"lastModified"`
	TotalEvents  int       `json:"totalEvents"`
}
