package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// SaveVersion is written into every new save document. Documents with a
// 1.x version reference players by name only.
const SaveVersion = "2.0"

// ExportFormat tags save documents produced by this service.
const ExportFormat = "hoops-tagging-v2"

// ErrMalformedSave is returned for save documents that cannot be loaded.
var ErrMalformedSave = errors.New("malformed save data")

// SaveMetadata summarizes the event log of a snapshot.
type SaveMetadata struct {
	TotalEvents   int     `json:"totalEvents"`
	TotalTimeSpan float64 `json:"totalTimeSpan"`
	ExportFormat  string  `json:"exportFormat"`
}

// SaveData is a full session snapshot. It is built fresh on every save and
// replaces the in-memory session wholesale on load.
type SaveData struct {
	Version      string        `json:"version" validate:"required"`
	Timestamp    time.Time     `json:"timestamp"`
	LastModified time.Time     `json:"lastModified"`
	VideoID      string        `json:"videoId,omitempty"`
	PlaylistID   string        `json:"playlistId,omitempty"`
	Players      []Player      `json:"players" validate:"required"`
	Events       []TaggedEvent `json:"events" validate:"required"`
	Metadata     SaveMetadata  `json:"metadata"`
	GameNumber   *int          `json:"gameNumber,omitempty"`
	VideoIndex   *int          `json:"videoIndex,omitempty"`
}

// IsLegacy reports whether the document predates id-based player references.
func (d SaveData) IsLegacy() bool {
	return strings.HasPrefix(d.Version, "1.")
}

// TotalTimeSpan is the largest event timestamp, 0 for an empty log.
func TotalTimeSpan(events []TaggedEvent) float64 {
	var span float64
	for _, e := range events {
		if e.Timestamp > span {
			span = e.Timestamp
		}
	}
	return span
}

var saveValidator = validator.New()

// DecodeSaveData parses a save document. Documents missing version,
// players or events are rejected as a whole; legacy name references are
// resolved against the roster.
func DecodeSaveData(r io.Reader) (SaveData, error) {
	var d SaveData
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return SaveData{}, fmt.Errorf("%w: %v", ErrMalformedSave, err)
	}
	if err := saveValidator.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return SaveData{}, fmt.Errorf("%w: missing %s", ErrMalformedSave, strings.ToLower(verrs[0].Field()))
		}
		return SaveData{}, fmt.Errorf("%w: %v", ErrMalformedSave, err)
	}
	for i, e := range d.Events {
		if !e.Type.Valid() {
			return SaveData{}, fmt.Errorf("%w: event %d has unknown type %q", ErrMalformedSave, i, e.Type)
		}
	}
	d.Events = ResolveLegacyRefs(d.Players, d.Events)
	return d, nil
}
