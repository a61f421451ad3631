package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/maxviazov/hoops-tagging-service/pkg/response"
)

const serviceTimeout = 5 * time.Second

// attach sends body as a download named after the session.
func attach(c *gin.Context, name, contentType string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, contentType, body)
}

func (h *SessionHandler) exportTimestamps(c *gin.Context) {
	id := c.Param("id")
	text, err := h.svc.ExportTimestamps(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	attach(c, "timestamps-"+id+".txt", "text/plain; charset=utf-8", []byte(text))
}

func (h *SessionHandler) exportStatsCSV(c *gin.Context) {
	id := c.Param("id")
	var buf bytes.Buffer
	if err := h.svc.ExportStatsCSV(c.Request.Context(), id, &buf); err != nil {
		response.WriteError(c, err)
		return
	}
	attach(c, "stats-"+id+".csv", "text/csv; charset=utf-8", buf.Bytes())
}

func (h *SessionHandler) exportStatsJSON(c *gin.Context) {
	id := c.Param("id")
	var buf bytes.Buffer
	if err := h.svc.ExportStatsJSON(c.Request.Context(), id, &buf); err != nil {
		response.WriteError(c, err)
		return
	}
	attach(c, "stats-"+id+".json", "application/json; charset=utf-8", buf.Bytes())
}

func (h *SessionHandler) exportSave(c *gin.Context) {
	id := c.Param("id")
	data, err := h.svc.ExportSave(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="save-%s.json"`, id))
	c.JSON(http.StatusOK, data)
}

// save persists the session now. A store failure answers 502 while the
// session keeps its unsaved log.
func (h *SessionHandler) save(c *gin.Context) {
	start := time.Now()
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()

	handle, err := h.svc.Save(ctx, id)

	logger := log.With().
		Str("path", c.Request.URL.Path).
		Str("session_id", id).
		Dur("duration", time.Since(start)).
		Logger()

	if err != nil {
		status, _ := response.MapError(err)
		logger.Error().Err(err).Int("status", status).Msg("failed to save session")
		response.WriteError(c, err)
		return
	}
	logger.Info().Int("status", http.StatusOK).Str("handle", handle).Msg("session saved")
	response.WriteData(c, http.StatusOK, gin.H{"handle": handle})
}
