package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/hoops-tagging-service/internal/playback"
	"github.com/maxviazov/hoops-tagging-service/internal/service"
	"github.com/maxviazov/hoops-tagging-service/pkg/response"
)

// parseBoolQuery is a helper to flexibly parse boolean-like query parameters.
func parseBoolQuery(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1"
}

// bodyError reports an unparsable request body as a field error.
func bodyError(err error) error {
	return service.NewInvalidInputError([]service.FieldError{{Field: "body", Message: err.Error()}})
}

type SessionHandler struct {
	svc service.SessionService
}

func NewSessionHandler(svc service.SessionService) *SessionHandler { return &SessionHandler{svc: svc} }

func (h *SessionHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/sessions")
	{
		g.POST("", h.create)
		g.GET("", h.list)
		g.GET("/:id", h.get)
		g.DELETE("/:id", h.close)

		g.GET("/:id/players", h.players)
		g.POST("/:id/players", h.addPlayer)
		g.PATCH("/:id/players/:player_id", h.updatePlayer)
		g.DELETE("/:id/players/:player_id", h.removePlayer)

		g.POST("/:id/playback/ready", h.ready)
		g.POST("/:id/playback/time", h.reportTime)
		g.POST("/:id/playback/seek", h.seek)
		g.PUT("/:id/skip", h.setSkip)

		g.GET("/:id/events", h.events)
		g.POST("/:id/events", h.addEvent)
		g.DELETE("/:id/events/:event_id", h.deleteEvent)

		g.GET("/:id/stats", h.stats)
		g.GET("/:id/skip-zones", h.skipZones)

		g.GET("/:id/export/timestamps", h.exportTimestamps)
		g.GET("/:id/export/stats.csv", h.exportStatsCSV)
		g.GET("/:id/export/stats.json", h.exportStatsJSON)
		g.GET("/:id/export/save.json", h.exportSave)

		g.POST("/:id/save", h.save)
	}
}

func (h *SessionHandler) create(c *gin.Context) {
	var req service.CreateSessionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, bodyError(err))
		return
	}
	sum, err := h.svc.CreateSession(c.Request.Context(), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, sum)
}

func (h *SessionHandler) list(c *gin.Context) {
	response.WriteData(c, http.StatusOK, h.svc.ListSessions(c.Request.Context()))
}

func (h *SessionHandler) get(c *gin.Context) {
	sum, err := h.svc.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, sum)
}

func (h *SessionHandler) close(c *gin.Context) {
	if err := h.svc.CloseSession(c.Request.Context(), c.Param("id")); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) players(c *gin.Context) {
	players, err := h.svc.Players(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, players)
}

func (h *SessionHandler) addPlayer(c *gin.Context) {
	var req service.PlayerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, bodyError(err))
		return
	}
	p, err := h.svc.AddPlayer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, p)
}

func (h *SessionHandler) updatePlayer(c *gin.Context) {
	var req service.PlayerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, bodyError(err))
		return
	}
	p, err := h.svc.UpdatePlayer(c.Request.Context(), c.Param("id"), c.Param("player_id"), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, p)
}

func (h *SessionHandler) removePlayer(c *gin.Context) {
	if err := h.svc.RemovePlayer(c.Request.Context(), c.Param("id"), c.Param("player_id")); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type timeRequest struct {
	Seconds *float64 `json:"seconds"`
}

// bindSeconds reads {"seconds": n}; the field is mandatory.
func bindSeconds(c *gin.Context) (float64, bool) {
	var req timeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, bodyError(err))
		return 0, false
	}
	if req.Seconds == nil {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "seconds", Message: "must be set"}}))
		return 0, false
	}
	return *req.Seconds, true
}

func (h *SessionHandler) ready(c *gin.Context) {
	d, err := h.svc.PlayerReady(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, d)
}

func (h *SessionHandler) reportTime(c *gin.Context) {
	seconds, ok := bindSeconds(c)
	if !ok {
		return
	}
	d, err := h.svc.ReportTime(c.Request.Context(), c.Param("id"), seconds)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, d)
}

func (h *SessionHandler) seek(c *gin.Context) {
	seconds, ok := bindSeconds(c)
	if !ok {
		return
	}
	if err := h.svc.Seek(c.Request.Context(), c.Param("id"), seconds); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

type skipRequest struct {
	Enabled *bool `json:"enabled"`
}

func (h *SessionHandler) setSkip(c *gin.Context) {
	var req skipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, bodyError(err))
		return
	}
	if req.Enabled == nil {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "enabled", Message: "must be set"}}))
		return
	}
	if err := h.svc.SetSkip(c.Request.Context(), c.Param("id"), *req.Enabled); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"skipEnabled": *req.Enabled})
}

func (h *SessionHandler) stats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context(), c.Param("id"), parseBoolQuery(c.Query("all")))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, st)
}

func (h *SessionHandler) skipZones(c *gin.Context) {
	zones, err := h.svc.SkipZones(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	if zones == nil {
		zones = []playback.SkipZone{}
	}
	response.WriteData(c, http.StatusOK, gin.H{"zones": zones, "count": len(zones)})
}
