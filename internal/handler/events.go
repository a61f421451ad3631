package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
	"github.com/maxviazov/hoops-tagging-service/internal/service"
	"github.com/maxviazov/hoops-tagging-service/pkg/response"
)

func (h *SessionHandler) events(c *gin.Context) {
	events, err := h.svc.Events(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	if events == nil {
		events = []model.TaggedEvent{}
	}
	response.WriteData(c, http.StatusOK, events)
}

// addEvent answers 201 with the stamped event, or 204 when the event needed
// a player and none was selected.
func (h *SessionHandler) addEvent(c *gin.Context) {
	var req service.EventInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, bodyError(err))
		return
	}
	ev, added, err := h.svc.AddEvent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	if !added {
		c.Status(http.StatusNoContent)
		return
	}
	response.WriteData(c, http.StatusCreated, ev)
}

func (h *SessionHandler) deleteEvent(c *gin.Context) {
	if err := h.svc.DeleteEvent(c.Request.Context(), c.Param("id"), c.Param("event_id")); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
