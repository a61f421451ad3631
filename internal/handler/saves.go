package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/hoops-tagging-service/internal/repository"
	"github.com/maxviazov/hoops-tagging-service/internal/service"
	"github.com/maxviazov/hoops-tagging-service/pkg/response"
)

// maxSaveBytes caps uploaded save documents.
const maxSaveBytes = 8 << 20

type SaveHandler struct {
	svc service.SessionService
}

func NewSaveHandler(svc service.SessionService) *SaveHandler { return &SaveHandler{svc: svc} }

func (h *SaveHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/saves")
	{
		g.GET("", h.list)
		g.POST("/import", h.importSave)
		g.GET("/:handle", h.get)
		g.POST("/:handle/load", h.load)
		g.DELETE("/:handle", h.delete)
	}
}

func (h *SaveHandler) list(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()
	infos, err := h.svc.ListSaves(ctx)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	if infos == nil {
		infos = []repository.SaveInfo{}
	}
	response.WriteData(c, http.StatusOK, infos)
}

// importSave opens a new session from a save document in the request body.
func (h *SaveHandler) importSave(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxSaveBytes)
	sum, err := h.svc.ImportSave(ctx, body)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, sum)
}

func (h *SaveHandler) get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()
	data, err := h.svc.GetSave(ctx, c.Param("handle"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, data)
}

func (h *SaveHandler) load(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()
	sum, err := h.svc.LoadSave(ctx, c.Param("handle"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, sum)
}

func (h *SaveHandler) delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()
	if err := h.svc.DeleteSave(ctx, c.Param("handle")); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
