package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/maxviazov/hoops-tagging-service/internal/service"
)

// Register mounts all public routes on the given engine.
func Register(r *gin.Engine, store Pinger, svc service.SessionService) {
	h := NewHealthHandler(store)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	RegisterDocs(r)

	api := r.Group(APIV1Prefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		NewSessionHandler(svc).Register(api)
		NewSaveHandler(svc).Register(api)
	}
}
