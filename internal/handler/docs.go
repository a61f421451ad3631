package handler

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Swagger UI is loaded from a CDN and points at /openapi.yaml.
//
//go:embed docs/swagger.html docs/openapi.yaml
var docsFS embed.FS

// RegisterDocs mounts documentation endpoints at the root:
//   - GET /openapi.yaml: the embedded OpenAPI document
//   - GET /docs: Swagger UI rendering of it
func RegisterDocs(r *gin.Engine) {
	r.GET("/openapi.yaml", serveDoc("docs/openapi.yaml", "application/yaml; charset=utf-8"))
	r.GET("/docs", serveDoc("docs/swagger.html", "text/html; charset=utf-8"))
}

func serveDoc(name, contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := docsFS.ReadFile(name)
		if err != nil {
			c.String(http.StatusInternalServerError, "failed to read %s: %v", name, err)
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}
