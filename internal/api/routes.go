package api

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// NewRouter returns a gin engine with recovery, request logging and all
// routes registered.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.log))
	RegisterRoutes(r, h)
	return r
}

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	r.GET("/", h.form)
	r.POST("/", limitBody(h.maxUploadBytes), h.createInvitation)

	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.GET("/qr", qrHandler)
		api.POST("/invitation", limitBody(h.maxUploadBytes), h.createInvitationJSON)
	}
}
