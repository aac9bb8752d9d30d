package httpapi

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/suPer8Hu/askdb/internal/common"
	"github.com/suPer8Hu/askdb/internal/httpapi/handlers"
	"github.com/suPer8Hu/askdb/internal/httpapi/middleware"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/"+handlers.PageTemplate))

func NewRouter(h *handlers.Handler, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())
	r.SetHTMLTemplate(pageTemplate)

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	// page
	r.GET("/", h.Index)
	r.POST("/", h.Ask)

	r.GET("/ping", h.Ping)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/query", h.Query)
	api.GET("/schema", h.GetSchema)
	api.POST("/schema/refresh", h.RefreshSchema)
	api.GET("/history", h.ListHistory)
	api.POST("/jobs", h.CreateJob)
	api.GET("/jobs/:id", h.GetJob)
	return r
}
