// Package server exposes the import and scoring pipeline over HTTP
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/myusername/fm-scout/internal/metrics"
	"github.com/myusername/fm-scout/internal/store"
	"github.com/myusername/fm-scout/pkg/importer"
	"github.com/myusername/fm-scout/pkg/models"
	"github.com/myusername/fm-scout/pkg/roles"
)

// ImportStore is the persistence the server needs; nil disables the /api/imports routes
type ImportStore interface {
	SaveImport(ctx context.Context, source, format string, players []models.Player) (string, error)
	ListImports(ctx context.Context) ([]store.ImportSummary, error)
	LoadRecords(ctx context.Context, id string) ([]models.PlayerRecord, error)
	DeleteImport(ctx context.Context, id string) error
}

// Server wires HTTP handlers to the pipeline
type Server struct {
	catalogue *roles.Catalogue
	presets   []roles.Preset
	importer  *importer.Importer
	store     ImportStore
	recorder  *metrics.Recorder
	log       logrus.FieldLogger
}

// New creates a Server. st and rec may be nil.
func New(im *importer.Importer, presets []roles.Preset, st ImportStore, rec *metrics.Recorder, log logrus.FieldLogger) *Server {
	return &Server{
		catalogue: im.Catalogue(),
		presets:   presets,
		importer:  im,
		store:     st,
		recorder:  rec,
		log:       log,
	}
}

// Router builds the gin engine
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "roles": s.catalogue.Len()})
	})
	if s.recorder != nil {
		r.GET("/metrics", gin.WrapH(s.recorder.Handler()))
	}

	api := r.Group("/api")
	{
		api.GET("/roles", s.getRoles)
		api.GET("/roles/:code", s.getRoleByCode)
		api.GET("/presets", s.getPresets)

		api.POST("/import", s.importFile)
		api.POST("/import/upload", s.importUpload)
		api.POST("/score", s.scoreSelected)

		api.GET("/imports", s.listImports)
		api.GET("/imports/:id/players", s.scoreImport)
		api.DELETE("/imports/:id", s.deleteImport)
	}

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.WithFields(logrus.Fields{
			"http_method": c.Request.Method,
			"http_path":   c.FullPath(),
			"status":      c.Writer.Status(),
		}).Debug("Handled request")
	}
}

func sendError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}
