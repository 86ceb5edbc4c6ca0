// Package api exposes the HTTP surface: note CRUD, graph queries and
// manual link management.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mindgraph/backend/internal/importer"
	"mindgraph/backend/internal/service"
)

// Services bundles the dependencies the router needs
type Services struct {
	Notes    *service.NoteService
	Links    *service.LinkService
	Graph    *service.GraphService
	Importer *importer.WebImporter
}

// NewRouter builds the gin engine with middleware and all routes mounted
func NewRouter(svcs Services, log *zap.Logger, production bool) *gin.Engine {
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "api"})
	})

	apiGroup := router.Group("/api")

	notes := &noteHandlers{notes: svcs.Notes, importer: svcs.Importer}
	notesGroup := apiGroup.Group("/notes")
	{
		notesGroup.POST("", notes.create)
		notesGroup.POST("/import", notes.importFromURL)
		notesGroup.GET("", notes.list)
		notesGroup.GET("/:id", notes.get)
		notesGroup.PUT("/:id", notes.update)
		notesGroup.DELETE("/:id", notes.remove)
		notesGroup.GET("/:id/related", notes.related)
	}

	graphH := &graphHandlers{graph: svcs.Graph, links: svcs.Links}
	graphGroup := apiGroup.Group("/graph")
	{
		graphGroup.GET("/data", graphH.data)
		graphGroup.GET("/analyze", graphH.analyze)
		graphGroup.GET("/related/:noteId", graphH.closelyRelated)
		graphGroup.GET("/path/:sourceId/:targetId", graphH.findPaths)
	}

	linksH := &linkHandlers{links: svcs.Links}
	linksGroup := apiGroup.Group("/links")
	{
		linksGroup.POST("/manual", linksH.createManual)
		linksGroup.GET("/strongest", linksH.strongest)
		linksGroup.GET("/note/:noteId", linksH.forNote)
		linksGroup.PUT("/:linkId", linksH.update)
		linksGroup.DELETE("/:linkId", linksH.remove)
	}

	return router
}

// ginLogger logs each request through zap
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
