package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mindgraph/backend/internal/service"
)

type graphHandlers struct {
	graph *service.GraphService
	links *service.LinkService
}

func (h *graphHandlers) data(c *gin.Context) {
	g, err := h.graph.VisualizationGraph(c.Request.Context())
	if err != nil {
		respondError(c, "Error fetching graph data", err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *graphHandlers) analyze(c *gin.Context) {
	clusters, err := h.graph.Analyze(c.Request.Context())
	if err != nil {
		respondError(c, "Error analyzing graph", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clusters": clusters})
}

func (h *graphHandlers) closelyRelated(c *gin.Context) {
	threshold := parseThreshold(c, "similarityThreshold")
	results, err := h.links.CloselyRelated(c.Request.Context(), c.Param("noteId"), threshold)
	if err != nil {
		respondError(c, "Error fetching closely related notes", err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *graphHandlers) findPaths(c *gin.Context) {
	paths, err := h.graph.FindPaths(c.Request.Context(), c.Param("sourceId"), c.Param("targetId"))
	if err != nil {
		respondError(c, "Error finding path between notes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paths": paths})
}

// parseThreshold reads a similarity threshold query param, defaulting to
// 0.7 when absent or malformed
func parseThreshold(c *gin.Context, name string) float64 {
	raw := c.Query(name)
	if raw == "" {
		return service.DefaultLinkThreshold
	}
	threshold, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return service.DefaultLinkThreshold
	}
	return threshold
}
