package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mindgraph/backend/internal/service"
)

type linkHandlers struct {
	links *service.LinkService
}

type createLinkRequest struct {
	SourceNoteID string         `json:"sourceNoteId" binding:"required"`
	TargetNoteID string         `json:"targetNoteId" binding:"required"`
	Metadata     map[string]any `json:"metadata"`
}

type updateLinkRequest struct {
	Metadata map[string]any `json:"metadata" binding:"required"`
}

func (h *linkHandlers) createManual(c *gin.Context) {
	var req createLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	link, err := h.links.CreateManualLink(c.Request.Context(), req.SourceNoteID, req.TargetNoteID, req.Metadata)
	if err != nil {
		respondError(c, "Error creating link", err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (h *linkHandlers) strongest(c *gin.Context) {
	threshold := parseThreshold(c, "threshold")
	links, err := h.links.StrongestLinks(c.Request.Context(), threshold)
	if err != nil {
		respondError(c, "Error fetching links", err)
		return
	}
	c.JSON(http.StatusOK, links)
}

func (h *linkHandlers) forNote(c *gin.Context) {
	links, err := h.links.LinksForNote(c.Request.Context(), c.Param("noteId"))
	if err != nil {
		respondError(c, "Error fetching links for note", err)
		return
	}
	c.JSON(http.StatusOK, links)
}

func (h *linkHandlers) update(c *gin.Context) {
	var req updateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	link, err := h.links.UpdateLink(c.Request.Context(), c.Param("linkId"), req.Metadata)
	if err != nil {
		respondError(c, "Error updating link", err)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (h *linkHandlers) remove(c *gin.Context) {
	if err := h.links.DeleteLink(c.Request.Context(), c.Param("linkId")); err != nil {
		respondError(c, "Error deleting link", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Link deleted successfully"})
}
