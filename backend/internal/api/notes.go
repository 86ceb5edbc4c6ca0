package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mindgraph/backend/internal/importer"
	"mindgraph/backend/internal/service"
)

type noteHandlers struct {
	notes    *service.NoteService
	importer *importer.WebImporter
}

type createNoteRequest struct {
	Title   string   `json:"title" binding:"required"`
	Content string   `json:"content" binding:"required"`
	Tags    []string `json:"tags"`
}

func (h *noteHandlers) create(c *gin.Context) {
	var req createNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	note, err := h.notes.Create(c.Request.Context(), req.Title, req.Content, req.Tags)
	if err != nil {
		respondError(c, "Error creating note", err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

type importNoteRequest struct {
	URL  string   `json:"url" binding:"required"`
	Tags []string `json:"tags"`
}

func (h *noteHandlers) importFromURL(c *gin.Context) {
	var req importNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	page, err := h.importer.Extract(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, "Error importing page", err)
		return
	}

	title := page.Title
	if title == "" {
		title = req.URL
	}
	note, err := h.notes.Create(c.Request.Context(), title, page.Text, req.Tags)
	if err != nil {
		respondError(c, "Error creating note", err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (h *noteHandlers) list(c *gin.Context) {
	notes, err := h.notes.List(c.Request.Context())
	if err != nil {
		respondError(c, "Error fetching notes", err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

func (h *noteHandlers) get(c *gin.Context) {
	note, err := h.notes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Error fetching note", err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *noteHandlers) update(c *gin.Context) {
	var req createNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	note, err := h.notes.Update(c.Request.Context(), c.Param("id"), req.Title, req.Content, req.Tags)
	if err != nil {
		respondError(c, "Error updating note", err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *noteHandlers) remove(c *gin.Context) {
	if err := h.notes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "Error deleting note", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Note deleted successfully"})
}

func (h *noteHandlers) related(c *gin.Context) {
	related, err := h.notes.Related(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Error fetching related notes", err)
		return
	}
	c.JSON(http.StatusOK, related)
}
