package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"mindgraph/backend/internal/service"
)

// captureCommand is the prefix that turns a Discord message into a note.
// Usage: !note Title | body text #tag1 #tag2
const captureCommand = "!note"

// CaptureHandler turns Discord messages into notes. Captured notes run
// through the full enrichment and linking pipeline like any other note.
type CaptureHandler struct {
	notes     *service.NoteService
	channelID string
	logger    *zap.Logger
}

// NewCaptureHandler creates a capture handler. channelID restricts capture
// to a single channel; empty means capture from any channel the bot can read.
func NewCaptureHandler(notes *service.NoteService, channelID string, logger *zap.Logger) *CaptureHandler {
	return &CaptureHandler{
		notes:     notes,
		channelID: channelID,
		logger:    logger,
	}
}

// HandleMessage processes an incoming Discord message
func (h *CaptureHandler) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore messages from the bot itself
	if m.Author.ID == s.State.User.ID {
		return
	}

	if h.channelID != "" && m.ChannelID != h.channelID {
		return
	}

	content := strings.TrimSpace(m.Content)
	if !strings.HasPrefix(content, captureCommand) {
		return
	}
	content = strings.TrimSpace(strings.TrimPrefix(content, captureCommand))
	if content == "" {
		_, _ = s.ChannelMessageSend(m.ChannelID, "Usage: `!note Title | body text #tags`")
		return
	}

	title, body := splitCapture(content)
	body, tags := extractHashtags(body)
	tags = append(tags, "discord")

	h.logger.Info("Capturing Discord note",
		zap.String("user_id", m.Author.ID),
		zap.String("channel_id", m.ChannelID),
		zap.String("title", title),
	)

	note, err := h.notes.Create(context.Background(), title, body, tags)
	if err != nil {
		h.logger.Error("Failed to capture note",
			zap.Error(err),
			zap.String("user_id", m.Author.ID),
		)
		_, _ = s.ChannelMessageSend(m.ChannelID, "Sorry, I couldn't save that note.")
		return
	}

	reply := fmt.Sprintf("📝 Saved **%s** (`%s`)", note.Title, note.ID)
	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		h.logger.Error("Failed to send capture confirmation",
			zap.Error(err),
			zap.String("channel_id", m.ChannelID),
		)
	}
}

// splitCapture separates "Title | body" input. Without a separator the
// first line becomes the title and the rest the body; a single line is
// used for both.
func splitCapture(content string) (title, body string) {
	if before, after, ok := strings.Cut(content, "|"); ok {
		title = strings.TrimSpace(before)
		body = strings.TrimSpace(after)
		if body == "" {
			body = title
		}
		return title, body
	}
	if before, after, ok := strings.Cut(content, "\n"); ok {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return content, content
}

// extractHashtags pulls trailing #tag tokens out of the body text.
func extractHashtags(body string) (string, []string) {
	var tags []string
	fields := strings.Fields(body)
	var kept []string
	for _, f := range fields {
		if strings.HasPrefix(f, "#") && len(f) > 1 {
			tags = append(tags, strings.ToLower(strings.TrimPrefix(f, "#")))
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " "), tags
}
