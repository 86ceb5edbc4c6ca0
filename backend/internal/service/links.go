package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mindgraph/backend/internal/graph"
	"mindgraph/backend/internal/nlp"
	"mindgraph/backend/pkg/errors"
	"mindgraph/backend/pkg/logger"
)

// DefaultLinkThreshold filters closely-related and strongest-link queries
// unless the caller supplies one
const DefaultLinkThreshold = 0.7

const (
	closePreviewLen  = 200
	strongPreviewLen = 100
)

// LinkService implements threshold-filtered relationship queries and manual
// link CRUD
type LinkService struct {
	notes  NoteStore
	rels   RelationshipStore
	intel  nlp.TextIntelligence
	logger *zap.Logger
}

// NewLinkService wires the link use cases
func NewLinkService(notes NoteStore, rels RelationshipStore, intel nlp.TextIntelligence) *LinkService {
	return &LinkService{
		notes:  notes,
		rels:   rels,
		intel:  intel,
		logger: logger.Get(),
	}
}

// NoteRef identifies a note endpoint, optionally with a content preview
type NoteRef struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Preview string `json:"preview,omitempty"`
}

// CloseNote is a closely-related-note result
type CloseNote struct {
	Note           NoteRef                `json:"note"`
	Similarity     float64                `json:"similarity"`
	Type           graph.RelationshipType `json:"relationshipType"`
	SharedEntities []graph.SharedEntity   `json:"sharedEntities"`
}

// LinkView is a relationship with both endpoints resolved
type LinkView struct {
	ID             string                 `json:"id"`
	SourceNote     NoteRef                `json:"sourceNote"`
	TargetNote     NoteRef                `json:"targetNote"`
	Type           graph.RelationshipType `json:"type"`
	Similarity     float64                `json:"similarity"`
	SharedEntities []graph.SharedEntity   `json:"sharedEntities"`
	Metadata       map[string]any         `json:"metadata"`
}

// CloselyRelated returns every relationship touching noteID with similarity
// at or above threshold, each resolved to the other note with a content
// preview
func (s *LinkService) CloselyRelated(ctx context.Context, noteID string, threshold float64) ([]CloseNote, error) {
	rels, err := s.rels.RelationshipsForNoteAbove(ctx, noteID, threshold)
	if err != nil {
		return nil, err
	}

	results := []CloseNote{}
	for _, rel := range rels {
		other, err := s.notes.GetNote(ctx, rel.OtherNoteID(noteID))
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		results = append(results, CloseNote{
			Note: NoteRef{
				ID:      other.ID,
				Title:   other.Title,
				Preview: preview(other.Content, closePreviewLen),
			},
			Similarity:     rel.Similarity,
			Type:           rel.Type,
			SharedEntities: rel.SharedEntities,
		})
	}
	return results, nil
}

// StrongestLinks returns all relationships at or above threshold, sorted by
// similarity descending, with both endpoints resolved
func (s *LinkService) StrongestLinks(ctx context.Context, threshold float64) ([]LinkView, error) {
	rels, err := s.rels.StrongestRelationships(ctx, threshold)
	if err != nil {
		return nil, err
	}
	return s.resolveLinks(ctx, rels, strongPreviewLen)
}

// LinksForNote returns every relationship where the note is either
// endpoint, with both endpoints resolved
func (s *LinkService) LinksForNote(ctx context.Context, noteID string) ([]LinkView, error) {
	rels, err := s.rels.RelationshipsForNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	return s.resolveLinks(ctx, rels, 0)
}

// CreateManualLink links two existing notes by hand. Similarity and shared
// entities are still computed through the gateway so the edge carries real
// scores, but the type is always manual. A duplicate unordered pair is a
// conflict.
func (s *LinkService) CreateManualLink(ctx context.Context, sourceID, targetID string, metadata map[string]any) (*graph.Relationship, error) {
	if sourceID == targetID {
		return nil, errors.NewValidation("source and target notes must be different")
	}

	source, err := s.notes.GetNote(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	target, err := s.notes.GetNote(ctx, targetID)
	if err != nil {
		return nil, err
	}

	result, err := s.intel.Relationships(ctx, source.Content, target.Content)
	if err != nil {
		return nil, err
	}

	merged := map[string]any{}
	for k, v := range metadata {
		merged[k] = v
	}
	merged["createdBy"] = "user"
	merged["lastUpdated"] = time.Now().UTC().Format(time.RFC3339)

	rel := &graph.Relationship{
		ID:             uuid.NewString(),
		SourceNoteID:   sourceID,
		TargetNoteID:   targetID,
		Type:           graph.RelationshipManual,
		Similarity:     result.Similarity,
		SharedEntities: result.SharedEntities,
		Metadata:       merged,
	}

	if err := s.rels.CreateRelationship(ctx, rel); err != nil {
		return nil, err
	}

	s.logger.Info("Manual link created",
		zap.String("relationship_id", rel.ID),
		zap.String("source", sourceID),
		zap.String("target", targetID),
	)
	return rel, nil
}

// UpdateLink shallow-merges new metadata over the existing metadata (new
// keys win) and refreshes lastUpdated. Similarity, type and endpoints are
// immutable.
func (s *LinkService) UpdateLink(ctx context.Context, linkID string, metadata map[string]any) (*graph.Relationship, error) {
	rel, err := s.rels.GetRelationship(ctx, linkID)
	if err != nil {
		return nil, err
	}

	merged := map[string]any{}
	for k, v := range rel.Metadata {
		merged[k] = v
	}
	for k, v := range metadata {
		merged[k] = v
	}
	merged["lastUpdated"] = time.Now().UTC().Format(time.RFC3339)

	if err := s.rels.SetRelationshipMetadata(ctx, linkID, merged); err != nil {
		return nil, err
	}
	rel.Metadata = merged
	return rel, nil
}

// DeleteLink removes a relationship; a missing link is not found, never
// silent success
func (s *LinkService) DeleteLink(ctx context.Context, linkID string) error {
	return s.rels.DeleteRelationship(ctx, linkID)
}

func (s *LinkService) resolveLinks(ctx context.Context, rels []graph.Relationship, previewLen int) ([]LinkView, error) {
	views := []LinkView{}
	for _, rel := range rels {
		source, err := s.notes.GetNote(ctx, rel.SourceNoteID)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		target, err := s.notes.GetNote(ctx, rel.TargetNoteID)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}

		view := LinkView{
			ID:             rel.ID,
			SourceNote:     NoteRef{ID: source.ID, Title: source.Title},
			TargetNote:     NoteRef{ID: target.ID, Title: target.Title},
			Type:           rel.Type,
			Similarity:     rel.Similarity,
			SharedEntities: rel.SharedEntities,
			Metadata:       rel.Metadata,
		}
		if previewLen > 0 {
			view.SourceNote.Preview = preview(source.Content, previewLen)
			view.TargetNote.Preview = preview(target.Content, previewLen)
		}
		views = append(views, view)
	}
	return views, nil
}

// preview truncates content to at most n runes with a trailing ellipsis
func preview(content string, n int) string {
	runes := []rune(content)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + "..."
}
