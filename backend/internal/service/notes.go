package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mindgraph/backend/internal/graph"
	"mindgraph/backend/internal/nlp"
	"mindgraph/backend/pkg/errors"
	"mindgraph/backend/pkg/logger"
)

// NoteService orchestrates note CRUD together with enrichment and
// relationship synchronization
type NoteService struct {
	notes  NoteStore
	intel  nlp.TextIntelligence
	sync   *Synchronizer
	logger *zap.Logger
}

// NewNoteService wires the note use cases
func NewNoteService(notes NoteStore, intel nlp.TextIntelligence, sync *Synchronizer) *NoteService {
	return &NoteService{
		notes:  notes,
		intel:  intel,
		sync:   sync,
		logger: logger.Get(),
	}
}

// RelatedNote pairs another note with the relationship connecting it
type RelatedNote struct {
	Note         *graph.Note  `json:"note"`
	Relationship RelationInfo `json:"relationship"`
}

// RelationInfo is the relationship half of a related-note result
type RelationInfo struct {
	Type           graph.RelationshipType `json:"type"`
	Similarity     float64                `json:"similarity"`
	SharedEntities []graph.SharedEntity   `json:"sharedEntities"`
}

// Create enriches the content through the gateway, persists the note and
// synchronizes its relationships against all existing notes. A gateway
// failure aborts before anything is written; a synchronization failure
// leaves the note (and any relationships already created) in place.
func (s *NoteService) Create(ctx context.Context, title, content string, tags []string) (*graph.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.NewValidation("title is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.NewValidation("content is required")
	}

	enrichment, err := s.intel.Process(ctx, content)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	note := &graph.Note{
		ID:         uuid.NewString(),
		Title:      title,
		Content:    content,
		Tags:       mergeTags(tags, enrichment.Tags),
		Entities:   enrichment.Entities,
		KeyPhrases: enrichment.KeyPhrases,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.notes.CreateNote(ctx, note); err != nil {
		return nil, err
	}

	others, err := s.listOthers(ctx, note.ID)
	if err != nil {
		return nil, err
	}
	if err := s.sync.Synchronize(ctx, note, others); err != nil {
		return nil, err
	}

	return note, nil
}

// Get fetches a note by ID
func (s *NoteService) Get(ctx context.Context, id string) (*graph.Note, error) {
	return s.notes.GetNote(ctx, id)
}

// List returns all notes, newest first
func (s *NoteService) List(ctx context.Context) ([]graph.Note, error) {
	return s.notes.ListNotes(ctx)
}

// Update replaces the note's content and tags, re-enriches it from scratch
// (tags, entities and key phrases are fully replaced, not merged with the
// old values) and rebuilds its entire relationship set.
func (s *NoteService) Update(ctx context.Context, id, title, content string, tags []string) (*graph.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.NewValidation("title is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.NewValidation("content is required")
	}

	note, err := s.notes.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}

	enrichment, err := s.intel.Process(ctx, content)
	if err != nil {
		return nil, err
	}

	note.Title = title
	note.Content = content
	note.Tags = mergeTags(tags, enrichment.Tags)
	note.Entities = enrichment.Entities
	note.KeyPhrases = enrichment.KeyPhrases
	note.UpdatedAt = time.Now().UTC()

	if err := s.notes.UpdateNote(ctx, note); err != nil {
		return nil, err
	}

	// Full teardown then rebuild; not transactional, see Synchronizer
	if err := s.sync.Teardown(ctx, note.ID); err != nil {
		return nil, err
	}
	others, err := s.listOthers(ctx, note.ID)
	if err != nil {
		return nil, err
	}
	if err := s.sync.Synchronize(ctx, note, others); err != nil {
		return nil, err
	}

	return note, nil
}

// Delete removes the note; the store cascades deletion to every
// relationship referencing it
func (s *NoteService) Delete(ctx context.Context, id string) error {
	if err := s.notes.DeleteNote(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Note deleted with relationships", zap.String("note_id", id))
	return nil
}

// Related returns every note connected to the given note, regardless of
// which side of the relationship it is on
func (s *NoteService) Related(ctx context.Context, noteID string) ([]RelatedNote, error) {
	if _, err := s.notes.GetNote(ctx, noteID); err != nil {
		return nil, err
	}

	rels, err := s.sync.rels.RelationshipsForNote(ctx, noteID)
	if err != nil {
		return nil, err
	}

	related := []RelatedNote{}
	for _, rel := range rels {
		other, err := s.notes.GetNote(ctx, rel.OtherNoteID(noteID))
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		related = append(related, RelatedNote{
			Note: other,
			Relationship: RelationInfo{
				Type:           rel.Type,
				Similarity:     rel.Similarity,
				SharedEntities: rel.SharedEntities,
			},
		})
	}
	return related, nil
}

func (s *NoteService) listOthers(ctx context.Context, noteID string) ([]graph.Note, error) {
	all, err := s.notes.ListNotes(ctx)
	if err != nil {
		return nil, err
	}
	others := make([]graph.Note, 0, len(all))
	for _, n := range all {
		if n.ID != noteID {
			others = append(others, n)
		}
	}
	return others, nil
}

// mergeTags combines caller-supplied tags with gateway-derived tags,
// caller's first, deduplicated case-sensitively in order
func mergeTags(caller, derived []string) []string {
	merged := []string{}
	seen := make(map[string]bool)
	for _, t := range append(append([]string{}, caller...), derived...) {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		merged = append(merged, t)
	}
	return merged
}
