package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mindgraph/backend/internal/graph"
	"mindgraph/backend/internal/nlp"
	"mindgraph/backend/pkg/logger"
)

// CreationThreshold is the strict lower bound a pairwise similarity must
// exceed before automatic synchronization creates a relationship.
const CreationThreshold = 0.4

// Synchronizer derives a note's relationships against every other note
// after a create or update. Pairwise comparisons are independent and run
// concurrently under a bounded group.
type Synchronizer struct {
	rels        RelationshipStore
	intel       nlp.TextIntelligence
	concurrency int
	logger      *zap.Logger
}

// NewSynchronizer creates a synchronizer with the given comparison
// concurrency (minimum 1)
func NewSynchronizer(rels RelationshipStore, intel nlp.TextIntelligence, concurrency int) *Synchronizer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Synchronizer{
		rels:        rels,
		intel:       intel,
		concurrency: concurrency,
		logger:      logger.Get(),
	}
}

// Teardown removes every relationship touching the note. Callers invoke
// this before Synchronize when a note's content changed; the two steps are
// not transactional and concurrent readers may observe the gap.
func (s *Synchronizer) Teardown(ctx context.Context, noteID string) error {
	return s.rels.DeleteRelationshipsForNote(ctx, noteID)
}

// Synchronize compares note against every other note and creates a
// relationship for each pair whose similarity exceeds CreationThreshold.
// Creation is an idempotent upsert on the note pair, so a pair already
// linked (for example by the other note's own synchronization pass) counts
// as success. Per-pair failures do not stop the remaining comparisons; they
// are logged and folded into a single summary error returned after all
// pairs have been attempted.
func (s *Synchronizer) Synchronize(ctx context.Context, note *graph.Note, others []graph.Note) error {
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	var mu sync.Mutex
	var firstErr error
	failed := 0

	for _, other := range others {
		if other.ID == note.ID {
			continue
		}
		other := other
		g.Go(func() error {
			if err := s.synchronizePair(ctx, note, &other); err != nil {
				s.logger.Warn("Relationship synchronization failed for pair",
					zap.String("note_id", note.ID),
					zap.String("other_id", other.ID),
					zap.Error(err),
				)
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				failed++
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if failed > 0 {
		return fmt.Errorf("synchronization failed for %d of %d pairs: %w", failed, len(others), firstErr)
	}
	return nil
}

func (s *Synchronizer) synchronizePair(ctx context.Context, note *graph.Note, other *graph.Note) error {
	result, err := s.intel.Relationships(ctx, note.Content, other.Content)
	if err != nil {
		return err
	}
	if result.Similarity <= CreationThreshold {
		return nil
	}

	relType := graph.RelationshipType(result.RelationshipType)
	if !relType.Valid() || relType == graph.RelationshipManual {
		relType = graph.RelationshipType(nlp.ClassifyRelationship(result.Similarity))
	}

	rel := &graph.Relationship{
		ID:             uuid.NewString(),
		SourceNoteID:   note.ID,
		TargetNoteID:   other.ID,
		Type:           relType,
		Similarity:     result.Similarity,
		SharedEntities: result.SharedEntities,
		Metadata: map[string]any{
			"createdBy":   "system",
			"lastUpdated": time.Now().UTC().Format(time.RFC3339),
		},
	}

	created, err := s.rels.UpsertRelationship(ctx, rel)
	if err != nil {
		return err
	}
	if created {
		s.logger.Debug("Relationship synchronized",
			zap.String("source", rel.SourceNoteID),
			zap.String("target", rel.TargetNoteID),
			zap.Float64("similarity", rel.Similarity),
		)
	}
	return nil
}
