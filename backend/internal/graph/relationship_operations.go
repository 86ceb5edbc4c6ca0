package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"mindgraph/backend/pkg/errors"
)

const relReturn = `r, a.id as source_id, b.id as target_id`

// UpsertRelationship creates the relationship unless its unordered pair
// already has one, in which case the existing edge is left untouched. It
// returns true when a new edge was created. Automatic synchronization uses
// this so that "already exists" counts as success rather than conflict.
func (r *Repository) UpsertRelationship(ctx context.Context, rel *Relationship) (bool, error) {
	if err := validateEndpoints(rel); err != nil {
		return false, err
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	// MERGE on the ordered pair plus an unordered pre-check; the reverse
	// direction is checked in the same statement so a pair synchronized in
	// the opposite order earlier is not duplicated.
	query := `
		MATCH (a:Note {id: $sourceId}), (b:Note {id: $targetId})
		WHERE NOT (a)-[:LINKED]-(b)
		MERGE (a)-[r:LINKED]->(b)
		ON CREATE SET
			r.id = $id,
			r.type = $type,
			r.similarity = $similarity,
			r.shared_entities = $sharedEntities,
			r.metadata = $metadata
		RETURN r.id as id
	`

	result, err := session.Run(ctx, query, relWriteParams(rel))
	if err != nil {
		return false, errors.NewStore("failed to upsert relationship", err)
	}
	created := result.Next(ctx)
	if err := result.Err(); err != nil {
		return false, errors.NewStore("failed to verify relationship upsert", err)
	}
	return created, nil
}

// CreateRelationship creates a relationship and reports a conflict when the
// unordered pair is already linked. Manual link creation uses this.
func (r *Repository) CreateRelationship(ctx context.Context, rel *Relationship) error {
	if err := validateEndpoints(rel); err != nil {
		return err
	}

	created, err := r.UpsertRelationship(ctx, rel)
	if err != nil {
		return err
	}
	if !created {
		return errors.NewConflict(fmt.Sprintf(
			"relationship already exists between notes %s and %s",
			rel.SourceNoteID, rel.TargetNoteID,
		))
	}

	r.logger.Info("Relationship created",
		zap.String("relationship_id", rel.ID),
		zap.String("source", rel.SourceNoteID),
		zap.String("target", rel.TargetNoteID),
		zap.String("type", string(rel.Type)),
		zap.Float64("similarity", rel.Similarity),
	)
	return nil
}

// GetRelationship fetches a relationship by ID
func (r *Repository) GetRelationship(ctx context.Context, id string) (*Relationship, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (a:Note)-[r:LINKED {id: $id}]->(b:Note)
		RETURN ` + relReturn

	result, err := session.Run(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		return nil, errors.NewStore("failed to fetch relationship", err)
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, errors.NewStore("failed to fetch relationship record", err)
		}
		return nil, errors.NewNotFound("relationship", id)
	}

	rel, err := relFromRecord(result.Record())
	if err != nil {
		return nil, err
	}
	return rel, nil
}

// AllRelationships returns every relationship in the store
func (r *Repository) AllRelationships(ctx context.Context) ([]Relationship, error) {
	query := `
		MATCH (a:Note)-[r:LINKED]->(b:Note)
		RETURN ` + relReturn
	return r.queryRelationships(ctx, query, nil)
}

// RelationshipsForNote returns every relationship where the note is either
// endpoint
func (r *Repository) RelationshipsForNote(ctx context.Context, noteID string) ([]Relationship, error) {
	query := `
		MATCH (a:Note)-[r:LINKED]->(b:Note)
		WHERE a.id = $noteId OR b.id = $noteId
		RETURN ` + relReturn
	return r.queryRelationships(ctx, query, map[string]interface{}{"noteId": noteID})
}

// RelationshipsForNoteAbove returns relationships touching the note with
// similarity at or above threshold
func (r *Repository) RelationshipsForNoteAbove(ctx context.Context, noteID string, threshold float64) ([]Relationship, error) {
	query := `
		MATCH (a:Note)-[r:LINKED]->(b:Note)
		WHERE (a.id = $noteId OR b.id = $noteId) AND r.similarity >= $threshold
		RETURN ` + relReturn
	return r.queryRelationships(ctx, query, map[string]interface{}{
		"noteId":    noteID,
		"threshold": threshold,
	})
}

// StrongestRelationships returns all relationships at or above threshold,
// sorted by similarity descending
func (r *Repository) StrongestRelationships(ctx context.Context, threshold float64) ([]Relationship, error) {
	query := `
		MATCH (a:Note)-[r:LINKED]->(b:Note)
		WHERE r.similarity >= $threshold
		RETURN ` + relReturn + `
		ORDER BY r.similarity DESC
	`
	return r.queryRelationships(ctx, query, map[string]interface{}{"threshold": threshold})
}

// DeleteRelationship removes a relationship by ID; a missing ID is reported
// as not found, never as success
func (r *Repository) DeleteRelationship(ctx context.Context, id string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH ()-[r:LINKED {id: $id}]->()
		DELETE r
		RETURN count(r) as deleted
	`

	result, err := session.Run(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		return errors.NewStore("failed to delete relationship", err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return errors.NewStore("failed to verify relationship deletion", err)
	}
	if deleted, _ := record.Get("deleted"); asInt64(deleted) == 0 {
		return errors.NewNotFound("relationship", id)
	}
	return nil
}

// DeleteRelationshipsForNote tears down every relationship touching the
// note. The synchronizer calls this before recomputing a note's edges.
func (r *Repository) DeleteRelationshipsForNote(ctx context.Context, noteID string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (a:Note)-[r:LINKED]->(b:Note)
		WHERE a.id = $noteId OR b.id = $noteId
		DELETE r
	`

	if _, err := session.Run(ctx, query, map[string]interface{}{"noteId": noteID}); err != nil {
		return errors.NewStore("failed to delete relationships for note", err)
	}
	return nil
}

// SetRelationshipMetadata replaces the stored metadata of a relationship.
// Similarity, type and endpoints are immutable; this is the only mutation a
// relationship supports.
func (r *Repository) SetRelationshipMetadata(ctx context.Context, id string, metadata map[string]any) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH ()-[r:LINKED {id: $id}]->()
		SET r.metadata = $metadata
		RETURN r.id as id
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"id":       id,
		"metadata": encodeJSON(metadata),
	})
	if err != nil {
		return errors.NewStore("failed to update relationship metadata", err)
	}
	if _, err := result.Single(ctx); err != nil {
		return errors.NewNotFound("relationship", id)
	}
	return nil
}

func (r *Repository) queryRelationships(ctx context.Context, query string, params map[string]interface{}) ([]Relationship, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, errors.NewStore("failed to query relationships", err)
	}

	rels := []Relationship{}
	for result.Next(ctx) {
		rel, err := relFromRecord(result.Record())
		if err != nil {
			return nil, err
		}
		rels = append(rels, *rel)
	}
	if err := result.Err(); err != nil {
		return nil, errors.NewStore("failed to iterate relationships", err)
	}
	return rels, nil
}

func validateEndpoints(rel *Relationship) error {
	if rel.SourceNoteID == "" || rel.TargetNoteID == "" {
		return errors.NewValidation("source and target note IDs are required")
	}
	if rel.SourceNoteID == rel.TargetNoteID {
		return errors.NewValidation("source and target notes must be different")
	}
	return nil
}

func relWriteParams(rel *Relationship) map[string]interface{} {
	return map[string]interface{}{
		"id":             rel.ID,
		"sourceId":       rel.SourceNoteID,
		"targetId":       rel.TargetNoteID,
		"type":           string(rel.Type),
		"similarity":     rel.Similarity,
		"sharedEntities": encodeJSON(rel.SharedEntities),
		"metadata":       encodeJSON(rel.Metadata),
	}
}
