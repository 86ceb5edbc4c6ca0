package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"mindgraph/backend/pkg/errors"
	"mindgraph/backend/pkg/logger"
)

// Repository handles all Neo4j database operations. Notes are stored as
// (:Note) nodes and relationships as [:LINKED] edges between them, so
// deleting a note node cascades to every relationship touching it.
type Repository struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewRepository creates a new graph repository
func NewRepository(driver neo4j.DriverWithContext) *Repository {
	return &Repository{
		driver: driver,
		logger: logger.Get(),
	}
}

// Close closes the Neo4j driver connection
func (r *Repository) Close() error {
	return r.driver.Close(context.Background())
}

// EnsureSchema creates the uniqueness constraints the store relies on
func (r *Repository) EnsureSchema(ctx context.Context) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	statements := []string{
		`CREATE CONSTRAINT note_id IF NOT EXISTS FOR (n:Note) REQUIRE n.id IS UNIQUE`,
	}
	for _, stmt := range statements {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return errors.NewStore("failed to create schema constraint", err)
		}
	}
	return nil
}

// CreateNote persists a new note node
func (r *Repository) CreateNote(ctx context.Context, note *Note) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		CREATE (n:Note {
			id: $id,
			title: $title,
			content: $content,
			tags: $tags,
			key_phrases: $keyPhrases,
			entities: $entities,
			created_at: datetime($createdAt),
			updated_at: datetime($updatedAt)
		})
		RETURN n.id as id
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"id":         note.ID,
		"title":      note.Title,
		"content":    note.Content,
		"tags":       toAnySlice(note.Tags),
		"keyPhrases": toAnySlice(note.KeyPhrases),
		"entities":   encodeJSON(note.Entities),
		"createdAt":  note.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt":  note.UpdatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return errors.NewStore("failed to create note", err)
	}
	if _, err := result.Single(ctx); err != nil {
		return errors.NewStore("failed to verify note creation", err)
	}

	r.logger.Info("Note created",
		zap.String("note_id", note.ID),
		zap.String("title", note.Title),
	)
	return nil
}

// GetNote fetches a note by ID
func (r *Repository) GetNote(ctx context.Context, id string) (*Note, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `MATCH (n:Note {id: $id}) RETURN n`

	result, err := session.Run(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		return nil, errors.NewStore("failed to fetch note", err)
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, errors.NewStore("failed to fetch note record", err)
		}
		return nil, errors.NewNotFound("note", id)
	}

	node, ok := result.Record().Values[0].(neo4j.Node)
	if !ok {
		return nil, errors.NewStore("unexpected record shape for note", nil)
	}
	note := noteFromProps(node.Props)
	return &note, nil
}

// ListNotes returns all notes, newest first
func (r *Repository) ListNotes(ctx context.Context) ([]Note, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `MATCH (n:Note) RETURN n ORDER BY n.created_at DESC`

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, errors.NewStore("failed to list notes", err)
	}

	notes := []Note{}
	for result.Next(ctx) {
		if node, ok := result.Record().Values[0].(neo4j.Node); ok {
			notes = append(notes, noteFromProps(node.Props))
		}
	}
	if err := result.Err(); err != nil {
		return nil, errors.NewStore("failed to iterate notes", err)
	}
	return notes, nil
}

// UpdateNote replaces the stored fields of an existing note
func (r *Repository) UpdateNote(ctx context.Context, note *Note) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (n:Note {id: $id})
		SET n.title = $title,
		    n.content = $content,
		    n.tags = $tags,
		    n.key_phrases = $keyPhrases,
		    n.entities = $entities,
		    n.updated_at = datetime($updatedAt)
		RETURN n.id as id
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"id":         note.ID,
		"title":      note.Title,
		"content":    note.Content,
		"tags":       toAnySlice(note.Tags),
		"keyPhrases": toAnySlice(note.KeyPhrases),
		"entities":   encodeJSON(note.Entities),
		"updatedAt":  note.UpdatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return errors.NewStore("failed to update note", err)
	}
	if _, err := result.Single(ctx); err != nil {
		return errors.NewNotFound("note", note.ID)
	}
	return nil
}

// DeleteNote removes a note and, through DETACH, every relationship
// referencing it
func (r *Repository) DeleteNote(ctx context.Context, id string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (n:Note {id: $id})
		DETACH DELETE n
		RETURN count(n) as deleted
	`

	result, err := session.Run(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		return errors.NewStore("failed to delete note", err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return errors.NewStore("failed to verify note deletion", err)
	}
	if deleted, _ := record.Get("deleted"); asInt64(deleted) == 0 {
		return errors.NewNotFound("note", id)
	}

	r.logger.Info("Note deleted", zap.String("note_id", id))
	return nil
}

// NoteTitles resolves a set of note IDs to their titles. IDs that no longer
// resolve are simply absent from the result.
func (r *Repository) NoteTitles(ctx context.Context, ids []string) (map[string]string, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (n:Note)
		WHERE n.id IN $ids
		RETURN n.id as id, n.title as title
	`

	result, err := session.Run(ctx, query, map[string]interface{}{"ids": toAnySlice(ids)})
	if err != nil {
		return nil, errors.NewStore("failed to resolve note titles", err)
	}

	titles := make(map[string]string, len(ids))
	for result.Next(ctx) {
		record := result.Record()
		id := getString(record, "id", "")
		if id != "" {
			titles[id] = getString(record, "title", "")
		}
	}
	if err := result.Err(); err != nil {
		return nil, errors.NewStore("failed to iterate note titles", err)
	}
	return titles, nil
}
