// Package service implements the note, link and graph use cases on top of
// the store and the text-intelligence gateway. Stores and the gateway are
// injected as interfaces so tests can run against in-memory doubles.
package service

import (
	"context"

	"mindgraph/backend/internal/graph"
)

// NoteStore is the persistence contract for notes. Deleting a note cascades
// to every relationship referencing it.
type NoteStore interface {
	CreateNote(ctx context.Context, note *graph.Note) error
	GetNote(ctx context.Context, id string) (*graph.Note, error)
	ListNotes(ctx context.Context) ([]graph.Note, error)
	UpdateNote(ctx context.Context, note *graph.Note) error
	DeleteNote(ctx context.Context, id string) error
	NoteTitles(ctx context.Context, ids []string) (map[string]string, error)
}

// RelationshipStore is the persistence contract for relationships. The
// store enforces at most one relationship per unordered note pair.
type RelationshipStore interface {
	UpsertRelationship(ctx context.Context, rel *graph.Relationship) (bool, error)
	CreateRelationship(ctx context.Context, rel *graph.Relationship) error
	GetRelationship(ctx context.Context, id string) (*graph.Relationship, error)
	AllRelationships(ctx context.Context) ([]graph.Relationship, error)
	RelationshipsForNote(ctx context.Context, noteID string) ([]graph.Relationship, error)
	RelationshipsForNoteAbove(ctx context.Context, noteID string, threshold float64) ([]graph.Relationship, error)
	StrongestRelationships(ctx context.Context, threshold float64) ([]graph.Relationship, error)
	DeleteRelationship(ctx context.Context, id string) error
	DeleteRelationshipsForNote(ctx context.Context, noteID string) error
	SetRelationshipMetadata(ctx context.Context, id string, metadata map[string]any) error
}

var (
	_ NoteStore         = (*graph.Repository)(nil)
	_ RelationshipStore = (*graph.Repository)(nil)
)
