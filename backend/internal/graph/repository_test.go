package graph

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	apperrors "mindgraph/backend/pkg/errors"
)

// These tests require a running Neo4j instance at bolt://localhost:7687
// (neo4j/password). Run with -short to skip them.

func TestRepository_NoteLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver)
	note := &Note{
		ID:      uuid.NewString(),
		Title:   "Test Note",
		Content: "integration test content",
		Tags:    []string{"test"},
		Entities: []Entity{
			{Text: "Neo4j", Label: "PRODUCT", Confidence: 0.9},
		},
		KeyPhrases: []string{"integration test"},
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	defer cleanupNote(ctx, driver, note.ID)

	if err := repo.CreateNote(ctx, note); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	got, err := repo.GetNote(ctx, note.ID)
	if err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	if got.Title != "Test Note" {
		t.Errorf("Expected title 'Test Note', got '%s'", got.Title)
	}
	if len(got.Entities) != 1 || got.Entities[0].Text != "Neo4j" {
		t.Errorf("Entities did not round-trip: %+v", got.Entities)
	}

	got.Title = "Renamed"
	if err := repo.UpdateNote(ctx, got); err != nil {
		t.Fatalf("UpdateNote failed: %v", err)
	}

	if err := repo.DeleteNote(ctx, note.ID); err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}

	_, err = repo.GetNote(ctx, note.ID)
	if !apperrors.IsNotFound(err) {
		t.Errorf("Expected not-found after delete, got %v", err)
	}
}

func TestRepository_RelationshipPairUniqueness(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver)
	a := &Note{ID: uuid.NewString(), Title: "A", Content: "a", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	b := &Note{ID: uuid.NewString(), Title: "B", Content: "b", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	for _, n := range []*Note{a, b} {
		if err := repo.CreateNote(ctx, n); err != nil {
			t.Fatalf("CreateNote failed: %v", err)
		}
	}
	defer cleanupNote(ctx, driver, a.ID)
	defer cleanupNote(ctx, driver, b.ID)

	rel := &Relationship{
		ID:           uuid.NewString(),
		SourceNoteID: a.ID,
		TargetNoteID: b.ID,
		Type:         RelationshipRelated,
		Similarity:   0.65,
	}
	created, err := repo.UpsertRelationship(ctx, rel)
	if err != nil {
		t.Fatalf("UpsertRelationship failed: %v", err)
	}
	if !created {
		t.Fatal("Expected first upsert to create")
	}

	// Same pair in the opposite direction must not create a second edge
	reversed := &Relationship{
		ID:           uuid.NewString(),
		SourceNoteID: b.ID,
		TargetNoteID: a.ID,
		Type:         RelationshipRelated,
		Similarity:   0.65,
	}
	created, err = repo.UpsertRelationship(ctx, reversed)
	if err != nil {
		t.Fatalf("UpsertRelationship (reversed) failed: %v", err)
	}
	if created {
		t.Error("Expected reversed upsert to be a no-op")
	}

	rels, err := repo.RelationshipsForNote(ctx, a.ID)
	if err != nil {
		t.Fatalf("RelationshipsForNote failed: %v", err)
	}
	if len(rels) != 1 {
		t.Errorf("Expected 1 relationship, got %d", len(rels))
	}

	// Deleting an endpoint cascades to the edge
	if err := repo.DeleteNote(ctx, a.ID); err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	rels, err = repo.RelationshipsForNote(ctx, b.ID)
	if err != nil {
		t.Fatalf("RelationshipsForNote failed: %v", err)
	}
	if len(rels) != 0 {
		t.Errorf("Expected cascade to remove relationship, got %d", len(rels))
	}
}

func createTestDriver() (neo4j.DriverWithContext, error) {
	uri := "bolt://localhost:7687"
	user := "neo4j"
	password := "password"

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}
	return driver, nil
}

func cleanupNote(ctx context.Context, driver neo4j.DriverWithContext, id string) {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)
	_, _ = session.Run(ctx, "MATCH (n:Note {id: $id}) DETACH DELETE n", map[string]interface{}{"id": id})
}
