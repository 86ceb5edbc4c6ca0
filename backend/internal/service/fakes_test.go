package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"mindgraph/backend/internal/graph"
	"mindgraph/backend/internal/nlp"
	"mindgraph/backend/pkg/errors"
)

// memStore is an in-memory NoteStore + RelationshipStore honoring the same
// invariants as the Neo4j repository: unordered-pair uniqueness and
// relationship cascade on note deletion.
type memStore struct {
	mu    sync.Mutex
	notes map[string]graph.Note
	rels  map[string]graph.Relationship
	order []string // note insertion order, newest last
}

func newMemStore() *memStore {
	return &memStore{
		notes: make(map[string]graph.Note),
		rels:  make(map[string]graph.Relationship),
	}
}

func (m *memStore) CreateNote(_ context.Context, note *graph.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes[note.ID] = *note
	m.order = append(m.order, note.ID)
	return nil
}

func (m *memStore) GetNote(_ context.Context, id string) (*graph.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	note, ok := m.notes[id]
	if !ok {
		return nil, errors.NewNotFound("note", id)
	}
	return &note, nil
}

func (m *memStore) ListNotes(_ context.Context) ([]graph.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	notes := make([]graph.Note, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		notes = append(notes, m.notes[m.order[i]])
	}
	return notes, nil
}

func (m *memStore) UpdateNote(_ context.Context, note *graph.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[note.ID]; !ok {
		return errors.NewNotFound("note", note.ID)
	}
	m.notes[note.ID] = *note
	return nil
}

func (m *memStore) DeleteNote(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[id]; !ok {
		return errors.NewNotFound("note", id)
	}
	delete(m.notes, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	// Cascade, as DETACH DELETE does
	for rid, rel := range m.rels {
		if rel.Touches(id) {
			delete(m.rels, rid)
		}
	}
	return nil
}

func (m *memStore) NoteTitles(_ context.Context, ids []string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	titles := make(map[string]string)
	for _, id := range ids {
		if note, ok := m.notes[id]; ok {
			titles[id] = note.Title
		}
	}
	return titles, nil
}

func (m *memStore) UpsertRelationship(_ context.Context, rel *graph.Relationship) (bool, error) {
	if rel.SourceNoteID == rel.TargetNoteID {
		return false, errors.NewValidation("source and target notes must be different")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rels {
		if existing.Touches(rel.SourceNoteID) && existing.Touches(rel.TargetNoteID) {
			return false, nil
		}
	}
	m.rels[rel.ID] = *rel
	return true, nil
}

func (m *memStore) CreateRelationship(ctx context.Context, rel *graph.Relationship) error {
	created, err := m.UpsertRelationship(ctx, rel)
	if err != nil {
		return err
	}
	if !created {
		return errors.NewConflict(fmt.Sprintf(
			"relationship already exists between notes %s and %s",
			rel.SourceNoteID, rel.TargetNoteID,
		))
	}
	return nil
}

func (m *memStore) GetRelationship(_ context.Context, id string) (*graph.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rel, ok := m.rels[id]
	if !ok {
		return nil, errors.NewNotFound("relationship", id)
	}
	return &rel, nil
}

func (m *memStore) AllRelationships(_ context.Context) ([]graph.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collect(func(graph.Relationship) bool { return true }), nil
}

func (m *memStore) RelationshipsForNote(_ context.Context, noteID string) ([]graph.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collect(func(r graph.Relationship) bool { return r.Touches(noteID) }), nil
}

func (m *memStore) RelationshipsForNoteAbove(_ context.Context, noteID string, threshold float64) ([]graph.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collect(func(r graph.Relationship) bool {
		return r.Touches(noteID) && r.Similarity >= threshold
	}), nil
}

func (m *memStore) StrongestRelationships(_ context.Context, threshold float64) ([]graph.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rels := m.collect(func(r graph.Relationship) bool { return r.Similarity >= threshold })
	sort.Slice(rels, func(i, j int) bool { return rels[i].Similarity > rels[j].Similarity })
	return rels, nil
}

func (m *memStore) DeleteRelationship(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rels[id]; !ok {
		return errors.NewNotFound("relationship", id)
	}
	delete(m.rels, id)
	return nil
}

func (m *memStore) DeleteRelationshipsForNote(_ context.Context, noteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, rel := range m.rels {
		if rel.Touches(noteID) {
			delete(m.rels, id)
		}
	}
	return nil
}

func (m *memStore) SetRelationshipMetadata(_ context.Context, id string, metadata map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rel, ok := m.rels[id]
	if !ok {
		return errors.NewNotFound("relationship", id)
	}
	rel.Metadata = metadata
	m.rels[id] = rel
	return nil
}

func (m *memStore) collect(keep func(graph.Relationship) bool) []graph.Relationship {
	rels := []graph.Relationship{}
	for _, rel := range m.rels {
		if keep(rel) {
			rels = append(rels, rel)
		}
	}
	return rels
}

func (m *memStore) relationshipCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rels)
}

// fakeIntel scripts gateway responses. Relationships looks up the scored
// similarity by the unordered pair of texts, defaulting to zero.
type fakeIntel struct {
	mu         sync.Mutex
	process    nlp.ProcessResult
	processErr error
	pairScores map[string]float64
	pairShared map[string][]graph.SharedEntity
	pairErrs   map[string]error
	clusters   nlp.ClusterResult
	clusterErr error
	pairCalls  int
}

func newFakeIntel() *fakeIntel {
	return &fakeIntel{
		pairScores: make(map[string]float64),
		pairShared: make(map[string][]graph.SharedEntity),
		pairErrs:   make(map[string]error),
	}
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}

func (f *fakeIntel) score(text1, text2 string, similarity float64) {
	f.pairScores[pairKey(text1, text2)] = similarity
}

func (f *fakeIntel) Process(_ context.Context, text string) (*nlp.ProcessResult, error) {
	if f.processErr != nil {
		return nil, f.processErr
	}
	result := f.process
	if result.Tags == nil {
		result.Tags = []string{}
	}
	if result.Entities == nil {
		result.Entities = []graph.Entity{}
	}
	if result.KeyPhrases == nil {
		result.KeyPhrases = []string{}
	}
	return &result, nil
}

func (f *fakeIntel) Relationships(_ context.Context, text1, text2 string) (*nlp.RelationshipResult, error) {
	f.mu.Lock()
	f.pairCalls++
	f.mu.Unlock()

	key := pairKey(text1, text2)
	if err := f.pairErrs[key]; err != nil {
		return nil, err
	}
	similarity := f.pairScores[key]
	return &nlp.RelationshipResult{
		Similarity:       similarity,
		RelationshipType: nlp.ClassifyRelationship(similarity),
		SharedEntities:   f.pairShared[key],
	}, nil
}

func (f *fakeIntel) Cluster(_ context.Context, texts []string) (*nlp.ClusterResult, error) {
	if f.clusterErr != nil {
		return nil, f.clusterErr
	}
	return &f.clusters, nil
}
