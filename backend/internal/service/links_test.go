package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindgraph/backend/internal/graph"
	"mindgraph/backend/pkg/errors"
)

func newLinkService(store *memStore, intel *fakeIntel) *LinkService {
	return NewLinkService(store, store, intel)
}

func TestLinkService_CreateManualLink(t *testing.T) {
	store := newMemStore()
	intel := newFakeIntel()
	svc := newLinkService(store, intel)

	a := seedNote(t, store, "a", "A", "content a")
	b := seedNote(t, store, "b", "B", "content b")
	intel.score(a.Content, b.Content, 0.3)
	intel.pairShared[pairKey(a.Content, b.Content)] = []graph.SharedEntity{{Text: "Go", Label: "LANGUAGE"}}

	rel, err := svc.CreateManualLink(context.Background(), "a", "b", map[string]any{"note": "hand-linked"})
	require.NoError(t, err)

	// Similarity is computed even though the link is manual
	assert.Equal(t, graph.RelationshipManual, rel.Type)
	assert.Equal(t, 0.3, rel.Similarity)
	require.Len(t, rel.SharedEntities, 1)
	assert.Equal(t, "user", rel.Metadata["createdBy"])
	assert.Equal(t, "hand-linked", rel.Metadata["note"])
	assert.NotEmpty(t, rel.Metadata["lastUpdated"])
}

func TestLinkService_CreateManualLinkDuplicateIsConflict(t *testing.T) {
	store := newMemStore()
	intel := newFakeIntel()
	svc := newLinkService(store, intel)

	seedNote(t, store, "a", "A", "content a")
	seedNote(t, store, "b", "B", "content b")

	_, err := svc.CreateManualLink(context.Background(), "a", "b", nil)
	require.NoError(t, err)

	// Same unordered pair in reverse order still conflicts
	_, err = svc.CreateManualLink(context.Background(), "b", "a", nil)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}

func TestLinkService_CreateManualLinkValidation(t *testing.T) {
	store := newMemStore()
	svc := newLinkService(store, newFakeIntel())
	seedNote(t, store, "a", "A", "content a")

	_, err := svc.CreateManualLink(context.Background(), "a", "a", nil)
	assert.True(t, errors.IsValidation(err))

	_, err = svc.CreateManualLink(context.Background(), "a", "missing", nil)
	assert.True(t, errors.IsNotFound(err))

	_, err = svc.CreateManualLink(context.Background(), "missing", "a", nil)
	assert.True(t, errors.IsNotFound(err))
}

func TestLinkService_UpdateLinkMergesMetadata(t *testing.T) {
	store := newMemStore()
	intel := newFakeIntel()
	svc := newLinkService(store, intel)

	seedNote(t, store, "a", "A", "content a")
	seedNote(t, store, "b", "B", "content b")
	created, err := svc.CreateManualLink(context.Background(), "a", "b", map[string]any{
		"note":  "original",
		"color": "red",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateLink(context.Background(), created.ID, map[string]any{"note": "revised"})
	require.NoError(t, err)

	// New keys win, untouched keys survive, provenance is preserved
	assert.Equal(t, "revised", updated.Metadata["note"])
	assert.Equal(t, "red", updated.Metadata["color"])
	assert.Equal(t, "user", updated.Metadata["createdBy"])
	// Similarity and type stay immutable
	assert.Equal(t, created.Similarity, updated.Similarity)
	assert.Equal(t, graph.RelationshipManual, updated.Type)
}

func TestLinkService_UpdateLinkNotFound(t *testing.T) {
	svc := newLinkService(newMemStore(), newFakeIntel())
	_, err := svc.UpdateLink(context.Background(), "missing", nil)
	assert.True(t, errors.IsNotFound(err))
}

func TestLinkService_DeleteLink(t *testing.T) {
	store := newMemStore()
	svc := newLinkService(store, newFakeIntel())

	seedNote(t, store, "a", "A", "content a")
	seedNote(t, store, "b", "B", "content b")
	rel, err := svc.CreateManualLink(context.Background(), "a", "b", nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLink(context.Background(), rel.ID))
	assert.True(t, errors.IsNotFound(svc.DeleteLink(context.Background(), rel.ID)))
}

func TestLinkService_CloselyRelatedFiltersAndPreviews(t *testing.T) {
	store := newMemStore()
	intel := newFakeIntel()
	svc := newLinkService(store, intel)

	long := strings.Repeat("x", 300)
	subject := seedNote(t, store, "s", "Subject", "subject content")
	near := seedNote(t, store, "near", "Near", long)
	far := seedNote(t, store, "far", "Far", "far content")

	intel.score(subject.Content, near.Content, 0.85)
	intel.score(subject.Content, far.Content, 0.5)
	sync := NewSynchronizer(store, intel, 1)
	require.NoError(t, sync.Synchronize(context.Background(), &subject, []graph.Note{near, far}))

	results, err := svc.CloselyRelated(context.Background(), "s", 0.7)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "near", results[0].Note.ID)
	assert.Equal(t, 0.85, results[0].Similarity)
	// 200-char preview with ellipsis
	assert.Len(t, results[0].Note.Preview, 203)
	assert.True(t, strings.HasSuffix(results[0].Note.Preview, "..."))
}

func TestLinkService_StrongestLinksSortedDescending(t *testing.T) {
	store := newMemStore()
	intel := newFakeIntel()
	svc := newLinkService(store, intel)

	a := seedNote(t, store, "a", "A", "content a")
	b := seedNote(t, store, "b", "B", "content b")
	c := seedNote(t, store, "c", "C", "content c")
	d := seedNote(t, store, "d", "D", "content d")

	intel.score(a.Content, b.Content, 0.95)
	intel.score(c.Content, d.Content, 0.75)
	intel.score(a.Content, c.Content, 0.5)
	sync := NewSynchronizer(store, intel, 1)
	require.NoError(t, sync.Synchronize(context.Background(), &a, []graph.Note{b, c}))
	require.NoError(t, sync.Synchronize(context.Background(), &c, []graph.Note{d}))

	links, err := svc.StrongestLinks(context.Background(), 0.7)
	require.NoError(t, err)

	require.Len(t, links, 2)
	assert.Equal(t, 0.95, links[0].Similarity)
	assert.Equal(t, 0.75, links[1].Similarity)
	assert.True(t, strings.HasSuffix(links[0].SourceNote.Preview, "..."))

	links, err = svc.StrongestLinks(context.Background(), 0.9)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, 0.95, links[0].Similarity)
}

func TestLinkService_LinksForNoteIsSymmetric(t *testing.T) {
	store := newMemStore()
	intel := newFakeIntel()
	svc := newLinkService(store, intel)

	a := seedNote(t, store, "a", "A", "content a")
	b := seedNote(t, store, "b", "B", "content b")
	intel.score(a.Content, b.Content, 0.9)
	require.NoError(t, NewSynchronizer(store, intel, 1).Synchronize(context.Background(), &a, []graph.Note{b}))

	for _, noteID := range []string{"a", "b"} {
		links, err := svc.LinksForNote(context.Background(), noteID)
		require.NoError(t, err)
		require.Len(t, links, 1, "note %s", noteID)
		assert.Equal(t, "A", links[0].SourceNote.Title)
		assert.Equal(t, "B", links[0].TargetNote.Title)
		assert.Empty(t, links[0].SourceNote.Preview)
	}
}
