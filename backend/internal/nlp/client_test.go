package nlp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindgraph/backend/pkg/errors"
)

func TestClient_Process(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/process", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"tags": ["graph", "notes"],
			"entities": [{"text": "Neo4j", "label": "PRODUCT", "confidence": 0.93, "start": 10, "end": 15}],
			"key_phrases": ["knowledge graph"]
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	result, err := client.Process(context.Background(), "notes about Neo4j")

	require.NoError(t, err)
	assert.Equal(t, "notes about Neo4j", gotBody["text"])
	assert.Equal(t, []string{"graph", "notes"}, result.Tags)
	require.Len(t, result.Entities, 1)
	assert.Equal(t, "Neo4j", result.Entities[0].Text)
	assert.Equal(t, 0.93, result.Entities[0].Confidence)
	assert.Equal(t, []string{"knowledge graph"}, result.KeyPhrases)
}

func TestClient_Relationships(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/relationships", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "first", body["text1"])
		assert.Equal(t, "second", body["text2"])

		_, _ = w.Write([]byte(`{
			"similarity": 0.82,
			"relationship_type": "very_similar",
			"shared_entities": [{"text": "Go", "label": "LANGUAGE"}]
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	result, err := client.Relationships(context.Background(), "first", "second")

	require.NoError(t, err)
	assert.Equal(t, 0.82, result.Similarity)
	assert.Equal(t, "very_similar", result.RelationshipType)
	require.Len(t, result.SharedEntities, 1)
	assert.Equal(t, "Go", result.SharedEntities[0].Text)
}

func TestClient_Cluster(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cluster", r.URL.Path)
		_, _ = w.Write([]byte(`{"clusters": [{"indices": [0, 2]}, {"indices": [1]}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	result, err := client.Cluster(context.Background(), []string{"a", "b", "c"})

	require.NoError(t, err)
	require.Len(t, result.Clusters, 2)
	assert.Equal(t, []int{0, 2}, result.Clusters[0].Indices)
}

func TestClient_Non2xxIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "no text provided"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Process(context.Background(), "")

	require.Error(t, err)
	assert.True(t, errors.IsUpstream(err))
	assert.Contains(t, err.Error(), "400")
}

func TestClient_UnreachableIsUpstreamError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 100*time.Millisecond)
	_, err := client.Relationships(context.Background(), "a", "b")

	require.Error(t, err)
	assert.True(t, errors.IsUpstream(err))
}

func TestClassifyRelationship(t *testing.T) {
	assert.Equal(t, "very_similar", ClassifyRelationship(0.81))
	assert.Equal(t, "related", ClassifyRelationship(0.7))
	assert.Equal(t, "somewhat_related", ClassifyRelationship(0.6))
	assert.Equal(t, "somewhat_related", ClassifyRelationship(0.1))
}
