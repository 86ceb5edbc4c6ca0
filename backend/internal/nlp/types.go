// Package nlp provides clients for the text-intelligence service that
// enriches notes and scores pairwise relationships. The computation itself
// (entity recognition, similarity, clustering) is external; this package
// only speaks its contract.
package nlp

import (
	"context"

	"mindgraph/backend/internal/graph"
)

// ProcessResult is the enrichment derived from a single text
type ProcessResult struct {
	Tags       []string       `json:"tags"`
	Entities   []graph.Entity `json:"entities"`
	KeyPhrases []string       `json:"key_phrases"`
}

// RelationshipResult is the pairwise comparison of two texts
type RelationshipResult struct {
	Similarity       float64              `json:"similarity"`
	RelationshipType string               `json:"relationship_type"`
	SharedEntities   []graph.SharedEntity `json:"shared_entities"`
}

// Cluster is one group of related texts, referenced by input index
type Cluster struct {
	Indices  []int    `json:"indices"`
	Keywords []string `json:"keywords,omitempty"`
}

// ClusterResult groups a set of texts into clusters
type ClusterResult struct {
	Clusters []Cluster `json:"clusters"`
}

// TextIntelligence is the gateway contract consumed by the services. It is
// injected at construction time so tests can substitute a double.
type TextIntelligence interface {
	Process(ctx context.Context, text string) (*ProcessResult, error)
	Relationships(ctx context.Context, text1, text2 string) (*RelationshipResult, error)
	Cluster(ctx context.Context, texts []string) (*ClusterResult, error)
}

// Similarity boundaries used to label a relationship. These mirror the
// classification the NLP sidecar applies.
const (
	VerySimilarThreshold = 0.8
	RelatedThreshold     = 0.6
)

// ClassifyRelationship maps a similarity score to a type label
func ClassifyRelationship(similarity float64) string {
	switch {
	case similarity > VerySimilarThreshold:
		return string(graph.RelationshipVerySimilar)
	case similarity > RelatedThreshold:
		return string(graph.RelationshipRelated)
	default:
		return string(graph.RelationshipSomewhatRelated)
	}
}
