package service

import (
	"context"

	"go.uber.org/zap"

	"mindgraph/backend/internal/graph"
	"mindgraph/backend/internal/nlp"
	"mindgraph/backend/pkg/logger"
)

// GraphService answers the structural read-side queries: visualization
// graph materialization, shortest-path discovery and cluster analysis
type GraphService struct {
	notes  NoteStore
	rels   RelationshipStore
	intel  nlp.TextIntelligence
	logger *zap.Logger
}

// NewGraphService wires the graph read-side use cases
func NewGraphService(notes NoteStore, rels RelationshipStore, intel nlp.TextIntelligence) *GraphService {
	return &GraphService{
		notes:  notes,
		rels:   rels,
		intel:  intel,
		logger: logger.Get(),
	}
}

// PathNode is one step of an enriched shortest path
type PathNode struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// EnrichedCluster is a cluster enriched with the notes behind its indices
type EnrichedCluster struct {
	Indices  []int     `json:"indices"`
	Keywords []string  `json:"keywords,omitempty"`
	Notes    []NoteRef `json:"notes"`
}

// VisualizationGraph materializes the full nodes/links structure from
// current store state; nothing is cached between calls
func (s *GraphService) VisualizationGraph(ctx context.Context) (*graph.VisualizationGraph, error) {
	notes, err := s.notes.ListNotes(ctx)
	if err != nil {
		return nil, err
	}
	rels, err := s.rels.AllRelationships(ctx)
	if err != nil {
		return nil, err
	}
	return graph.BuildVisualizationGraph(notes, rels), nil
}

// FindPaths enumerates every shortest path between two notes and resolves
// each hop to its title ("Unknown Note" when a referenced note is gone)
func (s *GraphService) FindPaths(ctx context.Context, sourceID, targetID string) ([][]PathNode, error) {
	rels, err := s.rels.AllRelationships(ctx)
	if err != nil {
		return nil, err
	}

	adj := graph.BuildAdjacency(rels)
	paths := graph.FindShortestPaths(adj, sourceID, targetID)
	if len(paths) == 0 {
		return [][]PathNode{}, nil
	}

	idSet := make(map[string]bool)
	for _, path := range paths {
		for _, id := range path {
			idSet[id] = true
		}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	titles, err := s.notes.NoteTitles(ctx, ids)
	if err != nil {
		return nil, err
	}

	enriched := make([][]PathNode, 0, len(paths))
	for _, path := range paths {
		nodes := make([]PathNode, 0, len(path))
		for _, id := range path {
			title, ok := titles[id]
			if !ok {
				title = "Unknown Note"
			}
			nodes = append(nodes, PathNode{ID: id, Title: title})
		}
		enriched = append(enriched, nodes)
	}
	return enriched, nil
}

// Analyze clusters all note contents through the gateway and maps the
// returned indices back to note identity
func (s *GraphService) Analyze(ctx context.Context) ([]EnrichedCluster, error) {
	notes, err := s.notes.ListNotes(ctx)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(notes))
	for i, note := range notes {
		texts[i] = note.Content
	}

	result, err := s.intel.Cluster(ctx, texts)
	if err != nil {
		return nil, err
	}

	clusters := make([]EnrichedCluster, 0, len(result.Clusters))
	for _, cluster := range result.Clusters {
		enriched := EnrichedCluster{
			Indices:  cluster.Indices,
			Keywords: cluster.Keywords,
			Notes:    []NoteRef{},
		}
		for _, idx := range cluster.Indices {
			if idx < 0 || idx >= len(notes) {
				s.logger.Warn("Cluster index out of range", zap.Int("index", idx))
				continue
			}
			enriched.Notes = append(enriched.Notes, NoteRef{
				ID:    notes[idx].ID,
				Title: notes[idx].Title,
			})
		}
		clusters = append(clusters, enriched)
	}
	return clusters, nil
}
