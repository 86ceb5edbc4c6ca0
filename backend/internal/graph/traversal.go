package graph

import "sort"

// Adjacency is an undirected adjacency list keyed by note ID. Every
// relationship contributes an edge in both directions; edge direction is
// never used for traversal.
type Adjacency map[string][]string

// BuildAdjacency derives the traversal graph from the full relationship set.
// Neighbor lists are sorted so traversal output is deterministic regardless
// of store iteration order.
func BuildAdjacency(rels []Relationship) Adjacency {
	adj := make(Adjacency)
	for _, rel := range rels {
		adj[rel.SourceNoteID] = append(adj[rel.SourceNoteID], rel.TargetNoteID)
		adj[rel.TargetNoteID] = append(adj[rel.TargetNoteID], rel.SourceNoteID)
	}
	for id := range adj {
		sort.Strings(adj[id])
	}
	return adj
}

// FindShortestPaths enumerates every minimum-length path from source to
// target over adj, each path an ordered sequence of note IDs inclusive of
// both endpoints. It returns an empty slice when the notes are disconnected
// and [[source]] when source == target.
//
// A plain BFS that marks nodes visited at enqueue time drops shortest paths
// that share an intermediate node, so this runs BFS only to assign levels
// and predecessor sets, then backtracks from target to enumerate all
// shortest paths.
func FindShortestPaths(adj Adjacency, sourceID, targetID string) [][]string {
	if sourceID == targetID {
		return [][]string{{sourceID}}
	}

	dist := map[string]int{sourceID: 0}
	parents := make(map[string][]string)
	queue := []string{sourceID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == targetID {
			// The BFS is level-synchronous, so once target is dequeued
			// every shortest predecessor chain has been recorded.
			break
		}

		for _, neighbor := range adj[current] {
			d, seen := dist[neighbor]
			if !seen {
				dist[neighbor] = dist[current] + 1
				parents[neighbor] = []string{current}
				queue = append(queue, neighbor)
			} else if d == dist[current]+1 {
				parents[neighbor] = append(parents[neighbor], current)
			}
		}
	}

	if _, reached := dist[targetID]; !reached {
		return [][]string{}
	}

	var paths [][]string
	var backtrack func(id string, suffix []string)
	backtrack = func(id string, suffix []string) {
		if id == sourceID {
			path := make([]string, 0, len(suffix)+1)
			path = append(path, sourceID)
			for i := len(suffix) - 1; i >= 0; i-- {
				path = append(path, suffix[i])
			}
			paths = append(paths, path)
			return
		}
		for _, p := range parents[id] {
			backtrack(p, append(suffix, id))
		}
	}
	backtrack(targetID, make([]string, 0, dist[targetID]))

	return paths
}
