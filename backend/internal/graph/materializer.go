package graph

// VizNode is a node of the visualization graph. Type is "note" or "entity";
// Tags is set for note nodes, EntityType for entity nodes.
type VizNode struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Type       string   `json:"type"`
	Tags       []string `json:"tags,omitempty"`
	EntityType string   `json:"entityType,omitempty"`
}

// VizLink is an edge of the visualization graph. Containment links carry
// Confidence; relationship links carry Similarity and SharedEntities.
type VizLink struct {
	Source         string         `json:"source"`
	Target         string         `json:"target"`
	Type           string         `json:"type"`
	Confidence     *float64       `json:"confidence,omitempty"`
	Similarity     *float64       `json:"similarity,omitempty"`
	SharedEntities []SharedEntity `json:"sharedEntities,omitempty"`
}

// VisualizationGraph is the derived nodes/links structure rendered by the
// force-directed layout.
type VisualizationGraph struct {
	Nodes []VizNode `json:"nodes"`
	Links []VizLink `json:"links"`
}

// BuildVisualizationGraph materializes the full graph from current store
// state: one node per note, one node per distinct entity text across all
// notes, one containment link per entity occurrence, and one link per
// relationship. Entity identity is the text value alone; the first
// occurrence wins when the same text appears with different labels, so the
// result depends on note order and callers should pass a stable ordering.
func BuildVisualizationGraph(notes []Note, rels []Relationship) *VisualizationGraph {
	g := &VisualizationGraph{
		Nodes: []VizNode{},
		Links: []VizLink{},
	}
	seenEntities := make(map[string]bool)

	for _, note := range notes {
		label := note.Title
		if label == "" {
			label = "Untitled Note"
		}
		g.Nodes = append(g.Nodes, VizNode{
			ID:    note.ID,
			Label: label,
			Type:  "note",
			Tags:  note.Tags,
		})

		for _, entity := range note.Entities {
			entityID := "entity_" + entity.Text
			if !seenEntities[entityID] {
				g.Nodes = append(g.Nodes, VizNode{
					ID:         entityID,
					Label:      entity.Text,
					Type:       "entity",
					EntityType: entity.Label,
				})
				seenEntities[entityID] = true
			}

			confidence := entity.Confidence
			g.Links = append(g.Links, VizLink{
				Source:     note.ID,
				Target:     entityID,
				Type:       "contains_entity",
				Confidence: &confidence,
			})
		}
	}

	for _, rel := range rels {
		similarity := rel.Similarity
		g.Links = append(g.Links, VizLink{
			Source:         rel.SourceNoteID,
			Target:         rel.TargetNoteID,
			Type:           string(rel.Type),
			Similarity:     &similarity,
			SharedEntities: rel.SharedEntities,
		})
	}

	return g
}
