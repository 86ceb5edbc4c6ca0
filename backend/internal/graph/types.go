package graph

import "time"

// RelationshipType classifies an edge between two notes
type RelationshipType string

const (
	RelationshipVerySimilar     RelationshipType = "very_similar"
	RelationshipRelated         RelationshipType = "related"
	RelationshipSomewhatRelated RelationshipType = "somewhat_related"
	RelationshipManual          RelationshipType = "manual"
)

// Valid reports whether t is one of the known relationship types
func (t RelationshipType) Valid() bool {
	switch t {
	case RelationshipVerySimilar, RelationshipRelated, RelationshipSomewhatRelated, RelationshipManual:
		return true
	}
	return false
}

// Entity is a named span extracted from a note's content
type Entity struct {
	Text       string  `json:"text"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
}

// SharedEntity is an entity present in both notes of a relationship
type SharedEntity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Note is a user-authored text record with derived tags, entities and key phrases
type Note struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags"`
	Entities   []Entity  `json:"entities"`
	KeyPhrases []string  `json:"keyPhrases"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Relationship is a typed, scored edge between two distinct notes.
// At most one relationship exists per unordered note pair; similarity and
// type are immutable after creation, only metadata may change.
type Relationship struct {
	ID             string           `json:"id"`
	SourceNoteID   string           `json:"sourceNoteId"`
	TargetNoteID   string           `json:"targetNoteId"`
	Type           RelationshipType `json:"relationshipType"`
	Similarity     float64          `json:"similarity"`
	SharedEntities []SharedEntity   `json:"sharedEntities"`
	Metadata       map[string]any   `json:"metadata"`
}

// OtherNoteID returns the endpoint of r that is not noteID
func (r *Relationship) OtherNoteID(noteID string) string {
	if r.SourceNoteID == noteID {
		return r.TargetNoteID
	}
	return r.SourceNoteID
}

// Touches reports whether noteID is either endpoint of r
func (r *Relationship) Touches(noteID string) bool {
	return r.SourceNoteID == noteID || r.TargetNoteID == noteID
}
