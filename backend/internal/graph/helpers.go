package graph

import (
	"encoding/json"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"mindgraph/backend/pkg/errors"
)

// Nested values (entities, shared entities, metadata) are stored as JSON
// string properties; Neo4j properties hold only scalars and flat lists.

func encodeJSON(v any) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func decodeJSON[T any](raw string) T {
	var out T
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &out)
	}
	return out
}

func noteFromProps(props map[string]interface{}) Note {
	note := Note{
		ID:         getStringFromMap(props, "id", ""),
		Title:      getStringFromMap(props, "title", ""),
		Content:    getStringFromMap(props, "content", ""),
		Tags:       getStringSliceFromMap(props, "tags"),
		KeyPhrases: getStringSliceFromMap(props, "key_phrases"),
		Entities:   decodeJSON[[]Entity](getStringFromMap(props, "entities", "")),
		CreatedAt:  getTimeFromMap(props, "created_at"),
		UpdatedAt:  getTimeFromMap(props, "updated_at"),
	}
	if note.Entities == nil {
		note.Entities = []Entity{}
	}
	return note
}

func relFromRecord(record *neo4j.Record) (*Relationship, error) {
	val, ok := record.Get("r")
	if !ok {
		return nil, errors.NewStore("relationship record missing edge value", nil)
	}
	edge, ok := val.(neo4j.Relationship)
	if !ok {
		return nil, errors.NewStore("unexpected record shape for relationship", nil)
	}

	rel := &Relationship{
		ID:             getStringFromMap(edge.Props, "id", ""),
		SourceNoteID:   getString(record, "source_id", ""),
		TargetNoteID:   getString(record, "target_id", ""),
		Type:           RelationshipType(getStringFromMap(edge.Props, "type", "")),
		Similarity:     getFloat64FromMap(edge.Props, "similarity", 0),
		SharedEntities: decodeJSON[[]SharedEntity](getStringFromMap(edge.Props, "shared_entities", "")),
		Metadata:       decodeJSON[map[string]any](getStringFromMap(edge.Props, "metadata", "")),
	}
	if rel.SharedEntities == nil {
		rel.SharedEntities = []SharedEntity{}
	}
	if rel.Metadata == nil {
		rel.Metadata = map[string]any{}
	}
	return rel, nil
}

func toAnySlice(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func getString(record *neo4j.Record, key string, defaultValue string) string {
	val, ok := record.Get(key)
	if !ok {
		return defaultValue
	}
	if str, ok := val.(string); ok {
		return str
	}
	return defaultValue
}

func getStringFromMap(m map[string]interface{}, key string, defaultValue string) string {
	if str, ok := m[key].(string); ok {
		return str
	}
	return defaultValue
}

func getFloat64FromMap(m map[string]interface{}, key string, defaultValue float64) float64 {
	if f, ok := m[key].(float64); ok {
		return f
	}
	return defaultValue
}

func getStringSliceFromMap(m map[string]interface{}, key string) []string {
	val, ok := m[key]
	if !ok {
		return []string{}
	}
	slice, ok := val.([]interface{})
	if !ok {
		return []string{}
	}
	result := make([]string, 0, len(slice))
	for _, v := range slice {
		if str, ok := v.(string); ok {
			result = append(result, str)
		}
	}
	return result
}

func getTimeFromMap(m map[string]interface{}, key string) time.Time {
	// Neo4j datetime values come back as time.Time
	if t, ok := m[key].(time.Time); ok {
		return t
	}
	return time.Time{}
}

func asInt64(v interface{}) int64 {
	if n, ok := v.(int64); ok {
		return n
	}
	return 0
}
