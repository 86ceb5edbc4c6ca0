package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"mindgraph/backend/internal/graph"
	"mindgraph/backend/pkg/errors"
	"mindgraph/backend/pkg/logger"
)

// OpenAIIntel implements TextIntelligence against an OpenAI-compatible
// endpoint for deployments without the NLP sidecar. Similarity comes from
// embedding cosine distance; enrichment from a structured chat completion.
type OpenAIIntel struct {
	client         *openai.Client
	embeddingModel string
	chatModel      string
	logger         *zap.Logger
}

// NewOpenAIIntel creates an OpenAI-backed gateway. A dummy key is used when
// none is provided, which proxies like LiteLLM accept.
func NewOpenAIIntel(baseURL, apiKey, embeddingModel string) *OpenAIIntel {
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"

	return &OpenAIIntel{
		client:         openai.NewClientWithConfig(cfg),
		embeddingModel: embeddingModel,
		chatModel:      openai.GPT4oMini,
		logger:         logger.Get(),
	}
}

const processPrompt = `Extract metadata from the text below. Respond with only a JSON object:
{"tags": [lowercase topic words], "entities": [{"text": span, "label": spaCy-style label, "confidence": 0..1, "start": char offset, "end": char offset}], "key_phrases": [noun phrases]}

Text:
%s`

// Process extracts tags, entities and key phrases via a chat completion
func (o *OpenAIIntel) Process(ctx context.Context, text string) (*ProcessResult, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(processPrompt, text)},
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, errors.NewUpstream("text enrichment completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.NewUpstream("text enrichment returned no choices", nil)
	}

	var result ProcessResult
	raw := stripCodeFence(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, errors.NewUpstream("text enrichment returned malformed JSON", err)
	}
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

// Relationships embeds both texts and scores the pair by cosine similarity.
// Shared entities are the case-insensitive intersection of the two texts'
// extracted entities.
func (o *OpenAIIntel) Relationships(ctx context.Context, text1, text2 string) (*RelationshipResult, error) {
	vectors, err := o.embed(ctx, []string{text1, text2})
	if err != nil {
		return nil, err
	}

	similarity := cosineSimilarity(vectors[0], vectors[1])

	p1, err := o.Process(ctx, text1)
	if err != nil {
		return nil, err
	}
	p2, err := o.Process(ctx, text2)
	if err != nil {
		return nil, err
	}

	return &RelationshipResult{
		Similarity:       similarity,
		RelationshipType: ClassifyRelationship(similarity),
		SharedEntities:   sharedEntities(p1.Entities, p2.Entities),
	}, nil
}

// Cluster embeds every text and groups them by single-link agglomeration at
// the related threshold
func (o *OpenAIIntel) Cluster(ctx context.Context, texts []string) (*ClusterResult, error) {
	if len(texts) == 0 {
		return &ClusterResult{Clusters: []Cluster{}}, nil
	}

	vectors, err := o.embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	return &ClusterResult{Clusters: clusterBySimilarity(vectors, RelatedThreshold)}, nil
}

func (o *OpenAIIntel) embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(o.embeddingModel),
		Input: texts,
	})
	if err != nil {
		return nil, errors.NewUpstream("embedding request failed", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, errors.NewUpstream(
			fmt.Sprintf("embedding response has %d vectors for %d inputs", len(resp.Data), len(texts)), nil)
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp into [0,1]: embeddings can produce slight negative cosines
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

func sharedEntities(a, b []graph.Entity) []graph.SharedEntity {
	seen := make(map[string]graph.Entity, len(a))
	for _, e := range a {
		seen[strings.ToLower(e.Text)] = e
	}

	shared := []graph.SharedEntity{}
	emitted := make(map[string]bool)
	for _, e := range b {
		key := strings.ToLower(e.Text)
		if match, ok := seen[key]; ok && !emitted[key] {
			shared = append(shared, graph.SharedEntity{Text: match.Text, Label: match.Label})
			emitted[key] = true
		}
	}
	return shared
}

// clusterBySimilarity performs single-link grouping: two texts land in the
// same cluster when any chain of pairwise similarities at or above the
// threshold connects them.
func clusterBySimilarity(vectors [][]float32, threshold float64) []Cluster {
	n := len(vectors)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if cosineSimilarity(vectors[i], vectors[j]) >= threshold {
				parent[find(i)] = find(j)
			}
		}
	}

	groups := make(map[int][]int)
	order := []int{}
	for i := 0; i < n; i++ {
		root := find(i)
		if _, ok := groups[root]; !ok {
			order = append(order, root)
		}
		groups[root] = append(groups[root], i)
	}

	clusters := make([]Cluster, 0, len(order))
	for _, root := range order {
		clusters = append(clusters, Cluster{Indices: groups[root]})
	}
	return clusters
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
