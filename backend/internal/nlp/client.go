package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"mindgraph/backend/pkg/errors"
	"mindgraph/backend/pkg/logger"
)

// Client talks to the NLP sidecar service over HTTP JSON. Every call is
// bounded by the client timeout; a timeout or non-2xx response surfaces as
// an upstream error and aborts the enclosing operation.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a gateway client for the sidecar at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.Get(),
	}
}

// Process extracts tags, entities and key phrases from a text
func (c *Client) Process(ctx context.Context, text string) (*ProcessResult, error) {
	var result ProcessResult
	if err := c.post(ctx, "/process", map[string]any{"text": text}, &result); err != nil {
		return nil, err
	}
	if result.Tags == nil {
		result.Tags = []string{}
	}
	if result.KeyPhrases == nil {
		result.KeyPhrases = []string{}
	}
	return &result, nil
}

// Relationships scores the similarity of two texts and classifies the pair
func (c *Client) Relationships(ctx context.Context, text1, text2 string) (*RelationshipResult, error) {
	var result RelationshipResult
	payload := map[string]any{"text1": text1, "text2": text2}
	if err := c.post(ctx, "/relationships", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Cluster groups a set of texts into clusters of related notes
func (c *Client) Cluster(ctx context.Context, texts []string) (*ClusterResult, error) {
	var result ClusterResult
	if err := c.post(ctx, "/cluster", map[string]any{"texts": texts}, &result); err != nil {
		return nil, err
	}
	if result.Clusters == nil {
		result.Clusters = []Cluster{}
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.NewUpstream("failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.NewUpstream("failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewUpstream(fmt.Sprintf("text intelligence service unreachable (%s)", path), err)
	}
	defer resp.Body.Close()

	c.logger.Debug("NLP service call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.NewUpstream(
			fmt.Sprintf("text intelligence service returned %d for %s", resp.StatusCode, path),
			fmt.Errorf("%s", strings.TrimSpace(string(detail))),
		)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewUpstream("failed to decode response", err)
	}
	return nil
}
