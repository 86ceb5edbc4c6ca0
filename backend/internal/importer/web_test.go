package importer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindgraph/backend/pkg/errors"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Graph Databases Explained</title><style>p { color: red }</style></head>
<body>
  <nav><a href="/">Home</a></nav>
  <article>
    <h1>Graph Databases</h1>
    <p>A graph database stores   nodes and edges.</p>
    <script>console.log("noise")</script>
    <p>Traversal is cheap.</p>
  </article>
  <footer>Copyright</footer>
</body>
</html>`

func TestWebImporter_Extract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	imp := NewWebImporter(time.Second)
	page, err := imp.Extract(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "Graph Databases Explained", page.Title)
	assert.Contains(t, page.Text, "Graph Databases")
	assert.Contains(t, page.Text, "A graph database stores nodes and edges.")
	assert.Contains(t, page.Text, "Traversal is cheap.")
	assert.NotContains(t, page.Text, "console.log")
	assert.NotContains(t, page.Text, "Home")
	assert.NotContains(t, page.Text, "Copyright")
}

func TestWebImporter_TitleFallsBackToH1(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>Only Heading</h1><p>Body text.</p></body></html>`))
	}))
	defer srv.Close()

	imp := NewWebImporter(time.Second)
	page, err := imp.Extract(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "Only Heading", page.Title)
}

func TestWebImporter_RejectsNonHTTPURL(t *testing.T) {
	imp := NewWebImporter(time.Second)
	_, err := imp.Extract(context.Background(), "file:///etc/passwd")

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestWebImporter_Non2xxIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	imp := NewWebImporter(time.Second)
	_, err := imp.Extract(context.Background(), srv.URL)

	require.Error(t, err)
	assert.True(t, errors.IsUpstream(err))
}

func TestWebImporter_EmptyPageIsValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body></body></html>`))
	}))
	defer srv.Close()

	imp := NewWebImporter(time.Second)
	_, err := imp.Extract(context.Background(), srv.URL)

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}
