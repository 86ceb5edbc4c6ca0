// Package importer turns external sources into note drafts. The only
// importer today fetches a web page and extracts its title and readable
// text; the note itself is created through the regular note pipeline.
package importer

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"mindgraph/backend/pkg/errors"
	"mindgraph/backend/pkg/logger"
)

// Page is the extracted draft of a web page
type Page struct {
	Title string
	Text  string
}

// WebImporter fetches and extracts web pages
type WebImporter struct {
	http   *http.Client
	logger *zap.Logger
}

// NewWebImporter creates an importer with the given fetch timeout
func NewWebImporter(timeout time.Duration) *WebImporter {
	return &WebImporter{
		http:   &http.Client{Timeout: timeout},
		logger: logger.Get(),
	}
}

// Extract fetches url and returns its title and main text content
func (w *WebImporter) Extract(ctx context.Context, url string) (*Page, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, errors.NewValidation("url must be http or https")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewValidation(fmt.Sprintf("invalid url: %v", err))
	}
	req.Header.Set("User-Agent", "mindgraph-importer/1.0")

	resp, err := w.http.Do(req)
	if err != nil {
		return nil, errors.NewUpstream("failed to fetch page", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewUpstream(fmt.Sprintf("page fetch returned %d", resp.StatusCode), nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.NewUpstream("failed to parse page", err)
	}

	page := extractPage(doc)
	if page.Text == "" {
		return nil, errors.NewValidation("no readable text found on page")
	}

	w.logger.Info("Web page imported",
		zap.String("url", url),
		zap.String("title", page.Title),
		zap.Int("text_length", len(page.Text)),
	)
	return page, nil
}

func extractPage(doc *goquery.Document) *Page {
	doc.Find("script, style, noscript, nav, header, footer, aside").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	// Prefer the article body when the page marks one up
	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find("main").First()
	}
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}

	var parts []string
	root.Find("p, h1, h2, h3, li").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	text := strings.Join(parts, "\n\n")
	if text == "" {
		text = strings.TrimSpace(root.Text())
	}

	return &Page{Title: title, Text: collapseWhitespace(text)}
}

func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" || (len(out) > 0 && out[len(out)-1] != "") {
			out = append(out, line)
		}
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
