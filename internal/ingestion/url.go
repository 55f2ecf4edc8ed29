package ingestion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the HTTP request timeout for job-posting fetches.
const DefaultTimeout = 30 * time.Second

// userAgent identifies fetches made by the CLI.
const userAgent = "Mozilla/5.0 (compatible; ResumeOptimizer/1.0)"

var (
	// ErrInvalidURL is returned when the URL is malformed.
	ErrInvalidURL = fmt.Errorf("invalid URL")
	// ErrHTTPRequestFailed is returned when the HTTP request fails.
	ErrHTTPRequestFailed = fmt.Errorf("HTTP request failed")
	// ErrContentExtractionFailed is returned when no text could be pulled
	// from the page.
	ErrContentExtractionFailed = fmt.Errorf("content extraction failed")
)

// noiseSelectors are stripped from fetched pages before text extraction.
var noiseSelectors = []string{
	"script", "style", "noscript", "nav", "header", "footer",
	"aside", "form", "iframe", "svg",
}

// contentSelectors are tried in order; the first non-empty match wins.
var contentSelectors = []string{
	"main", "article", "[role=main]", "#content", ".content", "body",
}

// FetchJobPosting downloads a job posting page and returns its cleaned
// text content.
func FetchJobPosting(ctx context.Context, urlStr string) (string, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, urlStr)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	req.Header.Set("User-Agent", userAgent)

	client := &http.Client{Timeout: DefaultTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: unexpected status %d", ErrHTTPRequestFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	text, err := ExtractMainText(string(body))
	if err != nil {
		return "", err
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return "", fmt.Errorf("%w: page yielded no text", ErrContentExtractionFailed)
	}
	return cleaned, nil
}

// ExtractMainText pulls readable text from an HTML document, removing
// navigation and boilerplate elements first.
func ExtractMainText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	for _, selector := range noiseSelectors {
		doc.Find(selector).Remove()
	}

	for _, selector := range contentSelectors {
		selection := doc.Find(selector)
		if selection.Length() == 0 {
			continue
		}
		text := blockText(selection)
		if strings.TrimSpace(text) != "" {
			return text, nil
		}
	}

	return "", fmt.Errorf("%w: no content found", ErrContentExtractionFailed)
}

// blockText renders a selection's text with block elements separated by
// newlines so list structure survives extraction.
func blockText(selection *goquery.Selection) string {
	var sb strings.Builder
	selection.Find("p, li, h1, h2, h3, h4, h5, h6, div, td, span").Each(func(_ int, el *goquery.Selection) {
		// Only leaf-ish nodes contribute, otherwise text duplicates up
		// the tree.
		if el.Children().Length() > 0 {
			return
		}
		text := strings.TrimSpace(el.Text())
		if text == "" {
			return
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	})

	if sb.Len() == 0 {
		return selection.Text()
	}
	return sb.String()
}
