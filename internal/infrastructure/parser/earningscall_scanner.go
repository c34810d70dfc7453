package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"TranscriptDigest/internal/domain"
	"TranscriptDigest/internal/scanner"
)

const (
	earningsCallName = "earningscall"
	// transcriptSelector is overridable per request with the "selector" option.
	transcriptSelector = "div.whitespace-pre-line"
	userAgent          = "TranscriptDigest/1.0"
)

// EarningsCallScanner downloads a transcript page and extracts its body text.
type EarningsCallScanner struct {
	client *http.Client
	logger *slog.Logger
}

var _ scanner.Scanner = (*EarningsCallScanner)(nil)

// NewEarningsCallScanner wires an HTTP client; a nil client gets a 30s timeout.
func NewEarningsCallScanner(client *http.Client, logger *slog.Logger) *EarningsCallScanner {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &EarningsCallScanner{client: client, logger: logger}
}

// Name identifies the strategy inside the registry.
func (e *EarningsCallScanner) Name() string {
	return earningsCallName
}

// Fetch returns the trimmed transcript text. A page without the transcript
// block yields domain.ErrTranscriptNotFound.
func (e *EarningsCallScanner) Fetch(ctx context.Context, req scanner.Request) (string, error) {
	pageURL := req.URL()
	doc, err := e.fetchDocument(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", req.Key, err)
	}

	selector := transcriptSelector
	if v := req.Options["selector"]; v != "" {
		selector = v
	}

	block := doc.Find(selector).First()
	if block.Length() == 0 {
		return "", fmt.Errorf("%s: %w", req.Key, domain.ErrTranscriptNotFound)
	}

	text := strings.TrimSpace(block.Text())
	if text == "" {
		return "", fmt.Errorf("%s: %w", req.Key, domain.ErrTranscriptNotFound)
	}

	e.logger.Debug("transcript fetched", "key", req.Key.String(), "url", pageURL, "chars", len(text))
	return text, nil
}

func (e *EarningsCallScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrTranscriptNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcript site returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}
