package parser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"TranscriptDigest/internal/config"
	"TranscriptDigest/internal/domain"
	"TranscriptDigest/internal/scanner"
)

const transcriptPage = `<html><body>
<header><div class="whitespace-nowrap">JPM Q1</div></header>
<main>
  <div class="whitespace-pre-line">
    Operator: Good morning and welcome.
    Jamie Dimon: Revenue was strong this quarter.
  </div>
  <div class="whitespace-pre-line">second block ignored</div>
</main>
</body></html>`

func newTranscriptServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/stock/transcript/JPM-2024-Q1", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != userAgent {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		_, _ = w.Write([]byte(transcriptPage))
	})
	mux.HandleFunc("/stock/transcript/JPM-2024-Q2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>Transcript coming soon</p></body></html>`))
	})
	mux.HandleFunc("/stock/transcript/JPM-2024-Q3", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestEarningsCallScannerFetch(t *testing.T) {
	t.Parallel()

	srv := newTranscriptServer(t)
	s := NewEarningsCallScanner(srv.Client(), nil)
	template := srv.URL + "/stock/transcript/{symbol}-{year}-Q{quarter}"

	text, err := s.Fetch(context.Background(), scanner.Request{
		Key:         domain.TranscriptKey{Symbol: "JPM", Year: 2024, Quarter: 1},
		URLTemplate: template,
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	want := "Operator: Good morning and welcome.\n    Jamie Dimon: Revenue was strong this quarter."
	if text != want {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestEarningsCallScannerErrors(t *testing.T) {
	t.Parallel()

	srv := newTranscriptServer(t)
	s := NewEarningsCallScanner(srv.Client(), nil)
	template := srv.URL + "/stock/transcript/{symbol}-{year}-Q{quarter}"

	cases := []struct {
		quarter  int
		notFound bool
	}{
		{quarter: 2, notFound: true},
		{quarter: 3, notFound: false},
		{quarter: 4, notFound: true},
	}

	for _, tc := range cases {
		_, err := s.Fetch(context.Background(), scanner.Request{
			Key:         domain.TranscriptKey{Symbol: "JPM", Year: 2024, Quarter: tc.quarter},
			URLTemplate: template,
		})
		if err == nil {
			t.Fatalf("Q%d: expected error", tc.quarter)
		}
		if got := errors.Is(err, domain.ErrTranscriptNotFound); got != tc.notFound {
			t.Fatalf("Q%d: not-found = %v, want %v (%v)", tc.quarter, got, tc.notFound, err)
		}
	}
}

func TestStrategySourceFetch(t *testing.T) {
	t.Parallel()

	srv := newTranscriptServer(t)
	reg := scanner.NewRegistry()
	reg.Register(NewEarningsCallScanner(srv.Client(), nil))

	src := NewStrategySource(reg, config.SourceConfig{
		Scanner:     "earningscall",
		URLTemplate: srv.URL + "/stock/transcript/{symbol}-{year}-Q{quarter}",
		Options:     map[string]string{"selector": "header .whitespace-nowrap"},
	}, nil)

	text, err := src.Fetch(context.Background(), domain.TranscriptKey{Symbol: "JPM", Year: 2024, Quarter: 1})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if text != "JPM Q1" {
		t.Fatalf("selector option ignored, got %q", text)
	}

	missing := NewStrategySource(reg, config.SourceConfig{Scanner: "other"}, nil)
	if _, err := missing.Fetch(context.Background(), domain.TranscriptKey{Symbol: "JPM"}); err == nil {
		t.Fatal("expected unregistered scanner error")
	}
}
