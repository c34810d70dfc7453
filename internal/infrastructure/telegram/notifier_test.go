package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TranscriptDigest/internal/config"
	"TranscriptDigest/internal/domain"
)

func TestChunkRespectsLimitAndLines(t *testing.T) {
	t.Parallel()

	text := "SUMMARY\n- Revenue grew\n\nRISK_ANALYSIS\n- Credit € costs rose\n"
	chunks := Chunk(text, 24)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 24)
	}
	assert.Equal(t, "SUMMARY\n- Revenue grew", chunks[0])
}

func TestChunkHardSplitsLongLine(t *testing.T) {
	t.Parallel()

	chunks := Chunk(strings.Repeat("é", 10), 4)
	assert.Equal(t, []string{"éééé", "éééé", "éé"}, chunks)
	assert.Nil(t, Chunk("\n\n", 4))
}

func TestDeliverPostsEveryChunk(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		texts []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botsecret/sendMessage", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "42", r.PostForm.Get("chat_id"))
		mu.Lock()
		texts = append(texts, r.PostForm.Get("text"))
		mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewNotifier(config.TelegramConfig{BotToken: "secret", ChatID: "42", APIBase: srv.URL + "/"}, srv.Client())
	doc := domain.Transcript{
		Key:    domain.TranscriptKey{Symbol: "JPM", Year: 2024, Quarter: 1},
		Report: strings.Repeat("- Revenue grew across every segment\n", 200),
	}

	require.NoError(t, n.Deliver(context.Background(), doc))
	require.Len(t, texts, 2)
	assert.True(t, strings.HasPrefix(texts[0], "JPM - 2024 Q1 Earnings Call Transcript\n\n"))
}

func TestDeliverFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	doc := domain.Transcript{Report: "SUMMARY\n- x\n\n"}

	misconfigured := NewNotifier(config.TelegramConfig{}, nil)
	assert.Error(t, misconfigured.Deliver(context.Background(), doc))

	n := NewNotifier(config.TelegramConfig{BotToken: "t", ChatID: "1", APIBase: srv.URL}, srv.Client())
	err := n.Deliver(context.Background(), doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
