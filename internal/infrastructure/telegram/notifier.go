package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"TranscriptDigest/internal/config"
	"TranscriptDigest/internal/domain"
	"TranscriptDigest/internal/ports"
)

// maxMessageRunes is the Bot API limit for one sendMessage text.
const maxMessageRunes = 4096

// Notifier sends reports to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(cfg config.TelegramConfig, client *http.Client) *Notifier {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	apiBase := strings.TrimSuffix(cfg.APIBase, "/")
	if apiBase == "" {
		apiBase = "https://api.telegram.org"
	}
	return &Notifier{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		apiBase:  apiBase,
		client:   client,
	}
}

// Deliver posts the report, titled with the transcript key, in as many messages as needed.
func (n *Notifier) Deliver(ctx context.Context, doc domain.Transcript) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	text := doc.Key.Title() + "\n\n" + doc.Report
	for i, chunk := range Chunk(text, maxMessageRunes) {
		if err := n.send(ctx, chunk); err != nil {
			return fmt.Errorf("telegram part %d: %w", i+1, err)
		}
	}
	return nil
}

func (n *Notifier) send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

// Chunk splits text into pieces of at most limit runes, breaking after a
// newline when one falls inside the window.
func Chunk(text string, limit int) []string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}

	runes := []rune(text)
	var chunks []string
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i > 0; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
	}
	return append(chunks, string(runes))
}
