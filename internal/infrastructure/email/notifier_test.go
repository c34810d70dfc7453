package email

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"TranscriptDigest/internal/config"
	"TranscriptDigest/internal/domain"
)

type recordingSender struct {
	failFor string
	sent    []*gomail.Message
}

func (r *recordingSender) DialAndSend(msgs ...*gomail.Message) error {
	for _, m := range msgs {
		if to := m.GetHeader("To"); len(to) > 0 && to[0] == r.failFor {
			return errors.New("mailbox unavailable")
		}
		r.sent = append(r.sent, m)
	}
	return nil
}

var doc = domain.Transcript{
	Key:    domain.TranscriptKey{Symbol: "JPM", Year: 2024, Quarter: 1},
	Report: "SUMMARY\n- Revenue grew\n- Costs fell\n\n",
}

func TestDeliverBuildsMessages(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	n := NewNotifierWithSender(sender, config.EmailConfig{
		From:       "digest@example.com",
		Recipients: []string{"a@example.com", "b@example.com"},
	}, nil)

	require.NoError(t, n.Deliver(context.Background(), doc))
	require.Len(t, sender.sent, 2)

	m := sender.sent[0]
	assert.Equal(t, []string{"Transcript Summary - JPM - 2024 Q1"}, m.GetHeader("Subject"))
	assert.Equal(t, []string{"digest@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"b@example.com"}, sender.sent[1].GetHeader("To"))

	var raw bytes.Buffer
	_, err := m.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "JPM-2024-Q1-transcript-summary.txt")
	assert.Contains(t, raw.String(), "text/html")
	assert.Contains(t, raw.String(), "Dear Stakeholder")
}

func TestDeliverContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{failFor: "a@example.com"}
	n := NewNotifierWithSender(sender, config.EmailConfig{
		Recipients: []string{"a@example.com", "b@example.com"},
	}, nil)

	err := n.Deliver(context.Background(), doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a@example.com")
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"b@example.com"}, sender.sent[0].GetHeader("To"))
}

func TestDeliverWithoutRecipients(t *testing.T) {
	t.Parallel()

	n := NewNotifierWithSender(&recordingSender{}, config.EmailConfig{}, nil)
	assert.Error(t, n.Deliver(context.Background(), doc))
}

func TestRenderHTML(t *testing.T) {
	t.Parallel()

	html, err := RenderHTML("Q_AND_A\n- Analysts asked about deposits\n\n")
	require.NoError(t, err)

	assert.Contains(t, html, "<h3>Q_AND_A</h3>")
	assert.Contains(t, html, "<li>Analysts asked about deposits</li>")
	assert.False(t, strings.Contains(html, "<h3></h3>"))
}
