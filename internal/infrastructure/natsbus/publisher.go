package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"TranscriptDigest/internal/domain"
	"TranscriptDigest/internal/ports"
)

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// SummaryEvent is the JSON payload published for every stored summary.
type SummaryEvent struct {
	Symbol  string            `json:"symbol"`
	Year    int               `json:"year"`
	Quarter int               `json:"quarter"`
	Title   string            `json:"title"`
	Summary map[string]string `json:"summary"`
	Report  string            `json:"report"`
	Skipped []SkippedTopic    `json:"skipped,omitempty"`
}

// SkippedTopic names a topic without condensation and the reason.
type SkippedTopic struct {
	Topic  string `json:"topic"`
	Reason string `json:"reason"`
}

// Publisher announces finished summaries on a NATS subject.
type Publisher struct {
	conn    Conn
	subject string
	close   func()
}

var _ ports.Notifier = (*Publisher)(nil)

// Connect dials NATS with reconnects enabled.
func Connect(url, subject string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("transcriptdigest"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	p := NewPublisher(nc, subject)
	p.close = nc.Close
	return p, nil
}

// NewPublisher wraps an existing connection.
func NewPublisher(conn Conn, subject string) *Publisher {
	return &Publisher{conn: conn, subject: subject}
}

// Deliver publishes the event and waits for the server to acknowledge the flush.
func (p *Publisher) Deliver(ctx context.Context, doc domain.Transcript) error {
	data, err := json.Marshal(NewSummaryEvent(doc))
	if err != nil {
		return fmt.Errorf("failed to marshal summary event: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", p.subject, err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", p.subject, err)
	}
	return nil
}

// Close closes the NATS connection if Connect opened it.
func (p *Publisher) Close() {
	if p.close != nil {
		p.close()
	}
}

// NewSummaryEvent projects a transcript onto the wire event.
func NewSummaryEvent(doc domain.Transcript) SummaryEvent {
	evt := SummaryEvent{
		Symbol:  doc.Key.Symbol,
		Year:    doc.Key.Year,
		Quarter: doc.Key.Quarter,
		Title:   doc.Key.Title(),
		Summary: map[string]string(doc.Summary),
		Report:  doc.Report,
	}
	for _, s := range doc.Skipped {
		reason := ""
		if s.Err != nil {
			reason = s.Err.Error()
		}
		evt.Skipped = append(evt.Skipped, SkippedTopic{Topic: s.Topic, Reason: reason})
	}
	return evt
}
