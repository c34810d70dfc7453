package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"
	"gopkg.in/gomail.v2"

	"TranscriptDigest/internal/config"
	"TranscriptDigest/internal/domain"
	"TranscriptDigest/internal/infrastructure/storage"
	"TranscriptDigest/internal/ports"
)

// Sender is satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Notifier mails the report to every configured recipient.
type Notifier struct {
	sender     Sender
	from       string
	recipients []string
	signature  string
	logger     *slog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier builds a notifier with a gomail SMTP dialer.
func NewNotifier(cfg config.EmailConfig, logger *slog.Logger) *Notifier {
	return NewNotifierWithSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg, logger)
}

// NewNotifierWithSender is NewNotifier with a custom transport.
func NewNotifierWithSender(sender Sender, cfg config.EmailConfig, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &Notifier{
		sender:     sender,
		from:       from,
		recipients: append([]string(nil), cfg.Recipients...),
		signature:  "TranscriptDigest",
		logger:     logger,
	}
}

// Deliver sends one message per recipient. A failed recipient does not stop
// the rest; all failures are joined into the returned error.
func (n *Notifier) Deliver(ctx context.Context, doc domain.Transcript) error {
	if len(n.recipients) == 0 {
		return errors.New("email notifier has no recipients")
	}

	html, err := RenderHTML(doc.Report)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	var errs []error
	for _, to := range n.recipients {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := n.sender.DialAndSend(n.message(doc, to, html)); err != nil {
			n.logger.Warn("email failed", "to", to, "key", doc.Key.String(), "error", err)
			errs = append(errs, fmt.Errorf("send to %s: %w", to, err))
			continue
		}
		n.logger.Info("email sent", "to", to, "key", doc.Key.String())
	}
	return errors.Join(errs...)
}

func (n *Notifier) message(doc domain.Transcript, to, html string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", Subject(doc.Key))
	m.SetBody("text/plain", plainBody(doc.Key, n.signature))
	m.AddAlternative("text/html", html)

	report := doc.Report
	m.Attach(storage.SummaryFileName(doc.Key), gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := io.WriteString(w, report)
		return err
	}))
	return m
}

// Subject is the mail subject for a transcript report.
func Subject(key domain.TranscriptKey) string {
	return fmt.Sprintf("Transcript Summary - %s - %d Q%d", key.Symbol, key.Year, key.Quarter)
}

func plainBody(key domain.TranscriptKey, signature string) string {
	return fmt.Sprintf("Dear Stakeholder,\n\nPlease find attached the transcript summary for %s - %d Q%d.\n\nBest regards,\n%s\n",
		key.Symbol, key.Year, key.Quarter, signature)
}

// RenderHTML turns a formatted report into HTML: topic lines become headings
// and fragment lines a bullet list.
func RenderHTML(report string) (string, error) {
	var md strings.Builder
	for _, line := range strings.Split(report, "\n") {
		switch {
		case line == "":
			md.WriteString("\n")
		case strings.HasPrefix(line, "- "):
			md.WriteString(line + "\n")
		default:
			md.WriteString("### " + line + "\n")
		}
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md.String()), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
