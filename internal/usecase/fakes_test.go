package usecase

import (
	"context"
	"errors"
	"sync"

	"TranscriptDigest/internal/domain"
	"TranscriptDigest/internal/ports"
)

type fakeSource struct {
	texts map[domain.TranscriptKey]string
	calls int
}

func (f *fakeSource) Fetch(_ context.Context, key domain.TranscriptKey) (string, error) {
	f.calls++
	text, ok := f.texts[key]
	if !ok {
		return "", domain.ErrTranscriptNotFound
	}
	return text, nil
}

type memoryRepository struct {
	mu          sync.Mutex
	transcripts map[domain.TranscriptKey]string
	summaries   map[domain.TranscriptKey]string
	statuses    map[domain.TranscriptKey]domain.ProcessingStatus
	saveErr     error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		transcripts: map[domain.TranscriptKey]string{},
		summaries:   map[domain.TranscriptKey]string{},
		statuses:    map[domain.TranscriptKey]domain.ProcessingStatus{},
	}
}

func (m *memoryRepository) SaveTranscript(_ context.Context, doc domain.Transcript) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.transcripts[doc.Key] = doc.Content
	return nil
}

func (m *memoryRepository) SaveSummary(_ context.Context, doc domain.Transcript) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[doc.Key] = doc.Report
	return nil
}

func (m *memoryRepository) HasSummary(_ context.Context, key domain.TranscriptKey) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.summaries[key]
	return ok, nil
}

func (m *memoryRepository) SetStatus(_ context.Context, key domain.TranscriptKey, status domain.ProcessingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[key] = status
	return nil
}

type stubSummarizer struct {
	err   error
	calls int
}

func (s *stubSummarizer) Summarize(_ context.Context, raw string) (domain.Result, error) {
	s.calls++
	if s.err != nil {
		return domain.Result{}, s.err
	}
	return domain.Result{
		Summary: domain.Summary{"SUMMARY": raw},
		Report:  "SUMMARY\n- " + raw + "\n\n",
		Skipped: []domain.SkippedTopic{{Topic: "Q_AND_A", Err: domain.ErrInputEmpty}},
	}, nil
}

type recordingNotifier struct {
	err       error
	delivered []domain.Transcript
}

func (r *recordingNotifier) Deliver(_ context.Context, doc domain.Transcript) error {
	if r.err != nil {
		return r.err
	}
	r.delivered = append(r.delivered, doc)
	return nil
}

var (
	_ ports.TranscriptSource     = (*fakeSource)(nil)
	_ ports.TranscriptRepository = (*memoryRepository)(nil)
	_ ports.StatusRecorder       = (*memoryRepository)(nil)
	_ ports.Summarizer           = (*stubSummarizer)(nil)
	_ ports.Notifier             = (*recordingNotifier)(nil)

	errChannelDown = errors.New("channel down")
)
