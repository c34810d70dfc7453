package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TranscriptDigest/internal/domain"
)

func TestKeysOrder(t *testing.T) {
	t.Parallel()

	keys := Keys(2024, []string{"JPM", "MS"}, []int{1, 2})
	assert.Equal(t, []domain.TranscriptKey{
		{Symbol: "JPM", Year: 2024, Quarter: 1},
		{Symbol: "JPM", Year: 2024, Quarter: 2},
		{Symbol: "MS", Year: 2024, Quarter: 1},
		{Symbol: "MS", Year: 2024, Quarter: 2},
	}, keys)
}

func TestBatchRecordsEveryOutcome(t *testing.T) {
	t.Parallel()

	ms1 := domain.TranscriptKey{Symbol: "MS", Year: 2024, Quarter: 1}
	src := &fakeSource{texts: map[domain.TranscriptKey]string{
		jpmQ1: "Revenue grew",
		ms1:   "Deposits rose",
	}}
	repo := newMemoryRepository()
	repo.summaries[ms1] = "done"

	p, err := NewPipeline(PipelineDeps{Source: src, Repository: repo, Summarizer: &stubSummarizer{}})
	require.NoError(t, err)

	report, err := NewBatch(p, nil).Run(context.Background(), 2024, []string{"JPM", "MS"}, []int{1, 2})
	require.NoError(t, err)

	assert.Equal(t, []domain.TranscriptKey{jpmQ1}, report.Processed)
	assert.Equal(t, []domain.TranscriptKey{ms1}, report.Skipped)
	require.Len(t, report.Failed, 2, "missing Q2 transcripts fail without stopping the run")
	assert.Equal(t, 2, report.Failed[0].Key.Quarter)
	assert.ErrorIs(t, report.Err(), domain.ErrTranscriptNotFound)
}

func TestBatchStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, err := NewPipeline(PipelineDeps{Source: &fakeSource{}, Summarizer: &stubSummarizer{}})
	require.NoError(t, err)

	report, err := NewBatch(p, nil).Run(ctx, 2024, []string{"JPM"}, []int{1, 2, 3, 4})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Processed)
	assert.Empty(t, report.Failed)
	assert.NoError(t, report.Err())
}
