package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"TranscriptDigest/internal/domain"
	"TranscriptDigest/internal/ports"
)

const (
	transcriptsDir = "transcripts"
	summaryDir     = "summary"
)

// FileRepository keeps transcripts and reports as plain text files under a root directory:
//
//	{root}/transcripts/{key}-transcript.txt
//	{root}/summary/{key}-transcript-summary.txt
type FileRepository struct {
	root string
}

var _ ports.TranscriptRepository = (*FileRepository)(nil)

// NewFileRepository roots the repository at dir. Directories are created on first write.
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{root: dir}
}

// TranscriptPath is where the raw text for key lives.
func (r *FileRepository) TranscriptPath(key domain.TranscriptKey) string {
	return filepath.Join(r.root, transcriptsDir, key.String()+"-transcript.txt")
}

// SummaryPath is where the formatted report for key lives.
func (r *FileRepository) SummaryPath(key domain.TranscriptKey) string {
	return filepath.Join(r.root, summaryDir, SummaryFileName(key))
}

// SummaryFileName is the base name used for stored and attached reports.
func SummaryFileName(key domain.TranscriptKey) string {
	return key.String() + "-transcript-summary.txt"
}

func (r *FileRepository) SaveTranscript(ctx context.Context, doc domain.Transcript) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeFile(r.TranscriptPath(doc.Key), doc.Content)
}

func (r *FileRepository) SaveSummary(ctx context.Context, doc domain.Transcript) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeFile(r.SummaryPath(doc.Key), doc.Report)
}

func (r *FileRepository) HasSummary(_ context.Context, key domain.TranscriptKey) (bool, error) {
	_, err := os.Stat(r.SummaryPath(key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat summary: %w", err)
	}
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
