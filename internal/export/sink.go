package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const maxNameAttempts = 1000

// FileSink writes each document into Dir. Writes go through a temp file that
// is hard-linked into place, so readers never see a partial CSV and an
// existing export is never replaced: a taken name gets a _2, _3... suffix.
type FileSink struct {
	Dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

func (s *FileSink) Save(ctx context.Context, doc Document) error {
	_, err := s.Place(ctx, doc)
	return err
}

// Place saves doc and returns the filename it was stored under.
func (s *FileSink) Place(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, ".export-*.csv")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(doc.Content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close csv: %w", err)
	}

	for n := 1; n <= maxNameAttempts; n++ {
		name := numberedName(doc.Filename, n)
		err := os.Link(tmp.Name(), filepath.Join(s.Dir, name))
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("link csv: %w", err)
		}
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", doc.Filename, maxNameAttempts)
}

// numberedName is name for n == 1 and name_<n>.ext otherwise.
func numberedName(name string, n int) string {
	if n == 1 {
		return name
	}
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n, ext)
}

// WriterSink writes the raw CSV bytes to W.
type WriterSink struct {
	mu sync.Mutex
	W  io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{W: w}
}

func (s *WriterSink) Save(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.W.Write(doc.Content)
	return err
}
