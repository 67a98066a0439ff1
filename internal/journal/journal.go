// Package journal appends one CSV row per user interaction.
//
// A single goroutine owns the file. Append hands it a row and waits until the
// row is flushed, so callers can reply knowing their event is recorded.
package journal

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/lookupbot/core/logger"
)

// ErrClosed is returned by Append after Close.
var ErrClosed = errors.New("journal: closed")

// Options configures Open.
type Options struct {
	Path string
	// Location is used for the date and time columns; nil means time.Local.
	Location  *time.Location
	QueueSize int
}

type request struct {
	row []string
	ack chan error
}

// Journal is an append-only CSV sink safe for concurrent use.
type Journal struct {
	path string
	loc  *time.Location

	reqs chan request
	done chan struct{}

	mu     sync.RWMutex
	closed bool

	rows     atomic.Int64
	closeErr error
}

// Open opens path for appending, creating it with a header when it does not
// exist or is empty. Existing rows are kept and counted.
func Open(opts Options) (*Journal, error) {
	if opts.Path == "" {
		return nil, errors.New("journal: empty path")
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("journal: create dir: %w", err)
		}
	}

	existing, err := countRows(opts.Path)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", opts.Path, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("journal: stat %s: %w", opts.Path, err)
	}

	w := csv.NewWriter(f)
	created := st.Size() == 0
	if created {
		if err := writeRow(w, Header); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("journal: write header: %w", err)
		}
	} else if err := terminateLastRow(f, opts.Path, st.Size()); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("journal: repair %s: %w", opts.Path, err)
	}

	j := &Journal{
		path: opts.Path,
		loc:  opts.Location,
		reqs: make(chan request, opts.QueueSize),
		done: make(chan struct{}),
	}
	j.rows.Store(existing)
	go j.loop(f, w)

	logger.Journal.Info("journal opened",
		slog.String("event", "open"),
		slog.String("path", opts.Path),
		slog.Bool("created", created),
		slog.Int64("rows", existing),
	)
	return j, nil
}

func (j *Journal) loop(f *os.File, w *csv.Writer) {
	defer close(j.done)
	for req := range j.reqs {
		err := writeRow(w, req.row)
		if err == nil {
			j.rows.Add(1)
		}
		req.ack <- err
	}
	j.closeErr = f.Close()
}

func writeRow(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// Append writes e as one row and returns once it is flushed.
// If ctx ends first the row may still be written.
func (j *Journal) Append(ctx context.Context, e Entry) error {
	req := request{row: e.record(j.loc), ack: make(chan error, 1)}

	j.mu.RLock()
	if j.closed {
		j.mu.RUnlock()
		return ErrClosed
	}
	select {
	case j.reqs <- req:
	case <-ctx.Done():
		j.mu.RUnlock()
		return ctx.Err()
	}
	j.mu.RUnlock()

	select {
	case err := <-req.ack:
		if err != nil {
			return fmt.Errorf("journal: append: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Rows returns the number of data rows in the file, header excluded.
func (j *Journal) Rows() int64 { return j.rows.Load() }

// Path returns the journal file path.
func (j *Journal) Path() string { return j.path }

// Close drains pending rows and closes the file. It is safe to call twice.
func (j *Journal) Close() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		<-j.done
		return nil
	}
	j.closed = true
	close(j.reqs)
	j.mu.Unlock()

	<-j.done
	logger.Journal.Info("journal closed",
		slog.String("event", "close"),
		slog.Int64("rows", j.rows.Load()),
	)
	return j.closeErr
}

// countRows returns the number of records after the header, 0 for a missing file.
// Outcomes may span lines, so records are counted with the CSV reader.
// terminateLastRow appends a line break when an interrupted write left the
// final row of a non-empty file unterminated.
func terminateLastRow(f *os.File, path string, size int64) error {
	r, err := os.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	last := make([]byte, 1)
	if _, err := r.ReadAt(last, size-1); err != nil {
		return err
	}
	if last[0] == '\n' {
		return nil
	}
	_, err = f.WriteString("\n")
	return err
}

func countRows(path string) (int64, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("journal: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	var n int64
	for {
		_, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("journal: read %s: %w", path, err)
		}
		n++
	}
	if n > 0 {
		n--
	}
	return n, nil
}
