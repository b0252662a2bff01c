// Package eventlog appends recommendation events to an append-only structured
// log. The writer guarantees durability before the caller acknowledges the
// delivery that produced the row.
package eventlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// header is written once when the log target is first created.
var header = []string{"Timestamp", "Recommendation ID", "Patient ID", "Recommendation"}

// Writer appends rows to a CSV log file. Safe for concurrent use.
type Writer struct {
	path string
	mu   sync.Mutex
}

// NewWriter builds a writer for the given target path. The file is created
// lazily on first append.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Append durably writes one row. The file is synced before returning, so a
// nil error means the row survives a crash.
func (w *Writer) Append(timestamp, recommendationID, patientID, recommendationText string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat event log: %w", err)
	}

	cw := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("write event log header: %w", err)
		}
	}
	if err := cw.Write([]string{timestamp, recommendationID, patientID, recommendationText}); err != nil {
		return fmt.Errorf("write event log row: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush event log: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync event log: %w", err)
	}
	return nil
}
