// Package sink persists experiment records as CSV files and SQLite rows.
package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/lantern-lab/lantern/internal/ports/secondary"
)

// knownSections are the sections a sink accepts.
var knownSections = map[string]bool{
	secondary.SectionNBack: true,
	secondary.SectionPrime: true,
}

// CSVSink implements secondary.RecordSink with one CSV file per section at
// {root}/{section}/{age group}/{participant}/{section}.csv. Each Flush
// rewrites the file with every row appended to the section so far.
type CSVSink struct {
	root string

	mu   sync.Mutex
	rows map[string][]secondary.Record
}

// NewCSVSink creates a CSV sink writing under root.
func NewCSVSink(root string) *CSVSink {
	return &CSVSink{root: root, rows: make(map[string][]secondary.Record)}
}

// Append queues rec for its section.
func (s *CSVSink) Append(ctx context.Context, rec secondary.Record) error {
	if !knownSections[rec.Section()] {
		return fmt.Errorf("unknown section %q", rec.Section())
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[rec.Section()] = append(s.rows[rec.Section()], rec)
	return nil
}

// Flush writes every row of section. A section with no rows writes nothing.
func (s *CSVSink) Flush(ctx context.Context, section string) error {
	if !knownSections[section] {
		return fmt.Errorf("unknown section %q", section)
	}

	s.mu.Lock()
	rows := append([]secondary.Record(nil), s.rows[section]...)
	s.mu.Unlock()

	if len(rows) == 0 {
		return nil
	}

	path := s.Path(section, rows[0].Meta())
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(rows[0].Header()); err != nil {
		f.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(r.Row()); err != nil {
			f.Close()
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// Path returns the file a section is written to for a session.
func (s *CSVSink) Path(section string, meta secondary.SessionMeta) string {
	return filepath.Join(s.root, section, meta.AgeGroup, meta.Participant, section+".csv")
}

// Close releases the sink. Unflushed rows are dropped.
func (s *CSVSink) Close() error {
	return nil
}

var _ secondary.RecordSink = (*CSVSink)(nil)
