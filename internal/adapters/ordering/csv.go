// Package ordering reads the pre-generated stimulus orderings from CSV files.
package ordering

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lantern-lab/lantern/internal/ports/secondary"
)

// ErrMalformed is returned for an ordering file that cannot be read as a column of image IDs.
var ErrMalformed = errors.New("malformed ordering")

// CSVSource implements secondary.OrderingSource over a directory of
// "{key}.csv" files, each with one header row.
type CSVSource struct {
	dir            string
	practiceColumn int
	taskColumn     int
}

// NewCSVSource creates an ordering source reading from dir. Practice files
// carry the image ID in practiceColumn, scored files in taskColumn.
func NewCSVSource(dir string, practiceColumn, taskColumn int) *CSVSource {
	return &CSVSource{dir: dir, practiceColumn: practiceColumn, taskColumn: taskColumn}
}

// Practice returns the focal image IDs of the practice block at difficulty.
func (s *CSVSource) Practice(ctx context.Context, difficulty int) ([]int, error) {
	return s.read(secondary.PracticeKey(difficulty), s.practiceColumn)
}

// Block returns the focal image IDs of scored block index at difficulty.
func (s *CSVSource) Block(ctx context.Context, difficulty, index int) ([]int, error) {
	return s.read(secondary.BlockKey(difficulty, index), s.taskColumn)
}

// Path returns the file backing key.
func (s *CSVSource) Path(key string) string {
	return filepath.Join(s.dir, key+".csv")
}

func (s *CSVSource) read(key string, column int) ([]int, error) {
	f, err := os.Open(s.Path(key))
	if err != nil {
		return nil, fmt.Errorf("failed to open ordering %s: %w", key, err)
	}
	defer f.Close()

	ids, err := ParseColumn(f, column)
	if err != nil {
		return nil, fmt.Errorf("ordering %s: %w", key, err)
	}
	return ids, nil
}

// ParseColumn reads the integer image IDs in column of a CSV stream,
// skipping the header row. An ordering with no rows is malformed.
func ParseColumn(r io.Reader, column int) ([]int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMalformed)
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	var ids []int
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if column >= len(row) {
			return nil, fmt.Errorf("%w: line %d has %d columns, need %d", ErrMalformed, line, len(row), column+1)
		}
		id, err := strconv.Atoi(strings.TrimSpace(row[column]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: image id %q is not an integer", ErrMalformed, line, row[column])
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrMalformed)
	}
	return ids, nil
}

var _ secondary.OrderingSource = (*CSVSource)(nil)
