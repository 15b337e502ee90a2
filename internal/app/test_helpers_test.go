package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/lantern-lab/lantern/internal/config"
	"github.com/lantern-lab/lantern/internal/logger"
	"github.com/lantern-lab/lantern/internal/ports/secondary"
)

// Ensure mocks implement the interfaces
var (
	_ secondary.Display        = (*mockDisplay)(nil)
	_ secondary.OrderingSource = (*mockOrderingSource)(nil)
	_ secondary.PrimeSource    = (*mockPrimeSource)(nil)
	_ secondary.RecordSink     = (*mockRecordSink)(nil)
)

// mockDisplay implements secondary.Display with scripted key presses.
// WaitForKey calls are numbered from 0; unscripted calls time out.
type mockDisplay struct {
	keys               map[int]secondary.KeyPress
	abortAtWait        int // -1 disables
	abortAtInstruction string
	texts              []string

	waits        int
	focal        []int
	primes       []string
	primeImages  []string
	instructions []string
	pauses       []time.Duration
	blanks       []time.Duration
	closed       bool
}

func newMockDisplay() *mockDisplay {
	return &mockDisplay{
		keys:        make(map[int]secondary.KeyPress),
		abortAtWait: -1,
	}
}

func (m *mockDisplay) press(wait int, elapsed time.Duration) {
	m.keys[wait] = secondary.KeyPress{Pressed: true, Elapsed: elapsed}
}

func (m *mockDisplay) ShowInstructions(ctx context.Context, task, genre, subgenre string) error {
	name := genre + "/" + subgenre
	m.instructions = append(m.instructions, task+":"+name)
	if m.abortAtInstruction != "" && m.abortAtInstruction == task+":"+name {
		return secondary.ErrAborted
	}
	return nil
}

func (m *mockDisplay) ShowNBackStimulus(ctx context.Context, focalID int, primePath string) error {
	m.focal = append(m.focal, focalID)
	m.primes = append(m.primes, primePath)
	return nil
}

func (m *mockDisplay) ShowPrimeStimulus(ctx context.Context, path string) error {
	m.primeImages = append(m.primeImages, path)
	return nil
}

func (m *mockDisplay) WaitForKey(ctx context.Context, timeout time.Duration, key string) (secondary.KeyPress, error) {
	n := m.waits
	m.waits++
	if n == m.abortAtWait {
		return secondary.KeyPress{}, secondary.ErrAborted
	}
	if kp, ok := m.keys[n]; ok {
		return kp, nil
	}
	return secondary.KeyPress{Pressed: false, Elapsed: timeout}, nil
}

func (m *mockDisplay) Pause(ctx context.Context, d time.Duration) error {
	m.pauses = append(m.pauses, d)
	return nil
}

func (m *mockDisplay) Blank(ctx context.Context, d time.Duration) error {
	m.blanks = append(m.blanks, d)
	return nil
}

func (m *mockDisplay) ReadText(ctx context.Context, prompt string) (string, error) {
	if len(m.texts) == 0 {
		return "", nil
	}
	t := m.texts[0]
	m.texts = m.texts[1:]
	return t, nil
}

func (m *mockDisplay) Close() error {
	m.closed = true
	return nil
}

// mockOrderingSource implements secondary.OrderingSource from a map keyed like the ordering files.
type mockOrderingSource struct {
	orderings map[string][]int
}

func newMockOrderingSource() *mockOrderingSource {
	return &mockOrderingSource{orderings: make(map[string][]int)}
}

func (m *mockOrderingSource) Practice(ctx context.Context, difficulty int) ([]int, error) {
	return m.get(secondary.PracticeKey(difficulty))
}

func (m *mockOrderingSource) Block(ctx context.Context, difficulty, index int) ([]int, error) {
	return m.get(secondary.BlockKey(difficulty, index))
}

func (m *mockOrderingSource) get(key string) ([]int, error) {
	ids, ok := m.orderings[key]
	if !ok {
		return nil, fmt.Errorf("ordering %s not found", key)
	}
	return ids, nil
}

// fillDistinct gives every scored block a sequence with no repeats.
func (m *mockOrderingSource) fillDistinct(total, length int) {
	for d := 1; d <= 3; d++ {
		for j := 0; j < total; j++ {
			ids := make([]int, length)
			for i := range ids {
				ids[i] = d*1000 + j*100 + i
			}
			m.orderings[secondary.BlockKey(d, j)] = ids
		}
	}
}

// mockPrimeSource implements secondary.PrimeSource with fixed lists.
type mockPrimeSource struct {
	task             map[string][]string
	practice         []string
	folders          []string
	practiceFolders  []string
	nBackPrimesCalls int
}

func newMockPrimeSource() *mockPrimeSource {
	primes := func(list string) []string {
		var out []string
		for i := 1; i <= 40; i++ {
			name := fmt.Sprintf("%s%02d", list, i)
			out = append(out, filepath.Join("images/prime/task", list, name, name+"_8.png"))
		}
		return out
	}
	return &mockPrimeSource{
		task:     map[string][]string{"A": primes("A"), "B": primes("B")},
		practice: []string{"images/prime/practice/airplane/airplane_8.png", "images/prime/practice/boat/boat_8.png"},
	}
}

func (m *mockPrimeSource) NBackPrimes(ctx context.Context, practice bool, listName string) ([]string, error) {
	m.nBackPrimesCalls++
	if practice {
		return m.practice, nil
	}
	paths, ok := m.task[listName]
	if !ok {
		return nil, errors.New("unknown prime list " + listName)
	}
	return paths, nil
}

func (m *mockPrimeSource) RecognitionFolders(ctx context.Context, practice bool) ([]string, error) {
	if practice {
		return m.practiceFolders, nil
	}
	return m.folders, nil
}

func (m *mockPrimeSource) LevelImage(folder string, level int) string {
	name := filepath.Base(folder)
	return filepath.Join(folder, fmt.Sprintf("%s_%d.png", name, level))
}

// mockRecordSink implements secondary.RecordSink in memory.
type mockRecordSink struct {
	records   []secondary.Record
	flushes   []string
	appendErr error
}

func newMockRecordSink() *mockRecordSink {
	return &mockRecordSink{}
}

func (m *mockRecordSink) Append(ctx context.Context, rec secondary.Record) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *mockRecordSink) Flush(ctx context.Context, section string) error {
	m.flushes = append(m.flushes, section)
	return nil
}

func (m *mockRecordSink) Close() error {
	return nil
}

func (m *mockRecordSink) nBackRecords() []*secondary.NBackRecord {
	var out []*secondary.NBackRecord
	for _, r := range m.records {
		if nb, ok := r.(*secondary.NBackRecord); ok {
			out = append(out, nb)
		}
	}
	return out
}

func (m *mockRecordSink) primeRecords() []*secondary.PrimeRecord {
	var out []*secondary.PrimeRecord
	for _, r := range m.records {
		if p, ok := r.(*secondary.PrimeRecord); ok {
			out = append(out, p)
		}
	}
	return out
}

// noShuffle keeps slice order so tests are deterministic.
type noShuffle struct{}

func (noShuffle) Shuffle(n int, swap func(i, j int)) {}

// reverseShuffle reverses the slice on every call.
type reverseShuffle struct{}

func (reverseShuffle) Shuffle(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.PracticeRun = false
	cfg.PrimeTask = false
	cfg.NBackBlockTotal = 3
	return cfg
}

type testHarness struct {
	service  *ExperimentServiceImpl
	display  *mockDisplay
	ordering *mockOrderingSource
	primes   *mockPrimeSource
	sink     *mockRecordSink
}

func newTestHarness(cfg *config.Config) *testHarness {
	h := &testHarness{
		display:  newMockDisplay(),
		ordering: newMockOrderingSource(),
		primes:   newMockPrimeSource(),
		sink:     newMockRecordSink(),
	}
	h.service = NewExperimentService(cfg, h.display, h.ordering, h.primes, h.sink, noShuffle{}, logger.Nop())
	h.service.now = func() time.Time { return time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC) }
	return h
}
