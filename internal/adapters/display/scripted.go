package display

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lantern-lab/lantern/internal/config"
	"github.com/lantern-lab/lantern/internal/ports/secondary"
)

// Script drives a Scripted display. Waits are numbered from 0 in the
// order the session makes them.
type Script struct {
	// Presses lists the waits answered with a key press.
	Presses []int `yaml:"presses" json:"presses"`
	// ReactionTime is reported for every press.
	ReactionTime config.Duration `yaml:"reaction_time" json:"reaction_time"`
	// Texts are returned by successive ReadText calls; later calls return "".
	Texts []string `yaml:"texts" json:"texts"`
	// AbortAtWait aborts at that wait when set.
	AbortAtWait *int `yaml:"abort_at_wait" json:"abort_at_wait"`
	// RealTime makes Pause, Blank and unanswered waits sleep.
	RealTime bool `yaml:"real_time" json:"real_time"`
}

// LoadScript reads a YAML script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	return &s, nil
}

// Event is one call seen by a Scripted display.
type Event struct {
	Kind   string
	Detail string
}

// Scripted implements secondary.Display without a screen, answering waits
// from a Script. It records every call for inspection.
type Scripted struct {
	script  Script
	presses map[int]bool

	mu     sync.Mutex
	waits  int
	texts  int
	events []Event
}

// NewScripted creates a headless display following script. A nil script
// lets every wait time out.
func NewScripted(script *Script) *Scripted {
	s := &Scripted{presses: make(map[int]bool)}
	if script != nil {
		s.script = *script
	}
	if s.script.ReactionTime.Duration == 0 {
		s.script.ReactionTime = config.Duration{Duration: 400 * time.Millisecond}
	}
	for _, w := range s.script.Presses {
		s.presses[w] = true
	}
	return s
}

func (s *Scripted) record(kind, format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, Event{Kind: kind, Detail: fmt.Sprintf(format, args...)})
}

// Events returns a copy of the calls seen so far.
func (s *Scripted) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func (s *Scripted) ShowInstructions(ctx context.Context, task, genre, subgenre string) error {
	s.record("instructions", "%s/%s/%s", task, genre, subgenre)
	return ctx.Err()
}

func (s *Scripted) ShowNBackStimulus(ctx context.Context, focalID int, primePath string) error {
	s.record("n-back", "%d %s", focalID, stem(primePath))
	return ctx.Err()
}

func (s *Scripted) ShowPrimeStimulus(ctx context.Context, path string) error {
	s.record("prime", "%s", stem(path))
	return ctx.Err()
}

func (s *Scripted) WaitForKey(ctx context.Context, timeout time.Duration, key string) (secondary.KeyPress, error) {
	s.mu.Lock()
	n := s.waits
	s.waits++
	s.mu.Unlock()

	if s.script.AbortAtWait != nil && *s.script.AbortAtWait == n {
		s.record("wait", "%d abort", n)
		return secondary.KeyPress{}, secondary.ErrAborted
	}
	if s.presses[n] {
		rt := min(s.script.ReactionTime.Duration, timeout)
		s.record("wait", "%d press %s", n, rt)
		return secondary.KeyPress{Pressed: true, Elapsed: rt}, s.sleep(ctx, rt)
	}
	s.record("wait", "%d timeout", n)
	return secondary.KeyPress{Elapsed: timeout}, s.sleep(ctx, timeout)
}

func (s *Scripted) Pause(ctx context.Context, d time.Duration) error {
	s.record("pause", "%s", d)
	return s.sleep(ctx, d)
}

func (s *Scripted) Blank(ctx context.Context, d time.Duration) error {
	s.record("blank", "%s", d)
	return s.sleep(ctx, d)
}

func (s *Scripted) ReadText(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	i := s.texts
	s.texts++
	s.mu.Unlock()

	text := ""
	if i < len(s.script.Texts) {
		text = s.script.Texts[i]
	}
	s.record("text", "%q", text)
	return text, ctx.Err()
}

func (s *Scripted) Close() error {
	return nil
}

func (s *Scripted) sleep(ctx context.Context, d time.Duration) error {
	if !s.script.RealTime || d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

var _ secondary.Display = (*Scripted)(nil)
