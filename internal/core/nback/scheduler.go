package nback

import "fmt"

// MinDifficulty is the easiest n-back distance.
const MinDifficulty = 1

// Thresholds controls block-to-block difficulty changes.
// A tally strictly between Raise and Lower leaves the difficulty unchanged.
type Thresholds struct {
	Lower int // errors >= Lower lowers the difficulty
	Raise int // errors <= Raise raises the difficulty
}

// Transition is the outcome of evaluating one scored block.
type Transition struct {
	From   int
	To     int
	Errors int
	Reason string
}

// Changed reports whether the difficulty moved.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// NextDifficulty decides the difficulty of the next block.
// Rules:
// - errors >= Lower and current > 1 lowers by one
// - otherwise errors <= Raise and current < max raises by one
// - otherwise the difficulty is unchanged
func NextDifficulty(current, max, errors int, th Thresholds) Transition {
	t := Transition{From: current, To: current, Errors: errors}
	switch {
	case errors >= th.Lower && current > MinDifficulty:
		t.To = current - 1
		t.Reason = fmt.Sprintf("%d errors >= %d, lowering to %d-back", errors, th.Lower, t.To)
	case errors <= th.Raise && current < max:
		t.To = current + 1
		t.Reason = fmt.Sprintf("%d errors <= %d, raising to %d-back", errors, th.Raise, t.To)
	default:
		t.Reason = fmt.Sprintf("%d errors, staying at %d-back", errors, current)
	}
	return t
}

// Ceiling returns the highest difficulty for a participant. When criticalAge
// is positive and age is known and at or below it, youngMax applies.
func Ceiling(age, criticalAge, max, youngMax int) int {
	if criticalAge > 0 && age > 0 && age <= criticalAge {
		return youngMax
	}
	return max
}

// ClampDifficulty bounds d to [MinDifficulty, max].
func ClampDifficulty(d, max int) int {
	if d > max {
		d = max
	}
	if d < MinDifficulty {
		d = MinDifficulty
	}
	return d
}

// Scheduler tracks the current difficulty across scored blocks.
// Practice blocks are never fed to it.
type Scheduler struct {
	current    int
	max        int
	thresholds Thresholds
	history    []Transition
}

// NewScheduler creates a scheduler starting at start, clamped to [1, max].
func NewScheduler(start, max int, th Thresholds) *Scheduler {
	return &Scheduler{
		current:    ClampDifficulty(start, max),
		max:        max,
		thresholds: th,
	}
}

// Current returns the difficulty for the next block.
func (s *Scheduler) Current() int {
	return s.current
}

// Max returns the difficulty ceiling.
func (s *Scheduler) Max() int {
	return s.max
}

// Observe applies the error tally of a completed scored block.
func (s *Scheduler) Observe(errors int) Transition {
	t := NextDifficulty(s.current, s.max, errors, s.thresholds)
	s.current = t.To
	s.history = append(s.history, t)
	return t
}

// Transitions returns every transition applied so far.
func (s *Scheduler) Transitions() []Transition {
	out := make([]Transition, len(s.history))
	copy(out, s.history)
	return out
}
