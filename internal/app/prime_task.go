package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/lantern-lab/lantern/internal/ports/primary"
	"github.com/lantern-lab/lantern/internal/ports/secondary"
)

const taskPrime = "prime"

// primeAnswer is what the participant gave for one image.
type primeAnswer struct {
	Level        int
	Answer       string
	ReactionTime time.Duration
	TimedOut     bool
}

// runPrimeTask shows each prime image at increasing clarity until the
// participant signals recognition, then collects their typed identification.
func (s *ExperimentServiceImpl) runPrimeTask(ctx context.Context, state *SessionState) (*primary.PrimeSummary, error) {
	log := s.log.WithContext(ctx).With("task", taskPrime)
	summary := &primary.PrimeSummary{SessionID: state.ID}

	aborted := func() (*primary.PrimeSummary, error) {
		summary.Aborted = true
		if err := s.flushOnAbort(ctx, secondary.SectionPrime, summary.RecordsSaved); err != nil {
			return summary, fmt.Errorf("failed to save prime data: %w", err)
		}
		return summary, nil
	}
	check := func(err error) (*primary.PrimeSummary, error) {
		if isAbort(err) {
			return aborted()
		}
		return nil, err
	}

	folders, err := s.primes.RecognitionFolders(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list prime folders: %w", ErrConfiguration, err)
	}
	if len(folders) == 0 {
		return nil, fmt.Errorf("%w: no prime folders found", ErrConfiguration)
	}
	folders = append([]string(nil), folders...)
	if s.shuffle != nil {
		s.shuffle.Shuffle(len(folders), func(i, j int) { folders[i], folders[j] = folders[j], folders[i] })
	}
	summary.Images = len(folders)

	if err := s.display.ShowInstructions(ctx, taskPrime, "instructions", "start"); err != nil {
		return check(err)
	}

	if s.cfg.PracticeRun {
		if err := s.display.ShowInstructions(ctx, taskPrime, "instructions", "practice"); err != nil {
			return check(err)
		}
		practice, err := s.primes.RecognitionFolders(ctx, true)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to list practice prime folders: %w", ErrConfiguration, err)
		}
		for _, folder := range practice {
			if _, err := s.identifyPrime(ctx, folder); err != nil {
				return check(err)
			}
		}
	}

	if err := s.display.ShowInstructions(ctx, taskPrime, "instructions", "test"); err != nil {
		return check(err)
	}

	meta := state.Meta(s.cfg.NBackTask)
	// The break comes after the first half, so a single image follows it.
	half := len(folders) / 2
	for pos, folder := range folders {
		if pos == half {
			if err := s.display.ShowInstructions(ctx, taskPrime, "instructions", "halfway"); err != nil {
				return check(err)
			}
		}

		answer, err := s.identifyPrime(ctx, folder)
		if err != nil {
			return check(err)
		}
		if !answer.TimedOut {
			summary.Answered++
		}

		rec := &secondary.PrimeRecord{
			SessionMeta:  meta,
			ImageName:    filepath.Base(folder),
			Position:     pos + 1,
			Level:        answer.Level,
			Answer:       answer.Answer,
			ReactionTime: answer.ReactionTime,
			TimedOut:     answer.TimedOut,
		}
		if err := s.sink.Append(ctx, rec); err != nil {
			return nil, fmt.Errorf("failed to record prime answer %d: %w", pos+1, err)
		}
		summary.RecordsSaved++
	}

	if err := s.sink.Flush(ctx, secondary.SectionPrime); err != nil {
		return nil, fmt.Errorf("failed to save prime data: %w", err)
	}
	log.Info("prime task finished", "images", summary.Images, "answered", summary.Answered)

	if err := s.display.ShowInstructions(ctx, taskPrime, "instructions", "end"); err != nil {
		if isAbort(err) {
			summary.Aborted = true
			return summary, nil
		}
		return nil, err
	}
	return summary, nil
}

// identifyPrime steps through the clarity levels of folder. Without a key
// press the last level is recorded as timed out; an identification is
// requested either way.
func (s *ExperimentServiceImpl) identifyPrime(ctx context.Context, folder string) (primeAnswer, error) {
	levels := s.cfg.PrimeClarityLevels
	for level := 1; level <= levels; level++ {
		if err := s.display.ShowPrimeStimulus(ctx, s.primes.LevelImage(folder, level)); err != nil {
			return primeAnswer{}, err
		}
		key, err := s.display.WaitForKey(ctx, s.cfg.PrimeImageDisplayTime.Duration, s.cfg.PrimeAnswerKey)
		if err != nil {
			return primeAnswer{}, err
		}
		if key.Pressed {
			text, err := s.display.ReadText(ctx, "")
			if err != nil {
				return primeAnswer{}, err
			}
			return primeAnswer{Level: level, Answer: text, ReactionTime: key.Elapsed}, nil
		}
	}

	text, err := s.display.ReadText(ctx, "")
	if err != nil {
		return primeAnswer{}, err
	}
	return primeAnswer{Level: levels, Answer: text, TimedOut: true}, nil
}
