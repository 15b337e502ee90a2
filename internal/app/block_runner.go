package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lantern-lab/lantern/internal/core/nback"
	"github.com/lantern-lab/lantern/internal/logger"
	"github.com/lantern-lab/lantern/internal/ports/secondary"
)

// BlockTiming holds the fixed per-trial durations.
type BlockTiming struct {
	Display      time.Duration // response window with the stimulus on screen
	Interstimuli time.Duration // blank pause after each trial
}

// BlockSpec describes one block to run.
type BlockSpec struct {
	Label      string // ordering key, e.g. "2_3"
	Index      int
	Difficulty int
	Scored     bool
	Focal      []int
	Primes     []string
}

// BlockRunner runs blocks of n-back trials against a Display.
type BlockRunner struct {
	display      secondary.Display
	timing       BlockTiming
	responseKey  string
	primeLooping bool
	shuffle      Shuffler
	log          *logger.Logger
}

// NewBlockRunner creates a BlockRunner with injected dependencies.
func NewBlockRunner(display secondary.Display, timing BlockTiming, responseKey string, primeLooping bool, shuffle Shuffler, log *logger.Logger) *BlockRunner {
	return &BlockRunner{
		display:      display,
		timing:       timing,
		responseKey:  responseKey,
		primeLooping: primeLooping,
		shuffle:      shuffle,
		log:          log,
	}
}

// Run presents every position of spec in order with a fresh history.
// On abort it returns the trials completed so far together with
// secondary.ErrAborted; the result is then marked incomplete.
func (r *BlockRunner) Run(ctx context.Context, spec BlockSpec) (*nback.BlockResult, error) {
	guard := nback.CanRunBlock(nback.RunBlockContext{
		Label:        spec.Label,
		Difficulty:   spec.Difficulty,
		MaxDepth:     nback.MaxDepth,
		TrialCount:   len(spec.Focal),
		PrimeCount:   len(spec.Primes),
		PrimeLooping: r.primeLooping,
	})
	if err := guard.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	log := r.log.WithContext(ctx).With("block", spec.Label, "difficulty", spec.Difficulty, "scored", spec.Scored)
	log.Info("block started", "trials", len(spec.Focal))

	primes := NewPrimePool(spec.Primes, r.primeLooping, r.shuffle)
	history := nback.NewHistory()
	result := &nback.BlockResult{
		Difficulty: spec.Difficulty,
		BlockIndex: spec.Index,
		Scored:     spec.Scored,
	}

	for pos, focal := range spec.Focal {
		primePath, err := primes.Next()
		if err != nil {
			return nil, err
		}

		stim := nback.Stimulus{
			Position:  pos,
			FocalID:   focal,
			PrimePath: primePath,
			PrimeName: PrimeName(primePath),
		}
		if err := r.runTrial(ctx, stim, spec.Difficulty, history, result); err != nil {
			if errors.Is(err, secondary.ErrAborted) {
				log.Warn("block abandoned", "completed_trials", len(result.Trials))
				return result, err
			}
			return nil, fmt.Errorf("trial %d of block %s failed: %w", pos, spec.Label, err)
		}
	}

	result.Complete = true
	log.Info("block finished", "errors", result.ErrorTally)
	return result, nil
}

// runTrial shows one stimulus, scores the response, and records the image in history.
func (r *BlockRunner) runTrial(ctx context.Context, stim nback.Stimulus, difficulty int, history *nback.History, result *nback.BlockResult) error {
	plan := nback.PlanTrial(stim, difficulty, history)

	if err := r.display.ShowNBackStimulus(ctx, stim.FocalID, stim.PrimePath); err != nil {
		return err
	}
	key, err := r.display.WaitForKey(ctx, r.timing.Display, r.responseKey)
	if err != nil {
		return err
	}

	outcome := plan.Complete(nback.Response{Pressed: key.Pressed, ReactionTime: key.Elapsed})
	result.Add(outcome)
	history.Record(stim.FocalID)

	// The stimulus stays up for the whole window even after a response.
	if key.Pressed {
		if remaining := r.timing.Display - key.Elapsed; remaining > 0 {
			if err := r.display.Pause(ctx, remaining); err != nil {
				return err
			}
		}
	}
	return r.display.Blank(ctx, r.timing.Interstimuli)
}
