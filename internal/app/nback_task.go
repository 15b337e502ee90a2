package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/lantern-lab/lantern/internal/core/counterbalance"
	"github.com/lantern-lab/lantern/internal/core/nback"
	"github.com/lantern-lab/lantern/internal/ports/primary"
	"github.com/lantern-lab/lantern/internal/ports/secondary"
)

const taskNBack = "n-back"

// practiceDifficulties are run in order before the scored blocks.
var practiceDifficulties = []int{1, 2}

// runNBack runs the practice blocks, then the scored blocks with adaptive
// difficulty, forwarding every scored trial to the sink.
func (s *ExperimentServiceImpl) runNBack(ctx context.Context, state *SessionState) (*primary.NBackSummary, error) {
	log := s.log.WithContext(ctx).With("task", taskNBack)
	ceiling := nback.Ceiling(state.Age, s.cfg.NBackCriticalAge, s.cfg.NBackMaxDifficulty, s.cfg.NBackYoungMaxDifficulty)
	scheduler := nback.NewScheduler(s.cfg.NBackStartDifficulty, ceiling, nback.Thresholds{
		Lower: s.cfg.NBackMinErrorsToLower,
		Raise: s.cfg.NBackMaxErrorsToRaise,
	})
	summary := &primary.NBackSummary{
		SessionID:       state.ID,
		StartDifficulty: scheduler.Current(),
		MaxDifficulty:   ceiling,
	}
	runner := NewBlockRunner(s.display, BlockTiming{
		Display:      s.cfg.NBackDisplayTime.Duration,
		Interstimuli: s.cfg.NBackInterstimulus.Duration,
	}, s.cfg.NBackResponseKey, s.cfg.NBackPrimeLooping, s.shuffle, s.log)

	aborted := func() (*primary.NBackSummary, error) {
		summary.Aborted = true
		summary.FinalDifficulty = scheduler.Current()
		summary.BlocksCompleted = state.BlocksCompleted
		if err := s.flushOnAbort(ctx, secondary.SectionNBack, summary.RecordsSaved); err != nil {
			return summary, fmt.Errorf("failed to save n-back data: %w", err)
		}
		return summary, nil
	}

	if err := s.display.ShowInstructions(ctx, taskNBack, "instructions", "start"); err != nil {
		if isAbort(err) {
			return aborted()
		}
		return nil, err
	}

	if s.cfg.PracticeRun {
		if err := s.runPractice(ctx, runner); err != nil {
			if isAbort(err) {
				return aborted()
			}
			return nil, err
		}
	}

	if err := s.display.ShowInstructions(ctx, taskNBack, "instructions", "test"); err != nil {
		if isAbort(err) {
			return aborted()
		}
		return nil, err
	}

	if err := s.loadPools(ctx, state); err != nil {
		return nil, err
	}

	primes, err := s.primes.NBackPrimes(ctx, false, state.Condition.PrimeListName)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list prime images: %w", ErrConfiguration, err)
	}

	total := s.cfg.NBackBlockTotal
	for i := 0; i < total; i++ {
		difficulty := scheduler.Current()
		spec := BlockSpec{
			Label:      secondary.BlockKey(difficulty, i),
			Index:      i,
			Difficulty: difficulty,
			Scored:     true,
			Focal:      state.Pools[difficulty-1][i],
			Primes:     primes,
		}
		orderSet := counterbalance.OrderSet(i, total, state.Condition.BlocksReversed)

		if err := s.display.ShowInstructions(ctx, taskNBack, "prompts", fmt.Sprintf("%d-back", difficulty)); err != nil {
			if isAbort(err) {
				return aborted()
			}
			return nil, err
		}

		result, runErr := runner.Run(ctx, spec)
		if runErr != nil && !isAbort(runErr) {
			return nil, runErr
		}

		// Trials completed before an abort are still persisted.
		if err := s.forwardTrials(ctx, state, result, orderSet); err != nil {
			return nil, err
		}
		summary.RecordsSaved += len(result.Trials)

		if isAbort(runErr) {
			summary.Blocks = append(summary.Blocks, blockSummary(result, orderSet, difficulty))
			return aborted()
		}

		if err := s.sink.Flush(ctx, secondary.SectionNBack); err != nil {
			return nil, fmt.Errorf("failed to save n-back data: %w", err)
		}

		transition := scheduler.Observe(result.ErrorTally)
		state.BlocksCompleted++
		summary.Blocks = append(summary.Blocks, blockSummary(result, orderSet, transition.To))
		log.Info("difficulty decision",
			"block", i,
			"from", transition.From,
			"to", transition.To,
			"reason", transition.Reason)
	}

	summary.FinalDifficulty = scheduler.Current()
	summary.BlocksCompleted = state.BlocksCompleted

	if err := s.display.ShowInstructions(ctx, taskNBack, "instructions", "end"); err != nil {
		if isAbort(err) {
			summary.Aborted = true
			return summary, nil
		}
		return nil, err
	}
	return summary, nil
}

// runPractice runs the unscored practice blocks at fixed difficulties.
func (s *ExperimentServiceImpl) runPractice(ctx context.Context, runner *BlockRunner) error {
	if err := s.display.ShowInstructions(ctx, taskNBack, "instructions", "practice"); err != nil {
		return err
	}

	primes, err := s.primes.NBackPrimes(ctx, true, "")
	if err != nil {
		return fmt.Errorf("%w: failed to list practice prime images: %w", ErrConfiguration, err)
	}

	for _, difficulty := range practiceDifficulties {
		focal, err := s.ordering.Practice(ctx, difficulty)
		if err != nil {
			return fmt.Errorf("%w: ordering %s: %w", ErrConfiguration, secondary.PracticeKey(difficulty), err)
		}

		if err := s.display.ShowInstructions(ctx, taskNBack, "prompts", fmt.Sprintf("%d-back", difficulty)); err != nil {
			return err
		}

		if _, err := runner.Run(ctx, BlockSpec{
			Label:      secondary.PracticeKey(difficulty),
			Difficulty: difficulty,
			Scored:     false,
			Focal:      focal,
			Primes:     primes,
		}); err != nil {
			return err
		}
	}
	return nil
}

// loadPools reads every scored ordering for every difficulty and applies
// the block-order reversal to all pools before any block runs.
func (s *ExperimentServiceImpl) loadPools(ctx context.Context, state *SessionState) error {
	for d := 1; d <= nback.MaxDepth; d++ {
		pool := make([][]int, 0, s.cfg.NBackBlockTotal)
		for j := 0; j < s.cfg.NBackBlockTotal; j++ {
			focal, err := s.ordering.Block(ctx, d, j)
			if err != nil {
				return fmt.Errorf("%w: ordering %s: %w", ErrConfiguration, secondary.BlockKey(d, j), err)
			}
			pool = append(pool, focal)
		}
		if state.Condition.BlocksReversed {
			slices.Reverse(pool)
		}
		state.Pools[d-1] = pool
	}
	return nil
}

// forwardTrials appends the outcomes of a scored block to the sink, tagged with session metadata.
func (s *ExperimentServiceImpl) forwardTrials(ctx context.Context, state *SessionState, result *nback.BlockResult, orderSet int) error {
	if result == nil || !result.Scored {
		return nil
	}
	meta := state.Meta(s.cfg.NBackTask)
	for _, t := range result.Trials {
		rec := &secondary.NBackRecord{
			SessionMeta:      meta,
			PrimeName:        t.PrimeName,
			NBack:            t.Difficulty,
			OrderSet:         orderSet,
			Position:         t.Position + 1,
			ImageID:          t.FocalID,
			NBackImageID:     t.NBackImageID,
			HasNBackImage:    t.HasNBackImage,
			Lure:             t.Lure.IsLure(),
			LureKind:         t.Lure.Kind(),
			ExpectedResponse: t.ExpectedAnswer,
			UserResponse:     t.UserResponse,
			ReactionTime:     t.ReactionTime,
			TimedOut:         t.TimedOut,
			Correct:          t.Correct,
		}
		if err := s.sink.Append(ctx, rec); err != nil {
			return fmt.Errorf("failed to record trial %d: %w", t.Position, err)
		}
	}
	return nil
}

func blockSummary(result *nback.BlockResult, orderSet, next int) primary.BlockSummary {
	lures := 0
	for _, t := range result.Trials {
		if t.Lure.IsLure() {
			lures++
		}
	}
	return primary.BlockSummary{
		Index:          result.BlockIndex,
		OrderSet:       orderSet,
		Difficulty:     result.Difficulty,
		Trials:         len(result.Trials),
		Errors:         result.ErrorTally,
		Lures:          lures,
		NextDifficulty: next,
		Complete:       result.Complete,
	}
}
