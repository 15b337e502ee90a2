package app

import (
	"context"
	"errors"
	"time"

	"github.com/lantern-lab/lantern/internal/config"
	"github.com/lantern-lab/lantern/internal/ctxutil"
	"github.com/lantern-lab/lantern/internal/logger"
	"github.com/lantern-lab/lantern/internal/ports/primary"
	"github.com/lantern-lab/lantern/internal/ports/secondary"
)

// ExperimentServiceImpl implements the ExperimentService interface.
type ExperimentServiceImpl struct {
	cfg      *config.Config
	display  secondary.Display
	ordering secondary.OrderingSource
	primes   secondary.PrimeSource
	sink     secondary.RecordSink
	shuffle  Shuffler
	now      func() time.Time
	log      *logger.Logger
}

// NewExperimentService creates a new ExperimentService with injected dependencies.
func NewExperimentService(
	cfg *config.Config,
	display secondary.Display,
	ordering secondary.OrderingSource,
	primes secondary.PrimeSource,
	sink secondary.RecordSink,
	shuffle Shuffler,
	log *logger.Logger,
) *ExperimentServiceImpl {
	return &ExperimentServiceImpl{
		cfg:      cfg,
		display:  display,
		ordering: ordering,
		primes:   primes,
		sink:     sink,
		shuffle:  shuffle,
		now:      time.Now,
		log:      log,
	}
}

// Run executes the n-back task and then the prime recognition task, as configured.
// An abort during the n-back task skips the prime task.
func (s *ExperimentServiceImpl) Run(ctx context.Context, req primary.SessionRequest) (*primary.SessionSummary, error) {
	state, ctx, err := s.newSession(ctx, req)
	if err != nil {
		return nil, err
	}

	summary := &primary.SessionSummary{
		SessionID:      state.ID,
		Participant:    state.Participant,
		BlocksReversed: state.Condition.BlocksReversed,
		PrimeListName:  state.Condition.PrimeListName,
	}

	if s.cfg.NBackTask {
		nb, err := s.runNBack(ctx, state)
		summary.NBack = nb
		if err != nil {
			return summary, err
		}
		if nb.Aborted {
			summary.Aborted = true
			return summary, nil
		}
	}

	if s.cfg.PrimeTask {
		pt, err := s.runPrimeTask(ctx, state)
		summary.Prime = pt
		if err != nil {
			return summary, err
		}
		summary.Aborted = pt.Aborted
	}

	s.log.WithContext(ctx).Info("session finished", "aborted", summary.Aborted)
	return summary, nil
}

// RunNBack executes only the adaptive n-back task.
func (s *ExperimentServiceImpl) RunNBack(ctx context.Context, req primary.SessionRequest) (*primary.NBackSummary, error) {
	state, ctx, err := s.newSession(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.runNBack(ctx, state)
}

// RunPrimeTask executes only the prime recognition task.
func (s *ExperimentServiceImpl) RunPrimeTask(ctx context.Context, req primary.SessionRequest) (*primary.PrimeSummary, error) {
	state, ctx, err := s.newSession(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.runPrimeTask(ctx, state)
}

func (s *ExperimentServiceImpl) newSession(ctx context.Context, req primary.SessionRequest) (*SessionState, context.Context, error) {
	state, err := NewSessionState(s.cfg, req, s.now())
	if err != nil {
		return nil, ctx, err
	}
	ctx = ctxutil.WithParticipantID(ctx, state.Participant)
	ctx = ctxutil.WithSessionID(ctx, state.ID)
	s.log.WithContext(ctx).Info("session started",
		"age_group", state.AgeGroup,
		"blocks_reversed", state.Condition.BlocksReversed,
		"prime_list", state.Condition.PrimeListName)
	return state, ctx, nil
}

// flushOnAbort writes whatever section has collected before the session stops.
func (s *ExperimentServiceImpl) flushOnAbort(ctx context.Context, section string, appended int) error {
	s.log.WithContext(ctx).Warn("session aborted, flushing collected data", "section", section, "records", appended)
	if appended == 0 {
		return nil
	}
	return s.sink.Flush(ctx, section)
}

func isAbort(err error) bool {
	return errors.Is(err, secondary.ErrAborted)
}

// Ensure ExperimentServiceImpl implements the interface
var _ primary.ExperimentService = (*ExperimentServiceImpl)(nil)
