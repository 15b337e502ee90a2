package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lantern-lab/lantern/internal/config"
	"github.com/lantern-lab/lantern/internal/core/counterbalance"
	"github.com/lantern-lab/lantern/internal/core/nback"
	"github.com/lantern-lab/lantern/internal/ports/primary"
	"github.com/lantern-lab/lantern/internal/ports/secondary"
)

// DateLayout formats the session date written to every record.
const DateLayout = "Mon Jan 2 15:04:05 2006"

// SessionState is the per-session state passed explicitly to each task.
type SessionState struct {
	ID          string
	Participant string
	AgeGroup    string
	Age         int
	Date        string
	Condition   counterbalance.Condition

	// Pools holds the scored orderings per difficulty (index 0 is 1-back),
	// already reversed when the condition asks for it.
	Pools           [nback.MaxDepth][][]int
	BlocksCompleted int
}

// NewSessionState resolves the counterbalancing condition for req, applying
// any overrides from cfg.
func NewSessionState(cfg *config.Config, req primary.SessionRequest, now time.Time) (*SessionState, error) {
	if req.Participant == "" {
		return nil, fmt.Errorf("%w: participant ID is required", ErrConfiguration)
	}

	cond, err := counterbalance.FromParticipant(req.Participant)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if cfg.BlocksReversed != nil {
		cond.BlocksReversed = *cfg.BlocksReversed
	}
	if cfg.PrimeListName != "" {
		cond.PrimeListName = cfg.PrimeListName
	}

	return &SessionState{
		ID:          uuid.NewString(),
		Participant: req.Participant,
		AgeGroup:    req.AgeGroup,
		Age:         req.Age,
		Date:        now.Format(DateLayout),
		Condition:   cond,
	}, nil
}

// Meta returns the session metadata copied into every persisted record.
func (s *SessionState) Meta(nBackTask bool) secondary.SessionMeta {
	return secondary.SessionMeta{
		SessionID:      s.ID,
		Participant:    s.Participant,
		AgeGroup:       s.AgeGroup,
		Age:            s.Age,
		Date:           s.Date,
		BlocksReversed: s.Condition.BlocksReversed,
		PrimeListName:  s.Condition.PrimeListName,
		NBackTask:      nBackTask,
	}
}
