package app

import (
	"context"
	"fmt"

	"github.com/lantern-lab/lantern/internal/ports/primary"
	"github.com/lantern-lab/lantern/internal/ports/secondary"
)

// SessionHistoryServiceImpl implements the SessionHistoryService interface.
type SessionHistoryServiceImpl struct {
	sessionRepo secondary.SessionRepository
}

// NewSessionHistoryService creates a new SessionHistoryService with injected dependencies.
func NewSessionHistoryService(sessionRepo secondary.SessionRepository) *SessionHistoryServiceImpl {
	return &SessionHistoryServiceImpl{
		sessionRepo: sessionRepo,
	}
}

// ListSessions retrieves sessions matching the given filters.
func (s *SessionHistoryServiceImpl) ListSessions(ctx context.Context, filters primary.SessionFilters) ([]*primary.SessionEntry, error) {
	records, err := s.sessionRepo.List(ctx, secondary.SessionFilters{
		Participant: filters.Participant,
		Limit:       filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	entries := make([]*primary.SessionEntry, len(records))
	for i, r := range records {
		entries[i] = s.recordToEntry(r)
	}
	return entries, nil
}

// Helper methods

func (s *SessionHistoryServiceImpl) recordToEntry(r *secondary.SessionRecord) *primary.SessionEntry {
	return &primary.SessionEntry{
		ID:             r.ID,
		Participant:    r.Participant,
		AgeGroup:       r.AgeGroup,
		Date:           r.Date,
		BlocksReversed: r.BlocksReversed,
		PrimeListName:  r.PrimeListName,
		Trials:         r.TrialCount,
		PrimeAnswers:   r.PrimeCount,
		CreatedAt:      r.CreatedAt,
	}
}

// Ensure SessionHistoryServiceImpl implements the interface
var _ primary.SessionHistoryService = (*SessionHistoryServiceImpl)(nil)
