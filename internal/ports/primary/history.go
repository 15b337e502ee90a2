package primary

import "context"

// SessionHistoryService defines the primary port for browsing recorded sessions.
type SessionHistoryService interface {
	// ListSessions retrieves sessions matching the given filters.
	ListSessions(ctx context.Context, filters SessionFilters) ([]*SessionEntry, error)
}

// SessionEntry represents a stored session at the port boundary.
type SessionEntry struct {
	ID             string
	Participant    string
	AgeGroup       string
	Date           string
	BlocksReversed bool
	PrimeListName  string
	Trials         int
	PrimeAnswers   int
	CreatedAt      string
}

// SessionFilters contains filter options for listing sessions.
type SessionFilters struct {
	Participant string
	Limit       int
}
