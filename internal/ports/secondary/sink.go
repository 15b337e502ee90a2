package secondary

import "context"

// RecordSink defines the secondary port for persisting collected rows.
// The application does not know about file paths or formats.
type RecordSink interface {
	// Append queues rec. Records failing Validate are rejected with ErrInvalidRecord.
	Append(ctx context.Context, rec Record) error

	// Flush writes every record appended so far for section.
	Flush(ctx context.Context, section string) error

	// Close releases the sink.
	Close() error
}

// SessionRepository defines the secondary port for querying stored sessions.
type SessionRepository interface {
	// List returns stored sessions, most recent first.
	List(ctx context.Context, filters SessionFilters) ([]*SessionRecord, error)
}

// SessionRecord represents a session as stored in persistence.
type SessionRecord struct {
	ID             string
	Participant    string
	AgeGroup       string
	Date           string
	BlocksReversed bool
	PrimeListName  string
	TrialCount     int
	PrimeCount     int
	CreatedAt      string
}

// SessionFilters contains filter options for querying sessions.
type SessionFilters struct {
	Participant string
	Limit       int
}
