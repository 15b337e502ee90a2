package sink

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/lantern-lab/lantern/internal/ports/secondary"
)

// SQLiteSink implements secondary.RecordSink and secondary.SessionRepository
// with SQLite. Appended rows are held until Flush, which inserts them and
// the session row in one transaction.
type SQLiteSink struct {
	db *sql.DB

	mu      sync.Mutex
	pending map[string][]secondary.Record
}

// NewSQLiteSink creates a sink over an open database with the lantern schema.
func NewSQLiteSink(db *sql.DB) *SQLiteSink {
	return &SQLiteSink{db: db, pending: make(map[string][]secondary.Record)}
}

// Append queues rec until the next Flush of its section.
func (s *SQLiteSink) Append(ctx context.Context, rec secondary.Record) error {
	if !knownSections[rec.Section()] {
		return fmt.Errorf("unknown section %q", rec.Section())
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[rec.Section()] = append(s.pending[rec.Section()], rec)
	return nil
}

// Flush inserts the rows queued for section.
func (s *SQLiteSink) Flush(ctx context.Context, section string) error {
	if !knownSections[section] {
		return fmt.Errorf("unknown section %q", section)
	}

	s.mu.Lock()
	rows := s.pending[section]
	s.mu.Unlock()
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sessions := make(map[string]bool)
	for _, r := range rows {
		meta := r.Meta()
		if !sessions[meta.SessionID] {
			if err := insertSession(ctx, tx, meta); err != nil {
				return err
			}
			sessions[meta.SessionID] = true
		}

		switch rec := r.(type) {
		case *secondary.NBackRecord:
			err = insertTrial(ctx, tx, rec)
		case *secondary.PrimeRecord:
			err = insertPrimeResponse(ctx, tx, rec)
		default:
			err = fmt.Errorf("unsupported record type %T", r)
		}
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s rows: %w", section, err)
	}

	s.mu.Lock()
	s.pending[section] = s.pending[section][len(rows):]
	s.mu.Unlock()
	return nil
}

// Close releases the sink. The database is owned by the caller.
func (s *SQLiteSink) Close() error {
	return nil
}

func insertSession(ctx context.Context, tx *sql.Tx, m secondary.SessionMeta) error {
	var ageGroup sql.NullString
	if m.AgeGroup != "" {
		ageGroup = sql.NullString{String: m.AgeGroup, Valid: true}
	}
	_, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions (id, participant, age_group, age, date, blocks_reversed, prime_list_name, n_back_task) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.SessionID,
		m.Participant,
		ageGroup,
		m.Age,
		m.Date,
		boolToInt(m.BlocksReversed),
		m.PrimeListName,
		boolToInt(m.NBackTask),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func insertTrial(ctx context.Context, tx *sql.Tx, r *secondary.NBackRecord) error {
	var nBackImage sql.NullInt64
	if r.HasNBackImage {
		nBackImage = sql.NullInt64{Int64: int64(r.NBackImageID), Valid: true}
	}
	var lureKind sql.NullString
	if r.LureKind != "" {
		lureKind = sql.NullString{String: r.LureKind, Valid: true}
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO trials (session_id, prime_name, n_back, order_set, position, image_id, n_back_image_id, lure, lure_kind, expected_response, user_response, reaction_time, correct) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID,
		r.PrimeName,
		r.NBack,
		r.OrderSet,
		r.Position,
		r.ImageID,
		nBackImage,
		boolToInt(r.Lure),
		lureKind,
		boolToInt(r.ExpectedResponse),
		boolToInt(r.UserResponse),
		reactionTime(r.ReactionTime, r.TimedOut),
		boolToInt(r.Correct),
	)
	if err != nil {
		return fmt.Errorf("failed to create trial: %w", err)
	}
	return nil
}

func insertPrimeResponse(ctx context.Context, tx *sql.Tx, r *secondary.PrimeRecord) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO prime_responses (session_id, image_name, position, level, answer, reaction_time) VALUES (?, ?, ?, ?, ?, ?)`,
		r.SessionID,
		r.ImageName,
		r.Position,
		r.Level,
		r.Answer,
		reactionTime(r.ReactionTime, r.TimedOut),
	)
	if err != nil {
		return fmt.Errorf("failed to create prime response: %w", err)
	}
	return nil
}

// List retrieves sessions matching the given filters, most recent first.
func (s *SQLiteSink) List(ctx context.Context, filters secondary.SessionFilters) ([]*secondary.SessionRecord, error) {
	query := `SELECT s.id, s.participant, s.age_group, s.date, s.blocks_reversed, s.prime_list_name,
		(SELECT COUNT(*) FROM trials t WHERE t.session_id = s.id),
		(SELECT COUNT(*) FROM prime_responses p WHERE p.session_id = s.id),
		s.created_at
		FROM sessions s WHERE 1=1`
	args := []any{}

	if filters.Participant != "" {
		query += " AND s.participant = ?"
		args = append(args, filters.Participant)
	}

	query += " ORDER BY s.created_at DESC, s.rowid DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*secondary.SessionRecord
	for rows.Next() {
		var (
			ageGroup  sql.NullString
			reversed  int
			createdAt time.Time
		)
		r := &secondary.SessionRecord{}
		if err := rows.Scan(&r.ID, &r.Participant, &ageGroup, &r.Date, &reversed, &r.PrimeListName,
			&r.TrialCount, &r.PrimeCount, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		r.AgeGroup = ageGroup.String
		r.BlocksReversed = reversed == 1
		r.CreatedAt = createdAt.Format(time.RFC3339)
		sessions = append(sessions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// reactionTime is NULL for a timed-out response.
func reactionTime(d time.Duration, timedOut bool) sql.NullFloat64 {
	if timedOut {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: d.Seconds(), Valid: true}
}

var (
	_ secondary.RecordSink        = (*SQLiteSink)(nil)
	_ secondary.SessionRepository = (*SQLiteSink)(nil)
)
