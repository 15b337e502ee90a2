package sink

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/lantern-lab/lantern/internal/db"
	"github.com/lantern-lab/lantern/internal/ports/secondary"
)

// setupTestDB opens a database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(filepath.Join(t.TempDir(), "lantern.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
	})
	return conn
}

func testMeta(sessionID, participant string) secondary.SessionMeta {
	return secondary.SessionMeta{
		SessionID:      sessionID,
		Participant:    participant,
		AgeGroup:       "adult",
		Age:            24,
		Date:           "Tue Mar 5 14:30:00 2024",
		BlocksReversed: true,
		PrimeListName:  "A",
		NBackTask:      true,
	}
}

func nBackRecord(meta secondary.SessionMeta, orderSet, position int, timedOut bool) *secondary.NBackRecord {
	return &secondary.NBackRecord{
		SessionMeta:      meta,
		PrimeName:        "cat",
		NBack:            2,
		OrderSet:         orderSet,
		Position:         position,
		ImageID:          40 + position,
		NBackImageID:     40,
		HasNBackImage:    position > 2,
		ExpectedResponse: false,
		UserResponse:     !timedOut,
		ReactionTime:     350 * time.Millisecond,
		TimedOut:         timedOut,
		Correct:          timedOut,
	}
}

func primeRecord(meta secondary.SessionMeta, position int) *secondary.PrimeRecord {
	return &secondary.PrimeRecord{
		SessionMeta: meta,
		ImageName:   "cat",
		Position:    position,
		Level:       8,
		Answer:      "a cat",
		TimedOut:    true,
	}
}
