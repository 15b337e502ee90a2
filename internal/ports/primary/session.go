package primary

import "context"

// ExperimentService defines the primary port for running a participant session.
type ExperimentService interface {
	// Run executes the configured tasks (n-back, then prime recognition) for one participant.
	Run(ctx context.Context, req SessionRequest) (*SessionSummary, error)

	// RunNBack executes only the adaptive n-back task.
	RunNBack(ctx context.Context, req SessionRequest) (*NBackSummary, error)

	// RunPrimeTask executes only the prime recognition task.
	RunPrimeTask(ctx context.Context, req SessionRequest) (*PrimeSummary, error)
}

// SessionRequest contains the participant intake data.
type SessionRequest struct {
	Participant string
	AgeGroup    string
	Age         int // 0 when unknown
}

// SessionSummary describes a finished (or aborted) session.
type SessionSummary struct {
	SessionID      string
	Participant    string
	BlocksReversed bool
	PrimeListName  string
	NBack          *NBackSummary
	Prime          *PrimeSummary
	Aborted        bool
}

// NBackSummary describes the n-back task of a session.
type NBackSummary struct {
	SessionID       string
	StartDifficulty int
	MaxDifficulty   int
	FinalDifficulty int
	Blocks          []BlockSummary
	// BlocksCompleted counts scored blocks that ran to the end.
	BlocksCompleted int
	RecordsSaved    int
	Aborted         bool
}

// BlockSummary describes one scored block.
type BlockSummary struct {
	Index          int
	OrderSet       int
	Difficulty     int
	Trials         int
	Errors         int
	Lures          int
	NextDifficulty int
	Complete       bool
}

// PrimeSummary describes the prime recognition task of a session.
type PrimeSummary struct {
	SessionID    string
	Images       int
	Answered     int // answered before the last clarity level timed out
	RecordsSaved int
	Aborted      bool
}
