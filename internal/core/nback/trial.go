package nback

import "time"

// Stimulus is what is shown at one position of a block.
type Stimulus struct {
	Position  int // 0-based position in the block
	FocalID   int
	PrimePath string
	PrimeName string
}

// TrialPlan holds everything about a trial that is known before the
// participant responds. It is computed from the pre-trial history.
type TrialPlan struct {
	Stimulus
	Difficulty     int
	NBackImageID   int
	HasNBackImage  bool
	Lure           Lure
	ExpectedAnswer bool
}

// PlanTrial computes the n-back target, lure classification and expected
// response for stim at the given difficulty. h must not yet contain stim.
func PlanTrial(stim Stimulus, difficulty int, h *History) TrialPlan {
	nBackID, ok := h.Lookback(difficulty)
	return TrialPlan{
		Stimulus:       stim,
		Difficulty:     difficulty,
		NBackImageID:   nBackID,
		HasNBackImage:  ok,
		Lure:           ClassifyLure(stim.FocalID, difficulty, h),
		ExpectedAnswer: ok && nBackID == stim.FocalID,
	}
}

// Response is what the participant did during the display window.
type Response struct {
	Pressed      bool
	ReactionTime time.Duration // meaningful only when Pressed
}

// TimedOut is the response recorded when the window elapses without a key press.
var TimedOut = Response{}

// TrialOutcome is the immutable record of one completed trial.
type TrialOutcome struct {
	TrialPlan
	UserResponse bool
	ReactionTime time.Duration
	TimedOut     bool
	Correct      bool
}

// Complete combines the plan with the observed response.
func (p TrialPlan) Complete(r Response) TrialOutcome {
	out := TrialOutcome{
		TrialPlan:    p,
		UserResponse: r.Pressed,
		TimedOut:     !r.Pressed,
		Correct:      r.Pressed == p.ExpectedAnswer,
	}
	if r.Pressed {
		out.ReactionTime = r.ReactionTime
	}
	return out
}

// BlockResult collects the outcomes of one block at a fixed difficulty.
type BlockResult struct {
	Difficulty int
	BlockIndex int
	Scored     bool
	Trials     []TrialOutcome
	ErrorTally int
	Complete   bool
}

// Add appends an outcome and updates the error tally.
func (b *BlockResult) Add(o TrialOutcome) {
	b.Trials = append(b.Trials, o)
	if !o.Correct {
		b.ErrorTally++
	}
}
