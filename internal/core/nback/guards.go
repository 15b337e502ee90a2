package nback

import "fmt"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// RunBlockContext provides context for block start guards.
type RunBlockContext struct {
	Label        string // e.g. "2_3" or "1_practice"
	Difficulty   int
	MaxDepth     int
	TrialCount   int
	PrimeCount   int
	PrimeLooping bool
}

// CanRunBlock evaluates whether a block can start.
// Rules:
// - Difficulty must be within [1, MaxDepth]
// - The ordering must contain at least one trial
// - The prime pool must not be empty
// - Without looping, the prime pool must cover every trial
func CanRunBlock(ctx RunBlockContext) GuardResult {
	if ctx.Difficulty < MinDifficulty || ctx.Difficulty > ctx.MaxDepth {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("block %s: difficulty %d outside [1, %d]", ctx.Label, ctx.Difficulty, ctx.MaxDepth),
		}
	}

	if ctx.TrialCount == 0 {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("block %s: ordering has no trials", ctx.Label),
		}
	}

	if ctx.PrimeCount == 0 {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("block %s: prime pool is empty", ctx.Label),
		}
	}

	if !ctx.PrimeLooping && ctx.PrimeCount < ctx.TrialCount {
		return GuardResult{
			Allowed: false,
			Reason: fmt.Sprintf("block %s: prime pool has %d images for %d trials and looping is disabled",
				ctx.Label, ctx.PrimeCount, ctx.TrialCount),
		}
	}

	return GuardResult{Allowed: true}
}
