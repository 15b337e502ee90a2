package nback

import "testing"

func TestCanRunBlock(t *testing.T) {
	tests := []struct {
		name        string
		ctx         RunBlockContext
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "can run block with enough primes",
			ctx:         RunBlockContext{Label: "1_1", Difficulty: 1, MaxDepth: 3, TrialCount: 20, PrimeCount: 40},
			wantAllowed: true,
		},
		{
			name:        "can run block with short prime pool when looping",
			ctx:         RunBlockContext{Label: "2_1", Difficulty: 2, MaxDepth: 3, TrialCount: 20, PrimeCount: 5, PrimeLooping: true},
			wantAllowed: true,
		},
		{
			name:        "cannot run block with short prime pool without looping",
			ctx:         RunBlockContext{Label: "2_1", Difficulty: 2, MaxDepth: 3, TrialCount: 20, PrimeCount: 5},
			wantAllowed: false,
			wantReason:  "block 2_1: prime pool has 5 images for 20 trials and looping is disabled",
		},
		{
			name:        "cannot run empty ordering",
			ctx:         RunBlockContext{Label: "1_practice", Difficulty: 1, MaxDepth: 3, TrialCount: 0, PrimeCount: 5},
			wantAllowed: false,
			wantReason:  "block 1_practice: ordering has no trials",
		},
		{
			name:        "cannot run with empty prime pool",
			ctx:         RunBlockContext{Label: "3_2", Difficulty: 3, MaxDepth: 3, TrialCount: 4, PrimeCount: 0, PrimeLooping: true},
			wantAllowed: false,
			wantReason:  "block 3_2: prime pool is empty",
		},
		{
			name:        "cannot run beyond history depth",
			ctx:         RunBlockContext{Label: "4_1", Difficulty: 4, MaxDepth: 3, TrialCount: 4, PrimeCount: 4},
			wantAllowed: false,
			wantReason:  "block 4_1: difficulty 4 outside [1, 3]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanRunBlock(tt.ctx)

			if result.Allowed != tt.wantAllowed {
				t.Errorf("CanRunBlock() Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}

			if result.Reason != tt.wantReason {
				t.Errorf("CanRunBlock() Reason = %q, want %q", result.Reason, tt.wantReason)
			}

			err := result.Error()
			if tt.wantAllowed && err != nil {
				t.Errorf("CanRunBlock().Error() = %v, want nil", err)
			}
			if !tt.wantAllowed && err == nil {
				t.Error("CanRunBlock().Error() = nil, want error")
			}
		})
	}
}
