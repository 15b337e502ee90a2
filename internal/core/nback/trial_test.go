package nback

import (
	"testing"
	"time"
)

// planSequence plans every position of ids at difficulty, recording each
// image after planning the way a block does.
func planSequence(ids []int, difficulty int) []TrialPlan {
	h := NewHistory()
	plans := make([]TrialPlan, len(ids))
	for i, id := range ids {
		plans[i] = PlanTrial(Stimulus{Position: i, FocalID: id}, difficulty, h)
		h.Record(id)
	}
	return plans
}

func TestPlanTrial_ScenarioTargets(t *testing.T) {
	plans := planSequence([]int{7, 3, 7, 2}, 2)

	want := []struct {
		expected bool
		lure     bool
		hasNBack bool
		nBackID  int
	}{
		{expected: false, lure: false, hasNBack: false},
		{expected: false, lure: false, hasNBack: false},
		{expected: true, lure: false, hasNBack: true, nBackID: 7},
		{expected: false, lure: false, hasNBack: true, nBackID: 3},
	}

	for i, w := range want {
		p := plans[i]
		if p.ExpectedAnswer != w.expected {
			t.Errorf("trial %d: ExpectedAnswer = %v, want %v", i, p.ExpectedAnswer, w.expected)
		}
		if p.Lure.IsLure() != w.lure {
			t.Errorf("trial %d: lure = %v, want %v", i, p.Lure.IsLure(), w.lure)
		}
		if p.HasNBackImage != w.hasNBack {
			t.Errorf("trial %d: HasNBackImage = %v, want %v", i, p.HasNBackImage, w.hasNBack)
		}
		if w.hasNBack && p.NBackImageID != w.nBackID {
			t.Errorf("trial %d: NBackImageID = %d, want %d", i, p.NBackImageID, w.nBackID)
		}
	}
}

func TestPlanTrial_ScenarioLure(t *testing.T) {
	plans := planSequence([]int{7, 3, 3, 2}, 2)

	p := plans[2]
	if p.ExpectedAnswer {
		t.Error("trial 2: ExpectedAnswer = true, want false")
	}
	if !p.Lure.IsLure() || p.Lure.Kind() != "1-back" {
		t.Errorf("trial 2: lure = %+v (%q), want 1-back", p.Lure, p.Lure.Kind())
	}
}

func TestPlanTrial_ExpectedMatchesPositionalDefinition(t *testing.T) {
	ids := []int{1, 2, 1, 2, 2, 3, 1, 3, 3, 2, 1, 1, 2}
	for d := 1; d <= MaxDepth; d++ {
		plans := planSequence(ids, d)
		for p, plan := range plans {
			want := p >= d && ids[p] == ids[p-d]
			if plan.ExpectedAnswer != want {
				t.Errorf("difficulty %d position %d: ExpectedAnswer = %v, want %v", d, p, plan.ExpectedAnswer, want)
			}
		}
	}
}

func TestTrialPlan_Complete(t *testing.T) {
	tests := []struct {
		name        string
		expected    bool
		response    Response
		wantCorrect bool
		wantRT      time.Duration
		wantTimeout bool
	}{
		{
			name:        "hit",
			expected:    true,
			response:    Response{Pressed: true, ReactionTime: 420 * time.Millisecond},
			wantCorrect: true,
			wantRT:      420 * time.Millisecond,
		},
		{
			name:        "miss",
			expected:    true,
			response:    TimedOut,
			wantCorrect: false,
			wantTimeout: true,
		},
		{
			name:        "false alarm",
			expected:    false,
			response:    Response{Pressed: true, ReactionTime: 300 * time.Millisecond},
			wantCorrect: false,
			wantRT:      300 * time.Millisecond,
		},
		{
			name:        "correct rejection",
			expected:    false,
			response:    TimedOut,
			wantCorrect: true,
			wantTimeout: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := TrialPlan{ExpectedAnswer: tt.expected}.Complete(tt.response)

			if out.Correct != tt.wantCorrect {
				t.Errorf("Correct = %v, want %v", out.Correct, tt.wantCorrect)
			}
			if out.UserResponse != tt.response.Pressed {
				t.Errorf("UserResponse = %v, want %v", out.UserResponse, tt.response.Pressed)
			}
			if out.ReactionTime != tt.wantRT {
				t.Errorf("ReactionTime = %v, want %v", out.ReactionTime, tt.wantRT)
			}
			if out.TimedOut != tt.wantTimeout {
				t.Errorf("TimedOut = %v, want %v", out.TimedOut, tt.wantTimeout)
			}
		})
	}
}

func TestBlockResult_Add(t *testing.T) {
	var b BlockResult
	b.Add(TrialOutcome{Correct: true})
	b.Add(TrialOutcome{Correct: false})
	b.Add(TrialOutcome{Correct: false})

	if len(b.Trials) != 3 {
		t.Errorf("len(Trials) = %d, want 3", len(b.Trials))
	}
	if b.ErrorTally != 2 {
		t.Errorf("ErrorTally = %d, want 2", b.ErrorTally)
	}
}
