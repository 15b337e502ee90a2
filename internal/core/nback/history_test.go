package nback

import (
	"reflect"
	"testing"
)

func TestHistory_Lookback(t *testing.T) {
	tests := []struct {
		name     string
		recorded []int
		n        int
		wantID   int
		wantOK   bool
	}{
		{name: "empty history", recorded: nil, n: 1, wantOK: false},
		{name: "one-back after one record", recorded: []int{4}, n: 1, wantID: 4, wantOK: true},
		{name: "two-back not yet available", recorded: []int{4}, n: 2, wantOK: false},
		{name: "most recent is offset one", recorded: []int{1, 2, 3}, n: 1, wantID: 3, wantOK: true},
		{name: "oldest is offset three", recorded: []int{1, 2, 3}, n: 3, wantID: 1, wantOK: true},
		{name: "zero offset is invalid", recorded: []int{1, 2}, n: 0, wantOK: false},
		{name: "offset beyond depth", recorded: []int{1, 2, 3, 4}, n: 4, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory()
			for _, id := range tt.recorded {
				h.Record(id)
			}

			id, ok := h.Lookback(tt.n)
			if ok != tt.wantOK {
				t.Fatalf("Lookback(%d) ok = %v, want %v", tt.n, ok, tt.wantOK)
			}
			if ok && id != tt.wantID {
				t.Errorf("Lookback(%d) = %d, want %d", tt.n, id, tt.wantID)
			}
		})
	}
}

func TestHistory_KeepsOnlyMostRecent(t *testing.T) {
	h := NewHistory()
	for _, id := range []int{10, 20, 30, 40, 50, 60} {
		h.Record(id)
	}

	if h.Len() != MaxDepth {
		t.Fatalf("Len() = %d, want %d", h.Len(), MaxDepth)
	}

	want := []int{60, 50, 40}
	if got := h.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}

	for n := 1; n <= MaxDepth; n++ {
		id, ok := h.Lookback(n)
		if !ok || id != want[n-1] {
			t.Errorf("Lookback(%d) = %d, %v; want %d, true", n, id, ok, want[n-1])
		}
	}
}

func TestHistory_IDsIsACopy(t *testing.T) {
	h := NewHistory()
	h.Record(1)

	ids := h.IDs()
	ids[0] = 99

	if id, _ := h.Lookback(1); id != 1 {
		t.Errorf("mutating IDs() leaked into history: Lookback(1) = %d", id)
	}
}
