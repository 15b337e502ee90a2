package secondary

import (
	"errors"
	"testing"
	"time"
)

func validMeta() SessionMeta {
	return SessionMeta{
		SessionID:     "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		Participant:   "P03",
		AgeGroup:      "child",
		Date:          "Tue Mar 5 14:30:00 2024",
		PrimeListName: "B",
		NBackTask:     true,
	}
}

func validNBack() *NBackRecord {
	return &NBackRecord{
		SessionMeta:      validMeta(),
		PrimeName:        "B07",
		NBack:            2,
		OrderSet:         3,
		Position:         4,
		ImageID:          17,
		NBackImageID:     17,
		HasNBackImage:    true,
		Lure:             true,
		LureKind:         "1-back",
		ExpectedResponse: true,
		UserResponse:     true,
		ReactionTime:     612345 * time.Microsecond,
		Correct:          true,
	}
}

func TestNBackRecord_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *NBackRecord)
	}{
		{name: "missing session", mutate: func(r *NBackRecord) { r.SessionID = "" }},
		{name: "missing participant", mutate: func(r *NBackRecord) { r.Participant = "" }},
		{name: "missing date", mutate: func(r *NBackRecord) { r.Date = "" }},
		{name: "n-back out of range", mutate: func(r *NBackRecord) { r.NBack = 4 }},
		{name: "zero position", mutate: func(r *NBackRecord) { r.Position = 0 }},
		{name: "zero order set", mutate: func(r *NBackRecord) { r.OrderSet = 0 }},
		{name: "missing prime", mutate: func(r *NBackRecord) { r.PrimeName = "" }},
		{name: "lure without kind", mutate: func(r *NBackRecord) { r.LureKind = "" }},
		{name: "pressed and timed out", mutate: func(r *NBackRecord) { r.TimedOut = true }},
	}

	if err := validNBack().Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validNBack()
			tt.mutate(r)
			if err := r.Validate(); !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("Validate() = %v, want ErrInvalidRecord", err)
			}
		})
	}
}

func TestNBackRecord_Row(t *testing.T) {
	r := validNBack()
	row := r.Row()
	header := r.Header()
	if len(row) != len(header) {
		t.Fatalf("row has %d fields, header %d", len(row), len(header))
	}

	want := map[string]string{
		"section":         "n-back",
		"prime image id":  "B07",
		"n-back type":     "2",
		"order set":       "3",
		"n-back image":    "17",
		"lure":            "1",
		"lure kind":       "1-back",
		"reaction time":   "0.6123",
		"blocks reversed": "0",
	}
	for i, h := range header {
		if v, ok := want[h]; ok && row[i] != v {
			t.Errorf("%s = %q, want %q", h, row[i], v)
		}
	}
}

func TestNBackRecord_RowTimedOut(t *testing.T) {
	r := validNBack()
	r.UserResponse = false
	r.TimedOut = true
	r.HasNBackImage = false

	row := r.Row()
	header := r.Header()
	for i, h := range header {
		if (h == "reaction time" || h == "n-back image") && row[i] != "" {
			t.Errorf("%s = %q, want empty", h, row[i])
		}
	}
}

func TestPrimeRecord(t *testing.T) {
	r := &PrimeRecord{
		SessionMeta: validMeta(),
		ImageName:   "kite",
		Position:    1,
		Level:       8,
		Answer:      "a kite",
		TimedOut:    true,
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	row := r.Row()
	if row[len(row)-1] != "N/A" {
		t.Errorf("reaction time = %q, want N/A", row[len(row)-1])
	}
	if r.Section() != SectionPrime || r.Meta().Participant != "P03" {
		t.Errorf("section/meta = %s/%+v", r.Section(), r.Meta())
	}

	r.Level = 0
	if err := r.Validate(); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("Validate() with level 0 = %v, want ErrInvalidRecord", err)
	}
}

func TestKeys(t *testing.T) {
	if got := BlockKey(2, 0); got != "2_1" {
		t.Errorf("BlockKey(2, 0) = %q", got)
	}
	if got := PracticeKey(1); got != "1_practice" {
		t.Errorf("PracticeKey(1) = %q", got)
	}
}
