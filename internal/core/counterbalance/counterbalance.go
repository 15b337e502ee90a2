// Package counterbalance derives a participant's experimental condition from their ID.
package counterbalance

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoParticipantNumber is returned when an ID contains no digits.
var ErrNoParticipantNumber = errors.New("participant ID contains no digits")

// Prime list names.
const (
	PrimeListA = "A"
	PrimeListB = "B"
)

// Condition is the counterbalancing assignment for one participant.
type Condition struct {
	// ParticipantNumber is the digits of the ID without leading zeros.
	ParticipantNumber string
	BlocksReversed    bool
	PrimeListName     string
}

// ParticipantNumber concatenates the ASCII digits of id and strips leading
// zeros, e.g. "P-0 12" -> "12". The result may be longer than an int holds.
func ParticipantNumber(id string) (string, error) {
	var b strings.Builder
	for _, r := range id {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: %q", ErrNoParticipantNumber, id)
	}
	digits := strings.TrimLeft(b.String(), "0")
	if digits == "" {
		digits = "0"
	}
	return digits, nil
}

// FromNumber assigns odd participants reversed block orders and alternates
// the prime list every two participants.
func FromNumber(n int) Condition {
	list := PrimeListA
	if (n/2)%2 != 0 {
		list = PrimeListB
	}
	return Condition{
		ParticipantNumber: strconv.Itoa(n),
		BlocksReversed:    n%2 == 1,
		PrimeListName:     list,
	}
}

// FromParticipant parses id and returns its condition. The condition
// repeats every four participants, so only the last two digits decide it.
func FromParticipant(id string) (Condition, error) {
	digits, err := ParticipantNumber(id)
	if err != nil {
		return Condition{}, err
	}
	tail := digits
	if len(tail) > 2 {
		tail = tail[len(tail)-2:]
	}
	n, err := strconv.Atoi(tail)
	if err != nil {
		return Condition{}, fmt.Errorf("failed to parse participant number from %q: %w", id, err)
	}
	cond := FromNumber(n % 4)
	cond.ParticipantNumber = digits
	return cond, nil
}

// OrderSet is the 1-based ordering set number recorded for scored block
// blockIndex (0-based) out of total.
func OrderSet(blockIndex, total int, reversed bool) int {
	if reversed {
		return total - blockIndex
	}
	return blockIndex + 1
}
