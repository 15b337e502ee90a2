// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"errors"
	"time"
)

// ErrAborted is returned by any Display call once the abort key has been pressed.
// It is a request to end the session, not a fault.
var ErrAborted = errors.New("session aborted by participant")

// KeyPress is the result of waiting for a response key.
type KeyPress struct {
	Pressed bool
	Elapsed time.Duration // time from the wait starting to the key press
}

// Display defines the secondary port for stimulus presentation and input capture.
// Every call blocks until it is done; none of them is cancellable except through
// the abort key (ErrAborted) or ctx.
type Display interface {
	// ShowInstructions shows the instruction screens for task/genre/subgenre
	// in order, waiting for the continue key after each one.
	ShowInstructions(ctx context.Context, task, genre, subgenre string) error

	// ShowNBackStimulus draws the focal image and the prime image together.
	ShowNBackStimulus(ctx context.Context, focalID int, primePath string) error

	// ShowPrimeStimulus draws a single prime image centred.
	ShowPrimeStimulus(ctx context.Context, path string) error

	// WaitForKey waits up to timeout for key. A timeout is not an error.
	WaitForKey(ctx context.Context, timeout time.Duration, key string) (KeyPress, error)

	// Pause keeps the current screen for d.
	Pause(ctx context.Context, d time.Duration) error

	// Blank clears the screen and waits for d.
	Blank(ctx context.Context, d time.Duration) error

	// ReadText collects typed text until the submit key.
	ReadText(ctx context.Context, prompt string) (string, error)

	// Close releases the display.
	Close() error
}
