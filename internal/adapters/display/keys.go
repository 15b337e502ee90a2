// Package display implements secondary.Display for a terminal and for
// scripted, headless runs.
package display

import (
	"fmt"
	"strings"
	"time"
)

// Key codes read from a raw terminal.
const (
	keyEscape    = 0x1b
	keyBackspace = 0x7f
	keyCtrlH     = 0x08
	keyCtrlC     = 0x03
)

// ParseKey maps a configured key name to the byte a raw terminal delivers.
func ParseKey(name string) (byte, error) {
	switch strings.ToLower(name) {
	case "space":
		return ' ', nil
	case "escape", "esc":
		return keyEscape, nil
	case "return", "enter":
		return '\r', nil
	case "tab":
		return '\t', nil
	}
	if len(name) == 1 {
		return name[0], nil
	}
	return 0, fmt.Errorf("unsupported key %q", name)
}

// matches reports whether b is want, ignoring letter case.
func matches(b, want byte) bool {
	if b == want {
		return true
	}
	if want == '\r' && b == '\n' {
		return true
	}
	return lower(b) == lower(want)
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// escapeWait is how long a lone ESC waits for the rest of an escape sequence.
const escapeWait = 30 * time.Millisecond

type decodeState int

const (
	stateGround decodeState = iota
	stateEscape
	stateCSI
	stateSS3
)

// keyDecoder turns raw terminal bytes into key bytes. The ESC [ ... and
// ESC O x sequences sent by arrow, function and editing keys are dropped so
// they never read as the escape key.
type keyDecoder struct {
	state decodeState
}

func (d *keyDecoder) feed(in []byte) []byte {
	var out []byte
	for _, b := range in {
		switch d.state {
		case stateEscape:
			d.state = stateGround
			switch b {
			case '[':
				d.state = stateCSI
				continue
			case 'O':
				d.state = stateSS3
				continue
			}
			out = append(out, keyEscape)
		case stateCSI:
			// Parameter and intermediate bytes until a final byte in 0x40-0x7e.
			if b >= 0x40 && b <= 0x7e {
				d.state = stateGround
			}
			continue
		case stateSS3:
			d.state = stateGround
			continue
		}

		if b == keyEscape {
			d.state = stateEscape
			continue
		}
		out = append(out, b)
	}
	return out
}

// pending reports whether an unfinished sequence is buffered.
func (d *keyDecoder) pending() bool {
	return d.state != stateGround
}

// flush gives up on an unfinished sequence. An ESC with nothing after it is
// the escape key.
func (d *keyDecoder) flush() []byte {
	state := d.state
	d.state = stateGround
	if state == stateEscape {
		return []byte{keyEscape}
	}
	return nil
}
