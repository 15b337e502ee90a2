package nback

import "fmt"

// Lure describes a repeat of the current image at a lookback offset other
// than the active difficulty. The zero value means "no lure".
type Lure struct {
	Offset int
}

// IsLure reports whether a lure was found.
func (l Lure) IsLure() bool {
	return l.Offset > 0
}

// Kind returns the label stored with a trial, e.g. "1-back", or "" for no lure.
func (l Lure) Kind() string {
	if !l.IsLure() {
		return ""
	}
	return fmt.Sprintf("%d-back", l.Offset)
}

// ClassifyLure scans offsets 1..MaxDepth of the pre-trial history, skipping
// the offset equal to difficulty, and returns the nearest offset whose entry
// equals imageID.
func ClassifyLure(imageID, difficulty int, h *History) Lure {
	for offset := 1; offset <= MaxDepth; offset++ {
		if offset == difficulty {
			continue
		}
		if id, ok := h.Lookback(offset); ok && id == imageID {
			return Lure{Offset: offset}
		}
	}
	return Lure{}
}
