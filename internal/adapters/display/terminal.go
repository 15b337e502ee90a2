package display

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/lantern-lab/lantern/internal/ports/secondary"
)

// TerminalOptions configures a Terminal.
type TerminalOptions struct {
	// InstructionDir holds {task}/{genre}/{subgenre}/ page files.
	InstructionDir string
	AbortKey       string
	ContinueKey    string
	// Fallback supplies a page for screens with no page files.
	Fallback func(task, genre, subgenre string) (string, bool)
}

// Terminal implements secondary.Display on a character terminal. Stimuli
// are drawn as labelled text; keys are read from a raw-mode input.
type Terminal struct {
	out   io.Writer
	keys  chan byte
	opts  TerminalOptions
	abort byte
	cont  byte
	now   func() time.Time

	restore   func() error
	closeOnce sync.Once

	focal  *color.Color
	prime  *color.Color
	notice *color.Color
}

// NewTerminal puts in into raw mode when it is a terminal and starts
// reading keys from it. Close restores the terminal.
func NewTerminal(in *os.File, out io.Writer, opts TerminalOptions) (*Terminal, error) {
	restore := func() error { return nil }
	if fd := int(in.Fd()); term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, fmt.Errorf("failed to enable raw mode: %w", err)
		}
		restore = func() error { return term.Restore(fd, state) }
	}

	t, err := newTerminal(in, out, opts)
	if err != nil {
		restore()
		return nil, err
	}
	t.restore = restore
	return t, nil
}

func newTerminal(in io.Reader, out io.Writer, opts TerminalOptions) (*Terminal, error) {
	abort, err := ParseKey(opts.AbortKey)
	if err != nil {
		return nil, fmt.Errorf("abort key: %w", err)
	}
	cont, err := ParseKey(opts.ContinueKey)
	if err != nil {
		return nil, fmt.Errorf("continue key: %w", err)
	}

	t := &Terminal{
		out:     out,
		keys:    make(chan byte, 64),
		opts:    opts,
		abort:   abort,
		cont:    cont,
		now:     time.Now,
		restore: func() error { return nil },
		focal:   color.New(color.FgHiWhite, color.Bold),
		prime:   color.New(color.FgCyan),
		notice:  color.New(color.FgYellow),
	}
	go t.readKeys(in)
	return t, nil
}

// readKeys decodes raw input into t.keys. A trailing ESC is held for
// escapeWait in case the rest of an escape sequence follows.
func (t *Terminal) readKeys(in io.Reader) {
	chunks := make(chan []byte)
	go readChunks(in, chunks)

	defer close(t.keys)
	var dec keyDecoder
	var wait <-chan time.Time
	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				t.send(dec.flush())
				return
			}
			t.send(dec.feed(chunk))
			wait = nil
			if dec.pending() {
				wait = time.After(escapeWait)
			}
		case <-wait:
			wait = nil
			t.send(dec.flush())
		}
	}
}

func readChunks(in io.Reader, chunks chan<- []byte) {
	defer close(chunks)
	buf := make([]byte, 64)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			chunks <- chunk
		}
		if err != nil {
			return
		}
	}
}

func (t *Terminal) send(keys []byte) {
	for _, b := range keys {
		t.keys <- b
	}
}

// ShowInstructions shows each page of the instruction folder and waits for
// the continue key after it.
func (t *Terminal) ShowInstructions(ctx context.Context, task, genre, subgenre string) error {
	pages, err := t.pages(task, genre, subgenre)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		pages = []string{t.fallback(task, genre, subgenre)}
	}

	for _, page := range pages {
		t.clear()
		t.println(page)
		t.println("")
		t.notice.Fprintf(t.out, "Press %s to continue.\r\n", t.opts.ContinueKey)

		if err := t.drain(); err != nil {
			return err
		}
		if _, err := t.waitFor(ctx, 0, t.cont); err != nil {
			return err
		}
	}
	return nil
}

func (t *Terminal) fallback(task, genre, subgenre string) string {
	if t.opts.Fallback != nil {
		if page, ok := t.opts.Fallback(task, genre, subgenre); ok {
			return page
		}
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s %s", task, genre, subgenre))
}

// pages returns the text of every page file, sorted by name. Non-text pages
// are shown by file name.
func (t *Terminal) pages(task, genre, subgenre string) ([]string, error) {
	dir := filepath.Join(t.opts.InstructionDir, task, genre, subgenre)
	matches, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list instructions in %s: %w", dir, err)
	}
	sort.Strings(matches)

	var pages []string
	for _, m := range matches {
		if filepath.Ext(m) != ".txt" {
			pages = append(pages, "["+filepath.Base(m)+"]")
			continue
		}
		data, err := os.ReadFile(m)
		if err != nil {
			return nil, fmt.Errorf("failed to read instruction page: %w", err)
		}
		pages = append(pages, strings.TrimRight(string(data), "\n"))
	}
	return pages, nil
}

// ShowNBackStimulus draws the focal image label above the prime.
func (t *Terminal) ShowNBackStimulus(ctx context.Context, focalID int, primePath string) error {
	t.clear()
	t.println("")
	t.focal.Fprintf(t.out, "        [ image %d ]\r\n", focalID)
	t.println("")
	t.prime.Fprintf(t.out, "        %s\r\n", stem(primePath))
	return nil
}

// ShowPrimeStimulus draws a single prime image label.
func (t *Terminal) ShowPrimeStimulus(ctx context.Context, path string) error {
	t.clear()
	t.println("")
	t.prime.Fprintf(t.out, "        [ %s ]\r\n", stem(path))
	return nil
}

// WaitForKey waits up to timeout for key. Keys pressed before the call are discarded.
func (t *Terminal) WaitForKey(ctx context.Context, timeout time.Duration, key string) (secondary.KeyPress, error) {
	want, err := ParseKey(key)
	if err != nil {
		return secondary.KeyPress{}, err
	}
	if err := t.drain(); err != nil {
		return secondary.KeyPress{}, err
	}
	return t.waitFor(ctx, timeout, want)
}

// Pause keeps the current screen for d.
func (t *Terminal) Pause(ctx context.Context, d time.Duration) error {
	return t.sleep(ctx, d)
}

// Blank clears the screen and waits for d.
func (t *Terminal) Blank(ctx context.Context, d time.Duration) error {
	t.clear()
	return t.sleep(ctx, d)
}

// ReadText echoes typed characters until Enter.
func (t *Terminal) ReadText(ctx context.Context, prompt string) (string, error) {
	t.clear()
	if prompt == "" {
		prompt = "What was the image?"
	}
	t.println(prompt)
	t.notice.Fprint(t.out, "Type your answer and press Enter: ")

	if err := t.drain(); err != nil {
		return "", err
	}
	// text[:done] holds whole runes; the rest is a rune still being typed.
	var text []byte
	done := 0
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case b, ok := <-t.keys:
			if !ok {
				return "", fmt.Errorf("%w: input closed", secondary.ErrAborted)
			}
			switch {
			case b == t.abort || b == keyCtrlC:
				return "", secondary.ErrAborted
			case b == '\r' || b == '\n':
				t.println("")
				return string(text[:done]), nil
			case b == keyBackspace || b == keyCtrlH:
				if len(text) > done {
					text = text[:done]
				} else if done > 0 {
					_, size := utf8.DecodeLastRune(text)
					text = text[:done-size]
					done = len(text)
					fmt.Fprint(t.out, "\b \b")
				}
			case b >= 0x20:
				text = append(text, b)
				text, done = t.echoRunes(text, done)
			}
		}
	}
}

// echoRunes writes every complete rune in text after done and returns text
// with invalid bytes removed, plus the new end of the complete runes.
func (t *Terminal) echoRunes(text []byte, done int) ([]byte, int) {
	for done < len(text) && utf8.FullRune(text[done:]) {
		r, size := utf8.DecodeRune(text[done:])
		if r == utf8.RuneError && size == 1 {
			copy(text[done:], text[done+1:])
			text = text[:len(text)-1]
			continue
		}
		t.out.Write(text[done : done+size])
		done += size
	}
	return text, done
}

// Close restores the terminal.
func (t *Terminal) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.clear()
		err = t.restore()
	})
	return err
}

// waitFor blocks until want is pressed or timeout passes. A zero timeout waits forever.
func (t *Terminal) waitFor(ctx context.Context, timeout time.Duration, want byte) (secondary.KeyPress, error) {
	start := t.now()
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return secondary.KeyPress{}, ctx.Err()
		case <-expired:
			return secondary.KeyPress{Elapsed: timeout}, nil
		case b, ok := <-t.keys:
			if !ok {
				return secondary.KeyPress{}, fmt.Errorf("%w: input closed", secondary.ErrAborted)
			}
			if b == t.abort || b == keyCtrlC {
				return secondary.KeyPress{}, secondary.ErrAborted
			}
			if matches(b, want) {
				return secondary.KeyPress{Pressed: true, Elapsed: t.now().Sub(start)}, nil
			}
		}
	}
}

// sleep waits for d while still honouring the abort key.
func (t *Terminal) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case b, ok := <-t.keys:
			if !ok {
				return fmt.Errorf("%w: input closed", secondary.ErrAborted)
			}
			if b == t.abort || b == keyCtrlC {
				return secondary.ErrAborted
			}
		}
	}
}

// drain discards buffered key presses. A buffered abort key still aborts.
func (t *Terminal) drain() error {
	for {
		select {
		case b, ok := <-t.keys:
			if !ok {
				return nil
			}
			if b == t.abort || b == keyCtrlC {
				return secondary.ErrAborted
			}
		default:
			return nil
		}
	}
}

func (t *Terminal) clear() {
	fmt.Fprint(t.out, "\x1b[2J\x1b[H")
}

func (t *Terminal) println(s string) {
	fmt.Fprint(t.out, strings.ReplaceAll(s, "\n", "\r\n")+"\r\n")
}

// stem is the file name without directory or extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

var _ secondary.Display = (*Terminal)(nil)
