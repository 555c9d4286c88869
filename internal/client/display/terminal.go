package display

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

// Terminal writes the status line to one stream and the result to another.
// On a TTY the status line is rewritten in place; otherwise each status is
// printed on its own line. The latest result is held until Flush so that
// only the final result reaches the output stream.
type Terminal struct {
	mu       sync.Mutex
	status   io.Writer
	out      io.Writer
	renderer Renderer
	tty      bool
	dirty    bool
	pending  []byte
}

// NewTerminal returns a terminal surface. status is usually stderr and out stdout.
func NewTerminal(status, out io.Writer, renderer Renderer) *Terminal {
	return &Terminal{
		status:   status,
		out:      out,
		renderer: renderer,
		tty:      isTerminal(status),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (t *Terminal) SetStatus(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tty {
		fmt.Fprintf(t.status, "\r\033[2K%s", msg)
		t.dirty = true
		return
	}
	fmt.Fprintln(t.status, msg)
}

func (t *Terminal) Show(result json.RawMessage) error {
	var buf bytes.Buffer
	if err := t.renderer.Render(&buf, result); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = buf.Bytes()
	return nil
}

// Flush ends the status line and writes the latest result.
func (t *Terminal) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endLine()
	if t.pending == nil {
		return nil
	}
	_, err := t.out.Write(t.pending)
	t.pending = nil
	return err
}

// Close ends the status line without writing the result.
func (t *Terminal) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endLine()
}

func (t *Terminal) endLine() {
	if t.dirty {
		fmt.Fprintln(t.status)
		t.dirty = false
	}
}
