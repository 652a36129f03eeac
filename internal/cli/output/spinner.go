package output

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows progress for a long-running step on a terminal.
// On non-TTY output it degrades to plain status lines.
type Spinner struct {
	w       io.Writer
	message string
	animate bool

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewSpinner creates a spinner bound to the renderer's output writer.
// The animation only runs when the renderer writes to a terminal.
func (r *Renderer) NewSpinner(message string) *Spinner {
	return &Spinner{
		w:       r.out,
		message: message,
		animate: r.isTTY && r.EffectiveMode() == ModeText,
	}
}

// Start begins the animation. Without a terminal it prints the message once.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true

	if !s.animate {
		_, _ = fmt.Fprintln(s.w, s.message)
		return
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				_, _ = fmt.Fprintf(s.w, "\r%s %s", spinnerFrames[i%len(spinnerFrames)], s.message)
				i++
			}
		}
	}()
}

// Success stops the spinner and prints a success line.
func (s *Spinner) Success(msg string) {
	s.finish("✓", msg)
}

// Fail stops the spinner and prints a failure line.
func (s *Spinner) Fail(msg string) {
	s.finish("✗", msg)
}

func (s *Spinner) finish(glyph, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		_, _ = fmt.Fprintf(s.w, "%s %s\n", glyph, msg)
		return
	}
	s.running = false

	if !s.animate {
		_, _ = fmt.Fprintf(s.w, "%s %s\n", glyph, msg)
		return
	}

	close(s.stop)
	<-s.done
	// Clear the animation frame before printing the final line
	_, _ = fmt.Fprintf(s.w, "\r\033[K%s %s\n", glyph, msg)
}
