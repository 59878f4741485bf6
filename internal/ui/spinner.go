// Package ui holds small terminal helpers shared by commands.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/imgajeed76/tracktable/internal/ui/styles"
	"golang.org/x/term"
)

// Spinner shows an animated message on stderr while a slow step (reading a
// large export) runs. It stays silent when stderr is not a terminal so
// piped output is never polluted.
type Spinner struct {
	message string
	out     io.Writer
	enabled bool
	done    chan struct{}
	stopped chan struct{}
	started atomic.Bool
	start   sync.Once
	stop    sync.Once
}

// NewSpinner creates a new spinner with the given message
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		out:     os.Stderr,
		enabled: term.IsTerminal(int(os.Stderr.Fd())),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins the spinner animation in the background. Later calls do
// nothing.
func (s *Spinner) Start() {
	s.start.Do(s.run)
}

func (s *Spinner) run() {
	if !s.enabled {
		return
	}
	s.started.Store(true)

	go func() {
		defer close(s.stopped)
		frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		i := 0
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-s.done:
				// Clear the spinner line
				fmt.Fprint(s.out, "\r\033[K")
				return
			case <-ticker.C:
				frame := styles.Render(styles.InfoStyle, frames[i%len(frames)])
				fmt.Fprintf(s.out, "\r%s %s", frame, s.message)
				i++
			}
		}
	}()
}

// Stop stops the spinner and waits until its line is cleared. It is safe
// to call more than once, and before Start. A stopped spinner never starts.
func (s *Spinner) Stop() {
	s.start.Do(func() {})
	s.stop.Do(func() { close(s.done) })
	if s.started.Load() {
		<-s.stopped
	}
}
