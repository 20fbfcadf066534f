// Package notify delivers transient, non-blocking notifications (toasts)
// to whichever surface is active: the console status line or stderr.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Toast is one notification.
type Toast struct {
	Level   Level
	Message string
	At      time.Time
}

// Notifier receives toasts. Implementations must not block.
type Notifier interface {
	Notify(t Toast)
}

// Info sends an info toast. A nil notifier drops it.
func Info(n Notifier, msg string) { send(n, LevelInfo, msg) }

// Success sends a success toast.
func Success(n Notifier, msg string) { send(n, LevelSuccess, msg) }

// Error sends an error toast.
func Error(n Notifier, msg string) { send(n, LevelError, msg) }

func send(n Notifier, level Level, msg string) {
	if n == nil {
		return
	}
	n.Notify(Toast{Level: level, Message: msg, At: time.Now()})
}

// Recorder keeps every toast in memory.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

// Notify implements Notifier.
func (r *Recorder) Notify(t Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

// Toasts returns a copy of everything recorded.
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}

// Messages returns the recorded messages in order.
func (r *Recorder) Messages() []string {
	toasts := r.Toasts()
	out := make([]string, len(toasts))
	for i, t := range toasts {
		out[i] = t.Message
	}
	return out
}

// Last returns the most recent toast.
func (r *Recorder) Last() (Toast, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.toasts) == 0 {
		return Toast{}, false
	}
	return r.toasts[len(r.toasts)-1], true
}

// Drain returns and forgets everything recorded.
func (r *Recorder) Drain() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.toasts
	r.toasts = nil
	return out
}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// Render formats a toast with its level glyph and color.
func Render(t Toast) string {
	switch t.Level {
	case LevelSuccess:
		return successStyle.Render("✓ " + t.Message)
	case LevelError:
		return errorStyle.Render("✗ " + t.Message)
	default:
		return infoStyle.Render("ℹ " + t.Message)
	}
}

// Writer prints toasts as lines, for CLI commands.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter creates a notifier that prints to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Notify implements Notifier.
func (w *Writer) Notify(t Toast) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.w, Render(t))
}
