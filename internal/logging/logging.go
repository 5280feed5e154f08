// Package logging provides the leveled console logger used by thinning.
//
// Verbosity follows the -V count of the command line: errors and warnings are
// always printed, -V adds info, -VV debug and -VVV trace.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
	Trace(msg string, args ...any)
}

// Verbosity levels.
const (
	LevelQuiet = iota
	LevelInfo
	LevelDebug
	LevelTrace
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Console writes plain lines to an io.Writer.
type Console struct {
	mu        sync.Mutex
	w         io.Writer
	errW      io.Writer
	verbosity int
	colorMode string
	color     bool
	errColor  bool
}

// NewConsole creates a Console. colorMode is one of auto, always, never;
// auto enables color only when w is a terminal.
func NewConsole(w io.Writer, verbosity int, colorMode string) *Console {
	return &Console{
		w:         w,
		errW:      w,
		verbosity: verbosity,
		colorMode: colorMode,
		color:     useColor(w, colorMode),
		errColor:  useColor(w, colorMode),
	}
}

// WithErrors sends Error lines to w instead of the main writer.
func (c *Console) WithErrors(w io.Writer) *Console {
	c.errW = w
	c.errColor = useColor(w, c.colorMode)
	return c
}

func useColor(w io.Writer, mode string) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		// honors NO_COLOR and non-tty output
		return !color.NoColor
	}
	return false
}

func (c *Console) Error(msg string, args ...any) {
	c.writeTo(c.errW, c.errColor, LevelQuiet, color.New(color.FgRed), "Error: "+msg, args...)
}

func (c *Console) Warn(msg string, args ...any) {
	c.write(LevelQuiet, color.New(color.FgYellow), msg, args...)
}

func (c *Console) Info(msg string, args ...any) {
	c.write(LevelInfo, nil, msg, args...)
}

func (c *Console) Debug(msg string, args ...any) {
	c.write(LevelDebug, color.New(color.FgCyan), msg, args...)
}

func (c *Console) Trace(msg string, args ...any) {
	c.write(LevelTrace, color.New(color.FgHiBlack), msg, args...)
}

func (c *Console) write(level int, col *color.Color, msg string, args ...any) {
	c.writeTo(c.w, c.color, level, col, msg, args...)
}

func (c *Console) writeTo(w io.Writer, colored bool, level int, col *color.Color, msg string, args ...any) {
	if w == nil || c.verbosity < level {
		return
	}
	line := fmt.Sprintf(msg, args...)
	if colored && col != nil {
		col.EnableColor()
		line = col.Sprint(line)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(w, line)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Error(string, ...any) {}
func (Nop) Warn(string, ...any)  {}
func (Nop) Info(string, ...any)  {}
func (Nop) Debug(string, ...any) {}
func (Nop) Trace(string, ...any) {}
