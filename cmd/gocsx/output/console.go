package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Verbosity levels
type Verbosity int

const (
	// VerbosityQuiet shows errors only
	VerbosityQuiet Verbosity = iota
	// VerbosityNormal shows errors, warnings, and results (default)
	VerbosityNormal
	// VerbosityDetailed adds per-file details
	VerbosityDetailed
	// VerbosityDiagnostic adds debug output
	VerbosityDiagnostic
)

// ParseVerbosity maps a --verbosity value to a Verbosity.
func ParseVerbosity(name string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "q", "quiet":
		return VerbosityQuiet, nil
	case "", "n", "normal":
		return VerbosityNormal, nil
	case "d", "detailed":
		return VerbosityDetailed, nil
	case "diag", "diagnostic":
		return VerbosityDiagnostic, nil
	default:
		return VerbosityNormal, fmt.Errorf("invalid verbosity %q: must be quiet, normal, detailed or diagnostic", name)
	}
}

// Console provides output abstraction
type Console struct {
	out       io.Writer
	err       io.Writer
	verbosity Verbosity
	mu        sync.Mutex
	colors    bool
}

// NewConsole creates a new console
func NewConsole(out, err io.Writer, verbosity Verbosity) *Console {
	c := &Console{
		out:       out,
		err:       err,
		verbosity: verbosity,
		colors:    IsColorEnabled(),
	}

	if !c.colors {
		DisableColors()
	}

	return c
}

// DefaultConsole creates a console with stdout/stderr and normal verbosity
func DefaultConsole() *Console {
	return NewConsole(os.Stdout, os.Stderr, VerbosityNormal)
}

// Out returns the writer for regular output.
func (c *Console) Out() io.Writer {
	return c.out
}

// ErrOut returns the writer for errors and logs.
func (c *Console) ErrOut() io.Writer {
	return c.err
}

// SetVerbosity sets the verbosity level
func (c *Console) SetVerbosity(v Verbosity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verbosity = v
}

// GetVerbosity returns the current verbosity level
func (c *Console) GetVerbosity() Verbosity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verbosity
}

// SetColors enables or disables color output
func (c *Console) SetColors(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.colors = enabled
	if enabled {
		EnableColors()
	} else {
		DisableColors()
	}
}

// Print writes to output
func (c *Console) Print(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, a...)
}

// Println writes line to output
func (c *Console) Println(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, a...)
}

// Printf writes formatted output
func (c *Console) Printf(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, a...)
}

func (c *Console) write(w io.Writer, min Verbosity, col *color.Color, format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.verbosity < min {
		return
	}
	if c.colors && col != nil {
		_, _ = col.Fprintf(w, format+"\n", a...)
		return
	}
	fmt.Fprintf(w, format+"\n", a...)
}

// Success writes success message (green)
func (c *Console) Success(format string, a ...any) {
	c.write(c.out, VerbosityNormal, ColorSuccess, format, a...)
}

// Error writes error message (red)
func (c *Console) Error(format string, a ...any) {
	c.write(c.err, VerbosityQuiet, ColorError, "Error: "+format, a...)
}

// Warning writes warning message (yellow)
func (c *Console) Warning(format string, a ...any) {
	c.write(c.err, VerbosityNormal, ColorWarning, "Warning: "+format, a...)
}

// Info writes info message (cyan)
func (c *Console) Info(format string, a ...any) {
	c.write(c.out, VerbosityNormal, ColorInfo, format, a...)
}

// Header writes a bold heading.
func (c *Console) Header(format string, a ...any) {
	c.write(c.out, VerbosityNormal, ColorHeader, format, a...)
}

// Debug writes debug message (white)
func (c *Console) Debug(format string, a ...any) {
	c.write(c.out, VerbosityDiagnostic, ColorDebug, "[DEBUG] "+format, a...)
}

// Detail writes detailed message
func (c *Console) Detail(format string, a ...any) {
	c.write(c.out, VerbosityDetailed, nil, format, a...)
}
