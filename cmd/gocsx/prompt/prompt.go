// Package prompt asks the user for file names and build actions.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// ErrNotTerminal is returned when stdin is not an interactive terminal.
var ErrNotTerminal = errors.New("prompt requires an interactive terminal")

// Prompter reads answers from the user. A cancelled prompt (Ctrl-C or EOF)
// returns ok == false and a nil error.
type Prompter interface {
	// Input asks for free text. An empty answer yields def.
	Input(label, def string) (answer string, ok bool, err error)
	// Choose asks for one of options, matched case-insensitively or by unique prefix.
	Choose(label string, options []string) (choice string, ok bool, err error)
}

// Terminal prompts on the controlling terminal with line editing.
type Terminal struct {
	// Out receives validation messages. Defaults to os.Stderr.
	Out io.Writer
}

// NewTerminal returns a Terminal, or ErrNotTerminal when stdin is piped.
func NewTerminal() (*Terminal, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, ErrNotTerminal
	}
	return &Terminal{Out: os.Stderr}, nil
}

func (t *Terminal) open(completions []string) *liner.State {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	if len(completions) > 0 {
		state.SetCompleter(func(line string) []string {
			return Complete(completions, line)
		})
	}
	return state
}

// Input implements Prompter.
func (t *Terminal) Input(label, def string) (string, bool, error) {
	state := t.open(nil)
	defer state.Close()

	text := label + ": "
	if def != "" {
		text = fmt.Sprintf("%s [%s]: ", label, def)
	}
	line, err := state.Prompt(text)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return "", false, nil
		}
		return "", false, err
	}
	if line = strings.TrimSpace(line); line == "" {
		line = def
	}
	return line, line != "", nil
}

// Choose implements Prompter.
func (t *Terminal) Choose(label string, options []string) (string, bool, error) {
	state := t.open(options)
	defer state.Close()

	for {
		line, err := state.Prompt(label + ": ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return "", false, nil
			}
			return "", false, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return "", false, nil
		}
		if choice, ok := Match(options, line); ok {
			state.AppendHistory(choice)
			return choice, true, nil
		}
		fmt.Fprintf(t.out(), "%q is not one of: %s\n", line, strings.Join(options, ", "))
	}
}

func (t *Terminal) out() io.Writer {
	if t.Out == nil {
		return os.Stderr
	}
	return t.Out
}

// Match returns the option equal to input ignoring case, or the only option
// input is a prefix of.
func Match(options []string, input string) (string, bool) {
	candidates := Complete(options, input)
	for _, c := range candidates {
		if strings.EqualFold(c, input) {
			return c, true
		}
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}
	return "", false
}

// Complete lists the options that start with prefix, ignoring case.
func Complete(options []string, prefix string) []string {
	var out []string
	lower := strings.ToLower(prefix)
	for _, o := range options {
		if strings.HasPrefix(strings.ToLower(o), lower) {
			out = append(out, o)
		}
	}
	return out
}
