package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsole_Print(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, &out, VerbosityNormal)
	c.Print("hello")
	if got := out.String(); got != "hello" {
		t.Errorf("Print() = %q, want %q", got, "hello")
	}
}

func TestConsole_Println(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, &out, VerbosityNormal)
	c.Println("hello")
	if got := out.String(); got != "hello\n" {
		t.Errorf("Println() = %q, want %q", got, "hello\n")
	}
}

func TestConsole_Printf(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, &out, VerbosityNormal)
	c.Printf("hello %s", "world")
	if got := out.String(); got != "hello world" {
		t.Errorf("Printf() = %q, want %q", got, "hello world")
	}
}

func TestConsole_Success(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, &out, VerbosityNormal)
	c.SetColors(false)
	c.Success("operation succeeded")
	if got := out.String(); got != "operation succeeded\n" {
		t.Errorf("Success() = %q", got)
	}
}

func TestConsole_ErrorGoesToErr(t *testing.T) {
	var outBuf, errBuf bytes.Buffer
	c := NewConsole(&outBuf, &errBuf, VerbosityQuiet)
	c.SetColors(false)
	c.Error("operation %s", "failed")
	if got := errBuf.String(); got != "Error: operation failed\n" {
		t.Errorf("Error() = %q", got)
	}
	if outBuf.Len() != 0 {
		t.Errorf("Error() wrote to out: %q", outBuf.String())
	}
}

func TestConsole_WarningGoesToErr(t *testing.T) {
	var outBuf, errBuf bytes.Buffer
	c := NewConsole(&outBuf, &errBuf, VerbosityNormal)
	c.SetColors(false)
	c.Warning("something is wrong")
	if got := errBuf.String(); got != "Warning: something is wrong\n" {
		t.Errorf("Warning() = %q", got)
	}
}

func TestConsole_VerbosityFiltering(t *testing.T) {
	tests := []struct {
		name      string
		verbosity Verbosity
		want      []string
		dontWant  []string
	}{
		{"quiet", VerbosityQuiet, nil, []string{"info", "detail", "debug", "warn"}},
		{"normal", VerbosityNormal, []string{"info", "warn"}, []string{"detail", "debug"}},
		{"detailed", VerbosityDetailed, []string{"info", "detail"}, []string{"debug"}},
		{"diagnostic", VerbosityDiagnostic, []string{"info", "detail", "[DEBUG] debug"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := NewConsole(&out, &out, tt.verbosity)
			c.SetColors(false)
			c.Info("info")
			c.Warning("warn")
			c.Detail("detail")
			c.Debug("debug")
			got := out.String()
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output %q missing %q", got, w)
				}
			}
			for _, w := range tt.dontWant {
				if strings.Contains(got, w) {
					t.Errorf("output %q should not contain %q", got, w)
				}
			}
		})
	}
}

func TestConsole_SetVerbosity(t *testing.T) {
	c := NewConsole(&bytes.Buffer{}, &bytes.Buffer{}, VerbosityNormal)
	c.SetVerbosity(VerbosityDiagnostic)
	if got := c.GetVerbosity(); got != VerbosityDiagnostic {
		t.Errorf("GetVerbosity() = %v, want %v", got, VerbosityDiagnostic)
	}
}

func TestParseVerbosity(t *testing.T) {
	tests := map[string]Verbosity{
		"quiet":      VerbosityQuiet,
		"q":          VerbosityQuiet,
		"":           VerbosityNormal,
		"Normal":     VerbosityNormal,
		"detailed":   VerbosityDetailed,
		"diagnostic": VerbosityDiagnostic,
		"diag":       VerbosityDiagnostic,
	}
	for in, want := range tests {
		got, err := ParseVerbosity(in)
		if err != nil {
			t.Errorf("ParseVerbosity(%q) error = %v", in, err)
		}
		if got != want {
			t.Errorf("ParseVerbosity(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseVerbosity("loud"); err == nil {
		t.Error("ParseVerbosity(loud) should fail")
	}
}

func TestIsTerminal_NonFile(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
	if got := Width(&bytes.Buffer{}, 80); got != 80 {
		t.Errorf("Width() = %d, want fallback 80", got)
	}
}
