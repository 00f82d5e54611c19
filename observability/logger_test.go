package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLogger_BasicLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(buf, DebugLevel)

	log.Info("Test message")

	output := buf.String()
	if !strings.Contains(output, "Test message") {
		t.Errorf("Output missing message: %s", output)
	}
}

func TestLogger_StructuredProperties(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(buf, InfoLevel)

	log.Info("Added {Path} as {BuildAction}", "Models/User.cs", "Compile")

	output := buf.String()
	if !strings.Contains(output, "Models/User.cs") {
		t.Errorf("Output missing Path: %s", output)
	}
	if !strings.Contains(output, "Compile") {
		t.Errorf("Output missing BuildAction: %s", output)
	}
}

func TestLogger_ForContext(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(buf, InfoLevel)

	log.ForContext("ManifestPath", "App.csproj").Info("Scoped message with {Value}", 42)

	if !strings.Contains(buf.String(), "42") {
		t.Errorf("Output missing template property: %s", buf.String())
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name          string
		level         LogLevel
		logFunc       func(Logger)
		shouldContain bool
	}{
		{"Info level allows Info", InfoLevel, func(l Logger) { l.Info("probe") }, true},
		{"Info level blocks Debug", InfoLevel, func(l Logger) { l.Debug("probe") }, false},
		{"Debug level allows Debug", DebugLevel, func(l Logger) { l.Debug("probe") }, true},
		{"Verbose level allows Verbose", VerboseLevel, func(l Logger) { l.Verbose("probe") }, true},
		{"Warn level blocks Info", WarnLevel, func(l Logger) { l.Info("probe") }, false},
		{"Warn level allows Warn", WarnLevel, func(l Logger) { l.Warn("probe") }, true},
		{"Warn level allows WarnContext", WarnLevel, func(l Logger) { l.WarnContext(context.Background(), "probe") }, true},
		{"Error level blocks Warn", ErrorLevel, func(l Logger) { l.Warn("probe") }, false},
		{"Error level allows Error", ErrorLevel, func(l Logger) { l.Error("probe") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.logFunc(NewLogger(buf, tt.level))

			contains := strings.Contains(buf.String(), "probe")
			if contains != tt.shouldContain {
				t.Errorf("output contains message = %v, want %v (output: %q)", contains, tt.shouldContain, buf.String())
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"diagnostic": VerboseLevel,
		"Detailed":   DebugLevel,
		"normal":     InfoLevel,
		"":           InfoLevel,
		"minimal":    WarnLevel,
		" quiet ":    ErrorLevel,
		"bogus":      InfoLevel,
	}
	for input, want := range tests {
		if got := ParseLogLevel(input); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNullLogger(t *testing.T) {
	log := NewNullLogger()

	log.Verbose("verbose")
	log.Debug("debug")
	log.Info("info")
	log.Warn("warn")
	log.Error("error")
	log.WarnContext(context.Background(), "warn ctx")

	if log.ForContext("key", "value") == nil {
		t.Error("ForContext should return a logger")
	}
}
