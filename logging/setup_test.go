package logging

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tc := range testCases {
		if got := parseLevel(tc.input); got != tc.expected {
			t.Errorf("parseLevel(%q): expected %v, got %v", tc.input, tc.expected, got)
		}
	}
}

func TestSetupLoggerRespectsLevel(t *testing.T) {
	logger := SetupLogger("warn", "prod")
	if logger == nil {
		t.Fatal("Expected a logger")
	}
	if logger.Enabled(nil, slog.LevelInfo) {
		t.Error("Expected info to be disabled at warn level")
	}
	if !logger.Enabled(nil, slog.LevelError) {
		t.Error("Expected error to be enabled at warn level")
	}
}

func TestPackageFunctionsWorkBeforeInit(t *testing.T) {
	saved := DefaultLoggingService
	DefaultLoggingService = nil
	defer func() { DefaultLoggingService = saved }()

	// Must not panic before InitLogger runs.
	Info("startup message")
	Warn("startup warning")
	Error("startup error")
	Debug("startup debug")
}

func TestInitLoggerSetsDefault(t *testing.T) {
	saved := DefaultLoggingService
	defer func() { DefaultLoggingService = saved }()

	InitLogger("debug", "dev")
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		t.Fatal("Expected InitLogger to install a logger")
	}
	if !DefaultLoggingService.Logger.Enabled(nil, slog.LevelDebug) {
		t.Error("Expected debug to be enabled")
	}
}
