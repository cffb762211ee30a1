package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug},
		{"info level", "info", slog.LevelInfo},
		{"warn level", "warn", slog.LevelWarn},
		{"warning level", "warning", slog.LevelWarn},
		{"error level", "error", slog.LevelError},
		{"uppercase DEBUG", "DEBUG", slog.LevelDebug},
		{"padded", " error ", slog.LevelError},
		{"invalid level", "invalid", slog.LevelInfo}, // defaults to info
		{"empty string", "", slog.LevelInfo},          // defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != slog.LevelInfo {
		t.Errorf("Default level = %v, want %v", cfg.Level, slog.LevelInfo)
	}
	if cfg.FilePath != "" {
		t.Errorf("Default FilePath = %q, want empty", cfg.FilePath)
	}
	if cfg.MaxSize != 100 {
		t.Errorf("Default MaxSize = %d, want 100", cfg.MaxSize)
	}
	if cfg.MaxBackups != 5 {
		t.Errorf("Default MaxBackups = %d, want 5", cfg.MaxBackups)
	}
	if !cfg.Console {
		t.Errorf("Default Console = %v, want true", cfg.Console)
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("console writes text", func(t *testing.T) {
		var buf bytes.Buffer
		logger, closer, err := NewLogger(Config{Level: slog.LevelInfo, Console: true, Output: &buf})
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}
		defer func() { _ = closer.Close() }()

		logger.Debug("hidden")
		logger.Info("crawl finished", "pages", 3)

		output := buf.String()
		if strings.Contains(output, "hidden") {
			t.Errorf("Debug message should be filtered at info level: %s", output)
		}
		if !strings.Contains(output, "INFO") || !strings.Contains(output, "crawl finished") || !strings.Contains(output, "pages=3") {
			t.Errorf("Unexpected console output: %s", output)
		}
	})

	t.Run("file writes json", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "logs", "find404.log")

		logger, closer, err := NewLogger(Config{
			Level:      slog.LevelDebug,
			FilePath:   logFile,
			MaxSize:    10,
			MaxBackups: 3,
		})
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}

		logger.Debug("test message", "url", "http://example.com/")
		if err := closer.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		data, err := os.ReadFile(logFile)
		if err != nil {
			t.Fatalf("Log file was not created at %s: %v", logFile, err)
		}

		var entry map[string]any
		if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
			t.Fatalf("Log file line is not JSON: %v (%s)", err, data)
		}
		if entry["msg"] != "test message" || entry["url"] != "http://example.com/" {
			t.Errorf("Unexpected log entry: %v", entry)
		}
	})

	t.Run("both console and file", func(t *testing.T) {
		var buf bytes.Buffer
		logFile := filepath.Join(t.TempDir(), "test.log")

		logger, closer, err := NewLogger(Config{
			Level:      slog.LevelInfo,
			FilePath:   logFile,
			MaxSize:    10,
			MaxBackups: 3,
			Console:    true,
			Output:     &buf,
		})
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}

		logger.With("run", 1).Warn("both")
		_ = closer.Close()

		data, _ := os.ReadFile(logFile)
		if !strings.Contains(string(data), `"msg":"both"`) || !strings.Contains(string(data), `"run":1`) {
			t.Errorf("Expected record in file, got %s", data)
		}
		if !strings.Contains(buf.String(), "WARN") || !strings.Contains(buf.String(), "both") {
			t.Errorf("Expected record on console, got %s", buf.String())
		}
	})

	t.Run("no outputs configured defaults to console", func(t *testing.T) {
		var buf bytes.Buffer
		logger, _, err := NewLogger(Config{Level: slog.LevelInfo, Output: &buf})
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}

		logger.Info("fallback")
		if !strings.Contains(buf.String(), "fallback") {
			t.Errorf("Expected console fallback, got %q", buf.String())
		}
	})
}

func TestSetDefault(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	logFile := filepath.Join(t.TempDir(), "test.log")

	closer, err := SetDefault(Config{
		Level:      slog.LevelDebug,
		FilePath:   logFile,
		MaxSize:    10,
		MaxBackups: 3,
	})
	if err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}

	slog.Info("test default logger")
	_ = closer.Close()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "test default logger") {
		t.Errorf("Log file does not contain expected message: %s", data)
	}
}
