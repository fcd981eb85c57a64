package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "poker.log")
	if err := Init(path, true); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	defer Close()

	if log.GetLevel() != log.DebugLevel {
		t.Errorf("expected debug level, got %v", log.GetLevel())
	}

	log.WithField("session", "abc").Info("joined")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), "joined") || !strings.Contains(string(data), "session=abc") {
		t.Errorf("log file missing entry: %s", data)
	}
}

func TestInitEmptyPathDiscards(t *testing.T) {
	if err := Init("", false); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	defer Close()

	if log.GetLevel() != log.InfoLevel {
		t.Errorf("expected info level, got %v", log.GetLevel())
	}
	log.Info("goes nowhere")
}

func TestDefaultPath(t *testing.T) {
	if filepath.Base(DefaultPath()) != "poker.log" {
		t.Errorf("unexpected default path %q", DefaultPath())
	}
}
