// Package logger configures the process-wide logrus logger. The terminal UI
// owns stdout, so log output goes to a file.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
)

var (
	mu      sync.Mutex
	logFile *os.File
)

// DefaultPath returns the log file used when none is configured.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), "poker.log")
}

// Init points the standard logrus logger at path. An empty path discards all
// output. Calling Init again closes the previous file.
func Init(path string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()

	log.SetFormatter(&log.TextFormatter{DisableColors: true, FullTimestamp: true})
	if debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	if path == "" {
		log.SetOutput(io.Discard)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", path, err)
	}
	logFile = f
	log.SetOutput(f)
	log.WithField("path", path).Debug("logger initialized")
	return nil
}

// Close flushes and closes the log file, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
	log.SetOutput(io.Discard)
}

func closeLocked() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
