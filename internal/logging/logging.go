// Package logging installs the process-wide charmbracelet logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// FileName is the log file created in the data directory.
const FileName = "dhidar.log"

// Setup configures the default logger. In debug mode it logs to stderr at
// debug level; otherwise it appends to <dir>/dhidar.log so the terminal stays
// free for the interface. The returned func closes the log file.
func Setup(dir string, debug bool, level string) (func(), error) {
	if debug {
		install(os.Stderr, log.DebugLevel)
		return func() {}, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	install(f, lvl)
	return func() {
		install(os.Stderr, log.InfoLevel)
		_ = f.Close()
	}, nil
}

func install(w io.Writer, level log.Level) {
	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "dhidar",
	})
	log.SetDefault(logger)
}
