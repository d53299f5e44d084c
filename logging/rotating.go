// Package logging wires slog to the console and to weekly rotating log
// files, and exposes package-level helpers used across the parser.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// logFilePrefix names the log files: infomed-2025-W35.log, with
// _NN suffixes once the size limit is hit.
const logFilePrefix = "infomed-"

var numberedLogFile = regexp.MustCompile(`infomed-\d{4}-W\d{2}_(\d{2})\.log$`)

// RotatingLogger is an io.Writer that rotates log files weekly and
// when they grow past maxFileSize. Files older than the retention
// period are removed by a background cleanup loop.
type RotatingLogger struct {
	logDir         string
	currentFile    *os.File
	currentWeek    string
	retention      time.Duration
	maxFileSize    int64
	currentSize    atomic.Int64
	mu             sync.RWMutex
	ctx            context.Context
	cancel         context.CancelFunc
	cleanupStarted bool
	cleanupDone    chan struct{}
}

// NewRotatingLogger creates a rotating logger writing under logDir.
// maxFileSize <= 0 disables size-based rotation.
func NewRotatingLogger(logDir string, retentionWeeks int, maxFileSize int64) *RotatingLogger {
	ctx, cancel := context.WithCancel(context.Background())
	return &RotatingLogger{
		logDir:      logDir,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
		ctx:         ctx,
		cancel:      cancel,
		cleanupDone: make(chan struct{}),
	}
}

// weekKey returns the ISO week key, e.g. 2025-W35.
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Write appends to the current log file, rotating first when the week
// changed or the size limit would be exceeded.
func (rl *RotatingLogger) Write(p []byte) (n int, err error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	week := weekKey(time.Now())
	needsRotation := rl.currentWeek != week
	if rl.maxFileSize > 0 && !needsRotation {
		size := rl.currentSize.Load()
		if size >= rl.maxFileSize || size+int64(len(p)) > rl.maxFileSize {
			needsRotation = true
			rl.currentSize.Store(rl.maxFileSize)
		}
	}

	if needsRotation {
		if err = rl.doRotate(week); err != nil {
			return 0, err
		}
	}
	if rl.currentFile == nil {
		return 0, fmt.Errorf("no log file available")
	}

	n, err = rl.currentFile.Write(p)
	rl.currentSize.Add(int64(n))
	return n, err
}

// doRotate switches to the log file for targetWeek. Caller must hold
// the write lock.
func (rl *RotatingLogger) doRotate(targetWeek string) error {
	if rl.currentFile != nil {
		if err := rl.currentFile.Close(); err != nil {
			slog.Warn("Failed to close log file during rotation", "error", err)
		}
	}

	isSizeRotation := rl.maxFileSize > 0 && rl.currentSize.Load() >= rl.maxFileSize
	fileName, resetSize, err := rl.findOrCreateLogFile(targetWeek, isSizeRotation)
	if err != nil {
		return err
	}

	logPath := filepath.Join(rl.logDir, fileName)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	rl.currentFile = file
	rl.currentWeek = targetWeek

	if resetSize {
		rl.currentSize.Store(0)
	} else if info, err := os.Stat(logPath); err == nil {
		rl.currentSize.Store(info.Size())
	}
	return nil
}

// findOrCreateLogFile picks the file to write for the week: the base
// weekly file while it has room, otherwise the next numbered file.
func (rl *RotatingLogger) findOrCreateLogFile(targetWeek string, isSizeRotation bool) (string, bool, error) {
	baseName := fmt.Sprintf("%s%s.log", logFilePrefix, targetWeek)
	basePath := filepath.Join(rl.logDir, baseName)

	if !isSizeRotation {
		info, err := os.Stat(basePath)
		if err != nil || rl.maxFileSize == 0 || info.Size() < rl.maxFileSize {
			return baseName, false, nil
		}
	}

	highest, lastPath, lastSize := rl.findHighestNumberedFile(targetWeek)
	if lastPath != "" && lastSize < rl.maxFileSize {
		return filepath.Base(lastPath), false, nil
	}

	nextName := fmt.Sprintf("%s%s_%02d.log", logFilePrefix, targetWeek, highest+1)
	return nextName, true, nil
}

func (rl *RotatingLogger) findHighestNumberedFile(targetWeek string) (int, string, int64) {
	pattern := fmt.Sprintf("%s%s_??.log", logFilePrefix, targetWeek)
	matches, _ := filepath.Glob(filepath.Join(rl.logDir, pattern))

	highest := 0
	var lastPath string
	var lastSize int64
	for _, match := range matches {
		num, size := parseNumberedFile(match)
		if num > highest {
			highest = num
			lastPath = match
			lastSize = size
		}
	}
	return highest, lastPath, lastSize
}

func parseNumberedFile(filePath string) (int, int64) {
	matches := numberedLogFile.FindStringSubmatch(filepath.Base(filePath))
	if len(matches) < 2 {
		return 0, 0
	}
	num, _ := strconv.Atoi(matches[1])

	info, err := os.Stat(filePath)
	if err != nil {
		return num, 0
	}
	return num, info.Size()
}

// cleanupOldLogs removes log files past the retention period.
func (rl *RotatingLogger) cleanupOldLogs() error {
	entries, err := os.ReadDir(rl.logDir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := time.Now().Add(-rl.retention)
	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), logFilePrefix) || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(rl.logDir, entry.Name())); err == nil {
				deleted++
			}
		}
	}

	if deleted > 0 {
		// Console output here, the logger itself would recurse.
		fmt.Printf("Cleaned up %d old log files\n", deleted)
	}
	return nil
}

// startCleanup runs the retention sweep once a day until Close.
func (rl *RotatingLogger) startCleanup() {
	rl.cleanupStarted = true
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		defer close(rl.cleanupDone)

		for {
			select {
			case <-rl.ctx.Done():
				return
			case <-ticker.C:
				if err := rl.cleanupOldLogs(); err != nil {
					slog.Warn("Failed to cleanup old logs", "error", err)
				}
			}
		}
	}()
}

// Close stops the cleanup loop and closes the current log file.
func (rl *RotatingLogger) Close() error {
	rl.cancel()
	if rl.cleanupStarted {
		select {
		case <-rl.cleanupDone:
		case <-time.After(5 * time.Second):
			fmt.Printf("Warning: log cleanup goroutine did not shut down\n")
		}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.currentFile != nil {
		return rl.currentFile.Close()
	}
	return nil
}

// setupLogger builds a logger writing text to the console and JSON to
// the rotating file. Falls back to console-only when the log directory
// cannot be used.
func setupLogger(logDir string, level slog.Level, retentionWeeks int, maxFileSize int64) (*slog.Logger, *RotatingLogger) {
	consoleOnly := func(err error, msg string) *slog.Logger {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
		logger.Error(msg, "error", err)
		return logger
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return consoleOnly(err, "Failed to create logs directory"), nil
	}

	rotating := NewRotatingLogger(logDir, retentionWeeks, maxFileSize)
	rotating.mu.Lock()
	err := rotating.doRotate(weekKey(time.Now()))
	rotating.mu.Unlock()
	if err != nil {
		return consoleOnly(err, "Failed to initialize rotating logger"), nil
	}
	rotating.startCleanup()

	handler := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}),
		slog.NewJSONHandler(rotating, &slog.HandlerOptions{Level: level}),
	}}
	return slog.New(handler), rotating
}

// multiHandler fans one record out to several slog handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
