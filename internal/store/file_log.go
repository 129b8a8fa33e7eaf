package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/arb-scanner-service/internal/models"
	"github.com/cypherlabdev/arb-scanner-service/internal/service"
)

// maxLineSize bounds a single JSON line when reading the log back
const maxLineSize = 1 << 20

// FileLog is an append-only JSON-lines record of emitted opportunities
type FileLog struct {
	path   string
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewFileLog creates a file log writing to path. The file and its directory
// are created on first append.
func NewFileLog(path string, logger zerolog.Logger) *FileLog {
	return &FileLog{
		path:   path,
		logger: logger.With().Str("component", "file_log").Str("path", path).Logger(),
	}
}

// Path returns the log file location
func (l *FileLog) Path() string {
	return l.path
}

// Append writes one opportunity as a single JSON line
func (l *FileLog) Append(ctx context.Context, opp *models.Opportunity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	line, err := json.Marshal(opp)
	if err != nil {
		return fmt.Errorf("failed to marshal opportunity: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open opportunity log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("failed to append opportunity: %w", err)
	}

	l.logger.Debug().Str("event_id", opp.EventID).Msg("opportunity logged")
	return nil
}

// ReadAll reads every opportunity recorded at path. Lines that do not decode
// are logged and skipped. A missing file yields an error wrapping
// os.ErrNotExist.
func ReadAll(path string, logger zerolog.Logger) ([]*models.Opportunity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open opportunity log: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var opps []*models.Opportunity
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var opp models.Opportunity
		if err := json.Unmarshal(line, &opp); err != nil {
			logger.Warn().
				Err(err).
				Str("path", path).
				Int("line", lineNo).
				Msg("skipping malformed opportunity record")
			continue
		}
		opps = append(opps, &opp)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read opportunity log: %w", err)
	}

	return opps, nil
}

// MultiLog fans an opportunity out to several logs. Every log is attempted;
// the failures are joined.
type MultiLog []service.OpportunityLog

// Append appends opp to every log
func (m MultiLog) Append(ctx context.Context, opp *models.Opportunity) error {
	var errs []error
	for _, l := range m {
		if err := l.Append(ctx, opp); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
