package mismatchlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nagatech/daily_audit/models"
	"github.com/sirupsen/logrus"
)

const (
	AggregateFile = "mismatch.json"
	SummaryFile   = "summary.json"
	ReportFile    = "mismatch_detail.xlsx"
)

// FileSink appends every mismatch to <base>/<date>/mismatch.json and to
// <base>/<date>/<domain>.json. A log that cannot be parsed is replaced by an empty one.
type FileSink struct {
	mu     sync.Mutex
	dir    string
	logger *logrus.Logger
}

func NewFileSink(baseDir, auditDate string, logger *logrus.Logger) *FileSink {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &FileSink{dir: DateDir(baseDir, auditDate), logger: logger}
}

func DateDir(baseDir, auditDate string) string {
	return filepath.Join(baseDir, auditDate)
}

func (s *FileSink) Dir() string {
	return s.dir
}

// Reset removes the previous logs of the date so a re-run starts from an empty log.
func (s *FileSink) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.RemoveAll(s.dir); err != nil {
		return err
	}
	return s.ensureDir()
}

func (s *FileSink) ensureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	aggregate := filepath.Join(s.dir, AggregateFile)
	if _, err := os.Stat(aggregate); errors.Is(err, os.ErrNotExist) {
		return os.WriteFile(aggregate, []byte("[]"), 0o644)
	}
	return nil
}

func (s *FileSink) Emit(_ context.Context, m models.Mismatch) error {
	if err := checkDomain(m); err != nil {
		return err
	}
	entry, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode mismatch: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureDir(); err != nil {
		return err
	}
	if err := s.appendToFile(filepath.Join(s.dir, AggregateFile), entry); err != nil {
		return err
	}
	return s.appendToFile(filepath.Join(s.dir, m.Domain+".json"), entry)
}

func (s *FileSink) appendToFile(path string, entry json.RawMessage) error {
	var entries []json.RawMessage

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return err
	default:
		if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 {
			if err := json.Unmarshal(trimmed, &entries); err != nil {
				s.logger.WithFields(logrus.Fields{
					"field": "FileSink",
					"file":  path,
				}).Warn("mismatch log corrupt, starting a new one: " + err.Error())
				entries = nil
			}
		}
	}

	entries = append(entries, entry)
	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

// RecordRun writes summary.json next to the logs.
func (s *FileSink) RecordRun(_ context.Context, _ models.AuditRun, summary models.Summary, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureDir(); err != nil {
		return err
	}
	return WriteSummary(s.dir, summary)
}
