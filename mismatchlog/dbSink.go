package mismatchlog

import (
	"context"
	"errors"
	"sync"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/nagatech/daily_audit/config"
	"github.com/nagatech/daily_audit/models"
	"github.com/nagatech/daily_audit/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DBSink copies mismatches and run summaries into the report database. The audit date and
// correlation id of a mismatch come from the context the run coordinator sets.
//
// Mismatch rows are held until RecordRun, which writes the run row and its mismatches in one
// transaction. A run whose correlation id is already recorded is a replay and writes nothing.
type DBSink struct {
	db      *gorm.DB
	logger  *logrus.Logger
	mu      sync.Mutex
	pending []models.AuditMismatchRecord
}

func NewDBSink(db *gorm.DB) (*DBSink, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	return &DBSink{db: db, logger: config.GetLogger()}, nil
}

func (s *DBSink) Emit(ctx context.Context, m models.Mismatch) error {
	if err := checkDomain(m); err != nil {
		return err
	}
	run := models.AuditRun{}
	run.AuditDate, _ = utils.GetAuditDateFromContext(ctx)
	run.CorrelationId, _ = utils.GetCorrelationIdFromContext(ctx)

	rec, err := models.NewAuditMismatchRecord(run, m)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.pending = append(s.pending, rec)
	s.mu.Unlock()
	return nil
}

// Pending is the number of mismatch rows waiting for RecordRun.
func (s *DBSink) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *DBSink) RecordRun(ctx context.Context, run models.AuditRun, summary models.Summary, finishedAt time.Time) error {
	rec, err := models.NewAuditRunRecord(run, summary, finishedAt)
	if err != nil {
		return err
	}

	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}
		return tx.CreateInBatches(pending, 200).Error
	})
	if isDuplicateKeyErr(err) {
		s.logger.WithFields(logrus.Fields{
			"field":          "DBSink",
			"audit_date":     run.AuditDate,
			"correlation_id": run.CorrelationId,
			"mismatches":     len(pending),
		}).Warn("audit run already recorded; skipping replay")
		return nil
	}
	return err
}

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}
