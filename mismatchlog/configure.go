package mismatchlog

import (
	"github.com/nagatech/daily_audit/config"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OpenSinks builds the sinks AUDIT_SINKS enables for one audit date. The file sink is always
// returned (it backs the summary and the report) and is reset before the run; db is only used
// when the db sink is enabled.
func OpenSinks(baseDir, auditDate string, db *gorm.DB, logger *logrus.Logger) (MultiSink, *FileSink, error) {
	if logger == nil {
		logger = config.GetLogger()
	}
	fileSink := NewFileSink(baseDir, auditDate, logger)
	if err := fileSink.Reset(); err != nil {
		return nil, nil, err
	}

	var sinks []Sink
	if config.AuditSinkEnabled(config.SinkFile) {
		sinks = append(sinks, fileSink)
	}
	if config.AuditSinkEnabled(config.SinkDB) {
		if db == nil {
			logger.WithFields(logrus.Fields{
				"field":      "OpenSinks",
				"audit_date": auditDate,
			}).Warn("db sink enabled but the report database is not connected; skipping")
		} else {
			dbSink, err := NewDBSink(db)
			if err != nil {
				return nil, nil, err
			}
			sinks = append(sinks, dbSink)
		}
	}
	return NewMultiSink(sinks...), fileSink, nil
}
