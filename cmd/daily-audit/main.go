package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nagatech/daily_audit/config"
	"github.com/nagatech/daily_audit/docstore"
	"github.com/nagatech/daily_audit/mismatchlog"
	"github.com/nagatech/daily_audit/models"
	"github.com/nagatech/daily_audit/models/reports"
	"github.com/nagatech/daily_audit/utils"
	"github.com/nagatech/daily_audit/workflow"
	"github.com/sirupsen/logrus"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup (lock release, disconnects) always runs.
func run() int {
	fixture := flag.String("fixture", "", "Optional: audit a JSON snapshot instead of MONGO_URI")
	dateStr := flag.String("date", "", "Optional: audit date (YYYY-MM-DD). Defaults to today in AUDIT_TIMEZONE, or the fixture's audit_date.")
	logDir := flag.String("log-dir", "", "Optional: mismatch log folder (default AUDIT_LOG_DIR)")
	modules := flag.String("modules", "", "Optional: comma separated modules to run (overrides AUDIT_MODULES)")
	writeReport := flag.Bool("report", true, "Render mismatch_detail.xlsx after the run")
	publish := flag.Bool("publish", false, "Publish the summary to PUBSUB_AUDIT_TOPIC")
	upload := flag.Bool("upload", false, "Upload the date folder to GCS_BUCKET")
	flag.Parse()

	if strings.TrimSpace(*modules) != "" {
		os.Setenv("AUDIT_MODULES", *modules)
	}

	logger := config.GetLogger()
	settings, err := config.LoadSettings(*fixture != "")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *logDir != "" {
		settings.LogDir = *logDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, auditDate, err := openStore(ctx, settings, *fixture, *dateStr)
	if err != nil {
		config.LogError(logger, "DailyAudit", "main", "opening document store", *fixture, err)
		return 1
	}
	defer config.DisconnectMongo(context.Background())

	if config.AuditSinkEnabled(config.SinkDB) {
		if err := config.ConnectDatabaseWithRetry(); err != nil {
			config.LogError(logger, "DailyAudit", "main", "connecting report database", nil, err)
			return 1
		}
		if err := models.MigrateTable(config.GetDB()); err != nil {
			config.LogError(logger, "DailyAudit", "main", "migrating report tables", nil, err)
			return 1
		}
	}

	if settings.RedisAddress != "" {
		if err := config.ConnectRedis(ctx, settings); err != nil {
			logger.WithFields(logrus.Fields{"field": "redis"}).Warn("redis unavailable; running without the audit lock: " + err.Error())
		} else {
			defer config.CloseRedis()
		}
	}
	release, err := workflow.AcquireAuditLock(ctx, config.GetRedisLock(), auditDate, workflow.DefaultAuditLockTTL)
	if err != nil {
		config.LogError(logger, "DailyAudit", "main", "acquiring audit lock", auditDate, err)
		return 1
	}
	defer release()

	sink, fileSink, err := mismatchlog.OpenSinks(settings.LogDir, auditDate, config.GetDB(), logger)
	if err != nil {
		config.LogError(logger, "DailyAudit", "main", "opening mismatch sinks", auditDate, err)
		return 1
	}

	auditor := workflow.NewAuditor(store, sink,
		workflow.WithLogger(logger),
		workflow.WithEncoder(utils.NewAsciiCipher(settings.EncKey).Encrypt),
	)
	result, err := auditor.RunDailyAudit(ctx, auditDate)
	if err != nil {
		config.LogError(logger, "DailyAudit", "main", "audit failed", auditDate, err)
		return 1
	}
	// The file sink writes summary.json only when it is part of the run.
	if !config.AuditSinkEnabled(config.SinkFile) {
		if err := mismatchlog.WriteSummary(fileSink.Dir(), result.Summary); err != nil {
			config.LogError(logger, "DailyAudit", "main", "writing summary", auditDate, err)
		}
	}

	if *writeReport {
		path, err := reports.WriteMismatchWorkbook(fileSink.Dir(), auditDate, time.Now().In(settings.Location()))
		if err != nil {
			config.LogError(logger, "DailyAudit", "main", "rendering report", auditDate, err)
		} else {
			logger.WithFields(logrus.Fields{"field": "DailyAudit", "report": path}).Info("report written")
		}
	}

	if *upload {
		objects, err := utils.UploadAuditFolder(ctx, settings.GCSBucket, fileSink.Dir(), "audits/"+auditDate)
		if err != nil {
			config.LogError(logger, "DailyAudit", "main", "uploading audit folder", auditDate, err)
		} else {
			logger.WithFields(logrus.Fields{"field": "DailyAudit", "objects": len(objects)}).Info("audit folder uploaded")
		}
	}

	if *publish {
		id, err := config.PublishAuditSummary(ctx, settings.PubSubTopic, result.SummaryMessage())
		if err != nil {
			config.LogError(logger, "DailyAudit", "main", "publishing summary", auditDate, err)
		} else {
			logger.WithFields(logrus.Fields{"field": "DailyAudit", "message_id": id}).Info("summary published")
		}
	}

	fmt.Printf("audit %s finished: %d mismatch(es)\n", auditDate, result.Summary.Total)
	return 0
}

// openStore picks the fixture snapshot or the live POS database and locks the audit date.
func openStore(ctx context.Context, s *config.Settings, fixture, date string) (docstore.Store, string, error) {
	auditDate := utils.FormatDate(time.Now(), s.Location())

	if fixture != "" {
		store, meta, err := docstore.LoadFixtureFile(fixture)
		if err != nil {
			return nil, "", err
		}
		if meta.AuditDate != "" {
			auditDate = meta.AuditDate
		}
		if date != "" {
			auditDate = date
		}
		auditDate, err = utils.ParseAuditDate(auditDate)
		return store, auditDate, err
	}

	if date != "" {
		var err error
		if auditDate, err = utils.ParseAuditDate(date); err != nil {
			return nil, "", err
		}
	}
	db, err := config.ConnectMongoWithRetry(ctx, s)
	if err != nil {
		return nil, "", err
	}
	return docstore.NewMongoStore(db), auditDate, nil
}
