package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nagatech/daily_audit/config"
	"github.com/nagatech/daily_audit/docstore"
	"github.com/nagatech/daily_audit/mismatchlog"
	"github.com/nagatech/daily_audit/models"
	"github.com/nagatech/daily_audit/models/reports"
	"github.com/nagatech/daily_audit/utils"
	"github.com/nagatech/daily_audit/workflow"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("daily-audit-http")

// auditServer holds what the handlers share. store stays nil until the POS database is
// connected, and every audit endpoint answers 503 until then.
type auditServer struct {
	mu       sync.RWMutex
	settings *config.Settings
	store    docstore.Store
	logger   *logrus.Logger
	now      func() time.Time
}

func (s *auditServer) setStore(store docstore.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = store
}

func (s *auditServer) getStore() docstore.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

type runRequest struct {
	Date string `json:"date"`
}

func (s *auditServer) dateDir(date string) string {
	return mismatchlog.DateDir(s.settings.LogDir, date)
}

func (s *auditServer) runAuditHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "POST /audits/run")
		defer span.End()

		var req runRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		auditDate := utils.FormatDate(s.now(), s.settings.Location())
		if req.Date != "" {
			d, err := utils.ParseAuditDate(req.Date)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			auditDate = d
		}

		release, err := workflow.AcquireAuditLock(ctx, config.GetRedisLock(), auditDate, workflow.DefaultAuditLockTTL)
		if errors.Is(err, workflow.ErrAuditLocked) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "audit_date": auditDate})
			return
		} else if err != nil {
			c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not lock the audit date"})
			return
		}
		defer release()

		sink, fileSink, err := mismatchlog.OpenSinks(s.settings.LogDir, auditDate, config.GetDB(), s.logger)
		if err != nil {
			c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not open mismatch log"})
			return
		}

		auditor := workflow.NewAuditor(s.getStore(), sink,
			workflow.WithLogger(s.logger),
			workflow.WithEncoder(utils.NewAsciiCipher(s.settings.EncKey).Encrypt),
			workflow.WithClock(s.now),
		)
		result, err := auditor.RunDailyAudit(ctx, auditDate)
		if err != nil {
			c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "audit failed", "audit_date": auditDate})
			return
		}
		if !config.AuditSinkEnabled(config.SinkFile) {
			if err := mismatchlog.WriteSummary(fileSink.Dir(), result.Summary); err != nil {
				c.Error(err)
			}
		}
		if _, err := reports.WriteMismatchWorkbook(fileSink.Dir(), auditDate, s.now().In(s.settings.Location())); err != nil {
			c.Error(err)
		}
		if err := utils.RemoveRedis[models.Summary](ctx, auditDate); err != nil {
			c.Error(err)
		}
		c.JSON(http.StatusOK, result)
	}
}

func (s *auditServer) summaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		date, ok := s.bindDate(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		if cached, err := utils.RetrieveRedis[models.Summary](ctx, date); err == nil && cached != nil {
			c.JSON(http.StatusOK, cached)
			return
		}

		summary, err := mismatchlog.ReadSummary(s.dateDir(date))
		if errors.Is(err, os.ErrNotExist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no audit for this date", "audit_date": date})
			return
		} else if err != nil {
			c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read summary"})
			return
		}
		if err := utils.StoreRedis(ctx, date, summary); err != nil {
			c.Error(err)
		}
		c.JSON(http.StatusOK, summary)
	}
}

func (s *auditServer) mismatchesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		date, ok := s.bindDate(c)
		if !ok {
			return
		}
		list, err := mismatchlog.ReadMismatches(s.dateDir(date), c.Query("domain"))
		if errors.Is(err, mismatchlog.ErrInvalidDomain) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		} else if err != nil {
			c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read mismatches"})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func (s *auditServer) reportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		date, ok := s.bindDate(c)
		if !ok {
			return
		}
		dir := s.dateDir(date)
		if _, err := os.Stat(dir); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no audit for this date", "audit_date": date})
			return
		}
		c.Header("Content-Type", reports.ContentType)
		c.Header("Content-Disposition", "attachment; filename=audit-"+date+".xlsx")
		if err := reports.StreamMismatchWorkbook(c.Writer, dir, date, s.now().In(s.settings.Location())); err != nil {
			c.Error(err)
			c.Status(http.StatusInternalServerError)
		}
	}
}

func (s *auditServer) bindDate(c *gin.Context) (string, bool) {
	date, err := utils.ParseAuditDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return date, true
}

func (s *auditServer) router() *gin.Engine {
	r := gin.New()
	// Correlation IDs: generate once per request and attach to context.
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Header("x-correlation-id", cid)
		c.Next()
	})

	corsConfig := cors.DefaultConfig()
	if s.settings.IsProduction {
		corsConfig.AllowOrigins = s.settings.CorsOrigins
		if len(corsConfig.AllowOrigins) == 0 {
			corsConfig.AllowOrigins = []string{}
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "x-correlation-id")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", "x-correlation-id")
	r.Use(cors.New(corsConfig))

	r.Use(customErrorLogger(s.logger))
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	audits := r.Group("/audits")
	audits.POST("/run", func(c *gin.Context) {
		if s.getStore() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	}, s.runAuditHandler())
	audits.GET("/:date/summary", s.summaryHandler())
	audits.GET("/:date/mismatches", s.mismatchesHandler())
	audits.GET("/:date/report.xlsx", s.reportHandler())

	r.NoRoute(customNotFoundHandler)
	return r
}

// customErrorLogger is a custom Gin middleware that logs only errors
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only log when there are errors
		if len(c.Errors) > 0 {
			logger.WithFields(logrus.Fields{
				"field": "http",
				"path":  c.FullPath(),
			}).Error(c.Errors.String())
		}
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func main() {
	logger := config.GetLogger()
	settings, err := config.LoadSettings(false)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "settings"}).Fatal(err.Error())
	}
	if settings.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	app := &auditServer{settings: settings, logger: logger, now: time.Now}
	srv := &http.Server{
		Addr:    ":" + settings.Port,
		Handler: app.router(),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	db, err := config.ConnectMongoWithRetry(sigCtx, settings)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "mongo"}).Fatal(err.Error())
	}
	app.setStore(docstore.NewMongoStore(db))

	if settings.RedisAddress != "" {
		if err := config.ConnectRedis(sigCtx, settings); err != nil {
			logger.WithFields(logrus.Fields{"field": "redis"}).Warn("redis unavailable; audits run without lock or cache: " + err.Error())
		}
	}
	if config.AuditSinkEnabled(config.SinkDB) {
		if err := config.ConnectDatabaseWithRetry(); err != nil {
			logger.WithFields(logrus.Fields{"field": "database"}).Warn("report database unavailable; db sink disabled: " + err.Error())
		} else if err := models.MigrateTable(config.GetDB()); err != nil {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Error(err.Error())
		}
	}

	logger.WithFields(logrus.Fields{"field": "http", "port": settings.Port}).Info("daily audit server started")

	// Block until shutdown or server error.
	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
	_ = config.CloseRedis()
	_ = config.DisconnectMongo(shutdownCtx)
}
