package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/nagatech/daily_audit/config"
	"github.com/nagatech/daily_audit/docstore"
	"github.com/nagatech/daily_audit/mismatchlog"
	"github.com/nagatech/daily_audit/models"
	"github.com/nagatech/daily_audit/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "daily-audit"

// Auditor runs the domain validators against one document store and reports every
// divergence to a sink. It keeps no state between runs.
type Auditor struct {
	store  docstore.Store
	sink   mismatchlog.Sink
	encode func(string) string
	logger *logrus.Logger
	now    func() time.Time
	tracer trace.Tracer
}

type AuditorOption func(*Auditor)

// WithEncoder sets the transform applied to payment methods before some cash lookups.
func WithEncoder(encode func(string) string) AuditorOption {
	return func(a *Auditor) { a.encode = encode }
}

func WithLogger(logger *logrus.Logger) AuditorOption {
	return func(a *Auditor) { a.logger = logger }
}

// WithClock fixes the mismatch timestamps, mostly for tests.
func WithClock(now func() time.Time) AuditorOption {
	return func(a *Auditor) { a.now = now }
}

func NewAuditor(store docstore.Store, sink mismatchlog.Sink, opts ...AuditorOption) *Auditor {
	a := &Auditor{
		store:  store,
		sink:   sink,
		encode: utils.NewAsciiCipher(config.DefaultEncKey).Encrypt,
		logger: config.GetLogger(),
		now:    time.Now,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logrus.StandardLogger()
	}
	return a
}

// domainAudit is the state of one validator over one run.
type domainAudit struct {
	*Auditor
	domain string
	run    models.AuditRun
	ledger BalanceLedger
	cash   CashValidator
	count  int
}

func (a *Auditor) newDomainAudit(domain string, run models.AuditRun) *domainAudit {
	d := &domainAudit{
		Auditor: a,
		domain:  domain,
		run:     run,
		ledger:  NewBalanceLedger(a.store, run),
	}
	d.cash = CashValidator{store: a.store, emit: d.emit}
	return d
}

func (d *domainAudit) emit(ctx context.Context, m models.Mismatch) error {
	m.Domain = d.domain
	if m.Timestamp.IsZero() {
		m.Timestamp = d.now().UTC()
	}
	if err := d.sink.Emit(ctx, m); err != nil {
		return fmt.Errorf("emit %s mismatch: %w", d.domain, err)
	}
	d.count++
	return nil
}

// report emits a mismatch whose context is given as alternating key/value pairs.
func (d *domainAudit) report(ctx context.Context, m models.Mismatch, kv ...any) error {
	if len(kv) > 0 {
		m.Context = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			m.Context[fmt.Sprint(kv[i])] = kv[i+1]
		}
	}
	return d.emit(ctx, m)
}

func (d *domainAudit) date() string {
	return d.run.AuditDate
}

func (d *domainAudit) debug(msg string, fields logrus.Fields) {
	entry := d.logger.WithFields(logrus.Fields{
		"field":      "DailyAudit",
		"module":     d.domain,
		"audit_date": d.run.AuditDate,
	})
	entry.WithFields(fields).Debug(msg)
}
