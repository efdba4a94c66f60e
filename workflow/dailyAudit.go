package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nagatech/daily_audit/config"
	"github.com/nagatech/daily_audit/docstore"
	"github.com/nagatech/daily_audit/mismatchlog"
	"github.com/nagatech/daily_audit/models"
	"github.com/nagatech/daily_audit/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type validatorFunc func(ctx context.Context, d *domainAudit) error

var validators = map[string]validatorFunc{
	models.DomainDestruction:   auditDestructions,
	models.DomainTransfer:      auditTransfers,
	models.DomainService:       auditServices,
	models.DomainOrder:         auditOrders,
	models.DomainDebt:          auditDebts,
	models.DomainConsignment:   auditConsignments,
	models.DomainSale:          auditSales,
	models.DomainPurchase:      auditPurchases,
	models.DomainStockAddition: auditStockAdditions,
}

type AuditResult struct {
	Run        models.AuditRun `json:"run"`
	Summary    models.Summary  `json:"summary"`
	FinishedAt time.Time       `json:"finished_at"`
}

// SummaryMessage is the pub/sub notification of the run.
func (r AuditResult) SummaryMessage() config.AuditSummaryMessage {
	return config.AuditSummaryMessage{
		AuditDate:     r.Run.AuditDate,
		SystemDate:    r.Run.SystemDate,
		IsClosedStore: r.Run.IsClosedStore,
		CorrelationId: r.Run.CorrelationId,
		Counts:        r.Summary.Counts,
		Total:         r.Summary.Total,
		FinishedAt:    r.FinishedAt,
	}
}

// SelectDomains keeps the run order and drops the domains enabled rejects. A nil enabled
// keeps all of them.
func SelectDomains(enabled func(string) bool) []string {
	out := make([]string, 0, len(models.AuditDomains))
	for _, domain := range models.AuditDomains {
		if enabled == nil || enabled(domain) {
			out = append(out, domain)
		}
	}
	return out
}

// ResolveAuditRun reads the store's business date from tp_system and locks the run context.
func ResolveAuditRun(ctx context.Context, store docstore.Store, auditDate string, now time.Time) (models.AuditRun, error) {
	info, err := docstore.FindOne[models.SystemInfo](ctx, store, models.CollectionSystem, docstore.Query{})
	if err != nil {
		return models.AuditRun{}, fmt.Errorf("read system date: %w", err)
	}
	systemDate := ""
	if info != nil {
		systemDate = info.SystemDate
	}

	cid, ok := utils.GetCorrelationIdFromContext(ctx)
	if !ok || cid == "" {
		cid = uuid.NewString()
	}
	return models.NewAuditRun(auditDate, systemDate, cid, now), nil
}

// Run executes the validators of domains one after the other. Mismatches never stop the run;
// a store or sink failure does and is returned as is.
func (a *Auditor) Run(ctx context.Context, run models.AuditRun, domains []string) (AuditResult, error) {
	ctx = utils.SetAuditDateInContext(ctx, run.AuditDate)
	ctx = utils.SetCorrelationIdInContext(ctx, run.CorrelationId)

	logger := a.logger.WithFields(logrus.Fields{
		"field":           "DailyAudit",
		"audit_date":      run.AuditDate,
		"system_date":     run.SystemDate,
		"is_closed_store": run.IsClosedStore,
		"correlation_id":  run.CorrelationId,
	})
	logger.Info("audit started")

	counts := make(map[string]int, len(domains))
	for i, domain := range domains {
		validate, ok := validators[domain]
		if !ok {
			return AuditResult{}, fmt.Errorf("unknown audit module %q", domain)
		}

		n, err := a.runDomain(ctx, run, domain, validate)
		if err != nil {
			config.LogError(a.logger, "DailyAudit", "Run", domain, run, err)
			return AuditResult{}, fmt.Errorf("audit %s: %w", domain, err)
		}
		counts[domain] = n
		logger.WithFields(logrus.Fields{
			"module":     domain,
			"progress":   fmt.Sprintf("%d/%d", i+1, len(domains)),
			"mismatches": n,
		}).Info("module done")
	}

	result := AuditResult{Run: run, Summary: models.NewSummary(counts), FinishedAt: a.now()}
	if recorder, ok := a.sink.(mismatchlog.RunRecorder); ok {
		if err := recorder.RecordRun(ctx, run, result.Summary, result.FinishedAt); err != nil {
			return AuditResult{}, fmt.Errorf("record run: %w", err)
		}
	}
	logger.WithField("total_mismatch", result.Summary.Total).Info("audit finished")
	return result, nil
}

func (a *Auditor) runDomain(ctx context.Context, run models.AuditRun, domain string, validate validatorFunc) (int, error) {
	ctx, span := a.tracer.Start(ctx, "audit."+domain, trace.WithAttributes(
		attribute.String("audit.domain", domain),
		attribute.String("audit.date", run.AuditDate),
		attribute.Bool("audit.closed_store", run.IsClosedStore),
	))
	defer span.End()

	d := a.newDomainAudit(domain, run)
	if err := validate(ctx, d); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return d.count, err
	}
	span.SetAttributes(attribute.Int("audit.mismatches", d.count))
	return d.count, nil
}

// RunDailyAudit resolves the run context for auditDate and audits the enabled modules.
func (a *Auditor) RunDailyAudit(ctx context.Context, auditDate string) (AuditResult, error) {
	run, err := ResolveAuditRun(ctx, a.store, auditDate, a.now())
	if err != nil {
		return AuditResult{}, err
	}
	return a.Run(ctx, run, SelectDomains(config.AuditModuleEnabled))
}
