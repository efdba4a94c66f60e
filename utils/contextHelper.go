package utils

import (
	"context"

	"github.com/nagatech/daily_audit/appctx"
)

var (
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
	ContextKeyAuditDate     = appctx.ContextKeyAuditDate
)

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func GetAuditDateFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyAuditDate)
}

func SetAuditDateInContext(ctx context.Context, auditDate string) context.Context {
	return appctx.Set(ctx, ContextKeyAuditDate, auditDate)
}
