package models

import "time"

// Domains in the order a daily run visits them.
const (
	DomainDestruction   = "hancurbarang"
	DomainTransfer      = "pindahbarang"
	DomainService       = "service"
	DomainOrder         = "pesanan"
	DomainDebt          = "hutang"
	DomainConsignment   = "titipan"
	DomainSale          = "penjualan"
	DomainPurchase      = "pembelian"
	DomainStockAddition = "tambahbarang"
)

var AuditDomains = []string{
	DomainDestruction,
	DomainTransfer,
	DomainService,
	DomainOrder,
	DomainDebt,
	DomainConsignment,
	DomainSale,
	DomainPurchase,
	DomainStockAddition,
}

// AuditRun is fixed before the first validator runs and is only ever passed by value.
type AuditRun struct {
	AuditDate     string    `json:"audit_date"`
	SystemDate    string    `json:"system_date"`
	IsClosedStore bool      `json:"is_closed_store"`
	CorrelationId string    `json:"correlation_id"`
	StartedAt     time.Time `json:"started_at"`
}

// NewAuditRun locks the audit date. An empty systemDate (no tp_system row) means the store is
// still trading on the audit date.
func NewAuditRun(auditDate, systemDate, correlationId string, startedAt time.Time) AuditRun {
	if systemDate == "" {
		systemDate = auditDate
	}
	return AuditRun{
		AuditDate:     auditDate,
		SystemDate:    systemDate,
		IsClosedStore: systemDate != auditDate,
		CorrelationId: correlationId,
		StartedAt:     startedAt,
	}
}
