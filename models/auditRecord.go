package models

import (
	"encoding/json"
	"time"
)

// AuditMismatchRecord is the relational copy of a Mismatch kept for reporting.
type AuditMismatchRecord struct {
	ID            int       `gorm:"primary_key" json:"id"`
	CorrelationId string    `gorm:"size:64;index" json:"correlation_id"`
	AuditDate     string    `gorm:"size:10;index;not null" json:"audit_date"`
	Domain        string    `gorm:"size:32;index;not null" json:"domain"`
	Reason        string    `gorm:"size:255;not null" json:"reason"`
	Payload       string    `gorm:"type:text" json:"payload"` // full mismatch as written to mismatch.json
	DetectedAt    time.Time `gorm:"not null" json:"detected_at"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AuditMismatchRecord) TableName() string {
	return "audit_mismatches"
}

// AuditRunRecord is one finished audit with its summary.
type AuditRunRecord struct {
	ID            int       `gorm:"primary_key" json:"id"`
	CorrelationId string    `gorm:"size:64;uniqueIndex;not null" json:"correlation_id"`
	AuditDate     string    `gorm:"size:10;index;not null" json:"audit_date"`
	SystemDate    string    `gorm:"size:10" json:"system_date"`
	IsClosedStore bool      `gorm:"not null;default:false" json:"is_closed_store"`
	TotalMismatch int       `gorm:"not null;default:0" json:"total_mismatch"`
	Counts        string    `gorm:"type:text" json:"counts"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AuditRunRecord) TableName() string {
	return "audit_runs"
}

func NewAuditMismatchRecord(run AuditRun, m Mismatch) (AuditMismatchRecord, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return AuditMismatchRecord{}, err
	}
	return AuditMismatchRecord{
		CorrelationId: run.CorrelationId,
		AuditDate:     run.AuditDate,
		Domain:        m.Domain,
		Reason:        m.Reason,
		Payload:       string(payload),
		DetectedAt:    m.Timestamp,
	}, nil
}

func NewAuditRunRecord(run AuditRun, summary Summary, finishedAt time.Time) (AuditRunRecord, error) {
	counts, err := json.Marshal(summary)
	if err != nil {
		return AuditRunRecord{}, err
	}
	return AuditRunRecord{
		CorrelationId: run.CorrelationId,
		AuditDate:     run.AuditDate,
		SystemDate:    run.SystemDate,
		IsClosedStore: run.IsClosedStore,
		TotalMismatch: summary.Total,
		Counts:        string(counts),
		StartedAt:     run.StartedAt,
		FinishedAt:    finishedAt,
	}, nil
}
