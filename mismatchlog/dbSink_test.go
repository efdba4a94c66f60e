package mismatchlog

import (
	"context"
	"fmt"
	"testing"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/nagatech/daily_audit/models"
	"github.com/nagatech/daily_audit/utils"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// lazyDB never dials; Emit must not touch the database.
func lazyDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "audit:audit@tcp(127.0.0.1:1)/daily_audit?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DisableAutomaticPing: true, Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open lazy db: %v", err)
	}
	return db
}

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"duplicate", &mysqlDriver.MySQLError{Number: 1062, Message: "Duplicate entry"}, true},
		{"wrapped duplicate", fmt.Errorf("insert run: %w", &mysqlDriver.MySQLError{Number: 1062}), true},
		{"other mysql error", &mysqlDriver.MySQLError{Number: 1146}, false},
		{"plain error", fmt.Errorf("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isDuplicateKeyErr(tc.err); got != tc.want {
				t.Fatalf("isDuplicateKeyErr(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestDBSink_Emit_HoldsRowsUntilRecordRun(t *testing.T) {
	sink, err := NewDBSink(lazyDB(t))
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	ctx := utils.SetAuditDateInContext(context.Background(), "2024-05-01")
	ctx = utils.SetCorrelationIdInContext(ctx, "cid-1")

	for i := 0; i < 2; i++ {
		if err := sink.Emit(ctx, mismatch(models.DomainSale, "cash entry not found")); err != nil {
			t.Fatalf("emit: %v", err)
		}
	}
	if sink.Pending() != 2 {
		t.Fatalf("expected 2 pending rows, got %d", sink.Pending())
	}
	if err := sink.Emit(ctx, models.Mismatch{Reason: "no domain"}); err != ErrEmptyDomain {
		t.Fatalf("expected ErrEmptyDomain, got %v", err)
	}
	if sink.Pending() != 2 {
		t.Fatalf("rejected mismatch must not be held, got %d", sink.Pending())
	}
}
