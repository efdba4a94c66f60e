package mismatchlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nagatech/daily_audit/models"
)

type failingSink struct{ err error }

func (f failingSink) Emit(context.Context, models.Mismatch) error { return f.err }

type runCounter struct {
	Recorder
	runs int
}

func (r *runCounter) RecordRun(context.Context, models.AuditRun, models.Summary, time.Time) error {
	r.runs++
	return nil
}

func TestMultiSink_FansOutAndStopsOnFailure(t *testing.T) {
	first, second := NewRecorder(), NewRecorder()
	ms := NewMultiSink(first, nil, second)
	if err := ms.Emit(context.Background(), mismatch(models.DomainSale, "x")); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if first.Count() != 1 || second.Count() != 1 {
		t.Fatalf("expected both sinks to receive the mismatch")
	}

	boom := errors.New("disk full")
	third := NewRecorder()
	ms = NewMultiSink(failingSink{err: boom}, third)
	if err := ms.Emit(context.Background(), mismatch(models.DomainSale, "x")); !errors.Is(err, boom) {
		t.Fatalf("expected the sink error, got %v", err)
	}
	if third.Count() != 0 {
		t.Fatalf("sinks after a failure must not be called")
	}
}

func TestMultiSink_RecordRunReachesRecorders(t *testing.T) {
	rc := &runCounter{}
	ms := NewMultiSink(NewRecorder(), rc)
	if err := ms.RecordRun(context.Background(), models.AuditRun{}, models.Summary{}, time.Now()); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if rc.runs != 1 {
		t.Fatalf("expected one recorded run, got %d", rc.runs)
	}
}

func TestRecorder_ByDomainAndReset(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()
	_ = r.Emit(ctx, mismatch(models.DomainSale, "a"))
	_ = r.Emit(ctx, mismatch(models.DomainDebt, "b"))

	if got := r.ByDomain(models.DomainDebt); len(got) != 1 || got[0].Reason != "b" {
		t.Fatalf("unexpected debt mismatches: %+v", got)
	}
	r.Reset()
	if r.Count() != 0 {
		t.Fatalf("expected an empty recorder after reset")
	}
	if err := r.Emit(ctx, models.Mismatch{}); !errors.Is(err, ErrEmptyDomain) {
		t.Fatalf("expected ErrEmptyDomain, got %v", err)
	}
}
