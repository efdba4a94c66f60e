// Package mismatchlog persists the mismatches an audit run emits.
package mismatchlog

import (
	"context"
	"errors"
	"time"

	"github.com/nagatech/daily_audit/models"
)

var ErrEmptyDomain = errors.New("mismatchlog: mismatch has no domain")

// Sink receives mismatches one at a time. An error means the mismatch was not stored and the
// run cannot be trusted.
type Sink interface {
	Emit(ctx context.Context, m models.Mismatch) error
}

// RunRecorder is implemented by sinks that also keep one record per finished run.
type RunRecorder interface {
	RecordRun(ctx context.Context, run models.AuditRun, summary models.Summary, finishedAt time.Time) error
}

// MultiSink fans every call out to all sinks and stops at the first failure.
type MultiSink []Sink

func NewMultiSink(sinks ...Sink) MultiSink {
	out := make(MultiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (ms MultiSink) Emit(ctx context.Context, m models.Mismatch) error {
	for _, s := range ms {
		if err := s.Emit(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (ms MultiSink) RecordRun(ctx context.Context, run models.AuditRun, summary models.Summary, finishedAt time.Time) error {
	for _, s := range ms {
		if r, ok := s.(RunRecorder); ok {
			if err := r.RecordRun(ctx, run, summary, finishedAt); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkDomain(m models.Mismatch) error {
	if m.Domain == "" {
		return ErrEmptyDomain
	}
	return nil
}
