package mismatchlog

import (
	"context"
	"sync"

	"github.com/nagatech/daily_audit/models"
)

// Recorder keeps mismatches in memory.
type Recorder struct {
	mu         sync.Mutex
	mismatches []models.Mismatch
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(_ context.Context, m models.Mismatch) error {
	if err := checkDomain(m); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mismatches = append(r.mismatches, m)
	return nil
}

func (r *Recorder) Mismatches() []models.Mismatch {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Mismatch, len(r.mismatches))
	copy(out, r.mismatches)
	return out
}

func (r *Recorder) ByDomain(domain string) []models.Mismatch {
	var out []models.Mismatch
	for _, m := range r.Mismatches() {
		if m.Domain == domain {
			out = append(out, m)
		}
	}
	return out
}

func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.mismatches)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mismatches = nil
}
