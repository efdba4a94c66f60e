package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/nagatech/daily_audit/config"
	"github.com/sirupsen/logrus"
)

var ErrAuditLocked = errors.New("an audit for this date is already running")

const DefaultAuditLockTTL = 10 * time.Minute

// localAuditLocks holds one *sync.Mutex per audit date for runs inside this process.
var localAuditLocks sync.Map

func auditLockKey(auditDate string) string {
	return fmt.Sprintf("lock:audit:%s", auditDate)
}

func tryLocalAuditLock(auditDate string) (func(), bool) {
	v, _ := localAuditLocks.LoadOrStore(auditDate, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	if !mu.TryLock() {
		return nil, false
	}
	return mu.Unlock, true
}

// AcquireAuditLock keeps two runs from auditing the same date at once. Runs in this process are
// always serialized per date; with redis the lock also holds across instances and is refreshed
// every ttl/2 until release.
func AcquireAuditLock(ctx context.Context, locker *redislock.Client, auditDate string, ttl time.Duration) (func(), error) {
	logger := config.GetLogger()
	unlockLocal, ok := tryLocalAuditLock(auditDate)
	if !ok {
		return nil, ErrAuditLocked
	}
	if locker == nil {
		logger.WithFields(logrus.Fields{
			"field":      "AcquireAuditLock",
			"audit_date": auditDate,
		}).Warn("redis lock not ready; only runs in this process are serialized")
		var once sync.Once
		return func() { once.Do(unlockLocal) }, nil
	}
	if ttl <= 0 {
		ttl = DefaultAuditLockTTL
	}

	lock, err := locker.Obtain(ctx, auditLockKey(auditDate), ttl, nil)
	if err == redislock.ErrNotObtained {
		unlockLocal()
		return nil, ErrAuditLocked
	} else if err != nil {
		unlockLocal()
		config.LogError(logger, "DailyAudit", "AcquireAuditLock", "error obtaining redis lock", auditDate, err)
		return nil, err
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(ttl / 2)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := lock.Refresh(context.Background(), ttl, nil); err != nil {
					config.LogError(logger, "DailyAudit", "AcquireAuditLock", "error refreshing redis lock", auditDate, err)
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			// The run context may already be cancelled; the lock still has to go.
			if releaseErr := lock.Release(context.Background()); releaseErr != nil && releaseErr != redislock.ErrLockNotHeld {
				config.LogError(logger, "DailyAudit", "AcquireAuditLock", "error releasing redis lock", auditDate, releaseErr)
			}
			unlockLocal()
		})
	}, nil
}
