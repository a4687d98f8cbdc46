package scheduler

import (
	"log"
	"time"
)

// EntityType tags the feature an adapter schedules for. The value doubles
// as the key prefix used by that adapter.
type EntityType string

const (
	EntityTempBan      EntityType = "ban"
	EntityTempRole     EntityType = "role"
	EntityGiveaway     EntityType = "giveaway"
	EntityTicketDelete EntityType = "ticket-delete"
)

// PendingExpiry is one persisted timed effect an adapter wants re-armed
// after a restart.
type PendingExpiry struct {
	Key       string
	ExpiresAt time.Time
	Action    func()
}

// Adapter is implemented by every feature that persists expiry records.
// Pending returns the full cross-guild set of records the adapter owns,
// already filtered of subjects that can no longer be resolved (member
// left, role deleted); those are terminal and silently dropped, never an
// error.
type Adapter interface {
	Type() EntityType
	Pending() ([]PendingExpiry, error)
}

// Reconcile rebuilds the registry from every adapter's persisted records.
// It runs once per process start, after the registry exists and before
// command traffic. Overdue records still go through Create with a zero
// delay so the normal detach-then-run path is the only place actions are
// ever invoked; there is no separate catch-up path. One adapter failing
// never aborts the others.
func Reconcile(reg *Registry, adapters ...Adapter) {
	for _, a := range adapters {
		pending, err := a.Pending()
		if err != nil {
			log.Printf("[Scheduler] Reconciliation for %s failed, skipping: %v", a.Type(), err)
			continue
		}

		now := reg.Now()
		for _, p := range pending {
			reg.Create(p.Key, p.ExpiresAt.Sub(now), p.Action)
		}
		log.Printf("[Scheduler] Reconciled %d pending %s timer(s)", len(pending), a.Type())
	}
}
