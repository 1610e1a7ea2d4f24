package wallet

import (
	"fmt"
	"time"

	"portafoglio/internal/core"
	"portafoglio/internal/log"
)

// Scheduler materializes recurring templates into concrete wallet
// transactions. Process is synchronous and idempotent with respect to each
// template's LastMaterialized date: running it twice without time
// advancing produces nothing new.
type Scheduler struct {
	manager   *Manager
	templates []*core.RecurringTransaction // insertion order
	byID      map[string]*core.RecurringTransaction
	logger    *log.Logger

	// MaxBackfill caps occurrences materialized per template per pass so
	// a long-dormant rule cannot flood a wallet in one call.
	MaxBackfill int
}

func newScheduler(m *Manager, logger *log.Logger) *Scheduler {
	return &Scheduler{
		manager:     m,
		byID:        make(map[string]*core.RecurringTransaction),
		logger:      logger.WithComponent("scheduler"),
		MaxBackfill: 1000,
	}
}

// Add registers a recurring template.
func (s *Scheduler) Add(rt *core.RecurringTransaction) {
	s.templates = append(s.templates, rt)
	s.byID[rt.ID] = rt
	s.logger.Info("recurring template added",
		"id", rt.ID, "wallet", rt.WalletName, "pattern", rt.Rule.Describe())
}

// Templates returns all templates in insertion order, exhausted ones
// included so they stay listable and editable.
func (s *Scheduler) Templates() []*core.RecurringTransaction {
	return append([]*core.RecurringTransaction(nil), s.templates...)
}

// ByIndex returns the template at the given listing position.
func (s *Scheduler) ByIndex(i int) (*core.RecurringTransaction, error) {
	if i < 0 || i >= len(s.templates) {
		return nil, fmt.Errorf("%w: recurring transaction #%d", core.ErrNotFound, i)
	}
	return s.templates[i], nil
}

// Remove deletes the template at the given listing position.
func (s *Scheduler) Remove(i int) error {
	rt, err := s.ByIndex(i)
	if err != nil {
		return err
	}
	s.templates = append(s.templates[:i], s.templates[i+1:]...)
	delete(s.byID, rt.ID)
	return nil
}

// RemoveForWallet drops every template targeting the named wallet,
// returning how many were removed.
func (s *Scheduler) RemoveForWallet(name string) int {
	kept := s.templates[:0]
	removed := 0
	for _, rt := range s.templates {
		if rt.WalletName == name {
			delete(s.byID, rt.ID)
			removed++
			continue
		}
		kept = append(kept, rt)
	}
	s.templates = kept
	return removed
}

// Process materializes, for every active template, each occurrence that is
// due (strictly after LastMaterialized, not after now) as its own dated
// transaction, oldest first. Missed cycles back-fill exactly once each;
// they are never collapsed or duplicated. Returns how many transactions
// were created.
func (s *Scheduler) Process(now time.Time) int {
	total := 0
	for _, rt := range s.templates {
		if !rt.Active {
			continue
		}
		w, err := s.manager.Wallet(rt.WalletName)
		if err != nil {
			s.logger.Warn("recurring template targets missing wallet", "id", rt.ID, "wallet", rt.WalletName)
			continue
		}
		generated := 0
		for _, due := range rt.Due(now) {
			if generated >= s.MaxBackfill {
				s.logger.Warn("backfill cap reached", "id", rt.ID, "cap", s.MaxBackfill)
				break
			}
			if rt.Skipped(due) {
				// Skipped dates still advance the cursor; they were
				// handled, just not materialized.
				rt.LastMaterialized = due
				continue
			}
			if _, err := w.Add(rt.Spawn(due)); err != nil {
				// Deposit floor can reject an expense occurrence. Leave
				// the cursor so the next pass retries from here.
				s.logger.Warn("occurrence rejected by wallet",
					"id", rt.ID, "wallet", w.Name, "date", due.Format("2006-01-02"), "error", err)
				break
			}
			rt.LastMaterialized = due
			rt.GeneratedCount++
			generated++
			total++
		}
		if generated > 0 {
			s.logger.Info("materialized occurrences",
				"id", rt.ID, "wallet", w.Name, "count", generated,
				"last", rt.LastMaterialized.Format("2006-01-02"))
		}
	}
	return total
}
