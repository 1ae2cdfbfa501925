package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type ledgerCleanupRepository interface {
	RemoveOld(ctx context.Context, expirationTime time.Time) (int64, error)
}

// LedgerCleaner purges processed-job rows older than the expiration window so
// reposted jobs become eligible for outreach again.
type LedgerCleaner struct {
	ledger           ledgerCleanupRepository
	cron             *cron.Cron
	expirationInDays int
}

func NewLedgerCleaner(ledger ledgerCleanupRepository, expirationInDays int) (*LedgerCleaner, error) {

	if expirationInDays <= 0 {
		return nil, errors.New("expiration in days must be greater than zero")
	}

	lc := &LedgerCleaner{
		ledger:           ledger,
		cron:             cron.New(),
		expirationInDays: expirationInDays,
	}

	_, err := lc.cron.AddFunc("0 0 * * *", lc.cleanOldEntries)
	if err != nil {
		return nil, err
	}

	lc.cron.Start()
	log.Infof("ledger cleaner started, expiration in days: %d", lc.expirationInDays)
	return lc, nil
}

func (lc *LedgerCleaner) Stop() {
	lc.cron.Stop()
}

func (lc *LedgerCleaner) cleanOldEntries() {
	expirationTime := time.Now().Add(-time.Duration(lc.expirationInDays) * 24 * time.Hour)
	rowsAffected, err := lc.ledger.RemoveOld(context.Background(), expirationTime)
	if err != nil {
		log.Errorf("failed to clean old ledger entries: %v", err)
	} else {
		log.Infof("old ledger entries cleaned at %v, affected rows: %v", time.Now(), rowsAffected)
	}
}
