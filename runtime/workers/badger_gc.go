package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerGCWorker periodically reclaims space from Badger's value log.
// badger.ErrNoRewrite just means there was nothing worth rewriting.
type BadgerGCWorker struct {
	log      *slog.Logger
	db       *badger.DB
	interval time.Duration
}

func NewBadgerGCWorker(log *slog.Logger, db *badger.DB, interval time.Duration) *BadgerGCWorker {
	return &BadgerGCWorker{log: log, db: db, interval: interval}
}

func (w *BadgerGCWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := w.db.RunValueLogGC(0.5)
			switch err {
			case nil:
				w.log.Debug("value log GC reclaimed space")
			case badger.ErrNoRewrite:
			default:
				w.log.Warn("value log GC failed", "error", err)
			}
		}
	}
}
