package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"gepay-web/internal/models"
)

type TransactionLister interface {
	ListTransactions(ctx context.Context, userID int64) (*models.TransactionsResponse, error)
}

// StatusWatcher polls the transactions function until a transaction reaches
// a terminal status, reporting every status change it observes.
type StatusWatcher struct {
	api      TransactionLister
	interval time.Duration
	timeout  time.Duration
}

func NewStatusWatcher(api TransactionLister, interval, timeout time.Duration) *StatusWatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &StatusWatcher{api: api, interval: interval, timeout: timeout}
}

// Watch returns the last observed snapshot. It returns ctx.Err() when the
// context ends or the timeout passes before a terminal status is seen.
func (w *StatusWatcher) Watch(ctx context.Context, userID int64, tx *models.Transaction, onChange func(*models.Transaction)) (*models.Transaction, error) {
	if tx.Status.IsTerminal() {
		return tx, nil
	}

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	last := tx
	for {
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-ticker.C:
		}

		resp, err := w.api.ListTransactions(ctx, userID)
		if err != nil {
			log.Warn().Err(err).Int64("transaction_id", tx.ID).Msg("Status poll failed")
			continue
		}

		current := findTransaction(resp.Transactions, tx.ID)
		if current == nil {
			continue
		}

		if current.Status != last.Status {
			onChange(current)
		}
		last = current

		if current.Status.IsTerminal() {
			return current, nil
		}
	}
}

func findTransaction(transactions []models.Transaction, id int64) *models.Transaction {
	for i := range transactions {
		if transactions[i].ID == id {
			return &transactions[i]
		}
	}
	return nil
}
