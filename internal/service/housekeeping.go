// internal/service/housekeeping.go
package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/unclebandit/promo-dashboard/internal/logging"
	"github.com/unclebandit/promo-dashboard/internal/metrics"
)

// MessageJanitor is the part of the message store housekeeping needs.
type MessageJanitor interface {
	DatabaseSizeBytes(ctx context.Context) (int64, error)
	DeleteOldest(ctx context.Context, n int) (int64, error)
}

// Housekeeper keeps the database under a size ceiling by pruning the
// oldest inbound messages. At most one pass runs at a time.
type Housekeeper struct {
	Store       MessageJanitor
	MaxBytes    int64
	DeleteBatch int
	Timeout     time.Duration

	running atomic.Bool
}

func NewHousekeeper(store MessageJanitor, maxMB int64, deleteBatch int) *Housekeeper {
	return &Housekeeper{
		Store:       store,
		MaxBytes:    maxMB * 1024 * 1024,
		DeleteBatch: deleteBatch,
		Timeout:     30 * time.Second,
	}
}

// Run performs one pass and returns how many messages were deleted. A pass
// requested while another is running is skipped and reports zero.
func (h *Housekeeper) Run(ctx context.Context) (int64, error) {
	if !h.running.CompareAndSwap(false, true) {
		return 0, nil
	}
	defer h.running.Store(false)

	size, err := h.Store.DatabaseSizeBytes(ctx)
	if err != nil {
		return 0, err
	}
	if size <= h.MaxBytes {
		return 0, nil
	}

	deleted, err := h.Store.DeleteOldest(ctx, h.DeleteBatch)
	if err != nil {
		return 0, err
	}
	metrics.HousekeepingDeleted.Add(float64(deleted))
	logging.Info().Int64("size_bytes", size).Int64("deleted", deleted).Msg("pruned oldest messages")
	return deleted, nil
}

// Trigger starts a pass in the background.
func (h *Housekeeper) Trigger() {
	go h.runLogged()
}

// Schedule registers a recurring pass on c.
func (h *Housekeeper) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, h.runLogged)
}

func (h *Housekeeper) runLogged() {
	ctx := context.Background()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}
	if _, err := h.Run(ctx); err != nil {
		logging.Error().Err(err).Msg("housekeeping failed")
	}
}
