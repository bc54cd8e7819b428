package purchases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"servetix/pkg/logger"

	"github.com/go-co-op/gocron/v2"
)

const sweepBatchSize = 100

// HoldSweeper periodically expires PENDING purchases whose hold ended.
// Several instances may run at once; SKIP LOCKED keeps them apart.
type HoldSweeper struct {
	service   Service
	interval  time.Duration
	scheduler gocron.Scheduler
}

func NewHoldSweeper(service Service, interval time.Duration) *HoldSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &HoldSweeper{service: service, interval: interval}
}

func (h *HoldSweeper) Start() error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create hold sweeper: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(h.interval),
		gocron.NewTask(h.Sweep),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule hold sweeper: %w", err)
	}

	h.scheduler = s
	s.Start()
	logger.GetDefault().Info("Hold sweeper started", slog.Duration("interval", h.interval))
	return nil
}

func (h *HoldSweeper) Stop() error {
	if h.scheduler == nil {
		return nil
	}
	return h.scheduler.Shutdown()
}

// Sweep drains expired holds batch by batch
func (h *HoldSweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), h.interval)
	defer cancel()

	total := 0
	for {
		n, err := h.service.ExpirePending(ctx, time.Now(), sweepBatchSize)
		if err != nil {
			logger.GetDefault().Error("Hold sweep failed", slog.Any("error", err))
			return
		}
		total += n
		if n < sweepBatchSize {
			break
		}
	}
	if total > 0 {
		logger.GetDefault().Info("Expired pending purchases", slog.Int("count", total))
	}
}
