package worker

import (
	"context"
	"time"

	"taskManager/internal/logger"

	"go.uber.org/zap"
)

const (
	defaultInterval  = time.Hour
	defaultBatchSize = 100
)

// Refresher пересчитывает уведомления для одной страницы активных задач
type Refresher interface {
	RefreshNotifications(ctx context.Context, page, limit int) (checked, refreshed int, err error)
}

// NotificationWorker держит сохранённое число дней до дедлайна в согласии с календарём
type NotificationWorker struct {
	refresher Refresher
	interval  time.Duration
	batchSize int
}

func NewNotificationWorker(refresher Refresher, interval time.Duration, batchSize int) *NotificationWorker {
	if interval <= 0 {
		interval = defaultInterval
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &NotificationWorker{
		refresher: refresher,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Start делает проход сразу и затем раз в interval до отмены ctx
func (w *NotificationWorker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Check(ctx)
	for {
		select {
		case <-ticker.C:
			logger.Info("Worker: Фоновый пересчёт уведомлений", zap.Time("started_at", time.Now()))
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновый пересчёт останавливается")
			return nil
		}
	}
}

// Check один раз проходит по всем страницам активных задач
func (w *NotificationWorker) Check(ctx context.Context) {
	start := time.Now()
	checkedTotal, refreshedTotal := 0, 0

	for page := 1; ctx.Err() == nil; page++ {
		checked, refreshed, err := w.refresher.RefreshNotifications(ctx, page, w.batchSize)
		if err != nil {
			logger.Warn("Worker: ошибка пересчёта уведомлений", zap.Int("page", page), zap.Error(err))
			break
		}
		checkedTotal += checked
		refreshedTotal += refreshed

		if checked < w.batchSize {
			break
		}
	}

	logger.Info(
		"Worker: Завершение пересчёта уведомлений",
		zap.Duration("ms", time.Since(start)),
		zap.Int("checked", checkedTotal),
		zap.Int("refreshed", refreshedTotal),
	)
}
