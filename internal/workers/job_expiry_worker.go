package workers

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"talent2income_backend/internal/logger"
)

const DefaultJobExpirySpec = "@every 10m"

// JobExpirer - JobService.ExpireOverdue
type JobExpirer interface {
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
}

// JobExpiryWorker переводит открытые задания с истекшим дедлайном в expired.
// Переход идет через общую таблицу переходов, поэтому гонка с ручным назначением безопасна.
type JobExpiryWorker struct {
	jobs  JobExpirer
	spec  string
	nowFn func() time.Time
}

func NewJobExpiryWorker(jobs JobExpirer, spec string) *JobExpiryWorker {
	if spec == "" {
		spec = DefaultJobExpirySpec
	}
	return &JobExpiryWorker{jobs: jobs, spec: spec, nowFn: func() time.Time { return time.Now().UTC() }}
}

// Run блокируется до отмены ctx; текущий прогон дожидается завершения
func (w *JobExpiryWorker) Run(ctx context.Context) error {
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{}),
		cron.SkipIfStillRunning(cronLogger{}),
	))
	if _, err := c.AddFunc(w.spec, func() { w.RunOnce(ctx) }); err != nil {
		return err
	}

	c.Start()
	logger.Info("Job expiry worker started", "spec", w.spec)

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("Job expiry worker stopped")
	return nil
}

// RunOnce - один проход, возвращает число истекших заданий
func (w *JobExpiryWorker) RunOnce(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}
	ctx = logger.WithAttrs(ctx, "worker", "job_expiry")
	n, err := w.jobs.ExpireOverdue(ctx, w.nowFn())
	if err != nil {
		logger.WorkerLog("job_expiry", "run", err)
		return n
	}
	if n > 0 {
		logger.CtxInfo(ctx, "Expired overdue jobs", "count", n)
	}
	return n
}

// cronLogger - адаптер cron.Logger поверх slog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.WorkerLog("cron", msg, err, keysAndValues...)
}
