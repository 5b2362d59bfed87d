package jobs

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"service-shop-delivery/internal/logx"
)

type replayer interface {
	Replay(ctx context.Context, limit int) (int, error)
}

// RedeliveryJob periodically re-dispatches dead-lettered notifications.
type RedeliveryJob struct {
	queue    replayer
	schedule string
	batch    int
	timeout  time.Duration
	cron     *cron.Cron
	logger   logx.Logger
}

// NewRedeliveryJob creates the job. schedule accepts standard cron specs and
// descriptors such as "@every 30s".
func NewRedeliveryJob(queue replayer, schedule string, batch int, timeout time.Duration, logger logx.Logger) *RedeliveryJob {
	if logger == nil {
		logger = logx.Nop()
	}
	if batch <= 0 {
		batch = 50
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RedeliveryJob{
		queue:    queue,
		schedule: strings.TrimSpace(schedule),
		batch:    batch,
		timeout:  timeout,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With(logx.String("component", "redelivery_job")),
	}
}

// Start schedules the job. An empty schedule disables it.
func (j *RedeliveryJob) Start() error {
	if j.schedule == "" {
		j.logger.Info("redelivery job disabled")
		return nil
	}
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		j.RunOnce(ctx)
	})
	if err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("redelivery job started", logx.String("schedule", j.schedule), logx.Int("batch", j.batch))
	return nil
}

// RunOnce replays one batch and returns the number of delivered letters.
func (j *RedeliveryJob) RunOnce(ctx context.Context) int {
	n, err := j.queue.Replay(ctx, j.batch)
	if err != nil && !errors.Is(err, context.Canceled) {
		j.logger.Error("redelivery failed", logx.Int("delivered", n), logx.Err(err))
		return n
	}
	if n > 0 {
		j.logger.Info("dead letters redelivered", logx.Int("delivered", n))
	}
	return n
}

// Stop stops scheduling and waits for a running replay to finish.
func (j *RedeliveryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("redelivery job stopped")
}
