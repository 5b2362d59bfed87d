package app

import (
	"context"
	"errors"

	"go.uber.org/dig"

	"service-shop-delivery/internal/jobs"
	"service-shop-delivery/internal/logx"
	"service-shop-delivery/internal/transport/kafka"
)

// WorkerRunner runs order intake and dead-letter redelivery.
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner.
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun blocks until the container's context is cancelled.
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(
	ctx context.Context,
	logger logx.Logger,
	consumer *kafka.Consumer,
	job *jobs.RedeliveryJob,
	res *resources,
) error {
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		res.closeAll(closeCtx, logger)
		_ = logger.Sync()
	}()

	if err := job.Start(); err != nil {
		return err
	}
	defer job.Stop()

	logger.Info("service-shop-delivery-worker started")
	if consumer == nil {
		logger.Warn("kafka brokers not set, order intake disabled")
		<-ctx.Done()
		return ctx.Err()
	}
	return consumer.Run(ctx)
}
