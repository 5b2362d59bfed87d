package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"service-shop-delivery/internal/logx"
	"service-shop-delivery/internal/service/notify"
)

const shutdownTimeout = 15 * time.Second

// MustRun starts the HTTP servers and notification workers using the
// provided DI container and blocks until the context is cancelled.
func MustRun(container *dig.Container) {
	if err := run(container); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			log.Println("shutdown requested, exiting")
			return
		case errors.Is(err, context.DeadlineExceeded):
			log.Println("startup aborted: startup timeout exceeded")
			return
		default:
			log.Fatalf("run error: %v", err)
		}
	}
}

type apiDeps struct {
	dig.In

	Ctx       context.Context
	Server    *http.Server
	Admin     adminServer
	Notifier  notifier
	Resources *resources
	Logger    logx.Logger
}

func run(container *dig.Container) error {
	return container.Invoke(func(d apiDeps) error {
		return serve(d.Ctx, d.Logger, d.Server, d.Admin.Server, d.Notifier.queue, d.Resources)
	})
}

func serve(
	ctx context.Context,
	logger logx.Logger,
	server, admin *http.Server,
	queue *notify.Queue,
	res *resources,
) error {
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		res.closeAll(closeCtx, logger)
		_ = logger.Sync()
	}()

	g, gctx := errgroup.WithContext(ctx)

	servers := []*http.Server{server}
	if admin != nil {
		servers = append(servers, admin)
	}
	for _, srv := range servers {
		g.Go(func() error {
			logger.Info("http server listening", logx.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	// workers drain the queue after the servers stop accepting requests
	queueCtx, stopQueue := context.WithCancel(context.Background())
	defer stopQueue()
	queueDone := make(chan struct{})
	if queue != nil {
		go func() {
			defer close(queueDone)
			if err := queue.Run(queueCtx); err != nil {
				logger.Error("notification queue failed", logx.Err(err))
			}
		}()
	} else {
		close(queueDone)
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down service-shop-delivery...")
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shCtx); err != nil {
				logger.Error("graceful shutdown error", logx.String("addr", srv.Addr), logx.Err(err))
			}
		}
		return nil
	})

	err := g.Wait()
	stopQueue()
	<-queueDone
	return err
}
