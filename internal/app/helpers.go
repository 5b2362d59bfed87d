package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"

	"service-shop-delivery/internal/logx"
	"service-shop-delivery/internal/repository"
	"service-shop-delivery/internal/repository/mongostore"
)

var (
	newPool      = repository.NewPool
	mongoConnect = mongostore.Connect
)

func connectDbWithRetry(ctx context.Context, logger logx.Logger, dsn string, retries int, delay time.Duration) (*pgxpool.Pool, error) {
	const attemptTimeout = 3 * time.Second
	var lastErr error
	for i := 1; i <= retries; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		pool, err := newPool(attemptCtx, dsn)
		cancel()
		if err == nil {
			logger.Info("db connected", logx.Int("attempt", i))
			return pool, nil
		}
		lastErr = err
		logger.Warn("db connect failed", logx.Int("attempt", i), logx.Int("retries", retries), logx.Err(err))
		if i < retries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return nil, fmt.Errorf("db connect failed after %d attempts: %w", retries, lastErr)
}

func connectMongoWithRetry(ctx context.Context, logger logx.Logger, uri string, retries int, delay time.Duration) (*mongo.Client, error) {
	const attemptTimeout = 5 * time.Second
	var lastErr error
	for i := 1; i <= retries; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		client, err := mongoConnect(attemptCtx, uri)
		cancel()
		if err == nil {
			logger.Info("mongo connected", logx.Int("attempt", i))
			return client, nil
		}
		lastErr = err
		logger.Warn("mongo connect failed", logx.Int("attempt", i), logx.Int("retries", retries), logx.Err(err))
		if i < retries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return nil, fmt.Errorf("mongo connect failed after %d attempts: %w", retries, lastErr)
}
