package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"book-search/config"
	"book-search/driver"
	"book-search/gateway"
	"book-search/logger"

	"github.com/cenkalti/backoff/v5"
)

// bookStore is a primary store driver the service can ping and close.
type bookStore interface {
	gateway.BookStoreDriver
	Ping(ctx context.Context) error
	Close()
}

// openBookStore opens the configured primary store and waits until it answers.
// The SQLite driver is returned separately because it also serves the FTS index.
func openBookStore(ctx context.Context, cfg config.DatabaseConfig) (bookStore, *driver.SQLiteDriver, error) {
	if cfg.IsPostgres() {
		pg, err := driver.OpenPostgres(ctx, cfg.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres init: %w", err)
		}
		if err := waitFor(ctx, "postgres", cfg.Timeout, pg.Ping); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return pg, nil, nil
	}

	sqlite, err := driver.OpenSQLite(ctx, cfg.SQLiteDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite init: %w", err)
	}
	if err := waitFor(ctx, "sqlite", cfg.Timeout, sqlite.Ping); err != nil {
		sqlite.Close()
		return nil, nil, err
	}
	return sqlite, sqlite, nil
}

// prepareSQLite makes sure the books table and its FTS5 index exist.
func prepareSQLite(ctx context.Context, sqlite *driver.SQLiteDriver) error {
	if err := sqlite.EnsureBooksTable(ctx); err != nil {
		return fmt.Errorf("ensure books table: %w", err)
	}
	if err := sqlite.EnsureFTS(ctx); err != nil {
		return fmt.Errorf("ensure fts: %w", err)
	}
	return nil
}

// openElasticsearch builds the engine client. A disabled client is returned as is;
// an unreachable engine is logged and left to fail individual searches.
func openElasticsearch(ctx context.Context, cfg config.ElasticsearchConfig) (*driver.ElasticsearchClient, error) {
	client := driver.NewElasticsearchClient(driver.ElasticsearchConfig{
		URL:            cfg.URL,
		Index:          cfg.Index,
		Username:       cfg.Username,
		Password:       cfg.Password,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err := client.Init(); err != nil {
		return nil, fmt.Errorf("elasticsearch init: %w", err)
	}
	if !client.Config().Enabled() {
		return client, nil
	}

	if err := waitFor(ctx, "elasticsearch", cfg.RequestTimeout, client.Ping); err != nil {
		logger.Logger.Warn("elasticsearch not reachable at startup", "err", err)
	}
	return client, nil
}

func openObjectStorage(ctx context.Context, cfg config.S3Config) (*driver.S3Driver, error) {
	client, err := driver.NewS3Client(ctx, driver.S3Config{
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 init: %w", err)
	}
	return driver.NewS3Driver(client, cfg.Bucket), nil
}

// waitFor retries ping with exponential backoff until it succeeds or
// config.StartupRetryTimeout elapses. Each attempt is bounded by attemptTimeout.
func waitFor(ctx context.Context, name string, attemptTimeout time.Duration, ping func(context.Context) error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		defer cancel()
		if err := ping(attemptCtx); err != nil {
			if errors.Is(err, driver.ErrElasticsearchDisabled) {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxElapsedTime(config.StartupRetryTimeout),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Logger.Warn("dependency not ready, retrying", "dependency", name, "err", err, "retry_in", next)
		}),
	)
	if err != nil {
		return fmt.Errorf("%s not ready: %w", name, err)
	}
	logger.Logger.Info("dependency ready", "dependency", name)
	return nil
}
