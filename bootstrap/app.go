package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"book-search/config"
	"book-search/consumer"
	"book-search/driver"
	"book-search/gateway"
	"book-search/logger"
	"book-search/port"
	"book-search/rest"
	"book-search/usecase"
	appOtel "book-search/utils/otel"

	"golang.org/x/sync/errgroup"
)

// ErrSearchIndexUnavailable is returned by commands that need Elasticsearch when it is not configured.
var ErrSearchIndexUnavailable = errors.New("elasticsearch is not configured: set ELASTICSEARCH_URL")

// components holds the wired infrastructure shared by every command.
type components struct {
	cfg      *config.Config
	store    bookStore
	sqlite   *driver.SQLiteDriver
	es       *driver.ElasticsearchClient
	books    *gateway.BookRepositoryGateway
	searcher port.BookSearcher
	index    *gateway.ElasticsearchSearchGateway
}

func newComponents(ctx context.Context, cfg *config.Config) (*components, error) {
	store, sqlite, err := openBookStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	c := &components{
		cfg:    cfg,
		store:  store,
		sqlite: sqlite,
		books:  gateway.NewBookRepositoryGateway(store),
	}

	if sqlite != nil {
		if err := prepareSQLite(ctx, sqlite); err != nil {
			c.close()
			return nil, err
		}
	}

	es, err := openElasticsearch(ctx, cfg.Elasticsearch)
	if err != nil {
		c.close()
		return nil, err
	}
	c.es = es
	c.index = gateway.NewElasticsearchSearchGateway(driver.NewElasticsearchDriver(es), c.books, cfg.Elasticsearch.AutoIndex)

	switch cfg.SearchBackend {
	case config.SearchBackendElasticsearch:
		c.searcher = c.index
	default:
		if sqlite == nil {
			c.close()
			return nil, fmt.Errorf("search backend %q requires a SQLite database, got %q", config.SearchBackendFTS, cfg.Database.URL)
		}
		c.searcher = gateway.NewFTSSearchGateway(sqlite)
	}

	logger.Logger.Info("components initialized",
		"search_backend", c.searcher.Backend(),
		"elasticsearch_enabled", es.Config().Enabled(),
	)
	return c, nil
}

func (c *components) close() {
	if c.es != nil {
		c.es.Close()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Run starts the HTTP API and, when enabled, the index event consumer.
// It blocks until ctx is cancelled, then shuts everything down gracefully.
func Run(ctx context.Context) error {
	// ── OpenTelemetry ──
	otelCfg := appOtel.ConfigFromEnv()
	otelShutdown, err := appOtel.InitProvider(ctx, otelCfg)
	if err != nil {
		fmt.Printf("Failed to initialize OpenTelemetry: %v\n", err)
		otelCfg.Enabled = false
		otelShutdown = func(context.Context) error { return nil }
	}

	// ── Logger ──
	logger.InitWithOTel(otelCfg.Enabled)
	logger.Logger.Info("Starting book-search",
		"service", otelCfg.ServiceName,
		"otel_enabled", otelCfg.Enabled,
	)

	// ── Load config ──
	appCfg, err := config.Load()
	if err != nil {
		logger.Logger.Error("Failed to load config", "err", err)
		return err
	}

	// ── Drivers and gateways ──
	comps, err := newComponents(ctx, appCfg)
	if err != nil {
		logger.Logger.Error("Failed to initialize components", "err", err)
		return err
	}
	defer comps.close()

	if comps.searcher.Backend() == gateway.BackendElasticsearch {
		if err := comps.index.EnsureIndex(ctx); err != nil {
			logger.Logger.Warn("search index not ready, retrying on first search", "err", err)
		}
	}

	storage, err := openObjectStorage(ctx, appCfg.S3)
	if err != nil {
		logger.Logger.Error("Failed to initialize object storage", "err", err)
		return err
	}

	// ── Use cases ──
	searchUsecase := usecase.NewSearchBooksUsecase(comps.searcher)
	readUsecase := usecase.NewReadBookUsecase(comps.books)
	exportUsecase := usecase.NewExportBookUsecase(
		comps.books,
		gateway.NewFileStorageGateway(storage),
		gateway.NewArchiveGateway(driver.NewArchiveDriver(appCfg.Archives.Path)),
	)
	indexUsecase := usecase.NewIndexBooksUsecase(comps.books, comps.index)

	// ── Servers ──
	handler := rest.NewHandler(searchUsecase, readUsecase, exportUsecase)
	e := newHTTPServer(appCfg.HTTP, handler, otelCfg)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Logger.Info("http listen", "addr", appCfg.HTTP.Addr, "root_path", appCfg.HTTP.APIRootPath)
		if err := e.Start(appCfg.HTTP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if redisConsumer := newIndexConsumer(comps, indexUsecase); redisConsumer != nil {
		g.Go(func() error {
			defer redisConsumer.Close()
			return redisConsumer.Run(gCtx)
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		logger.Logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		return otelShutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Logger.Error("shutdown error", "err", err)
		return err
	}
	logger.Logger.Info("server exited properly")
	return nil
}

// newIndexConsumer returns nil when the consumer is disabled or has nothing to maintain.
func newIndexConsumer(comps *components, indexUsecase *usecase.IndexBooksUsecase) *consumer.Consumer {
	consumerCfg := consumer.ConfigFromEnv()
	if !consumerCfg.Enabled {
		logger.Logger.Info("Redis Streams consumer disabled")
		return nil
	}
	if !comps.es.Config().Enabled() {
		logger.Logger.Warn("Redis Streams consumer enabled without ELASTICSEARCH_URL, not starting")
		return nil
	}

	eventHandler := consumer.NewIndexEventHandler(indexUsecase, logger.Logger)
	redisConsumer, err := consumer.NewConsumer(consumerCfg, eventHandler, logger.Logger)
	if err != nil {
		logger.Logger.Error("Failed to create Redis Streams consumer", "err", err)
		return nil
	}
	return redisConsumer
}

// SetupFTS creates the FTS5 index and its triggers on the configured SQLite database.
func SetupFTS(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Database.IsPostgres() {
		return fmt.Errorf("setup-fts requires a SQLite database, got %q", cfg.Database.URL)
	}

	sqlite, err := driver.OpenSQLite(ctx, cfg.Database.SQLiteDSN())
	if err != nil {
		return err
	}
	defer sqlite.Close()

	if err := prepareSQLite(ctx, sqlite); err != nil {
		return err
	}
	logger.Logger.Info("fts index ready", "database", cfg.Database.SQLiteDSN())
	return nil
}

// Reindex drops the Elasticsearch index and rebuilds it from the primary store.
func Reindex(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Elasticsearch.URL == "" {
		return ErrSearchIndexUnavailable
	}
	// reindex always seeds, whatever ELASTICSEARCH_AUTO_INDEX says
	cfg.Elasticsearch.AutoIndex = true

	comps, err := newComponents(ctx, cfg)
	if err != nil {
		return err
	}
	defer comps.close()

	if err := usecase.NewIndexBooksUsecase(comps.books, comps.index).Reindex(ctx); err != nil {
		return err
	}
	logger.Logger.Info("reindex completed", "index", cfg.Elasticsearch.Index)
	return nil
}
