package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/hivestore/configs"
	"github.com/yourusername/hivestore/internal/latency"
	"github.com/yourusername/hivestore/internal/logging"
	"github.com/yourusername/hivestore/internal/server"
	"github.com/yourusername/hivestore/internal/service"
	"github.com/yourusername/hivestore/internal/session"
	"github.com/yourusername/hivestore/internal/storage"
	"github.com/yourusername/hivestore/pkg/cache"
	"github.com/yourusername/hivestore/pkg/catalog"
	"github.com/yourusername/hivestore/pkg/codec"
	"github.com/yourusername/hivestore/pkg/kv"
	"github.com/yourusername/hivestore/pkg/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the storefront API. Configuration is read from --config, then
overridden by HIVESTORE_* environment variables (for example
HIVESTORE_SERVER_ADDR=:9090 or HIVESTORE_STORAGE_ENGINE=sqlite).

When extensions.hot_reload.enable is set, changes to the config file update
the log level and metrics level and clear the query cache without a restart.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, configFile)
	},
}

func serve(ctx context.Context, configFile string) error {
	vc, err := configs.LoadViperConfig(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	defer vc.Close()
	cfg := vc.Get()

	logger, level, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting hivestore", zap.String("config", configFile), zap.String("storage", cfg.Storage.Engine))

	m, err := newMetrics(cfg.Metrics)
	if err != nil {
		return err
	}

	products, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return err
	}
	lookupDelay, err := newDelayer(cfg.Latency.Lookup)
	if err != nil {
		return fmt.Errorf("latency.lookup: %w", err)
	}
	listingDelay, err := newDelayer(cfg.Latency.Listing)
	if err != nil {
		return fmt.Errorf("latency.listing: %w", err)
	}
	repo, err := storage.NewProductStorage(products,
		storage.WithDelayer(lookupDelay),
		storage.WithListingDelayer(listingDelay),
		storage.WithLogger(logger.Named("storage")),
	)
	if err != nil {
		return err
	}

	svcOpts := []service.Option{
		service.WithLogger(logger.Named("service")),
		service.WithMetrics(m),
	}
	if cfg.Cache.Enable {
		queryCache, err := cache.NewWithOptions(cfg.Cache.Name,
			cache.WithMaxEntryCount(cfg.Cache.MaxEntries),
			cache.WithTTL(cfg.Cache.DefaultTTL),
			cache.WithEviction(cfg.Cache.EvictionPolicy),
			cache.WithCleanupInterval(cfg.Cache.CleanupInterval),
		)
		if err != nil {
			return fmt.Errorf("create query cache: %w", err)
		}
		defer queryCache.Close()
		svcOpts = append(svcOpts, service.WithCache(queryCache))
	}
	productService := service.NewProductService(repo, svcOpts...)

	store, err := kv.Open(ctx, kv.Config{
		Engine:        cfg.Storage.Engine,
		Dir:           cfg.Storage.Dir,
		SQLitePath:    cfg.Storage.SQLitePath,
		RedisAddr:     cfg.Storage.Redis.Addr,
		RedisPassword: cfg.Storage.Redis.Password,
		RedisDB:       cfg.Storage.Redis.DB,
		RedisPrefix:   cfg.Storage.Redis.Prefix,
		RedisTTL:      cfg.Storage.Redis.TTL,
	})
	if err != nil {
		return fmt.Errorf("open client storage: %w", err)
	}
	defer store.Close()

	cartCodec, err := codec.GetCodec(cfg.Cart.Codec)
	if err != nil {
		return fmt.Errorf("cart.codec: %w", err)
	}
	historyCodec, err := codec.GetCodec(cfg.Search.Codec)
	if err != nil {
		return fmt.Errorf("search.codec: %w", err)
	}
	sessions, err := session.NewManager(store, session.Config{
		CartKey:      cfg.Cart.Key,
		HistoryKey:   cfg.Search.HistoryKey,
		CartCodec:    cartCodec,
		HistoryCodec: historyCodec,
		MaxSessions:  cfg.Server.MaxSessions,
		Logger:       logger.Named("session"),
		Metrics:      m,
	})
	if err != nil {
		return err
	}
	defer sessions.Close()

	var exporter *metrics.PrometheusExporter
	if cfg.Metrics.Enable {
		exporter = metrics.NewPrometheusExporter(m, "hivestore")
		if cfg.Metrics.Prefix != "" {
			exporter.SetPrefix(cfg.Metrics.Prefix)
		}
		exporter.RegisterGauge("catalog_products", "Number of products in the catalog", func() float64 {
			return float64(repo.Len())
		})
		exporter.RegisterGauge("sessions_active", "Number of sessions held in memory", func() float64 {
			return float64(sessions.Len(context.Background()))
		})
		exporter.RegisterGauge("query_cache_entries", "Number of cached listings", func() float64 {
			if stats := productService.CacheStats(context.Background()); stats != nil {
				return float64(stats.EntryCount)
			}
			return 0
		})
	}

	vc.Subscribe(func(next *configs.Config) {
		if l, err := logging.ParseLevel(next.Log.Level); err == nil {
			level.SetLevel(l)
		}
		if ml, err := metricsLevel(next.Metrics); err == nil {
			m.SetLevel(ml)
		}
		productService.InvalidateCache(context.Background())
		logger.Info("configuration reloaded",
			zap.String("log_level", next.Log.Level),
			zap.String("metrics_level", next.Metrics.Level))
	})

	srv := server.New(serverOptions(cfg), productService, sessions, m, exporter, logger.Named("http"))
	return srv.Run(ctx)
}

func serverOptions(cfg *configs.Config) server.Options {
	opts := server.DefaultOptions()
	opts.Addr = cfg.Server.Addr
	opts.Mode = cfg.Server.Mode
	opts.ReadTimeout = cfg.Server.ReadTimeout
	opts.WriteTimeout = cfg.Server.WriteTimeout
	opts.ShutdownTimeout = cfg.Server.ShutdownTimeout
	opts.SessionCookie = cfg.Server.SessionCookie
	opts.SessionMaxAge = cfg.Server.SessionMaxAge
	opts.MetricsPath = ""
	if cfg.Metrics.Enable {
		opts.MetricsPath = cfg.Metrics.Path
	}
	return opts
}

func newMetrics(cfg configs.MetricsConfig) (*metrics.Metrics, error) {
	level, err := metricsLevel(cfg)
	if err != nil {
		return nil, err
	}
	return metrics.New(&metrics.Config{Level: level}), nil
}

func metricsLevel(cfg configs.MetricsConfig) (metrics.Level, error) {
	if !cfg.Enable {
		return metrics.Disabled, nil
	}
	level, err := metrics.ParseLevel(cfg.Level)
	if err != nil {
		return metrics.Disabled, fmt.Errorf("metrics.level: %w", err)
	}
	return level, nil
}

// loadCatalog reads the configured product file, or the built-in dataset
// when none is set.
func loadCatalog(cfg configs.CatalogConfig) ([]catalog.Product, error) {
	if cfg.File == "" {
		return catalog.Seed()
	}
	products, err := catalog.LoadFile(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", cfg.File, err)
	}
	return products, nil
}

func newDelayer(cfg configs.DelayConfig) (latency.Delayer, error) {
	switch cfg.Mode {
	case "", "none":
		return latency.None(), nil
	case "fixed":
		return latency.Fixed(cfg.Min), nil
	case "random":
		return latency.NewRandom(cfg.Min, cfg.Max, nil), nil
	}
	return nil, fmt.Errorf("unknown latency mode %q", cfg.Mode)
}
