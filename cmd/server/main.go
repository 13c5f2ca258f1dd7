package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/lk2023060901/world-explorer/internal/conf"
	countryprovider "github.com/lk2023060901/world-explorer/internal/country/provider"
	"github.com/lk2023060901/world-explorer/internal/country/search"
	"github.com/lk2023060901/world-explorer/internal/explorer/biz"
	"github.com/lk2023060901/world-explorer/internal/explorer/service"
	newsfallback "github.com/lk2023060901/world-explorer/internal/news/fallback"
	newsprovider "github.com/lk2023060901/world-explorer/internal/news/provider"
	"github.com/lk2023060901/world-explorer/internal/news/proxy"
	"github.com/lk2023060901/world-explorer/internal/pkg/logger"
	"github.com/lk2023060901/world-explorer/internal/pkg/redis"
	"github.com/lk2023060901/world-explorer/internal/server"
	"github.com/lk2023060901/world-explorer/internal/summary"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize global logger with config
	log, err := logger.InitGlobal(&config.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("config loaded successfully", zap.String("addr", config.Server.Addr()))

	// Collaborators
	countries, err := countryprovider.NewRestCountries(&config.Countries, log)
	if err != nil {
		log.Fatal("failed to create country client", zap.Error(err))
	}
	newsClient, err := newsprovider.NewProxyClient(&config.News.Client, log)
	if err != nil {
		log.Fatal("failed to create news client", zap.Error(err))
	}

	// Orchestrators
	searcher := search.New(countries, log,
		search.WithSuggestionLimit(config.Search.SuggestionLimit),
		search.WithMinFuzzyScore(config.Search.MinFuzzyScore),
	)
	fetcher := newsfallback.New(newsClient, &config.News.Fallback, log)

	var sum biz.SummaryLookup
	if config.Summary.Enabled {
		sum = summary.New(&config.Summary, log)
	}

	explorerUseCase := biz.NewExplorerUseCase(searcher, fetcher, sum, log)
	explorerService := service.NewExplorerService(explorerUseCase, log)

	// News proxy and its optional limiter
	var opts server.Options
	if config.Proxy.Enabled {
		opts.NewsProxy, err = proxy.NewHandler(&config.Proxy, log)
		if err != nil {
			log.Fatal("failed to create news proxy", zap.Error(err))
		}
	}
	if config.RateLimit.Enabled {
		rdb, err := redis.New(&config.Redis, log)
		if err != nil {
			log.Warn("redis unavailable, news proxy rate limiting disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			opts.Limiter = rdb
		}
	}

	httpServer := server.NewHTTPServer(config, log, explorerService, opts)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
