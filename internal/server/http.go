package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/world-explorer/internal/conf"
	"github.com/lk2023060901/world-explorer/internal/explorer/service"
	"github.com/lk2023060901/world-explorer/internal/news/proxy"
	"github.com/lk2023060901/world-explorer/internal/pkg/logger"
	"github.com/lk2023060901/world-explorer/internal/pkg/ratelimit"
	"go.uber.org/zap"
)

// NewsProxyPath is where the news proxy is mounted
const NewsProxyPath = "/api/news"

type HTTPServer struct {
	server *http.Server
	logger *logger.Logger
}

// Options carries the optional pieces of the router
type Options struct {
	// NewsProxy is mounted at NewsProxyPath when set
	NewsProxy *proxy.Handler
	// Limiter guards the news proxy when set
	Limiter ratelimit.Evaler
}

func NewHTTPServer(config *conf.Config, log *logger.Logger, explorerService *service.ExplorerService, opts Options) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	return &HTTPServer{
		server: &http.Server{
			Addr:         config.Server.Addr(),
			Handler:      NewRouter(config, log, explorerService, opts),
			ReadTimeout:  config.Server.ReadTimeout,
			WriteTimeout: config.Server.WriteTimeout,
		},
		logger: log,
	}
}

// NewRouter builds the gin engine: health, explorer API and news proxy
func NewRouter(config *conf.Config, log *logger.Logger, explorerService *service.ExplorerService, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(logger.GinRecovery(log))
	router.Use(logger.GinLogger(log, "/health"))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// API routes
	api := router.Group("/api/v1")
	explorerService.RegisterRoutes(api)

	if opts.NewsProxy != nil {
		news := router.Group("")
		if opts.Limiter != nil && config.RateLimit.Enabled {
			news.Use(ratelimit.Middleware(opts.Limiter, config.RateLimit, log))
		}
		opts.NewsProxy.Register(news, NewsProxyPath)
	}

	return router
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}
