// Package server exposes the storefront over a JSON HTTP API built on gin.
//
// Package server 基于gin以JSON HTTP API的形式提供商店服务。
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/hivestore/internal/service"
	"github.com/yourusername/hivestore/internal/session"
	"github.com/yourusername/hivestore/pkg/metrics"
)

// Options configures the HTTP server.
//
// Options 配置HTTP服务器。
type Options struct {
	Addr            string
	Mode            string // gin mode
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	SessionCookie string
	SessionMaxAge time.Duration

	// MetricsPath is where the Prometheus exporter is mounted; empty disables it.
	MetricsPath string
}

// DefaultOptions returns options suitable for tests and local runs.
func DefaultOptions() Options {
	return Options{
		Addr:            ":8080",
		Mode:            gin.ReleaseMode,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		SessionCookie:   "hive_session",
		SessionMaxAge:   30 * 24 * time.Hour,
		MetricsPath:     "/metrics",
	}
}

// Server wires the handlers to the product service and the session manager.
//
// Server 将处理程序连接到产品服务和会话管理器。
type Server struct {
	opts     Options
	products *service.ProductService
	sessions *session.Manager
	metrics  *metrics.Metrics
	exporter *metrics.PrometheusExporter
	logger   *zap.Logger
	router   *gin.Engine
}

// New builds the server and its router. exporter may be nil when metrics
// are not exposed.
func New(opts Options, products *service.ProductService, sessions *session.Manager,
	m *metrics.Metrics, exporter *metrics.PrometheusExporter, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		opts:     opts,
		products: products,
		sessions: sessions,
		metrics:  m,
		exporter: exporter,
		logger:   logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	if s.opts.Mode != "" {
		gin.SetMode(s.opts.Mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(s.logger))
	router.Use(RequestMetrics(s.metrics))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.exporter != nil && s.opts.MetricsPath != "" {
		router.GET(s.opts.MetricsPath, gin.WrapH(s.exporter))
	}

	api := router.Group("/api")
	api.Use(CacheHeaders(s.products))

	products := &productHandler{service: s.products}
	api.GET("/products", products.List)
	api.GET("/products/by-id/:id", products.GetByID)
	api.GET("/products/by-id/:id/related", products.Related)
	api.GET("/products/by-slug/:slug", products.GetBySlug)
	api.GET("/categories", products.Categories)
	api.GET("/categories/:category/products", products.ByCategory)
	api.GET("/featured", products.Featured)
	api.GET("/on-sale", products.OnSale)

	withSession := api.Group("", Sessions(s.sessions, s.opts.SessionCookie, s.opts.SessionMaxAge, s.logger))

	searches := &searchHandler{service: s.products}
	withSession.GET("/search", searches.Search)
	withSession.GET("/search/history", searches.History)
	withSession.POST("/search/history", searches.SaveHistory)
	withSession.DELETE("/search/history", searches.ClearHistory)

	carts := &cartHandler{service: s.products}
	withSession.GET("/cart", carts.Get)
	withSession.DELETE("/cart", carts.Clear)
	withSession.POST("/cart/items", carts.AddItem)
	withSession.PUT("/cart/items/:id", carts.UpdateQuantity)
	withSession.DELETE("/cart/items/:id", carts.RemoveItem)
	withSession.POST("/cart/open", carts.Open)
	withSession.POST("/cart/close", carts.Close)
	withSession.POST("/cart/toggle", carts.Toggle)

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully within
// Options.ShutdownTimeout.
//
// Run 持续提供服务直到ctx被取消，然后在ShutdownTimeout内优雅关闭。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.opts.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server", zap.Duration("timeout", s.opts.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
