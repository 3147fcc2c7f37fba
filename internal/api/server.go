// Package api exposes the storefront and staff operations over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/pixshop/internal/checkout"
	"github.com/nikolayk812/pixshop/internal/port"
	"github.com/nikolayk812/pixshop/internal/reconcile"
)

const shutdownTimeout = 10 * time.Second

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type Deps struct {
	Carts      port.CartStore
	Catalog    port.CatalogRepository
	Summarizer checkout.Summarizer
	Checkout   *checkout.Service
	Engine     *reconcile.Engine

	// RateLimit guards the status poll and the webhook
	RateLimit RateLimitConfig
}

type Server struct {
	deps    Deps
	limiter *RateLimiter
	now     func() time.Time
	engine  *gin.Engine
}

func NewServer(deps Deps) (*Server, error) {
	if deps.Carts == nil {
		return nil, fmt.Errorf("carts is nil")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog is nil")
	}
	if deps.Summarizer == nil {
		return nil, fmt.Errorf("summarizer is nil")
	}
	if deps.Checkout == nil {
		return nil, fmt.Errorf("checkout is nil")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("engine is nil")
	}

	if deps.RateLimit.RPS <= 0 {
		deps.RateLimit.RPS = 5
	}
	if deps.RateLimit.Burst <= 0 {
		deps.RateLimit.Burst = 10
	}

	s := &Server{
		deps:    deps,
		limiter: NewRateLimiter(deps.RateLimit.RPS, deps.RateLimit.Burst),
		now:     time.Now,
	}
	s.engine = s.routes()

	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/products/", s.listProducts)

	cartGroup := r.Group("/cart")
	{
		cartGroup.GET("/", s.getCart)
		cartGroup.POST("/add/:product_id/", s.addToCart)
		cartGroup.POST("/update/:product_id/", s.updateCart)
	}

	checkoutGroup := r.Group("/checkout")
	{
		checkoutGroup.POST("/finalize/", s.finalize)
		checkoutGroup.GET("/status/:order_id/", s.limiter.Middleware(), s.orderStatus)
	}

	r.POST("/payments/webhook/", s.limiter.Middleware(), s.webhook)

	manage := r.Group("/manage")
	{
		manage.GET("/orders/", s.listOrders)
		manage.POST("/orders/:order_id/mark-paid/", s.markPaid)
		manage.POST("/orders/:order_id/mark-delivered/", s.markDelivered)
		manage.POST("/sales/create/", s.createSale)
	}

	return r
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("srv.ListenAndServe: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("srv.ListenAndServe: %w", err)
	}

	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
