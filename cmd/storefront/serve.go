package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nikolayk812/pixshop/internal/api"
	"github.com/nikolayk812/pixshop/internal/cart"
	"github.com/nikolayk812/pixshop/internal/checkout"
	"github.com/nikolayk812/pixshop/internal/config"
	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/nikolayk812/pixshop/internal/notify"
	"github.com/nikolayk812/pixshop/internal/pix"
	"github.com/nikolayk812/pixshop/internal/provider"
	"github.com/nikolayk812/pixshop/internal/reconcile"
	"github.com/nikolayk812/pixshop/internal/repository"
	"github.com/nikolayk812/pixshop/internal/template"
	"github.com/nikolayk812/pixshop/internal/whatsapp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}

			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.HTTPAddr = addr
			}

			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("addr", "", "Listen address, overrides HTTP_ADDR")

	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	pool, err := openPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := rdb.Close(); err != nil {
			slog.Warn("rdb.Close", "error", err)
		}
	}()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("rdb.Ping: %w", err)
	}

	carts, err := cart.NewRedisStore(rdb, cfg.Redis.CartTTL)
	if err != nil {
		return fmt.Errorf("cart.NewRedisStore: %w", err)
	}

	catalog := repository.NewCatalog(pool)
	orders := repository.NewOrder(pool)

	aggregator, err := cart.NewAggregator(catalog)
	if err != nil {
		return fmt.Errorf("cart.NewAggregator: %w", err)
	}

	gateway := provider.NewClient(provider.Config{
		BaseURL:         cfg.Payment.BaseURL,
		AccessToken:     cfg.Payment.AccessToken,
		WebhookSecret:   cfg.Payment.WebhookSecret,
		NotificationURL: cfg.Payment.NotificationURL,
		PayerEmail:      cfg.Payment.PayerEmail,
		Timeout:         cfg.Payment.Timeout,
	})
	if !gateway.Configured() {
		slog.Warn("payment provider is not configured, using static pix codes")
	}

	sender := whatsapp.NewClient(whatsapp.Config{
		BaseURL:     cfg.WhatsApp.BaseURL,
		InstanceID:  cfg.WhatsApp.InstanceID,
		Token:       cfg.WhatsApp.Token,
		ClientToken: cfg.WhatsApp.ClientToken,
	})

	renderer, err := template.NewEngine()
	if err != nil {
		return fmt.Errorf("template.NewEngine: %w", err)
	}

	dispatcher, err := notify.NewDispatcher(orders, repository.NewRecipient(pool), sender, renderer, notify.Config{
		MinDelay: cfg.WhatsApp.MinDelay,
		MaxDelay: cfg.WhatsApp.MaxDelay,
	})
	if err != nil {
		return fmt.Errorf("notify.NewDispatcher: %w", err)
	}

	engine, err := reconcile.NewEngine(orders, gateway, dispatcher)
	if err != nil {
		return fmt.Errorf("reconcile.NewEngine: %w", err)
	}

	builder, err := pixBuilder(cfg.Pix)
	if err != nil {
		return fmt.Errorf("pixBuilder: %w", err)
	}

	service, err := checkout.NewService(carts, aggregator, orders, gateway, engine, builder)
	if err != nil {
		return fmt.Errorf("checkout.NewService: %w", err)
	}

	server, err := api.NewServer(api.Deps{
		Carts:      carts,
		Catalog:    catalog,
		Summarizer: aggregator,
		Checkout:   service,
		Engine:     engine,
		RateLimit: api.RateLimitConfig{
			RPS:   cfg.Webhook.RPS,
			Burst: cfg.Webhook.Burst,
		},
	})
	if err != nil {
		return fmt.Errorf("api.NewServer: %w", err)
	}

	if err := server.Run(ctx, cfg.HTTPAddr); err != nil {
		return fmt.Errorf("server.Run: %w", err)
	}

	slog.Info("http server stopped")
	return nil
}

// pixBuilder returns nil without a PIX_KEY; checkout then requires the provider.
func pixBuilder(cfg config.PixConfig) (*pix.Builder, error) {
	builder, err := pix.NewBuilder(pix.Merchant{
		Key:         cfg.Key,
		Name:        cfg.MerchantName,
		City:        cfg.MerchantCity,
		Description: cfg.Description,
	})
	if err != nil {
		var configErr *domain.ConfigurationError
		if errors.As(err, &configErr) {
			return nil, nil
		}
		return nil, fmt.Errorf("pix.NewBuilder: %w", err)
	}

	return builder, nil
}
