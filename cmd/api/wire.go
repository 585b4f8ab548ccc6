package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/essyessentials/storefront-backend/api/controllers"
	"github.com/essyessentials/storefront-backend/api/routes"
	"github.com/essyessentials/storefront-backend/internal/auth"
	"github.com/essyessentials/storefront-backend/internal/cart"
	"github.com/essyessentials/storefront-backend/internal/checkout"
	"github.com/essyessentials/storefront-backend/internal/collections"
	"github.com/essyessentials/storefront-backend/internal/live"
	"github.com/essyessentials/storefront-backend/internal/media"
	"github.com/essyessentials/storefront-backend/internal/notifications"
	"github.com/essyessentials/storefront-backend/internal/orders"
	product "github.com/essyessentials/storefront-backend/internal/products"
	"github.com/essyessentials/storefront-backend/internal/settings"
	"github.com/essyessentials/storefront-backend/pkg/auth/session"
	"github.com/essyessentials/storefront-backend/pkg/cloudinary"
	"github.com/essyessentials/storefront-backend/pkg/config"
	"github.com/essyessentials/storefront-backend/pkg/db"
	"github.com/essyessentials/storefront-backend/pkg/emailjs"
	"github.com/essyessentials/storefront-backend/pkg/logger"
	"github.com/essyessentials/storefront-backend/pkg/metrics"
	"github.com/essyessentials/storefront-backend/pkg/money"
	"github.com/essyessentials/storefront-backend/pkg/redis"
	"github.com/essyessentials/storefront-backend/pkg/storage/s3"
)

type application struct {
	deps     routes.Deps
	bus      *live.Bus
	settings *settings.Provider
}

func build(ctx context.Context, cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (*application, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	checkoutMetrics := metrics.NewCheckoutMetrics(reg)

	bus, err := live.NewBus(redisClient, logg)
	if err != nil {
		return nil, err
	}

	sessions, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return nil, fmt.Errorf("session manager: %w", err)
	}
	authSvc, err := auth.NewService(auth.ServiceParams{
		Admins:         auth.NewRepository(dbClient.DB()),
		SessionManager: sessions,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	settingsRepo := settings.NewRepository(dbClient.DB())
	provider, err := settings.NewProvider(settingsRepo, logg)
	if err != nil {
		return nil, err
	}
	provider.Watch(bus)
	settingsSvc, err := settings.NewService(settingsRepo, provider, bus, logg)
	if err != nil {
		return nil, fmt.Errorf("settings service: %w", err)
	}

	productRepo := product.NewRepository(dbClient.DB())
	productSvc, err := product.NewService(productRepo, bus, logg)
	if err != nil {
		return nil, fmt.Errorf("product service: %w", err)
	}
	collectionSvc, err := collections.NewService(collections.NewRepository(dbClient.DB()), bus, logg)
	if err != nil {
		return nil, fmt.Errorf("collections service: %w", err)
	}

	cartStorage, err := cart.NewRedisStorage(redisClient, cfg.Cart.TTL)
	if err != nil {
		return nil, err
	}
	cartStore, err := cart.NewStore(cartStorage, logg)
	if err != nil {
		return nil, err
	}
	cartSvc, err := cart.NewService(cartStore, productRepo)
	if err != nil {
		return nil, fmt.Errorf("cart service: %w", err)
	}

	uploader, err := newUploader(ctx, cfg)
	if err != nil {
		return nil, err
	}
	mediaSvc, err := media.NewService(uploader, cfg.Media.MaxSizeBytes, logg)
	if err != nil {
		return nil, fmt.Errorf("media service: %w", err)
	}

	mailer, err := emailjs.NewClient(cfg.EmailJS, nil)
	if err != nil {
		return nil, fmt.Errorf("emailjs client: %w", err)
	}
	formatter := money.NewFormatter(cfg.Checkout.CurrencySymbol)
	notifier, err := notifications.NewService(mailer, notifications.Templates{
		Customer: cfg.EmailJS.CustomerTemplateID,
		Admin:    cfg.EmailJS.AdminTemplateID,
		Status:   cfg.EmailJS.StatusTemplateID,
	}, provider, formatter, logg)
	if err != nil {
		return nil, fmt.Errorf("notifications service: %w", err)
	}

	orderRepo := orders.NewRepository(dbClient.DB())
	orderSvc, err := orders.NewService(orderRepo, notifier, bus, checkoutMetrics, logg)
	if err != nil {
		return nil, fmt.Errorf("orders service: %w", err)
	}

	stock, err := checkout.NewStockDecrementer(cfg.Checkout.StockPolicy, productRepo, checkoutMetrics, logg)
	if err != nil {
		return nil, err
	}
	postCommit, err := checkout.NewPostCommit(checkoutMetrics, logg)
	if err != nil {
		return nil, err
	}
	checkoutSvc, err := checkout.NewService(checkout.Deps{
		Carts:      cartSvc,
		Settings:   provider,
		Uploads:    mediaSvc,
		Orders:     orderRepo,
		Stock:      stock,
		Notifier:   notifier,
		Changes:    bus,
		PostCommit: postCommit,
		Formatter:  formatter,
		Metrics:    checkoutMetrics,
		Logger:     logg,
	})
	if err != nil {
		return nil, fmt.Errorf("checkout service: %w", err)
	}

	feeds := routes.Feeds{
		Products:    live.NewFeed(live.TopicProducts, productSvc.AdminList, logg),
		Orders:      live.NewFeed(live.TopicOrders, orderSvc.ListAll, logg),
		Collections: live.NewFeed(live.TopicCollections, collectionSvc.List, logg),
	}
	bus.On(live.TopicProducts, feeds.Products.Notify)
	bus.On(live.TopicOrders, feeds.Orders.Notify)
	bus.On(live.TopicCollections, feeds.Collections.Notify)

	return &application{
		bus:      bus,
		settings: provider,
		deps: routes.Deps{
			Config:      cfg,
			Logger:      logg,
			Gatherer:    reg,
			HTTPMetrics: metrics.NewHTTPMetrics(reg),
			Readiness: map[string]controllers.Pinger{
				"db":    dbClient,
				"redis": redisClient,
			},
			Sessions:    sessions,
			Idempotency: redisClient,
			Limiter:     redisClient,
			Auth:        authSvc,
			Products:    productSvc,
			Collections: collectionSvc,
			Settings:    settingsSvc,
			SettingsNow: provider,
			Carts:       cartSvc,
			Checkout:    checkoutSvc,
			Orders:      orderSvc,
			Media:       mediaSvc,
			Feeds:       feeds,
		},
	}, nil
}

func newUploader(ctx context.Context, cfg *config.Config) (media.Uploader, error) {
	switch cfg.Media.Backend {
	case config.MediaBackendS3:
		client, err := s3.NewClient(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("s3 client: %w", err)
		}
		return client, nil
	default:
		client, err := cloudinary.NewClient(cfg.Cloudinary, &http.Client{Timeout: cfg.Cloudinary.Timeout})
		if err != nil {
			return nil, fmt.Errorf("cloudinary client: %w", err)
		}
		return client, nil
	}
}
