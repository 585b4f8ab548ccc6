package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/essyessentials/storefront-backend/api/controllers"
	"github.com/essyessentials/storefront-backend/api/controllers/admin"
	livecontrollers "github.com/essyessentials/storefront-backend/api/controllers/live"
	"github.com/essyessentials/storefront-backend/api/middleware"
	"github.com/essyessentials/storefront-backend/api/validators"
	"github.com/essyessentials/storefront-backend/internal/auth"
	"github.com/essyessentials/storefront-backend/internal/cart"
	"github.com/essyessentials/storefront-backend/internal/checkout"
	"github.com/essyessentials/storefront-backend/internal/collections"
	"github.com/essyessentials/storefront-backend/internal/live"
	"github.com/essyessentials/storefront-backend/internal/media"
	"github.com/essyessentials/storefront-backend/internal/orders"
	product "github.com/essyessentials/storefront-backend/internal/products"
	"github.com/essyessentials/storefront-backend/internal/settings"
	"github.com/essyessentials/storefront-backend/pkg/auth/session"
	"github.com/essyessentials/storefront-backend/pkg/config"
	"github.com/essyessentials/storefront-backend/pkg/db/models"
	"github.com/essyessentials/storefront-backend/pkg/logger"
	"github.com/essyessentials/storefront-backend/pkg/metrics"
	"github.com/essyessentials/storefront-backend/pkg/redis"
)

// Feeds are the snapshot streams exposed on the admin live endpoint.
type Feeds struct {
	Products    *live.Feed[product.AdminProductDTO]
	Orders      *live.Feed[models.Order]
	Collections *live.Feed[models.Collection]
}

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
	Readiness   map[string]controllers.Pinger

	Sessions    session.AccessSessionChecker
	Idempotency redis.IdempotencyStore
	Limiter     middleware.WindowLimiter

	Auth        auth.Service
	Products    product.Service
	Collections collections.Service
	Settings    settings.Service
	SettingsNow controllers.SettingsSource
	Carts       cart.Service
	Checkout    checkout.Service
	Orders      orders.Service
	Media       media.Service
	Feeds       Feeds
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, d.HTTPMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Get("/health/live", controllers.HealthLive(cfg.App.Env))
	r.Get("/health/ready", controllers.HealthReady(d.Readiness, logg))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Get("/products", controllers.ProductList(d.Products, logg))
		v1.Get("/products/{productId}", controllers.ProductDetail(d.Products, logg))
		v1.Get("/collections", controllers.CollectionList(d.Collections, logg))
		v1.Get("/settings", controllers.StoreSettings(d.SettingsNow))
		v1.Get("/shipping-options", controllers.ShippingOptions(d.SettingsNow))

		v1.Group(func(shop chi.Router) {
			shop.Use(
				middleware.CartToken(logg),
				middleware.Idempotency(d.Idempotency, cfg.Checkout.IdempotencyTTL, controllers.CheckoutMaxBodyBytes(cfg.Checkout.MaxProofSizeBytes), logg),
			)
			shop.Get("/cart", controllers.CartGet(d.Carts, logg))
			shop.Post("/cart/items", controllers.CartAddItem(d.Carts, logg))
			shop.Post("/cart/items/{index}/increment", controllers.CartIncrement(d.Carts, logg))
			shop.Post("/cart/items/{index}/decrement", controllers.CartDecrement(d.Carts, logg))
			shop.Delete("/cart/items/{index}", controllers.CartRemove(d.Carts, logg))
			shop.Delete("/cart", controllers.CartClear(d.Carts, logg))

			shop.With(
				middleware.RateLimit("checkout", cfg.Checkout.RateLimit, cfg.Checkout.RateLimitWindow, d.Limiter, logg),
			).Post("/checkout", controllers.Checkout(d.Checkout, cfg.Checkout.MaxProofSizeBytes, logg))
		})
	})

	r.Route("/api/admin/v1", func(adm chi.Router) {
		adm.With(middleware.LoginRateLimit(cfg.AuthRateLimit, d.Limiter, logg)).
			Post("/auth/login", admin.Login(d.Auth, logg))
		adm.Post("/auth/refresh", admin.Refresh(d.Auth, logg))

		adm.Group(func(private chi.Router) {
			private.Use(
				middleware.Auth(cfg.JWT, d.Sessions, logg),
				middleware.Idempotency(d.Idempotency, cfg.Checkout.IdempotencyTTL, validators.MaxJSONBodyBytes, logg),
			)
			private.Post("/auth/logout", admin.Logout(d.Auth, logg))
			private.Get("/auth/me", admin.Me(d.Auth, logg))

			private.Route("/products", func(p chi.Router) {
				p.Get("/", admin.ProductList(d.Products, logg))
				p.Post("/", admin.ProductCreate(d.Products, logg))
				p.Get("/{productId}", admin.ProductGet(d.Products, logg))
				p.Patch("/{productId}", admin.ProductUpdate(d.Products, logg))
				p.Delete("/{productId}", admin.ProductDelete(d.Products, logg))
				p.Post("/{productId}/images", admin.ProductUploadImages(d.Products, d.Media, cfg.Media.MaxSizeBytes, logg))
			})

			private.Route("/collections", func(c chi.Router) {
				c.Get("/", controllers.CollectionList(d.Collections, logg))
				c.Post("/", admin.CollectionCreate(d.Collections, logg))
				c.Delete("/{collectionId}", admin.CollectionDelete(d.Collections, logg))
			})

			private.Route("/settings", func(s chi.Router) {
				s.Get("/", admin.SettingsGet(d.Settings))
				s.Put("/", admin.SettingsUpdate(d.Settings, logg))
				s.Post("/shipping-blocks", admin.ShippingBlockAdd(d.Settings, logg))
				s.Delete("/shipping-blocks/{blockId}", admin.ShippingBlockRemove(d.Settings, logg))
				s.Post("/logo", admin.LogoUpload(d.Settings, d.Media, cfg.Media.MaxSizeBytes, logg))
			})

			private.Route("/orders", func(o chi.Router) {
				o.Get("/", admin.OrderList(d.Orders, logg))
				o.Get("/summary", admin.OrderSummary(d.Orders, logg))
				o.Get("/{orderId}", admin.OrderDetail(d.Orders, logg))
				o.Patch("/{orderId}/status", admin.OrderSetStatus(d.Orders, logg))
			})

			private.Get("/live/{topic}", liveTopics(d.Feeds, cfg.CORS.AllowedOrigins, logg))
		})
	})

	return r
}

func liveTopics(feeds Feeds, origins []string, logg *logger.Logger) http.HandlerFunc {
	upgrader := livecontrollers.NewUpgrader(origins)
	streams := map[string]http.HandlerFunc{}
	if feeds.Products != nil {
		streams[live.TopicProducts] = livecontrollers.Stream(live.TopicProducts, feeds.Products, upgrader, logg)
	}
	if feeds.Orders != nil {
		streams[live.TopicOrders] = livecontrollers.Stream(live.TopicOrders, feeds.Orders, upgrader, logg)
	}
	if feeds.Collections != nil {
		streams[live.TopicCollections] = livecontrollers.Stream(live.TopicCollections, feeds.Collections, upgrader, logg)
	}
	return livecontrollers.Topics(streams, logg)
}
