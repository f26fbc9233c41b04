package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bookhaven/bookstore-backend/api/controllers"
	"github.com/bookhaven/bookstore-backend/api/middleware"
	"github.com/bookhaven/bookstore-backend/internal/cart"
	"github.com/bookhaven/bookstore-backend/internal/coupons"
	"github.com/bookhaven/bookstore-backend/internal/orders"
	"github.com/bookhaven/bookstore-backend/internal/payments"
	"github.com/bookhaven/bookstore-backend/internal/points"
	"github.com/bookhaven/bookstore-backend/pkg/auth/session"
	"github.com/bookhaven/bookstore-backend/pkg/config"
	"github.com/bookhaven/bookstore-backend/pkg/db"
	"github.com/bookhaven/bookstore-backend/pkg/logger"
	"github.com/bookhaven/bookstore-backend/pkg/redis"
)

// Deps carries everything the HTTP edge needs. The router owns no business
// logic; each controller talks to exactly one service.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Sessions session.SessionChecker

	Cart     cart.Service
	Orders   orders.Service
	Coupons  coupons.Service
	Points   points.Service
	Payments payments.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	paymentPolicy := middleware.NewRateLimitPolicy(
		"payment",
		cfg.RateLimit.PaymentWindow,
		cfg.RateLimit.PaymentIPLimit,
		cfg.RateLimit.PaymentUserLimit,
	)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"postgres": deps.DB,
			"redis":    deps.Redis,
		}))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(deps.Cart, logg))
			r.Post("/items", controllers.AddCartItem(deps.Cart, logg))
			r.Patch("/items/{itemID}", controllers.UpdateCartItem(deps.Cart, logg))
			r.Delete("/items/{itemID}", controllers.RemoveCartItem(deps.Cart, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.PlaceOrder(deps.Orders, logg))
			r.Get("/", controllers.ListOrders(deps.Orders, logg))
			r.Get("/{orderID}", controllers.GetOrder(deps.Orders, logg))
			r.Post("/{orderID}/coupon", controllers.ApplyCoupon(deps.Orders, logg))
			r.Post("/{orderID}/points", controllers.ApplyPoints(deps.Orders, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(paymentPolicy, deps.Redis, logg))
				r.Post("/{orderID}/payment/ready", controllers.PaymentReady(deps.Payments, logg))
				r.Post("/{orderID}/payment/approve", controllers.PaymentApprove(deps.Payments, logg))
			})
			r.Get("/{orderID}/payments", controllers.ListPaymentAttempts(deps.Payments, logg))
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", controllers.ListCoupons(deps.Coupons, logg))
			r.Post("/{couponID}/claim", controllers.ClaimCoupon(deps.Coupons, logg))
		})

		r.Route("/points", func(r chi.Router) {
			r.Get("/balance", controllers.PointsBalance(deps.Points, logg))
			r.Get("/transactions", controllers.PointsHistory(deps.Points, logg))
		})
	})

	return r
}
