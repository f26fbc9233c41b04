package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bookhaven/bookstore-backend/api/routes"
	"github.com/bookhaven/bookstore-backend/internal/cart"
	"github.com/bookhaven/bookstore-backend/internal/coupons"
	"github.com/bookhaven/bookstore-backend/internal/orders"
	"github.com/bookhaven/bookstore-backend/internal/payments"
	"github.com/bookhaven/bookstore-backend/internal/points"
	"github.com/bookhaven/bookstore-backend/pkg/auth/session"
	"github.com/bookhaven/bookstore-backend/pkg/config"
	"github.com/bookhaven/bookstore-backend/pkg/db"
	"github.com/bookhaven/bookstore-backend/pkg/gateway"
	"github.com/bookhaven/bookstore-backend/pkg/logger"
	"github.com/bookhaven/bookstore-backend/pkg/metrics"
	"github.com/bookhaven/bookstore-backend/pkg/migrate"
	"github.com/bookhaven/bookstore-backend/pkg/outbox"
	"github.com/bookhaven/bookstore-backend/pkg/redis"
)

// gatewayAdapter bridges the aggregator client onto the payment service's
// provider boundary.
type gatewayAdapter struct {
	client *gateway.Client
}

func (g gatewayAdapter) Prepare(ctx context.Context, req payments.PrepareRequest) (payments.PrepareResponse, error) {
	out, err := g.client.Prepare(ctx, gateway.PrepareInput{
		Method:  req.Method.String(),
		OrderNo: req.OrderNo,
		Amount:  req.Amount,
	})
	if err != nil {
		return payments.PrepareResponse{}, err
	}
	return payments.PrepareResponse{TxID: out.TxID, Provider: out.Provider}, nil
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gatewayClient, err := gateway.NewClient(cfg.Payment.GatewayAPIKey, gateway.WithBaseURL(cfg.Payment.GatewayBaseURL))
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway client", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	cartRepo := cart.NewRepository(gormDB)
	orderRepo := orders.NewRepository(gormDB)
	paymentRepo := payments.NewRepository(gormDB)

	cartService, err := cart.NewService(cartRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	couponService, err := coupons.NewService(coupons.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon service", err)
		os.Exit(1)
	}
	pointService, err := points.NewService(points.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create point service", err)
		os.Exit(1)
	}

	events := outbox.NewService(outbox.NewRepository(gormDB), logg)

	orderService, err := orders.NewService(orderRepo, cartRepo, couponService, pointService, dbClient, events, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	approvalMetrics := metrics.NewApprovalMetrics(prometheus.DefaultRegisterer)

	paymentService, err := payments.NewService(
		paymentRepo,
		orderRepo,
		cartRepo,
		couponService,
		pointService,
		dbClient,
		gatewayAdapter{client: gatewayClient},
		redisClient,
		events,
		approvalMetrics,
		logg,
		cfg.Payment,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Redis:    redisClient,
			Sessions: sessionManager,
			Cart:     cartService,
			Orders:   orderService,
			Coupons:  couponService,
			Points:   pointService,
			Payments: paymentService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
