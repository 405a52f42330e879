package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/pprofhandler"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/orderdesk/api/handler"
	"github.com/fastygo/orderdesk/domain"
	"github.com/fastygo/orderdesk/internal/config"
	"github.com/fastygo/orderdesk/internal/infrastructure/monitor"
	"github.com/fastygo/orderdesk/internal/infrastructure/storage"
	"github.com/fastygo/orderdesk/internal/metrics"
	"github.com/fastygo/orderdesk/internal/middleware"
	"github.com/fastygo/orderdesk/internal/records"
	"github.com/fastygo/orderdesk/internal/router"
	"github.com/fastygo/orderdesk/internal/services"
	"github.com/fastygo/orderdesk/internal/services/lifecycle"
	"github.com/fastygo/orderdesk/internal/snapshot"
	"github.com/fastygo/orderdesk/pkg/httpcontext"
	"github.com/fastygo/orderdesk/pkg/logger"
	influenceUC "github.com/fastygo/orderdesk/usecase/influence"
	orderUC "github.com/fastygo/orderdesk/usecase/order"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	sink, err := storage.Open(appCtx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("storage unavailable", zap.Error(err))
	}
	manager.Register("storage", func(ctx context.Context) error {
		return sink.Close()
	})

	orders := records.New[*domain.Order]()
	influences := records.New[*domain.InfluenceEvent]()

	appMetrics := metrics.New()
	appMetrics.TrackStore("order", orders.Len)
	appMetrics.TrackStore("influence", influences.Len)

	mon := monitor.New(sink, map[string]func() int{
		"order":     orders.Len,
		"influence": influences.Len,
	}, cfg.HTTP.HealthInterval, zapLogger)
	mon.Refresh()
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	tables := snapshot.Bind(sink, orders, influences, zapLogger)
	scheduler := services.NewSnapshotScheduler(
		[]services.Table{tables.Orders, tables.Influences},
		mon,
		appMetrics,
		zapLogger,
		services.SchedulerConfig{
			Interval:     cfg.Snapshot.Interval,
			FlushOnWrite: cfg.Snapshot.FlushOnWrite,
			Timeout:      cfg.Snapshot.Timeout,
		},
	)
	if err := scheduler.LoadAll(appCtx); err != nil {
		zapLogger.Fatal("initial snapshot load failed", zap.Error(err))
	}
	scheduler.Start()
	manager.Register("snapshot_scheduler", scheduler.Stop)

	orderUseCase := orderUC.New(orders, scheduler, appMetrics, zapLogger)
	influenceUseCase := influenceUC.New(influences, scheduler, appMetrics, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Order:     apiHandler.NewOrderHandler(orderUseCase, ctxAdapter, zapLogger),
		Influence: apiHandler.NewInfluenceHandler(influenceUseCase, ctxAdapter, zapLogger),
		Health:    apiHandler.NewHealthHandler(mon, scheduler, ctxAdapter, zapLogger),
	}
	if cfg.HTTP.EnableMetrics {
		handlers.Metrics = appMetrics.Handler()
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	r := router.New(handlers, authMiddleware)
	if cfg.HTTP.EnablePprof {
		r.GET("/debug/pprof/{profile:*}", pprofhandler.PprofHandler)
	}

	server := &fasthttp.Server{
		Handler:            r.Handler,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		MaxConnsPerIP:      cfg.HTTP.MaxConn,
		Name:               cfg.AppName,
		MaxRequestBodySize: 1 << 20,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", sink.Driver()),
			zap.Int("orders", orders.Len()),
			zap.Int("influences", influences.Len()),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
