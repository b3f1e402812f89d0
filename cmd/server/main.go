package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/amansoomro062/codesign/internal/bootstrap"
	"github.com/amansoomro062/codesign/internal/config"
	"github.com/amansoomro062/codesign/internal/infra/cache"
	"github.com/amansoomro062/codesign/internal/infra/db"
	mq "github.com/amansoomro062/codesign/internal/infra/queue"
	"github.com/amansoomro062/codesign/internal/modules/handler"
	"github.com/amansoomro062/codesign/internal/modules/serializer"
	"github.com/amansoomro062/codesign/internal/modules/service"
	"github.com/amansoomro062/codesign/internal/realtime"
	"github.com/amansoomro062/codesign/internal/router"
	"github.com/amansoomro062/codesign/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	inj := bootstrap.BuildContainer()

	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	defer func() { _ = log.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	serializer.ShowErrorDetail(cfg.IsDevelopment())

	// telemetry first so the DB and Redis plugins see the global providers
	if _, err := telemetry.SetupTracing(cfg); err != nil {
		log.Fatal("setup tracing", zap.Error(err))
	}
	if _, err := telemetry.SetupMetrics(cfg); err != nil {
		log.Fatal("setup metrics", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.Seed(ctx, inj); err != nil {
		log.Fatal("seed user", zap.Error(err))
	}

	rdb := do.MustInvoke[*redis.Client](inj)
	registry := do.MustInvoke[*realtime.Registry](inj)

	engine := router.NewRouter(router.RouterDeps{
		Config:         cfg,
		Log:            log,
		Redis:          rdb,
		Authn:          do.MustInvoke[service.AuthService](inj),
		AuthHandler:    do.MustInvoke[*handler.AuthHandler](inj),
		UserHandler:    do.MustInvoke[*handler.UserHandler](inj),
		ProjectHandler: do.MustInvoke[*handler.ProjectHandler](inj),
		DesignHandler:  do.MustInvoke[*handler.DesignHandler](inj),
		AIHandler:      do.MustInvoke[*handler.AIHandler](inj),
		StatsHandler:   do.MustInvoke[*handler.StatsHandler](inj),
		Realtime:       do.MustInvoke[*realtime.Handler](inj),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// hijacked websocket connections are not tracked by the server
		registry.Shutdown()
		err := srv.Shutdown(sctx)

		if pErr := do.MustInvoke[mq.Publisher](inj).Close(); pErr != nil {
			log.Warn("close publisher", zap.Error(pErr))
		}
		if cErr := cache.Close(rdb); cErr != nil {
			log.Warn("close redis", zap.Error(cErr))
		}
		if dErr := db.Close(do.MustInvoke[*gorm.DB](inj)); dErr != nil {
			log.Warn("close database", zap.Error(dErr))
		}
		if tErr := telemetry.Shutdown(sctx); tErr != nil {
			log.Warn("shutdown tracing", zap.Error(tErr))
		}
		if mErr := telemetry.ShutdownMetrics(sctx); mErr != nil {
			log.Warn("shutdown metrics", zap.Error(mErr))
		}
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
