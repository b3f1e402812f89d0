package bootstrap

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/amansoomro062/codesign/internal/config"
	"github.com/amansoomro062/codesign/internal/infra/cache"
	"github.com/amansoomro062/codesign/internal/infra/db"
	"github.com/amansoomro062/codesign/internal/infra/httpclient"
	"github.com/amansoomro062/codesign/internal/infra/logger"
	mq "github.com/amansoomro062/codesign/internal/infra/queue"
	"github.com/amansoomro062/codesign/internal/modules/handler"
	"github.com/amansoomro062/codesign/internal/modules/model"
	"github.com/amansoomro062/codesign/internal/modules/repo"
	"github.com/amansoomro062/codesign/internal/modules/service"
	"github.com/amansoomro062/codesign/internal/realtime"
	"github.com/amansoomro062/codesign/internal/telemetry"
)

// BuildContainer registers every provider. Providers are lazy: telemetry
// must be set up before the first invocation so the DB and Redis plugins
// pick up the global providers.
func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level, cfg.IsProduction())
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		if telemetry.Enabled(cfg) {
			if err := db.RegisterOpenTelemetryPlugin(d); err != nil {
				return nil, err
			}
		}
		if cfg.Database.AutoMigrate {
			if err := d.AutoMigrate(
				&model.User{},
				&model.Project{},
				&model.ProjectCollaborator{},
				&model.ProjectActivity{},
				&model.Design{},
				&model.DesignCollaborator{},
				&model.DesignVersion{},
				&model.DesignActivity{},
			); err != nil {
				return nil, err
			}
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		rdb, err := cache.New(cfg)
		if err != nil {
			return nil, err
		}
		if telemetry.Enabled(cfg) {
			if err := cache.RegisterOpenTelemetryPlugin(rdb); err != nil {
				return nil, err
			}
		}
		return rdb, nil
	})

	// RabbitMQ publisher; activity events are dropped when disabled
	do.Provide(inj, func(i *do.Injector) (mq.Publisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		if !cfg.RabbitMQ.Enabled {
			log.Info("rabbitmq disabled, activity events will not be published")
			return mq.NopPublisher{}, nil
		}
		conn, err := mq.Dial(cfg)
		if err != nil {
			return nil, err
		}
		return mq.NewPublisher(conn, log, cfg.App.Name, cfg.RabbitMQ.ExchangeName.Activity)
	})

	// GitHub HTTP client
	do.Provide(inj, func(i *do.Injector) (*httpclient.GitHubClient, error) {
		return httpclient.NewGitHubClient(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.UserRepo, error) {
		return repo.NewUserRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ProjectRepo, error) {
		return repo.NewProjectRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.DesignRepo, error) {
		return repo.NewDesignRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (*service.ActivityNotifier, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewActivityNotifier(
			do.MustInvoke[mq.Publisher](i),
			cfg.RabbitMQ.ExchangeName.Activity,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.AuthService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewAuthService(do.MustInvoke[repo.UserRepo](i), service.AuthOptions{
			Secret: cfg.Auth.JWTSecret,
			Pepper: cfg.Auth.SecretPepper,
			TTL:    cfg.JWTExpiry(),
		}), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.UserService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewUserService(do.MustInvoke[repo.UserRepo](i), cfg.Auth.SecretPepper), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ProjectService, error) {
		return service.NewProjectService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[*service.ActivityNotifier](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.DesignService, error) {
		return service.NewDesignService(
			do.MustInvoke[repo.DesignRepo](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[*service.ActivityNotifier](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.StatsService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewStatsService(
			do.MustInvoke[*httpclient.GitHubClient](i),
			do.MustInvoke[*redis.Client](i),
			do.MustInvoke[repo.UserRepo](i),
			cfg.GitHubCacheTTL(),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.AIService, error) {
		return service.NewAIService(), nil
	})

	// Realtime
	do.Provide(inj, func(i *do.Injector) (*telemetry.RealtimeMetrics, error) {
		return telemetry.NewRealtimeMetrics(otel.GetMeterProvider())
	})
	do.Provide(inj, func(i *do.Injector) (*realtime.Registry, error) {
		return realtime.NewRegistry(
			do.MustInvoke[*zap.Logger](i),
			do.MustInvoke[*telemetry.RealtimeMetrics](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*realtime.Dispatcher, error) {
		return realtime.NewDispatcher(
			do.MustInvoke[*realtime.Registry](i),
			do.MustInvoke[service.DesignService](i),
			do.MustInvoke[*zap.Logger](i),
			do.MustInvoke[*telemetry.RealtimeMetrics](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*realtime.Handler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return realtime.NewHandler(
			do.MustInvoke[*realtime.Registry](i),
			do.MustInvoke[*realtime.Dispatcher](i),
			do.MustInvoke[service.AuthService](i),
			realtime.Options{
				SendBuffer:      cfg.Realtime.SendBuffer,
				MaxMessageBytes: cfg.Realtime.MaxMessageBytes,
				AllowedOrigins:  []string{cfg.App.ClientURL},
			},
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.AuthHandler, error) {
		return handler.NewAuthHandler(do.MustInvoke[service.AuthService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.UserHandler, error) {
		return handler.NewUserHandler(do.MustInvoke[service.UserService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ProjectHandler, error) {
		return handler.NewProjectHandler(do.MustInvoke[service.ProjectService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.DesignHandler, error) {
		return handler.NewDesignHandler(do.MustInvoke[service.DesignService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.AIHandler, error) {
		return handler.NewAIHandler(do.MustInvoke[service.AIService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.StatsHandler, error) {
		return handler.NewStatsHandler(do.MustInvoke[service.StatsService](i)), nil
	})

	return inj
}

// Seed runs the start-up data alignment.
func Seed(ctx context.Context, inj *do.Injector) error {
	return EnsureSeedUser(ctx,
		do.MustInvoke[repo.UserRepo](inj),
		do.MustInvoke[*config.Config](inj),
		do.MustInvoke[*zap.Logger](inj),
	)
}
