package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/pingme/pingme-server/internal/config"
	"github.com/pingme/pingme-server/internal/infra/database"
	"github.com/pingme/pingme-server/internal/infra/repository"
	"github.com/pingme/pingme-server/internal/infra/telemetry"
	"github.com/pingme/pingme-server/internal/present/rest"
	"github.com/pingme/pingme-server/internal/present/rest/middleware"
	"github.com/pingme/pingme-server/internal/service"
	"github.com/pingme/pingme-server/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		slog.Error("Failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.MigratePostgres(db); err != nil {
		slog.Error("Failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var signal *service.SignalService
	if conf.Server.RedisAddr != "" {
		rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisDB)
		signal = service.NewSignalService(rdb)
	}

	var mc *memcache.Client
	if conf.Server.MemcachedAddr != "" {
		mc = database.NewMemcached(conf.Server.MemcachedAddr)
	}

	userRepo := repository.NewUserRepository(db, mc)
	convRepo := repository.NewConversationRepository(db)
	msgRepo := repository.NewMessageRepository(db)

	userUC := usecase.NewUserUsecase(userRepo)
	chatUC := usecase.NewChatUsecase(convRepo, msgRepo, userRepo)

	authSvc := service.NewAuthService(conf.Auth.Secret, conf.Auth.TokenExpiryDuration())
	registry := service.NewPresenceRegistry()
	dispatcher := service.NewDispatcher(registry, signal)

	e := echo.New()
	e.Validator = rest.NewValidator()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	if conf.Server.EnableTrace {
		ctx := context.Background()
		shutdown, err := telemetry.SetupTraceProvider(ctx, conf.Server.TraceEndpoint, "pingme")
		if err != nil {
			slog.Error("Failed to set up tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			if err := shutdown(ctx); err != nil {
				slog.Error("Failed to shut down tracing", slog.String("error", err.Error()))
			}
		}()
		e.Use(otelecho.Middleware("pingme"))
	}

	authMw := middleware.NewAuthMiddleware(authSvc)
	e.Use(authMw.IdentifyIdentity)

	handler := rest.NewHandler(userUC, chatUC, authSvc, dispatcher, conf.Server.AllowedOrigins)
	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.ListenAddr))
}
