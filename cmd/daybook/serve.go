package main

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/totegamma/daybook/internal/config"
	"github.com/totegamma/daybook/internal/infrastructure/providers"
	"github.com/totegamma/daybook/internal/infrastructure/repository"
	"github.com/totegamma/daybook/internal/metadata"
	"github.com/totegamma/daybook/internal/present/rest"
	"github.com/totegamma/daybook/internal/service"
	"github.com/totegamma/daybook/internal/usecase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return serve(ctx, conf)
	},
}

func serve(ctx context.Context, conf config.Config) error {
	if conf.Server.SentryDsn != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:     conf.Server.SentryDsn,
			Release: "daybook@" + version,
		})
		if err != nil {
			slog.Error("failed to initialize sentry", slog.String("error", err.Error()), slog.String("module", "main"))
		} else {
			defer sentry.Flush(5 * time.Second)
		}
	}

	if conf.Server.EnableTrace {
		cleanup, err := setupTraceProvider(ctx, conf.Server.TraceEndpoint, "daybook", version)
		if err != nil {
			return errors.Wrap(err, "failed to setup trace provider")
		}
		defer cleanup()
	}

	db, err := providers.NewDatabase(conf.Server)
	if err != nil {
		return errors.Wrap(err, "failed to connect database")
	}
	if err := providers.MigrateDatabase(db); err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}

	store := repository.NewStore(db)
	calendar := usecase.NewCalendar(conf.Journal.Location)

	blob, err := providers.NewBlobStore(ctx, conf.Blob)
	if err != nil {
		return errors.Wrap(err, "failed to setup blob store")
	}
	if blob == nil {
		slog.Warn("blob store is not configured; attachments are disabled", slog.String("module", "main"))
	}

	rdb, err := providers.NewRedis(ctx, conf.Server)
	if err != nil {
		return errors.Wrap(err, "failed to setup redis")
	}

	var events usecase.EventPublisher
	var realtime rest.Realtime
	if rdb != nil {
		defer rdb.Close()
		signalService := service.NewSignalService(rdb)
		events = signalService
		realtime = signalService
	}

	activity := usecase.NewActivityService()
	streaks := usecase.NewStreakService()
	stats := usecase.NewStatsUsecase(store, activity, streaks, providers.NewStatsCache(conf.Server), conf.Journal.StatsTTL)
	entries := usecase.NewEntryUsecase(
		store,
		metadata.NewValidator(),
		activity,
		streaks,
		events,
		stats,
		usecase.EntryOptions{
			Calendar:      calendar,
			CreateTimeout: conf.Journal.CreateTimeout,
			UpdateTimeout: conf.Journal.UpdateTimeout,
		},
	)
	vocabulary := usecase.NewVocabularyUsecase(store)
	attachments := usecase.NewAttachmentUsecase(store, blob, calendar)

	handler := rest.NewHandler(calendar, entries, stats, vocabulary, attachments, realtime, store)

	e := echo.New()
	e.HideBanner = true
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("daybook", otelecho.WithSkipper(func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		})))
	}
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("32M"))

	handler.RegisterRoutes(e)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()), slog.String("module", "main"))
		}
	}()

	slog.Info("daybook started", slog.String("listen", conf.Server.Listen), slog.String("module", "main"))
	if err := e.Start(conf.Server.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func setupTraceProvider(ctx context.Context, endpoint, serviceName, serviceVersion string) (func(), error) {
	exporter, err := otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", serviceVersion),
	)

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown tracer provider", slog.String("error", err.Error()), slog.String("module", "main"))
		}
	}
	return cleanup, nil
}
