package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/routenest/routenest/modules/tree/adapters"
	"github.com/routenest/routenest/modules/tree/domain/node"
	"github.com/routenest/routenest/modules/tree/infrastructure/contenthttp"
	"github.com/routenest/routenest/modules/tree/infrastructure/persistence"
	"github.com/routenest/routenest/modules/tree/services"
	"github.com/routenest/routenest/pkg/composables"
	"github.com/routenest/routenest/pkg/configuration"
	"github.com/routenest/routenest/pkg/eventbus"
)

const shutdownTimeout = 10 * time.Second

func runMigrations(conf *configuration.Configuration) error {
	db, err := sql.Open("pgx", conf.Database.Opts)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, conf.MigrationsDir)
}

func registerAuditSubscribers(bus eventbus.EventBus, logger *logrus.Logger) {
	bus.Subscribe(func(e *node.CreatedEvent) {
		logger.WithFields(logrus.Fields{
			"node":  e.Node.ID(),
			"kind":  e.Node.Kind(),
			"actor": e.Actor,
		}).Info("tree node created")
	})
	bus.Subscribe(func(e *node.RemovedEvent) {
		logger.WithFields(logrus.Fields{
			"node":  e.Node.ID(),
			"kind":  e.Node.Kind(),
			"actor": e.Actor,
		}).Info("tree node removed")
	})
	bus.Subscribe(func(e *node.AccessControlUpdatedEvent) {
		logger.WithFields(logrus.Fields{
			"node":      e.Node.ID(),
			"recursive": e.Recursive,
			"actor":     e.Actor,
		}).Info("tree node access control updated")
	})
}

func newRouter(conf *configuration.Configuration, pool *pgxpool.Pool) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	if conf.Prometheus.Enabled {
		router.Handle(conf.Prometheus.Path, promhttp.Handler()).Methods(http.MethodGet)
	}
	return router
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	defer conf.Unload()
	logger := conf.Logger()

	if err := runMigrations(conf); err != nil {
		logger.WithError(err).Fatal("failed to run migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	contentClient, err := contenthttp.New(conf.Content.BaseURL, conf.Content.Timeout)
	if err != nil {
		logger.WithError(err).Fatal("failed to configure content service client")
	}

	registry := adapters.Default(contentClient, logger)
	settingsRepo := persistence.NewSettingsRepository()
	treeRepo := persistence.NewTreeRepository(registry, settingsRepo, conf.AdminRole, logger)

	bus := eventbus.NewEventPublisher(logger)
	registerAuditSubscribers(bus, logger)
	treeService := services.NewTreeService(treeRepo, nil, bus, logger)

	appCtx := composables.WithPool(context.Background(), pool)
	forest, err := treeService.LoadTree(appCtx, "", nil, false, true)
	if err != nil {
		logger.WithError(err).Warn("startup forest check failed")
	} else {
		logger.WithField("roots", len(forest)).Info("tree engine ready")
	}

	srv := &http.Server{
		Addr:    conf.SocketAddress,
		Handler: newRouter(conf, pool),
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.WithField("address", conf.SocketAddress).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped unexpectedly")
		}
	}()

	<-stop
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
