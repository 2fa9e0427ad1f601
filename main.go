package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lg/fitness-metrics-go-api/internal/config"
	"lg/fitness-metrics-go-api/internal/logging"
	"lg/fitness-metrics-go-api/internal/metrics"
	"lg/fitness-metrics-go-api/internal/store"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

type App struct {
	cfg    *config.Config
	store  store.Store
	cron   *cron.Cron
	server *http.Server
}

func main() {
	fmt.Println("starting ...")

	// .env is optional for the server; real deployments set the env directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	defaultEnv := os.Getenv("APP_ENV")
	if defaultEnv == "" {
		defaultEnv = "development"
	}
	env := flag.String("env", defaultEnv, "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.LogsPath,
		LogToStdout:   cfg.LogToStdout,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogFormatJSON,
	})
	log.Warnf("---->> running in [%s] environment", *env)

	app, err := newApp(context.Background(), cfg, *env)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	if err := app.run(); err != nil {
		log.Errorf("shutdown: %v", err)
		os.Exit(1)
	}
}

func newApp(ctx context.Context, cfg *config.Config, env string) (*App, error) {
	st, err := store.Open(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.DBDriver, err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	// sqlite has no pool to report on
	if pool, ok := st.(interface{ Stat() *pgxpool.Stat }); ok {
		reg.MustRegister(pgxpoolprometheus.NewCollector(pool, map[string]string{"db_name": "fitness"}))
	}
	m := metrics.NewManager("fitness", "api", reg)

	if env == "prod" || env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	h := newHandler(st, m, cfg.Formulas(), cfg.OpenAIBaseURL)

	app := &App{
		cfg:   cfg,
		store: st,
		cron:  cron.New(),
		server: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           h.newRouter(reg),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	if cfg.FitInboxDir != "" {
		inbox, err := newFitInbox(h, cfg.FitInboxDir, cfg.FitInboxUserID)
		if err != nil {
			return nil, multierr.Append(err, st.Close())
		}
		if err := inbox.schedule(app.cron, cfg.FitInboxSchedule); err != nil {
			return nil, multierr.Append(fmt.Errorf("schedule fit inbox: %w", err), st.Close())
		}
		log.Infof("watching %s for FIT files (%s)", cfg.FitInboxDir, cfg.FitInboxSchedule)
	}

	return app, nil
}

// run serves until SIGINT/SIGTERM, then stops the scheduler, drains the
// server and closes the store.
func (app *App) run() error {
	app.cron.Start()

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("server listening on %s", app.server.Addr)
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-shutdown:
		log.Infof("received %s, shutting down", sig)
	case runErr = <-serverErr:
		log.Errorf("server error: %v", runErr)
	}

	// wait for a running inbox scan to finish
	<-app.cron.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return multierr.Combine(runErr, app.server.Shutdown(ctx), app.store.Close())
}
