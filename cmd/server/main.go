package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/AngelCh415/signups-report/internal/config"
	"github.com/AngelCh415/signups-report/internal/httpx"
	"github.com/AngelCh415/signups-report/internal/metrics"
	"github.com/AngelCh415/signups-report/internal/report"
	"github.com/AngelCh415/signups-report/internal/store"
	"github.com/AngelCh415/signups-report/internal/utils"
)

func main() {
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := store.Connect(ctx, cfg.MongoURI, cfg.QueryTimeout)
	if err != nil {
		logger.Error("mongo connect failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()

	st := store.NewMongo(client.Database(cfg.MongoDB))
	err = utils.NewBackoff(500*time.Millisecond, 4).Do(ctx, func(i int) error {
		pctx, cancel := context.WithTimeout(ctx, cfg.QueryTimeout)
		defer cancel()
		if err := st.Ping(pctx); err != nil {
			logger.Warn("mongo not ready", slog.Int("attempt", i+1), slog.String("err", err.Error()))
			return err
		}
		return nil
	})
	if err != nil {
		// readiness reports the outage; refreshes retry on their own
		logger.Error("mongo unreachable at startup", slog.String("err", err.Error()))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	eng := report.NewEngine(st, logger, metrics.NewRecorder(reg), report.Options{
		Limit:        cfg.ReportLimit,
		WindowDays:   cfg.WindowDays,
		Timeout:      cfg.QueryTimeout,
		RefreshAfter: cfg.RefreshInterval,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpx.NewRouter(logger, eng, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	logger.Info("starting server", slog.String("port", cfg.Port), slog.String("db", cfg.MongoDB))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
