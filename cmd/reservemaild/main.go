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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/m-yokoyama/reservemail/constants"
	"github.com/m-yokoyama/reservemail/internal/common"
	"github.com/m-yokoyama/reservemail/internal/export"
	"github.com/m-yokoyama/reservemail/internal/lark"
	"github.com/m-yokoyama/reservemail/internal/metrics"
	"github.com/m-yokoyama/reservemail/internal/parser"
	"github.com/m-yokoyama/reservemail/internal/repository"
	"github.com/m-yokoyama/reservemail/internal/server"
)

func main() {
	// Logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := common.LoadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Archive DB
	db, err := repository.Open(cfg.Archive.Path)
	if err != nil {
		log.Fatalf("opening archive: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("archive health failed: %v", err)
	}
	log.Infow("archive OK", "path", cfg.Archive.Path)

	repo := repository.NewRecordRepository(db, slogger)
	larkClient := lark.NewClient(cfg.Lark, slogger)

	// Probe the bitable on startup, keep running when it fails.
	if err := larkClient.TestConnection(ctx); err != nil {
		log.Warnw("lark connection test failed, continuing startup", "err", err)
	} else {
		log.Infow("lark connection OK")
	}

	p := parser.New(slogger, time.Now, constants.StatusNew)
	m := metrics.New(prometheus.DefaultRegisterer)
	exportSvc := export.NewService(repo, slogger, time.Now)

	srv := server.NewServer(cfg, p, larkClient, repo, exportSvc, m, db, slogger)
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Router(promhttp.Handler()),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Infof("HTTP serving on %s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
	log.Info("stopped.")
}
