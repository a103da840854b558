// Command exportxlsx dumps the local archive to an XLSX workbook.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/m-yokoyama/reservemail/internal/common"
	"github.com/m-yokoyama/reservemail/internal/export"
	"github.com/m-yokoyama/reservemail/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		outPath = flag.String("o", "reservations.xlsx", "output file")
		fromArg = flag.String("from", "", "start date (YYYY-MM-DD)")
		toArg   = flag.String("to", "", "end date (YYYY-MM-DD)")
	)
	flag.Parse()

	var fromPtr, toPtr *time.Time
	if *fromArg != "" {
		t, err := time.Parse("2006-01-02", *fromArg)
		if err != nil {
			logger.Error("invalid -from", "arg", *fromArg, "error", err)
			os.Exit(2)
		}
		fromPtr = &t
	}
	if *toArg != "" {
		t, err := time.Parse("2006-01-02", *toArg)
		if err != nil {
			logger.Error("invalid -to", "arg", *toArg, "error", err)
			os.Exit(2)
		}
		toPtr = &t
	}

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := repository.Open(cfg.Archive.Path)
	if err != nil {
		logger.Error("open archive", "path", cfg.Archive.Path, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := repository.NewRecordRepository(db, logger)
	svc := export.NewService(repo, logger, time.Now)

	xlsx, err := svc.ExportRecordsXLSX(ctx, fromPtr, toPtr)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*outPath, xlsx, 0o644); err != nil {
		logger.Error("write output", "path", *outPath, "error", err)
		os.Exit(1)
	}
	logger.Info("export written", "path", *outPath, "bytes", len(xlsx))
}
