package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/username/investfolio/backend/src/config"
	"github.com/username/investfolio/backend/src/database"
	"github.com/username/investfolio/backend/src/logger"
	"github.com/username/investfolio/backend/src/processors"
	"github.com/username/investfolio/backend/src/services"
	"github.com/username/investfolio/backend/src/store"
)

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Application starting...")

	database.InitDB(config.Cfg.DatabasePath)
	defer database.DB.Close()

	sqlStore := store.NewSQLStore(database.DB, config.Cfg.StoreTimeout)
	resolver := processors.NewCachingResolver(processors.MoexContractResolver{})
	ingest := services.NewIngestService(sqlStore)
	statements := services.NewStatementService(ingest, resolver, config.Cfg.MaxStatementSizeBytes)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.Cfg.FxRefreshEnabled {
		refreshRates(ctx, sqlStore)
	}

	files, err := listStatementFiles(config.Cfg.StatementsDir)
	if err != nil {
		logger.L.Error("Failed to list statement files", "dir", config.Cfg.StatementsDir, "error", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		logger.L.Info("No statement files found", "dir", config.Cfg.StatementsDir)
		return
	}
	logger.L.Info("Processing statement files",
		"dir", config.Cfg.StatementsDir,
		"files", len(files),
		"source", config.Cfg.StatementSource,
		"workers", config.Cfg.IngestWorkers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Cfg.IngestWorkers)
	for _, file := range files {
		g.Go(func() error {
			sum, err := statements.ProcessFile(gctx, file, config.Cfg.StatementSource)
			if err != nil {
				if errors.Is(err, store.ErrUnavailable) {
					// Store trouble affects every file; stop the run.
					return err
				}
				logger.L.Error("Statement file failed", "file", file, "error", err)
				return nil
			}
			logSummary(sum)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.L.Error("Ingestion aborted", "error", err)
		os.Exit(1)
	}
	logger.L.Info("All statement files processed")
}

func listStatementFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".xlsx") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

func logSummary(sum *services.Summary) {
	logger.L.Info("Statement ingested",
		"file", sum.File,
		"accepted", sum.Accepted,
		"duplicates", sum.Duplicates,
		"rejections", len(sum.Rejections),
		"skippedTables", len(sum.SkippedTables))
	for _, rej := range sum.Rejections {
		logger.L.Warn("Rejected during ingestion",
			"file", sum.File,
			"entity", rej.Entity,
			"key", rej.Key,
			"reason", rej.Reason)
	}
}

func refreshRates(ctx context.Context, st store.Store) {
	from, err := time.Parse("2006-01-02", config.Cfg.FxRatesFromDate)
	if err != nil {
		logger.L.Warn("Invalid FX_RATES_FROM_DATE, skipping rate refresh",
			"value", config.Cfg.FxRatesFromDate, "error", err)
		return
	}
	fx := services.NewFxRateService(st, config.Cfg.FxRatesBaseURL)
	if err := fx.UpdateFrom(ctx, from); err != nil {
		logger.L.Warn("Exchange rate refresh did not complete", "error", err)
	}
}
