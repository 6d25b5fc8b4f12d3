package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"budgetapp/internal/cli"
	apphttp "budgetapp/internal/http"
	applog "budgetapp/internal/log"
	"budgetapp/internal/ocr"
	"budgetapp/internal/parser"
	"budgetapp/internal/services"
	"budgetapp/internal/storage"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		slog.Error("Configuration invalid", applog.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := cli.InitSQLite(ctx, logger, cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", applog.FieldError, err)
		os.Exit(1)
	}
	defer repo.Close()

	images, err := storage.NewImageStore(cfg.ReceiptsDir)
	if err != nil {
		logger.Error("Failed to prepare receipts directory", applog.FieldError, err, "path", cfg.ReceiptsDir)
		os.Exit(1)
	}

	tesseract := ocr.NewTesseract(cfg.TesseractPath, ocr.WithLanguage(cfg.OCRLanguage))
	if !tesseract.Available() {
		logger.WithComponent(applog.ComponentOCR).Warn("Tesseract binary not found, receipt uploads will fail", "binary", cfg.TesseractPath)
	}

	publisher, closePublisher := cli.InitPublisher(ctx, logger, cfg)
	defer closePublisher()

	sheet, err := cli.InitSheetReader(ctx, logger, cfg)
	if err != nil {
		logger.Warn("Budget sheet import disabled", applog.FieldError, err)
	}

	receipts := services.NewReceiptService(repo, images, tesseract, parser.New(), publisher)
	budgets := services.NewBudgetService(repo, sheet, publisher)

	srv := apphttp.NewServer(":"+cfg.Port, receipts, budgets, apphttp.Options{
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Logger:         logger,
		Ready:          repo.Ping,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting budgetapp server", applog.FieldOperation, applog.OpStartup, "port", cfg.Port, "db", cfg.SQLiteDBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
