package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/campaign/store"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/config"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/gatewayapi"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/logging"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/netutil"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/odoo"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/reconcile"
)

func main() {
	cfg, err := config.LoadGateway()
	if err != nil {
		slog.Error("failed to load gateway config", "error", err)
		os.Exit(1)
	}

	logCloser, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		if _, writeErr := io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n"); writeErr != nil {
			slog.Debug("logger setup stderr write failed", "error", writeErr)
		}
		os.Exit(1)
	}
	defer func() { _ = logCloser.Close() }()

	slog.Info("gateway config loaded",
		"bind_addr", cfg.BindAddr,
		"port_auto_fallback", cfg.PortAutoFallback,
		"port_candidates", cfg.PortCandidates,
		"db_path", cfg.DBPath,
		"campaign_seed", cfg.CampaignSeed,
		"allowed_origins", cfg.AllowedOrigins,
		"odoo_rpc_rate", cfg.OdooRPCRate,
		"image_fetch_timeout", cfg.ImageFetchTimeout,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
	)

	ctx := context.Background()
	campaigns, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		slog.Error("failed to open campaign store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := campaigns.Close(); err != nil {
			slog.Debug("campaign store close failed", "error", err)
		}
	}()
	seedCampaigns(ctx, campaigns, cfg.CampaignSeed)

	connector := odoo.NewConnector(odoo.WithRateLimit(cfg.OdooRPCRate))
	svc := reconcile.NewService(reconcile.OdooConnector(connector), odoo.NewImageFetcher(cfg.ImageFetchTimeout))
	h := gatewayapi.NewServer(svc, campaigns, gatewayapi.Options{AllowedOrigins: cfg.AllowedOrigins})

	ln, err := netutil.Listen(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}
	addr := ln.Addr().String()

	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		slog.Info("gateway listening", "addr", addr, "docs", "http://"+addr+"/docs")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("gateway server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("gateway shutdown failed", "error", err)
	}
}

func seedCampaigns(ctx context.Context, campaigns *store.Store, path string) {
	if path == "" {
		return
	}
	seeds, err := config.LoadCampaignSeed(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no campaign seed file", "path", path)
		return
	}
	if err != nil {
		slog.Warn("campaign seed ignored", "path", path, "error", err)
		return
	}
	n, err := campaigns.Seed(ctx, seeds)
	if err != nil {
		slog.Warn("campaign seed failed", "path", path, "error", err)
		return
	}
	slog.Info("campaigns seeded", "path", path, "created", n, "declared", len(seeds))
}
