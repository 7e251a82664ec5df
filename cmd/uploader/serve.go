package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/api"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/browser"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/netutil"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Attach to the LinkedIn tab and serve the control API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		slog.Info("uploader config loaded",
			"cdp_url", cfg.CDPURL(),
			"tab_url_filter", cfg.TabURLFilter,
			"bind_addr", cfg.BindAddr,
			"session_dir", cfg.SessionDir,
			"gateway_url", cfg.GatewayURL,
			"launch_browser", cfg.LaunchBrowser,
			"log_level", cfg.LogLevel,
		)

		if cfg.LaunchBrowser {
			launcher := newLauncher("")
			if err := launcher.Launch(ctx); err != nil {
				return err
			}
			defer launcher.Stop()
		}

		a, err := newApp(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer a.Close()

		ln, err := netutil.Listen(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
		if err != nil {
			return err
		}
		addr := ln.Addr().String()
		srv := &http.Server{Handler: api.NewServer(a.pipeline, a.broker), ReadHeaderTimeout: 10 * time.Second}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("uploader listening", "addr", addr, "docs", "http://"+addr+"/docs")
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("uploader shutdown failed", "error", err)
		}
		return nil
	},
}

func newLauncher(startURL string) *browser.Launcher {
	return browser.NewLauncher(browser.LaunchConfig{
		CDPAddress:  cfg.CDPAddress,
		CDPPort:     cfg.CDPPort,
		StartURL:    startURL,
		ProfileDir:  cfg.ProfileDir,
		BrowserPath: cfg.BrowserPath,
		Headless:    cfg.Headless,
	})
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Open Chromium on LinkedIn so you can sign in; the session is kept in the profile directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		launcher := newLauncher("https://www.linkedin.com/login")
		if err := launcher.Launch(ctx); err != nil {
			return err
		}
		if !launcher.Running() {
			cmd.Println("A browser is already listening on the CDP port; sign in there.")
			return nil
		}
		cmd.Println("Sign in to LinkedIn in the opened window, then press Ctrl+C.")
		<-ctx.Done()
		launcher.Stop()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(loginCmd)
}
