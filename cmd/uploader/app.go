package main

import (
	"context"
	"log/slog"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/browser"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/config"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/events"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/gateway"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/notify"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/session"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/uploader"
)

// app is the wiring shared by every subcommand.
type app struct {
	broker   *events.Broker
	pipeline *uploader.Pipeline
	page     *browser.Page
}

// newApp builds the pipeline. With attach set it connects to the profile tab;
// otherwise page actions fail and only cached or remote state is usable.
func newApp(ctx context.Context, c *config.UploaderConfig, attach bool) (*app, error) {
	store, err := session.NewFileStore(c.SessionDir)
	if err != nil {
		return nil, err
	}
	if err := defaultBackend(store, c.GatewayURL); err != nil {
		return nil, err
	}
	sess := session.New(store, gateway.NewClient(c.GatewayTimeout()))

	a := &app{broker: events.NewBroker()}
	machine := uploader.NewMachine(func(s uploader.Status) {
		a.broker.Publish(uploader.StatusTopic, s)
	})

	var page uploader.Page = uploader.Detached()
	if attach {
		p, err := browser.Connect(ctx, browser.Options{
			CDPURL:        c.CDPURL(),
			TabURLFilter:  c.TabURLFilter,
			ActionTimeout: c.ActionTimeout(),
		})
		if err != nil {
			return nil, err
		}
		a.page = p
		page = p
	}

	a.pipeline = uploader.New(sess, page, machine, uploader.Options{
		OverlayInterval: c.OverlayInterval(),
		OverlayAttempts: c.OverlayAttempts,
	})
	if c.NtfyEndpoint != "" {
		a.pipeline.WithNotifier(notify.New(nil, c.NtfyEndpoint))
	}
	return a, nil
}

// defaultBackend fills in the gateway URL when the saved settings lack one.
func defaultBackend(store session.Storage, url string) error {
	creds, err := store.Credentials()
	if err != nil {
		return err
	}
	if creds.BackendURL != "" || url == "" {
		return nil
	}
	creds.BackendURL = url
	slog.Debug("using configured gateway url", "backend_url", url)
	return store.SaveCredentials(creds)
}

func (a *app) Close() {
	if a.page == nil {
		return
	}
	if err := a.page.Close(); err != nil {
		slog.Debug("page close failed", "error", err)
	}
}
