// Package browser drives the LinkedIn tab of a running Chromium over CDP.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/apperr"
)

// Options selects the browser endpoint and the tab to attach to.
type Options struct {
	CDPURL        string
	TabURLFilter  string
	ActionTimeout time.Duration
}

// Page is an attached profile tab.
type Page struct {
	opts        Options
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	targetID    target.ID

	mu sync.Mutex
}

const (
	contactInfoJS = `(() => {
  const link = document.querySelector('a[href*="/overlay/contact-info"], #top-card-text-details-contact-info');
  if (!link) return false;
  link.click();
  return true;
})()`

	overlayPresentJS = `!!document.querySelector('.pv-contact-info, #pv-contact-info, [data-view-name="profile-contact-info"], section.pv-contact-info__contact-type')`

	dismissJS = `(() => {
  const btn = document.querySelector('.artdeco-modal__dismiss, button[aria-label="Dismiss"], button[aria-label="Close"]');
  if (btn) { btn.click(); return true; }
  document.dispatchEvent(new KeyboardEvent('keydown', {key: 'Escape', bubbles: true}));
  return false;
})()`
)

// Connect attaches to the first page target whose URL matches the filter.
func Connect(ctx context.Context, opts Options) (*Page, error) {
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = 15 * time.Second
	}
	slog.Info("connecting to chromium", "url", opts.CDPURL, "tab_url_filter", opts.TabURLFilter)

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), opts.CDPURL)
	probeCtx, probeCancel := chromedp.NewContext(allocCtx)
	defer probeCancel()

	if err := chromedp.Run(probeCtx); err != nil {
		allocCancel()
		return nil, apperr.New(apperr.CodeCDPUnavailable, "failed to connect to browser", err)
	}
	targets, err := chromedp.Targets(probeCtx)
	if err != nil {
		allocCancel()
		return nil, apperr.New(apperr.CodeCDPUnavailable, "failed to enumerate targets", err)
	}

	info, ok := pickTarget(targets, opts.TabURLFilter)
	if !ok {
		allocCancel()
		return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("no tab matching %q", opts.TabURLFilter), nil)
	}

	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithTargetID(info.TargetID))
	if err := chromedp.Run(tabCtx, page.Enable()); err != nil {
		tabCancel()
		allocCancel()
		return nil, apperr.New(apperr.CodeCDPUnavailable, "failed to attach to tab", err)
	}
	slog.Info("attached to tab", "target_id", info.TargetID, "url", info.URL)

	return &Page{
		opts:        opts,
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		targetID:    info.TargetID,
	}, nil
}

// pickTarget returns the first page target containing filter. An empty filter
// matches any page.
func pickTarget(targets []*target.Info, filter string) (*target.Info, bool) {
	for _, t := range targets {
		if t == nil || t.Type != "page" {
			continue
		}
		if filter == "" || strings.Contains(t.URL, filter) {
			return t, true
		}
	}
	return nil, false
}

// run executes actions on the tab bounded by both ctx and the action timeout.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithTimeout(p.tabCtx, p.opts.ActionTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return apperr.New(apperr.CodeTimeout, "browser action cancelled", ctx.Err())
		}
		if runCtx.Err() != nil {
			return apperr.New(apperr.CodeTimeout, "browser action timed out", err)
		}
		return apperr.New(apperr.CodeCDPUnavailable, "browser action failed", err)
	}
	return nil
}

// URL returns the tab's current location.
func (p *Page) URL(ctx context.Context) (string, error) {
	var loc string
	err := p.run(ctx, chromedp.Location(&loc))
	return loc, err
}

// Navigate loads url in the tab and waits for the body.
func (p *Page) Navigate(ctx context.Context, url string) error {
	slog.Info("navigating tab", "url", url)
	return p.run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery))
}

// Snapshot returns the serialized DOM of the tab.
func (p *Page) Snapshot(ctx context.Context) (string, error) {
	var html string
	err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

// OpenContactInfo clicks the contact-info link. It reports false when the
// page has no such link.
func (p *Page) OpenContactInfo(ctx context.Context) (bool, error) {
	var clicked bool
	if err := p.run(ctx, chromedp.Evaluate(contactInfoJS, &clicked)); err != nil {
		return false, err
	}
	slog.Debug("contact info link", "clicked", clicked)
	return clicked, nil
}

// OverlayPresent reports whether the contact-info panel is rendered.
func (p *Page) OverlayPresent(ctx context.Context) (bool, error) {
	var present bool
	err := p.run(ctx, chromedp.Evaluate(overlayPresentJS, &present))
	return present, err
}

// DismissOverlay closes the contact-info panel.
func (p *Page) DismissOverlay(ctx context.Context) error {
	var clicked bool
	if err := p.run(ctx, chromedp.Evaluate(dismissJS, &clicked)); err != nil {
		return err
	}
	slog.Debug("overlay dismissed", "button", clicked)
	return nil
}

func (p *Page) Close() error {
	if p.tabCancel != nil {
		p.tabCancel()
	}
	if p.allocCancel != nil {
		p.allocCancel()
	}
	slog.Info("browser page closed", "target_id", p.targetID)
	return nil
}
