// Package uploader runs the extract → check → upload flow for the LinkedIn
// profile open in the browser.
package uploader

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/apperr"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/browser"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/campaign"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/extract"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/gateway"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/notify"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/profile"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/session"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/tags"
)

// Page is the live profile tab. Only OpenContactInfo and DismissOverlay
// change the page.
type Page interface {
	URL(ctx context.Context) (string, error)
	Snapshot(ctx context.Context) (string, error)
	OpenContactInfo(ctx context.Context) (bool, error)
	OverlayPresent(ctx context.Context) (bool, error)
	DismissOverlay(ctx context.Context) error
}

// Notifier is told about finished uploads.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

type Options struct {
	OverlayInterval time.Duration
	OverlayAttempts int
}

// Pipeline serializes user actions against one page and one session.
type Pipeline struct {
	sess     *session.Session
	page     Page
	resolver *extract.Resolver
	machine  *Machine
	notifier Notifier
	opts     Options

	mu sync.Mutex
}

func New(sess *session.Session, page Page, machine *Machine, opts Options) *Pipeline {
	if opts.OverlayInterval <= 0 {
		opts.OverlayInterval = 250 * time.Millisecond
	}
	if opts.OverlayAttempts <= 0 {
		opts.OverlayAttempts = 20
	}
	return &Pipeline{
		sess:     sess,
		page:     page,
		resolver: extract.NewResolver(extract.DefaultStrategies()...),
		machine:  machine,
		opts:     opts,
	}
}

// WithNotifier enables upload notifications.
func (p *Pipeline) WithNotifier(n Notifier) *Pipeline {
	p.notifier = n
	return p
}

func (p *Pipeline) Machine() *Machine { return p.machine }

func (p *Pipeline) Status() Status { return p.machine.Status() }

// View is the result of Prepare: the cached entry and the machine status.
type View struct {
	Entry  session.Entry `json:"entry"`
	Status Status        `json:"status"`
}

func scraping(err error) error {
	if apperr.Is(err, apperr.CodeScrapingFailed) {
		return err
	}
	return apperr.New(apperr.CodeScrapingFailed, "scraping failed", err)
}

// Extract reads the current profile. A cached entry is returned as is unless
// refresh is set. onMain, if set, receives the main-pass record before the
// overlay wait.
func (p *Pipeline) Extract(ctx context.Context, refresh bool, onMain func(profile.Record)) (session.Entry, error) {
	pageURL, err := p.page.URL(ctx)
	if err != nil {
		return session.Entry{}, scraping(err)
	}
	url := profile.CanonicalURL(pageURL)

	if !refresh {
		if cached, ok, err := p.sess.Cached(url); err == nil && ok {
			slog.Info("using cached profile", "url", url)
			if onMain != nil {
				onMain(cached.Record)
			}
			if moved, changed := p.followCampaign(ctx, cached); changed {
				return p.sess.Remember(moved)
			}
			return cached, nil
		} else if err != nil {
			slog.Warn("session cache read failed", "url", url, "error", err)
		}
	}

	rec, err := p.extractLive(ctx, pageURL, onMain)
	if err != nil {
		slog.Error("extraction failed", "url", url, "error", err)
		return session.Entry{}, err
	}

	entry := session.Entry{Record: rec, Tags: tags.Compute(nil, nil, nil)}
	if prev, ok, _ := p.sess.Cached(url); ok {
		entry.Tags, entry.Campaign = prev.Tags, prev.Campaign
	}
	entry, _ = p.followCampaign(ctx, entry)
	return p.sess.Remember(entry)
}

// followCampaign moves an entry's tags from the campaign they were computed
// under to the active one. When the active campaign cannot be resolved the
// entry is left alone.
func (p *Pipeline) followCampaign(ctx context.Context, e session.Entry) (session.Entry, bool) {
	active, err := p.sess.ActiveCampaign(ctx)
	if err != nil {
		slog.Warn("active campaign unavailable, keeping cached tags", "url", e.Record.URL, "error", err)
		return e, false
	}
	if sameCampaign(e.Campaign, active) {
		return e, false
	}
	return retagged(e, e.Campaign, active), true
}

// retagged applies the transition from → to and stamps to on the entry.
func retagged(e session.Entry, from, to *campaign.Campaign) session.Entry {
	e.Tags = tags.Transition(e.Tags, from, to)
	e.Campaign = nil
	if to != nil {
		c := *to
		e.Campaign = &c
	}
	return e
}

// sameCampaign reports whether a and b are the same campaign with the same
// tag contribution.
func sameCampaign(a, b *campaign.Campaign) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ca, cb := tags.Contribution(a), tags.Contribution(b)
	return a.ID == b.ID && ca.Person.Equal(cb.Person) && ca.Company.Equal(cb.Company)
}

func (p *Pipeline) extractLive(ctx context.Context, pageURL string, onMain func(profile.Record)) (rec profile.Record, err error) {
	html, err := p.page.Snapshot(ctx)
	if err != nil {
		return rec, scraping(err)
	}
	doc, err := extract.ParseString(html, pageURL)
	if err != nil {
		return rec, scraping(err)
	}
	main, _, err := p.resolver.ExtractMain(doc)
	if err != nil {
		return rec, scraping(err)
	}
	if onMain != nil {
		onMain(main)
	}

	opened, err := p.page.OpenContactInfo(ctx)
	if err != nil {
		slog.Warn("contact info link failed, using main page only", "error", err)
		return main, nil
	}
	if !opened {
		return main, nil
	}
	defer func() {
		if derr := p.page.DismissOverlay(context.WithoutCancel(ctx)); derr != nil {
			slog.Warn("overlay dismiss failed", "error", derr)
		}
	}()

	if browser.WaitOverlay(ctx, p.page.OverlayPresent, p.opts.OverlayInterval, p.opts.OverlayAttempts) != browser.OverlayAvailable {
		return main, nil
	}
	overlayHTML, err := p.page.Snapshot(ctx)
	if err != nil {
		return rec, scraping(err)
	}
	overlayDoc, err := extract.ParseString(overlayHTML, pageURL)
	if err != nil {
		return rec, scraping(err)
	}
	overlay, err := p.resolver.ExtractOverlay(overlayDoc)
	if err != nil {
		slog.Info("overlay unreadable, using main page only", "error", err)
		return main, nil
	}
	merged := profile.Merge(main, overlay)
	merged.URL = main.URL
	return merged, nil
}

// Prepare extracts the profile and checks whether it already exists in the
// CRM. Both run concurrently; the check starts as soon as a name is known.
func (p *Pipeline) Prepare(ctx context.Context, refresh bool) (View, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pageURL, err := p.page.URL(ctx)
	if err != nil {
		err = scraping(err)
		p.machine.Abort(err)
		return View{Status: p.machine.Status()}, err
	}
	if err := p.machine.Begin(profile.CanonicalURL(pageURL)); err != nil {
		return View{Status: p.machine.Status()}, err
	}

	names := make(chan profile.Record, 1)
	var (
		entry     session.Entry
		existence checkOutcome
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(names)
		var once sync.Once
		e, err := p.Extract(gctx, refresh, func(r profile.Record) {
			once.Do(func() { names <- r })
		})
		entry = e
		return err
	})
	g.Go(func() error {
		select {
		case rec, ok := <-names:
			if !ok {
				return nil
			}
			existence = p.checkExists(gctx, rec.Name)
		case <-gctx.Done():
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		p.machine.Abort(err)
		return View{Status: p.machine.Status()}, err
	}

	// the main pass may have had no name; the merged record is authoritative
	if existence.skipped && strings.TrimSpace(entry.Record.Name) != "" && existence.name == "" {
		existence = p.checkExists(ctx, entry.Record.Name)
	}
	if err := p.machine.Ready(existence.mode, existence.id, existence.note); err != nil {
		return View{Entry: entry, Status: p.machine.Status()}, err
	}
	return View{Entry: entry, Status: p.machine.Status()}, nil
}

type checkOutcome struct {
	mode    Mode
	id      int64
	note    string
	name    string
	skipped bool
}

// checkExists never fails: missing preconditions skip the check and remote
// errors fall back to create.
func (p *Pipeline) checkExists(ctx context.Context, name string) checkOutcome {
	name = strings.TrimSpace(name)
	out := checkOutcome{mode: ModeCreate, name: name}
	if name == "" {
		out.skipped = true
		out.note = "existence check skipped: no name extracted"
		return out
	}
	creds, err := p.sess.Storage().Credentials()
	if err != nil || !creds.Complete() {
		out.skipped = true
		out.note = "existence check skipped: connection settings incomplete"
		return out
	}
	resp, err := p.sess.Gateway().CheckContact(ctx, creds, name, "")
	if err != nil {
		slog.Error("existence check failed, assuming new contact", "name", name, "error", err)
		out.note = "existence check failed: " + errText(err)
		return out
	}
	if resp.Exists {
		out.mode = ModeUpdate
		if resp.ID != nil {
			out.id = *resp.ID
		}
	}
	return out
}

// Result is what a successful upload returns.
type Result struct {
	PersonID  int64  `json:"person_id"`
	CompanyID int64  `json:"company_id,omitempty"`
	Mode      Mode   `json:"mode"`
	URL       string `json:"url"`
}

// Upload sends the prepared profile to the gateway.
func (p *Pipeline) Upload(ctx context.Context) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := p.machine.Status()
	if status.State != StateReady && status.State != StateSuccess {
		return Result{}, apperr.Validation("extract a profile before uploading")
	}
	entry, ok, err := p.sess.Cached(status.URL)
	if err != nil {
		return Result{}, err
	}
	if !ok || entry.Record.IsEmpty() {
		err := apperr.New(apperr.CodeEmptyProfile, "profile is empty, reload the page and try again", nil)
		p.machine.Reject(err)
		return Result{}, err
	}
	creds, err := p.sess.Storage().Credentials()
	if err != nil {
		return Result{}, err
	}
	if !creds.Complete() {
		err := apperr.Validation("connection settings are incomplete")
		p.machine.Reject(err)
		return Result{}, err
	}

	if err := p.machine.Submit(); err != nil {
		return Result{}, err
	}
	mode := status.Mode

	if moved, changed := p.followCampaign(ctx, entry); changed {
		if entry, err = p.sess.Remember(moved); err != nil {
			p.machine.Fail(err)
			return Result{}, err
		}
	}

	resp, err := p.sess.Gateway().CreateContact(ctx, creds, gateway.NewContactRequest(creds, entry.Record, entry.Tags))
	if err != nil {
		slog.Error("upload failed", "url", entry.Record.URL, "mode", mode, "error", err)
		p.machine.Fail(err)
		return Result{}, err
	}

	res := Result{PersonID: resp.PersonID, Mode: mode, URL: entry.Record.URL}
	if resp.CompanyID != nil {
		res.CompanyID = *resp.CompanyID
	}
	p.machine.Succeed(res.PersonID, res.CompanyID)
	slog.Info("contact uploaded", "url", res.URL, "person_id", res.PersonID, "company_id", res.CompanyID, "mode", mode)

	if p.notifier != nil {
		msg := notify.UploadMessage(entry.Record.Name, entry.Record.Company, res.PersonID, mode == ModeCreate)
		if err := p.notifier.Notify(ctx, "LinkedIn contact uploaded", msg); err != nil {
			slog.Warn("upload notification failed", "error", err)
		}
	}
	return res, nil
}

// EditField changes one field of the cached record and writes it back.
func (p *Pipeline) EditField(url, field, value string) (session.Entry, error) {
	entry, err := p.cached(url)
	if err != nil {
		return session.Entry{}, err
	}
	if err := entry.Record.Set(field, value); err != nil {
		return session.Entry{}, apperr.New(apperr.CodeValidation, err.Error(), err)
	}
	return p.sess.Remember(entry)
}

// EditTags replaces the tag partitions of the cached record.
func (p *Pipeline) EditTags(url string, person, company []string) (session.Entry, error) {
	entry, err := p.cached(url)
	if err != nil {
		return session.Entry{}, err
	}
	entry.Tags = tags.TagSet{Person: tags.NewSet(person...), Company: tags.NewSet(company...)}
	return p.sess.Remember(entry)
}

func (p *Pipeline) cached(url string) (session.Entry, error) {
	if url == "" {
		url = p.machine.Status().URL
	}
	entry, ok, err := p.sess.Cached(url)
	if err != nil {
		return session.Entry{}, err
	}
	if !ok {
		return session.Entry{}, apperr.New(apperr.CodeNotFound, "no cached profile for "+url, nil)
	}
	return entry, nil
}

// SetActiveCampaign moves the active pointer and retags the current profile:
// tags contributed by the old campaign go, the new campaign's are added.
func (p *Pipeline) SetActiveCampaign(ctx context.Context, id string) (*campaign.Campaign, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id = strings.TrimSpace(id)
	from, err := p.sess.ActiveCampaign(ctx)
	if err != nil {
		return nil, err
	}
	var to *campaign.Campaign
	if id != "" {
		creds, err := p.sess.Storage().Credentials()
		if err != nil {
			return nil, err
		}
		list, err := p.sess.Gateway().ListCampaigns(ctx, creds)
		if err != nil {
			return nil, err
		}
		if to = campaign.Find(list, id); to == nil {
			return nil, apperr.New(apperr.CodeNotFound, "campaign not found", nil)
		}
	}
	if err := p.sess.Storage().SetActiveCampaignID(id); err != nil {
		return nil, err
	}
	slog.Info("active campaign changed", "campaign_id", id)

	url := p.machine.Status().URL
	if url == "" {
		return to, nil
	}
	entry, ok, err := p.sess.Cached(url)
	if err != nil || !ok {
		return to, err
	}
	if entry.Campaign != nil {
		from = entry.Campaign
	}
	if _, err := p.sess.Remember(retagged(entry, from, to)); err != nil {
		return to, err
	}
	return to, nil
}

var errNoPage = errors.New("no browser page attached")

// detachedPage is used by commands that never touch the browser.
type detachedPage struct{}

func (detachedPage) URL(context.Context) (string, error)           { return "", errNoPage }
func (detachedPage) Snapshot(context.Context) (string, error)      { return "", errNoPage }
func (detachedPage) OpenContactInfo(context.Context) (bool, error) { return false, errNoPage }
func (detachedPage) OverlayPresent(context.Context) (bool, error)  { return false, errNoPage }
func (detachedPage) DismissOverlay(context.Context) error          { return errNoPage }

// Detached returns a Page that fails every call.
func Detached() Page { return detachedPage{} }
