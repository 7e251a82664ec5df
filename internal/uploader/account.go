package uploader

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/apperr"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/campaign"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/gateway"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/session"
)

// Entry returns the cached entry for url, or for the current profile when url is empty.
func (p *Pipeline) Entry(url string) (session.Entry, error) {
	return p.cached(url)
}

func (p *Pipeline) Credentials() (gateway.Credentials, error) {
	return p.sess.Storage().Credentials()
}

// SaveCredentials stores trimmed connection settings.
func (p *Pipeline) SaveCredentials(c gateway.Credentials) (gateway.Credentials, error) {
	c = gateway.Credentials{
		ServerURL:  strings.TrimRight(strings.TrimSpace(c.ServerURL), "/"),
		DBName:     strings.TrimSpace(c.DBName),
		Username:   strings.TrimSpace(c.Username),
		APIToken:   strings.TrimSpace(c.APIToken),
		BackendURL: strings.TrimRight(strings.TrimSpace(c.BackendURL), "/"),
	}
	if err := p.sess.Storage().SaveCredentials(c); err != nil {
		return gateway.Credentials{}, err
	}
	slog.Info("connection settings saved", "server", c.ServerURL, "db", c.DBName, "backend", c.BackendURL)
	return c, nil
}

// TestConnection asks the gateway to authenticate with the saved settings.
func (p *Pipeline) TestConnection(ctx context.Context) (gateway.ConnectionStatus, error) {
	creds, err := p.Credentials()
	if err != nil {
		return gateway.ConnectionStatus{}, err
	}
	if !creds.Complete() {
		return gateway.ConnectionStatus{}, apperr.Validation("connection settings are incomplete")
	}
	return p.sess.Gateway().TestConnection(ctx, creds)
}

// Campaigns lists the gateway's campaigns together with the resolved active one.
func (p *Pipeline) Campaigns(ctx context.Context) ([]campaign.Campaign, *campaign.Campaign, error) {
	creds, err := p.Credentials()
	if err != nil {
		return nil, nil, err
	}
	list, err := p.sess.Gateway().ListCampaigns(ctx, creds)
	if err != nil {
		return nil, nil, err
	}
	id, err := p.sess.Storage().ActiveCampaignID()
	if err != nil {
		return nil, nil, err
	}
	return list, campaign.Find(list, id), nil
}

func (p *Pipeline) CreateCampaign(ctx context.Context, in gateway.CampaignInput) (campaign.Campaign, error) {
	creds, err := p.Credentials()
	if err != nil {
		return campaign.Campaign{}, err
	}
	return p.sess.Gateway().CreateCampaign(ctx, creds, in)
}

// UpdateCampaign edits a campaign. When it is the active one, the current
// profile's tags follow the edit.
func (p *Pipeline) UpdateCampaign(ctx context.Context, id string, in gateway.CampaignInput) (campaign.Campaign, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	creds, err := p.Credentials()
	if err != nil {
		return campaign.Campaign{}, err
	}
	before, err := p.activeIf(ctx, id)
	if err != nil {
		return campaign.Campaign{}, err
	}
	updated, err := p.sess.Gateway().UpdateCampaign(ctx, creds, id, in)
	if err != nil {
		return campaign.Campaign{}, err
	}
	if before != nil {
		p.retag(before, &updated)
	}
	return updated, nil
}

// DeleteCampaign removes a campaign. Deleting the active campaign clears the
// pointer and strips its tags from the current profile.
func (p *Pipeline) DeleteCampaign(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	creds, err := p.Credentials()
	if err != nil {
		return err
	}
	before, err := p.activeIf(ctx, id)
	if err != nil {
		return err
	}
	if err := p.sess.Gateway().DeleteCampaign(ctx, creds, id); err != nil {
		return err
	}
	if before == nil {
		return nil
	}
	if err := p.sess.Storage().SetActiveCampaignID(""); err != nil {
		return err
	}
	slog.Info("active campaign deleted", "campaign_id", id)
	p.retag(before, nil)
	return nil
}

// activeIf returns the active campaign when its id is id.
func (p *Pipeline) activeIf(ctx context.Context, id string) (*campaign.Campaign, error) {
	active, err := p.sess.ActiveCampaign(ctx)
	if err != nil {
		return nil, err
	}
	if active == nil || active.ID != id {
		return nil, nil
	}
	return active, nil
}

func (p *Pipeline) retag(from, to *campaign.Campaign) {
	url := p.machine.Status().URL
	if url == "" {
		return
	}
	entry, ok, err := p.sess.Cached(url)
	if err != nil || !ok {
		return
	}
	if entry.Campaign != nil {
		from = entry.Campaign
	}
	if _, err := p.sess.Remember(retagged(entry, from, to)); err != nil {
		slog.Warn("retag after campaign change failed", "url", url, "error", err)
	}
}
