// Package session holds the per-browser-session state of the uploader: the
// connection settings, the active campaign pointer and the cached record of
// every profile visited.
package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/campaign"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/gateway"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/profile"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/tags"
)

// Entry is the cached state of one profile, keyed by its canonical URL.
type Entry struct {
	Record    profile.Record `json:"record"`
	Tags      tags.TagSet    `json:"tags"`
	UpdatedAt time.Time      `json:"updated_at"`
	// Campaign is the campaign Tags were last computed under, as it was then.
	Campaign *campaign.Campaign `json:"campaign,omitempty"`
}

// Storage is the browser-side key/value collaborator. Reads are independent;
// nothing is atomic across two calls.
type Storage interface {
	Credentials() (gateway.Credentials, error)
	SaveCredentials(gateway.Credentials) error
	ActiveCampaignID() (string, error)
	SetActiveCampaignID(id string) error
	Record(url string) (Entry, bool, error)
	SaveRecord(e Entry) error
}

// Gateway is the CRM gateway surface the uploader consumes.
type Gateway interface {
	TestConnection(ctx context.Context, creds gateway.Credentials) (gateway.ConnectionStatus, error)
	CheckContact(ctx context.Context, creds gateway.Credentials, name, email string) (gateway.CheckResponse, error)
	CreateContact(ctx context.Context, creds gateway.Credentials, req gateway.ContactRequest) (gateway.ContactResponse, error)
	ListCampaigns(ctx context.Context, creds gateway.Credentials) ([]campaign.Campaign, error)
	CreateCampaign(ctx context.Context, creds gateway.Credentials, in gateway.CampaignInput) (campaign.Campaign, error)
	UpdateCampaign(ctx context.Context, creds gateway.Credentials, id string, in gateway.CampaignInput) (campaign.Campaign, error)
	DeleteCampaign(ctx context.Context, creds gateway.Credentials, id string) error
}

// Session bundles the two collaborators every operation needs.
type Session struct {
	storage Storage
	gateway Gateway
	now     func() time.Time
}

func New(storage Storage, gw Gateway) *Session {
	return &Session{storage: storage, gateway: gw, now: time.Now}
}

func (s *Session) Storage() Storage { return s.storage }
func (s *Session) Gateway() Gateway { return s.gateway }

// ActiveCampaign resolves the active campaign pointer against the gateway's
// campaign list. A dangling id is treated as no active campaign.
func (s *Session) ActiveCampaign(ctx context.Context) (*campaign.Campaign, error) {
	id, err := s.storage.ActiveCampaignID()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	creds, err := s.storage.Credentials()
	if err != nil {
		return nil, err
	}
	list, err := s.gateway.ListCampaigns(ctx, creds)
	if err != nil {
		return nil, err
	}
	c := campaign.Find(list, id)
	if c == nil {
		slog.Warn("active campaign no longer exists", "campaign_id", id)
	}
	return c, nil
}

// Cached returns the cached entry for a profile URL.
func (s *Session) Cached(url string) (Entry, bool, error) {
	return s.storage.Record(profile.CanonicalURL(url))
}

// Remember writes an entry back, stamping the update time.
func (s *Session) Remember(e Entry) (Entry, error) {
	e.Record.URL = profile.CanonicalURL(e.Record.URL)
	e.UpdatedAt = s.now().UTC()
	if err := s.storage.SaveRecord(e); err != nil {
		return Entry{}, err
	}
	return e, nil
}
