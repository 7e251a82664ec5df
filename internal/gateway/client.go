package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/apperr"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/campaign"
)

// Client calls a CRM gateway. The base URL comes from the credentials of each call.
type Client struct {
	http *http.Client
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

func (c *Client) TestConnection(ctx context.Context, creds Credentials) (ConnectionStatus, error) {
	var out ConnectionStatus
	err := c.do(ctx, creds, http.MethodPost, "/test_connection", creds.Odoo(), &out)
	return out, err
}

func (c *Client) CheckContact(ctx context.Context, creds Credentials, name, email string) (CheckResponse, error) {
	var out CheckResponse
	err := c.do(ctx, creds, http.MethodPost, "/check_contact", CheckRequest{Odoo: creds.Odoo(), Name: name, Email: email}, &out)
	return out, err
}

func (c *Client) CreateContact(ctx context.Context, creds Credentials, req ContactRequest) (ContactResponse, error) {
	var out ContactResponse
	err := c.do(ctx, creds, http.MethodPost, "/create_contact", req, &out)
	return out, err
}

func (c *Client) ListCampaigns(ctx context.Context, creds Credentials) ([]campaign.Campaign, error) {
	var out []campaign.Campaign
	if err := c.do(ctx, creds, http.MethodGet, "/campaigns", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCampaign(ctx context.Context, creds Credentials, in CampaignInput) (campaign.Campaign, error) {
	var out campaign.Campaign
	err := c.do(ctx, creds, http.MethodPost, "/campaigns", in, &out)
	return out, err
}

func (c *Client) UpdateCampaign(ctx context.Context, creds Credentials, id string, in CampaignInput) (campaign.Campaign, error) {
	var out campaign.Campaign
	err := c.do(ctx, creds, http.MethodPut, "/campaigns/"+url.PathEscape(id), in, &out)
	return out, err
}

func (c *Client) DeleteCampaign(ctx context.Context, creds Credentials, id string) error {
	var out DeleteResponse
	return c.do(ctx, creds, http.MethodDelete, "/campaigns/"+url.PathEscape(id), nil, &out)
}

func (c *Client) do(ctx context.Context, creds Credentials, method, path string, body, out any) error {
	base := strings.TrimRight(strings.TrimSpace(creds.BackendURL), "/")
	if base == "" {
		return apperr.Validation("backend url is not configured")
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return apperr.New(apperr.CodeValidation, "encode request", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, base+path, reader)
	if err != nil {
		return apperr.New(apperr.CodeValidation, "invalid backend url", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Error("gateway unreachable", "method", method, "path", path, "error", err)
		return apperr.New(apperr.CodeConnection, "connection error: could not reach the backend", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.New(apperr.CodeConnection, "connection error: reading backend response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		remote := remoteError(resp.StatusCode, raw)
		slog.Warn("gateway rejected request", "method", method, "path", path, "status", resp.StatusCode, "error", remote)
		return remote
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.New(apperr.CodeRemote, "unexpected backend response", err)
	}
	return nil
}

// remoteError keeps the gateway's detail message verbatim when there is one.
func remoteError(status int, raw []byte) error {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	msg := ""
	if json.Unmarshal(raw, &payload) == nil && len(payload.Detail) > 0 {
		var s string
		if json.Unmarshal(payload.Detail, &s) == nil {
			msg = s
		} else {
			msg = string(payload.Detail)
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("backend returned status %d", status)
	}

	code := apperr.CodeRemote
	switch status {
	case http.StatusUnauthorized:
		code = apperr.CodeAuth
	case http.StatusNotFound:
		code = apperr.CodeNotFound
	}
	return apperr.New(code, msg, nil)
}
