// Package notify posts short plain-text messages to an ntfy topic.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Ntfy sends messages to one ntfy topic URL.
type Ntfy struct {
	client   *http.Client
	endpoint string
}

// New returns a notifier for endpoint. A nil client uses http.DefaultClient.
func New(client *http.Client, endpoint string) *Ntfy {
	if client == nil {
		client = http.DefaultClient
	}
	return &Ntfy{client: client, endpoint: endpoint}
}

// Notify posts message with an optional ntfy title header.
func (n *Ntfy) Notify(ctx context.Context, title, message string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(message))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain")
	if title != "" {
		req.Header.Set("Title", title)
	}
	req.Header.Set("Tags", "busts_in_silhouette")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy notification failed: status=%d", resp.StatusCode)
	}
	return nil
}

// UploadMessage formats the notification for a finished upload.
func UploadMessage(name, company string, personID int64, created bool) string {
	verb := "Updated"
	if created {
		verb = "Created"
	}
	if company != "" {
		return fmt.Sprintf("%s %s (%s) as Odoo contact #%d", verb, name, company, personID)
	}
	return fmt.Sprintf("%s %s as Odoo contact #%d", verb, name, personID)
}
