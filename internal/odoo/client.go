// Package odoo talks to an Odoo server over its XML-RPC external API.
package odoo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/rpc"
	"regexp"
	"strings"
	"time"

	"github.com/kolo/xmlrpc"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/apperr"
)

const (
	partnerModel  = "res.partner"
	categoryModel = "res.partner.category"
)

var faultPrefix = regexp.MustCompile(`^Fault\(-?\d+\): `)

// Credentials identify one Odoo database and the API user acting on it.
type Credentials struct {
	Server   string `json:"odoo_server"`
	DB       string `json:"odoo_db_name"`
	Username string `json:"username"`
	APIToken string `json:"api_token"`
}

func (c Credentials) Validate() error {
	switch {
	case strings.TrimSpace(c.Server) == "":
		return apperr.Validation("odoo_server is required")
	case strings.TrimSpace(c.DB) == "":
		return apperr.Validation("odoo_db_name is required")
	case strings.TrimSpace(c.Username) == "":
		return apperr.Validation("username is required")
	}
	return nil
}

func (c Credentials) endpoint(service string) string {
	return strings.TrimRight(strings.TrimSpace(c.Server), "/") + "/xmlrpc/2/" + service
}

// Caller is the slice of *xmlrpc.Client the package depends on.
type Caller interface {
	Call(method string, args any, reply any) error
}

// DialFunc opens an XML-RPC endpoint.
type DialFunc func(url string) (Caller, error)

// Option configures a Connector.
type Option func(*Connector)

// WithRateLimit caps outgoing RPC calls per second across all sessions.
func WithRateLimit(rps float64) Option {
	return func(c *Connector) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// WithTransport sets the HTTP transport used for XML-RPC calls.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Connector) { c.transport = rt }
}

// WithDialer replaces the XML-RPC dialer, mainly for tests.
func WithDialer(dial DialFunc) Option {
	return func(c *Connector) { c.dial = dial }
}

// Connector authenticates credentials and hands out Sessions.
type Connector struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
	dial      DialFunc
}

func NewConnector(opts ...Option) *Connector {
	c := &Connector{transport: &http.Transport{ResponseHeaderTimeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(c)
	}
	if c.dial == nil {
		rt := c.transport
		c.dial = func(url string) (Caller, error) {
			return xmlrpc.NewClient(url, rt)
		}
	}
	return c
}

// Connect authenticates against /xmlrpc/2/common and returns a Session bound to
// the resulting uid.
func (c *Connector) Connect(ctx context.Context, creds Credentials) (*Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	common, err := c.dial(creds.endpoint("common"))
	if err != nil {
		return nil, apperr.New(apperr.CodeConnection, "Server connection failed", eris.Wrap(err, "odoo: dial common"))
	}
	if err := wait(ctx, c.limiter); err != nil {
		return nil, apperr.New(apperr.CodeTimeout, "rate limit wait cancelled", err)
	}

	var reply any
	err = common.Call("authenticate", []any{creds.DB, creds.Username, creds.APIToken, map[string]any{}}, &reply)
	if err != nil {
		slog.Error("odoo authenticate failed", "server", creds.Server, "db", creds.DB, "error", err)
		return nil, classify(err, "Server connection failed")
	}
	uid, ok := toInt64(reply)
	if !ok || uid == 0 {
		slog.Warn("odoo authentication rejected", "server", creds.Server, "db", creds.DB, "username", creds.Username)
		return nil, apperr.New(apperr.CodeAuth, "Authentication failed", nil)
	}

	object, err := c.dial(creds.endpoint("object"))
	if err != nil {
		return nil, apperr.New(apperr.CodeConnection, "Server connection failed", eris.Wrap(err, "odoo: dial object"))
	}
	slog.Debug("odoo authenticated", "server", creds.Server, "db", creds.DB, "uid", uid)
	return &Session{object: object, creds: creds, uid: uid, limiter: c.limiter}, nil
}

func wait(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return ctx.Err()
	}
	return l.Wait(ctx)
}

// classify labels an XML-RPC error: faults are REMOTE with Odoo's message,
// anything else is a CONNECTION failure.
func classify(err error, connMsg string) error {
	var fault xmlrpc.FaultError
	if errors.As(err, &fault) {
		return apperr.New(apperr.CodeRemote, "Odoo Error: "+fault.String, eris.Wrapf(err, "odoo fault %d", fault.Code))
	}
	var pfault *xmlrpc.FaultError
	if errors.As(err, &pfault) && pfault != nil {
		return apperr.New(apperr.CodeRemote, "Odoo Error: "+pfault.String, eris.Wrapf(err, "odoo fault %d", pfault.Code))
	}
	// net/rpc flattens server faults into a ServerError string.
	var serverErr rpc.ServerError
	if errors.As(err, &serverErr) {
		msg := faultPrefix.ReplaceAllString(string(serverErr), "")
		return apperr.New(apperr.CodeRemote, "Odoo Error: "+msg, eris.Wrap(err, "odoo fault"))
	}
	return apperr.New(apperr.CodeConnection, fmt.Sprintf("%s: %v", connMsg, err), eris.Wrap(err, "odoo: rpc"))
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
