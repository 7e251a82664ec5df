// Package gatewayapi serves the CRM gateway: Odoo contact reconciliation and
// campaign CRUD over HTTP.
package gatewayapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/apperr"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/campaign"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/odoo"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/reconcile"
)

// Reconciler is the Odoo side of the gateway.
type Reconciler interface {
	TestConnection(ctx context.Context, creds odoo.Credentials) (int64, error)
	CheckExists(ctx context.Context, creds odoo.Credentials, name, email string) (reconcile.Existence, error)
	Upsert(ctx context.Context, creds odoo.Credentials, c reconcile.Contact) (reconcile.Result, error)
}

// Campaigns is the campaign store.
type Campaigns interface {
	List(ctx context.Context) ([]campaign.Campaign, error)
	Create(ctx context.Context, in campaign.Campaign) (campaign.Campaign, error)
	Update(ctx context.Context, id string, in campaign.Campaign) (campaign.Campaign, error)
	Delete(ctx context.Context, id string) error
}

type Options struct {
	// AllowedOrigins is the CORS allow-list. Empty disables CORS headers.
	AllowedOrigins []string
}

func NewServer(rec Reconciler, campaigns Campaigns, opts Options) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		router.Use(corsHandler(opts.AllowedOrigins))
	}

	cfg := huma.DefaultConfig("LinkedIn2Odoo Gateway API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})

	registerHealthHandlers(api)
	registerContactHandlers(api, rec)
	registerCampaignHandlers(api, campaigns)

	return router
}

func registerHealthHandlers(api huma.API) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *apperr.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case apperr.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case apperr.CodeEmptyProfile:
			return huma.Error422UnprocessableEntity(coded.Message)
		case apperr.CodeAuth:
			return huma.Error401Unauthorized(coded.Message)
		case apperr.CodeNotFound:
			return huma.Error404NotFound(coded.Message)
		case apperr.CodeConnection:
			return huma.Error502BadGateway(coded.Message)
		case apperr.CodeTimeout:
			return huma.Error504GatewayTimeout(coded.Message)
		case apperr.CodeRemote:
			return huma.Error500InternalServerError(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	slog.Error("unclassified gateway error", "error", err)
	return huma.Error500InternalServerError(err.Error())
}
