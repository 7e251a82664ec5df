// Package api serves the uploader's local control surface: prepare and
// upload the open profile, edit the cached record, manage campaigns and
// follow state changes.
package api

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
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/events"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/gateway"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/session"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/uploader"
)

type Service interface {
	Status() uploader.Status
	Prepare(ctx context.Context, refresh bool) (uploader.View, error)
	Upload(ctx context.Context) (uploader.Result, error)
	Entry(url string) (session.Entry, error)
	EditField(url, field, value string) (session.Entry, error)
	EditTags(url string, person, company []string) (session.Entry, error)

	Credentials() (gateway.Credentials, error)
	SaveCredentials(c gateway.Credentials) (gateway.Credentials, error)
	TestConnection(ctx context.Context) (gateway.ConnectionStatus, error)

	Campaigns(ctx context.Context) ([]campaign.Campaign, *campaign.Campaign, error)
	CreateCampaign(ctx context.Context, in gateway.CampaignInput) (campaign.Campaign, error)
	UpdateCampaign(ctx context.Context, id string, in gateway.CampaignInput) (campaign.Campaign, error)
	DeleteCampaign(ctx context.Context, id string) error
	SetActiveCampaign(ctx context.Context, id string) (*campaign.Campaign, error)
}

type urlInput struct {
	URL string `query:"url" doc:"Profile URL. Omit to use the profile last prepared."`
}

type entryOutput struct {
	Body session.Entry
}

type statusOutput struct {
	Body uploader.Status
}

// NewServer builds the router. broker may be nil, in which case the event
// stream endpoints are not mounted.
func NewServer(svc Service, broker *events.Broker) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("LinkedIn2Odoo Uploader API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})

	if broker != nil {
		router.Get("/api/v1/events", events.SSEHandler(broker))
		router.Get("/api/v1/events/ws", events.WSHandler(broker))
		router.Get("/docs/events", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			if _, err := w.Write([]byte(eventsDocsHTML)); err != nil {
				slog.Debug("events docs response write failed", "error", err)
			}
		})
	}

	registerHealthHandlers(api, svc)
	registerProfileHandlers(api, svc)
	registerSettingsHandlers(api, svc)
	registerCampaignHandlers(api, svc)

	return router
}

func registerHealthHandlers(api huma.API, svc Service) {
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

	huma.Register(api, huma.Operation{OperationID: "get-status", Method: http.MethodGet, Path: "/api/v1/status", Summary: "Current upload state", Tags: []string{"Profile"}},
		func(ctx context.Context, input *struct{}) (*statusOutput, error) {
			return &statusOutput{Body: svc.Status()}, nil
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
		case apperr.CodeEmptyProfile, apperr.CodeScrapingFailed:
			return huma.Error422UnprocessableEntity(coded.Message)
		case apperr.CodeAuth:
			return huma.Error401Unauthorized(coded.Message)
		case apperr.CodeNotFound:
			return huma.Error404NotFound(coded.Message)
		case apperr.CodeTimeout:
			return huma.Error504GatewayTimeout(coded.Message)
		case apperr.CodeCDPUnavailable, apperr.CodeConnection, apperr.CodeRemote:
			return huma.Error502BadGateway(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
