package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/gateway"
)

const tokenMask = "********"

func masked(c gateway.Credentials) gateway.Credentials {
	if c.APIToken != "" {
		c.APIToken = tokenMask
	}
	return c
}

func registerSettingsHandlers(api huma.API, svc Service) {
	type credentialsOutput struct {
		Body gateway.Credentials
	}
	huma.Register(api, huma.Operation{OperationID: "get-credentials", Method: http.MethodGet, Path: "/api/v1/credentials", Summary: "Get the connection settings (token masked)", Tags: []string{"Settings"}},
		func(ctx context.Context, input *struct{}) (*credentialsOutput, error) {
			c, err := svc.Credentials()
			if err != nil {
				return nil, mapErr(err)
			}
			return &credentialsOutput{Body: masked(c)}, nil
		})

	type saveInput struct {
		Body gateway.Credentials
	}
	huma.Register(api, huma.Operation{OperationID: "save-credentials", Method: http.MethodPut, Path: "/api/v1/credentials", Summary: "Save the connection settings; an empty or masked token keeps the stored one", Tags: []string{"Settings"}},
		func(ctx context.Context, input *saveInput) (*credentialsOutput, error) {
			next := input.Body
			if next.APIToken == "" || next.APIToken == tokenMask {
				prev, err := svc.Credentials()
				if err != nil {
					return nil, mapErr(err)
				}
				next.APIToken = prev.APIToken
			}
			saved, err := svc.SaveCredentials(next)
			if err != nil {
				return nil, mapErr(err)
			}
			return &credentialsOutput{Body: masked(saved)}, nil
		})

	type connectionOutput struct {
		Body gateway.ConnectionStatus
	}
	huma.Register(api, huma.Operation{OperationID: "test-connection", Method: http.MethodPost, Path: "/api/v1/credentials/test", Summary: "Authenticate against Odoo through the gateway", Tags: []string{"Settings"}},
		func(ctx context.Context, input *struct{}) (*connectionOutput, error) {
			st, err := svc.TestConnection(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return &connectionOutput{Body: st}, nil
		})
}
