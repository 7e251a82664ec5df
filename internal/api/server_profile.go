package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/uploader"
)

func registerProfileHandlers(api huma.API, svc Service) {
	type prepareInput struct {
		Refresh bool `query:"refresh" doc:"Ignore the cached record and read the page again."`
	}
	type prepareOutput struct {
		Body uploader.View
	}
	huma.Register(api, huma.Operation{OperationID: "prepare-profile", Method: http.MethodPost, Path: "/api/v1/profile/prepare", Summary: "Extract the open profile and check whether it exists in the CRM", Tags: []string{"Profile"}},
		func(ctx context.Context, input *prepareInput) (*prepareOutput, error) {
			view, err := svc.Prepare(ctx, input.Refresh)
			if err != nil {
				return nil, mapErr(err)
			}
			return &prepareOutput{Body: view}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "get-profile", Method: http.MethodGet, Path: "/api/v1/profile", Summary: "Get a cached profile", Tags: []string{"Profile"}},
		func(ctx context.Context, input *urlInput) (*entryOutput, error) {
			entry, err := svc.Entry(input.URL)
			if err != nil {
				return nil, mapErr(err)
			}
			return &entryOutput{Body: entry}, nil
		})

	type fieldInput struct {
		Body struct {
			URL   string `json:"url,omitempty" doc:"Profile URL. Omit to use the profile last prepared."`
			Field string `json:"field" minLength:"1" doc:"Record field, e.g. name, email, job_position."`
			Value string `json:"value"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "edit-profile-field", Method: http.MethodPatch, Path: "/api/v1/profile/field", Summary: "Edit one field of the cached profile", Tags: []string{"Profile"}},
		func(ctx context.Context, input *fieldInput) (*entryOutput, error) {
			entry, err := svc.EditField(input.Body.URL, input.Body.Field, input.Body.Value)
			if err != nil {
				return nil, mapErr(err)
			}
			return &entryOutput{Body: entry}, nil
		})

	type tagsInput struct {
		Body struct {
			URL         string   `json:"url,omitempty"`
			PersonTags  []string `json:"person_tags,omitempty"`
			CompanyTags []string `json:"company_tags,omitempty"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "edit-profile-tags", Method: http.MethodPut, Path: "/api/v1/profile/tags", Summary: "Replace the person and company tags of the cached profile", Tags: []string{"Profile"}},
		func(ctx context.Context, input *tagsInput) (*entryOutput, error) {
			entry, err := svc.EditTags(input.Body.URL, input.Body.PersonTags, input.Body.CompanyTags)
			if err != nil {
				return nil, mapErr(err)
			}
			return &entryOutput{Body: entry}, nil
		})

	type uploadOutput struct {
		Body uploader.Result
	}
	huma.Register(api, huma.Operation{OperationID: "upload-profile", Method: http.MethodPost, Path: "/api/v1/profile/upload", Summary: "Upload the prepared profile to the CRM", Tags: []string{"Profile"}},
		func(ctx context.Context, input *struct{}) (*uploadOutput, error) {
			res, err := svc.Upload(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return &uploadOutput{Body: res}, nil
		})
}
