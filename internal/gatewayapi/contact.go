package gatewayapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/gateway"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/odoo"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/reconcile"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/tags"
)

func credentials(o gateway.Odoo) odoo.Credentials {
	return odoo.Credentials{Server: o.Server, DB: o.DBName, Username: o.Username, APIToken: o.APIToken}
}

func contactFrom(req gateway.ContactRequest) reconcile.Contact {
	return reconcile.Contact{
		Name:                  req.Name,
		Company:               req.Company,
		JobPosition:           req.JobPosition,
		Email:                 req.Email,
		Phone:                 req.Phone,
		Website:               req.Website,
		City:                  req.City,
		PhotoURL:              req.Photo,
		AdditionalInfo:        req.AdditionalInfo,
		ContactType:           req.ContactType,
		CompanyPhotoURL:       req.CompanyPhoto,
		CompanyURL:            req.CompanyLinkedInURL,
		CompanyAdditionalInfo: req.CompanyAdditionalInfo,
		PersonTags:            tags.SplitCSV(req.Tags).Sorted(),
		CompanyTags:           tags.SplitCSV(req.CompanyTags).Sorted(),
	}
}

func registerContactHandlers(api huma.API, rec Reconciler) {
	type connectionInput struct {
		Body gateway.Odoo
	}
	type connectionOutput struct {
		Body gateway.ConnectionStatus
	}
	huma.Register(api, huma.Operation{OperationID: "test-connection", Method: http.MethodPost, Path: "/test_connection", Summary: "Authenticate against Odoo", Tags: []string{"Odoo"}},
		func(ctx context.Context, input *connectionInput) (*connectionOutput, error) {
			uid, err := rec.TestConnection(ctx, credentials(input.Body))
			if err != nil {
				return nil, mapErr(err)
			}
			out := &connectionOutput{}
			out.Body = gateway.ConnectionStatus{Status: "success", Message: "Connection successful", UID: uid}
			return out, nil
		})

	type checkInput struct {
		Body gateway.CheckRequest
	}
	type checkOutput struct {
		Body gateway.CheckResponse
	}
	huma.Register(api, huma.Operation{OperationID: "check-contact", Method: http.MethodPost, Path: "/check_contact", Summary: "Check whether an individual contact exists", Tags: []string{"Odoo"}},
		func(ctx context.Context, input *checkInput) (*checkOutput, error) {
			found, err := rec.CheckExists(ctx, credentials(input.Body.Odoo), input.Body.Name, input.Body.Email)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &checkOutput{}
			out.Body.Exists = found.Exists
			if found.Exists {
				id := found.ID
				out.Body.ID = &id
			}
			return out, nil
		})

	type contactInput struct {
		Body gateway.ContactRequest
	}
	type contactOutput struct {
		Body gateway.ContactResponse
	}
	huma.Register(api, huma.Operation{OperationID: "create-contact", Method: http.MethodPost, Path: "/create_contact", Summary: "Create or update a contact and its company", Tags: []string{"Odoo"}},
		func(ctx context.Context, input *contactInput) (*contactOutput, error) {
			res, err := rec.Upsert(ctx, credentials(input.Body.Odoo), contactFrom(input.Body))
			if err != nil {
				slog.Warn("contact upsert failed", "name", input.Body.Name, "company", input.Body.Company, "error", err)
				return nil, mapErr(err)
			}
			out := &contactOutput{}
			out.Body = gateway.ContactResponse{Status: "success", PersonID: res.PersonID}
			if res.CompanyID != 0 {
				id := res.CompanyID
				out.Body.CompanyID = &id
			}
			return out, nil
		})
}
