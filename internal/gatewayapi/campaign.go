package gatewayapi

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/campaign"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/gateway"
)

type campaignIDInput struct {
	CampaignID string `path:"campaign_id"`
}

type campaignOutput struct {
	Body campaign.Campaign
}

func fromInput(in gateway.CampaignInput) campaign.Campaign {
	return campaign.Campaign{Name: in.Name, PersonTags: in.PersonTags, CompanyTags: in.CompanyTags}
}

func registerCampaignHandlers(api huma.API, store Campaigns) {
	type listOutput struct {
		Body []campaign.Campaign
	}
	huma.Register(api, huma.Operation{OperationID: "list-campaigns", Method: http.MethodGet, Path: "/campaigns", Summary: "List campaigns, newest first", Tags: []string{"Campaigns"}},
		func(ctx context.Context, input *struct{}) (*listOutput, error) {
			list, err := store.List(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return &listOutput{Body: list}, nil
		})

	type createInput struct {
		Body gateway.CampaignInput
	}
	huma.Register(api, huma.Operation{OperationID: "create-campaign", Method: http.MethodPost, Path: "/campaigns", Summary: "Create a campaign", Tags: []string{"Campaigns"}},
		func(ctx context.Context, input *createInput) (*campaignOutput, error) {
			c, err := store.Create(ctx, fromInput(input.Body))
			if err != nil {
				return nil, mapErr(err)
			}
			return &campaignOutput{Body: c}, nil
		})

	type updateInput struct {
		campaignIDInput
		Body gateway.CampaignInput
	}
	huma.Register(api, huma.Operation{OperationID: "update-campaign", Method: http.MethodPut, Path: "/campaigns/{campaign_id}", Summary: "Replace a campaign's name and tags", Tags: []string{"Campaigns"}},
		func(ctx context.Context, input *updateInput) (*campaignOutput, error) {
			c, err := store.Update(ctx, input.CampaignID, fromInput(input.Body))
			if err != nil {
				return nil, mapErr(err)
			}
			return &campaignOutput{Body: c}, nil
		})

	type deleteOutput struct {
		Body gateway.DeleteResponse
	}
	huma.Register(api, huma.Operation{OperationID: "delete-campaign", Method: http.MethodDelete, Path: "/campaigns/{campaign_id}", Summary: "Delete a campaign", Tags: []string{"Campaigns"}},
		func(ctx context.Context, input *campaignIDInput) (*deleteOutput, error) {
			if err := store.Delete(ctx, input.CampaignID); err != nil {
				return nil, mapErr(err)
			}
			out := &deleteOutput{}
			out.Body = gateway.DeleteResponse{Status: "success", CampaignID: input.CampaignID}
			return out, nil
		})
}
