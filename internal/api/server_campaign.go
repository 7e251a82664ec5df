package api

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

func registerCampaignHandlers(api huma.API, svc Service) {
	type listOutput struct {
		Body struct {
			Campaigns        []campaign.Campaign `json:"campaigns"`
			ActiveCampaignID string              `json:"active_campaign_id"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-campaigns", Method: http.MethodGet, Path: "/api/v1/campaigns", Summary: "List campaigns and the active one", Tags: []string{"Campaigns"}},
		func(ctx context.Context, input *struct{}) (*listOutput, error) {
			list, active, err := svc.Campaigns(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &listOutput{}
			out.Body.Campaigns = list
			if out.Body.Campaigns == nil {
				out.Body.Campaigns = []campaign.Campaign{}
			}
			if active != nil {
				out.Body.ActiveCampaignID = active.ID
			}
			return out, nil
		})

	type createInput struct {
		Body gateway.CampaignInput
	}
	huma.Register(api, huma.Operation{OperationID: "create-campaign", Method: http.MethodPost, Path: "/api/v1/campaigns", Summary: "Create a campaign", Tags: []string{"Campaigns"}},
		func(ctx context.Context, input *createInput) (*campaignOutput, error) {
			c, err := svc.CreateCampaign(ctx, input.Body)
			if err != nil {
				return nil, mapErr(err)
			}
			return &campaignOutput{Body: c}, nil
		})

	type updateInput struct {
		campaignIDInput
		Body gateway.CampaignInput
	}
	huma.Register(api, huma.Operation{OperationID: "update-campaign", Method: http.MethodPut, Path: "/api/v1/campaigns/{campaign_id}", Summary: "Update a campaign", Tags: []string{"Campaigns"}},
		func(ctx context.Context, input *updateInput) (*campaignOutput, error) {
			c, err := svc.UpdateCampaign(ctx, input.CampaignID, input.Body)
			if err != nil {
				return nil, mapErr(err)
			}
			return &campaignOutput{Body: c}, nil
		})

	type deleteOutput struct {
		Body gateway.DeleteResponse
	}
	huma.Register(api, huma.Operation{OperationID: "delete-campaign", Method: http.MethodDelete, Path: "/api/v1/campaigns/{campaign_id}", Summary: "Delete a campaign", Tags: []string{"Campaigns"}},
		func(ctx context.Context, input *campaignIDInput) (*deleteOutput, error) {
			if err := svc.DeleteCampaign(ctx, input.CampaignID); err != nil {
				return nil, mapErr(err)
			}
			out := &deleteOutput{}
			out.Body = gateway.DeleteResponse{Status: "success", CampaignID: input.CampaignID}
			return out, nil
		})

	type activeInput struct {
		Body struct {
			CampaignID string `json:"campaign_id" doc:"Campaign to activate; empty clears the active campaign."`
		}
	}
	type activeOutput struct {
		Body struct {
			Campaign *campaign.Campaign `json:"campaign"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "set-active-campaign", Method: http.MethodPut, Path: "/api/v1/active-campaign", Summary: "Switch the active campaign and retag the current profile", Tags: []string{"Campaigns"}},
		func(ctx context.Context, input *activeInput) (*activeOutput, error) {
			c, err := svc.SetActiveCampaign(ctx, input.Body.CampaignID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &activeOutput{}
			out.Body.Campaign = c
			return out, nil
		})
}
