package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/gateway"
)

var (
	campaignPersonTags  []string
	campaignCompanyTags []string
)

var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Manage tagging campaigns on the gateway",
}

var campaignListCmd = &cobra.Command{
	Use:   "list",
	Short: "List campaigns, marking the active one",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		list, active, err := a.pipeline.Campaigns(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "\tID\tNAME\tPERSON TAGS\tCOMPANY TAGS")
		for _, c := range list {
			mark := ""
			if active != nil && active.ID == c.ID {
				mark = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%v\t%v\n", mark, c.ID, c.Name, c.PersonTags, c.CompanyTags)
		}
		return tw.Flush()
	},
}

var campaignCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a campaign",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		c, err := a.pipeline.CreateCampaign(cmd.Context(), gateway.CampaignInput{Name: args[0], PersonTags: campaignPersonTags, CompanyTags: campaignCompanyTags})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), c)
	},
}

var campaignUpdateCmd = &cobra.Command{
	Use:   "update <id> <name>",
	Short: "Replace a campaign's name and tags",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		c, err := a.pipeline.UpdateCampaign(cmd.Context(), args[0], gateway.CampaignInput{Name: args[1], PersonTags: campaignPersonTags, CompanyTags: campaignCompanyTags})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), c)
	},
}

var campaignDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a campaign",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		if err := a.pipeline.DeleteCampaign(cmd.Context(), args[0]); err != nil {
			return err
		}
		cmd.Printf("deleted %s\n", args[0])
		return nil
	},
}

var campaignActivateCmd = &cobra.Command{
	Use:   "activate [id]",
	Short: "Set the active campaign; without an id, clear it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		id := ""
		if len(args) == 1 {
			id = args[0]
		}
		c, err := a.pipeline.SetActiveCampaign(cmd.Context(), id)
		if err != nil {
			return err
		}
		if c == nil {
			cmd.Println("no active campaign")
			return nil
		}
		cmd.Printf("active campaign: %s (%s)\n", c.Name, c.ID)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{campaignCreateCmd, campaignUpdateCmd} {
		c.Flags().StringSliceVar(&campaignPersonTags, "person-tags", nil, "tags added to people")
		c.Flags().StringSliceVar(&campaignCompanyTags, "company-tags", nil, "tags added to companies")
	}
	campaignCmd.AddCommand(campaignListCmd, campaignCreateCmd, campaignUpdateCmd, campaignDeleteCmd, campaignActivateCmd)
	rootCmd.AddCommand(campaignCmd)
}
