package main

import (
	"github.com/spf13/cobra"
)

var extractRefresh bool

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Read the open profile, cache it and check whether it exists in Odoo",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, true)
		if err != nil {
			return err
		}
		defer a.Close()

		view, err := a.pipeline.Prepare(cmd.Context(), extractRefresh)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), view)
	},
}

var uploadRefresh bool

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Extract the open profile and upload it to Odoo",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, true)
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.pipeline.Prepare(cmd.Context(), uploadRefresh); err != nil {
			return err
		}
		res, err := a.pipeline.Upload(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <profile-url>",
	Short: "Print the cached record of a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		entry, err := a.pipeline.Entry(args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), entry)
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <profile-url> <field> <value>",
	Short: "Change one field of a cached profile",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		entry, err := a.pipeline.EditField(args[0], args[1], args[2])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), entry)
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractRefresh, "refresh", false, "ignore the cached record")
	uploadCmd.Flags().BoolVar(&uploadRefresh, "refresh", false, "re-read the page before uploading")
	rootCmd.AddCommand(extractCmd, uploadCmd, showCmd, editCmd)
}
