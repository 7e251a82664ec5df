package main

import (
	"github.com/spf13/cobra"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/gateway"
)

var credsInput gateway.Credentials

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Show, change or test the Odoo connection settings",
}

var credentialsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved settings with the token masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		c, err := a.pipeline.Credentials()
		if err != nil {
			return err
		}
		if c.APIToken != "" {
			c.APIToken = "********"
		}
		return printJSON(cmd.OutOrStdout(), c)
	},
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the saved settings; unset flags keep their value",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		c, err := a.pipeline.Credentials()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("server") {
			c.ServerURL = credsInput.ServerURL
		}
		if flags.Changed("db") {
			c.DBName = credsInput.DBName
		}
		if flags.Changed("username") {
			c.Username = credsInput.Username
		}
		if flags.Changed("token") {
			c.APIToken = credsInput.APIToken
		}
		if flags.Changed("backend") {
			c.BackendURL = credsInput.BackendURL
		}
		if _, err := a.pipeline.SaveCredentials(c); err != nil {
			return err
		}
		cmd.Println("settings saved")
		return nil
	},
}

var credentialsTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Authenticate against Odoo through the gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		st, err := a.pipeline.TestConnection(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), st)
	},
}

func init() {
	f := credentialsSetCmd.Flags()
	f.StringVar(&credsInput.ServerURL, "server", "", "Odoo base URL")
	f.StringVar(&credsInput.DBName, "db", "", "Odoo database name")
	f.StringVar(&credsInput.Username, "username", "", "Odoo login")
	f.StringVar(&credsInput.APIToken, "token", "", "Odoo API key")
	f.StringVar(&credsInput.BackendURL, "backend", "", "CRM gateway URL")
	credentialsCmd.AddCommand(credentialsShowCmd, credentialsSetCmd, credentialsTestCmd)
	rootCmd.AddCommand(credentialsCmd)
}
