package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/zerobudget/internal/cli"
	"github.com/Veraticus/zerobudget/internal/common"
	"github.com/Veraticus/zerobudget/internal/config"
	"github.com/Veraticus/zerobudget/internal/engine"
	"github.com/Veraticus/zerobudget/internal/sheets"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export budgets to other tools",
	}

	cmd.AddCommand(exportSheetsCmd())
	cmd.AddCommand(sheetsLoginCmd())

	return cmd
}

func exportSheetsCmd() *cobra.Command {
	var monthFlag string

	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Write the budget of a month to Google Sheets",
		Long: `Write the budget of a month to a tab named after the month (YYYY-MM) of
the configured spreadsheet. The tab is rewritten on every export.

Authenticate with a service account (sheets.service_account_path) or with
OAuth2 client credentials and 'zb export login'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			sheetsConfig, err := config.LoadSheetsConfig(viper.GetViper())
			if err != nil {
				return common.NewUserError("Google Sheets is not configured", err)
			}

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			m, err := s.resolveMonth(ctx, monthFlag)
			if err != nil {
				return err
			}

			result, ok, err := engine.NewPipeline(s.store).Evaluate(ctx, m)
			if err != nil {
				return err
			}
			if !ok {
				return common.NewUserError(fmt.Sprintf("The budget of %s changed while it was read; try again", m.Label()), nil)
			}

			writer, err := sheets.NewWriter(ctx, *sheetsConfig, slog.Default())
			if err != nil {
				return err
			}
			if err := writer.Write(ctx, sheets.ReportFromResult(result)); err != nil {
				return fmt.Errorf("failed to export %s: %w", m, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %s to Google Sheets", m.Label())))
			return nil
		},
	}

	cmd.Flags().StringVarP(&monthFlag, "month", "m", "", "month to export (YYYY-MM, default: selected month)")
	return cmd
}

func sheetsLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize Google Sheets access in the browser",
		Long: `Run the OAuth2 flow for the configured client id and secret. The token is
stored in sheets.token_file and used by later exports.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			oauth := config.LoadSheetsOAuth(viper.GetViper())
			token, err := sheets.AuthenticateOAuth2Interactive(cmd.Context(), oauth)
			if err != nil {
				return err
			}
			if token.RefreshToken == "" {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("Google returned no refresh token; revoke the app's access and log in again"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Logged in; token saved to "+oauth.TokenFile))
			return nil
		},
	}
}
