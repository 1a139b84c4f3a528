package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/zerobudget/internal/sheets"
)

// DefaultSheetsTokenFile is where the interactive Google login stores its token.
const DefaultSheetsTokenFile = "~/.config/zb/sheets-token.json"

// LoadSheetsConfig loads Google Sheets configuration from v and the environment.
// It follows this precedence:
// 1. Viper configuration (from config file or ZB_ env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*)
// 3. Default values
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	if s := v.GetString("sheets.service_account_path"); s != "" {
		config.ServiceAccountPath = ExpandPath(s)
	}
	if s := v.GetString("sheets.client_id"); s != "" {
		config.ClientID = s
	}
	if s := v.GetString("sheets.client_secret"); s != "" {
		config.ClientSecret = s
	}
	if s := v.GetString("sheets.refresh_token"); s != "" {
		config.RefreshToken = s
	}
	if s := v.GetString("sheets.spreadsheet_id"); s != "" {
		config.SpreadsheetID = s
	}
	if s := v.GetString("sheets.spreadsheet_name"); s != "" {
		config.SpreadsheetName = s
	}

	config.TokenFile = ExpandPath(DefaultSheetsTokenFile)
	if s := v.GetString("sheets.token_file"); s != "" {
		config.TokenFile = ExpandPath(s)
	}

	if config.ServiceAccountPath == "" {
		if s := os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"); s != "" {
			config.ServiceAccountPath = ExpandPath(s)
		}
	}
	if config.ClientID == "" {
		config.ClientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if config.ClientSecret == "" {
		config.ClientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if config.RefreshToken == "" {
		config.RefreshToken = os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN")
	}
	if config.SpreadsheetID == "" {
		config.SpreadsheetID = os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID")
	}
	if s := os.Getenv("GOOGLE_SHEETS_SPREADSHEET_NAME"); s != "" && v.GetString("sheets.spreadsheet_name") == "" {
		config.SpreadsheetName = s
	}

	config.ApplyStoredToken()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadSheetsOAuth returns the OAuth2 client settings used by the interactive login.
func LoadSheetsOAuth(v *viper.Viper) sheets.OAuth2Config {
	oauth := sheets.OAuth2Config{
		ClientID:     v.GetString("sheets.client_id"),
		ClientSecret: v.GetString("sheets.client_secret"),
		TokenFile:    ExpandPath(DefaultSheetsTokenFile),
	}
	if oauth.ClientID == "" {
		oauth.ClientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if oauth.ClientSecret == "" {
		oauth.ClientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if s := v.GetString("sheets.token_file"); s != "" {
		oauth.TokenFile = ExpandPath(s)
	}
	return oauth
}
