// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Defaults applied when neither environment nor config file set a value.
const (
	DefaultFBAPIVersion   = "v21.0"
	DefaultFBDelayMinutes = 30
)

// Config is the full runtime configuration. Values come from the
// environment (the primary source, matching scheduled CI deployment), an
// optional JSON config file, and CLI flag overrides.
type Config struct {
	// WordPress
	WPBaseURL       string `json:"wp_base_url,omitempty" validate:"required,url"`
	WPUser          string `json:"wp_user,omitempty" validate:"required"`
	WPAppPassword   string `json:"-" validate:"required"`
	AutoCreateTerms bool   `json:"wp_auto_create_terms,omitempty"`
	PublishDirect   bool   `json:"wp_publish_direct,omitempty"`

	// Google Sheets
	SpreadsheetID      string `json:"spreadsheet_id,omitempty" validate:"required"`
	WorksheetName      string `json:"worksheet_name,omitempty" validate:"required"`
	ServiceAccountJSON string `json:"-" validate:"required"`

	// Facebook (required unless SkipFacebook)
	FBPageID       string `json:"fb_page_id,omitempty"`
	FBAccessToken  string `json:"-"`
	FBAPIVersion   string `json:"fb_api_version,omitempty"`
	FBDelayMinutes int    `json:"fb_delay_minutes,omitempty" validate:"gte=0"`
	SkipFacebook   bool   `json:"skip_facebook,omitempty"`

	// Optional integrations
	GeminiAPIKey string `json:"-"`
	GeminiModel  string `json:"gemini_model,omitempty"`
	DatabaseURL  string `json:"-"`
	WebhookURL   string `json:"notify_webhook_url,omitempty" validate:"omitempty,url"`

	// Behavior
	Verbose bool `json:"verbose,omitempty"`
}

// LoadFile loads configuration overrides from a JSON file. Secrets
// (passwords, tokens, keys) are never read from the file; they stay in the
// environment.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// FillFromEnv fills every empty field from its environment variable and
// applies defaults. Boolean toggles follow the original deployment
// convention: the literal string "true" (any case) enables, anything else
// disables; unset keeps the default.
func (c *Config) FillFromEnv() error {
	fillString(&c.WPBaseURL, "WP_BASE_URL")
	c.WPBaseURL = strings.TrimRight(c.WPBaseURL, "/")
	fillString(&c.WPUser, "WP_USER")
	fillString(&c.WPAppPassword, "WP_APP_PASSWORD")
	fillString(&c.SpreadsheetID, "SPREADSHEET_ID")
	fillString(&c.WorksheetName, "WORKSHEET_NAME")
	fillString(&c.ServiceAccountJSON, "GOOGLE_SERVICE_ACCOUNT_JSON")
	fillString(&c.FBPageID, "FB_PAGE_ID")
	fillString(&c.FBAccessToken, "FB_PAGE_ACCESS_TOKEN")
	fillString(&c.FBAPIVersion, "FB_API_VERSION")
	fillString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	fillString(&c.GeminiModel, "GEMINI_MODEL")
	fillString(&c.DatabaseURL, "DATABASE_URL")
	fillString(&c.WebhookURL, "NOTIFY_WEBHOOK_URL")

	if c.FBAPIVersion == "" {
		c.FBAPIVersion = DefaultFBAPIVersion
	}

	if c.FBDelayMinutes == 0 {
		c.FBDelayMinutes = DefaultFBDelayMinutes
		if v := os.Getenv("FB_DELAY_MINUTES"); v != "" {
			minutes, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid FB_DELAY_MINUTES %q: %w", v, err)
			}
			c.FBDelayMinutes = minutes
		}
	}

	// Term auto-create defaults to enabled; an explicit non-"true" disables it.
	if v, ok := os.LookupEnv("WP_AUTO_CREATE_TERMS"); ok {
		c.AutoCreateTerms = strings.EqualFold(strings.TrimSpace(v), "true")
	} else if !c.AutoCreateTerms {
		c.AutoCreateTerms = true
	}
	if v, ok := os.LookupEnv("WP_PUBLISH_DIRECT"); ok {
		c.PublishDirect = strings.EqualFold(strings.TrimSpace(v), "true")
	}
	return nil
}

// Validate checks that the configuration is complete. Missing required
// values are fatal before any row is processed.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			var missing []string
			for _, fe := range verrs {
				missing = append(missing, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("config error: invalid or missing values: %s", strings.Join(missing, ", "))
		}
		return fmt.Errorf("config error: %w", err)
	}

	if !c.SkipFacebook {
		if c.FBPageID == "" || c.FBAccessToken == "" {
			return fmt.Errorf("config error: FB_PAGE_ID and FB_PAGE_ACCESS_TOKEN are required unless Facebook posting is skipped")
		}
	}
	return nil
}

func fillString(dst *string, envKey string) {
	if *dst == "" {
		*dst = os.Getenv(envKey)
	}
}
