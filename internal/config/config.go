// Package config loads runtime settings from defaults, an optional YAML file
// and FINSUM_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"golang.org/x/text/language"
)

// EnvPrefix is stripped from environment variable names before mapping them to keys.
const EnvPrefix = "FINSUM_"

// Sign conventions for stored amounts.
const (
	SignSigned   = "signed"
	SignAbsolute = "absolute"
)

// Config holds the application configuration.
type Config struct {
	// Source is a local CSV path or a gs://bucket/object URI.
	// Environment variable: FINSUM_SOURCE
	Source string `koanf:"source"`

	// Output is where the cleaned CSV is written (local path or gs:// URI).
	// Environment variable: FINSUM_OUTPUT
	Output string `koanf:"output"`

	// TaxonomyFile and MerchantsFile override the embedded keyword tables.
	TaxonomyFile  string `koanf:"taxonomy_file"`
	MerchantsFile string `koanf:"merchants_file"`

	TopMerchants int `koanf:"top_merchants"`
	TopCustomers int `koanf:"top_customers"`

	// SignConvention is "signed" (debits stored negative) or "absolute" (debits stored positive).
	SignConvention string `koanf:"sign_convention"`

	// DateLayouts replaces the built-in date layouts when set.
	// In the environment, separate layouts with ';'.
	DateLayouts []string `koanf:"date_layouts"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	GCPProject      string `koanf:"gcp_project"`
	CredentialsFile string `koanf:"gcp_credentials_file"`

	BQDataset           string `koanf:"bq_dataset"`
	BQTransactionsTable string `koanf:"bq_transactions_table"`
	BQSummaryTable      string `koanf:"bq_summary_table"`
	BQPeriodsTable      string `koanf:"bq_periods_table"`

	GeminiModel string `koanf:"gemini_model"`

	// CurrencySymbol prefixes amounts in console reports; Locale picks digit grouping.
	CurrencySymbol string `koanf:"currency_symbol"`
	Locale         string `koanf:"locale"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() *Config {
	return &Config{
		Source:              "data/ROSA_financial_transactions.csv",
		Output:              "data/ROSA_cleaned.csv",
		TopMerchants:        10,
		TopCustomers:        15,
		SignConvention:      SignSigned,
		LogLevel:            "info",
		LogFormat:           "console",
		BQDataset:           "finance",
		BQTransactionsTable: "summary_transactions",
		BQSummaryTable:      "summary_group_totals",
		BQPeriodsTable:      "summary_periods",
		GeminiModel:         "gemini-2.5-flash",
		CurrencySymbol:      "$",
		Locale:              "en-US",
	}
}

// LoadDotEnv loads a .env file into the process environment if one exists.
func LoadDotEnv(paths ...string) {
	_ = godotenv.Load(paths...)
}

// Load builds the configuration. path may be empty; when set, the YAML file must exist.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %q: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

func envValue(key, value string) (string, interface{}) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "date_layouts" {
		var layouts []string
		for _, l := range strings.Split(value, ";") {
			if l = strings.TrimSpace(l); l != "" {
				layouts = append(layouts, l)
			}
		}
		return key, layouts
	}
	return key, value
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var problems []string

	if c.TopMerchants < 1 {
		problems = append(problems, fmt.Sprintf("invalid top_merchants %d: must be at least 1", c.TopMerchants))
	}
	if c.TopCustomers < 1 {
		problems = append(problems, fmt.Sprintf("invalid top_customers %d: must be at least 1", c.TopCustomers))
	}

	if c.SignConvention != SignSigned && c.SignConvention != SignAbsolute {
		problems = append(problems, fmt.Sprintf("invalid sign_convention '%s': must be '%s' or '%s'", c.SignConvention, SignSigned, SignAbsolute))
	}

	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid log_format '%s': must be 'console' or 'json'", c.LogFormat))
	}

	if _, err := language.Parse(c.Locale); err != nil {
		problems = append(problems, fmt.Sprintf("invalid locale '%s': %v", c.Locale, err))
	}

	for _, f := range []struct{ key, path string }{
		{"taxonomy_file", c.TaxonomyFile},
		{"merchants_file", c.MerchantsFile},
		{"gcp_credentials_file", c.CredentialsFile},
	} {
		if f.path == "" {
			continue
		}
		if _, err := os.Stat(f.path); errors.Is(err, os.ErrNotExist) {
			problems = append(problems, fmt.Sprintf("%s does not exist: %s", f.key, f.path))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// ValidateExport checks the settings needed by the BigQuery export.
func (c *Config) ValidateExport() error {
	var problems []string
	if c.GCPProject == "" {
		problems = append(problems, "gcp_project is required for export")
	}
	if c.BQDataset == "" {
		problems = append(problems, "bq_dataset is required for export")
	}
	if c.BQTransactionsTable == "" || c.BQSummaryTable == "" || c.BQPeriodsTable == "" {
		problems = append(problems, "bq_transactions_table, bq_summary_table and bq_periods_table must be set")
	}
	if len(problems) > 0 {
		return fmt.Errorf("export configuration invalid:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}
