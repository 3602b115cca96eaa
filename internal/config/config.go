// =============================================================================
// Missouri Lobbying Ledger - Configuration Module
// =============================================================================
//
// This module is responsible for loading the loader configuration. A single
// YAML file describes:
//   1. Where the store lives (sqlite file or postgres DSN)
//   2. Where the reference tables and yearly workbooks are
//   3. The classification rules (skip-set, date window, severities)
//   4. The column labels of each workbook sheet
//
// LOADING:
//   The file is read with viper so every key can be overridden from the
//   environment with the LOBBY_ prefix, e.g.:
//     LOBBY_DATABASE_DSN=/tmp/lobbying.db
//     LOBBY_RULES_UNRESOLVED_ORGANIZATION=warning
//
//   Defaults are applied after unmarshalling, then the result is validated.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the whole loader configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Inputs   InputsConfig   `yaml:"inputs" mapstructure:"inputs"`
	Rules    RulesConfig    `yaml:"rules" mapstructure:"rules"`
	Columns  ColumnsConfig  `yaml:"columns" mapstructure:"columns"`
}

// DatabaseConfig selects and locates the relational store.
type DatabaseConfig struct {
	// Driver is either "sqlite" or "postgres".
	// Default: "sqlite"
	Driver string `yaml:"driver" mapstructure:"driver"`

	// DSN is the sqlite file path or the postgres connection string.
	// Default: "./lobbying.db"
	DSN string `yaml:"dsn" mapstructure:"dsn"`

	// LogSQL turns on gorm's statement logger.
	LogSQL bool `yaml:"log_sql" mapstructure:"log_sql"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level" mapstructure:"level"`

	// Format is "console" or "json".
	// Default: "console"
	Format string `yaml:"format" mapstructure:"format"`
}

// InputsConfig locates the input files.
type InputsConfig struct {
	// Organizations is the organization name-lookup CSV
	// (raw name, canonical name, category).
	// Default: "./data/organizations.csv"
	Organizations string `yaml:"organizations" mapstructure:"organizations"`

	// Legislators is the legislator demographic roster CSV.
	// Default: "./data/legislators.csv"
	Legislators string `yaml:"legislators" mapstructure:"legislators"`

	// ExpendituresDir holds one .xlsx workbook per year. The file name
	// (without extension) becomes the batch label.
	// Default: "./data/expenditures"
	ExpendituresDir string `yaml:"expenditures_dir" mapstructure:"expenditures_dir"`

	// OutputDir receives the ledger and summary log files.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// RulesConfig holds the classifier and validator rules.
type RulesConfig struct {
	// SkipRecipientTypes lists recipient types that are deliberately out of
	// scope. Rows addressed to them are dropped without a diagnostic.
	SkipRecipientTypes []string `yaml:"skip_recipient_types" mapstructure:"skip_recipient_types"`

	// EarliestDate and LatestDate bound the plausible event/report dates
	// (YYYY-MM-DD). LatestDate defaults to December 31 of the current year.
	EarliestDate string `yaml:"earliest_date" mapstructure:"earliest_date"`
	LatestDate   string `yaml:"latest_date" mapstructure:"latest_date"`

	// UnresolvedOrganization is the severity of a principal missing from the
	// lookup table: "error" (default) or "warning".
	UnresolvedOrganization string `yaml:"unresolved_organization" mapstructure:"unresolved_organization"`

	// AttributeStaffToLegislator attaches the associated legislator to staff
	// and family rows. When false those rows carry only the recipient type.
	AttributeStaffToLegislator *bool `yaml:"attribute_staff_to_legislator" mapstructure:"attribute_staff_to_legislator"`

	// StripNicknames truncates names at their first parenthesis.
	StripNicknames *bool `yaml:"strip_nicknames" mapstructure:"strip_nicknames"`

	// CommitBatchSize is the insert batch size of the final commit.
	// Default: 500
	CommitBatchSize int `yaml:"commit_batch_size" mapstructure:"commit_batch_size"`

	// Parsed window, filled by validate.
	Earliest time.Time `yaml:"-" mapstructure:"-"`
	Latest   time.Time `yaml:"-" mapstructure:"-"`
}

// ColumnsConfig holds the header labels of the workbook sheets.
// The individual and solicitation sheets share one layout.
type ColumnsConfig struct {
	Recipient SheetColumns `yaml:"recipient" mapstructure:"recipient"`
	Group     SheetColumns `yaml:"group" mapstructure:"group"`
}

// SheetColumns maps logical fields onto header labels. Recipient and
// PublicOfficial only apply to recipient sheets; Group only to group sheets.
type SheetColumns struct {
	LobbyistFirstName string `yaml:"lobbyist_first_name" mapstructure:"lobbyist_first_name"`
	LobbyistLastName  string `yaml:"lobbyist_last_name" mapstructure:"lobbyist_last_name"`
	Report            string `yaml:"report" mapstructure:"report"`
	Recipient         string `yaml:"recipient,omitempty" mapstructure:"recipient"`
	PublicOfficial    string `yaml:"public_official,omitempty" mapstructure:"public_official"`
	Group             string `yaml:"group,omitempty" mapstructure:"group"`
	Date              string `yaml:"date" mapstructure:"date"`
	Type              string `yaml:"type" mapstructure:"type"`
	Description       string `yaml:"description" mapstructure:"description"`
	Cost              string `yaml:"cost" mapstructure:"cost"`
	Principal         string `yaml:"principal" mapstructure:"principal"`
	Amended           string `yaml:"amended" mapstructure:"amended"`
	EthicsID          string `yaml:"ethics_id" mapstructure:"ethics_id"`
}

// DefaultSkipRecipientTypes is the skip-set used when none is configured.
var DefaultSkipRecipientTypes = []string{
	"Local Public Official",
	"Local Government Official",
	"Public Official",
	"Statewide Elected Official",
	"Statewide Official",
	"Judge",
	"Department Director",
	"Department Director or Staff",
	"Elected Local Government Official",
	"Local Elected Official",
	"State Employee",
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load reads the configuration file at path, applies LOBBY_* environment
// overrides, defaults, and validation. An empty path yields the defaults
// (still subject to environment overrides).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("LOBBY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		// Defaults are constants; failing here is a programming error.
		panic(err)
	}
	return cfg
}

// Dump renders the configuration as YAML.
func Dump(cfg *Config) ([]byte, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to render config: %w", err)
	}
	return out, nil
}

// bindEnvKeys registers the scalar keys so AutomaticEnv can see them even
// when the file does not mention them.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"database.driver", "database.dsn", "database.log_sql",
		"log.level", "log.format",
		"inputs.organizations", "inputs.legislators", "inputs.expenditures_dir", "inputs.output_dir",
		"rules.earliest_date", "rules.latest_date", "rules.unresolved_organization",
		"rules.attribute_staff_to_legislator", "rules.strip_nicknames", "rules.commit_batch_size",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "./lobbying.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Inputs.Organizations == "" {
		cfg.Inputs.Organizations = "./data/organizations.csv"
	}
	if cfg.Inputs.Legislators == "" {
		cfg.Inputs.Legislators = "./data/legislators.csv"
	}
	if cfg.Inputs.ExpendituresDir == "" {
		cfg.Inputs.ExpendituresDir = "./data/expenditures"
	}
	if cfg.Inputs.OutputDir == "" {
		cfg.Inputs.OutputDir = "./output"
	}

	rules := &cfg.Rules
	if len(rules.SkipRecipientTypes) == 0 {
		rules.SkipRecipientTypes = append([]string(nil), DefaultSkipRecipientTypes...)
	}
	if rules.EarliestDate == "" {
		rules.EarliestDate = "2004-01-01"
	}
	if rules.LatestDate == "" {
		rules.LatestDate = fmt.Sprintf("%d-12-31", time.Now().Year())
	}
	if rules.UnresolvedOrganization == "" {
		rules.UnresolvedOrganization = "error"
	}
	if rules.AttributeStaffToLegislator == nil {
		rules.AttributeStaffToLegislator = boolPtr(true)
	}
	if rules.StripNicknames == nil {
		rules.StripNicknames = boolPtr(true)
	}
	if rules.CommitBatchSize <= 0 {
		rules.CommitBatchSize = 500
	}

	applyColumnDefaults(&cfg.Columns.Recipient, true)
	applyColumnDefaults(&cfg.Columns.Group, false)
}

// applyColumnDefaults fills the header labels used by the ethics commission
// export.
func applyColumnDefaults(cols *SheetColumns, recipient bool) {
	setDefault := func(field *string, value string) {
		if *field == "" {
			*field = value
		}
	}

	setDefault(&cols.LobbyistFirstName, "Lob F Name")
	setDefault(&cols.LobbyistLastName, "Lob L Name")
	setDefault(&cols.Report, "Report")
	setDefault(&cols.Date, "Date")
	setDefault(&cols.Type, "Type")
	setDefault(&cols.Description, "Description")
	setDefault(&cols.Cost, "Cost")
	setDefault(&cols.Principal, "Principal")
	setDefault(&cols.Amended, "If Amended")
	setDefault(&cols.EthicsID, "ID")

	if recipient {
		setDefault(&cols.Recipient, "Recipient")
		setDefault(&cols.PublicOfficial, "Public Official")
	} else {
		setDefault(&cols.Group, "Group")
	}
}

// validate checks enumerated values and parses the date window.
func validate(cfg *Config) error {
	switch cfg.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	switch cfg.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log format %q", cfg.Log.Format)
	}

	switch strings.ToLower(cfg.Rules.UnresolvedOrganization) {
	case "error", "warning":
	default:
		return fmt.Errorf("unresolved_organization must be error or warning, got %q", cfg.Rules.UnresolvedOrganization)
	}

	earliest, err := time.Parse("2006-01-02", cfg.Rules.EarliestDate)
	if err != nil {
		return fmt.Errorf("earliest_date: %w", err)
	}
	latest, err := time.Parse("2006-01-02", cfg.Rules.LatestDate)
	if err != nil {
		return fmt.Errorf("latest_date: %w", err)
	}
	if latest.Before(earliest) {
		return fmt.Errorf("latest_date %s is before earliest_date %s", cfg.Rules.LatestDate, cfg.Rules.EarliestDate)
	}
	cfg.Rules.Earliest = earliest
	cfg.Rules.Latest = latest

	return nil
}

func boolPtr(b bool) *bool {
	return &b
}
