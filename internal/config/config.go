package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"expensetracker/internal/ledger"
)

type Config struct {
	// HTTP Server
	Port            string
	ShutdownTimeout time.Duration
	RecentLimit     int

	LogLevel string

	// Backend selection
	DataBackend string

	// CSV file (also seeds the memory backend)
	LedgerFile string

	// Database
	SQLiteDBPath string
	BoltDBPath   string

	// Cloud Storage
	GCSBucket string
	GCSObject string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	MirrorBackend string

	// Budgets
	BudgetFile string
	Budget     ledger.Budget

	budgetFileErr error
}

// Backends lists the accepted DATA_BACKEND and MIRROR_BACKEND values.
var Backends = []string{"csv", "memory", "sqlite", "bolt", "sheets", "gcs"}

// Load reads the configuration from the environment. Budgets start from the
// built-in defaults, are overlaid by BUDGET_FILE when it exists and finally
// by the *_BUDGET variables.
func Load() *Config {
	cfg := &Config{
		Port:            getEnv("PORT", "8081"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		RecentLimit:     getEnvInt("RECENT_LIMIT", 50),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		DataBackend: getEnv("DATA_BACKEND", "csv"),
		LedgerFile:  getEnv("LEDGER_FILE", "./data/expenses.csv"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/expenses.db"),
		BoltDBPath:   getEnv("BOLT_DB_PATH", "./data/expenses.bolt"),

		GCSBucket: getEnv("GCS_BUCKET", ""),
		GCSObject: getEnv("GCS_OBJECT", "expenses.csv"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Expenses"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "expenses"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_recorded"),

		MirrorBackend: getEnv("MIRROR_BACKEND", "sheets"),

		BudgetFile: getEnv("BUDGET_FILE", "budgets.yaml"),
		Budget:     ledger.DefaultBudget(),
	}

	if cfg.BudgetFile != "" {
		b, err := LoadBudgetFile(cfg.BudgetFile, cfg.Budget)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			cfg.budgetFileErr = err
		} else if err == nil {
			cfg.Budget = b
		}
	}

	cfg.Budget.Daily = getEnvDecimal("DAILY_BUDGET", cfg.Budget.Daily)
	cfg.Budget.Monthly = getEnvDecimal("MONTHLY_BUDGET", cfg.Budget.Monthly)
	cfg.Budget.Yearly = getEnvDecimal("YEARLY_BUDGET", cfg.Budget.Yearly)

	return cfg
}

// budgetFile is the YAML shape of BUDGET_FILE. Omitted keys keep the
// previous value.
type budgetFile struct {
	Daily   *string `yaml:"daily"`
	Monthly *string `yaml:"monthly"`
	Yearly  *string `yaml:"yearly"`
}

// LoadBudgetFile overlays the budgets found in a YAML file on base.
func LoadBudgetFile(path string, base ledger.Budget) (ledger.Budget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}

	var bf budgetFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return base, fmt.Errorf("parse budget file %s: %w", path, err)
	}

	out := base
	for _, f := range []struct {
		name string
		raw  *string
		dst  *decimal.Decimal
	}{
		{"daily", bf.Daily, &out.Daily},
		{"monthly", bf.Monthly, &out.Monthly},
		{"yearly", bf.Yearly, &out.Yearly},
	} {
		if f.raw == nil {
			continue
		}
		d, err := decimal.NewFromString(strings.TrimSpace(*f.raw))
		if err != nil {
			return base, fmt.Errorf("budget file %s: invalid %s budget %q", path, f.name, *f.raw)
		}
		*f.dst = d
	}
	return out, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if !isBackend(c.DataBackend) {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, Backends))
	} else {
		errs = append(errs, c.backendProblems(c.DataBackend)...)
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.budgetFileErr != nil {
		errs = append(errs, c.budgetFileErr.Error())
	}
	if err := c.Budget.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("invalid budget: %v", err))
	}

	if c.RecentLimit < 1 {
		errs = append(errs, fmt.Sprintf("invalid recent limit %d: must be at least 1", c.RecentLimit))
	}
	if c.ShutdownTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// ValidateMirror checks the settings the mirror worker needs on top of
// Validate.
func (c *Config) ValidateMirror() error {
	var errs []string
	if c.AMQPURL == "" {
		errs = append(errs, "AMQP URL is required for the mirror worker")
	}
	if !isBackend(c.MirrorBackend) {
		errs = append(errs, fmt.Sprintf("invalid mirror backend '%s': must be one of %v", c.MirrorBackend, Backends))
	} else {
		errs = append(errs, c.backendProblems(c.MirrorBackend)...)
	}
	if len(errs) > 0 {
		return fmt.Errorf("mirror configuration invalid:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func (c *Config) backendProblems(backend string) []string {
	var errs []string
	switch backend {
	case "csv":
		if c.LedgerFile == "" {
			errs = append(errs, "ledger file path cannot be empty when using csv backend")
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		}
	case "bolt":
		if c.BoltDBPath == "" {
			errs = append(errs, "bolt database path cannot be empty when using bolt backend")
		}
	case "gcs":
		if c.GCSBucket == "" {
			errs = append(errs, "GCS bucket is required when using gcs backend")
		}
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleSheetName == "" {
			errs = append(errs, "Google Sheet name is required when using sheets backend")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}
	return errs
}

func isBackend(name string) bool {
	for _, b := range Backends {
		if b == name {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return defaultValue
}
