package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/club-duties/pkg/core/duties"
	"github.com/jakechorley/club-duties/pkg/core/model"
	"github.com/jakechorley/club-duties/pkg/core/services"
	"github.com/jakechorley/club-duties/pkg/db"
	"github.com/jakechorley/club-duties/pkg/exchange"
)

// Storage backends
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// DatabaseURLEnv overrides storage.postgresDSN so the DSN can live in .env
const DatabaseURLEnv = "DUTIES_DATABASE_URL"

// StorageConfig selects where the club document is kept
type StorageConfig struct {
	Backend      string        `yaml:"backend" validate:"required,oneof=file sqlite postgres"`
	Key          string        `yaml:"key,omitempty"`
	DataDir      string        `yaml:"dataDir,omitempty"`
	SQLitePath   string        `yaml:"sqlitePath,omitempty"`
	PostgresDSN  string        `yaml:"postgresDSN,omitempty"`
	PollInterval time.Duration `yaml:"pollInterval,omitempty" validate:"gte=0"`
}

// FeesConfig holds the amounts in whole euros
type FeesConfig struct {
	FlatFee   int `yaml:"flatFee" validate:"gte=0"`
	BonusRate int `yaml:"bonusRate" validate:"gte=0"`
}

// CalendarConfig controls exported calendar files
type CalendarConfig struct {
	ProdID        string `yaml:"prodID,omitempty"`
	Location      string `yaml:"location,omitempty"`
	UIDDomain     string `yaml:"uidDomain,omitempty" validate:"omitempty,hostname"`
	SummaryPrefix string `yaml:"summaryPrefix,omitempty"`
	Description   string `yaml:"description,omitempty"`
	FilePrefix    string `yaml:"filePrefix,omitempty"`
}

// ReminderConfig overrides the reminder email templates
type ReminderConfig struct {
	Subject string `yaml:"subject,omitempty"`
	Body    string `yaml:"body,omitempty"`
}

// Schedule defines a recurring task, e.g. the weekly bar duty
type Schedule struct {
	Name            string `yaml:"name" validate:"required"`
	RRule           string `yaml:"rrule" validate:"required"`
	Type            string `yaml:"type" validate:"required"`
	TaskName        string `yaml:"taskName,omitempty"`
	MaxParticipants *int   `yaml:"maxParticipants,omitempty" validate:"omitempty,min=1"`
	Description     string `yaml:"description,omitempty"`
}

// Config represents the application configuration
type Config struct {
	ClubName        string         `yaml:"clubName,omitempty"`
	Storage         StorageConfig  `yaml:"storage"`
	Fees            *FeesConfig    `yaml:"fees,omitempty"`
	Calendar        CalendarConfig `yaml:"calendar,omitempty"`
	MemberSheetID   string         `yaml:"memberSheetID,omitempty"`
	MemberSheetTab  string         `yaml:"memberSheetTab,omitempty"`
	GmailUserID     string         `yaml:"gmailUserID,omitempty"`
	GmailSender     string         `yaml:"gmailSender,omitempty" validate:"omitempty,email"`
	Reminder        ReminderConfig `yaml:"reminder,omitempty"`
	Schedules       []Schedule     `yaml:"schedules,omitempty" validate:"dive"`
	LogDir          string         `yaml:"logDir,omitempty"`
	MetricsTextfile string         `yaml:"metricsTextfile,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads .env files and then duties_config.<env>.yaml.
// Values already set in the environment win over .env files, and
// .env.<env> wins over .env.
func LoadWithEnv(env string) (*Config, error) {
	if err := loadDotEnv(env); err != nil {
		return nil, err
	}

	configPath, err := findFile(envFileName("duties_config", "yaml", env))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads, defaults and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if dsn := os.Getenv(DatabaseURLEnv); dsn != "" {
		cfg.Storage.PostgresDSN = dsn
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills in optional settings
func ApplyDefaults(cfg *Config) {
	if cfg.ClubName == "" {
		cfg.ClubName = "the club"
	}
	if cfg.Storage.Key == "" {
		cfg.Storage.Key = db.DocumentKey
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = filepath.Join(cfg.Storage.DataDir, "club-duties.db")
	}
	if cfg.Fees == nil {
		cfg.Fees = &FeesConfig{FlatFee: duties.DefaultFlatFee, BonusRate: duties.DefaultBonusRate}
	}
	if cfg.Calendar.ProdID == "" {
		cfg.Calendar.ProdID = "-//club-duties//Volunteer duties//EN"
	}
	if cfg.Calendar.UIDDomain == "" {
		cfg.Calendar.UIDDomain = "club-duties.local"
	}
	if cfg.Calendar.FilePrefix == "" {
		cfg.Calendar.FilePrefix = "duty"
	}
	if cfg.MemberSheetTab == "" {
		cfg.MemberSheetTab = "Members"
	}
}

// Validate validates the configuration struct and the cross-field rules
// struct tags cannot express
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Storage.Backend == BackendPostgres && cfg.Storage.PostgresDSN == "" {
		return fmt.Errorf("config validation failed: storage.postgresDSN (or %s) is required for the postgres backend", DatabaseURLEnv)
	}

	seen := make(map[string]bool)
	for i, s := range cfg.Schedules {
		if seen[s.Name] {
			return fmt.Errorf("duplicate schedule name in schedules[%d]: %s", i, s.Name)
		}
		seen[s.Name] = true

		if !model.TaskType(s.Type).IsValid() {
			return fmt.Errorf("invalid task type in schedules[%d]: %q", i, s.Type)
		}
		if _, err := rrule.StrToRRule(s.RRule); err != nil {
			return fmt.Errorf("invalid rrule in schedules[%d]: %w", i, err)
		}
	}

	return nil
}

// Rates returns the configured fees
func (c *Config) Rates() duties.Rates {
	if c.Fees == nil {
		return duties.DefaultRates()
	}
	return duties.Rates{FlatFee: c.Fees.FlatFee, BonusRate: c.Fees.BonusRate}
}

// CalendarOptions returns the options for calendar exports at now
func (c *Config) CalendarOptions(now time.Time) exchange.CalendarOptions {
	return exchange.CalendarOptions{
		ProdID:        c.Calendar.ProdID,
		Location:      c.Calendar.Location,
		UIDDomain:     c.Calendar.UIDDomain,
		SummaryPrefix: c.Calendar.SummaryPrefix,
		Description:   c.Calendar.Description,
		Now:           now,
	}
}

// ReminderTemplate returns the configured templates, falling back per field to the defaults
func (c *Config) ReminderTemplate() services.ReminderTemplate {
	tmpl := services.DefaultReminderTemplate()
	if c.Reminder.Subject != "" {
		tmpl.Subject = c.Reminder.Subject
	}
	if c.Reminder.Body != "" {
		tmpl.Body = c.Reminder.Body
	}
	return tmpl
}

// FindSchedule returns the schedule with the given name
func (c *Config) FindSchedule(name string) (services.TaskSchedule, bool) {
	for _, s := range c.Schedules {
		if s.Name == name {
			return s.TaskSchedule(), true
		}
	}
	return services.TaskSchedule{}, false
}

// TaskSchedule converts the configured schedule
func (s Schedule) TaskSchedule() services.TaskSchedule {
	return services.TaskSchedule{
		Name:            s.Name,
		RRule:           s.RRule,
		Type:            model.TaskType(s.Type),
		TaskName:        s.TaskName,
		MaxParticipants: s.MaxParticipants,
		Description:     s.Description,
	}
}

// loadDotEnv loads .env.<env> and .env when present. godotenv never
// overrides a variable that is already set, so the first file wins.
func loadDotEnv(env string) error {
	for _, name := range []string{".env." + env, ".env"} {
		err := godotenv.Load(name)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return fmt.Errorf("failed to load %s: %w", name, err)
	}
	return nil
}

// envFileName builds e.g. duties_config.test.yaml from ("duties_config", "yaml", "Test")
func envFileName(base, ext, env string) string {
	if env == "" {
		return base + "." + ext
	}
	return base + "." + strings.ToLower(env) + "." + ext
}

// findFile looks for name in the current directory, then in the home directory
func findFile(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", name)
}
