package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"hanzi/internal/domain"
	"hanzi/internal/srs"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds all application configuration
type Config struct {
	Debug    bool           `koanf:"debug"`
	Bot      BotConfig      `koanf:"bot"`
	Database DatabaseConfig `koanf:"database"`
	HTTP     HTTPConfig     `koanf:"http"`
	Study    StudyConfig    `koanf:"study"`
	Reminder ReminderConfig `koanf:"reminder"`
	Import   ImportConfig   `koanf:"import"`
}

// BotConfig holds Telegram bot settings
type BotConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Token    string `koanf:"token" validate:"required_if=Enabled true"`
	Password string `koanf:"password" validate:"required_if=Enabled true"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver   string `koanf:"driver" validate:"oneof=postgres sqlite"`
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	Name     string `koanf:"name" validate:"required_if=Driver postgres"`
	User     string `koanf:"user" validate:"required_if=Driver postgres"`
	Password string `koanf:"password" validate:"required_if=Driver postgres"`
	SSLMode  string `koanf:"sslmode" validate:"omitempty,oneof=disable require verify-ca verify-full"`
	Path     string `koanf:"path" validate:"required_if=Driver sqlite"`
}

// HTTPConfig holds JSON API settings
type HTTPConfig struct {
	Enabled        bool     `koanf:"enabled"`
	Addr           string   `koanf:"addr" validate:"required_if=Enabled true"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// StudyConfig holds review session settings
type StudyConfig struct {
	PassGrade     string        `koanf:"pass_grade" validate:"oneof=again hard good easy 1 2 3 4"`
	SessionLimit  int           `koanf:"session_limit" validate:"gte=0"`
	RequeueLapses bool          `koanf:"requeue_lapses"`
	SessionTTL    time.Duration `koanf:"session_ttl" validate:"gte=0"`
	Policy        srs.Policy    `koanf:"policy" validate:"-"`
}

// ReminderConfig holds due-card reminder settings. Hours are UTC.
type ReminderConfig struct {
	Enabled    bool `koanf:"enabled"`
	EveryHours int  `koanf:"every_hours" validate:"gte=1,lte=24"`
	StartHour  int  `koanf:"start_hour" validate:"gte=0,lte=23"`
	EndHour    int  `koanf:"end_hour" validate:"gtfield=StartHour,lte=24"`
}

// ImportConfig holds bulk import sources
type ImportConfig struct {
	File     string `koanf:"file"`
	GitURL   string `koanf:"git_url" validate:"omitempty,url"`
	GitPath  string `koanf:"git_path"`
	ReposDir string `koanf:"repos_dir"`
	// Only exits after the import instead of starting the bot and API.
	Only bool `koanf:"only"`
}

// envKeys maps the plain environment variables to config keys.
// HANZI_SECTION__KEY variables are mapped generically.
var envKeys = map[string]string{
	"BOT_TOKEN":    "bot.token",
	"BOT_PASSWORD": "bot.password",
	"DB_DRIVER":    "database.driver",
	"DB_HOST":      "database.host",
	"DB_PORT":      "database.port",
	"DB_NAME":      "database.name",
	"DB_USER":      "database.user",
	"DB_PASSWORD":  "database.password",
	"DB_SSLMODE":   "database.sslmode",
	"DB_PATH":      "database.path",
	"HTTP_ADDR":    "http.addr",
}

var validate = validator.New()

// Flags returns the command line flags. Their defaults are the configuration defaults.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("hanzi", pflag.ContinueOnError)

	fs.String("config", "", "path to a YAML config file")
	fs.Bool("debug", false, "development logging")

	fs.Bool("bot.enabled", true, "run the Telegram bot")

	fs.String("database.driver", "postgres", "database driver: postgres or sqlite")
	fs.String("database.host", "localhost", "PostgreSQL host")
	fs.String("database.port", "5432", "PostgreSQL port")
	fs.String("database.name", "hanzi", "PostgreSQL database name")
	fs.String("database.user", "hanzi", "PostgreSQL user")
	fs.String("database.sslmode", "disable", "PostgreSQL sslmode")
	fs.String("database.path", "data/hanzi.db", "SQLite database file")

	fs.Bool("http.enabled", false, "serve the JSON API")
	fs.String("http.addr", ":8080", "JSON API listen address")
	fs.StringSlice("http.allowed_origins", nil, "CORS allowed origins, none when empty")

	fs.String("study.pass_grade", "easy", "lowest grade counted as a correct answer")
	fs.Int("study.session_limit", 0, "maximum cards per session, 0 for all due cards")
	fs.Bool("study.requeue_lapses", true, "show cards graded again later in the same session")
	fs.Duration("study.session_ttl", 30*time.Minute, "drop study sessions idle for longer than this")

	fs.Bool("reminder.enabled", false, "notify authorized users about due cards")
	fs.Int("reminder.every_hours", 4, "hours between reminder runs")
	fs.Int("reminder.start_hour", 8, "first hour (UTC) reminders may be sent")
	fs.Int("reminder.end_hour", 22, "hour (UTC) after which reminders stop")

	fs.String("import.file", "", "dataset to import at startup (.json or .xlsx)")
	fs.String("import.git_url", "", "git repository holding the dataset")
	fs.String("import.git_path", "data/chinese.json", "dataset path inside the git repository")
	fs.String("import.repos_dir", "data/repos", "directory for cloned repositories")
	fs.Bool("import.only", false, "exit after importing")

	return fs
}

// Load builds the configuration from flag defaults, an optional YAML file,
// the environment (.env included) and command line arguments, in increasing priority.
func Load(args []string) (*Config, error) {
	fs := Flags()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path, _ := fs.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load(getEnv("HANZI_ENV_FILE", ".env"))

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return nil, fmt.Errorf("failed to read flags: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and reports the offending keys
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// PassGrade returns the configured pass grade
func (c *Config) PassGrade() domain.Grade {
	g, err := domain.ParseGrade(c.Study.PassGrade)
	if err != nil {
		return domain.GradeEasy
	}
	return g
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		sslMode,
	)
}

// envValue skips empty variables so they do not shadow defaults
func envValue(name, value string) (string, any) {
	if value == "" {
		return "", nil
	}
	return envKey(name), value
}

func envKey(name string) string {
	if key, ok := envKeys[name]; ok {
		return key
	}
	if rest, ok := strings.CutPrefix(name, "HANZI_"); ok && rest != "ENV_FILE" {
		return strings.ReplaceAll(strings.ToLower(rest), "__", ".")
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
