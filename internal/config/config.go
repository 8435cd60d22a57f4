package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Database DatabaseConfig `mapstructure:"database"`
	Runner   RunnerConfig   `mapstructure:"runner"`
	Render   RenderConfig   `mapstructure:"render"`
	Publish  PublishConfig  `mapstructure:"publish"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

// StorageConfig selects the S3-compatible blob store holding the schedule,
// the title banks, and the tracking document.
type StorageConfig struct {
	Type      string `mapstructure:"type"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

// ScheduleConfig names the documents inside the bucket.
type ScheduleConfig struct {
	ConfigKey      string `mapstructure:"config_key"`
	TrackerKey     string `mapstructure:"tracker_key"`
	TitlesKey      string `mapstructure:"titles_key"`
	ShortTitlesKey string `mapstructure:"short_titles_key"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN builds the driver-specific connection string.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	}
	return c.Path
}

// RunnerConfig bounds one run-controller invocation.
type RunnerConfig struct {
	BudgetSeconds       int `mapstructure:"budget_seconds"`
	LeaseTTLSeconds     int `mapstructure:"lease_ttl_seconds"`
	DailyTriggerHour    int `mapstructure:"daily_trigger_hour"`
	PublishClampSeconds int `mapstructure:"publish_clamp_seconds"`
}

// Budget returns the wall-clock ceiling for one invocation.
func (c *RunnerConfig) Budget() time.Duration {
	return time.Duration(c.BudgetSeconds) * time.Second
}

// LeaseTTL returns the advisory-lease lifetime.
func (c *RunnerConfig) LeaseTTL() time.Duration {
	return time.Duration(c.LeaseTTLSeconds) * time.Second
}

// PublishClamp returns the substitute delay applied to far-future post times.
func (c *RunnerConfig) PublishClamp() time.Duration {
	return time.Duration(c.PublishClampSeconds) * time.Second
}

type RenderConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type PublishConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("storage.type", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.bucket", "marketing-automation-static")
	v.SetDefault("schedule.config_key", "content_posting_schedule.json")
	v.SetDefault("schedule.tracker_key", "posting_tracker.json")
	v.SetDefault("schedule.titles_key", "titles.json")
	v.SetDefault("schedule.short_titles_key", "titles-shorts.json")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/autoposter.db")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("runner.budget_seconds", 840)
	v.SetDefault("runner.lease_ttl_seconds", 900)
	v.SetDefault("runner.daily_trigger_hour", 12)
	v.SetDefault("runner.publish_clamp_seconds", 60)
	v.SetDefault("render.base_url", "http://localhost:9100")
	v.SetDefault("render.timeout_seconds", 300)
	v.SetDefault("publish.timeout_seconds", 600)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	v.BindEnv("storage.bucket", "STORAGE_BUCKET")
	v.BindEnv("storage.region", "STORAGE_REGION")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("render.base_url", "RENDER_BASE_URL")
	v.BindEnv("render.api_key", "RENDER_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
