package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// defaults are registered with viper so APP_* env overrides apply even for
// keys the YAML file leaves out.
var defaults = map[string]any{
	"app.name":                     "hoops-tagging-service",
	"app.version":                  "0.1.0",
	"app.env":                      "prod",
	"app.port":                     8080,
	"app.shutdown_timeout":         "10s",
	"logger.level":                 "",
	"logger.format":                "",
	"logger.env":                   "",
	"logger.service_name":          "",
	"storage.driver":               DriverMemory,
	"postgres.host":                "localhost",
	"postgres.port":                5432,
	"postgres.user":                "",
	"postgres.password":            "",
	"postgres.db":                  "",
	"postgres.sslmode":             "disable",
	"postgres.max_conns":           10,
	"postgres.min_conns":           1,
	"postgres.max_conn_lifetime":   3600,
	"postgres.max_conn_idle_time":  300,
	"postgres.health_check_period": 30,
	"postgres.auto_migrate":        true,
	"sqlite.path":                  "data/hoops.db",
	"redis.addr":                   "localhost:6379",
	"redis.password":               "",
	"redis.db":                     0,
	"redis.key_prefix":             "hoops:save:",
	"s3.bucket":                    "",
	"s3.region":                    "us-east-1",
	"s3.endpoint":                  "",
	"s3.prefix":                    "saves/",
	"s3.access_key_id":             "",
	"s3.secret_access_key":         "",
	"s3.use_path_style":            false,
	"session.autosave_delay":       "2s",
	"session.skip_guard_band":      0.5,
	"session.skip_debounce":        1.0,
}

// Load reads the YAML file at path (optional when empty) and overlays
// APP_* environment variables. A .env file in the working directory is
// loaded first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks struct tags and the fields the selected driver needs.
// The logger section is validated by logger.New after its defaults apply.
func (c *Config) Validate() error {
	v := validator.New()
	for name, section := range map[string]any{
		"app": c.App, "storage": c.Storage, "session": c.Session,
	} {
		if err := v.Struct(section); err != nil {
			return fmt.Errorf("config validation error in %s: %w", name, err)
		}
	}

	var missing []string
	require := func(key, val string) {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, key)
		}
	}
	switch c.Storage.Driver {
	case DriverPostgres:
		require("postgres.host", c.Postgres.Host)
		require("postgres.user", c.Postgres.User)
		require("postgres.password", c.Postgres.Password)
		require("postgres.db", c.Postgres.DBName)
	case DriverSQLite:
		require("sqlite.path", c.SQLite.Path)
	case DriverRedis:
		require("redis.addr", c.Redis.Addr)
	case DriverS3:
		require("s3.bucket", c.S3.Bucket)
		require("s3.region", c.S3.Region)
	}
	if len(missing) > 0 {
		return fmt.Errorf("config validation error: %s required for storage driver %q", strings.Join(missing, ", "), c.Storage.Driver)
	}
	return nil
}
