package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  Server  `mapstructure:"server"`
	Storage Storage `mapstructure:"storage"`
	Reports Reports `mapstructure:"reports"`
	Auth    Auth    `mapstructure:"auth"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Storage struct {
	DBPath string `mapstructure:"db_path"`
}

type Reports struct {
	CatalogPath string        `mapstructure:"catalog_path"`
	OutputDir   string        `mapstructure:"output_dir"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
}

type Auth struct {
	UsersPath string        `mapstructure:"users_path"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// Load reads the service configuration file and applies environment
// overrides with the FLEET_ prefix (FLEET_AUTH_JWT_SECRET and friends).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("FLEET")
	v.AutomaticEnv()

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8080")
	v.SetDefault("storage.db_path", "fleet-reports.db")
	v.SetDefault("reports.output_dir", "reports")
	v.SetDefault("reports.session_ttl", time.Hour)
	v.SetDefault("auth.token_ttl", 12*time.Hour)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Reports.CatalogPath == "" {
		return nil, fmt.Errorf("reports.catalog_path is required")
	}
	if cfg.Auth.UsersPath == "" {
		return nil, fmt.Errorf("auth.users_path is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required")
	}
	return &cfg, nil
}
