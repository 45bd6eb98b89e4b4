package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"prod"`
	HTTPServer `yaml:"http_server"`
	Backend    `yaml:"backend"`

	AllowedOrigins   []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-default:"http://localhost:4200"`
	ReturnURL        string        `yaml:"return_url" env:"RETURN_URL" env-default:"http://localhost:4200/reports"`
	ReportReadyDelay time.Duration `yaml:"report_ready_delay" env:"REPORT_READY_DELAY" env-default:"8s"`
	DownloadDir      string        `yaml:"download_dir" env:"DOWNLOAD_DIR" env-default:"."`
	// FrontendDir is the built browser bundle; empty serves the API only.
	FrontendDir string `yaml:"frontend_dir" env:"FRONTEND_DIR"`

	// Username is the session user for the CLI; the HTTP API takes it per request.
	Username string `yaml:"username" env:"REPORTS_USERNAME"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Backend struct {
	BaseURL string        `yaml:"base_url" env:"API_BASE_URL" env-required:"true"`
	Timeout time.Duration `yaml:"timeout" env:"API_TIMEOUT" env-default:"30s"`
}

// Load reads the YAML file at path (environment overrides applied) after
// loading envFile into the process environment when one is given.
func Load(path, envFile string) (*Config, error) {
	const op = "config.Load"

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("%s: failed to load env file %s: %w", op, envFile, err)
		}
	}

	var cfg Config

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// no file: environment only
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return defaultConfigPath
}

func MustConfig() *Config {
	cfg, err := Load(Path(), os.Getenv("ENV_FILE"))
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return cfg
}
