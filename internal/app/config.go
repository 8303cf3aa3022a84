package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// defaultAPIBaseURL applies when neither the configuration nor the hosted
// API_URL variable names a backend.
const defaultAPIBaseURL = "http://localhost:8080"

// Config holds the complete console configuration, loadable from environment
// variables (MINIMART_ prefix), flags, or YAML config files.
type Config struct {
	APIBaseURL  string        `usage:"Minimart backend base URL (default: http://localhost:8080)" flag:"api-base-url"`
	TokenPath   string        `usage:"Path of the stored credential file (default: user config dir)" flag:"token-path"`
	DownloadDir string        `default:"." usage:"Directory invoice PDFs are saved to" flag:"download-dir"`
	HTTPTimeout time.Duration `default:"30s" usage:"Per-request HTTP timeout" flag:"http-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform fallbacks and the default token location.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "MINIMART",
		Files:     []string{"config.yaml", "/etc/minimart/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills the settings with no static default. The backend URL
// falls back to the generic API_URL variable used by hosted setups, then to
// the local default; an explicitly configured value always wins. The
// credential file lands under the user config dir when no path is set.
func (c *Config) applyDefaults() error {
	if c.APIBaseURL == "" {
		c.APIBaseURL = os.Getenv("API_URL")
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = defaultAPIBaseURL
	}
	if c.TokenPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return errors.Wrap(err, "resolve user config dir")
		}
		c.TokenPath = filepath.Join(dir, "minimart", "token")
	}
	return nil
}
