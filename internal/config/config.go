package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pullfrom/internal/foundation/errors"
)

// Defaults used when neither the config file nor the command line sets a value.
const (
	DefaultAPIURL        = "https://api.github.com"
	DefaultTimeout       = 30 * time.Second
	DefaultWindow        = 7 * 24 * time.Hour
	DefaultMasterBranch  = "master"
	DefaultReleaseMarker = "release/"
	DefaultHotfixMarker  = "hotfix/"
)

// Config holds everything a single pullfrom run needs.
type Config struct {
	APIURL      string         `yaml:"api_url"`
	Repository  string         `yaml:"repository"`
	Token       string         `yaml:"token"`
	Timeout     time.Duration  `yaml:"timeout"`
	Window      time.Duration  `yaml:"window"` // trailing window for master commits
	Branches    BranchesConfig `yaml:"branches"`
	Output      OutputFormat   `yaml:"output"`
	Logging     LoggingConfig  `yaml:"logging"`
	MetricsFile string         `yaml:"metrics_file,omitempty"`
}

// BranchesConfig names the branches taking part in the selection.
type BranchesConfig struct {
	Master        string `yaml:"master"`
	ReleaseMarker string `yaml:"release_marker"`
	HotfixMarker  string `yaml:"hotfix_marker"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Default returns a configuration with every field set to its default.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML configuration file. Environment variables referenced as
// ${VAR} are expanded before parsing. Missing fields get their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigError("failed to read config file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.ConfigError("failed to parse config file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Window == 0 {
		c.Window = DefaultWindow
	}
	if c.Branches.Master == "" {
		c.Branches.Master = DefaultMasterBranch
	}
	if c.Branches.ReleaseMarker == "" {
		c.Branches.ReleaseMarker = DefaultReleaseMarker
	}
	if c.Branches.HotfixMarker == "" {
		c.Branches.HotfixMarker = DefaultHotfixMarker
	}
	c.Output = NormalizeOutputFormat(string(c.Output))
	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
}

// Validate checks values that cannot be defaulted. Repository and token are
// checked later by the selector so that their errors keep a fixed order.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.ValidationError("invalid api url").
			WithCause(err).
			WithContext("api_url", c.APIURL).
			Build()
	}
	if c.Timeout <= 0 {
		return errors.ValidationError("timeout must be positive").
			WithContext("timeout", c.Timeout.String()).
			Build()
	}
	if c.Window <= 0 {
		return errors.ValidationError("window must be positive").
			WithContext("window", c.Window.String()).
			Build()
	}
	if strings.TrimSpace(c.Branches.ReleaseMarker) == "" || strings.TrimSpace(c.Branches.HotfixMarker) == "" {
		return errors.ValidationError("branch markers must not be blank").Build()
	}
	if _, err := ParseOutputFormat(string(c.Output)); err != nil {
		return errors.ValidationError("invalid output format").WithCause(err).Build()
	}
	return nil
}

// Overrides carries values given on the command line. Zero values leave the
// loaded configuration untouched.
type Overrides struct {
	APIURL      string
	Repository  string
	Token       string
	Timeout     time.Duration
	Window      time.Duration
	Output      string
	MetricsFile string
	Verbose     bool
}

// Apply merges o into c and re-validates.
func (c *Config) Apply(o Overrides) error {
	if o.APIURL != "" {
		c.APIURL = o.APIURL
	}
	if o.Repository != "" {
		c.Repository = o.Repository
	}
	if o.Token != "" {
		c.Token = o.Token
	}
	if o.Timeout != 0 {
		c.Timeout = o.Timeout
	}
	if o.Window != 0 {
		c.Window = o.Window
	}
	if o.Output != "" {
		format, err := ParseOutputFormat(o.Output)
		if err != nil {
			return errors.ValidationError("invalid output format").WithCause(err).Build()
		}
		c.Output = format
	}
	if o.MetricsFile != "" {
		c.MetricsFile = o.MetricsFile
	}
	if o.Verbose {
		c.Logging.Level = LogLevelDebug
	}
	return c.Validate()
}

// String renders the configuration for debug logging with the token redacted.
func (c *Config) String() string {
	token := ""
	if c.Token != "" {
		token = "***"
	}
	return fmt.Sprintf("api_url=%s repository=%s token=%s timeout=%s window=%s output=%s",
		c.APIURL, c.Repository, token, c.Timeout, c.Window, c.Output)
}
