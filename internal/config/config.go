package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	// DefaultHost is used when neither the config file nor GITLAB_HOST names an instance
	DefaultHost = "https://gitlab.com"

	// DefaultClientID is the public OAuth application id glab registers on gitlab.com
	DefaultClientID = "41d48f9422ebd655dd9cf2947d6979681dfaddc6d0c56f7628f6ada59559af1e"

	appDirName     = "gitlab-cli"
	configFileName = "config.toml"
)

// DefaultScopes are requested during device authorization
var DefaultScopes = []string{"openid", "profile", "read_user", "write_repository", "api"}

// Environment variables that override values from the config file
const (
	EnvHost     = "GITLAB_HOST"
	EnvToken    = "GITLAB_TOKEN"
	EnvProject  = "GITLAB_PROJECT"
	EnvClientID = "GITLAB_CLIENT_ID"
)

type Config struct {
	Host     string   `toml:"host"`
	Project  string   `toml:"project,omitempty"`
	ClientID string   `toml:"client_id"`
	Scopes   []string `toml:"scopes"`

	// Token is a personal access token. When set, OAuth is skipped entirely.
	Token string `toml:"token,omitempty"`

	Auth      AuthConfig      `toml:"auth"`
	AutoMerge AutoMergeConfig `toml:"automerge"`
}

type AuthConfig struct {
	MaxRefreshAttempts int `toml:"max_refresh_attempts"`
}

type AutoMergeConfig struct {
	PollInterval    Duration `toml:"poll_interval"`
	Timeout         Duration `toml:"timeout"`
	MaxPollRetries  int      `toml:"max_poll_retries"`
	MaxMergeRetries int      `toml:"max_merge_retries"`
	RetryDelay      Duration `toml:"retry_delay"`
	MaxRetryDelay   Duration `toml:"max_retry_delay"`
}

// Duration is a time.Duration that reads and writes as "10s" in TOML
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Host:     DefaultHost,
		ClientID: DefaultClientID,
		Scopes:   append([]string(nil), DefaultScopes...),
		Auth: AuthConfig{
			MaxRefreshAttempts: 1,
		},
		AutoMerge: AutoMergeConfig{
			PollInterval:    Duration{10 * time.Second},
			Timeout:         Duration{time.Hour},
			MaxPollRetries:  5,
			MaxMergeRetries: 5,
			RetryDelay:      Duration{2 * time.Second},
			MaxRetryDelay:   Duration{30 * time.Second},
		},
	}
}

// Dir returns the directory holding the config file and stored credentials
func Dir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(configDir, appDirName), nil
}

// CacheDir returns the directory for disposable state such as run history
func CacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user cache directory: %w", err)
	}
	return filepath.Join(cacheDir, appDirName), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file from the user config directory and applies
// environment overrides. A missing file yields the defaults.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

func LoadFrom(path string) (*Config, error) {
	cfg, err := ReadFrom(path)
	if err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.Host = NormalizeHost(cfg.Host)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadFrom reads the file at path over the defaults without environment
// overrides, so the result can be edited and saved back
func ReadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	return cfg, nil
}

// Update names the settings to change; nil fields are left alone and an
// empty string clears the setting
type Update struct {
	Host     *string
	Token    *string
	Project  *string
	ClientID *string
}

func (u Update) Empty() bool {
	return u.Host == nil && u.Token == nil && u.Project == nil && u.ClientID == nil
}

func (c *Config) Apply(u Update) {
	if u.Host != nil {
		c.Host = NormalizeHost(*u.Host)
	}
	if u.Token != nil {
		c.Token = *u.Token
	}
	if u.Project != nil {
		c.Project = *u.Project
	}
	if u.ClientID != nil {
		c.ClientID = *u.ClientID
	}
}

// Shadowed returns the environment variables that are set and would
// override the settings u changes
func (u Update) Shadowed() []string {
	var names []string
	check := func(v *string, env string) {
		if v != nil && os.Getenv(env) != "" {
			names = append(names, env)
		}
	}
	check(u.Host, EnvHost)
	check(u.Token, EnvToken)
	check(u.Project, EnvProject)
	check(u.ClientID, EnvClientID)
	return names
}

// MaskToken shows only enough of a token to recognize it
func MaskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:8] + "..."
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		c.Token = v
	}
	if v := os.Getenv(EnvProject); v != "" {
		c.Project = v
	}
	if v := os.Getenv(EnvClientID); v != "" {
		c.ClientID = v
	}
}

func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("config: host must not be empty")
	}
	if c.ClientID == "" && c.Token == "" {
		return fmt.Errorf("config: client_id must be set when no token is configured")
	}
	if c.AutoMerge.PollInterval.Duration <= 0 {
		return fmt.Errorf("config: automerge.poll_interval must be positive")
	}
	if c.AutoMerge.Timeout.Duration <= 0 {
		return fmt.Errorf("config: automerge.timeout must be positive")
	}
	if c.AutoMerge.MaxPollRetries < 0 || c.AutoMerge.MaxMergeRetries < 0 {
		return fmt.Errorf("config: automerge retry counts must not be negative")
	}
	if c.Auth.MaxRefreshAttempts < 0 {
		return fmt.Errorf("config: auth.max_refresh_attempts must not be negative")
	}
	return nil
}

// SaveTo writes the config file with owner-only permissions since it may
// hold a token
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// UsesStaticToken reports whether requests authenticate with a personal access token
func (c *Config) UsesStaticToken() bool {
	return c.Token != ""
}

// APIURL returns the REST v4 base URL for the configured host
func (c *Config) APIURL() string {
	return c.Host + "/api/v4"
}

// NormalizeHost trims trailing slashes and defaults the scheme to https
func NormalizeHost(host string) string {
	host = strings.TrimSpace(host)
	host = strings.TrimRight(host, "/")
	if host == "" {
		return ""
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	return host
}
