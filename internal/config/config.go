package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/coverity-mcp/internal/errors"
)

// Environment keys.
const (
	EnvHost                 = "COVERITY_HOST"
	EnvPort                 = "COVERITY_PORT"
	EnvSSL                  = "COVERITY_SSL"
	EnvUser                 = "COVERITY_USER"
	EnvAuthKey              = "COVERITY_AUTH_KEY"
	EnvTriageStore          = "COVERITY_TRIAGE_STORE"
	EnvDebug                = "COVERITY_DEBUG"
	EnvDisabledCapabilities = "COVERITY_DISABLED_CAPABILITIES"
	EnvTransport            = "TRANSPORT"
	EnvHTTPPort             = "PORT"
)

// Transport names.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// NotConfigured is shown in place of unset connection values.
const NotConfigured = "(not configured)"

// Config holds application configuration.
type Config struct {
	// Host is the Coverity Connect hostname.
	Host string `yaml:"host"`

	// Port is the Coverity Connect port. Defaults to 8443.
	Port int `yaml:"port,omitempty"`

	// SSL selects https. nil means unset, which resolves to true.
	SSL *bool `yaml:"ssl,omitempty"`

	User    string `yaml:"user"`
	AuthKey string `yaml:"auth_key"`

	// TriageStore is the triage store queried for triage history.
	TriageStore string `yaml:"triage_store,omitempty"`

	// Transport is "stdio" or "http".
	Transport string `yaml:"transport,omitempty"`

	// HTTPPort is the listen port for the http transport.
	HTTPPort int `yaml:"http_port,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`

	// DisabledCapabilities lists capability names excluded from registration.
	// Unknown names are logged as warnings.
	DisabledCapabilities []string `yaml:"disabled_capabilities,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:        8443,
		TriageStore: "Default Triage Store",
		Transport:   TransportStdio,
		HTTPPort:    3000,
		LogLevel:    "info",
	}
}

// DefaultPath returns ~/.coverity-mcp/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".coverity-mcp", "config.yaml"), nil
}

// Load reads the YAML file at path (missing file is fine), then overlays the
// process environment. Validation is left to the caller.
func Load(path string) (*Config, error) {
	file, err := loadFileRaw(path)
	if err != nil {
		return nil, err
	}
	env, err := FromEnv(os.LookupEnv)
	if err != nil {
		return nil, err
	}
	return Merge(Merge(DefaultConfig(), file), env), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if path is empty or the file doesn't exist.
func loadFileRaw(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv builds a config from environment-style key/value lookups.
// Unset keys leave zero values so Merge keeps lower layers.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := &Config{
		Host:        get(EnvHost),
		User:        get(EnvUser),
		AuthKey:     get(EnvAuthKey),
		TriageStore: get(EnvTriageStore),
		Transport:   strings.ToLower(get(EnvTransport)),
	}

	if v := get(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid port %q", EnvPort, v)
		}
		cfg.Port = port
	}
	if v := get(EnvHTTPPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid port %q", EnvHTTPPort, v)
		}
		cfg.HTTPPort = port
	}
	if v := get(EnvSSL); v != "" {
		ssl := !strings.EqualFold(v, "false")
		cfg.SSL = &ssl
	}
	if get(EnvDebug) == "1" {
		cfg.LogLevel = "debug"
	}
	if v := get(EnvDisabledCapabilities); v != "" {
		cfg.DisabledCapabilities = strings.Split(v, ",")
	}
	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.Host = pickString(overlay.Host, base.Host)
	result.User = pickString(overlay.User, base.User)
	result.AuthKey = pickString(overlay.AuthKey, base.AuthKey)
	result.TriageStore = pickString(overlay.TriageStore, base.TriageStore)
	result.Transport = pickString(overlay.Transport, base.Transport)
	result.LogLevel = pickString(overlay.LogLevel, base.LogLevel)

	result.Port = overlay.Port
	if result.Port == 0 {
		result.Port = base.Port
	}
	result.HTTPPort = overlay.HTTPPort
	if result.HTTPPort == 0 {
		result.HTTPPort = base.HTTPPort
	}

	// Pointer booleans: overlay wins if set
	result.SSL = overlay.SSL
	if result.SSL == nil {
		result.SSL = base.SSL
	}

	result.DisabledCapabilities = mergeStringSlice(base.DisabledCapabilities, overlay.DisabledCapabilities)

	return result
}

func pickString(overlay, base string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// UseTLS reports whether https is used. Unset means true.
func (c *Config) UseTLS() bool {
	return c.SSL == nil || *c.SSL
}

// Configured reports whether host, user and auth key are all present.
func (c *Config) Configured() bool {
	return len(c.missing()) == 0
}

func (c *Config) missing() []string {
	var keys []string
	if c.Host == "" {
		keys = append(keys, EnvHost)
	}
	if c.User == "" {
		keys = append(keys, EnvUser)
	}
	if c.AuthKey == "" {
		keys = append(keys, EnvAuthKey)
	}
	return keys
}

// Validate returns a CONFIG_MISSING error naming every missing required key,
// or an INVALID_REQUEST error for a bad transport or port.
func (c *Config) Validate() error {
	if keys := c.missing(); len(keys) > 0 {
		return errors.NewConfigMissing(keys)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.NewInvalidRequest(fmt.Sprintf("%s out of range: %d", EnvPort, c.Port))
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return errors.NewInvalidRequest(fmt.Sprintf("%s out of range: %d", EnvHTTPPort, c.HTTPPort))
	}
	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return errors.NewInvalidRequest(fmt.Sprintf("%s must be %q or %q, got %q", EnvTransport, TransportStdio, TransportHTTP, c.Transport))
	}
	return nil
}

// Status is the read-only view of the connection configuration.
// The auth key is never included.
type Status struct {
	Host       string `json:"host"`
	Port       int    `json:"port"`
	SSL        bool   `json:"ssl"`
	User       string `json:"user"`
	Configured bool   `json:"configured"`
}

// Status describes the current connection configuration.
func (c *Config) Status() Status {
	st := Status{
		Host:       c.Host,
		Port:       c.Port,
		SSL:        c.UseTLS(),
		User:       c.User,
		Configured: c.Configured(),
	}
	if st.Host == "" {
		st.Host = NotConfigured
	}
	if st.User == "" {
		st.User = NotConfigured
	}
	return st
}
