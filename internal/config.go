package internal

import (
	"fmt"
	"log/slog"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// MCP transports.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// Environment variables that override the config file.
const (
	EnvVaultPath = "VAULT_PATH"
	EnvAPIKey    = "MCP_API_KEY"
	EnvUser      = "MCP_USER"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Vault  VaultConfig       `yaml:"vault"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
	MCP    MCPConfig         `yaml:"mcp"`
	Search SearchConfig      `yaml:"search"`
}

// ApplyEnv overrides file settings with VAULT_PATH, MCP_API_KEY and MCP_USER.
// Setting MCP_API_KEY switches authentication to token mode.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvVaultPath); v != "" {
		c.Vault.Path = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Auth.Token = v
		c.Auth.Mode = AuthModeToken
	}
	if v := os.Getenv(EnvUser); v != "" {
		c.Auth.User = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.MCP.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig describes the Markdown vault directory.
type VaultConfig struct {
	Path      string   `yaml:"path"`
	Extension string   `yaml:"extension"`
	Ignore    []string `yaml:"ignore"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
//
// User is attached to authenticated requests and logged with every tool call.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
	User  string `yaml:"user"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// MCPConfig holds MCP server configuration.
type MCPConfig struct {
	Name      string `yaml:"name"`
	Transport string `yaml:"transport"`
	Endpoint  string `yaml:"endpoint"`
}

// Validate validates the MCP configuration.
func (c *MCPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Transport, validation.Required, validation.In(TransportHTTP, TransportStdio)),
		validation.Field(&c.Endpoint, validation.Required),
	)
}

// SearchConfig tunes fuzzy search. MinScore is optional; without it every
// fuzzy match is returned.
type SearchConfig struct {
	Limit    int  `yaml:"limit"`
	MinScore *int `yaml:"min_score"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Limit, validation.Min(1)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 9001,
			},
		},
		Vault: VaultConfig{
			Path:      "./vault",
			Extension: ".md",
			Ignore:    []string{".obsidian/**", ".trash/**"},
		},
		SQLite: SQLiteConfig{
			Path: "./vaultmcp.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		MCP: MCPConfig{
			Name:      "obsidian-http-mcp",
			Transport: TransportHTTP,
			Endpoint:  "/mcp",
		},
		Search: SearchConfig{
			Limit: 20,
		},
	}
}
