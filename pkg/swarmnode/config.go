package swarmnode

import (
	"os"
	"sync"
)

const (
	// DefaultAPIBase is the origin used until another one is configured
	DefaultAPIBase = "api.swarmnode.ai"
	// APIKeyEnv names the environment variable read when no key is set explicitly
	APIKeyEnv = "SWARMNODE_API_KEY"
)

// Settings holds the values applied by Configure. Nil fields are left unchanged.
type Settings struct {
	APIKey  *string
	APIBase *string
}

// Credentials is a consistent snapshot of a Config
type Credentials struct {
	APIKey  string
	APIBase string
}

// HasAPIKey reports whether an API key is present in the snapshot
func (c Credentials) HasAPIKey() bool {
	return c.APIKey != ""
}

// Config holds the API key and API base shared by every request of a client.
// It is safe for concurrent use; readers see either the old or the new value
// of a concurrent write, never a mix.
type Config struct {
	mu      sync.RWMutex
	apiKey  string
	apiBase string
}

// NewConfig returns a Config with the default API base and no API key
func NewConfig() *Config {
	return &Config{apiBase: DefaultAPIBase}
}

// NewConfigFromEnv returns a Config whose API key is read from SWARMNODE_API_KEY
func NewConfigFromEnv() *Config {
	cfg := NewConfig()
	cfg.Configure(Settings{})
	return cfg
}

// Configure applies the supplied settings. If no API key is set afterwards,
// the key is read from SWARMNODE_API_KEY.
func (c *Config) Configure(s Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s.APIKey != nil {
		c.apiKey = *s.APIKey
	}
	if s.APIBase != nil && *s.APIBase != "" {
		c.apiBase = *s.APIBase
	}
	if c.apiKey == "" {
		if key, ok := os.LookupEnv(APIKeyEnv); ok {
			c.apiKey = key
		}
	}
}

// SetAPIKey replaces the API key
func (c *Config) SetAPIKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = key
}

// SetAPIBase replaces the API base
func (c *Config) SetAPIBase(base string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiBase = base
}

// Snapshot returns the current credentials
func (c *Config) Snapshot() Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Credentials{APIKey: c.apiKey, APIBase: c.apiBase}
}
