package swarmnode

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(s string) *string { return &s }

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	creds := cfg.Snapshot()

	assert.Equal(t, DefaultAPIBase, creds.APIBase)
	assert.False(t, creds.HasAPIKey())
}

func TestConfig_Configure(t *testing.T) {
	tests := []struct {
		name         string
		env          *string
		settings     Settings
		expectedKey  string
		expectedBase string
	}{
		{
			name:         "explicit key and base",
			settings:     Settings{APIKey: ptr("key-1"), APIBase: ptr("api.example.com")},
			expectedKey:  "key-1",
			expectedBase: "api.example.com",
		},
		{
			name:         "explicit key wins over environment",
			env:          ptr("env-key"),
			settings:     Settings{APIKey: ptr("key-1")},
			expectedKey:  "key-1",
			expectedBase: DefaultAPIBase,
		},
		{
			name:         "environment fallback when key not set",
			env:          ptr("env-key"),
			settings:     Settings{},
			expectedKey:  "env-key",
			expectedBase: DefaultAPIBase,
		},
		{
			name:         "no key anywhere",
			settings:     Settings{APIBase: ptr("")},
			expectedKey:  "",
			expectedBase: DefaultAPIBase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env != nil {
				t.Setenv(APIKeyEnv, *tt.env)
			} else {
				t.Setenv(APIKeyEnv, "")
			}

			cfg := NewConfig()
			cfg.Configure(tt.settings)
			creds := cfg.Snapshot()

			assert.Equal(t, tt.expectedKey, creds.APIKey)
			assert.Equal(t, tt.expectedBase, creds.APIBase)
		})
	}
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv(APIKeyEnv, "from-env")

	cfg := NewConfigFromEnv()
	assert.Equal(t, "from-env", cfg.Snapshot().APIKey)

	// Changing the environment afterwards has no effect
	t.Setenv(APIKeyEnv, "changed")
	assert.Equal(t, "from-env", cfg.Snapshot().APIKey)
}

func TestConfig_ConcurrentAccess(t *testing.T) {
	cfg := NewConfig()
	keys := []string{"aaaa", "bbbb"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				cfg.SetAPIKey(keys[(i+j)%2])
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := cfg.Snapshot().APIKey
				assert.Contains(t, []string{"", "aaaa", "bbbb"}, key)
			}
		}()
	}
	wg.Wait()
}
