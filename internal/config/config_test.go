package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const minimalConfig = `
graph:
  access_token: run-token
collection:
  item_type: app
  items:
    - myApp1
    - id: myApp2
      token: app2-token
  past_days: 30
  metrics:
    - api_calls
    - api_errors
`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Graph.TimeoutSeconds)
	assert.Equal(t, 3, cfg.Graph.MaxRetries)
	assert.Equal(t, "day", cfg.Collection.Period)
	assert.Equal(t, 90, cfg.Collection.MaxSpanDays)
	assert.Equal(t, 24, cfg.Redis.TTLHours)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadItemForms(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	require.Len(t, cfg.Collection.Items, 2)
	assert.Equal(t, ItemConfig{ID: "myApp1"}, cfg.Collection.Items[0])
	assert.Equal(t, ItemConfig{ID: "myApp2", Token: "app2-token"}, cfg.Collection.Items[1])
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			"bad item type",
			"collection:\n  item_type: group\n  items: [x]\n  metrics: [m]\n",
			"item_type",
		},
		{
			"no items",
			"collection:\n  item_type: page\n  metrics: [m]\n",
			"at least one item",
		},
		{
			"no metrics",
			"collection:\n  item_type: page\n  items: [x]\n",
			"at least one metric",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("FB_ACCESS_TOKEN", "env-token")
	t.Setenv("INSIGHT_REDIS_URL", "redis://localhost:6379/1")

	cfg, err := LoadFromEnv(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Graph.AccessToken)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Redis.URL)
	assert.True(t, cfg.Redis.Enabled)
}
