package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, 60, c.Model.WindowSize)
	assert.Equal(t, []int{50, 50}, c.Model.LSTMUnits)
	assert.Equal(t, []int{25}, c.Model.DenseUnits)
	assert.Equal(t, 0.001, c.Model.LearningRate)
	assert.Equal(t, 32, c.Model.BatchSize)
	assert.Equal(t, 0.2, c.Model.ValidationFraction)
	assert.Equal(t, 10*time.Second, c.Timeouts.News)
	assert.Equal(t, 5*time.Second, c.Timeouts.Price)
	assert.Equal(t, 10, c.News.WindowDays)
	assert.Equal(t, 20, c.News.MaxItems)
	assert.Equal(t, []string{"AAPL", "MSFT", "AMZN", "GOOGL", "TSLA", "NVDA", "META"}, c.PriceFeed.TopCompanies)
	assert.Equal(t, []string{"localhost:9092"}, c.Kafka.Brokers)
}

func TestParse_OverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
environment: test
server:
  port: 9000
model:
  lstm_units: [8]
  default_epochs: 2
news:
  provider: rss
`))
	require.NoError(t, err)
	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, 9000, c.Server.Port)
	assert.Equal(t, []int{8}, c.Model.LSTMUnits)
	assert.Equal(t, 2, c.Model.DefaultEpochs)
	assert.Equal(t, "rss", c.News.Provider)
	// untouched sections keep their defaults
	assert.Equal(t, 60, c.Model.WindowSize)
	assert.Equal(t, "file", c.Artifacts.Backend)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":          "server: [",
		"news timeout":      "timeouts:\n  news: 30s\n",
		"price timeout":     "timeouts:\n  price: 6s\n",
		"unknown provider":  "price_feed:\n  provider: bloomberg\n",
		"s3 without bucket": "artifacts:\n  backend: s3\n",
		"split too large":   "model:\n  validation_fraction: 1\n",
		"scheduler symbols": "scheduler:\n  enabled: true\n",
		"no lstm layers":    "model:\n  lstm_units: []\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: test\n"), 0o644))

	t.Setenv("NEWS_API_KEY", "secret")
	t.Setenv("PORT", "8081")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", c.News.APIKey)
	assert.Equal(t, 8081, c.Server.Port)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
