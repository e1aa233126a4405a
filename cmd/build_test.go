package cmd

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/job-advisor/internal/dialogue"
	"github.com/spigell/job-advisor/internal/embedding"
	"github.com/spigell/job-advisor/internal/intent"
)

func decodeConfig(t *testing.T, yaml string) *Config {
	t.Helper()

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))

	var config *Config
	require.NoError(t, v.Unmarshal(&config))
	return config
}

func TestConfigDefaults(t *testing.T) {
	config := decodeConfig(t, "{}")

	assert.Equal(t, providerLocal, config.Embedding.Provider)
	assert.Equal(t, 512, config.Embedding.Dimensions)
	assert.True(t, config.Embedding.Cache.Enabled)
	assert.Equal(t, 24*time.Hour, config.Embedding.Cache.TTL)
	assert.Equal(t, "text-embedding-004", config.Embedding.Gemini.Model)
	assert.Equal(t, intent.DefaultThreshold, config.Matching.IntentThreshold)
	assert.Equal(t, 0.7, config.Matching.AxisThreshold)
	assert.Empty(t, config.Intents)
}

func TestConfigOverrides(t *testing.T) {
	config := decodeConfig(t, `
embedding:
  cache:
    ttl: 1h
matching:
  intent-threshold: 0.5
  show: 3
synonyms:
  phd: doctorate
intents:
  - intent: exit
    phrases: [ciao]
  - intent: see_jobs
    phrases: [jobs please]
`)

	assert.Equal(t, time.Hour, config.Embedding.Cache.TTL)
	assert.Equal(t, 0.5, config.Matching.IntentThreshold)
	assert.Equal(t, 3, config.Matching.Show)
	assert.Equal(t, "doctorate", config.Synonyms["phd"])
	require.Len(t, config.Intents, 2)
	assert.Equal(t, intent.Exit, config.Intents[0].Intent)
	assert.Equal(t, []string{"ciao"}, config.Intents[0].Phrases)
}

func TestBuildLocalStack(t *testing.T) {
	ctx := context.Background()
	config := decodeConfig(t, "{}")

	c, err := build(ctx, config, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	_, cached := c.provider.(*embedding.Cache)
	assert.True(t, cached)
	assert.Equal(t, 10, c.catalog.Len())

	engine, err := c.newEngine(ctx)
	require.NoError(t, err)

	s := dialogue.NewSession("t")
	for _, text := range []string{"qualify", "bsc", "python, sql", "it", "skip"} {
		_, err := engine.Handle(ctx, s, text)
		require.NoError(t, err)
	}
	assert.Equal(t, dialogue.StageAfterMatches, s.Stage)
	require.NotEmpty(t, s.LastMatches)
	assert.Equal(t, "Software Engineer", s.LastMatches[0].Job.Title)

	reply, err := engine.Handle(ctx, s, "bye")
	require.NoError(t, err)
	assert.Equal(t, dialogue.Farewell, reply)
}

func TestBuildRejectsUnknownProvider(t *testing.T) {
	config := decodeConfig(t, "embedding: {provider: word2vec}")

	_, err := build(context.Background(), config, zap.NewNop())
	require.Error(t, err)
}

func TestBuildGeminiNeedsKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	config := decodeConfig(t, "embedding: {provider: gemini}")

	_, err := build(context.Background(), config, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestBuildSQLCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.db")

	config := decodeConfig(t, "catalog: {driver: sqlite, dsn: '"+path+"'}")
	_, err := build(context.Background(), config, zap.NewNop())
	require.Error(t, err, "an empty database has no jobs table")
}
