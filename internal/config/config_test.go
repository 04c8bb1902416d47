package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	require.NoError(t, LoadConfig())

	cfg := GetAppConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "test", cfg.Mongo.Database)
	assert.Equal(t, "uploads", cfg.Mongo.Bucket)
	assert.Equal(t, "gridfs", cfg.Storage.Provider)

	// 检索默认参数偏向召回
	assert.Equal(t, 10, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.1, cfg.Retrieval.MinScore, 1e-9)

	// 生成默认参数：确定性采样，最多一次重试
	assert.Equal(t, "gemini-2.0-flash", cfg.Generation.Model)
	assert.Zero(t, cfg.Generation.Temperature)
	assert.Equal(t, 1, cfg.Generation.MaxRetries)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://db.internal:27017")
	t.Setenv("MONGO_DB", "coursehub")
	t.Setenv("GOOGLE_API_KEY", "test-key")

	require.NoError(t, LoadConfig())

	cfg := GetAppConfig()
	assert.Equal(t, "mongodb://db.internal:27017", cfg.Mongo.URI)
	assert.Equal(t, "coursehub", cfg.Mongo.Database)
	assert.Equal(t, "test-key", cfg.Embedding.APIKey)
	assert.Equal(t, "test-key", cfg.Generation.APIKey)
}

func TestLoadConfig_OpenAIKeyFollowsProviderOverride(t *testing.T) {
	// 提供方由环境变量切到openai时，OPENAI_API_KEY必须落到对应凭据
	t.Setenv("EMBEDDING_PROVIDER", "openai")
	t.Setenv("GENERATION_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	require.NoError(t, LoadConfig())

	cfg := GetAppConfig()
	assert.Equal(t, "openai", cfg.Embedding.Provider)
	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
	assert.Equal(t, "openai", cfg.Generation.Provider)
	assert.Equal(t, "sk-test", cfg.Generation.APIKey)
}

func TestLoadConfig_MinIOEndpointSwitchesProvider(t *testing.T) {
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")

	require.NoError(t, LoadConfig())

	cfg := GetAppConfig()
	assert.Equal(t, "minio", cfg.Storage.Provider)
	assert.Equal(t, "localhost:9000", cfg.Storage.MinIO.Endpoint)
}
