package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "无法写入临时配置文件")
	return path
}

// TestLoadConfigFromYAML 验证 YAML 中的字段能覆盖默认值
func TestLoadConfigFromYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":9090"
parser:
  name_search_lines: 10
  extra_skills:
    - " Golang "
    - Rust
ranking:
  workers: 8
  cache_ttl: "1m"
embedding:
  provider: Aliyun
`)
	config, err := LoadConfigFromFileOnly(path)
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, ":9090", config.Server.Address)
	assert.Equal(t, 10, config.Parser.NameSearchLines)
	assert.Equal(t, 500, config.Parser.NERWindowChars, "未配置的字段保留默认值")
	assert.Equal(t, []string{"golang", "rust"}, config.Parser.ExtraSkills)
	assert.Equal(t, 8, config.Ranking.Workers)
	assert.Equal(t, 5, config.Ranking.CommonKeywordLimit)
	assert.Equal(t, "aliyun", config.Embedding.Provider)
	assert.Equal(t, "text-embedding-v3", config.Embedding.Model)
	assert.Equal(t, 1024, config.Embedding.Dimensions)
	assert.Equal(t, 384, config.Embedding.PlaceholderDimensions)
	assert.Equal(t, time.Minute, GetDuration(config.Ranking.CacheTTL, time.Hour))
}

// TestLoadConfigWithBrokenYAML 语法错误的 YAML 应返回解析错误
func TestLoadConfigWithBrokenYAML(t *testing.T) {
	path := writeConfig(t, "parser: [golang, rust\nranking: {workers: 2\n")
	_, err := LoadConfigFromFileOnly(path)
	require.Error(t, err, "语法错误的 YAML 应该解析失败")
	assert.Contains(t, err.Error(), "解析配置文件失败")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "配置文件不存在")

	_, err = LoadConfigFromFileOnly("")
	require.Error(t, err)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("EMBEDDING_API_KEY", "")
	t.Setenv("ALIYUN_API_KEY", "fallback-key")
	t.Setenv("REDIS_ADDRESS", "redis:6379")
	t.Setenv("DATABASE_DSN", "postgres://u:p@db/resume")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_ADDRESS", "")
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("EMBEDDING_BASE_URL", "")

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "fallback-key", config.Embedding.APIKey)
	assert.Equal(t, "redis:6379", config.Redis.Address)
	assert.Equal(t, "postgres://u:p@db/resume", config.Database.DSN)
	assert.Equal(t, "debug", config.Logger.Level)
	assert.Equal(t, ":8080", config.Server.Address)

	t.Setenv("EMBEDDING_API_KEY", "primary-key")
	config, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "primary-key", config.Embedding.APIKey)
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, "hashing", config.Embedding.Provider)
	assert.Equal(t, 384, config.Embedding.Dimensions)
	assert.Equal(t, 7, config.Parser.NameSearchLines)
	assert.True(t, config.Parser.EnableNER)
	assert.True(t, config.App.SeedDemoJobs)
	assert.Empty(t, config.Redis.Address, "默认不启用 Redis")
	assert.Empty(t, config.Database.DSN, "默认使用内存存储")
}

func TestCreateSampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, CreateSampleConfig(path))

	config, err := LoadConfigFromFileOnly(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", config.Redis.Address)
	assert.Equal(t, "resumes", config.MinIO.BucketName)

	err = CreateSampleConfig(path)
	require.Error(t, err, "已存在的文件不应被覆盖")
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 3*time.Second, GetDuration("3s", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("bogus", time.Minute))
}
