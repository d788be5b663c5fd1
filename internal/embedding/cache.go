package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"resume-match-go/internal/logger"
)

// VectorCache 向量缓存，key 由 CacheKey 生成
type VectorCache interface {
	GetVector(ctx context.Context, key string) ([]float64, bool, error)
	SetVector(ctx context.Context, key string, vec []float64) error
}

// TextHash 文本的 sha256 十六进制摘要
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// CacheKey 格式 {model}:{sha256}
func CacheKey(model, text string) string {
	return model + ":" + TextHash(text)
}

// MemoryCache 进程内缓存
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string][]float64
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string][]float64)}
}

func (c *MemoryCache) GetVector(_ context.Context, key string) ([]float64, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]float64(nil), v...), true, nil
}

func (c *MemoryCache) SetVector(_ context.Context, key string, vec []float64) error {
	c.mu.Lock()
	c.data[key] = append([]float64(nil), vec...)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// CachedService 在 Vectorizer 前加一层缓存；零向量不写入缓存，缓存读写失败只记日志
type CachedService struct {
	inner  Vectorizer
	cache  VectorCache
	logger zerolog.Logger
}

func NewCachedService(inner Vectorizer, cache VectorCache) *CachedService {
	return &CachedService{inner: inner, cache: cache, logger: logger.Component("embedding_cache")}
}

func (c *CachedService) Dimension() int { return c.inner.Dimension() }
func (c *CachedService) Model() string  { return c.inner.Model() }

func (c *CachedService) Embed(ctx context.Context, text string) []float64 {
	if strings.TrimSpace(text) == "" {
		return c.inner.Embed(ctx, text)
	}
	key := CacheKey(c.inner.Model(), text)
	if v, ok, err := c.cache.GetVector(ctx, key); err != nil {
		c.logger.Warn().Err(err).Msg("读取向量缓存失败")
	} else if ok && len(v) == c.inner.Dimension() {
		return v
	}

	v := c.inner.Embed(ctx, text)
	if IsZero(v) {
		return v
	}
	if err := c.cache.SetVector(ctx, key, v); err != nil {
		c.logger.Warn().Err(err).Msg("写入向量缓存失败")
	}
	return v
}
