package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	einoemb "github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/config"
)

type stubBackend struct {
	vec   []float64
	err   error
	calls int
}

func (s *stubBackend) EmbedStrings(_ context.Context, texts []string, _ ...einoemb.Option) ([][]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = append([]float64(nil), s.vec...)
	}
	return out, nil
}

func TestServiceEmbed(t *testing.T) {
	ctx := context.Background()

	t.Run("正常返回后端向量", func(t *testing.T) {
		b := &stubBackend{vec: []float64{0.1, 0.2, 0.3}}
		s := NewService(config.EmbeddingConfig{}, WithBackend(b, 3, "stub"))
		assert.Equal(t, []float64{0.1, 0.2, 0.3}, s.Embed(ctx, "hello"))
		assert.Equal(t, 3, s.Dimension())
		assert.Equal(t, "stub", s.Model())
		assert.True(t, s.Ready())
	})

	t.Run("空文本不调用后端", func(t *testing.T) {
		b := &stubBackend{vec: []float64{1, 1, 1}}
		s := NewService(config.EmbeddingConfig{}, WithBackend(b, 3, "stub"))
		assert.Equal(t, []float64{0, 0, 0}, s.Embed(ctx, "   \n"))
		assert.Equal(t, 0, b.calls)
	})

	t.Run("后端失败返回零向量", func(t *testing.T) {
		s := NewService(config.EmbeddingConfig{}, WithBackend(&stubBackend{err: errors.New("down")}, 4, "stub"))
		assert.Equal(t, Zero(4), s.Embed(ctx, "text"))
	})

	t.Run("维度不符返回零向量", func(t *testing.T) {
		s := NewService(config.EmbeddingConfig{}, WithBackend(&stubBackend{vec: []float64{1, 2}}, 4, "stub"))
		assert.Equal(t, Zero(4), s.Embed(ctx, "text"))
	})

	t.Run("加载失败使用占位维度", func(t *testing.T) {
		s := NewService(config.EmbeddingConfig{Provider: "aliyun", Dimensions: 1024, PlaceholderDimensions: 8})
		assert.False(t, s.Ready())
		assert.Error(t, s.LoadError())
		assert.Equal(t, 8, s.Dimension())
		assert.Equal(t, Zero(8), s.Embed(ctx, "text"))
	})

	t.Run("未知 provider", func(t *testing.T) {
		s := NewService(config.EmbeddingConfig{Provider: "magic", Dimensions: 16})
		assert.False(t, s.Ready())
		assert.Equal(t, 384, s.Dimension())
	})
}

func TestHashingEmbedder(t *testing.T) {
	ctx := context.Background()
	s := NewService(config.EmbeddingConfig{Provider: "hashing", Model: "hashing-v1", Dimensions: 64})
	require.True(t, s.Ready())

	a := s.Embed(ctx, "Senior Go engineer with Kubernetes")
	b := s.Embed(ctx, "Senior Go engineer with Kubernetes")
	require.Len(t, a, 64)
	assert.Equal(t, a, b, "相同文本得到相同向量")

	var norm float64
	for _, x := range a {
		norm += x * x
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)

	assert.True(t, IsZero(s.Embed(ctx, "!!! ---")), "没有词的文本得到零向量")
}

func TestHTTPEmbedder(t *testing.T) {
	ctx := context.Background()

	t.Run("按 index 排序返回", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			var req embeddingRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, []string{"a", "b"}, req.Input)
			assert.Equal(t, "m1", req.Model)
			assert.Equal(t, 2, req.Dimensions)
			_ = json.NewEncoder(w).Encode(embeddingResponse{Data: []embeddingData{
				{Index: 1, Embedding: []float64{3, 4}},
				{Index: 0, Embedding: []float64{1, 2}},
			}})
		}))
		defer srv.Close()

		e, err := NewHTTPEmbedder("secret", config.EmbeddingConfig{BaseURL: srv.URL, Model: "m1", Dimensions: 2})
		require.NoError(t, err)
		got, err := e.EmbedStrings(ctx, []string{"a", "b"})
		require.NoError(t, err)
		assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, got)
	})

	t.Run("非 200 状态码", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"bad key"}`))
		}))
		defer srv.Close()

		e, err := NewHTTPEmbedder("secret", config.EmbeddingConfig{BaseURL: srv.URL, Dimensions: 2})
		require.NoError(t, err)
		_, err = e.EmbedStrings(ctx, []string{"a"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "状态码: 401")
	})

	t.Run("响应体中的错误", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"rate","code":"429"}}`))
		}))
		defer srv.Close()

		e, err := NewHTTPEmbedder("secret", config.EmbeddingConfig{BaseURL: srv.URL, Dimensions: 2})
		require.NoError(t, err)
		_, err = e.EmbedStrings(ctx, []string{"a"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("缺少密钥", func(t *testing.T) {
		_, err := NewHTTPEmbedder("", config.EmbeddingConfig{})
		assert.Error(t, err)
	})
}

func TestCachedService(t *testing.T) {
	ctx := context.Background()
	b := &stubBackend{vec: []float64{0.6, 0.8}}
	cache := NewMemoryCache()
	s := NewCachedService(NewService(config.EmbeddingConfig{}, WithBackend(b, 2, "stub")), cache)

	assert.Equal(t, []float64{0.6, 0.8}, s.Embed(ctx, "resume text"))
	assert.Equal(t, []float64{0.6, 0.8}, s.Embed(ctx, "resume text"))
	assert.Equal(t, 1, b.calls, "第二次命中缓存")
	assert.Equal(t, 1, cache.Len())

	_, ok, err := cache.GetVector(ctx, CacheKey("stub", "resume text"))
	require.NoError(t, err)
	assert.True(t, ok)

	failing := &stubBackend{err: errors.New("down")}
	s2 := NewCachedService(NewService(config.EmbeddingConfig{}, WithBackend(failing, 2, "stub2")), cache)
	assert.True(t, IsZero(s2.Embed(ctx, "other")))
	assert.Equal(t, 1, cache.Len(), "零向量不写缓存")
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "m:"+TextHash("x"), CacheKey("m", "x"))
	assert.Len(t, TextHash("x"), 64)
	assert.NotEqual(t, CacheKey("m", "x"), CacheKey("n", "x"))
}
