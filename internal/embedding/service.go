// Package embedding 把文本转成固定维度的向量。
//
// 对外的约定只有一条：Embed 永远返回 Dimension() 长度的向量，空文本、后端失败或维度不符时返回全零向量，
// 由排名阶段负责剔除零向量。
package embedding

import (
	"context"
	"fmt"
	"strings"
	"sync"

	einoemb "github.com/cloudwego/eino/components/embedding"
	"github.com/rs/zerolog"

	"resume-match-go/internal/config"
	"resume-match-go/internal/logger"
)

// Vectorizer 文本向量化契约
type Vectorizer interface {
	Embed(ctx context.Context, text string) []float64
	Dimension() int
	Model() string
}

// Zero 返回 dim 维零向量
func Zero(dim int) []float64 {
	if dim < 0 {
		dim = 0
	}
	return make([]float64, dim)
}

// IsZero 判断向量是否全零（空向量也视为零向量）
func IsZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Service 按配置延迟加载后端，只加载一次；加载失败时退化为占位维度的零向量
type Service struct {
	cfg    config.EmbeddingConfig
	logger zerolog.Logger

	once    sync.Once
	backend einoemb.Embedder
	dim     int
	model   string
	loadErr error
}

// ServiceOption Service 的配置选项
type ServiceOption func(*Service)

// WithBackend 直接指定后端，跳过按 provider 构建
func WithBackend(backend einoemb.Embedder, dim int, model string) ServiceOption {
	return func(s *Service) {
		s.once.Do(func() {
			s.backend = backend
			s.dim = dim
			s.model = model
		})
	}
}

func WithServiceLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService 创建向量服务，后端在第一次使用时加载
func NewService(cfg config.EmbeddingConfig, opts ...ServiceOption) *Service {
	s := &Service{cfg: cfg, logger: logger.Component("embedding")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) load() {
	s.once.Do(func() {
		backend, err := newBackend(s.cfg)
		if err != nil {
			s.loadErr = err
			s.dim = s.cfg.PlaceholderDimensions
			if s.dim <= 0 {
				s.dim = 384
			}
			s.model = "unavailable"
			s.logger.Warn().Err(err).Int("placeholder_dimensions", s.dim).Msg("向量模型加载失败，返回零向量")
			return
		}
		s.backend = backend
		s.dim = s.cfg.Dimensions
		s.model = s.cfg.Model
		s.logger.Info().Str("provider", s.cfg.Provider).Str("model", s.model).Int("dimensions", s.dim).Msg("向量模型已加载")
	})
}

func newBackend(cfg config.EmbeddingConfig) (einoemb.Embedder, error) {
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("向量维度必须为正数: %d", cfg.Dimensions)
	}
	switch strings.ToLower(cfg.Provider) {
	case "", "hashing":
		return NewHashingEmbedder(cfg.Dimensions), nil
	case "aliyun", "openai", "http":
		return NewHTTPEmbedder(cfg.APIKey, cfg)
	default:
		return nil, fmt.Errorf("未知的向量 provider: %s", cfg.Provider)
	}
}

// Ready 后端是否可用
func (s *Service) Ready() bool {
	s.load()
	return s.backend != nil
}

// LoadError 后端加载失败的原因
func (s *Service) LoadError() error {
	s.load()
	return s.loadErr
}

func (s *Service) Dimension() int {
	s.load()
	return s.dim
}

func (s *Service) Model() string {
	s.load()
	return s.model
}

// Embed 文本向量化，任何失败都返回零向量
func (s *Service) Embed(ctx context.Context, text string) []float64 {
	s.load()
	if strings.TrimSpace(text) == "" || s.backend == nil {
		return Zero(s.dim)
	}
	vecs, err := s.backend.EmbedStrings(ctx, []string{text})
	if err != nil {
		s.logger.Warn().Err(err).Msg("向量化失败，返回零向量")
		return Zero(s.dim)
	}
	if len(vecs) != 1 || len(vecs[0]) != s.dim {
		got := 0
		if len(vecs) > 0 {
			got = len(vecs[0])
		}
		s.logger.Warn().Int("vectors", len(vecs)).Int("got_dim", got).Int("want_dim", s.dim).Msg("向量维度不符，返回零向量")
		return Zero(s.dim)
	}
	return vecs[0]
}
