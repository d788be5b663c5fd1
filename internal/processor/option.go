package processor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"resume-match-go/internal/embedding"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/matcher"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/types"
)

// TextExtractor 把上传的文件内容转成文本，失败时返回空字符串
type TextExtractor interface {
	ExtractBytes(ctx context.Context, filename string, data []byte) string
}

// RankingCache 岗位排名缓存
type RankingCache interface {
	GetRanking(ctx context.Context, jobID, fingerprint string) ([]types.RankedResult, bool, error)
	SetRanking(ctx context.Context, jobID, fingerprint string, results []types.RankedResult, ttl time.Duration) error
	InvalidateRankings(ctx context.Context, jobID string) (int64, error)
}

// Upload 一份上传的简历
type Upload struct {
	Filename string
	Data     []byte
}

// Components 业务服务共享的依赖。Archive、Events、RankingCache 可以为空。
type Components struct {
	Repository   storage.Repository
	Extractor    TextExtractor
	Builder      *ProfileBuilder
	Embedder     embedding.Vectorizer
	Ranker       *matcher.Ranker
	Archive      storage.ObjectStorage
	Events       storage.EventPublisher
	RankingCache RankingCache
}

// Settings 业务服务的运行参数
type Settings struct {
	Workers         int
	RankingCacheTTL time.Duration
	Logger          zerolog.Logger
}

// ComponentOpt 只修改 Components
type ComponentOpt func(*Components)

// SettingOpt 只修改 Settings
type SettingOpt func(*Settings)

func WithArchive(a storage.ObjectStorage) ComponentOpt {
	return func(c *Components) {
		c.Archive = a
	}
}

func WithEvents(p storage.EventPublisher) ComponentOpt {
	return func(c *Components) {
		c.Events = p
	}
}

func WithRankingCache(rc RankingCache) ComponentOpt {
	return func(c *Components) {
		c.RankingCache = rc
	}
}

func WithRanker(r *matcher.Ranker) ComponentOpt {
	return func(c *Components) {
		c.Ranker = r
	}
}

// WithWorkers 批量处理简历的并发数
func WithWorkers(n int) SettingOpt {
	return func(s *Settings) {
		if n > 0 {
			s.Workers = n
		}
	}
}

func WithRankingCacheTTL(d time.Duration) SettingOpt {
	return func(s *Settings) {
		if d > 0 {
			s.RankingCacheTTL = d
		}
	}
}

func WithSettingsLogger(l zerolog.Logger) SettingOpt {
	return func(s *Settings) {
		s.Logger = l
	}
}

// NewComponents 组装依赖；未指定 Ranker 时按 Embedder 创建
func NewComponents(repo storage.Repository, extractor TextExtractor, builder *ProfileBuilder, embedder embedding.Vectorizer, opts ...ComponentOpt) *Components {
	c := &Components{
		Repository: repo,
		Extractor:  extractor,
		Builder:    builder,
		Embedder:   embedder,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Ranker == nil {
		c.Ranker = matcher.NewRanker(embedder)
	}
	return c
}

func newSettings(opts []SettingOpt) Settings {
	s := Settings{
		Workers:         4,
		RankingCacheTTL: 10 * time.Minute,
		Logger:          logger.Component("processor"),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// publish 发布事件，未配置或失败时只记录日志
func (c *Components) publish(ctx context.Context, log zerolog.Logger, routingKey string, payload interface{}) {
	if c.Events == nil {
		return
	}
	if err := c.Events.Publish(ctx, routingKey, payload); err != nil {
		log.Warn().Err(err).Str("routing_key", routingKey).Msg("发布事件失败")
	}
}

// invalidateRanking 删除岗位的排名缓存
func (c *Components) invalidateRanking(ctx context.Context, log zerolog.Logger, jobID string) {
	if c.RankingCache == nil {
		return
	}
	if _, err := c.RankingCache.InvalidateRankings(ctx, jobID); err != nil {
		log.Warn().Err(err).Str("job_id", jobID).Msg("清理排名缓存失败")
	}
}
