package matcher

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"resume-match-go/internal/embedding"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/types"
)

// Ranker 按向量相似度给候选人排序
type Ranker struct {
	embedder     embedding.Vectorizer
	keywordLimit int
	logger       zerolog.Logger
}

// RankerOption Ranker 的配置选项
type RankerOption func(*Ranker)

// WithKeywordLimit 共同关键词个数上限
func WithKeywordLimit(n int) RankerOption {
	return func(r *Ranker) {
		if n > 0 {
			r.keywordLimit = n
		}
	}
}

func WithRankerLogger(l zerolog.Logger) RankerOption {
	return func(r *Ranker) {
		r.logger = l
	}
}

func NewRanker(embedder embedding.Vectorizer, opts ...RankerOption) *Ranker {
	r := &Ranker{
		embedder:     embedder,
		keywordLimit: DefaultKeywordLimit,
		logger:       logger.Component("ranker"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// vectorFor 已有向量仍然有效时直接使用（零向量也算），否则按摘要文本现算。
// 没有向量、维度不一致、模型或摘要哈希对不上时视为失效。
func (r *Ranker) vectorFor(ctx context.Context, existing []float64, model, summaryHash, summary string) []float64 {
	if r.reusable(existing, model, summaryHash, summary) {
		return existing
	}
	return r.embedder.Embed(ctx, summary)
}

func (r *Ranker) reusable(existing []float64, model, summaryHash, summary string) bool {
	if existing == nil || len(existing) != r.embedder.Dimension() {
		return false
	}
	if model != "" && model != r.embedder.Model() {
		return false
	}
	if summaryHash != "" && summaryHash != embedding.TextHash(summary) {
		return false
	}
	return true
}

// Rank 返回按分数降序排列的结果。岗位向量为零时返回空结果，零向量候选人不参与排名。
func (r *Ranker) Rank(ctx context.Context, job *types.JobDescription, candidates []*types.CandidateProfile) []types.RankedResult {
	results := []types.RankedResult{}
	if job == nil {
		return results
	}
	jobVec := r.vectorFor(ctx, job.Embedding, job.EmbeddingModel, job.SummaryHash, job.SummaryText())
	if embedding.IsZero(jobVec) {
		r.logger.Warn().Str("job_id", job.ID).Msg("岗位向量为零，跳过排名")
		return results
	}

	for _, c := range candidates {
		if c == nil {
			continue
		}
		vec := r.vectorFor(ctx, c.Embedding, c.EmbeddingModel, c.SummaryHash, c.SummaryText())
		if embedding.IsZero(vec) {
			r.logger.Debug().Str("profile_id", c.ID).Msg("候选人向量为零，不参与排名")
			continue
		}
		results = append(results, types.RankedResult{
			CandidateProfile: c.Redacted(),
			MatchScore:       Score(jobVec, vec),
			Explainability:   Explain(job.Description, c, r.keywordLimit),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})
	r.logger.Debug().Str("job_id", job.ID).Int("candidates", len(candidates)).Int("ranked", len(results)).Msg("排名完成")
	return results
}
