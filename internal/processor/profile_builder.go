package processor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resume-match-go/internal/embedding"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/parser"
	"resume-match-go/internal/tracing"
	"resume-match-go/internal/types"
)

var tracer = otel.Tracer("resume-match/processor")

// ProfileBuilder 把简历文本组装成候选人档案并附上向量
type ProfileBuilder struct {
	parser   *parser.Parser
	embedder embedding.Vectorizer
	now      func() time.Time
	newID    func() string
	logger   zerolog.Logger
}

// BuilderOption ProfileBuilder 的配置选项
type BuilderOption func(*ProfileBuilder)

// WithBuilderClock 固定 CreatedAt，测试用
func WithBuilderClock(now func() time.Time) BuilderOption {
	return func(b *ProfileBuilder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithIDGenerator 替换档案 ID 生成方式
func WithIDGenerator(gen func() string) BuilderOption {
	return func(b *ProfileBuilder) {
		if gen != nil {
			b.newID = gen
		}
	}
}

func WithBuilderLogger(l zerolog.Logger) BuilderOption {
	return func(b *ProfileBuilder) {
		b.logger = l
	}
}

func NewProfileBuilder(p *parser.Parser, embedder embedding.Vectorizer, opts ...BuilderOption) *ProfileBuilder {
	b := &ProfileBuilder{
		parser:   p,
		embedder: embedder,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   logger.Component("profile_builder"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build 解析文本并生成档案。文本为空时返回带 ParseFailureMarker 的档案，不生成向量。
func (b *ProfileBuilder) Build(ctx context.Context, rawText, userID string) *types.CandidateProfile {
	ctx, span := tracer.Start(ctx, "processor.BuildProfile")
	defer span.End()

	profile := &types.CandidateProfile{
		ID:         b.newID(),
		UserID:     userID,
		Skills:     make([]string, 0),
		Education:  make([]types.EducationRecord, 0),
		Experience: make([]types.ExperienceRecord, 0),
		CreatedAt:  b.now().UTC(),
	}
	span.SetAttributes(attribute.String("profile.id", profile.ID))

	parsed := b.parser.Parse(rawText)
	if parsed.Empty() {
		profile.RawText = types.ParseFailureMarker
		span.SetAttributes(attribute.Bool("profile.parse_failed", true))
		b.logger.Warn().Str("profile_id", profile.ID).Msg("简历没有可用文本")
		return profile
	}

	profile.Name = parsed.Name
	profile.Email = parsed.Email
	profile.Phone = parsed.Phone
	profile.TotalExperienceYears = parsed.TotalExperienceYears
	profile.Skills = parsed.Skills
	profile.Education = parsed.Education
	profile.Experience = parsed.Experience
	profile.RawText = parsed.Text

	summary := profile.SummaryText()
	// 零向量照样保存，排名时剔除
	profile.Embedding = b.embedder.Embed(ctx, summary)
	profile.EmbeddingModel = b.embedder.Model()
	profile.SummaryHash = embedding.TextHash(summary)
	if embedding.IsZero(profile.Embedding) {
		span.SetAttributes(attribute.Bool("profile.embedding_zero", true))
		b.logger.Warn().Str("profile_id", profile.ID).Msg("档案向量为零向量，不参与排名")
	}

	span.SetAttributes(
		attribute.Int("profile.skills", len(profile.Skills)),
		attribute.String("candidate.name", tracing.MaskPII(profile.Name)),
	)
	return profile
}
