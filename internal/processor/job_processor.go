package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"resume-match-go/internal/constants"
	"resume-match-go/internal/embedding"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/types"
)

// JobProcessor 岗位的增删改查，每次写入都重新生成岗位向量
type JobProcessor struct {
	*Components
	settings Settings
	now      func() time.Time
	logger   zerolog.Logger
}

func NewJobProcessor(c *Components, opts ...SettingOpt) *JobProcessor {
	s := newSettings(opts)
	return &JobProcessor{
		Components: c,
		settings:   s,
		now:        time.Now,
		logger:     s.Logger.With().Str("service", "job").Logger(),
	}
}

func validateJobInput(op, id string, in types.JobInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return NewInvalidError(op, id, "title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return NewInvalidError(op, id, "description is required")
	}
	return nil
}

// embedJob 按摘要文本重新生成向量，零向量也保存，排名时返回空结果
func (p *JobProcessor) embedJob(ctx context.Context, job *types.JobDescription) {
	summary := job.SummaryText()
	job.Embedding = p.Embedder.Embed(ctx, summary)
	job.EmbeddingModel = p.Embedder.Model()
	job.SummaryHash = embedding.TextHash(summary)
	if embedding.IsZero(job.Embedding) {
		p.logger.Warn().Str("job_id", job.ID).Msg("岗位向量为零向量")
	}
}

func (p *JobProcessor) afterWrite(ctx context.Context, job *types.JobDescription, action string) {
	p.invalidateRanking(ctx, p.logger, job.ID)
	p.publish(ctx, p.logger, constants.RoutingKeyJobUpdated, storage.JobUpdatedEvent{
		JobID:     job.ID,
		Action:    action,
		IsPublic:  job.IsPublic,
		UpdatedAt: job.UpdatedAt,
	})
}

// Create 新建岗位，IsPublic 未指定时默认公开
func (p *JobProcessor) Create(ctx context.Context, in types.JobInput) (*types.JobDescription, error) {
	if err := validateJobInput("CreateJob", "", in); err != nil {
		return nil, err
	}
	now := p.now().UTC()
	job := &types.JobDescription{
		ID:                    uuid.NewString(),
		Title:                 in.Title,
		Description:           in.Description,
		PostedBy:              in.PostedBy,
		IsPublic:              true,
		ProcessedCandidateIDs: make([]string, 0),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if in.IsPublic != nil {
		job.IsPublic = *in.IsPublic
	}
	p.embedJob(ctx, job)
	if err := p.Repository.SaveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("保存岗位失败: %w", err)
	}
	p.logger.Info().Str("job_id", job.ID).Str("title", job.Title).Msg("岗位已创建")
	p.afterWrite(ctx, job, "created")
	return job, nil
}

// Get 读取岗位
func (p *JobProcessor) Get(ctx context.Context, id string) (*types.JobDescription, error) {
	job, err := p.Repository.GetJob(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NewNotFoundError("GetJob", id, ErrJobNotFound)
		}
		return nil, fmt.Errorf("读取岗位失败: %w", err)
	}
	return job, nil
}

// Update 覆盖标题、描述等字段，保留已处理的候选人列表
func (p *JobProcessor) Update(ctx context.Context, id string, in types.JobInput) (*types.JobDescription, error) {
	if err := validateJobInput("UpdateJob", id, in); err != nil {
		return nil, err
	}
	job, err := p.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	job.Title = in.Title
	job.Description = in.Description
	job.PostedBy = in.PostedBy
	if in.IsPublic != nil {
		job.IsPublic = *in.IsPublic
	}
	job.UpdatedAt = p.now().UTC()
	p.embedJob(ctx, job)
	if err := p.Repository.SaveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("保存岗位失败: %w", err)
	}
	p.logger.Info().Str("job_id", job.ID).Msg("岗位已更新")
	p.afterWrite(ctx, job, "updated")
	return job, nil
}

func (p *JobProcessor) Delete(ctx context.Context, id string) error {
	job, err := p.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := p.Repository.DeleteJob(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NewNotFoundError("DeleteJob", id, ErrJobNotFound)
		}
		return fmt.Errorf("删除岗位失败: %w", err)
	}
	job.UpdatedAt = p.now().UTC()
	p.logger.Info().Str("job_id", id).Msg("岗位已删除")
	p.afterWrite(ctx, job, "deleted")
	return nil
}

// List publicOnly 为 true 时只返回公开岗位
func (p *JobProcessor) List(ctx context.Context, publicOnly bool) ([]*types.JobDescription, error) {
	jobs, err := p.Repository.ListJobs(ctx, publicOnly)
	if err != nil {
		return nil, fmt.Errorf("查询岗位列表失败: %w", err)
	}
	return jobs, nil
}

// 演示岗位
var demoJobs = []types.JobInput{
	{
		Title:       "Senior Python Developer",
		Description: "Looking for an experienced Python Developer with expertise in FastAPI and Machine Learning.",
		PostedBy:    "Recruiter",
	},
	{
		Title:       "Data Scientist",
		Description: "Seeking a Data Scientist with strong skills in data analysis, statistical modeling, and Python (Pandas, NumPy, Scikit-learn).",
		PostedBy:    "Recruiter",
	},
}

// SeedDemoJobs 已有岗位时不再写入
func (p *JobProcessor) SeedDemoJobs(ctx context.Context) ([]*types.JobDescription, error) {
	existing, err := p.List(ctx, false)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		p.logger.Debug().Int("jobs", len(existing)).Msg("已存在岗位，跳过演示数据")
		return existing, nil
	}
	seeded := make([]*types.JobDescription, 0, len(demoJobs))
	for _, in := range demoJobs {
		job, err := p.Create(ctx, in)
		if err != nil {
			return seeded, fmt.Errorf("写入演示岗位失败: %w", err)
		}
		seeded = append(seeded, job)
	}
	p.logger.Info().Int("jobs", len(seeded)).Msg("已写入演示岗位")
	return seeded, nil
}
