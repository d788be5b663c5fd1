package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"resume-match-go/internal/constants"
	"resume-match-go/internal/embedding"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/tracing"
	"resume-match-go/internal/types"
)

// RecruiterService 招聘方流程：批量处理简历、查看排名、安排面试
type RecruiterService struct {
	*Components
	settings Settings
	now      func() time.Time
	logger   zerolog.Logger
}

func NewRecruiterService(c *Components, opts ...SettingOpt) *RecruiterService {
	s := newSettings(opts)
	return &RecruiterService{
		Components: c,
		settings:   s,
		now:        time.Now,
		logger:     s.Logger.With().Str("service", "recruiter").Logger(),
	}
}

// buildAll 并发提取和解析，结果顺序与上传顺序一致
func (s *RecruiterService) buildAll(ctx context.Context, uploads []Upload) ([]*types.CandidateProfile, error) {
	profiles := make([]*types.CandidateProfile, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.settings.Workers)
	for i, up := range uploads {
		i, up := i, up
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text := s.Extractor.ExtractBytes(gctx, up.Filename, up.Data)
			profiles[i] = s.Builder.Build(gctx, text, "")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// archive 归档原件和解析文本，失败只记录日志
func (s *RecruiterService) archive(ctx context.Context, profile *types.CandidateProfile, up Upload) (original, parsed string) {
	if s.Archive == nil {
		return "", ""
	}
	var err error
	if original, err = s.Archive.ArchiveResume(ctx, profile.ID, up.Filename, up.Data); err != nil {
		s.logger.Warn().Err(err).Str("profile_id", profile.ID).Msg("归档简历原件失败")
		original = ""
	}
	if parsed, err = s.Archive.ArchiveParsedText(ctx, profile.ID, profile.RawText); err != nil {
		s.logger.Warn().Err(err).Str("profile_id", profile.ID).Msg("归档解析文本失败")
		parsed = ""
	}
	return original, parsed
}

// ProcessResumes 解析上传的简历，写入档案并关联到岗位，返回这批候选人的排名
func (s *RecruiterService) ProcessResumes(ctx context.Context, jobID string, uploads []Upload) ([]types.RankedResult, error) {
	ctx, span := tracer.Start(ctx, "processor.ProcessResumes")
	defer span.End()
	span.SetAttributes(attribute.String("job.id", jobID), attribute.Int("resumes.count", len(uploads)))

	job, err := s.Repository.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			tracing.RecordError(span, err, tracing.ErrorTypeNotFound)
			return nil, NewWorkflowError("ProcessResumes", jobID, ErrJobNotFound, "Job not found. Please create the job first.")
		}
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return nil, fmt.Errorf("读取岗位失败: %w", err)
	}
	if len(uploads) == 0 {
		return nil, NewWorkflowError("ProcessResumes", jobID, ErrNoResumes, "No resume files provided.")
	}

	built, err := s.buildAll(ctx, uploads)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return nil, fmt.Errorf("解析简历失败: %w", err)
	}

	valid := make([]*types.CandidateProfile, 0, len(built))
	for i, profile := range built {
		up := uploads[i]
		if profile.ParseFailed() {
			s.logger.Warn().Str("file", tracing.SafeFilename(up.Filename)).Msg("简历解析结果为空，已跳过")
			continue
		}
		if err := s.Repository.SaveProfile(ctx, profile); err != nil {
			s.logger.Warn().Err(err).Str("file", tracing.SafeFilename(up.Filename)).Msg("保存候选人档案失败，已跳过")
			continue
		}
		original, parsed := s.archive(ctx, profile, up)
		job.AddProcessedCandidate(profile.ID)
		valid = append(valid, profile)

		s.publish(ctx, s.logger, constants.RoutingKeyResumeParsed, storage.ResumeParsedEvent{
			ProfileID:        profile.ID,
			JobID:            job.ID,
			OriginalFilename: up.Filename,
			OriginalObject:   original,
			ParsedTextObject: parsed,
			SkillsCount:      len(profile.Skills),
			ParsedAt:         s.now().UTC(),
		})
	}
	span.SetAttributes(attribute.Int("profiles.valid", len(valid)))

	if len(valid) > 0 {
		if err := s.Repository.SaveJob(ctx, job); err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeDB)
			return nil, fmt.Errorf("更新岗位候选人列表失败: %w", err)
		}
		s.invalidateRanking(ctx, s.logger, job.ID)
	}
	if len(valid) == 0 {
		tracing.RecordError(span, ErrNoValidProfiles, tracing.ErrorTypeValidation)
		return nil, NewWorkflowError("ProcessResumes", jobID, ErrNoValidProfiles,
			"No resumes could be parsed successfully or no valid profiles extracted.")
	}

	results := s.rank(ctx, job, valid)
	if len(results) == 0 {
		tracing.RecordError(span, ErrRankingEmpty, tracing.ErrorTypeEmbedding)
		return nil, NewWorkflowError("ProcessResumes", jobID, ErrRankingEmpty,
			"Candidate ranking failed or returned no results.")
	}
	s.logger.Info().Str("job_id", job.ID).Int("uploaded", len(uploads)).Int("ranked", len(results)).Msg("简历批量处理完成")
	return results, nil
}

func (s *RecruiterService) rank(ctx context.Context, job *types.JobDescription, profiles []*types.CandidateProfile) []types.RankedResult {
	ctx, span := tracer.Start(ctx, "processor.RankCandidates")
	defer span.End()
	results := s.Ranker.Rank(ctx, job, profiles)
	span.SetAttributes(
		attribute.String("job.id", job.ID),
		attribute.Int("candidates", len(profiles)),
		attribute.Int("ranked", len(results)),
	)
	return results
}

// rankingFingerprint 岗位摘要、向量模型或候选人列表任一变化都会得到新的指纹
func (s *RecruiterService) rankingFingerprint(job *types.JobDescription) string {
	return embedding.TextHash(s.Embedder.Model() + "\n" + job.SummaryHash + "\n" + strings.Join(job.ProcessedCandidateIDs, ","))
}

// RankedCandidates 对岗位已处理的全部候选人排名，配置了缓存时优先读缓存
func (s *RecruiterService) RankedCandidates(ctx context.Context, jobID string) ([]types.RankedResult, error) {
	job, err := s.Repository.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NewWorkflowError("RankedCandidates", jobID, ErrJobNotFound, "Job not found.")
		}
		return nil, fmt.Errorf("读取岗位失败: %w", err)
	}
	if len(job.ProcessedCandidateIDs) == 0 {
		return nil, NewWorkflowError("RankedCandidates", jobID, ErrProfileNotFound,
			"No candidates have been processed for this job yet.")
	}

	fingerprint := s.rankingFingerprint(job)
	if s.RankingCache != nil {
		cached, ok, err := s.RankingCache.GetRanking(ctx, job.ID, fingerprint)
		if err != nil {
			s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("读取排名缓存失败")
		} else if ok && len(cached) > 0 {
			s.logger.Debug().Str("job_id", job.ID).Msg("命中排名缓存")
			return cached, nil
		}
	}

	profiles := make([]*types.CandidateProfile, 0, len(job.ProcessedCandidateIDs))
	for _, id := range job.ProcessedCandidateIDs {
		profile, err := s.Repository.GetProfile(ctx, id)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				s.logger.Warn().Err(err).Str("profile_id", id).Msg("读取候选人档案失败")
			}
			continue
		}
		profiles = append(profiles, profile)
	}
	if len(profiles) == 0 {
		return nil, NewWorkflowError("RankedCandidates", jobID, ErrNoValidProfiles,
			"No valid candidate profiles found for this job.")
	}

	results := s.rank(ctx, job, profiles)
	if len(results) == 0 {
		return nil, NewWorkflowError("RankedCandidates", jobID, ErrRankingEmpty,
			"Ranking could not be performed or returned no results.")
	}
	if s.RankingCache != nil {
		if err := s.RankingCache.SetRanking(ctx, job.ID, fingerprint, results, s.settings.RankingCacheTTL); err != nil {
			s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("写入排名缓存失败")
		}
	}
	return results, nil
}

// ScheduleInterview 校验请求后发布 interview.requested 事件
func (s *RecruiterService) ScheduleInterview(ctx context.Context, req types.InterviewRequest) (*types.JobDescription, error) {
	job, err := s.Repository.GetJob(ctx, req.JobID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NewWorkflowError("ScheduleInterview", req.JobID, ErrJobNotFound,
				fmt.Sprintf("Job with ID '%s' not found.", req.JobID))
		}
		return nil, fmt.Errorf("读取岗位失败: %w", err)
	}
	profile, err := s.Repository.GetProfile(ctx, req.CandidateProfileID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NewWorkflowError("ScheduleInterview", req.CandidateProfileID, ErrProfileNotFound,
				fmt.Sprintf("Candidate profile with ID '%s' not found.", req.CandidateProfileID))
		}
		return nil, fmt.Errorf("读取候选人档案失败: %w", err)
	}
	if len(req.InterviewerIDs) == 0 {
		return nil, NewInvalidError("ScheduleInterview", req.JobID, "At least one interviewer ID is required.")
	}
	if len(req.PreferredDatesTimes) == 0 {
		return nil, NewInvalidError("ScheduleInterview", req.JobID, "Preferred dates/times are required for scheduling.")
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("profile_id", profile.ID).
		Str("candidate", tracing.MaskPII(profile.Name)).
		Int("interviewers", len(req.InterviewerIDs)).
		Msg("收到面试安排请求")
	s.publish(ctx, s.logger, constants.RoutingKeyInterviewRequested, storage.InterviewRequestedEvent{
		JobID:               job.ID,
		CandidateProfileID:  profile.ID,
		InterviewerIDs:      req.InterviewerIDs,
		PreferredDatesTimes: req.PreferredDatesTimes,
		Notes:               req.Notes,
		RequestedAt:         s.now().UTC(),
	})
	return job, nil
}
