package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"resume-match-go/internal/constants"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/tracing"
	"resume-match-go/internal/types"
)

// CandidateService 候选人流程：浏览公开岗位、投递、提交可面试时间
type CandidateService struct {
	*Components
	now    func() time.Time
	logger zerolog.Logger
}

func NewCandidateService(c *Components, opts ...SettingOpt) *CandidateService {
	s := newSettings(opts)
	return &CandidateService{
		Components: c,
		now:        time.Now,
		logger:     s.Logger.With().Str("service", "candidate").Logger(),
	}
}

func (s *CandidateService) PublicJobs(ctx context.Context) ([]*types.JobDescription, error) {
	jobs, err := s.Repository.ListJobs(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("查询公开岗位失败: %w", err)
	}
	return jobs, nil
}

// PublicJob 岗位不存在或未公开都视为不存在
func (s *CandidateService) PublicJob(ctx context.Context, jobID string) (*types.JobDescription, error) {
	job, err := s.publicJob(ctx, "PublicJob", jobID, "Public job not found")
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *CandidateService) publicJob(ctx context.Context, op, jobID, detail string) (*types.JobDescription, error) {
	job, err := s.Repository.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NewWorkflowError(op, jobID, ErrJobNotPublic, detail)
		}
		return nil, fmt.Errorf("读取岗位失败: %w", err)
	}
	if !job.IsPublic {
		return nil, NewWorkflowError(op, jobID, ErrJobNotPublic, detail)
	}
	return job, nil
}

// Apply 投递公开岗位，同一用户对同一岗位只能投递一次
func (s *CandidateService) Apply(ctx context.Context, jobID, userID string, up Upload) (*types.Application, error) {
	if userID == "" {
		userID = constants.DefaultCandidateUserID
	}
	if _, err := s.publicJob(ctx, "Apply", jobID, "Job not found or not open for public applications."); err != nil {
		return nil, err
	}

	_, err := s.Repository.FindApplication(ctx, userID, jobID)
	switch {
	case err == nil:
		return nil, NewWorkflowError("Apply", jobID, ErrDuplicateApplication, "You have already applied for this job.")
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("查询投递记录失败: %w", err)
	}

	text := s.Extractor.ExtractBytes(ctx, up.Filename, up.Data)
	profile := s.Builder.Build(ctx, text, userID)
	if profile.ParseFailed() {
		s.logger.Warn().Str("user_id", userID).Str("file", tracing.SafeFilename(up.Filename)).Msg("投递的简历没有可用文本")
		return nil, NewWorkflowError("Apply", jobID, ErrEmptyResume, "Resume parsing failed or resulted in empty content.")
	}
	if err := s.Repository.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("保存候选人档案失败: %w", err)
	}
	if s.Archive != nil {
		if _, err := s.Archive.ArchiveResume(ctx, profile.ID, up.Filename, up.Data); err != nil {
			s.logger.Warn().Err(err).Str("profile_id", profile.ID).Msg("归档简历原件失败")
		}
	}

	app := &types.Application{
		ID:                 uuid.NewString(),
		CandidateUserID:    userID,
		JobID:              jobID,
		CandidateProfileID: profile.ID,
		Status:             types.StatusApplied,
		AppliedAt:          s.now().UTC(),
	}
	if err := s.Repository.SaveApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("保存投递记录失败: %w", err)
	}
	s.publish(ctx, s.logger, constants.RoutingKeyResumeParsed, storage.ResumeParsedEvent{
		ProfileID:        profile.ID,
		JobID:            jobID,
		UserID:           userID,
		OriginalFilename: up.Filename,
		SkillsCount:      len(profile.Skills),
		ParsedAt:         app.AppliedAt,
	})
	s.logger.Info().Str("user_id", userID).Str("job_id", jobID).Str("application_id", app.ID).Msg("投递成功")
	return app, nil
}

func (s *CandidateService) Applications(ctx context.Context, userID string) ([]*types.Application, error) {
	apps, err := s.Repository.ListApplications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询投递记录失败: %w", err)
	}
	return apps, nil
}

// SubmitAvailability 只有投递过该岗位的用户可以提交
func (s *CandidateService) SubmitAvailability(ctx context.Context, userID string, req types.CandidateAvailability) error {
	if len(req.AvailableSlots) == 0 {
		return NewInvalidError("SubmitAvailability", req.JobID, "At least one available slot is required.")
	}
	if _, err := s.Repository.FindApplication(ctx, userID, req.JobID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NewWorkflowError("SubmitAvailability", req.JobID, ErrNotApplied,
				fmt.Sprintf("Candidate has not applied for job '%s'.", req.JobID))
		}
		return fmt.Errorf("查询投递记录失败: %w", err)
	}
	s.logger.Info().Str("user_id", userID).Str("job_id", req.JobID).Int("slots", len(req.AvailableSlots)).Msg("收到候选人可面试时间")
	s.publish(ctx, s.logger, constants.RoutingKeyAvailabilitySubmitted, storage.AvailabilitySubmittedEvent{
		CandidateUserID: userID,
		JobID:           req.JobID,
		AvailableSlots:  req.AvailableSlots,
		Notes:           req.Notes,
		SubmittedAt:     s.now().UTC(),
	})
	return nil
}

// Profile 返回去掉原始文本的档案
func (s *CandidateService) Profile(ctx context.Context, profileID string) (*types.CandidateProfile, error) {
	profile, err := s.Repository.GetProfile(ctx, profileID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NewWorkflowError("Profile", profileID, ErrProfileNotFound, "Candidate profile not found.")
		}
		return nil, fmt.Errorf("读取候选人档案失败: %w", err)
	}
	return profile.Redacted(), nil
}
