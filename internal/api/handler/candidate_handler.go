package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/go-playground/validator/v10"

	"resume-match-go/internal/constants"
	"resume-match-go/internal/processor"
	"resume-match-go/internal/types"
)

// CandidateHandler 候选人接口
type CandidateHandler struct {
	candidate    *processor.CandidateService
	validate     *validator.Validate
	maxFileBytes int64
}

func NewCandidateHandler(candidate *processor.CandidateService, validate *validator.Validate, maxFileBytes int64) *CandidateHandler {
	return &CandidateHandler{
		candidate:    candidate,
		validate:     validate,
		maxFileBytes: maxFileBytes,
	}
}

// PublicJobs GET /candidate/jobs
func (h *CandidateHandler) PublicJobs(ctx context.Context, c *app.RequestContext) {
	jobs, err := h.candidate.PublicJobs(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(consts.StatusOK, jobs)
}

// PublicJob GET /candidate/jobs/:job_id
func (h *CandidateHandler) PublicJob(ctx context.Context, c *app.RequestContext) {
	job, err := h.candidate.PublicJob(ctx, c.Param("job_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(consts.StatusOK, job)
}

// Apply POST /candidate/apply/:job_id?candidate_user_id=...，表单字段 resume_file
func (h *CandidateHandler) Apply(ctx context.Context, c *app.RequestContext) {
	fh, err := c.FormFile("resume_file")
	if err != nil {
		badRequest(c, "resume_file is required.")
		return
	}
	data, err := readFile(fh, h.maxFileBytes)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	userID := c.DefaultQuery("candidate_user_id", constants.DefaultCandidateUserID)
	application, err := h.candidate.Apply(ctx, c.Param("job_id"), userID, processor.Upload{Filename: fh.Filename, Data: data})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(consts.StatusCreated, application)
}

// Applications GET /candidate/:candidate_user_id/applications
func (h *CandidateHandler) Applications(ctx context.Context, c *app.RequestContext) {
	apps, err := h.candidate.Applications(ctx, c.Param("candidate_user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(consts.StatusOK, apps)
}

// SubmitAvailability POST /candidate/:candidate_user_id/submit_availability
func (h *CandidateHandler) SubmitAvailability(ctx context.Context, c *app.RequestContext) {
	var req types.CandidateAvailability
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON body.")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		badRequest(c, validationDetail(err))
		return
	}
	if err := h.candidate.SubmitAvailability(ctx, c.Param("candidate_user_id"), req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(consts.StatusAccepted, utils.H{"message": "Candidate availability received and will be processed."})
}

// Profile GET /candidate/profiles/:candidate_profile_id，不返回原始文本
func (h *CandidateHandler) Profile(ctx context.Context, c *app.RequestContext) {
	profile, err := h.candidate.Profile(ctx, c.Param("candidate_profile_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(consts.StatusOK, profile)
}
