package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/go-playground/validator/v10"

	"resume-match-go/internal/processor"
	"resume-match-go/internal/types"
)

// RecruiterHandler 招聘方接口
type RecruiterHandler struct {
	jobs         *processor.JobProcessor
	recruiter    *processor.RecruiterService
	validate     *validator.Validate
	maxFileBytes int64
}

func NewRecruiterHandler(jobs *processor.JobProcessor, recruiter *processor.RecruiterService, validate *validator.Validate, maxFileBytes int64) *RecruiterHandler {
	return &RecruiterHandler{
		jobs:         jobs,
		recruiter:    recruiter,
		validate:     validate,
		maxFileBytes: maxFileBytes,
	}
}

func (h *RecruiterHandler) bindJob(c *app.RequestContext) (types.JobInput, bool) {
	var in types.JobInput
	if err := c.BindJSON(&in); err != nil {
		badRequest(c, "Invalid JSON body.")
		return in, false
	}
	if err := h.validate.Struct(in); err != nil {
		badRequest(c, validationDetail(err))
		return in, false
	}
	return in, true
}

// CreateJob POST /recruiter/jobs
func (h *RecruiterHandler) CreateJob(ctx context.Context, c *app.RequestContext) {
	in, ok := h.bindJob(c)
	if !ok {
		return
	}
	job, err := h.jobs.Create(ctx, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(consts.StatusCreated, job)
}

// ListJobs GET /recruiter/jobs
func (h *RecruiterHandler) ListJobs(ctx context.Context, c *app.RequestContext) {
	jobs, err := h.jobs.List(ctx, false)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(consts.StatusOK, jobs)
}

// GetJob GET /recruiter/jobs/:job_id
func (h *RecruiterHandler) GetJob(ctx context.Context, c *app.RequestContext) {
	job, err := h.jobs.Get(ctx, c.Param("job_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(consts.StatusOK, job)
}

// UpdateJob PUT /recruiter/jobs/:job_id
func (h *RecruiterHandler) UpdateJob(ctx context.Context, c *app.RequestContext) {
	in, ok := h.bindJob(c)
	if !ok {
		return
	}
	job, err := h.jobs.Update(ctx, c.Param("job_id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(consts.StatusOK, job)
}

// DeleteJob DELETE /recruiter/jobs/:job_id
func (h *RecruiterHandler) DeleteJob(ctx context.Context, c *app.RequestContext) {
	if err := h.jobs.Delete(ctx, c.Param("job_id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(consts.StatusNoContent)
}

// ProcessResumes POST /recruiter/jobs/:job_id/process_resumes，表单字段 resumes 可重复
func (h *RecruiterHandler) ProcessResumes(ctx context.Context, c *app.RequestContext) {
	var uploads []processor.Upload
	if form, err := c.MultipartForm(); err == nil {
		for _, fh := range form.File["resumes"] {
			data, err := readFile(fh, h.maxFileBytes)
			if err != nil {
				badRequest(c, err.Error())
				return
			}
			uploads = append(uploads, processor.Upload{Filename: fh.Filename, Data: data})
		}
	}
	results, err := h.recruiter.ProcessResumes(ctx, c.Param("job_id"), uploads)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(consts.StatusOK, results)
}

// RankedCandidates GET /recruiter/jobs/:job_id/ranked_candidates
func (h *RecruiterHandler) RankedCandidates(ctx context.Context, c *app.RequestContext) {
	results, err := h.recruiter.RankedCandidates(ctx, c.Param("job_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(consts.StatusOK, results)
}

// ScheduleInterview POST /recruiter/schedule_interview
func (h *RecruiterHandler) ScheduleInterview(ctx context.Context, c *app.RequestContext) {
	var req types.InterviewRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON body.")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		badRequest(c, validationDetail(err))
		return
	}
	if _, err := h.recruiter.ScheduleInterview(ctx, req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(consts.StatusAccepted, utils.H{
		"message": "Interview scheduling request received and being processed asynchronously.",
	})
}
