package router

import (
	"github.com/cloudwego/hertz/pkg/route"

	"resume-match-go/internal/api/handler"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	System    *handler.SystemHandler
	Recruiter *handler.RecruiterHandler
	Candidate *handler.CandidateHandler
}

// RegisterRoutes 注册 API 路由
func RegisterRoutes(r *route.Engine, h Handlers) {
	r.GET("/", h.System.Root)
	r.GET("/api/v1/health", h.System.Health)

	recruiter := r.Group("/recruiter")
	recruiter.POST("/jobs", h.Recruiter.CreateJob)
	recruiter.GET("/jobs", h.Recruiter.ListJobs)
	recruiter.GET("/jobs/:job_id", h.Recruiter.GetJob)
	recruiter.PUT("/jobs/:job_id", h.Recruiter.UpdateJob)
	recruiter.DELETE("/jobs/:job_id", h.Recruiter.DeleteJob)
	recruiter.POST("/jobs/:job_id/process_resumes", h.Recruiter.ProcessResumes)
	recruiter.GET("/jobs/:job_id/ranked_candidates", h.Recruiter.RankedCandidates)
	recruiter.POST("/schedule_interview", h.Recruiter.ScheduleInterview)

	candidate := r.Group("/candidate")
	candidate.GET("/jobs", h.Candidate.PublicJobs)
	candidate.GET("/jobs/:job_id", h.Candidate.PublicJob)
	candidate.POST("/apply/:job_id", h.Candidate.Apply)
	candidate.GET("/profiles/:candidate_profile_id", h.Candidate.Profile)
	candidate.GET("/:candidate_user_id/applications", h.Candidate.Applications)
	candidate.POST("/:candidate_user_id/submit_availability", h.Candidate.SubmitAvailability)
}
