package types

import "time"

// ApplicationStatus 投递状态
type ApplicationStatus string

const (
	StatusApplied            ApplicationStatus = "Applied"
	StatusUnderReview        ApplicationStatus = "Under Review"
	StatusShortlisted        ApplicationStatus = "Shortlisted"
	StatusInterviewScheduled ApplicationStatus = "Interview Scheduled"
	StatusRejected           ApplicationStatus = "Rejected"
	StatusHired              ApplicationStatus = "Hired"
)

// Valid 是否为已知状态
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusApplied, StatusUnderReview, StatusShortlisted, StatusInterviewScheduled, StatusRejected, StatusHired:
		return true
	}
	return false
}

// Application 候选人对岗位的一次投递
type Application struct {
	ID                 string            `json:"id"`
	CandidateUserID    string            `json:"candidate_user_id"`
	JobID              string            `json:"job_id"`
	CandidateProfileID string            `json:"candidate_profile_id"`
	Status             ApplicationStatus `json:"status"`
	AppliedAt          time.Time         `json:"applied_at"`
}

// InterviewRequest 招聘方发起的面试安排请求
type InterviewRequest struct {
	JobID               string   `json:"job_id" validate:"required"`
	CandidateProfileID  string   `json:"candidate_profile_id" validate:"required"`
	InterviewerIDs      []string `json:"interviewer_ids"`
	PreferredDatesTimes []string `json:"preferred_dates_times"`
	Notes               string   `json:"notes,omitempty"`
}

// CandidateAvailability 候选人提交的可面试时间
type CandidateAvailability struct {
	CandidateID    string   `json:"candidate_id" validate:"required"`
	JobID          string   `json:"job_id" validate:"required"`
	AvailableSlots []string `json:"available_slots" validate:"required,min=1"`
	Notes          string   `json:"notes,omitempty"`
}
