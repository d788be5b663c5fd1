package storage

import "time"

// ResumeParsedEvent 简历解析完成
type ResumeParsedEvent struct {
	ProfileID        string    `json:"profile_id"`
	JobID            string    `json:"job_id,omitempty"`
	UserID           string    `json:"user_id,omitempty"`
	OriginalFilename string    `json:"original_filename"`
	OriginalObject   string    `json:"original_object,omitempty"` // MinIO 对象键，未归档时为空
	ParsedTextObject string    `json:"parsed_text_object,omitempty"`
	SkillsCount      int       `json:"skills_count"`
	ParsedAt         time.Time `json:"parsed_at"`
}

// JobUpdatedEvent 岗位创建、更新或删除
type JobUpdatedEvent struct {
	JobID     string    `json:"job_id"`
	Action    string    `json:"action"` // created / updated / deleted
	IsPublic  bool      `json:"is_public"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InterviewRequestedEvent 招聘方请求安排面试
type InterviewRequestedEvent struct {
	JobID               string    `json:"job_id"`
	CandidateProfileID  string    `json:"candidate_profile_id"`
	InterviewerIDs      []string  `json:"interviewer_ids"`
	PreferredDatesTimes []string  `json:"preferred_dates_times"`
	Notes               string    `json:"notes,omitempty"`
	RequestedAt         time.Time `json:"requested_at"`
}

// AvailabilitySubmittedEvent 候选人提交可面试时间
type AvailabilitySubmittedEvent struct {
	CandidateUserID string    `json:"candidate_user_id"`
	JobID           string    `json:"job_id"`
	AvailableSlots  []string  `json:"available_slots"`
	Notes           string    `json:"notes,omitempty"`
	SubmittedAt     time.Time `json:"submitted_at"`
}
