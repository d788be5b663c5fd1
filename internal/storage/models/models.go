// Package models 定义关系型数据库的表结构，以及与业务类型之间的转换。
package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"resume-match-go/internal/types"
)

// Job 岗位表
type Job struct {
	JobID                 string         `gorm:"type:varchar(36);primaryKey"`
	Title                 string         `gorm:"type:varchar(255);not null"`
	Description           string         `gorm:"type:text;not null"`
	PostedBy              string         `gorm:"type:varchar(255)"`
	IsPublic              bool           `gorm:"index:idx_jobs_is_public"`
	ProcessedCandidateIDs datatypes.JSON `gorm:"type:json"`
	Embedding             datatypes.JSON `gorm:"type:json"`
	EmbeddingModel        string         `gorm:"type:varchar(100)"`
	SummaryHash           string         `gorm:"type:varchar(64)"`
	CreatedAt             time.Time      `gorm:"index:idx_jobs_created_at"`
	UpdatedAt             time.Time
}

func (Job) TableName() string {
	return "jobs"
}

// CandidateProfile 候选人档案表
type CandidateProfile struct {
	ProfileID            string         `gorm:"type:varchar(36);primaryKey"`
	UserID               string         `gorm:"type:varchar(255);index:idx_profiles_user_id"`
	Name                 string         `gorm:"type:varchar(255)"`
	Email                string         `gorm:"type:varchar(255)"`
	Phone                string         `gorm:"type:varchar(50)"`
	TotalExperienceYears float64
	Skills               datatypes.JSON `gorm:"type:json"`
	Education            datatypes.JSON `gorm:"type:json"`
	Experience           datatypes.JSON `gorm:"type:json"`
	RawText              string         `gorm:"type:text"`
	Embedding            datatypes.JSON `gorm:"type:json"`
	EmbeddingModel       string         `gorm:"type:varchar(100)"`
	SummaryHash          string         `gorm:"type:varchar(64)"`
	CreatedAt            time.Time
}

func (CandidateProfile) TableName() string {
	return "candidate_profiles"
}

// Application 投递表，(candidate_user_id, job_id) 唯一
type Application struct {
	ApplicationID      string    `gorm:"type:varchar(36);primaryKey"`
	CandidateUserID    string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_applications_user_job,priority:1"`
	JobID              string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_applications_user_job,priority:2"`
	CandidateProfileID string    `gorm:"type:varchar(36)"`
	Status             string    `gorm:"type:varchar(50);default:'Applied'"`
	AppliedAt          time.Time `gorm:"index:idx_applications_applied_at"`
}

func (Application) TableName() string {
	return "applications"
}

// All 自动迁移的全部表
func All() []interface{} {
	return []interface{}{&Job{}, &CandidateProfile{}, &Application{}}
}

func toJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(b)
}

func fromJSON(raw datatypes.JSON, dest interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

func FromJob(j *types.JobDescription) *Job {
	ids := j.ProcessedCandidateIDs
	if ids == nil {
		ids = []string{}
	}
	return &Job{
		JobID:                 j.ID,
		Title:                 j.Title,
		Description:           j.Description,
		PostedBy:              j.PostedBy,
		IsPublic:              j.IsPublic,
		ProcessedCandidateIDs: toJSON(ids),
		Embedding:             toJSON(j.Embedding),
		EmbeddingModel:        j.EmbeddingModel,
		SummaryHash:           j.SummaryHash,
		CreatedAt:             j.CreatedAt,
		UpdatedAt:             j.UpdatedAt,
	}
}

func (m *Job) ToDomain() (*types.JobDescription, error) {
	j := &types.JobDescription{
		ID:             m.JobID,
		Title:          m.Title,
		Description:    m.Description,
		PostedBy:       m.PostedBy,
		IsPublic:       m.IsPublic,
		EmbeddingModel: m.EmbeddingModel,
		SummaryHash:    m.SummaryHash,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if err := fromJSON(m.ProcessedCandidateIDs, &j.ProcessedCandidateIDs); err != nil {
		return nil, err
	}
	if j.ProcessedCandidateIDs == nil {
		j.ProcessedCandidateIDs = []string{}
	}
	if err := fromJSON(m.Embedding, &j.Embedding); err != nil {
		return nil, err
	}
	return j, nil
}

func FromProfile(p *types.CandidateProfile) *CandidateProfile {
	return &CandidateProfile{
		ProfileID:            p.ID,
		UserID:               p.UserID,
		Name:                 p.Name,
		Email:                p.Email,
		Phone:                p.Phone,
		TotalExperienceYears: p.TotalExperienceYears,
		Skills:               toJSON(p.Skills),
		Education:            toJSON(p.Education),
		Experience:           toJSON(p.Experience),
		RawText:              p.RawText,
		Embedding:            toJSON(p.Embedding),
		EmbeddingModel:       p.EmbeddingModel,
		SummaryHash:          p.SummaryHash,
		CreatedAt:            p.CreatedAt,
	}
}

func (m *CandidateProfile) ToDomain() (*types.CandidateProfile, error) {
	p := &types.CandidateProfile{
		ID:                   m.ProfileID,
		UserID:               m.UserID,
		Name:                 m.Name,
		Email:                m.Email,
		Phone:                m.Phone,
		TotalExperienceYears: m.TotalExperienceYears,
		RawText:              m.RawText,
		EmbeddingModel:       m.EmbeddingModel,
		SummaryHash:          m.SummaryHash,
		CreatedAt:            m.CreatedAt,
	}
	for _, f := range []struct {
		raw  datatypes.JSON
		dest interface{}
	}{
		{m.Skills, &p.Skills},
		{m.Education, &p.Education},
		{m.Experience, &p.Experience},
		{m.Embedding, &p.Embedding},
	} {
		if err := fromJSON(f.raw, f.dest); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func FromApplication(a *types.Application) *Application {
	return &Application{
		ApplicationID:      a.ID,
		CandidateUserID:    a.CandidateUserID,
		JobID:              a.JobID,
		CandidateProfileID: a.CandidateProfileID,
		Status:             string(a.Status),
		AppliedAt:          a.AppliedAt,
	}
}

func (m *Application) ToDomain() *types.Application {
	return &types.Application{
		ID:                 m.ApplicationID,
		CandidateUserID:    m.CandidateUserID,
		JobID:              m.JobID,
		CandidateProfileID: m.CandidateProfileID,
		Status:             types.ApplicationStatus(m.Status),
		AppliedAt:          m.AppliedAt,
	}
}
