package types

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// JobDescription 岗位描述
type JobDescription struct {
	ID                    string    `json:"id"`
	Title                 string    `json:"title"`
	Description           string    `json:"description"`
	PostedBy              string    `json:"posted_by,omitempty"`
	IsPublic              bool      `json:"is_public"`
	ProcessedCandidateIDs []string  `json:"processed_candidate_profiles_ids"`
	Embedding             []float64 `json:"embedding,omitempty"`
	EmbeddingModel        string    `json:"embedding_model,omitempty"`
	SummaryHash           string    `json:"summary_hash,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// JobInput 创建/更新岗位的请求体
type JobInput struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
	PostedBy    string `json:"posted_by,omitempty" validate:"max=255"`
	IsPublic    *bool  `json:"is_public,omitempty"`
}

// SummaryText 岗位向量化使用的摘要文本
func (j *JobDescription) SummaryText() string {
	var parts []string
	if j.Title != "" {
		parts = append(parts, fmt.Sprintf("Job Title: %s.", j.Title))
	}
	if j.Description != "" {
		parts = append(parts, fmt.Sprintf("Job Description: %s.", j.Description))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// AddProcessedCandidate 追加已处理的候选人ID，已存在时返回 false
func (j *JobDescription) AddProcessedCandidate(profileID string) bool {
	for _, id := range j.ProcessedCandidateIDs {
		if id == profileID {
			return false
		}
	}
	j.ProcessedCandidateIDs = append(j.ProcessedCandidateIDs, profileID)
	return true
}

// Clone 深拷贝，避免调用方修改存储中的对象
func (j *JobDescription) Clone() *JobDescription {
	if j == nil {
		return nil
	}
	cp := *j
	cp.ProcessedCandidateIDs = slices.Clone(j.ProcessedCandidateIDs)
	cp.Embedding = slices.Clone(j.Embedding)
	return &cp
}
