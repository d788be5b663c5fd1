package types

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// ParseFailureMarker 空简历解析失败时写入 RawText 的标记，下游通过内容判断
const ParseFailureMarker = "Error: No usable text extracted or cleaned."

// EducationRecord 一条教育经历
type EducationRecord struct {
	Degree      string `json:"degree,omitempty"`
	Institution string `json:"institution,omitempty"`
	Year        string `json:"year,omitempty"` // 可能是区间，例如 "2014 - 2018"
}

// ExperienceRecord 一条工作经历
type ExperienceRecord struct {
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	Years       string `json:"years,omitempty"` // 单个年份、区间或包含 "Present"
	Description string `json:"description,omitempty"`
}

// CandidateProfile 结构化后的候选人档案
type CandidateProfile struct {
	ID                   string             `json:"id"`
	UserID               string             `json:"user_id,omitempty"`
	Name                 string             `json:"name,omitempty"`
	Email                string             `json:"email,omitempty"`
	Phone                string             `json:"phone,omitempty"`
	TotalExperienceYears float64            `json:"total_experience_years"`
	Skills               []string           `json:"skills"`
	Education            []EducationRecord  `json:"education"`
	Experience           []ExperienceRecord `json:"experience"`
	RawText              string             `json:"raw_text,omitempty"`
	Embedding            []float64          `json:"embedding,omitempty"`

	// 向量元数据：生成向量时使用的模型以及摘要文本的哈希
	EmbeddingModel string    `json:"embedding_model,omitempty"`
	SummaryHash    string    `json:"summary_hash,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ParseFailed 判断档案是否为解析失败的占位档案
func (p *CandidateProfile) ParseFailed() bool {
	return p == nil || strings.TrimSpace(p.RawText) == "" || p.RawText == ParseFailureMarker
}

// SummaryText 生成用于向量化的确定性摘要文本
func (p *CandidateProfile) SummaryText() string {
	var parts []string
	if p.Name != "" {
		parts = append(parts, fmt.Sprintf("Name: %s.", p.Name))
	}
	parts = append(parts, fmt.Sprintf("%s years of experience.", FormatYears(p.TotalExperienceYears)))
	if len(p.Skills) > 0 {
		parts = append(parts, fmt.Sprintf("Skills: %s.", strings.Join(p.Skills, ", ")))
	}

	var edu []string
	for _, e := range p.Education {
		if e.Degree == "" || e.Institution == "" {
			continue
		}
		edu = append(edu, withPeriod(fmt.Sprintf("%s at %s", e.Degree, e.Institution), e.Year))
	}
	if len(edu) > 0 {
		parts = append(parts, fmt.Sprintf("Education: %s.", strings.Join(edu, "; ")))
	}

	var exp []string
	for _, e := range p.Experience {
		if e.Title == "" || e.Company == "" {
			continue
		}
		exp = append(exp, withPeriod(fmt.Sprintf("%s at %s", e.Title, e.Company), e.Years))
	}
	if len(exp) > 0 {
		parts = append(parts, fmt.Sprintf("Experience: %s.", strings.Join(exp, "; ")))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// EducationSummary "学位 at 学校" 以 "; " 连接，只统计两者都存在的记录
func (p *CandidateProfile) EducationSummary() string {
	var items []string
	for _, e := range p.Education {
		if e.Degree != "" && e.Institution != "" {
			items = append(items, e.Degree+" at "+e.Institution)
		}
	}
	return strings.Join(items, "; ")
}

// ExperienceSummary "职位 at 公司" 以 "; " 连接
func (p *CandidateProfile) ExperienceSummary() string {
	var items []string
	for _, e := range p.Experience {
		if e.Title != "" && e.Company != "" {
			items = append(items, e.Title+" at "+e.Company)
		}
	}
	return strings.Join(items, "; ")
}

// Clone 深拷贝
func (p *CandidateProfile) Clone() *CandidateProfile {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Skills = slices.Clone(p.Skills)
	cp.Education = slices.Clone(p.Education)
	cp.Experience = slices.Clone(p.Experience)
	cp.Embedding = slices.Clone(p.Embedding)
	return &cp
}

// Redacted 返回去掉原始文本的副本，用于对外输出
func (p *CandidateProfile) Redacted() *CandidateProfile {
	cp := p.Clone()
	if cp != nil {
		cp.RawText = ""
	}
	return cp
}

// FormatYears 工龄统一保留一位小数，例如 3 -> "3.0"
func FormatYears(years float64) string {
	return fmt.Sprintf("%.1f", years)
}

func withPeriod(s, period string) string {
	if period == "" {
		return s
	}
	return fmt.Sprintf("%s (%s)", s, period)
}
