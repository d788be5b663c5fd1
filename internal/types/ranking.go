package types

// Explanation 排名结果的可解释信息，空字段不输出
type Explanation struct {
	MatchedSkills   []string `json:"matched_skills,omitempty"`
	CommonKeywords  []string `json:"common_keywords_in_resume,omitempty"`
	TotalExperience string   `json:"total_experience,omitempty"`
	Education       string   `json:"education,omitempty"`
	Experience      string   `json:"experience,omitempty"`
}

// RankedResult 单个候选人的排名结果
type RankedResult struct {
	CandidateProfile *CandidateProfile `json:"candidate_profile"` // RawText 已脱敏
	MatchScore       float64           `json:"match_score"`
	Explainability   Explanation       `json:"explainability"`
}
