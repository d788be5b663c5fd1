// Package matcher 计算岗位与候选人向量的相似度，并给出基于词重叠的解释。
package matcher

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"resume-match-go/internal/types"
)

// DefaultKeywordLimit 共同关键词最多返回的个数
const DefaultKeywordLimit = 5

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Cosine 余弦相似度，长度不同或任一向量为零时返回 0
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	c := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// 浮点误差
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return c
}

// Score 相似度换算成 0-100 的分数，保留两位小数
func Score(a, b []float64) float64 {
	s := Cosine(a, b) * 100
	if s < 0 {
		s = 0
	}
	if s > 100 {
		s = 100
	}
	return math.Round(s*100) / 100
}

// Tokenize 小写后的单词列表，保留重复
func Tokenize(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range Tokenize(text) {
		set[t] = struct{}{}
	}
	return set
}

// Explain 岗位描述与候选人之间的词重叠解释
func Explain(jobDescription string, p *types.CandidateProfile, keywordLimit int) types.Explanation {
	var ex types.Explanation
	if p == nil {
		return ex
	}
	if keywordLimit <= 0 {
		keywordLimit = DefaultKeywordLimit
	}

	jobTokens := tokenSet(jobDescription)
	matched := make(map[string]struct{})
	for _, s := range p.Skills {
		if _, ok := jobTokens[s]; ok {
			matched[s] = struct{}{}
		}
	}
	ex.MatchedSkills = sortedKeys(matched)

	var common []string
	for t := range tokenSet(p.RawText) {
		if _, ok := jobTokens[t]; !ok {
			continue
		}
		if _, ok := matched[t]; ok {
			continue
		}
		common = append(common, t)
	}
	sort.Strings(common)
	if len(common) > keywordLimit {
		common = common[:keywordLimit]
	}
	if len(common) > 0 {
		ex.CommonKeywords = common
	}

	ex.TotalExperience = types.FormatYears(p.TotalExperienceYears) + " years"
	ex.Education = p.EducationSummary()
	ex.Experience = p.ExperienceSummary()
	return ex
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
