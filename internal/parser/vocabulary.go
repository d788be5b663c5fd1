package parser

import (
	"sort"
	"strings"
)

// DefaultSkills 内置技能词表，全部小写
var DefaultSkills = []string{
	"python", "java", "c++", "javascript", "react", "angular", "node.js", "sql", "nosql",
	"aws", "azure", "gcp", "docker", "kubernetes", "git", "linux", "machine learning",
	"deep learning", "tensorflow", "pytorch", "data science", "tableau", "excel",
	"html", "css", "api", "rest", "flask", "fastapi", "django", "scikit-learn", "numpy", "pandas",
}

// MatchSkills 对文本做大小写无关的子串匹配，返回排序去重后的词表项
func MatchSkills(text string, vocabulary []string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]struct{}, len(vocabulary))
	out := make([]string, 0)
	for _, skill := range vocabulary {
		skill = strings.ToLower(strings.TrimSpace(skill))
		if skill == "" {
			continue
		}
		if _, ok := seen[skill]; ok {
			continue
		}
		if strings.Contains(lower, skill) {
			seen[skill] = struct{}{}
			out = append(out, skill)
		}
	}
	sort.Strings(out)
	return out
}

func mergeVocabulary(base []string, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, s := range list {
			s = strings.ToLower(strings.TrimSpace(s))
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
