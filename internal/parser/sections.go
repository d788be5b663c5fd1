package parser

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// 单次匹配超时，防止病态输入拖垮请求
const matchTimeout = 2 * time.Second

var (
	educationHeaders = []string{"EDUCATION", "ACADEMIC BACKGROUND", "DEGREES", "QUALIFICATIONS"}
	educationTerms   = []string{"SKILLS", "EXPERIENCE", "WORK HISTORY", "PROJECTS", "AWARDS", "SUMMARY", "ABOUT ME", "LANGUAGES", "PUBLICATIONS", "INTERESTS"}

	experienceHeaders = []string{"PROFESSIONAL EXPERIENCE", "EXPERIENCE", "WORK HISTORY", "EMPLOYMENT"}
	experienceTerms   = []string{"EDUCATION", "SKILLS", "PROJECTS", "AWARDS", "CERTIFICATIONS", "SUMMARY", "ABOUT ME", "LANGUAGES", "PUBLICATIONS", "INTERESTS"}

	titleKeywords = []string{
		"Engineer", "Developer", "Manager", "Scientist", "Analyst", "Consultant", "Architect",
		"Designer", "Specialist", "Lead", "Director",
		"Physician", "Doctor", "Surgeon", "Practitioner", "Dentist", "Resident", "Fellow",
	}
)

// sectionLocator 章节定位策略链，第一个匹配的策略生效
type sectionLocator struct {
	name  string
	chain []*regexp2.Regexp
}

func keywordAlt(words []string) string {
	alts := make([]string, len(words))
	for i, w := range words {
		alts[i] = strings.Join(strings.Fields(w), `[ \t]+`)
	}
	return strings.Join(alts, "|")
}

func mustCompile(pattern string, opts regexp2.RegexOptions) *regexp2.Regexp {
	re := regexp2.MustCompile(pattern, opts)
	re.MatchTimeout = matchTimeout
	return re
}

func newSectionLocator(name string, headers, terms []string) *sectionLocator {
	h := keywordAlt(headers)
	t := keywordAlt(terms)
	// 下一个章节标题：整行标题（可带两个限定词），或以关键字加冒号开头的行
	terminator := `\n[ \t]*(?:[A-Z][A-Za-z&]*[ \t]+){0,2}(?i:` + t + `)[ \t]*(?::|(?=\n|\z))`
	opts := regexp2.RegexOptions(regexp2.Multiline | regexp2.Singleline)
	return &sectionLocator{
		name: name,
		chain: []*regexp2.Regexp{
			// 独占一行的标题
			mustCompile(`^[ \t]*(?:[A-Z][A-Za-z&]*[ \t]+){0,2}(?i:`+h+`)[ \t]*:?[ \t]*$(.*?)(?=`+terminator+`|\z)`, opts),
			// 以标题关键字开头、内容接在同一行
			mustCompile(`^[ \t]*(?i:`+h+`)\b[ \t]*:?[ \t]*(.*?)(?=`+terminator+`|\z)`, opts),
		},
	}
}

var (
	educationLocator  = newSectionLocator("education", educationHeaders, educationTerms)
	experienceLocator = newSectionLocator("experience", experienceHeaders, experienceTerms)
)

// locate 返回章节正文，没有标题时返回 false
func (l *sectionLocator) locate(text string) (string, bool) {
	for _, re := range l.chain {
		m, err := re.FindStringMatch(text)
		if err != nil || m == nil {
			continue
		}
		body := strings.TrimSpace(m.GroupByNumber(1).String())
		return body, true
	}
	return "", false
}

// splitRunes 按分隔模式切分文本，去掉空白片段；regexp2 的下标以 rune 计
func splitRunes(re *regexp2.Regexp, text string) []string {
	runes := []rune(text)
	var parts []string
	last := 0
	m, err := re.FindRunesMatch(runes)
	for err == nil && m != nil {
		if m.Length > 0 {
			parts = append(parts, string(runes[last:m.Index]))
			last = m.Index + m.Length
		}
		m, err = re.FindNextMatch(m)
	}
	parts = append(parts, string(runes[last:]))

	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
