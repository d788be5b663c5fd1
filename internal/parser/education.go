package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"resume-match-go/internal/types"
)

const (
	institutionKeywords = `University|College|Institute|School|Academy|Conservatory`
	degreeKeywords      = `ph\.?[ \t]?d\.?|master(?:['’]?s)?|bachelor(?:['’]?s)?|mba|m\.?s\.?|b\.?s\.?|associate(?:['’]?s)?`
	orgWord             = `[A-Z][\w&.'’-]*`
)

var (
	// 新条目从学校名或学位关键字开头的行开始，空行也视为边界
	educationSplitRe = mustCompile(`\n(?=[ \t]*(?:(?:`+orgWord+`[ \t]+){0,4}(?i:`+institutionKeywords+`)\b|(?i:`+degreeKeywords+`)(?!\w)))|\n(?:[ \t]*\n)+`, regexp2.None)

	degreeRe = mustCompile(`(?<![\w.])(?i:`+degreeKeywords+`)(?!\w)(?:[ \t]+(?i:degree))?(?:[ \t]+(?:(?i:of|in)[ \t]+)?[A-Z][^,;|\n()\d]*)?`, regexp2.None)

	// 学校名前面的大写词不能是学位关键字
	institutionRe = mustCompile(`\b(?:(?!(?i:`+degreeKeywords+`)(?!\w))`+orgWord+`[ \t]+(?:(?:of|and|for|the|&)[ \t]+)?)*(?i:`+institutionKeywords+`)\b(?:[ \t]+of[ \t]+(?:the[ \t]+)?`+orgWord+`(?:[ \t]+(?:(?:and|&|of)[ \t]+)?`+orgWord+`)*)?`, regexp2.None)

	trailingConnectors = []string{"from", "at", "of", "in", "-", "–", "—", ","}
)

// span regexp2 的匹配区间，单位是 rune
type span struct {
	text       string
	start, end int
}

func firstMatch(re *regexp2.Regexp, s string, accept func(string) bool) (span, bool) {
	m, err := re.FindStringMatch(s)
	for err == nil && m != nil {
		if accept == nil || accept(m.String()) {
			return span{text: m.String(), start: m.Index, end: m.Index + m.Length}, true
		}
		m, err = re.FindNextMatch(m)
	}
	return span{}, false
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r) || unicode.IsDigit(r)
}

// trimDegree 去掉学位尾部的连接词和分隔符
func trimDegree(s string) string {
	s = strings.TrimSpace(s)
	for changed := true; changed; {
		changed = false
		for _, c := range trailingConnectors {
			lower := strings.ToLower(s)
			if !strings.HasSuffix(lower, c) {
				continue
			}
			cut := len(s) - len(c)
			// 单词型连接词需要有完整的词边界
			if unicode.IsLetter([]rune(c)[0]) && cut > 0 && s[cut-1] != ' ' {
				continue
			}
			s = strings.TrimSpace(s[:cut])
			changed = true
		}
	}
	return s
}

// parseEducationEntry 学位、学校、年份分别定位，因此两者的先后顺序不影响结果
func parseEducationEntry(entry string) types.EducationRecord {
	var rec types.EducationRecord
	inst, hasInst := firstMatch(institutionRe, entry, startsUpper)
	if hasInst {
		rec.Institution = strings.TrimSpace(inst.text)
	}
	if deg, ok := firstMatch(degreeRe, entry, nil); ok {
		text := deg.text
		if hasInst && inst.start > deg.start && inst.start < deg.end {
			text = string([]rune(entry)[deg.start:inst.start])
		}
		rec.Degree = trimDegree(text)
	}
	rec.Year, _ = findYear(entry)
	return rec
}

func complementary(a, b types.EducationRecord) bool {
	return (a.Degree == "" && a.Institution != "" && b.Degree != "" && b.Institution == "") ||
		(a.Degree != "" && a.Institution == "" && b.Degree == "" && b.Institution != "")
}

// ExtractEducation 解析教育章节，没有章节时返回空
func ExtractEducation(section string) []types.EducationRecord {
	records := make([]types.EducationRecord, 0)
	if strings.TrimSpace(section) == "" {
		return records
	}
	for _, entry := range splitRunes(educationSplitRe, section) {
		rec := parseEducationEntry(entry)
		if rec.Degree == "" && rec.Institution == "" {
			// 只有年份的行补到上一条记录
			if n := len(records); n > 0 && rec.Year != "" && records[n-1].Year == "" {
				records[n-1].Year = rec.Year
			}
			continue
		}
		records = append(records, rec)
	}
	return mergeEducation(records)
}

// mergeEducation 合并相邻的互补记录（只有学校 + 只有学位）
func mergeEducation(records []types.EducationRecord) []types.EducationRecord {
	out := make([]types.EducationRecord, 0, len(records))
	for i := 0; i < len(records); i++ {
		cur := records[i]
		if i+1 < len(records) && complementary(cur, records[i+1]) {
			next := records[i+1]
			if cur.Degree == "" {
				cur.Degree = next.Degree
			}
			if cur.Institution == "" {
				cur.Institution = next.Institution
			}
			if cur.Year == "" {
				cur.Year = next.Year
			}
			i++
		}
		out = append(out, cur)
	}
	return out
}
