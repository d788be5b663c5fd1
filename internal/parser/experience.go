package parser

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"

	"resume-match-go/internal/types"
)

const bulletChars = `*\-•▪◦●·`

var (
	// 职位关键字只认首字母大写或全大写，避免描述里的 "lead the team" 被当成新条目
	titleAlt = titleKeywordAlt()

	experienceSplitRe = mustCompile(`\n(?=[ \t]*(?![\s`+bulletChars+`])[^\n]*?\b(?:`+titleAlt+`)s?\b)|\n(?:[ \t]*\n)+`, regexp2.None)

	titleKeywordRe = regexp.MustCompile(`\b(?:` + titleAlt + `)s?\b`)
	separatorRe    = regexp.MustCompile(`[ \t]+(?:at|@)[ \t]+|@|[,|;]|[ \t][-–—][ \t]|[–—]`)
	companyRe      = regexp.MustCompile(`\b(?:[A-Z0-9][\w&.'’-]*[ \t]+(?:(?:of|and|the|&)[ \t]+)?)*(?:Company|Corporation|Corp|Inc|LLC|Ltd|Group|Solutions|Systems|Technologies|Hospital|Clinic|Medical[ \t]+Center|COMPANY|CORPORATION|CORP|INC|GROUP|SOLUTIONS|SYSTEMS|TECHNOLOGIES|HOSPITAL|CLINIC|MEDICAL[ \t]+CENTER)\b\.?`)
	bulletRe       = regexp.MustCompile(`^[ \t]*[` + bulletChars + `][ \t]*`)
	multiSpaceRe   = regexp.MustCompile(`\s{2,}`)
)

func titleKeywordAlt() string {
	alts := make([]string, 0, len(titleKeywords)*2)
	for _, k := range titleKeywords {
		alts = append(alts, k, strings.ToUpper(k))
	}
	return strings.Join(alts, "|")
}

func isBullet(line string) bool {
	return bulletRe.MatchString(line)
}

// titleSpan 在标题行中定位职位：取第一个职位关键字所在的分隔片段，截到片段内最后一个关键字
func titleSpan(line string) (start, end int, ok bool) {
	kws := titleKeywordRe.FindAllStringIndex(line, -1)
	if len(kws) == 0 {
		return 0, 0, false
	}
	first := kws[0]
	segStart, segEnd := 0, len(line)
	for _, sep := range separatorRe.FindAllStringIndex(line, -1) {
		if sep[1] <= first[0] {
			segStart = sep[1]
		} else if sep[0] >= first[1] {
			segEnd = sep[0]
			break
		}
	}
	end = first[1]
	for _, kw := range kws[1:] {
		if kw[1] <= segEnd {
			end = kw[1]
		}
	}
	return segStart, end, true
}

func cleanTitle(s string) string {
	s = yearRe.ReplaceAllString(s, "")
	return strings.Trim(strings.TrimSpace(s), " ,;|-–—:()")
}

func findCompany(s string) string {
	for _, m := range companyRe.FindAllString(s, -1) {
		if m = strings.TrimSpace(m); m != "" {
			return m
		}
	}
	return ""
}

// parseExperienceEntry 标题行之后的两行内查找公司和年份，其余行作为描述
func parseExperienceEntry(entry string) types.ExperienceRecord {
	var rec types.ExperienceRecord
	lines := strings.Split(entry, "\n")

	titleIdx := -1
	for i, line := range lines {
		if !isBullet(line) && titleKeywordRe.MatchString(line) {
			titleIdx = i
			break
		}
	}

	type candidate struct {
		idx  int
		text string
	}
	var candidates []candidate
	consumed := make(map[int]bool)

	if titleIdx >= 0 {
		line := lines[titleIdx]
		start, end, _ := titleSpan(line)
		// 年份写在职位前面时会被 cleanTitle 去掉，先保留下来
		if year, _ := findYear(line[start:end]); year != "" {
			rec.Years = year
		}
		rec.Title = cleanTitle(line[start:end])
		consumed[titleIdx] = true
		candidates = append(candidates, candidate{titleIdx, line[end:]}, candidate{titleIdx, line[:start]})
		for i := titleIdx + 1; i < len(lines) && i <= titleIdx+2; i++ {
			if isBullet(lines[i]) {
				break
			}
			candidates = append(candidates, candidate{i, lines[i]})
		}
		for i := 0; i < titleIdx; i++ {
			candidates = append(candidates, candidate{i, lines[i]})
		}
	} else {
		for i := 0; i < len(lines) && i < 3; i++ {
			if !isBullet(lines[i]) {
				candidates = append(candidates, candidate{i, lines[i]})
			}
		}
	}

	for _, c := range candidates {
		if rec.Company == "" {
			if company := findCompany(c.text); company != "" {
				rec.Company = company
				consumed[c.idx] = true
			}
		}
		if rec.Years == "" {
			if year, _ := findYear(c.text); year != "" {
				rec.Years = year
				consumed[c.idx] = true
			}
		}
	}

	var desc []string
	for i, line := range lines {
		if consumed[i] {
			continue
		}
		if line = strings.TrimSpace(bulletRe.ReplaceAllString(line, "")); line != "" {
			desc = append(desc, line)
		}
	}
	rec.Description = strings.TrimSpace(multiSpaceRe.ReplaceAllString(strings.Join(desc, " "), " "))
	return rec
}

// ExtractExperience 解析工作经历章节
func ExtractExperience(section string) []types.ExperienceRecord {
	records := make([]types.ExperienceRecord, 0)
	if strings.TrimSpace(section) == "" {
		return records
	}
	for _, entry := range splitRunes(experienceSplitRe, section) {
		rec := parseExperienceEntry(entry)
		if rec.Title == "" && rec.Company == "" {
			// 空行隔开的要点段落归到上一条经历
			if n := len(records); n > 0 && rec.Description != "" {
				records[n-1].Description = strings.TrimSpace(records[n-1].Description + " " + rec.Description)
			}
			continue
		}
		records = append(records, rec)
	}
	return mergeExperience(records)
}

// mergeExperience 公司行在前、职位行在后被拆开时合并回一条
func mergeExperience(records []types.ExperienceRecord) []types.ExperienceRecord {
	out := make([]types.ExperienceRecord, 0, len(records))
	for i := 0; i < len(records); i++ {
		cur := records[i]
		if cur.Title == "" && i+1 < len(records) && records[i+1].Title != "" && records[i+1].Company == "" {
			next := records[i+1]
			next.Company = cur.Company
			if next.Years == "" {
				next.Years = cur.Years
			}
			next.Description = strings.TrimSpace(strings.Join([]string{cur.Description, next.Description}, " "))
			cur = next
			i++
		}
		out = append(out, cur)
	}
	return out
}
