package parser

import (
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	// 国家码要么带 +，要么后面跟分隔符，避免把 "2018-2019" 当成电话
	phoneRe = regexp.MustCompile(`(?:^|[^\d+])((?:\+\d{1,3}[ \t.\-]?|\d{1,3}[ \t.\-])?(?:\(\d{3}\)|\d{3})?[ \t.\-]?\d{3}[ \t.\-]?\d{4})\b`)

	nameLineRe   = regexp.MustCompile(`(?m)^[ \t]*([A-Z][a-z]+(?:[ \t-][A-Z][a-z]+){1,3}(?:[ \t]+[A-Z]\.?)?)[ \t]*$`)
	nameInlineRe = regexp.MustCompile(`\b([A-Z][a-z]+(?:[ \t-][A-Z][a-z]+){1,3})\b`)
)

// ExtractEmail 返回第一个邮箱地址
func ExtractEmail(text string) string {
	return emailRe.FindString(text)
}

// ExtractPhone 返回第一个电话号码
func ExtractPhone(text string) string {
	m := phoneRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// nameStrategy 姓名识别策略，按顺序尝试，第一个命中的生效
type nameStrategy struct {
	name string
	find func(head, text string) (string, bool)
}

func lineName(head, _ string) (string, bool) {
	m := nameLineRe.FindStringSubmatch(head)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func inlineName(head, _ string) (string, bool) {
	m := nameInlineRe.FindStringSubmatch(head)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func nerName(recognizer PersonRecognizer, window int) func(head, text string) (string, bool) {
	return func(_, text string) (string, bool) {
		if recognizer == nil {
			return "", false
		}
		return shortestMultiWord(recognizer.Persons(firstRunes(text, window)))
	}
}

// headLines 取前 n 个非空行
func headLines(text string, n int) string {
	lines := make([]string, 0, n)
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == n {
			break
		}
	}
	return strings.Join(lines, "\n")
}

func firstRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
