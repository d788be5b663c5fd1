package parser

import (
	"regexp"
	"strings"
)

var (
	lineEndingRe = regexp.MustCompile(`\r\n?|\x{2028}|\x{2029}`)
	hspaceRe     = regexp.MustCompile(`[ \t\f\v\x{00A0}\x{3000}]+`)
	// 行尾/行首的水平空白
	edgeSpaceRe  = regexp.MustCompile(`(?m)^ +| +$`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
)

// Normalize 统一换行符、合并水平空白并去掉首尾空白。
// 连续空行最多保留一个，段落边界仍可用于经历拆分。
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToValidUTF8(text, "")
	text = lineEndingRe.ReplaceAllString(text, "\n")
	text = hspaceRe.ReplaceAllString(text, " ")
	text = edgeSpaceRe.ReplaceAllString(text, "")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
