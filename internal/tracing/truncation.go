package tracing

import (
	"strings"
)

const (
	// DefaultMaxLength 默认最大属性长度
	DefaultMaxLength = 200

	// MaxFilenameLength 上传文件名最大长度
	MaxFilenameLength = 100
)

// 属性名包含这些关键字时值需要掩码
var piiKeywords = []string{"email", "phone", "name", "姓名", "address", "地址", "token", "secret", "password"}

// SafeAttributeValue 敏感字段掩码，其余字段按 maxLength 截断
func SafeAttributeValue(name, value string, maxLength int) string {
	lower := strings.ToLower(name)
	for _, kw := range piiKeywords {
		if strings.Contains(lower, kw) {
			return MaskPII(value)
		}
	}
	return TruncateString(value, maxLength)
}

// MaskPII 保留首尾字符，中间用 * 代替
//
//	"张三" -> "张*"，"王小明" -> "王*明"，"13812345678" -> "13*******78"
func MaskPII(value string) string {
	runes := []rune(value)
	n := len(runes)
	switch {
	case n == 0:
		return ""
	case n == 1:
		return "*"
	case n == 2:
		return string(runes[:1]) + "*"
	case n <= 4:
		return string(runes[:1]) + strings.Repeat("*", n-2) + string(runes[n-1:])
	default:
		return string(runes[:2]) + strings.Repeat("*", n-4) + string(runes[n-2:])
	}
}

// TruncateString 超长时保留首尾，中间用 ... 连接
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}
	half := (maxLength - 3) / 2
	if half < 1 {
		half = 1
	}
	return string(runes[:half]) + "..." + string(runes[len(runes)-half:])
}

// SafeFilename 上传文件名
func SafeFilename(name string) string {
	return TruncateString(name, MaxFilenameLength)
}
