package parser

import (
	"math"
	"regexp"
	"strconv"
	"time"

	"resume-match-go/internal/types"
)

var (
	presentRe  = regexp.MustCompile(`(?i)\b(?:present|current)\b`)
	fourDigits = regexp.MustCompile(`\b\d{4}\b`)
)

// TenureCalculator 根据经历的年份区间计算总工龄
type TenureCalculator struct {
	Now func() time.Time
}

// NewTenureCalculator now 为空时使用系统时间
func NewTenureCalculator(now func() time.Time) *TenureCalculator {
	if now == nil {
		now = time.Now
	}
	return &TenureCalculator{Now: now}
}

// Months 单条经历贡献的月数：区间按首尾年份闭区间计算，单个年份计 12 个月
func (c *TenureCalculator) Months(years string) int {
	if years == "" {
		return 0
	}
	years = presentRe.ReplaceAllString(years, strconv.Itoa(c.Now().Year()))
	found := fourDigits.FindAllString(years, -1)
	switch {
	case len(found) >= 2:
		start, _ := strconv.Atoi(found[0])
		end, _ := strconv.Atoi(found[len(found)-1])
		if start <= end {
			return (end - start + 1) * 12
		}
		return 0
	case len(found) == 1:
		return 12
	}
	return 0
}

// Total 总工龄（年），保留一位小数；没有可用年份时为 0.0
func (c *TenureCalculator) Total(records []types.ExperienceRecord) float64 {
	months := 0
	for _, r := range records {
		months += c.Months(r.Years)
	}
	if months == 0 {
		return 0
	}
	return math.Round(float64(months)/12*10) / 10
}
