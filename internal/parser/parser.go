// Package parser 把简历纯文本整理成结构化字段：姓名、联系方式、技能、教育、工作经历和工龄。
//
// 所有启发式规则都是"尽力而为"：任何字段找不到都只是缺失，不会返回错误。
package parser

import (
	"time"

	"github.com/rs/zerolog"

	"resume-match-go/internal/config"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/types"
)

// ParsedResume 一份简历的解析结果
type ParsedResume struct {
	Text                 string // 规范化后的全文
	Name                 string
	Email                string
	Phone                string
	Skills               []string
	Education            []types.EducationRecord
	Experience           []types.ExperienceRecord
	TotalExperienceYears float64
}

// Empty 规范化后没有任何文本
func (r ParsedResume) Empty() bool {
	return r.Text == ""
}

// Parser 组合规范化、字段抽取、章节抽取和工龄计算
type Parser struct {
	skills          []string
	nameSearchLines int
	nerWindow       int
	persons         PersonRecognizer
	tenure          *TenureCalculator
	nameChain       []nameStrategy
	logger          zerolog.Logger
}

// Option Parser 的配置选项
type Option func(*Parser)

// WithPersonRecognizer 设置人名识别兜底，传 nil 关闭
func WithPersonRecognizer(r PersonRecognizer) Option {
	return func(p *Parser) {
		p.persons = r
	}
}

// WithClock 设置计算 "Present" 时使用的时钟
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		p.tenure = NewTenureCalculator(now)
	}
}

// WithSkills 在内置词表基础上追加技能
func WithSkills(extra ...string) Option {
	return func(p *Parser) {
		p.skills = mergeVocabulary(p.skills, extra)
	}
}

// WithNameSearchLines 设置姓名搜索的行数
func WithNameSearchLines(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.nameSearchLines = n
		}
	}
}

// WithNERWindow 设置人名识别的字符窗口
func WithNERWindow(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.nerWindow = n
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(p *Parser) {
		p.logger = l
	}
}

// OptionsFromConfig 把 parser 配置段转换成选项
func OptionsFromConfig(cfg config.ParserConfig) []Option {
	opts := []Option{
		WithNameSearchLines(cfg.NameSearchLines),
		WithNERWindow(cfg.NERWindowChars),
	}
	if len(cfg.ExtraSkills) > 0 {
		opts = append(opts, WithSkills(cfg.ExtraSkills...))
	}
	if !cfg.EnableNER {
		opts = append(opts, WithPersonRecognizer(nil))
	}
	return opts
}

// New 创建 Parser，默认启用 prose 人名识别
func New(opts ...Option) *Parser {
	p := &Parser{
		skills:          mergeVocabulary(DefaultSkills, nil),
		nameSearchLines: 7,
		nerWindow:       500,
		persons:         NewProseRecognizer(),
		tenure:          NewTenureCalculator(nil),
		logger:          logger.Component("parser"),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.nameChain = []nameStrategy{
		{name: "line", find: lineName},
		{name: "inline", find: inlineName},
		{name: "ner", find: nerName(p.persons, p.nerWindow)},
	}
	return p
}

// Skills 当前使用的技能词表
func (p *Parser) Skills() []string {
	return append([]string(nil), p.skills...)
}

// ExtractName 依次尝试整行、行内、命名实体三种策略
func (p *Parser) ExtractName(text string) string {
	head := headLines(text, p.nameSearchLines)
	for _, s := range p.nameChain {
		if name, ok := s.find(head, text); ok {
			p.logger.Debug().Str("strategy", s.name).Str("name", name).Msg("识别到姓名")
			return name
		}
	}
	p.logger.Debug().Msg("未识别到姓名")
	return ""
}

// EducationSection 定位教育章节并解析
func (p *Parser) EducationSection(text string) []types.EducationRecord {
	body, ok := educationLocator.locate(text)
	if !ok {
		p.logger.Debug().Msg("未找到教育章节标题")
		return make([]types.EducationRecord, 0)
	}
	return ExtractEducation(body)
}

// ExperienceSection 定位工作经历章节并解析
func (p *Parser) ExperienceSection(text string) []types.ExperienceRecord {
	body, ok := experienceLocator.locate(text)
	if !ok {
		p.logger.Debug().Msg("未找到工作经历章节标题")
		return make([]types.ExperienceRecord, 0)
	}
	return ExtractExperience(body)
}

// Parse 解析一份简历；空文本返回 Empty() 为 true 的结果
func (p *Parser) Parse(raw string) ParsedResume {
	text := Normalize(raw)
	res := ParsedResume{
		Text:       text,
		Skills:     make([]string, 0),
		Education:  make([]types.EducationRecord, 0),
		Experience: make([]types.ExperienceRecord, 0),
	}
	if text == "" {
		p.logger.Warn().Msg("简历规范化后为空")
		return res
	}

	res.Name = p.ExtractName(text)
	res.Email = ExtractEmail(text)
	res.Phone = ExtractPhone(text)
	res.Skills = MatchSkills(text, p.skills)
	res.Education = p.EducationSection(text)
	res.Experience = p.ExperienceSection(text)
	res.TotalExperienceYears = p.tenure.Total(res.Experience)

	p.logger.Debug().
		Bool("has_name", res.Name != "").
		Bool("has_email", res.Email != "").
		Bool("has_phone", res.Phone != "").
		Int("skills", len(res.Skills)).
		Int("education", len(res.Education)).
		Int("experience", len(res.Experience)).
		Float64("total_years", res.TotalExperienceYears).
		Msg("简历解析完成")
	return res
}
