package parser

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

// PersonRecognizer 命名实体识别，返回文本中的人名实体
type PersonRecognizer interface {
	Persons(text string) []string
}

// ProseRecognizer 基于 prose 内置模型的人名识别
type ProseRecognizer struct{}

// NewProseRecognizer 创建 prose 人名识别器
func NewProseRecognizer() *ProseRecognizer {
	return &ProseRecognizer{}
}

// Persons 返回 PERSON 标签的实体，失败时返回空
func (r *ProseRecognizer) Persons(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil
	}
	var persons []string
	for _, ent := range doc.Entities() {
		if ent.Label == "PERSON" {
			persons = append(persons, strings.TrimSpace(ent.Text))
		}
	}
	return persons
}

// shortestMultiWord 取至少两个词的实体中最短的一个，等长时取先出现的
func shortestMultiWord(entities []string) (string, bool) {
	best := ""
	for _, e := range entities {
		e = strings.TrimSpace(e)
		if len(strings.Fields(e)) < 2 {
			continue
		}
		if best == "" || len([]rune(e)) < len([]rune(best)) {
			best = e
		}
	}
	return best, best != ""
}
