package parser

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	ledongpdf "github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog"

	"resume-match-go/internal/logger"
)

// Extractor 从文件中提取纯文本，失败时返回空字符串
type Extractor interface {
	Extract(ctx context.Context, path string) string
}

// TextSource 单一格式的提取器，返回错误由 Registry 统一记录
type TextSource interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// PDFExtractor 先用 eino pdf 解析器，失败或为空时退回 ledongthuc/pdf
type PDFExtractor struct {
	eino    *pdf.PDFParser
	timeout time.Duration
}

// NewPDFExtractor 创建 PDF 提取器；eino 解析器创建失败时只使用后备实现
func NewPDFExtractor(ctx context.Context) *PDFExtractor {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	if err != nil {
		logger.Warn().Err(err).Msg("创建 eino PDF 解析器失败，仅使用后备解析")
		p = nil
	}
	return &PDFExtractor{eino: p, timeout: 30 * time.Second}
}

func (e *PDFExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("读取PDF文件失败: %w", err)
	}
	var errs []error
	if e.eino != nil {
		text, err := e.extractEino(ctx, data, path)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	text, err := extractPlainPDF(data)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return "", fmt.Errorf("PDF 文本提取失败: %v", errs)
	}
	return "", nil
}

func (e *PDFExtractor) extractEino(ctx context.Context, data []byte, uri string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("eino PDF parser panic: %v", r)
		}
	}()
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	docs, err := e.eino.Parse(ctx, bytes.NewReader(data), einoParser.WithURI(uri))
	if err != nil {
		return "", fmt.Errorf("eino PDF parser failed for %s: %w", uri, err)
	}
	var sb strings.Builder
	for i, doc := range docs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(doc.Content)
	}
	return sb.String(), nil
}

func extractPlainPDF(data []byte) (text string, err error) {
	// ledongthuc/pdf 遇到损坏文件可能 panic
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ledongthuc/pdf panic: %v", r)
		}
	}()
	r, err := ledongpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}
	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

var (
	docxParagraphRe = regexp.MustCompile(`</w:p>|<w:br/>|<w:cr/>`)
	docxTabRe       = regexp.MustCompile(`<w:tab/>`)
	xmlTagRe        = regexp.MustCompile(`<[^>]+>`)
)

// DocxExtractor 读取 docx 正文并去掉 XML 标签
type DocxExtractor struct{}

func (DocxExtractor) ExtractText(_ context.Context, path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer r.Close()
	return docxToText(r.Editable().GetContent()), nil
}

func docxToText(content string) string {
	content = docxParagraphRe.ReplaceAllString(content, "\n")
	content = docxTabRe.ReplaceAllString(content, "\t")
	content = xmlTagRe.ReplaceAllString(content, "")
	return html.UnescapeString(content)
}

// PlainTextExtractor 按 UTF-8 读取，非法字节丢弃
type PlainTextExtractor struct{}

func (PlainTextExtractor) ExtractText(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("读取文本文件失败: %w", err)
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

// Registry 按扩展名分发到具体的提取器
type Registry struct {
	sources  map[string]TextSource
	fallback TextSource
	logger   zerolog.Logger
}

// NewRegistry 注册 pdf、docx 和纯文本提取器
func NewRegistry(ctx context.Context) *Registry {
	r := &Registry{
		sources:  make(map[string]TextSource),
		fallback: PlainTextExtractor{},
		logger:   logger.Component("extractor"),
	}
	r.Register(".pdf", NewPDFExtractor(ctx))
	r.Register(".docx", DocxExtractor{})
	r.Register(".txt", PlainTextExtractor{})
	r.Register(".md", PlainTextExtractor{})
	return r
}

// Register 为扩展名注册提取器，扩展名不区分大小写
func (r *Registry) Register(ext string, src TextSource) {
	r.sources[strings.ToLower(ext)] = src
}

// Extract 提取失败只记录日志并返回空字符串
func (r *Registry) Extract(ctx context.Context, path string) string {
	src, ok := r.sources[strings.ToLower(filepath.Ext(path))]
	if !ok {
		src = r.fallback
	}
	text, err := src.ExtractText(ctx, path)
	if err != nil {
		r.logger.Warn().Err(err).Str("path", path).Msg("文本提取失败")
		return ""
	}
	return text
}

// ExtractBytes 把上传内容写入临时文件后提取，临时文件在返回前删除
func (r *Registry) ExtractBytes(ctx context.Context, filename string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(filename))
	f, err := os.CreateTemp("", "resume-*"+ext)
	if err != nil {
		r.logger.Warn().Err(err).Msg("创建临时文件失败")
		return ""
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil || cerr != nil {
		r.logger.Warn().AnErr("write", werr).AnErr("close", cerr).Str("file", filename).Msg("写入临时文件失败")
		return ""
	}
	return r.Extract(ctx, tmp)
}
