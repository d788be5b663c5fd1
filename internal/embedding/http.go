package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	einoemb "github.com/cloudwego/eino/components/embedding"
	"github.com/rs/zerolog"

	"resume-match-go/internal/config"
	"resume-match-go/internal/logger"
)

const defaultEmbeddingURL = "https://dashscope.aliyuncs.com/compatible-mode/v1/embeddings"

// HTTPEmbedder 调用 OpenAI 兼容的 /embeddings 接口，实现 eino embedding.Embedder
type HTTPEmbedder struct {
	apiKey     string
	model      string
	dimensions int
	httpClient *http.Client
	baseURL    string
	logger     zerolog.Logger
}

// NewHTTPEmbedder 创建 HTTP 向量后端
func NewHTTPEmbedder(apiKey string, cfg config.EmbeddingConfig) (*HTTPEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API密钥不能为空")
	}
	model := cfg.Model
	if model == "" {
		model = "text-embedding-v3"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultEmbeddingURL
	}
	return &HTTPEmbedder{
		apiKey:     apiKey,
		model:      model,
		dimensions: cfg.Dimensions,
		httpClient: &http.Client{Timeout: config.GetDuration(cfg.Timeout, 30*time.Second)},
		baseURL:    baseURL,
		logger:     logger.Component("http_embedder"),
	}, nil
}

type embeddingRequest struct {
	Input          []string `json:"input"`
	Model          string   `json:"model"`
	Dimensions     int      `json:"dimensions,omitempty"`
	EncodingFormat string   `json:"encoding_format,omitempty"`
}

type embeddingResponse struct {
	Object string          `json:"object"`
	Data   []embeddingData `json:"data"`
	Model  string          `json:"model"`
	Usage  struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
	ID    string    `json:"id,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

type embeddingData struct {
	Object    string    `json:"object"`
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param"`
	Code    string `json:"code"`
}

// EmbedStrings 批量向量化，结果按请求顺序返回
func (e *HTTPEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...einoemb.Option) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}
	options := &einoemb.Options{}
	einoemb.GetCommonOptions(options, opts...)
	model := e.model
	if options.Model != nil && *options.Model != "" {
		model = *options.Model
	}

	body, err := json.Marshal(embeddingRequest{
		Input:          texts,
		Model:          model,
		Dimensions:     e.dimensions,
		EncodingFormat: "float",
	})
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API调用失败, 状态码: %d, 响应: %s", resp.StatusCode, truncate(string(raw), 256))
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("API返回错误: %s (type=%s, code=%s)", parsed.Error.Message, parsed.Error.Type, parsed.Error.Code)
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("返回向量数量不符: 期望 %d, 实际 %d", len(texts), len(parsed.Data))
	}

	sort.SliceStable(parsed.Data, func(i, j int) bool { return parsed.Data[i].Index < parsed.Data[j].Index })
	out := make([][]float64, len(parsed.Data))
	for i, d := range parsed.Data {
		out[i] = d.Embedding
	}

	e.logger.Debug().
		Int("texts", len(texts)).
		Str("model", model).
		Int("total_tokens", parsed.Usage.TotalTokens).
		Dur("elapsed", time.Since(start)).
		Msg("向量化完成")
	return out, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
