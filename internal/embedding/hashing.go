package embedding

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
	einoemb "github.com/cloudwego/eino/components/embedding"
)

var hashTokenRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// HashingEmbedder 本地特征哈希向量：词和相邻词对哈希到带符号的桶，最后做 L2 归一化。
// 不依赖外部服务，相同文本总是得到相同向量。
type HashingEmbedder struct {
	dim int
}

func NewHashingEmbedder(dim int) *HashingEmbedder {
	return &HashingEmbedder{dim: dim}
}

func (h *HashingEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...einoemb.Option) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = h.vector(t)
	}
	return out, nil
}

func (h *HashingEmbedder) vector(text string) []float64 {
	v := make([]float64, h.dim)
	if h.dim == 0 {
		return v
	}
	tokens := hashTokenRe.FindAllString(strings.ToLower(text), -1)
	for i, tok := range tokens {
		h.add(v, tok, 1)
		if i > 0 {
			h.add(v, tokens[i-1]+" "+tok, 0.5)
		}
	}
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] /= norm
	}
	return v
}

func (h *HashingEmbedder) add(v []float64, feature string, weight float64) {
	sum := xxhash.Sum64String(feature)
	idx := sum % uint64(h.dim)
	if sum>>63 == 1 {
		weight = -weight
	}
	v[idx] += weight
}
