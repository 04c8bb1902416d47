package rag

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	apperrors "github.com/eduhub/tutor-go/internal/errors"
	"github.com/eduhub/tutor-go/internal/logger"
)

// Index 单次请求内的内存向量索引。
// 生命周期与一次问答请求相同，不持久化也不跨请求共享。
type Index struct {
	embedder  Embedder
	units     []TextUnit
	vectors   [][]float32
	dimension int
	logger    *zap.Logger
}

// BuildIndex 为全部文本单元生成向量并构建索引。
// 任一单元向量化失败则整体失败，保证索引完整可检索。
func BuildIndex(ctx context.Context, embedder Embedder, units []TextUnit) (*Index, error) {
	if len(units) == 0 {
		return nil, apperrors.NewEmptyCorpus()
	}
	if embedder == nil || !embedder.Ready() {
		return nil, apperrors.NewEmbeddingFailure()
	}

	log := logger.GetLogger()
	vectors := make([][]float32, 0, len(units))
	dimension := 0
	for i, unit := range units {
		vec, err := embedder.Embed(ctx, unit.Content)
		if err != nil {
			log.Error("Unit embedding failed",
				zap.String("source", unit.Source),
				zap.Int("page", unit.Page),
				zap.Error(err))
			return nil, apperrors.NewEmbeddingFailure().WithCause(err)
		}
		if dimension == 0 {
			dimension = len(vec)
		} else if len(vec) != dimension {
			log.Error("Embedding dimension mismatch",
				zap.Int("expected", dimension),
				zap.Int("got", len(vec)),
				zap.Int("unit", i))
			return nil, apperrors.NewEmbeddingFailure()
		}
		vectors = append(vectors, vec)
	}

	log.Info("Vector index built",
		zap.Int("units", len(units)),
		zap.Int("dimension", dimension))
	return &Index{
		embedder:  embedder,
		units:     units,
		vectors:   vectors,
		dimension: dimension,
		logger:    log,
	}, nil
}

// Size 索引内的单元数
func (idx *Index) Size() int {
	return len(idx.units)
}

// Search 向量化查询后按余弦相似度检索。
// 仅返回相似度不低于minScore的前k个单元，降序排列，同分按页序靠前优先。
func (idx *Index) Search(ctx context.Context, query string, k int, minScore float64) ([]RetrievedUnit, error) {
	queryVec, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		return nil, apperrors.NewEmbeddingFailure().WithCause(err)
	}

	var matches []RetrievedUnit
	for i, vec := range idx.vectors {
		score := cosineSimilarity(queryVec, vec)
		if score < minScore {
			continue
		}
		matches = append(matches, RetrievedUnit{Unit: idx.units[i], Score: score})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}

	idx.logger.Debug("Similarity search completed",
		zap.Int("candidates", len(idx.units)),
		zap.Int("matches", len(matches)))
	return matches, nil
}

// cosineSimilarity 余弦相似度。维度不一致或零向量返回0。
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
