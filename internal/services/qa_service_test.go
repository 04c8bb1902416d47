package services

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eduhub/tutor-go/internal/config"
	apperrors "github.com/eduhub/tutor-go/internal/errors"
	"github.com/eduhub/tutor-go/internal/rag"
	"github.com/eduhub/tutor-go/internal/storage"
)

// MockBlobStore 模拟对象存储
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Fetch(ctx context.Context, id string) (*storage.StoredFile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.StoredFile), args.Error(1)
}

func (m *MockBlobStore) Upload(ctx context.Context, name, contentType string, metadata map[string]string, r io.Reader, size int64) (string, error) {
	args := m.Called(ctx, name, contentType, metadata, r, size)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) List(ctx context.Context, metadata map[string]string) ([]storage.FileInfo, error) {
	args := m.Called(ctx, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.FileInfo), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBlobStore) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockExtractor 模拟文本提取器
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(data []byte, source string) ([]rag.TextUnit, error) {
	args := m.Called(data, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rag.TextUnit), args.Error(1)
}

// fixedEmbedder 测试用嵌入器，所有文本返回同一向量
type fixedEmbedder struct{}

func (fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}
func (fixedEmbedder) Dimensions() int { return 3 }
func (fixedEmbedder) Ready() bool     { return true }

// fixedModel 测试用生成模型
type fixedModel struct {
	answer string
	err    error
}

func (m fixedModel) Generate(ctx context.Context, system, user string) (string, error) {
	return m.answer, m.err
}
func (m fixedModel) Ready() bool { return true }

func newTestService(store storage.BlobStore, ex rag.Extractor, model rag.ChatModel) *QAService {
	return NewQAService(store, ex, fixedEmbedder{}, rag.NewAnswerGenerator(model, 1),
		config.RetrievalConfig{TopK: 10, MinScore: 0.1}, nil)
}

const testFileID = "507f1f77bcf86cd799439011"

// TestAskSuccess 完整流水线成功
func TestAskSuccess(t *testing.T) {
	store := new(MockBlobStore)
	ex := new(MockExtractor)

	store.On("Fetch", mock.Anything, testFileID).
		Return(&storage.StoredFile{ID: testFileID, Name: "lecture.pdf", Data: []byte("pdf-bytes")}, nil)
	ex.On("Extract", []byte("pdf-bytes"), "lecture.pdf").
		Return([]rag.TextUnit{{Content: "Attention weights tokens.", Page: 1, Source: "lecture.pdf"}}, nil)

	svc := newTestService(store, ex, fixedModel{answer: "Attention assigns weights to tokens."})
	result, err := svc.Ask(context.Background(), AskRequest{Question: "What is attention?", FileID: testFileID})

	require.NoError(t, err)
	assert.Equal(t, "Attention assigns weights to tokens.", result.Answer)
	assert.Equal(t, 1, result.Matches)
	store.AssertExpectations(t)
	ex.AssertExpectations(t)
}

// TestAskValidation 缺失字段直接拒绝
func TestAskValidation(t *testing.T) {
	svc := newTestService(new(MockBlobStore), new(MockExtractor), fixedModel{})

	for _, req := range []AskRequest{
		{},
		{Question: "q"},
		{FileID: testFileID},
	} {
		_, err := svc.Ask(context.Background(), req)
		assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.From(err).Code)
	}
}

// TestAskMetricsAccounting 每个请求要么计入成功要么计入失败
func TestAskMetricsAccounting(t *testing.T) {
	store := new(MockBlobStore)
	ex := new(MockExtractor)
	store.On("Fetch", mock.Anything, testFileID).
		Return(&storage.StoredFile{ID: testFileID, Name: "lecture.pdf", Data: []byte("x")}, nil)
	ex.On("Extract", mock.Anything, "lecture.pdf").
		Return([]rag.TextUnit{{Content: "text", Page: 1}}, nil)

	metrics := NewMetricsService(prometheus.NewRegistry())
	svc := NewQAService(store, ex, fixedEmbedder{},
		rag.NewAnswerGenerator(fixedModel{answer: "ok"}, 1),
		config.RetrievalConfig{TopK: 10, MinScore: 0.1}, metrics)

	// 校验失败的请求也计入失败指标
	_, err := svc.Ask(context.Background(), AskRequest{})
	require.Error(t, err)

	// 成功的请求计入成功指标
	_, err = svc.Ask(context.Background(), AskRequest{Question: "q", FileID: testFileID})
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requestsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.answersTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.failuresByStage.WithLabelValues("validation")))
}

// TestAskFileNotFound 取件失败后短路，后续阶段不执行
func TestAskFileNotFound(t *testing.T) {
	store := new(MockBlobStore)
	ex := new(MockExtractor)
	store.On("Fetch", mock.Anything, testFileID).Return(nil, apperrors.NewFileNotFound())

	svc := newTestService(store, ex, fixedModel{})
	_, err := svc.Ask(context.Background(), AskRequest{Question: "q", FileID: testFileID})

	appErr := apperrors.From(err)
	assert.Equal(t, apperrors.ErrCodeFileNotFound, appErr.Code)
	assert.Equal(t, apperrors.StageFetching, appErr.Stage)
	ex.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

// TestAskEmptyCorpus 空白文档提取出空序列不算提取错误，建索引阶段判空失败
func TestAskEmptyCorpus(t *testing.T) {
	store := new(MockBlobStore)
	ex := new(MockExtractor)
	store.On("Fetch", mock.Anything, testFileID).
		Return(&storage.StoredFile{ID: testFileID, Name: "blank.pdf", Data: []byte("x")}, nil)
	ex.On("Extract", mock.Anything, "blank.pdf").Return([]rag.TextUnit{}, nil)

	svc := newTestService(store, ex, fixedModel{})
	_, err := svc.Ask(context.Background(), AskRequest{Question: "q", FileID: testFileID})

	appErr := apperrors.From(err)
	assert.Equal(t, apperrors.ErrCodeEmptyCorpus, appErr.Code)
	assert.Equal(t, apperrors.StageIndexing, appErr.Stage)
}

// queryFailEmbedder 仅在向量化查询文本时失败
type queryFailEmbedder struct {
	question string
}

func (e queryFailEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == e.question {
		return nil, errors.New("query embedding rejected")
	}
	return []float32{1, 0, 0}, nil
}
func (e queryFailEmbedder) Dimensions() int { return 3 }
func (e queryFailEmbedder) Ready() bool     { return true }

// TestAskQueryEmbeddingFailure 查询向量化失败标记在检索阶段而非建索引阶段
func TestAskQueryEmbeddingFailure(t *testing.T) {
	store := new(MockBlobStore)
	ex := new(MockExtractor)
	store.On("Fetch", mock.Anything, testFileID).
		Return(&storage.StoredFile{ID: testFileID, Name: "lecture.pdf", Data: []byte("x")}, nil)
	ex.On("Extract", mock.Anything, "lecture.pdf").
		Return([]rag.TextUnit{{Content: "text", Page: 1}}, nil)

	question := "What is attention?"
	svc := NewQAService(store, ex, queryFailEmbedder{question: question},
		rag.NewAnswerGenerator(fixedModel{}, 1),
		config.RetrievalConfig{TopK: 10, MinScore: 0.1}, nil)

	_, err := svc.Ask(context.Background(), AskRequest{Question: question, FileID: testFileID})

	appErr := apperrors.From(err)
	assert.Equal(t, apperrors.ErrCodeEmbeddingFailure, appErr.Code)
	assert.Equal(t, apperrors.StageRetrieving, appErr.Stage)
}

// TestAskGenerationFailure 生成失败标记在生成阶段并保留原因
func TestAskGenerationFailure(t *testing.T) {
	store := new(MockBlobStore)
	ex := new(MockExtractor)
	store.On("Fetch", mock.Anything, testFileID).
		Return(&storage.StoredFile{ID: testFileID, Name: "lecture.pdf", Data: []byte("x")}, nil)
	ex.On("Extract", mock.Anything, "lecture.pdf").
		Return([]rag.TextUnit{{Content: "text", Page: 1}}, nil)

	svc := newTestService(store, ex, fixedModel{err: errors.New("upstream timeout")})
	_, err := svc.Ask(context.Background(), AskRequest{Question: "q", FileID: testFileID})

	appErr := apperrors.From(err)
	assert.Equal(t, apperrors.ErrCodeGenerationFailure, appErr.Code)
	assert.Equal(t, apperrors.StageGenerating, appErr.Stage)
	assert.EqualError(t, appErr.Cause, "upstream timeout")
}
