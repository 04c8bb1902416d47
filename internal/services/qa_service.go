package services

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eduhub/tutor-go/internal/config"
	apperrors "github.com/eduhub/tutor-go/internal/errors"
	"github.com/eduhub/tutor-go/internal/logger"
	"github.com/eduhub/tutor-go/internal/rag"
	"github.com/eduhub/tutor-go/internal/storage"
)

// AskRequest 问答请求体
type AskRequest struct {
	Question string `json:"question" validate:"required"`
	FileID   string `json:"fileId" validate:"required"`
}

// AskResult 问答结果
type AskResult struct {
	Answer   string
	Matches  int
	Duration time.Duration
}

// QAService 文档问答编排服务。
// 每次请求独立走完取件、提取、建索引、检索、组装、生成的流水线，任一阶段失败即终止。
type QAService struct {
	store     storage.BlobStore
	extractor rag.Extractor
	embedder  rag.Embedder
	generator *rag.AnswerGenerator
	retrieval config.RetrievalConfig
	metrics   *MetricsService
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewQAService 创建问答服务。metrics可为nil。
func NewQAService(
	store storage.BlobStore,
	extractor rag.Extractor,
	embedder rag.Embedder,
	generator *rag.AnswerGenerator,
	retrieval config.RetrievalConfig,
	metrics *MetricsService,
) *QAService {
	return &QAService{
		store:     store,
		extractor: extractor,
		embedder:  embedder,
		generator: generator,
		retrieval: retrieval,
		metrics:   metrics,
		validate:  validator.New(),
		logger:    logger.GetLogger(),
	}
}

// Ask 回答基于指定文档的问题
func (s *QAService) Ask(ctx context.Context, req AskRequest) (*AskResult, error) {
	start := time.Now()
	s.metrics.RecordRequest()

	if err := s.validate.Struct(req); err != nil {
		// 请求数=成功数+失败数恒成立，校验失败也计入失败
		s.metrics.RecordFailure("validation")
		return nil, apperrors.NewValidationError("question and fileId are required")
	}

	s.logger.Info("Question received",
		zap.String("file_id", req.FileID),
		zap.Int("question_length", len(req.Question)))

	// 取件
	file, err := s.store.Fetch(ctx, req.FileID)
	if err != nil {
		return nil, s.fail(err, apperrors.StageFetching, req.FileID)
	}

	// 提取
	units, err := s.extractor.Extract(file.Data, file.Name)
	if err != nil {
		return nil, s.fail(err, apperrors.StageExtracting, req.FileID)
	}

	// 建索引
	index, err := rag.BuildIndex(ctx, s.embedder, units)
	if err != nil {
		return nil, s.fail(err, apperrors.StageIndexing, req.FileID)
	}

	// 检索
	matches, err := index.Search(ctx, req.Question, s.retrieval.TopK, s.retrieval.MinScore)
	if err != nil {
		return nil, s.fail(err, apperrors.StageRetrieving, req.FileID)
	}

	// 组装与生成
	prompt := rag.ComposePrompt(req.Question, matches)
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, s.fail(err, apperrors.StageGenerating, req.FileID)
	}

	duration := time.Since(start)
	s.metrics.RecordAnswer()
	s.metrics.ObserveDuration(duration)
	s.logger.Info("Answer generated",
		zap.String("file_id", req.FileID),
		zap.Int("matches", len(matches)),
		zap.Duration("duration", duration))

	return &AskResult{
		Answer:   answer,
		Matches:  len(matches),
		Duration: duration,
	}, nil
}

// fail 统一失败处理：归一为业务错误、补齐阶段标记、记录日志与指标
func (s *QAService) fail(err error, stage apperrors.Stage, fileID string) *apperrors.AppError {
	appErr := apperrors.From(err).WithStage(stage)
	s.metrics.RecordFailure(string(appErr.Stage))
	s.logger.Error("Question answering failed",
		zap.String("file_id", fileID),
		zap.String("stage", string(appErr.Stage)),
		zap.String("code", string(appErr.Code)),
		zap.Error(appErr))
	return appErr
}
