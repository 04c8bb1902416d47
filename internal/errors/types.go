package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码（按流水线阶段划分）
const (
	// 文件获取阶段
	ErrCodeInvalidIdentifier ErrorCode = "INVALID_IDENTIFIER"
	ErrCodeFileNotFound      ErrorCode = "FILE_NOT_FOUND"
	ErrCodeStoreConnection   ErrorCode = "STORE_CONNECTION_ERROR"

	// 文本抽取阶段
	ErrCodeUnreadableDocument ErrorCode = "UNREADABLE_DOCUMENT"

	// 索引构建阶段
	ErrCodeEmptyCorpus      ErrorCode = "EMPTY_CORPUS"
	ErrCodeEmbeddingFailure ErrorCode = "EMBEDDING_FAILURE"

	// 生成阶段
	ErrCodeGenerationFailure ErrorCode = "GENERATION_FAILURE"

	// 通用错误
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInternalServer   ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrCodeUploadFailed     ErrorCode = "UPLOAD_FAILED"
)

// Stage 流水线阶段标识
type Stage string

const (
	StageFetching   Stage = "fetching"
	StageExtracting Stage = "extracting"
	StageIndexing   Stage = "indexing"
	StageRetrieving Stage = "retrieving"
	StageComposing  Stage = "composing"
	StageGenerating Stage = "generating"
)

// AppError 应用错误结构体
type AppError struct {
	Code     ErrorCode `json:"code"`
	Stage    Stage     `json:"stage,omitempty"`
	Message  string    `json:"message"`
	HTTPCode int       `json:"-"`
	Cause    error     `json:"-"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause 添加错误原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithStage 标记发生错误的阶段
func (e *AppError) WithStage(stage Stage) *AppError {
	if e.Stage == "" {
		e.Stage = stage
	}
	return e
}

// 错误构造函数。Message是面向用户的简短描述，不暴露内部细节。

// NewInvalidIdentifier 创建无效文件标识错误
func NewInvalidIdentifier(id string) *AppError {
	return &AppError{
		Code:     ErrCodeInvalidIdentifier,
		Stage:    StageFetching,
		Message:  "Invalid file identifier.",
		HTTPCode: http.StatusBadRequest,
		Cause:    fmt.Errorf("malformed identifier %q", id),
	}
}

// NewFileNotFound 创建文件不存在错误
func NewFileNotFound() *AppError {
	return &AppError{
		Code:     ErrCodeFileNotFound,
		Stage:    StageFetching,
		Message:  "File not found.",
		HTTPCode: http.StatusNotFound,
	}
}

// NewStoreConnectionError 创建存储连接错误（区别于文件不存在）
func NewStoreConnectionError() *AppError {
	return &AppError{
		Code:     ErrCodeStoreConnection,
		Stage:    StageFetching,
		Message:  "Failed to retrieve the file.",
		HTTPCode: http.StatusBadGateway,
	}
}

// NewUnreadableDocument 创建文档无法解析错误
func NewUnreadableDocument() *AppError {
	return &AppError{
		Code:     ErrCodeUnreadableDocument,
		Stage:    StageExtracting,
		Message:  "Failed to read the document.",
		HTTPCode: http.StatusUnprocessableEntity,
	}
}

// NewEmptyCorpus 创建无可抽取文本错误。阶段由调用方标记：
// 提取阶段发现空文档，或建索引时收到空语料，语义不同。
func NewEmptyCorpus() *AppError {
	return &AppError{
		Code:     ErrCodeEmptyCorpus,
		Message:  "No readable text found in the document.",
		HTTPCode: http.StatusUnprocessableEntity,
	}
}

// NewEmbeddingFailure 创建向量化失败错误。阶段由调用方标记：
// 建索引时向量化文档单元失败，或检索时向量化查询失败，阶段不同。
func NewEmbeddingFailure() *AppError {
	return &AppError{
		Code:     ErrCodeEmbeddingFailure,
		Message:  "Failed to build the vector index.",
		HTTPCode: http.StatusBadGateway,
	}
}

// NewGenerationFailure 创建答案生成失败错误
func NewGenerationFailure() *AppError {
	return &AppError{
		Code:     ErrCodeGenerationFailure,
		Stage:    StageGenerating,
		Message:  "Failed to generate an answer.",
		HTTPCode: http.StatusBadGateway,
	}
}

// NewValidationError 创建请求验证错误
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:     ErrCodeValidationFailed,
		Message:  message,
		HTTPCode: http.StatusBadRequest,
	}
}

// NewInternalError 创建内部错误
func NewInternalError(message string) *AppError {
	return &AppError{
		Code:     ErrCodeInternalServer,
		Message:  message,
		HTTPCode: http.StatusInternalServerError,
	}
}

// From 将任意error转换为AppError，未知错误包装为内部错误
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError("An unexpected error occurred.").WithCause(err)
}
