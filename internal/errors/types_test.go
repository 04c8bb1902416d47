package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_WithCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := NewStoreConnectionError().WithCause(cause)

	assert.Equal(t, ErrCodeStoreConnection, err.Code)
	assert.Equal(t, StageFetching, err.Stage)
	assert.Contains(t, err.Error(), "Failed to retrieve the file.")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, cause, stderrors.Unwrap(err))
}

func TestAppError_WithStage(t *testing.T) {
	// 已带阶段的错误不会被覆盖
	err := NewGenerationFailure().WithStage(StageRetrieving)
	assert.Equal(t, StageGenerating, err.Stage)

	// 不预设阶段的错误跟随首个标记
	cerr := NewEmbeddingFailure().WithStage(StageRetrieving)
	assert.Equal(t, StageRetrieving, cerr.Stage)

	// 未带阶段的错误会被标记
	verr := NewValidationError("question is required").WithStage(StageFetching)
	assert.Equal(t, StageFetching, verr.Stage)
}

func TestAppError_UserMessageHidesCause(t *testing.T) {
	err := NewEmbeddingFailure().WithCause(fmt.Errorf("api key sk-secret rejected"))
	// Message是面向用户的字段，不能包含底层细节
	assert.Equal(t, "Failed to build the vector index.", err.Message)
}

func TestFrom(t *testing.T) {
	appErr := NewFileNotFound()
	assert.Same(t, appErr, From(appErr))

	wrapped := fmt.Errorf("handler: %w", appErr)
	assert.Same(t, appErr, From(wrapped))

	plain := From(fmt.Errorf("boom"))
	assert.Equal(t, ErrCodeInternalServer, plain.Code)

	assert.Nil(t, From(nil))
}
