package controllers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/eduhub/tutor-go/app/bootstrap"
	apperrors "github.com/eduhub/tutor-go/internal/errors"
	"github.com/eduhub/tutor-go/internal/logger"
	"github.com/eduhub/tutor-go/internal/services"
)

// ChatController 文档问答接口
type ChatController struct {
	BaseController
}

// Ask 基于指定课程文档回答问题
// POST /generate-quiz
// 无论成败始终返回200，结果或错误写在响应体内，便于前端统一处理
func (c *ChatController) Ask() {
	var req services.AskRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		logger.Warn("Malformed ask request body", zap.Error(err))
		c.JSON(http.StatusOK, map[string]interface{}{
			"error": "Invalid request body.",
		})
		return
	}

	svc := bootstrap.GetApp().QAService()
	if svc == nil {
		c.JSON(http.StatusOK, map[string]interface{}{
			"error": "Service not ready.",
		})
		return
	}

	result, err := svc.Ask(c.Ctx.Request.Context(), req)
	if err != nil {
		appErr := apperrors.From(err)
		c.JSON(http.StatusOK, map[string]interface{}{
			"error": appErr.Message,
		})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"response": result.Answer,
	})
}
