package controllers

import (
	"net/http"

	"github.com/eduhub/tutor-go/app/bootstrap"
)

// RootController 服务根路径
type RootController struct {
	BaseController
}

// Index 服务标识
func (c *RootController) Index() {
	c.JSON(http.StatusOK, map[string]interface{}{
		"service": "tutor-go",
		"status":  "running",
	})
}

// HealthController 健康检查
type HealthController struct {
	BaseController
}

// Health 服务与底层存储健康状态
func (c *HealthController) Health() {
	status := "ok"
	storageStatus := "ok"

	if svc := bootstrap.GetApp().FileService(); svc != nil {
		if err := svc.HealthCheck(c.Ctx.Request.Context()); err != nil {
			status = "degraded"
			storageStatus = "unreachable"
		}
	} else {
		status = "degraded"
		storageStatus = "uninitialized"
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"status":  status,
		"storage": storageStatus,
	})
}
