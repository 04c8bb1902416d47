package controllers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/eduhub/tutor-go/app/bootstrap"
	"github.com/eduhub/tutor-go/internal/logger"
	"github.com/eduhub/tutor-go/internal/services"
)

// FileController 课程文档管理接口
type FileController struct {
	BaseController
}

// Upload 上传课程文档
// POST /api/files/upload （multipart表单，file字段为文档，studentId/courseId/chapterId为可选元数据）
func (c *FileController) Upload() {
	file, header, err := c.GetFile("file")
	if err != nil {
		c.JSONError(http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	svc := bootstrap.GetApp().FileService()
	if svc == nil {
		c.JSONError(http.StatusServiceUnavailable, "Service not ready.")
		return
	}

	id, err := svc.Upload(c.Ctx.Request.Context(), services.UploadRequest{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		StudentID:   c.GetString("studentId"),
		CourseID:    c.GetString("courseId"),
		ChapterID:   c.GetString("chapterId"),
		Reader:      file,
	})
	if err != nil {
		c.JSONAppError(err)
		return
	}

	logger.Info("Upload accepted", zap.String("file_id", id), zap.String("filename", header.Filename))
	c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    map[string]string{"fileId": id},
	})
}

// List 列出课程文档，支持studentId/courseId/chapterId查询参数过滤
// GET /api/files
func (c *FileController) List() {
	svc := bootstrap.GetApp().FileService()
	if svc == nil {
		c.JSONError(http.StatusServiceUnavailable, "Service not ready.")
		return
	}

	infos, err := svc.List(c.Ctx.Request.Context(),
		c.GetString("studentId"),
		c.GetString("courseId"),
		c.GetString("chapterId"))
	if err != nil {
		c.JSONAppError(err)
		return
	}

	c.JSONSuccess(infos)
}

// Delete 删除课程文档
// DELETE /api/files/:id
func (c *FileController) Delete() {
	id := c.GetString(":id")

	svc := bootstrap.GetApp().FileService()
	if svc == nil {
		c.JSONError(http.StatusServiceUnavailable, "Service not ready.")
		return
	}

	if err := svc.Delete(c.Ctx.Request.Context(), id); err != nil {
		c.JSONAppError(err)
		return
	}

	c.JSONSuccess(map[string]string{"fileId": id})
}
