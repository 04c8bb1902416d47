package services

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/eduhub/tutor-go/internal/errors"
	"github.com/eduhub/tutor-go/internal/logger"
	"github.com/eduhub/tutor-go/internal/storage"
)

// maxUploadSize 单文件上传大小上限
const maxUploadSize = 50 << 20

// FileService 课程文档管理服务
type FileService struct {
	store  storage.BlobStore
	logger *zap.Logger
}

// NewFileService 创建文件服务
func NewFileService(store storage.BlobStore) *FileService {
	return &FileService{
		store:  store,
		logger: logger.GetLogger(),
	}
}

// UploadRequest 文件上传参数
type UploadRequest struct {
	Filename    string
	ContentType string
	Size        int64
	StudentID   string
	CourseID    string
	ChapterID   string
	Reader      io.Reader
}

// Upload 上传课程文档，返回文件标识符
func (s *FileService) Upload(ctx context.Context, req UploadRequest) (string, error) {
	if strings.TrimSpace(req.Filename) == "" {
		return "", apperrors.NewValidationError("filename is required")
	}
	if !strings.HasSuffix(strings.ToLower(req.Filename), ".pdf") {
		return "", apperrors.NewValidationError("only PDF files are supported")
	}
	if req.Size <= 0 || req.Size > maxUploadSize {
		return "", apperrors.NewValidationError("file size must be between 1 byte and 50MB")
	}

	metadata := map[string]string{}
	if req.StudentID != "" {
		metadata["studentId"] = req.StudentID
	}
	if req.CourseID != "" {
		metadata["courseId"] = req.CourseID
	}
	if req.ChapterID != "" {
		metadata["chapterId"] = req.ChapterID
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}

	id, err := s.store.Upload(ctx, req.Filename, contentType, metadata, req.Reader, req.Size)
	if err != nil {
		return "", apperrors.From(err)
	}

	s.logger.Info("Course document uploaded",
		zap.String("file_id", id),
		zap.String("filename", req.Filename),
		zap.String("course_id", req.CourseID))
	return id, nil
}

// List 按元数据过滤列出课程文档
func (s *FileService) List(ctx context.Context, studentID, courseID, chapterID string) ([]storage.FileInfo, error) {
	filter := map[string]string{}
	if studentID != "" {
		filter["studentId"] = studentID
	}
	if courseID != "" {
		filter["courseId"] = courseID
	}
	if chapterID != "" {
		filter["chapterId"] = chapterID
	}

	infos, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, apperrors.From(err)
	}
	if infos == nil {
		infos = []storage.FileInfo{}
	}
	return infos, nil
}

// Delete 删除课程文档
func (s *FileService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return apperrors.From(err)
	}
	s.logger.Info("Course document deleted", zap.String("file_id", id))
	return nil
}

// HealthCheck 检查底层存储连通性
func (s *FileService) HealthCheck(ctx context.Context) error {
	return s.store.HealthCheck(ctx)
}
