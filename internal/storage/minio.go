package storage

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	apperrors "github.com/eduhub/tutor-go/internal/errors"
	"github.com/eduhub/tutor-go/internal/logger"
)

// MinIOStore 基于MinIO的对象存储实现，与GridFSStore提供同一接口
type MinIOStore struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
	onMiss MissHandler
}

// NewMinIOStore 创建MinIO存储客户端并确保bucket存在
func NewMinIOStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinIOStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
		logger.Info("MinIO bucket created", zap.String("bucket", bucket))
	}

	return &MinIOStore{
		client: client,
		bucket: bucket,
		logger: logger.GetLogger(),
	}, nil
}

// SetMissHandler 设置未命中诊断回调
func (s *MinIOStore) SetMissHandler(fn MissHandler) {
	s.onMiss = fn
}

// validObjectKey 对象键校验。MinIO键没有ObjectId格式约束，仅拒绝空白与路径穿越。
func validObjectKey(key string) bool {
	if strings.TrimSpace(key) == "" {
		return false
	}
	if strings.Contains(key, "..") {
		return false
	}
	return true
}

// Fetch 按对象键取回文件内容
func (s *MinIOStore) Fetch(ctx context.Context, id string) (*StoredFile, error) {
	if !validObjectKey(id) {
		return nil, apperrors.NewInvalidIdentifier(id)
	}

	stat, err := s.client.StatObject(ctx, s.bucket, id, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			if s.onMiss != nil {
				s.onMiss(ctx, id)
			}
			return nil, apperrors.NewFileNotFound()
		}
		return nil, apperrors.NewStoreConnectionError().WithCause(err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, id, minio.GetObjectOptions{})
	if err != nil {
		return nil, apperrors.NewStoreConnectionError().WithCause(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, apperrors.NewStoreConnectionError().WithCause(err)
	}

	return &StoredFile{
		ID:          id,
		Name:        id,
		Data:        data,
		Size:        stat.Size,
		ContentType: stat.ContentType,
		Metadata:    stat.UserMetadata,
		UploadedAt:  stat.LastModified,
	}, nil
}

// Upload 上传对象，用户元数据随对象保存
func (s *MinIOStore) Upload(ctx context.Context, name, contentType string, metadata map[string]string, r io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	})
	if err != nil {
		s.logger.Error("MinIO upload failed", zap.String("object", name), zap.Error(err))
		return "", apperrors.NewStoreConnectionError().WithCause(err)
	}

	s.logger.Info("File stored in MinIO",
		zap.String("bucket", s.bucket),
		zap.String("object", name),
		zap.Int64("size", size))
	return name, nil
}

// List 列出对象。MinIO的列举不按用户元数据过滤，需逐个Stat后筛选。
func (s *MinIOStore) List(ctx context.Context, metadata map[string]string) ([]FileInfo, error) {
	var infos []FileInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, apperrors.NewStoreConnectionError().WithCause(obj.Err)
		}

		info := FileInfo{
			ID:         obj.Key,
			Name:       obj.Key,
			Size:       obj.Size,
			UploadedAt: obj.LastModified,
		}
		if len(metadata) > 0 {
			stat, err := s.client.StatObject(ctx, s.bucket, obj.Key, minio.StatObjectOptions{})
			if err != nil {
				continue
			}
			if !metadataMatches(stat.UserMetadata, metadata) {
				continue
			}
			info.ContentType = stat.ContentType
			info.Metadata = stat.UserMetadata
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Delete 删除对象
func (s *MinIOStore) Delete(ctx context.Context, id string) error {
	if !validObjectKey(id) {
		return apperrors.NewInvalidIdentifier(id)
	}
	// RemoveObject对不存在的键不报错，先确认存在以便返回404
	_, err := s.client.StatObject(ctx, s.bucket, id, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return apperrors.NewFileNotFound()
		}
		return apperrors.NewStoreConnectionError().WithCause(err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, id, minio.RemoveObjectOptions{}); err != nil {
		return apperrors.NewStoreConnectionError().WithCause(err)
	}
	return nil
}

// HealthCheck 检查MinIO连通性
func (s *MinIOStore) HealthCheck(ctx context.Context) error {
	_, err := s.client.ListBuckets(ctx)
	return err
}

// metadataMatches 用户元数据是否包含全部期望键值（键大小写不敏感）
func metadataMatches(got map[string]string, want map[string]string) bool {
	lower := make(map[string]string, len(got))
	for k, v := range got {
		lower[strings.ToLower(k)] = v
	}
	for k, v := range want {
		if lower[strings.ToLower(k)] != v {
			return false
		}
	}
	return true
}
