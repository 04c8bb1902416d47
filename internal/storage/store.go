package storage

import (
	"context"
	"io"
	"time"
)

// StoredFile 从对象存储取回的完整文件
type StoredFile struct {
	ID          string
	Name        string
	Data        []byte
	Size        int64
	ContentType string
	Metadata    map[string]string
	UploadedAt  time.Time
}

// FileInfo 文件元信息（列表查询用，不含内容）
type FileInfo struct {
	ID          string            `json:"id"`
	Name        string            `json:"filename"`
	Size        int64             `json:"size"`
	ContentType string            `json:"content_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	UploadedAt  time.Time         `json:"uploaded_at"`
}

// MissHandler 文件未命中时的诊断回调，不参与正常流程
type MissHandler func(ctx context.Context, id string)

// BlobStore 对象存储抽象。Fetch在标识符格式非法时返回
// ErrCodeInvalidIdentifier（不发起网络调用），文件不存在时返回
// ErrCodeFileNotFound，存储不可达时返回ErrCodeStoreConnection。
type BlobStore interface {
	Fetch(ctx context.Context, id string) (*StoredFile, error)
	Upload(ctx context.Context, name, contentType string, metadata map[string]string, r io.Reader, size int64) (string, error)
	List(ctx context.Context, metadata map[string]string) ([]FileInfo, error)
	Delete(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error
}
