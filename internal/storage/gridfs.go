package storage

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	apperrors "github.com/eduhub/tutor-go/internal/errors"
	"github.com/eduhub/tutor-go/internal/logger"
)

// GridFSStore 基于MongoDB GridFS的对象存储实现
type GridFSStore struct {
	db     *mongo.Database
	bucket *gridfs.Bucket
	files  *mongo.Collection
	logger *zap.Logger
	onMiss MissHandler
}

// gridFileDoc GridFS files集合的文档结构
type gridFileDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	Filename   string             `bson:"filename"`
	Length     int64              `bson:"length"`
	UploadDate time.Time          `bson:"uploadDate"`
	Metadata   bson.M             `bson:"metadata,omitempty"`
}

// NewGridFSStore 创建GridFS存储。client由进程级连接池提供，不在请求内新建。
func NewGridFSStore(db *mongo.Database, bucketName string) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, err
	}
	return &GridFSStore{
		db:     db,
		bucket: bucket,
		files:  bucket.GetFilesCollection(),
		logger: logger.GetLogger(),
	}, nil
}

// SetMissHandler 设置未命中诊断回调
func (s *GridFSStore) SetMissHandler(fn MissHandler) {
	s.onMiss = fn
}

// parseFileID 校验并解析文件标识符。非法标识符在任何网络调用之前拒绝。
func parseFileID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.NewInvalidIdentifier(id)
	}
	return oid, nil
}

// Fetch 按标识符取回文件内容与文件名。
// 先查files集合确认存在，再下载内容，以区分"文件不存在"与"存储不可达"。
func (s *GridFSStore) Fetch(ctx context.Context, id string) (*StoredFile, error) {
	oid, err := parseFileID(id)
	if err != nil {
		return nil, err
	}

	var doc gridFileDoc
	if err := s.files.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			if s.onMiss != nil {
				s.onMiss(ctx, id)
			}
			return nil, apperrors.NewFileNotFound()
		}
		return nil, apperrors.NewStoreConnectionError().WithCause(err)
	}

	var buf bytes.Buffer
	if _, err := s.bucket.DownloadToStream(oid, &buf); err != nil {
		if stderrors.Is(err, gridfs.ErrFileNotFound) {
			return nil, apperrors.NewFileNotFound()
		}
		return nil, apperrors.NewStoreConnectionError().WithCause(err)
	}

	return &StoredFile{
		ID:          id,
		Name:        doc.Filename,
		Data:        buf.Bytes(),
		Size:        doc.Length,
		ContentType: metadataString(doc.Metadata, "contentType"),
		Metadata:    flattenMetadata(doc.Metadata),
		UploadedAt:  doc.UploadDate,
	}, nil
}

// Upload 将文件流写入GridFS，元数据随files文档保存
func (s *GridFSStore) Upload(ctx context.Context, name, contentType string, metadata map[string]string, r io.Reader, size int64) (string, error) {
	meta := bson.M{}
	for k, v := range metadata {
		meta[k] = v
	}
	if contentType != "" {
		meta["contentType"] = contentType
	}

	oid, err := s.bucket.UploadFromStream(name, r, options.GridFSUpload().SetMetadata(meta))
	if err != nil {
		s.logger.Error("GridFS upload failed", zap.String("filename", name), zap.Error(err))
		return "", apperrors.NewStoreConnectionError().WithCause(err)
	}

	s.logger.Info("File stored in GridFS",
		zap.String("file_id", oid.Hex()),
		zap.String("filename", name),
		zap.Int64("size", size))
	return oid.Hex(), nil
}

// List 按元数据过滤列出文件
func (s *GridFSStore) List(ctx context.Context, metadata map[string]string) ([]FileInfo, error) {
	filter := bson.M{}
	for k, v := range metadata {
		filter["metadata."+k] = v
	}

	cursor, err := s.files.Find(ctx, filter)
	if err != nil {
		return nil, apperrors.NewStoreConnectionError().WithCause(err)
	}
	defer cursor.Close(ctx)

	var infos []FileInfo
	for cursor.Next(ctx) {
		var doc gridFileDoc
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		infos = append(infos, FileInfo{
			ID:          doc.ID.Hex(),
			Name:        doc.Filename,
			Size:        doc.Length,
			ContentType: metadataString(doc.Metadata, "contentType"),
			Metadata:    flattenMetadata(doc.Metadata),
			UploadedAt:  doc.UploadDate,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, apperrors.NewStoreConnectionError().WithCause(err)
	}
	return infos, nil
}

// Delete 按标识符删除文件
func (s *GridFSStore) Delete(ctx context.Context, id string) error {
	oid, err := parseFileID(id)
	if err != nil {
		return err
	}
	if err := s.bucket.Delete(oid); err != nil {
		if stderrors.Is(err, gridfs.ErrFileNotFound) {
			return apperrors.NewFileNotFound()
		}
		return apperrors.NewStoreConnectionError().WithCause(err)
	}
	return nil
}

// HealthCheck 检查MongoDB连通性
func (s *GridFSStore) HealthCheck(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

func metadataString(meta bson.M, key string) string {
	if meta == nil {
		return ""
	}
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

func flattenMetadata(meta bson.M) map[string]string {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
