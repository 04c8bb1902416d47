package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/eduhub/tutor-go/internal/config"
	"github.com/eduhub/tutor-go/internal/logger"
	"github.com/eduhub/tutor-go/internal/rag"
	"github.com/eduhub/tutor-go/internal/services"
	"github.com/eduhub/tutor-go/internal/storage"
)

// RegisterProviders 注册所有依赖提供者
func RegisterProviders(ctx context.Context, container *dig.Container) error {
	// 注册配置
	if err := container.Provide(func() (*config.Config, error) {
		cfg := config.GetAppConfig()
		if cfg == nil {
			return nil, fmt.Errorf("config not loaded")
		}
		return cfg, nil
	}); err != nil {
		return err
	}

	// 注册MongoDB客户端
	if err := container.Provide(func(cfg *config.Config) (*mongo.Client, error) {
		return ConnectMongo(ctx, cfg.Mongo)
	}); err != nil {
		return err
	}

	// 注册对象存储，按配置选择GridFS或MinIO
	if err := container.Provide(func(cfg *config.Config, client *mongo.Client) (storage.BlobStore, error) {
		return NewBlobStore(ctx, cfg, client)
	}); err != nil {
		return err
	}

	// 注册文本提取器
	if err := container.Provide(func() rag.Extractor {
		return rag.NewPDFExtractor()
	}); err != nil {
		return err
	}

	// 注册嵌入向量生成器
	if err := container.Provide(func(cfg *config.Config) (rag.Embedder, error) {
		return rag.NewEmbedder(ctx, cfg.Embedding)
	}); err != nil {
		return err
	}

	// 注册生成模型与答案生成器
	if err := container.Provide(func(cfg *config.Config) (rag.ChatModel, error) {
		return rag.NewChatModel(ctx, cfg.Generation)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(cfg *config.Config, model rag.ChatModel) *rag.AnswerGenerator {
		return rag.NewAnswerGenerator(model, cfg.Generation.MaxRetries)
	}); err != nil {
		return err
	}

	// 注册指标服务
	if err := container.Provide(func() *services.MetricsService {
		return services.NewMetricsService(prometheus.DefaultRegisterer)
	}); err != nil {
		return err
	}

	// 注册业务服务
	if err := container.Provide(func(
		cfg *config.Config,
		store storage.BlobStore,
		ex rag.Extractor,
		embedder rag.Embedder,
		generator *rag.AnswerGenerator,
		metrics *services.MetricsService,
	) *services.QAService {
		return services.NewQAService(store, ex, embedder, generator, cfg.Retrieval, metrics)
	}); err != nil {
		return err
	}

	if err := container.Provide(services.NewFileService); err != nil {
		return err
	}

	return nil
}

// ConnectMongo 按配置建立MongoDB连接池。
// ping失败只告警，存储操作自身会返回连接错误。
func ConnectMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetConnectTimeout(time.Duration(cfg.ConnectTimeout) * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		logger.Warn("MongoDB ping failed, continuing startup", zap.Error(err))
	} else {
		logger.Info("MongoDB connected", zap.String("database", cfg.Database))
	}
	return client, nil
}

// NewBlobStore 按配置创建对象存储实现
func NewBlobStore(ctx context.Context, cfg *config.Config, client *mongo.Client) (storage.BlobStore, error) {
	// 未命中诊断：帮助排查前端传来的失效文件ID
	onMiss := func(ctx context.Context, id string) {
		logger.Warn("Requested file does not exist in storage", zap.String("file_id", id))
	}

	switch cfg.Storage.Provider {
	case "minio":
		m := cfg.Storage.MinIO
		store, err := storage.NewMinIOStore(ctx, m.Endpoint, m.AccessKey, m.SecretKey, m.Bucket, m.UseSSL)
		if err != nil {
			return nil, err
		}
		store.SetMissHandler(onMiss)
		return store, nil
	default:
		db := client.Database(cfg.Mongo.Database)
		store, err := storage.NewGridFSStore(db, cfg.Mongo.Bucket)
		if err != nil {
			return nil, err
		}
		store.SetMissHandler(onMiss)
		return store, nil
	}
}
