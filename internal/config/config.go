package config

import (
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Mongo      MongoConfig
	Storage    StorageConfig
	Embedding  EmbeddingConfig
	Generation GenerationConfig
	Retrieval  RetrievalConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type MongoConfig struct {
	URI            string
	Database       string
	Bucket         string
	MaxPoolSize    uint64
	ConnectTimeout int // 秒
}

type StorageConfig struct {
	Provider string // gridfs | minio
	MinIO    MinIOConfig
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type EmbeddingConfig struct {
	Provider   string // gemini | openai
	Model      string
	APIKey     string
	Dimensions int
}

type GenerationConfig struct {
	Provider    string // gemini | openai
	Model       string
	APIKey      string
	Temperature float64
	MaxRetries  int
}

type RetrievalConfig struct {
	TopK     int
	MinScore float64
}

var AppConfig *Config

// LoadConfig 加载配置：默认值 + 环境变量覆盖
func LoadConfig() error {
	// 重建viper状态，保证重复加载（含测试）结果一致
	viper.Reset()

	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")

	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "test")
	viper.SetDefault("mongo.bucket", "uploads")
	viper.SetDefault("mongo.max_pool_size", 16)
	viper.SetDefault("mongo.connect_timeout", 10)

	viper.SetDefault("storage.provider", "gridfs")
	viper.SetDefault("storage.minio.endpoint", "")
	viper.SetDefault("storage.minio.bucket", "uploads")
	viper.SetDefault("storage.minio.use_ssl", false)

	viper.SetDefault("embedding.provider", "gemini")
	viper.SetDefault("embedding.model", "gemini-embedding-001")
	viper.SetDefault("embedding.dimensions", 768)

	viper.SetDefault("generation.provider", "gemini")
	viper.SetDefault("generation.model", "gemini-2.0-flash")
	// 温度固定为0：确定性采样，最大化答案与上下文的一致性
	viper.SetDefault("generation.temperature", 0.0)
	viper.SetDefault("generation.max_retries", 1)

	// 检索参数：偏向召回（生成阶段自行做接地校验）
	viper.SetDefault("retrieval.top_k", 10)
	viper.SetDefault("retrieval.min_score", 0.1)

	viper.SetEnvPrefix("TUTOR")
	viper.AutomaticEnv()

	if port := os.Getenv("PORT"); port != "" {
		viper.Set("server.port", port)
	}
	if env := os.Getenv("ENV"); env != "" {
		viper.Set("server.env", env)
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		viper.Set("mongo.uri", uri)
	}
	if db := os.Getenv("MONGO_DB"); db != "" {
		viper.Set("mongo.database", db)
	}
	if bucket := os.Getenv("MONGO_BUCKET"); bucket != "" {
		viper.Set("mongo.bucket", bucket)
	}
	if provider := os.Getenv("STORAGE_PROVIDER"); provider != "" {
		viper.Set("storage.provider", provider)
	}
	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		viper.Set("storage.minio.endpoint", endpoint)
		viper.Set("storage.provider", "minio")
	}
	if accessKey := os.Getenv("MINIO_ACCESS_KEY"); accessKey != "" {
		viper.Set("storage.minio.access_key", accessKey)
	}
	if secretKey := os.Getenv("MINIO_SECRET_KEY"); secretKey != "" {
		viper.Set("storage.minio.secret_key", secretKey)
	}
	if bucket := os.Getenv("MINIO_BUCKET"); bucket != "" {
		viper.Set("storage.minio.bucket", bucket)
	}

	// 先确定提供方再解析凭据，OPENAI_API_KEY的归属取决于最终提供方
	if embProvider := os.Getenv("EMBEDDING_PROVIDER"); embProvider != "" {
		viper.Set("embedding.provider", embProvider)
	}
	if embModel := os.Getenv("EMBEDDING_MODEL"); embModel != "" {
		viper.Set("embedding.model", embModel)
	}
	if genProvider := os.Getenv("GENERATION_PROVIDER"); genProvider != "" {
		viper.Set("generation.provider", genProvider)
	}
	if genModel := os.Getenv("GENERATION_MODEL"); genModel != "" {
		viper.Set("generation.model", genModel)
	}

	// 模型凭据：GOOGLE_API_KEY同时作为嵌入与生成的默认凭据
	if googleKey := os.Getenv("GOOGLE_API_KEY"); googleKey != "" {
		viper.Set("embedding.api_key", googleKey)
		viper.Set("generation.api_key", googleKey)
	}
	if openaiKey := os.Getenv("OPENAI_API_KEY"); openaiKey != "" {
		if viper.GetString("embedding.provider") == "openai" {
			viper.Set("embedding.api_key", openaiKey)
		}
		if viper.GetString("generation.provider") == "openai" {
			viper.Set("generation.api_key", openaiKey)
		}
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port: viper.GetString("server.port"),
			Env:  viper.GetString("server.env"),
		},
		Mongo: MongoConfig{
			URI:            viper.GetString("mongo.uri"),
			Database:       viper.GetString("mongo.database"),
			Bucket:         viper.GetString("mongo.bucket"),
			MaxPoolSize:    viper.GetUint64("mongo.max_pool_size"),
			ConnectTimeout: viper.GetInt("mongo.connect_timeout"),
		},
		Storage: StorageConfig{
			Provider: viper.GetString("storage.provider"),
			MinIO: MinIOConfig{
				Endpoint:  viper.GetString("storage.minio.endpoint"),
				AccessKey: viper.GetString("storage.minio.access_key"),
				SecretKey: viper.GetString("storage.minio.secret_key"),
				Bucket:    viper.GetString("storage.minio.bucket"),
				UseSSL:    viper.GetBool("storage.minio.use_ssl"),
			},
		},
		Embedding: EmbeddingConfig{
			Provider:   viper.GetString("embedding.provider"),
			Model:      viper.GetString("embedding.model"),
			APIKey:     viper.GetString("embedding.api_key"),
			Dimensions: viper.GetInt("embedding.dimensions"),
		},
		Generation: GenerationConfig{
			Provider:    viper.GetString("generation.provider"),
			Model:       viper.GetString("generation.model"),
			APIKey:      viper.GetString("generation.api_key"),
			Temperature: viper.GetFloat64("generation.temperature"),
			MaxRetries:  viper.GetInt("generation.max_retries"),
		},
		Retrieval: RetrievalConfig{
			TopK:     viper.GetInt("retrieval.top_k"),
			MinScore: viper.GetFloat64("retrieval.min_score"),
		},
	}

	return nil
}

// GetAppConfig 获取全局配置
func GetAppConfig() *Config {
	return AppConfig
}
