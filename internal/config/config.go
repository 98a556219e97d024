package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConf struct {
	Env            string `mapstructure:"env"`
	Port           int    `mapstructure:"port"`
	MetricsPort    int    `mapstructure:"metrics_port"`
	AllowedOrigins string `mapstructure:"allowed_origins"`
	ShutdownSecond int    `mapstructure:"shutdown_seconds"`
}

type MongoConf struct {
	URI             string `mapstructure:"uri"`
	Database        string `mapstructure:"database"`
	UsersCollection string `mapstructure:"users_collection"`
	MediaCollection string `mapstructure:"media_collection"`
}

type S3Conf struct {
	Region     string `mapstructure:"region"`
	Bucket     string `mapstructure:"bucket"`
	Endpoint   string `mapstructure:"endpoint"`
	PublicRead bool   `mapstructure:"public_read"`
	PresignTTL int    `mapstructure:"presign_ttl_seconds"`
}

type RedisConf struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConf struct {
	Secret     string `mapstructure:"secret"`
	TTLMinutes int    `mapstructure:"ttl_minutes"`
}

type UploadConf struct {
	MaxSizeMB         int    `mapstructure:"max_size_mb"`
	AllowedImageTypes string `mapstructure:"allowed_image_types"`
	AllowedVideoTypes string `mapstructure:"allowed_video_types"`
	DefaultPageSize   int    `mapstructure:"default_page_size"`
	MaxPageSize       int    `mapstructure:"max_page_size"`
}

type Config struct {
	App    AppConf    `mapstructure:"app"`
	Mongo  MongoConf  `mapstructure:"mongo"`
	S3     S3Conf     `mapstructure:"s3"`
	Redis  RedisConf  `mapstructure:"redis"`
	JWT    JWTConf    `mapstructure:"jwt"`
	Upload UploadConf `mapstructure:"upload"`

	// derived
	ShutdownTimeout time.Duration
	PresignTTL      time.Duration
	TokenTTL        time.Duration
	MaxUploadBytes  int64
}

// Load reads configuration from an optional YAML file plus environment
// overrides (APP_PORT, MONGO_URI, JWT_SECRET, ...). A .env file is honored
// when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// every key gets a default so AutomaticEnv can see env-only values
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8000)
	v.SetDefault("app.metrics_port", 0)
	v.SetDefault("app.allowed_origins", "http://localhost:4200")
	v.SetDefault("app.shutdown_seconds", 15)
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "cloud_media")
	v.SetDefault("mongo.users_collection", "users")
	v.SetDefault("mongo.media_collection", "media")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.public_read", false)
	v.SetDefault("s3.presign_ttl_seconds", 86400)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl_minutes", 1440)
	v.SetDefault("upload.max_size_mb", 100)
	v.SetDefault("upload.allowed_image_types", "image/jpeg,image/png,image/gif,image/webp")
	v.SetDefault("upload.allowed_video_types", "video/mp4,video/mpeg,video/quicktime,video/webm")
	v.SetDefault("upload.default_page_size", 20)
	v.SetDefault("upload.max_page_size", 100)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Mongo.URI == "" {
		return nil, errors.New("mongo.uri (MONGO_URI) is required")
	}
	if cfg.S3.Bucket == "" {
		return nil, errors.New("s3.bucket (S3_BUCKET) is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, errors.New("jwt.secret (JWT_SECRET) is required")
	}

	cfg.ShutdownTimeout = time.Duration(cfg.App.ShutdownSecond) * time.Second
	cfg.PresignTTL = time.Duration(cfg.S3.PresignTTL) * time.Second
	cfg.TokenTTL = time.Duration(cfg.JWT.TTLMinutes) * time.Minute
	cfg.MaxUploadBytes = int64(cfg.Upload.MaxSizeMB) * 1024 * 1024
	return &cfg, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (c *Config) AllowedOriginList() []string { return splitList(c.App.AllowedOrigins) }

func (c *Config) AllowedImageTypes() []string { return splitList(c.Upload.AllowedImageTypes) }

func (c *Config) AllowedVideoTypes() []string { return splitList(c.Upload.AllowedVideoTypes) }
