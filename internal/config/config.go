// Package config 负责加载和管理应用程序的配置。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Analyzer AnalyzerConfig `mapstructure:"analyzer"`
	Cache    CacheConfig    `mapstructure:"cache"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
}

// ServerConfig 存储 HTTP 服务相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// LLMConfig 存储大语言模型相关的配置。
// APIKey 只能来自环境变量或配置文件，没有内置默认值。
type LLMConfig struct {
	APIKey     string              `mapstructure:"api_key"`
	BaseURL    string              `mapstructure:"base_url"`
	Model      string              `mapstructure:"model"`
	Timeout    time.Duration       `mapstructure:"timeout"`
	Generation LLMGenerationConfig `mapstructure:"generation"`
}

// LLMGenerationConfig 配置生成相关参数。
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// AnalyzerConfig 存储批处理各阶段的输入输出路径与远程分类开关。
type AnalyzerConfig struct {
	TranscriptPath  string        `mapstructure:"transcript_path"`
	SentimentPath   string        `mapstructure:"sentiment_path"`
	ThreeHePath     string        `mapstructure:"three_he_path"`
	ChainPath       string        `mapstructure:"chain_path"`
	UseRemote       bool          `mapstructure:"use_remote"`
	CheckpointEvery int           `mapstructure:"checkpoint_every"`
	RequestInterval time.Duration `mapstructure:"request_interval"`
}

// CacheConfig 存储远程分类结果缓存（Redis）的配置。
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// MinIOConfig 存储分析产物镜像上传的配置。
type MinIOConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// RemoteEnabled 报告远程三何分类是否可用：需要凭证且未被显式关闭。
func (c Config) RemoteEnabled() bool {
	return c.Analyzer.UseRemote && strings.TrimSpace(c.LLM.APIKey) != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8081")
	v.SetDefault("server.mode", "release")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("llm.base_url", "https://api.deepseek.com")
	v.SetDefault("llm.model", "deepseek-chat")
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.generation.temperature", 0.3)
	v.SetDefault("llm.generation.max_tokens", 10)

	v.SetDefault("analyzer.transcript_path", "data/triangle2.json")
	v.SetDefault("analyzer.sentiment_path", "data/analyze_sentiment.json")
	v.SetDefault("analyzer.three_he_path", "data/question_classification.json")
	v.SetDefault("analyzer.chain_path", "data/question_chains.json")
	v.SetDefault("analyzer.use_remote", true)
	v.SetDefault("analyzer.checkpoint_every", 10)
	v.SetDefault("analyzer.request_interval", 500*time.Millisecond)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "127.0.0.1:6379")
	v.SetDefault("cache.ttl", 7*24*time.Hour)

	v.SetDefault("minio.enabled", false)
	v.SetDefault("minio.bucket_name", "classroom-analysis")
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("llm.api_key", "DEEPSEEK_API_KEY")
	_ = v.BindEnv("cache.addr", "REDIS_ADDR")
	_ = v.BindEnv("cache.password", "REDIS_PASSWORD")
	_ = v.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	_ = v.BindEnv("minio.access_key_id", "MINIO_ACCESS_KEY_ID")
	_ = v.BindEnv("minio.secret_access_key", "MINIO_SECRET_ACCESS_KEY")
}

// Load 从指定路径读取 YAML 配置。文件不存在时只使用默认值和环境变量。
func Load(configPath string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	setDefaults(v)
	bindEnv(v)

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	return cfg, nil
}

// Init 加载配置到全局 Conf，失败时 panic。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = cfg
}
