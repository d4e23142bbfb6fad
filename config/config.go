package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Validator ValidatorConfig `mapstructure:"validator"`
	Core      CoreConfig      `mapstructure:"core"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type UploadConfig struct {
	MaxSize      int64    `mapstructure:"max_size"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

// 组合图像标签检查模式
const (
	LabelCheckSample     = "sample"
	LabelCheckExhaustive = "exhaustive"
)

type ValidatorConfig struct {
	LabelCheck     string `mapstructure:"label_check"`
	Seed           int64  `mapstructure:"seed"` // 0 表示使用当前时间
	TrainImageSize int    `mapstructure:"train_image_size"`
}

// Load 从 YAML 文件加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("segcheck")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// New 使用默认配置路径加载配置
func New() (*Config, error) {
	return NewFrom("config.yaml")
}

// NewFrom 加载指定路径的配置
// 仅在文件不存在时返回默认配置，文件存在但解析或校验失败时返回错误
func NewFrom(configPath string) (*Config, error) {
	cfg, err := Load(configPath)
	if err == nil {
		return cfg, nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
		return getDefaultConfig(), nil
	}
	return nil, err
}

func (c *Config) check() error {
	switch c.Validator.LabelCheck {
	case LabelCheckSample, LabelCheckExhaustive:
	default:
		return fmt.Errorf("validator.label_check must be %q or %q, got %q",
			LabelCheckSample, LabelCheckExhaustive, c.Validator.LabelCheck)
	}
	if err := c.Core.Validate(c.Validator.TrainImageSize); err != nil {
		return fmt.Errorf("core: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("upload.max_size", 32*1024*1024)
	v.SetDefault("upload.allowed_types", []string{"image/png", "image/jpeg", "image/jpg", "image/tiff"})

	v.SetDefault("validator.label_check", LabelCheckSample)
	v.SetDefault("validator.seed", 0)
	v.SetDefault("validator.train_image_size", 0)

	core := DefaultCoreConfig()
	v.SetDefault("core.num_colors", core.NumColors)
	v.SetDefault("core.num_classes", core.NumClasses)
	v.SetDefault("core.padding", core.Padding)
	v.SetDefault("core.offsets", []map[string]int{})
}

func getDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         ":8080",
			Mode:         "debug",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{
			Enabled: true,
			Addr:    "localhost:6379",
			DB:      0,
			TTL:     24 * time.Hour,
		},
		Upload: UploadConfig{
			MaxSize:      32 * 1024 * 1024,
			AllowedTypes: []string{"image/png", "image/jpeg", "image/jpg", "image/tiff"},
		},
		Validator: ValidatorConfig{
			LabelCheck: LabelCheckSample,
		},
		Core: DefaultCoreConfig(),
	}
}
