package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig CoreConfig.Validate 返回的错误都包装此错误
var ErrInvalidConfig = errors.New("invalid core config")

// Offset 空间偏移，用于标记像素与其 (Y, X) 处的邻居是否属于同一对象
type Offset struct {
	X int `mapstructure:"x" yaml:"x" json:"x"`
	Y int `mapstructure:"y" yaml:"y" json:"y"`
}

// CoreConfig 分割训练数据的结构配置
type CoreConfig struct {
	NumColors  int      `mapstructure:"num_colors" yaml:"num_colors" json:"num_colors"`
	NumClasses int      `mapstructure:"num_classes" yaml:"num_classes" json:"num_classes"`
	Offsets    []Offset `mapstructure:"offsets" yaml:"offsets" json:"offsets"`
	Padding    int      `mapstructure:"padding" yaml:"padding" json:"padding"`
}

// DefaultCoreConfig 单通道、两类别、无偏移的默认配置
func DefaultCoreConfig() CoreConfig {
	return CoreConfig{
		NumColors:  1,
		NumClasses: 2,
		Padding:    10,
	}
}

func (c *CoreConfig) NumOffsets() int {
	return len(c.Offsets)
}

// NumChannels 该配置下组合图像的通道数
func (c *CoreConfig) NumChannels() int {
	return c.NumColors + c.NumClasses + len(c.Offsets)
}

// Validate 检查配置自身是否一致
// trainImageSize 为正数时，同时检查偏移和填充是否超出训练图像尺寸
func (c *CoreConfig) Validate(trainImageSize int) error {
	if c.NumColors < 1 {
		return fmt.Errorf("%w: num_colors must be positive, got %d", ErrInvalidConfig, c.NumColors)
	}
	if c.NumClasses < 1 {
		return fmt.Errorf("%w: num_classes must be positive, got %d", ErrInvalidConfig, c.NumClasses)
	}
	if c.Padding < 0 {
		return fmt.Errorf("%w: padding must be non-negative, got %d", ErrInvalidConfig, c.Padding)
	}

	seen := make(map[Offset]struct{}, len(c.Offsets))
	for i, o := range c.Offsets {
		if o.X == 0 && o.Y == 0 {
			return fmt.Errorf("%w: offset %d is (0, 0)", ErrInvalidConfig, i)
		}
		if _, dup := seen[o]; dup {
			return fmt.Errorf("%w: offset %d (%d, %d) repeats an earlier offset", ErrInvalidConfig, i, o.X, o.Y)
		}
		seen[o] = struct{}{}
	}

	if trainImageSize > 0 {
		for i, o := range c.Offsets {
			if abs(o.X) >= trainImageSize || abs(o.Y) >= trainImageSize {
				return fmt.Errorf("%w: offset %d (%d, %d) does not fit a %dpx training image",
					ErrInvalidConfig, i, o.X, o.Y, trainImageSize)
			}
		}
		if 2*c.Padding >= trainImageSize {
			return fmt.Errorf("%w: padding %d too large for a %dpx training image",
				ErrInvalidConfig, c.Padding, trainImageSize)
		}
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ReadCore 解码并校验独立的核心配置
func ReadCore(r io.Reader) (*CoreConfig, error) {
	c := DefaultCoreConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode core config: %w", err)
	}
	if err := c.Validate(0); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadCore 从文件读取核心配置
func LoadCore(path string) (*CoreConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open core config: %w", err)
	}
	defer f.Close()
	return ReadCore(f)
}

// WriteCore 将配置编码为 YAML
func WriteCore(w io.Writer, c *CoreConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode core config: %w", err)
	}
	return enc.Close()
}
