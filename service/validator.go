package service

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/TIANLI0/segcheck/config"
	"github.com/TIANLI0/segcheck/model"
	"github.com/TIANLI0/segcheck/utils"
	"go.uber.org/zap"
)

// LabelCheck 组合图像标签通道的检查方式
type LabelCheck int

const (
	// LabelCheckSample 每次随机检查一个标签值
	LabelCheckSample LabelCheck = iota
	// LabelCheckExhaustive 检查全部标签值
	LabelCheckExhaustive
)

// ParseLabelCheck 解析配置中的检查方式，未知值按抽样处理
func ParseLabelCheck(s string) LabelCheck {
	if s == config.LabelCheckExhaustive {
		return LabelCheckExhaustive
	}
	return LabelCheckSample
}

// Validator 按 CoreConfig 校验分割输入，可并发使用
type Validator struct {
	mode LabelCheck

	mu  sync.Mutex
	rng *rand.Rand
}

// NewValidator 创建 Validator，seed 为 0 时使用当前时间
func NewValidator(mode LabelCheck, seed int64) *Validator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Validator{
		mode: mode,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// NewValidatorFromConfig 根据 validator 配置创建 Validator
func NewValidatorFromConfig(cfg *config.ValidatorConfig) *Validator {
	return NewValidator(ParseLabelCheck(cfg.LabelCheck), cfg.Seed)
}

func (v *Validator) Mode() LabelCheck {
	return v.mode
}

var defaultValidator = NewValidator(LabelCheckSample, 0)

// ValidateConfig 检查配置存在且自身一致，c.Validate 的错误原样返回
func ValidateConfig(c *config.CoreConfig, trainImageSize int) error {
	if c == nil {
		return newError(KindType, "config", "core config required")
	}
	return c.Validate(trainImageSize)
}

// ValidateImageWithMask 使用默认 Validator 校验
func ValidateImageWithMask(x *model.ImageWithMask, c *config.CoreConfig) error {
	return defaultValidator.ValidateImageWithMask(x, c)
}

// ValidateCombinedImage 使用默认 Validator 校验，只抽查一个标签值
func ValidateCombinedImage(x *model.Array, c *config.CoreConfig) error {
	return defaultValidator.ValidateCombinedImage(x, c)
}

// ValidateImageWithMask 校验图片、对象掩码和对象类别列表
// 按固定顺序检查，返回第一个失败
func (v *Validator) ValidateImageWithMask(x *model.ImageWithMask, c *config.CoreConfig) error {
	if err := ValidateConfig(c, 0); err != nil {
		return err
	}
	if x == nil {
		return newError(KindType, "", "image with mask record required")
	}
	if x.Img == nil || x.Mask == nil || x.ObjectClass == nil {
		return newError(KindMissingField, missingField(x), "img, mask and object_class required")
	}
	if !x.Img.IsDense() {
		return newError(KindType, "img", "dense numeric array required")
	}
	if !x.Mask.IsDense() {
		return newError(KindType, "mask", "dense numeric array required")
	}

	dims := x.Img.Shape
	if c.NumColors == 1 {
		if len(dims) != 2 {
			return newError(KindShape, "img", "2 dimensional image required, got shape %v", dims)
		}
	} else {
		if len(dims) != 3 {
			return newError(KindShape, "img", "3 dimensional image required, got shape %v", dims)
		}
		if dims[2] != c.NumColors {
			return newError(KindShape, "img", "%d color channels required, got shape %v", c.NumColors, dims)
		}
	}

	maskDims := x.Mask.Shape
	if len(maskDims) != 2 || maskDims[0] != dims[0] || maskDims[1] != dims[1] {
		return newError(KindShape, "mask", "mask shape %v does not match image shape %v", maskDims, dims)
	}

	ids := x.Mask.Unique()
	if !x.Mask.DType.IsInteger() {
		return newError(KindType, "mask", "integer mask values required, got %s", x.Mask.DType)
	}

	for i, cls := range x.ObjectClass {
		if cls < 0 || cls >= c.NumClasses {
			return newError(KindValueRange, "object_class",
				"object %d has class %d, want 0 <= class < %d", i, cls, c.NumClasses)
		}
	}

	numObjects := float64(len(x.ObjectClass))
	for _, id := range ids {
		if id < 0 || id >= numObjects || id != math.Trunc(id) {
			return newError(KindValueRange, "mask",
				"object id %v not in [0, %d)", id, len(x.ObjectClass))
		}
	}
	return nil
}

func missingField(x *model.ImageWithMask) string {
	switch {
	case x.Img == nil:
		return "img"
	case x.Mask == nil:
		return "mask"
	default:
		return "object_class"
	}
}

// ValidateCombinedImage 校验 (colors+classes+offsets, H, W) 组合图像
// 标签通道只能为 0 或 1，抽样模式下只随机检查一个值，可能漏检
func (v *Validator) ValidateCombinedImage(x *model.Array, c *config.CoreConfig) error {
	if err := ValidateConfig(c, 0); err != nil {
		return err
	}
	if x == nil || !x.IsDense() {
		return newError(KindType, "", "dense numeric array required")
	}

	dims := x.Shape
	if len(dims) != 3 {
		return newError(KindShape, "", "3 dimensional image required, got shape %v", dims)
	}

	want := c.NumChannels()
	if dims[0] != want {
		return newError(KindShape, "", "first dimension %d should equal num_colors + num_classes + num_offsets = %d",
			dims[0], want)
	}

	if c.NumColors >= dims[0] || dims[1] == 0 || dims[2] == 0 {
		return nil
	}

	if v.mode == LabelCheckExhaustive {
		plane := dims[1] * dims[2]
		for off := c.NumColors * plane; off < len(x.Data); off++ {
			if val := x.Data[off]; val != 0 && val != 1 {
				k := off / plane
				i := (off % plane) / dims[2]
				j := off % dims[2]
				return newError(KindValueRange, "", "label value %v at [%d, %d, %d], want 0 or 1", val, k, i, j)
			}
		}
		return nil
	}

	k, i, j := v.sample(c.NumColors, dims)
	utils.Logger.Debug("combined image spot check",
		zap.Int("channel", k), zap.Int("row", i), zap.Int("col", j))
	if val := x.At(k, i, j); val != 0 && val != 1 {
		return newError(KindValueRange, "", "label value %v at [%d, %d, %d], want 0 or 1", val, k, i, j)
	}
	return nil
}

func (v *Validator) sample(numColors int, dims []int) (k, i, j int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	k = numColors + v.rng.Intn(dims[0]-numColors)
	i = v.rng.Intn(dims[1])
	j = v.rng.Intn(dims[2])
	return k, i, j
}
