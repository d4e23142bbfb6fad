package service

import (
	"fmt"

	"github.com/TIANLI0/segcheck/config"
	"github.com/TIANLI0/segcheck/model"
)

// CombineImage 将图片和标签合并为一个 (C, H, W) 数组
// 依次为图像通道、每个类别的指示通道、每个偏移的同对象指示通道
func (v *Validator) CombineImage(x *model.ImageWithMask, c *config.CoreConfig) (*model.Array, error) {
	if err := v.ValidateImageWithMask(x, c); err != nil {
		return nil, err
	}

	h, w := x.Img.Shape[0], x.Img.Shape[1]
	out := model.NewArray(model.Float64, c.NumChannels(), h, w)
	plane := h * w
	if plane == 0 {
		return out, nil
	}

	// HWC -> CHW
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			for ch := 0; ch < c.NumColors; ch++ {
				out.Data[ch*plane+i*w+j] = x.Img.Data[(i*w+j)*c.NumColors+ch]
			}
		}
	}

	mask := x.Mask.Data
	for p, id := range mask {
		cls := x.ObjectClass[int(id)]
		out.Data[(c.NumColors+cls)*plane+p] = 1
	}

	base := c.NumColors + c.NumClasses
	for o, off := range c.Offsets {
		ch := (base + o) * plane
		for i := 0; i < h; i++ {
			ni := i + off.Y
			if ni < 0 || ni >= h {
				continue
			}
			for j := 0; j < w; j++ {
				nj := j + off.X
				if nj < 0 || nj >= w {
					continue
				}
				if mask[i*w+j] == mask[ni*w+nj] {
					out.Data[ch+i*w+j] = 1
				}
			}
		}
	}
	return out, nil
}

// CombineImage 使用默认 Validator 生成组合图像
func CombineImage(x *model.ImageWithMask, c *config.CoreConfig) (*model.Array, error) {
	return defaultValidator.CombineImage(x, c)
}

// SplitCombinedImage 将组合图像拆分为图像通道和标签通道，图像部分保持 (colors, H, W) 布局
func SplitCombinedImage(x *model.Array, c *config.CoreConfig) (img, labels *model.Array, err error) {
	if err := NewValidator(LabelCheckExhaustive, 1).ValidateCombinedImage(x, c); err != nil {
		return nil, nil, fmt.Errorf("split combined image: %w", err)
	}
	h, w := x.Shape[1], x.Shape[2]
	cut := c.NumColors * h * w

	img = &model.Array{
		Shape: []int{c.NumColors, h, w},
		DType: x.DType,
		Data:  append([]float64(nil), x.Data[:cut]...),
	}
	labels = &model.Array{
		Shape: []int{x.Shape[0] - c.NumColors, h, w},
		DType: model.Uint8,
		Data:  append([]float64(nil), x.Data[cut:]...),
	}
	return img, labels, nil
}
