// Package imgio 负责图像文件、OpenCV Mat 与数组之间的转换
package imgio

import (
	"fmt"

	"github.com/TIANLI0/segcheck/model"
	"gocv.io/x/gocv"
)

// DecodeImage 解码 PNG/JPEG/TIFF 图片
// numColors 为 1 时返回 (H, W) 数组，否则返回 (H, W, numColors) 的 RGB(A) 数组
func DecodeImage(data []byte, numColors int) (*model.Array, error) {
	var flag gocv.IMReadFlag
	switch numColors {
	case 1:
		flag = gocv.IMReadGrayScale
	case 3:
		flag = gocv.IMReadColor
	case 4:
		flag = gocv.IMReadUnchanged
	default:
		return nil, fmt.Errorf("cannot decode image files with %d colors", numColors)
	}

	img, err := gocv.IMDecode(data, flag)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	defer img.Close()
	if img.Empty() {
		return nil, fmt.Errorf("failed to decode image")
	}

	switch numColors {
	case 3:
		rgb := gocv.NewMat()
		defer rgb.Close()
		gocv.CvtColor(img, &rgb, gocv.ColorBGRToRGB)
		return MatToArray(rgb)
	case 4:
		if img.Channels() != 4 {
			return nil, fmt.Errorf("4 channel image required, got %d", img.Channels())
		}
		rgba := gocv.NewMat()
		defer rgba.Close()
		gocv.CvtColor(img, &rgba, gocv.ColorBGRAToRGBA)
		return MatToArray(rgba)
	}
	return MatToArray(img)
}

// DecodeMask 解码 8 位或 16 位单通道掩码，不做颜色转换，像素值即对象ID
func DecodeMask(data []byte) (*model.Array, error) {
	mask, err := gocv.IMDecode(data, gocv.IMReadUnchanged)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mask: %w", err)
	}
	defer mask.Close()
	if mask.Empty() {
		return nil, fmt.Errorf("failed to decode mask")
	}
	if mask.Channels() != 1 {
		return nil, fmt.Errorf("single channel mask required, got %d channels", mask.Channels())
	}
	return MatToArray(mask)
}

// MatToArray 将 8 位或 16 位无符号 Mat 复制为数组
// 单通道为 (rows, cols)，多通道为 (rows, cols, channels)
func MatToArray(m gocv.Mat) (*model.Array, error) {
	rows, cols, ch := m.Rows(), m.Cols(), m.Channels()
	shape := []int{rows, cols}
	if ch > 1 {
		shape = append(shape, ch)
	}

	src := m
	if !m.IsContinuous() {
		src = m.Clone()
		defer src.Close()
	}

	switch depth := m.Type() & 7; depth {
	case gocv.MatTypeCV8U:
		arr := model.NewArray(model.Uint8, shape...)
		raw := src.ToBytes()
		for i, b := range raw[:len(arr.Data)] {
			arr.Data[i] = float64(b)
		}
		return arr, nil
	case gocv.MatTypeCV16U:
		arr := model.NewArray(model.Uint16, shape...)
		raw, err := src.DataPtrUint16()
		if err != nil {
			return nil, fmt.Errorf("failed to read 16 bit mat: %w", err)
		}
		for i, v := range raw[:len(arr.Data)] {
			arr.Data[i] = float64(v)
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unsupported mat depth %d", depth)
	}
}

// LabelComponents 将二值前景掩码 (H, W) 转换为对象掩码
// 背景为对象 0，每个 8 连通前景区域为一个独立对象
// 返回对象掩码和包含背景在内的对象数
func LabelComponents(binary *model.Array) (*model.Array, int, error) {
	if binary == nil || binary.Rank() != 2 || !binary.IsDense() {
		return nil, 0, fmt.Errorf("dense 2 dimensional mask required")
	}
	rows, cols := binary.Shape[0], binary.Shape[1]

	buf := make([]byte, len(binary.Data))
	for i, v := range binary.Data {
		if v != 0 {
			buf[i] = 255
		}
	}
	src, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV8U, buf)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build mask mat: %w", err)
	}
	defer src.Close()

	labels := gocv.NewMat()
	defer labels.Close()
	n := gocv.ConnectedComponents(src, &labels)

	out := model.NewArray(model.Int32, rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.Set(float64(labels.GetIntAt(r, c)), r, c)
		}
	}
	return out, n, nil
}

// EncodeLabelPreview 将组合图像 (C, H, W) 的一个通道渲染为 PNG，0 为黑色，其余为白色
func EncodeLabelPreview(x *model.Array, channel int) ([]byte, error) {
	if x == nil || x.Rank() != 3 || !x.IsDense() {
		return nil, fmt.Errorf("dense 3 dimensional array required")
	}
	if channel < 0 || channel >= x.Shape[0] {
		return nil, fmt.Errorf("channel %d out of range [0, %d)", channel, x.Shape[0])
	}
	h, w := x.Shape[1], x.Shape[2]
	plane := x.Data[channel*h*w : (channel+1)*h*w]

	buf := make([]byte, len(plane))
	for i, v := range plane {
		if v != 0 {
			buf[i] = 255
		}
	}
	mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8U, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build preview mat: %w", err)
	}
	defer mat.Close()

	data, err := gocv.IMEncode(".png", mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	defer data.Close()

	return append([]byte(nil), data.GetBytes()...), nil
}
