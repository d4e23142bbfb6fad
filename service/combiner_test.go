package service

import (
	"testing"

	"github.com/TIANLI0/segcheck/config"
	"github.com/TIANLI0/segcheck/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func channel(x *model.Array, k int) []float64 {
	plane := x.Shape[1] * x.Shape[2]
	return x.Data[k*plane : (k+1)*plane]
}

func TestCombineImage(t *testing.T) {
	c := coreConfig(1, 2, config.Offset{X: 1}, config.Offset{Y: -1})
	x := record(3, 3, 1)
	for i := range x.Img.Data {
		x.Img.Data[i] = float64(10 * i)
	}

	out, err := CombineImage(x, c)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 3, 3}, out.Shape)

	assert.Equal(t, []float64{0, 10, 20, 30, 40, 50, 60, 70, 80}, channel(out, 0))
	// 除最左列外均为类别 0
	assert.Equal(t, []float64{0, 1, 1, 0, 1, 1, 0, 1, 1}, channel(out, 1))
	assert.Equal(t, []float64{1, 0, 0, 1, 0, 0, 1, 0, 0}, channel(out, 2))
	// 只有中间两列与右邻居属于同一对象
	assert.Equal(t, []float64{0, 1, 0, 0, 1, 0, 0, 1, 0}, channel(out, 3))
	// 第 0 行没有上邻居，每列上下一致
	assert.Equal(t, []float64{0, 0, 0, 1, 1, 1, 1, 1, 1}, channel(out, 4))

	assert.NoError(t, NewValidator(LabelCheckExhaustive, 0).ValidateCombinedImage(out, c))
}

func TestCombineImage_ColorChannelsFirst(t *testing.T) {
	c := coreConfig(3, 2)
	x := record(2, 2, 3)
	for p := 0; p < 4; p++ {
		for ch := 0; ch < 3; ch++ {
			x.Img.Data[p*3+ch] = float64(100*ch + p)
		}
	}

	out, err := CombineImage(x, c)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 2, 2}, out.Shape)
	assert.Equal(t, []float64{0, 1, 2, 3}, channel(out, 0))
	assert.Equal(t, []float64{100, 101, 102, 103}, channel(out, 1))
	assert.Equal(t, []float64{200, 201, 202, 203}, channel(out, 2))
}

func TestCombineImage_InvalidInput(t *testing.T) {
	x := record(3, 3, 1)
	x.ObjectClass = []int{0, 7}
	_, err := CombineImage(x, coreConfig(1, 2))
	assert.ErrorIs(t, err, ErrValueRange)
}

func TestSplitCombinedImage(t *testing.T) {
	c := coreConfig(1, 2, config.Offset{X: 1})
	out, err := CombineImage(record(4, 5, 1), c)
	require.NoError(t, err)

	img, labels, err := SplitCombinedImage(out, c)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 5}, img.Shape)
	assert.Equal(t, []int{3, 4, 5}, labels.Shape)
	assert.Equal(t, channel(out, 0), img.Data)
	assert.Equal(t, out.Data[20:], labels.Data)

	out.Data[len(out.Data)-1] = 3
	_, _, err = SplitCombinedImage(out, c)
	assert.ErrorIs(t, err, ErrValueRange)
}

func TestCombineImage_OverflowingShape(t *testing.T) {
	x := &model.ImageWithMask{
		Img:         &model.Array{Shape: []int{4294967296, 4294967296}, DType: model.Uint8, Data: []float64{}},
		Mask:        &model.Array{Shape: []int{4294967296, 4294967296}, DType: model.Int32, Data: []float64{}},
		ObjectClass: []int{0},
	}
	assert.NotPanics(t, func() {
		_, err := CombineImage(x, coreConfig(1, 1))
		assert.ErrorIs(t, err, ErrType)
	})
}

func TestCombineImage_ZeroArea(t *testing.T) {
	c := coreConfig(1, 2, config.Offset{X: 1})
	for _, shape := range [][]int{{0, 1 << 40}, {1 << 40, 0}} {
		x := &model.ImageWithMask{
			Img:         &model.Array{Shape: shape, DType: model.Uint8, Data: []float64{}},
			Mask:        &model.Array{Shape: shape, DType: model.Int32, Data: []float64{}},
			ObjectClass: []int{},
		}
		out, err := CombineImage(x, c)
		require.NoError(t, err)
		assert.Equal(t, []int{4, shape[0], shape[1]}, out.Shape)
		assert.Empty(t, out.Data)
		assert.NoError(t, NewValidator(LabelCheckExhaustive, 1).ValidateCombinedImage(out, c))
	}
}
