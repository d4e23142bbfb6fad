package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArray_Index(t *testing.T) {
	a := NewArray(Float64, 2, 3, 4)
	assert.Equal(t, 3, a.Rank())
	assert.Equal(t, 24, a.Size())
	assert.Len(t, a.Data, 24)

	a.Set(7, 1, 2, 3)
	assert.Equal(t, 7.0, a.Data[23])
	assert.Equal(t, 7.0, a.At(1, 2, 3))

	a.Set(5, 0, 1, 2)
	assert.Equal(t, 5.0, a.Data[6])

	assert.Panics(t, func() { a.At(2, 0, 0) })
	assert.Panics(t, func() { a.At(0, 0) })
}

func TestArray_IsDense(t *testing.T) {
	assert.True(t, NewArray(Uint8, 4, 4).IsDense())
	assert.True(t, NewArray(Uint8, 0, 4).IsDense())

	var nilArray *Array
	assert.False(t, nilArray.IsDense())
	assert.False(t, (&Array{Shape: []int{2, 2}, DType: Uint8, Data: make([]float64, 3)}).IsDense())
	assert.False(t, (&Array{Shape: []int{2}, Data: make([]float64, 2)}).IsDense())
	assert.False(t, (&Array{Shape: []int{-1, -2}, DType: Int32, Data: make([]float64, 2)}).IsDense())
}

func TestArray_OverflowingShape(t *testing.T) {
	huge := &Array{Shape: []int{2, 4294967296, 4294967296}, DType: Float64, Data: []float64{}}
	assert.False(t, huge.IsDense())
	assert.Equal(t, -1, huge.Size())

	assert.Equal(t, -1, (&Array{Shape: []int{math.MaxInt, 2}}).Size())
	assert.Equal(t, 0, (&Array{Shape: []int{0, math.MaxInt, math.MaxInt}}).Size())
	assert.Equal(t, 0, (&Array{Shape: []int{math.MaxInt, math.MaxInt, 0}}).Size())
	assert.Equal(t, -1, (&Array{Shape: []int{math.MaxInt, -1, 0}}).Size())
	assert.Panics(t, func() { NewArray(Uint8, math.MaxInt, 3) })
	assert.Panics(t, func() { NewArray(Uint8, -1, 3) })
}

func TestArray_Unique(t *testing.T) {
	a := &Array{Shape: []int{6}, DType: Int32, Data: []float64{3, 1, 3, 0, 1, 1}}
	assert.Equal(t, []float64{0, 1, 3}, a.Unique())
}

func TestArray_Clone(t *testing.T) {
	a := NewArray(Int64, 2, 2)
	b := a.Clone()
	b.Set(1, 0, 0)
	b.Shape[0] = 9
	assert.Equal(t, 0.0, a.At(0, 0))
	assert.Equal(t, 2, a.Shape[0])
}

func TestDType(t *testing.T) {
	for _, d := range []DType{Uint8, Uint16, Int32, Int64} {
		assert.True(t, d.IsInteger(), d.String())
	}
	for _, d := range []DType{Float32, Float64, DTypeInvalid} {
		assert.False(t, d.IsInteger(), d.String())
	}

	d, err := ParseDType(" UINT16 ")
	require.NoError(t, err)
	assert.Equal(t, Uint16, d)

	_, err = ParseDType("bool")
	assert.Error(t, err)
	assert.Equal(t, "dtype(42)", DType(42).String())
}

func TestArray_JSON(t *testing.T) {
	a := &Array{Shape: []int{1, 2}, DType: Uint8, Data: []float64{3, 4}}
	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `{"shape":[1,2],"dtype":"uint8","data":[3,4]}`, string(data))

	var got Array
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, *a, got)

	assert.Error(t, json.Unmarshal([]byte(`{"dtype":"int8"}`), &got))
	_, err = json.Marshal(&Array{})
	assert.Error(t, err)
}
