package model

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// DType 数组的元素类型
// 数值统一以 float64 保存，DType 记录源数据的类型
type DType int

const (
	DTypeInvalid DType = iota
	Uint8
	Uint16
	Int32
	Int64
	Float32
	Float64
)

var dtypeNames = map[DType]string{
	Uint8:   "uint8",
	Uint16:  "uint16",
	Int32:   "int32",
	Int64:   "int64",
	Float32: "float32",
	Float64: "float64",
}

func (d DType) String() string {
	if name, ok := dtypeNames[d]; ok {
		return name
	}
	return fmt.Sprintf("dtype(%d)", int(d))
}

// IsInteger 是否为整数类型
func (d DType) IsInteger() bool {
	switch d {
	case Uint8, Uint16, Int32, Int64:
		return true
	}
	return false
}

// Valid 是否为已知类型
func (d DType) Valid() bool {
	_, ok := dtypeNames[d]
	return ok
}

// ParseDType 将 "uint8" 等名称解析为 DType
func ParseDType(s string) (DType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d, name := range dtypeNames {
		if name == s {
			return d, nil
		}
	}
	return DTypeInvalid, fmt.Errorf("unknown dtype %q", s)
}

func (d DType) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("unknown dtype %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *DType) UnmarshalText(text []byte) error {
	parsed, err := ParseDType(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Array 行主序的稠密数值数组
type Array struct {
	Shape []int     `json:"shape"`
	DType DType     `json:"dtype"`
	Data  []float64 `json:"data"`
}

// NewArray 创建全零数组，形状含负数维度或元素数超出 int 范围时 panic
func NewArray(dtype DType, shape ...int) *Array {
	n, ok := volume(shape)
	if !ok {
		panic(fmt.Sprintf("model: invalid array shape %v", shape))
	}
	return &Array{
		Shape: slices.Clone(shape),
		DType: dtype,
		Data:  make([]float64, n),
	}
}

// volume 计算形状的元素数，含负数维度或乘积溢出 int 时 ok 为 false
func volume(shape []int) (n int, ok bool) {
	for _, s := range shape {
		if s < 0 {
			return 0, false
		}
		if s == 0 {
			return 0, true
		}
	}
	n = 1
	for _, s := range shape {
		if n > math.MaxInt/s {
			return 0, false
		}
		n *= s
	}
	return n, true
}

func (a *Array) Rank() int {
	return len(a.Shape)
}

// Size 形状对应的元素数，含负数维度或溢出时返回 -1
func (a *Array) Size() int {
	n, ok := volume(a.Shape)
	if !ok {
		return -1
	}
	return n
}

// IsDense 检查数组类型已知、形状合法且数据长度与形状一致
func (a *Array) IsDense() bool {
	if a == nil || !a.DType.Valid() {
		return false
	}
	n, ok := volume(a.Shape)
	return ok && len(a.Data) == n
}

func (a *Array) offset(idx []int) int {
	if len(idx) != len(a.Shape) {
		panic(fmt.Sprintf("model: index rank %d for array of rank %d", len(idx), len(a.Shape)))
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= a.Shape[i] {
			panic(fmt.Sprintf("model: index %v out of range for shape %v", idx, a.Shape))
		}
		off = off*a.Shape[i] + v
	}
	return off
}

func (a *Array) At(idx ...int) float64 {
	return a.Data[a.offset(idx)]
}

func (a *Array) Set(v float64, idx ...int) {
	a.Data[a.offset(idx)] = v
}

// Unique 返回排序后的去重值
func (a *Array) Unique() []float64 {
	seen := make(map[float64]struct{}, 16)
	out := make([]float64, 0, 16)
	for _, v := range a.Data {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func (a *Array) Clone() *Array {
	return &Array{
		Shape: slices.Clone(a.Shape),
		DType: a.DType,
		Data:  slices.Clone(a.Data),
	}
}
