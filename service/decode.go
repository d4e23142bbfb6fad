package service

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/TIANLI0/segcheck/model"
)

type wireArray struct {
	Shape *[]int     `json:"shape"`
	DType *string    `json:"dtype"`
	Data  *[]float64 `json:"data"`
}

// DecodeArray 解码 {"shape": [...], "dtype": "...", "data": [...]}
// 结构错误报告为类型错误，数据长度与形状不符留给校验器处理
func DecodeArray(data []byte) (*model.Array, error) {
	return decodeArray(data, "")
}

func decodeArray(data []byte, field string) (*model.Array, error) {
	if !isJSONObject(data) {
		return nil, newError(KindType, field, "array object required")
	}
	var w wireArray
	if err := json.Unmarshal(data, &w); err != nil {
		ve := newError(KindType, field, "malformed array")
		ve.Err = err
		return nil, ve
	}
	if w.Shape == nil || w.DType == nil || w.Data == nil {
		return nil, newError(KindType, field, "array requires shape, dtype and data")
	}
	dtype, err := model.ParseDType(*w.DType)
	if err != nil {
		ve := newError(KindType, field, "unsupported dtype")
		ve.Err = err
		return nil, ve
	}
	return &model.Array{Shape: *w.Shape, DType: dtype, Data: *w.Data}, nil
}

// DecodeImageWithMask 解码 {"img": ARRAY, "mask": ARRAY, "object_class": [int]}
// 非对象报告为类型错误，缺少字段报告为缺失字段错误
func DecodeImageWithMask(data []byte) (*model.ImageWithMask, error) {
	if !isJSONObject(data) {
		return nil, newError(KindType, "", "object with img, mask and object_class required")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		ve := newError(KindType, "", "malformed record")
		ve.Err = err
		return nil, ve
	}
	for _, key := range []string{"img", "mask", "object_class"} {
		if _, ok := fields[key]; !ok {
			return nil, newError(KindMissingField, key, "img, mask and object_class required")
		}
	}

	img, err := decodeArray(fields["img"], "img")
	if err != nil {
		return nil, err
	}
	mask, err := decodeArray(fields["mask"], "mask")
	if err != nil {
		return nil, err
	}
	classes, err := decodeClasses(fields["object_class"])
	if err != nil {
		return nil, err
	}
	return &model.ImageWithMask{Img: img, Mask: mask, ObjectClass: classes}, nil
}

func decodeClasses(raw json.RawMessage) ([]int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, newError(KindType, "object_class", "list of class ids required")
	}
	var values []float64
	if err := json.Unmarshal(trimmed, &values); err != nil {
		ve := newError(KindType, "object_class", "list of class ids required")
		ve.Err = err
		return nil, ve
	}
	classes := make([]int, len(values))
	for i, v := range values {
		if v != math.Trunc(v) {
			return nil, newError(KindType, "object_class", "class id %v at index %d is not an integer", v, i)
		}
		classes[i] = int(v)
	}
	return classes, nil
}

func isJSONObject(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
