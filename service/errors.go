package service

import (
	"errors"
	"fmt"

	"github.com/TIANLI0/segcheck/config"
)

// Kind 校验失败的类别
type Kind int

const (
	KindType Kind = iota + 1
	KindMissingField
	KindShape
	KindValueRange
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindMissingField:
		return "missing_field"
	case KindShape:
		return "shape"
	case KindValueRange:
		return "value_range"
	case KindConfig:
		return "config"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// 用于 errors.Is 匹配同类别 *ValidationError 的哨兵错误
var (
	ErrType         = errors.New("type error")
	ErrMissingField = errors.New("missing field")
	ErrShape        = errors.New("shape error")
	ErrValueRange   = errors.New("value out of range")
)

// ValidationError 输入违反的约束
type ValidationError struct {
	Kind  Kind
	Field string
	Msg   string
	Err   error
}

func (e *ValidationError) Error() string {
	s := e.Kind.String()
	if e.Field != "" {
		s += " (" + e.Field + ")"
	}
	s += ": " + e.Msg
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrType:
		return e.Kind == KindType
	case ErrMissingField:
		return e.Kind == KindMissingField
	case ErrShape:
		return e.Kind == KindShape
	case ErrValueRange:
		return e.Kind == KindValueRange
	}
	return false
}

func newError(kind Kind, field, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// MissingFieldError 缺少必填字段
func MissingFieldError(field string) error {
	return newError(KindMissingField, field, "%s required", field)
}

// KindOf 返回校验失败的类别，其他错误返回 0
// 包装 config.ErrInvalidConfig 的错误返回 KindConfig
func KindOf(err error) Kind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	if errors.Is(err, config.ErrInvalidConfig) {
		return KindConfig
	}
	return 0
}

// FieldOf 返回出错的字段名
func FieldOf(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}
