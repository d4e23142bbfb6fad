package model

// ValidationReport 校验报告
type ValidationReport struct {
	ID        int64  `json:"id"`
	MD5       string `json:"md5"`
	Kind      string `json:"kind"` // image_with_mask, combined
	Valid     bool   `json:"valid"`
	ErrorKind string `json:"error_kind,omitempty"`
	Field     string `json:"field,omitempty"`
	Error     string `json:"error,omitempty"`
	Shape     []int  `json:"shape,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// 报告类型
const (
	ReportImageWithMask = "image_with_mask"
	ReportCombined      = "combined"
)

// ValidateResponse 校验响应
type ValidateResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    *ValidationReport `json:"data,omitempty"`
}

// CombineResponse 组合图像响应
type CombineResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *Array `json:"data,omitempty"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
