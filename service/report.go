package service

import (
	"context"
	"slices"
	"time"

	"github.com/TIANLI0/segcheck/model"
	"github.com/TIANLI0/segcheck/utils"
)

// ReportCache 按请求内容哈希存储校验报告
type ReportCache interface {
	GetReport(ctx context.Context, md5 string) (*model.ValidationReport, error)
	SetReport(ctx context.Context, report *model.ValidationReport) error
}

// NewReport 生成校验报告
func NewReport(kind, md5 string, shape []int, err error) *model.ValidationReport {
	report := &model.ValidationReport{
		ID:        utils.GenerateID(),
		MD5:       md5,
		Kind:      kind,
		Valid:     err == nil,
		Shape:     slices.Clone(shape),
		Timestamp: time.Now().Unix(),
	}
	if err != nil {
		report.Error = err.Error()
		report.Field = FieldOf(err)
		if k := KindOf(err); k != 0 {
			report.ErrorKind = k.String()
		}
	}
	return report
}

// Cacheable 报告能否复用于相同的请求
// 抽样检查通过的组合图像不缓存，未抽到的标签仍可能有误
func (v *Validator) Cacheable(report *model.ValidationReport) bool {
	if report.Kind == model.ReportCombined && report.Valid {
		return v.mode == LabelCheckExhaustive
	}
	return true
}
