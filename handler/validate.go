package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/TIANLI0/segcheck/config"
	"github.com/TIANLI0/segcheck/imgio"
	"github.com/TIANLI0/segcheck/model"
	"github.com/TIANLI0/segcheck/service"
	"github.com/TIANLI0/segcheck/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ValidateHandler struct {
	cfg       *config.Config
	cache     service.ReportCache
	validator *service.Validator
	configKey []byte
}

// NewValidateHandler 创建校验处理器，cache 为 nil 时不缓存报告
func NewValidateHandler(cfg *config.Config, cache service.ReportCache, validator *service.Validator) *ValidateHandler {
	key, _ := json.Marshal(cfg.Core)
	return &ValidateHandler{
		cfg:       cfg,
		cache:     cache,
		validator: validator,
		configKey: key,
	}
}

// ValidateImageWithMask 校验 JSON 记录或 multipart 上传的图片与掩码
func (h *ValidateHandler) ValidateImageWithMask(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		h.validateUpload(c)
		return
	}

	body, ok := h.readBody(c)
	if !ok {
		return
	}
	md5 := utils.PayloadMD5(model.ReportImageWithMask, h.configKey, body)
	if h.respondCached(c, md5) {
		return
	}

	x, err := service.DecodeImageWithMask(body)
	if err == nil {
		err = h.validator.ValidateImageWithMask(x, &h.cfg.Core)
	}
	var shape []int
	if x != nil && x.Img != nil {
		shape = x.Img.Shape
	}
	h.respond(c, service.NewReport(model.ReportImageWithMask, md5, shape, err))
}

func (h *ValidateHandler) validateUpload(c *gin.Context) {
	imgFile, err := c.FormFile("image")
	if err != nil {
		h.badRequest(c, "请上传图片文件", err)
		return
	}
	maskFile, err := c.FormFile("mask")
	if err != nil {
		h.badRequest(c, "请上传掩码文件", err)
		return
	}
	for _, f := range []*multipart.FileHeader{imgFile, maskFile} {
		if f.Size > h.cfg.Upload.MaxSize {
			h.badRequest(c, fmt.Sprintf("文件大小超过限制 (%d MB)", h.cfg.Upload.MaxSize/(1024*1024)), nil)
			return
		}
		if !h.isAllowedType(f.Header.Get("Content-Type")) {
			h.badRequest(c, "不支持的文件类型", nil)
			return
		}
	}

	classesRaw, ok := c.GetPostForm("object_class")
	if !ok {
		report := service.NewReport(model.ReportImageWithMask, "", nil, service.MissingFieldError("object_class"))
		utils.Logger.Info("input rejected",
			zap.String("kind", report.Kind),
			zap.String("error_kind", report.ErrorKind),
			zap.String("error", report.Error))
		h.write(c, report, "")
		return
	}
	classes, err := parseClasses(classesRaw)
	if err != nil {
		h.badRequest(c, "object_class 必须是逗号分隔的整数或 JSON 整数数组", err)
		return
	}

	imgData, err := readFile(imgFile)
	if err != nil {
		h.badRequest(c, "读取图片失败", err)
		return
	}
	maskData, err := readFile(maskFile)
	if err != nil {
		h.badRequest(c, "读取掩码失败", err)
		return
	}

	md5 := utils.PayloadMD5(model.ReportImageWithMask, h.configKey, imgData, maskData, []byte(classesRaw))
	if h.respondCached(c, md5) {
		return
	}

	img, err := imgio.DecodeImage(imgData, h.cfg.Core.NumColors)
	if err != nil {
		h.badRequest(c, "图片解码失败", err)
		return
	}
	mask, err := imgio.DecodeMask(maskData)
	if err != nil {
		h.badRequest(c, "掩码解码失败", err)
		return
	}

	utils.Logger.Info("image with mask uploaded",
		zap.String("md5", md5),
		zap.Ints("img_shape", img.Shape),
		zap.Ints("mask_shape", mask.Shape),
		zap.Int("num_objects", len(classes)))

	x := &model.ImageWithMask{Img: img, Mask: mask, ObjectClass: classes}
	err = h.validator.ValidateImageWithMask(x, &h.cfg.Core)
	h.respond(c, service.NewReport(model.ReportImageWithMask, md5, img.Shape, err))
}

// ValidateCombined 校验 JSON 格式的组合图像
func (h *ValidateHandler) ValidateCombined(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}
	md5 := utils.PayloadMD5(model.ReportCombined, h.configKey, body)
	if h.respondCached(c, md5) {
		return
	}

	x, err := service.DecodeArray(body)
	if err == nil {
		err = h.validator.ValidateCombinedImage(x, &h.cfg.Core)
	}
	var shape []int
	if x != nil {
		shape = x.Shape
	}
	h.respond(c, service.NewReport(model.ReportCombined, md5, shape, err))
}

// Combine 由 JSON 记录生成组合图像
func (h *ValidateHandler) Combine(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}
	x, err := service.DecodeImageWithMask(body)
	if err == nil {
		var out *model.Array
		out, err = h.validator.CombineImage(x, &h.cfg.Core)
		if err == nil {
			c.JSON(http.StatusOK, model.CombineResponse{
				Success: true,
				Message: "组合成功",
				Data:    out,
			})
			return
		}
	}
	c.JSON(http.StatusUnprocessableEntity, model.ErrorResponse{
		Success: false,
		Message: "图片与掩码校验失败",
		Error:   err.Error(),
	})
}

// GetReport 根据MD5获取缓存的校验报告
func (h *ValidateHandler) GetReport(c *gin.Context) {
	md5 := c.Param("md5")
	if md5 == "" {
		h.badRequest(c, "MD5参数缺失", nil)
		return
	}
	if h.cache == nil {
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Success: false,
			Message: "报告缓存未启用",
		})
		return
	}

	report, err := h.cache.GetReport(c.Request.Context(), md5)
	if err != nil {
		utils.Logger.Error("failed to get report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Message: "查询失败",
			Error:   err.Error(),
		})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Success: false,
			Message: "未找到该校验报告",
		})
		return
	}

	c.JSON(http.StatusOK, model.ValidateResponse{
		Success: true,
		Message: "查询成功",
		Data:    report,
	})
}

// GetConfig 返回服务使用的核心配置
func (h *ValidateHandler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"core":        h.cfg.Core,
		"label_check": h.cfg.Validator.LabelCheck,
	})
}

func (h *ValidateHandler) respondCached(c *gin.Context, md5 string) bool {
	if h.cache == nil {
		return false
	}
	report, err := h.cache.GetReport(c.Request.Context(), md5)
	if err != nil {
		utils.Logger.Warn("failed to get cache", zap.Error(err))
		return false
	}
	if report == nil {
		return false
	}
	utils.Logger.Info("cache hit", zap.String("md5", md5))
	h.write(c, report, "校验通过（来自缓存）")
	return true
}

func (h *ValidateHandler) respond(c *gin.Context, report *model.ValidationReport) {
	if report.Valid {
		utils.Logger.Info("input valid",
			zap.String("kind", report.Kind), zap.String("md5", report.MD5))
	} else {
		utils.Logger.Info("input rejected",
			zap.String("kind", report.Kind),
			zap.String("md5", report.MD5),
			zap.String("error_kind", report.ErrorKind),
			zap.String("error", report.Error))
	}

	if h.cache != nil && h.validator.Cacheable(report) {
		if err := h.cache.SetReport(c.Request.Context(), report); err != nil {
			utils.Logger.Warn("failed to set cache", zap.Error(err))
		}
	}
	h.write(c, report, "校验通过")
}

func (h *ValidateHandler) write(c *gin.Context, report *model.ValidationReport, message string) {
	status := http.StatusOK
	if !report.Valid {
		status = http.StatusUnprocessableEntity
		message = "校验失败"
	}
	c.JSON(status, model.ValidateResponse{
		Success: report.Valid,
		Message: message,
		Data:    report,
	})
}

func (h *ValidateHandler) readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Upload.MaxSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.badRequest(c, fmt.Sprintf("请求体大小超过限制 (%d 字节)", tooLarge.Limit), nil)
			return nil, false
		}
		h.badRequest(c, "读取请求体失败", err)
		return nil, false
	}
	return body, true
}

func (h *ValidateHandler) badRequest(c *gin.Context, message string, err error) {
	resp := model.ErrorResponse{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
		utils.Logger.Warn("bad request", zap.String("message", message), zap.Error(err))
	}
	c.JSON(http.StatusBadRequest, resp)
}

func (h *ValidateHandler) isAllowedType(contentType string) bool {
	for _, allowed := range h.cfg.Upload.AllowedTypes {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// parseClasses 支持 "0,1,1" 或 "[0, 1, 1]" 两种格式
func parseClasses(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		var classes []int
		if err := json.Unmarshal([]byte(s), &classes); err != nil {
			return nil, err
		}
		if classes == nil {
			classes = []int{}
		}
		return classes, nil
	}
	classes := []int{}
	if s == "" {
		return classes, nil
	}
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		classes = append(classes, v)
	}
	return classes, nil
}
