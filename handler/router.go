package handler

import (
	"net/http"

	"github.com/TIANLI0/segcheck/middleware"
	"github.com/gin-gonic/gin"
)

// BuildInfo 由 /health 和 /version 返回的构建信息
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
	GitBranch string `json:"git_branch"`
}

// NewRouter 注册 API 路由
func NewRouter(h *ValidateHandler, info BuildInfo) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": info.Version,
		})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, info)
	})

	api := r.Group("/api/v1")
	{
		api.GET("/config", h.GetConfig)
		api.POST("/validate/image-with-mask", h.ValidateImageWithMask)
		api.POST("/validate/combined", h.ValidateCombined)
		api.POST("/combine", h.Combine)
		api.GET("/report/:md5", h.GetReport)
	}
	return r
}
