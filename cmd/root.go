// Package cmd 实现 segcheck 命令行
package cmd

import (
	"fmt"
	"os"

	"github.com/TIANLI0/segcheck/config"
	"github.com/TIANLI0/segcheck/utils"
	"github.com/spf13/cobra"
)

// 构建信息，由 main 注入
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

var (
	configPath string
	corePath   string
	logMode    string

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "segcheck",
	Short: "Validate segmentation training inputs",
	Long:  `Checks segmentation configs, image/mask records and combined label tensors before they reach preprocessing or training.`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.NewFrom(configPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", configPath, err)
		}
		appConfig = cfg

		mode := logMode
		if mode == "" {
			mode = cfg.Server.Mode
		}
		if err := utils.InitLogger(mode); err != nil {
			return fmt.Errorf("initialise logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "application config file")
	rootCmd.PersistentFlags().StringVar(&corePath, "core", "", "core config file (overrides the core section of --config)")
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "log mode: debug or release (default from config)")
}

// loadConfig 返回命令执行前从 --config 读取的应用配置，文件不存在时为默认配置
func loadConfig() *config.Config {
	if appConfig == nil {
		panic("cmd: config used before PersistentPreRunE")
	}
	return appConfig
}

// loadCore 读取 --core 指定的核心配置，未指定时使用应用配置中的 core 段
func loadCore() (*config.CoreConfig, error) {
	if corePath != "" {
		return config.LoadCore(corePath)
	}
	core := loadConfig().Core
	return &core, nil
}

// Execute 执行根命令，出错或输入被拒绝时以退出码 1 结束
func Execute() {
	err := rootCmd.Execute()
	utils.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// RootCmd 返回根命令，供测试使用
func RootCmd() *cobra.Command {
	return rootCmd
}
