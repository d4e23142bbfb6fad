package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/TIANLI0/segcheck/handler"
	"github.com/TIANLI0/segcheck/service"
	"github.com/TIANLI0/segcheck/utils"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the validation HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := *loadConfig()
		if corePath != "" {
			core, err := loadCore()
			if err != nil {
				return err
			}
			cfg.Core = *core
		}

		utils.Logger.Info("starting segcheck server",
			zap.String("version", Version),
			zap.String("build_time", BuildTime),
			zap.String("git_commit", GitCommit),
			zap.String("git_branch", GitBranch),
			zap.Int("num_colors", cfg.Core.NumColors),
			zap.Int("num_classes", cfg.Core.NumClasses),
			zap.Int("num_offsets", cfg.Core.NumOffsets()),
			zap.String("label_check", cfg.Validator.LabelCheck))

		if err := service.ValidateConfig(&cfg.Core, cfg.Validator.TrainImageSize); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var cache service.ReportCache
		if cfg.Redis.Enabled {
			redisService := service.NewRedisService(&cfg.Redis)
			defer redisService.Close()
			if err := redisService.Ping(ctx); err != nil {
				utils.Logger.Warn("redis connection failed, cache disabled", zap.Error(err))
			} else {
				utils.Logger.Info("redis connected successfully")
				cache = redisService
			}
		}

		validator := service.NewValidatorFromConfig(&cfg.Validator)
		h := handler.NewValidateHandler(&cfg, cache, validator)

		gin.SetMode(cfg.Server.Mode)
		r := handler.NewRouter(h, handler.BuildInfo{
			Version:   Version,
			BuildTime: BuildTime,
			GitCommit: GitCommit,
			GitBranch: GitBranch,
		})

		srv := &http.Server{
			Addr:         cfg.Server.Port,
			Handler:      r,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			utils.Logger.Info("server starting", zap.String("port", cfg.Server.Port))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		utils.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
