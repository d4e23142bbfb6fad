package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/TIANLI0/segcheck/config"
	"github.com/TIANLI0/segcheck/model"
	"github.com/TIANLI0/segcheck/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisService(cfg *config.RedisConfig) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisService{
		client: client,
		ttl:    cfg.TTL,
	}
}

func (s *RedisService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func reportKey(md5 string) string {
	return "report:" + md5
}

// GetReport 获取缓存的校验报告，未命中时返回 nil
func (s *RedisService) GetReport(ctx context.Context, md5 string) (*model.ValidationReport, error) {
	data, err := s.client.Get(ctx, reportKey(md5)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var report model.ValidationReport
	if err := json.Unmarshal(data, &report); err != nil {
		utils.Logger.Error("failed to unmarshal validation report",
			zap.String("md5", md5), zap.Error(err))
		return nil, err
	}

	return &report, nil
}

// SetReport 按MD5缓存校验报告
func (s *RedisService) SetReport(ctx context.Context, report *model.ValidationReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, reportKey(report.MD5), data, s.ttl).Err()
}

func (s *RedisService) Close() error {
	return s.client.Close()
}
