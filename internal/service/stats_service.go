package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/maya-downloads/api/internal/cache"
	"github.com/maya-downloads/api/internal/config"
	"github.com/maya-downloads/api/internal/constants"
	"github.com/maya-downloads/api/internal/logger"
	"github.com/maya-downloads/api/internal/repository"
)

// StatsService 统计摘要服务
// 说明：窗口参数在这里规整（非法值回退默认、超界收敛到上限），
// 仓库层只接收合法窗口。Redis 可用时按窗口缓存整份摘要。
type StatsService struct {
	repo     repository.AnalyticsRepository
	tracking config.TrackingConfig
}

// NewStatsService 创建统计服务
func NewStatsService(repo repository.AnalyticsRepository, tracking config.TrackingConfig) *StatsService {
	return &StatsService{
		repo:     repo,
		tracking: tracking,
	}
}

// NormalizeWindowDays 规整统计窗口天数
// 非数字、非正数回退默认窗口，超过上限收敛到上限。允许小数窗口。
func NormalizeWindowDays(days float64) float64 {
	if math.IsNaN(days) || math.IsInf(days, 0) || days <= 0 {
		return constants.StatsDefaultWindowDays
	}
	if days > constants.StatsMaxWindowDays {
		return constants.StatsMaxWindowDays
	}
	return days
}

// GetStats 获取统计摘要，命中缓存时直接返回
func (s *StatsService) GetStats(ctx context.Context, days float64) (*repository.StatsSummary, error) {
	days = NormalizeWindowDays(days)
	key := statsCacheKey(days)

	var cached repository.StatsSummary
	if hit, err := cache.GetJSON(ctx, key, &cached); err != nil {
		logger.Debugw("stats_cache_get_failed", "key", key, "error", err)
	} else if hit {
		return &cached, nil
	}

	summary, err := s.repo.GetStats(ctx, days)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, key, summary, s.cacheTTL()); err != nil {
		logger.Debugw("stats_cache_set_failed", "key", key, "error", err)
	}
	return summary, nil
}

// WarmCache 预热默认窗口的统计缓存（worker 定时调用）
func (s *StatsService) WarmCache(ctx context.Context) error {
	days := float64(s.tracking.StatsWarmDays)
	days = NormalizeWindowDays(days)

	summary, err := s.repo.GetStats(ctx, days)
	if err != nil {
		return err
	}
	return cache.SetJSON(ctx, statsCacheKey(days), summary, s.cacheTTL())
}

func (s *StatsService) cacheTTL() time.Duration {
	seconds := s.tracking.StatsCacheTTLSeconds
	if seconds <= 0 {
		seconds = 60
	}
	return time.Duration(seconds) * time.Second
}

func statsCacheKey(days float64) string {
	return fmt.Sprintf("stats:summary:%g", days)
}
