package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/maya-downloads/api/internal/logger"
	"github.com/maya-downloads/api/internal/provider"
	"github.com/maya-downloads/api/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskVisitGeoEnrich, c.handleVisitGeoEnrich)
}

func (c *Consumer) handleVisitGeoEnrich(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_visit_geo_enrich_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.VisitGeoEnrichPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_visit_geo_enrich_unmarshal_failed", "error", err)
		return err
	}
	if strings.TrimSpace(payload.VisitID) == "" || strings.TrimSpace(payload.IP) == "" {
		logger.Debugw("worker_visit_geo_enrich_skip_invalid_payload", "visit_id", payload.VisitID)
		return nil
	}
	if c.TrackingService == nil {
		logger.Warnw("worker_visit_geo_enrich_skip_service_nil", "visit_id", payload.VisitID)
		return nil
	}
	if err := c.TrackingService.EnrichVisitGeo(payload.VisitID, payload.IP); err != nil {
		// 定位失败是常态（内网 IP、库缺条目），只降级记录不重试
		logger.Debugw("worker_visit_geo_enrich_lookup_failed", "visit_id", payload.VisitID, "error", err)
		return nil
	}
	return nil
}
