package queue

import (
	"encoding/json"

	"github.com/maya-downloads/api/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskVisitGeoEnrich 访问记录地理信息回填任务
	TaskVisitGeoEnrich = constants.TaskVisitGeoEnrich
)

// VisitGeoEnrichPayload 地理信息回填任务载荷
type VisitGeoEnrichPayload struct {
	VisitID string `json:"visit_id"`
	IP      string `json:"ip"`
}

// NewVisitGeoEnrichTask 构建地理信息回填任务
func NewVisitGeoEnrichTask(payload VisitGeoEnrichPayload) (*asynq.Task, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVisitGeoEnrich, raw), nil
}
