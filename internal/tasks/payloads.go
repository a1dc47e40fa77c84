package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"resumeBuilder/internal/storage"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypePreviewRender = "preview:render"
)

// PreviewRenderPayload 描述渲染一份保存记录的预览页所需的最小信息。
type PreviewRenderPayload struct {
	ResumeID      uint   `json:"resume_id"`
	OwnerID       uint   `json:"owner_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewPreviewRenderTask 构造一个新的预览渲染任务。
func NewPreviewRenderTask(resumeID, ownerID uint, correlationID string, opts ...asynq.Option) (*asynq.Task, error) {
	payload, err := json.Marshal(PreviewRenderPayload{
		ResumeID:      resumeID,
		OwnerID:       ownerID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePreviewRender, payload, opts...), nil
}

// ParsePreviewRenderPayload 解析任务负载。
func ParsePreviewRenderPayload(t *asynq.Task) (PreviewRenderPayload, error) {
	var payload PreviewRenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return PreviewRenderPayload{}, fmt.Errorf("decode %s payload: %w", t.Type(), err)
	}
	if payload.ResumeID == 0 {
		return PreviewRenderPayload{}, fmt.Errorf("decode %s payload: resume_id is required", t.Type())
	}
	return payload, nil
}

// PreviewObjectKey 返回预览页在对象存储中的位置。
func PreviewObjectKey(ownerID, resumeID uint) string {
	return storage.PreviewKey(ownerID, resumeID)
}
