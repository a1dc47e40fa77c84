package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"

	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/persistence"
	"resumeBuilder/internal/preview"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/tasks"
)

// RecordFinder 按 id 读取保存记录，不做归属校验。
type RecordFinder interface {
	Find(ctx context.Context, id uint) (persistence.Record, error)
}

// Uploader 把渲染结果写入对象存储。
type Uploader interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
}

// PreviewTaskHandler 消费 preview:render 任务：
// 读取保存记录，渲染 HTML 预览并上传，然后通知前端。
type PreviewTaskHandler struct {
	records   RecordFinder
	storage   Uploader
	publisher Publisher
	logger    *slog.Logger
}

// NewPreviewTaskHandler 创建任务处理器。
func NewPreviewTaskHandler(records RecordFinder, storage Uploader, publisher Publisher, logger *slog.Logger) *PreviewTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreviewTaskHandler{
		records:   records,
		storage:   storage,
		publisher: publisher,
		logger:    logger,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *PreviewTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	payload, err := tasks.ParsePreviewRenderPayload(t)
	if err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("resume_id", uint64(payload.ResumeID)),
	)
	log.Info("starting preview render task")

	rec, err := h.records.Find(ctx, payload.ResumeID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			log.Warn("resume not found, skipping task")
			h.notifyFailure(ctx, log, payload.OwnerID, NotifyMessage{
				Status:        StatusError,
				ResumeID:      payload.ResumeID,
				CorrelationID: payload.CorrelationID,
				ErrorCode:     errcode.ResourceMissing,
				ErrorMessage:  errcode.Text(errcode.ResourceMissing),
			})
			return nil
		}
		log.Error("query resume failed", slog.Any("error", err))
		return err
	}

	log = log.With(slog.Uint64("user_id", uint64(rec.OwnerID)))

	defer func() {
		if retErr == nil {
			return
		}
		if !isFinalAsynqAttempt(ctx) && !errors.Is(retErr, asynq.SkipRetry) {
			return
		}
		code := errcode.SystemError
		var decodeErr *resume.DecodeError
		if errors.As(retErr, &decodeErr) {
			code = errcode.InvalidSnapshot
		}
		h.notifyFailure(ctx, log, rec.OwnerID, NotifyMessage{
			Status:        StatusError,
			ResumeID:      rec.ID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     code,
			ErrorMessage:  errcode.Text(code),
		})
	}()

	doc, err := persistence.LoadOne(rec)
	if err != nil {
		log.Error("decode saved snapshot failed", slog.Any("error", err))
		return errors.Join(asynq.SkipRetry, err)
	}

	var buf bytes.Buffer
	if err := preview.RenderHTML(&buf, preview.RenderDocument(doc)); err != nil {
		log.Error("render preview failed", slog.Any("error", err))
		return err
	}

	objectName := tasks.PreviewObjectKey(rec.OwnerID, rec.ID)
	if _, err := h.storage.UploadFile(ctx, objectName, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "text/html; charset=utf-8"); err != nil {
		log.Error("upload preview to minio failed", slog.Any("error", err))
		return err
	}

	notify := NotifyMessage{
		Status:        StatusPreviewReady,
		ResumeID:      rec.ID,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
	}
	if err := PublishNotify(ctx, h.publisher, rec.OwnerID, notify); err != nil {
		// 预览已经上传成功，推送失败不重试整个任务。
		log.Warn("publish redis notification failed", slog.Any("error", err))
	}

	log.Info("preview render task completed", slog.String("object", objectName))
	return nil
}

func (h *PreviewTaskHandler) notifyFailure(ctx context.Context, log *slog.Logger, userID uint, notify NotifyMessage) {
	if userID == 0 {
		return
	}
	if err := PublishNotify(ctx, h.publisher, userID, notify); err != nil {
		log.Error("publish preview error notification failed", slog.Any("error", err))
	}
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
