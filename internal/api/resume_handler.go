package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/persistence"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/session"
	"resumeBuilder/internal/tasks"
)

// TaskEnqueuer 是 asynq.Client 的入队能力。
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// PreviewLinker 为预览页生成临时链接。
type PreviewLinker interface {
	ObjectExists(ctx context.Context, objectKey string) (bool, error)
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error)
}

// ResumeHandler 负责保存、列出与载入简历快照。
type ResumeHandler struct {
	sessions   *session.Registry
	adapter    *persistence.Adapter
	queue      TaskEnqueuer
	previews   PreviewLinker
	maxRetry   int
	previewTTL time.Duration
}

// NewResumeHandler 构造 ResumeHandler。queue 或 previews 为 nil 时跳过预览生成与链接。
func NewResumeHandler(
	sessions *session.Registry,
	adapter *persistence.Adapter,
	queue TaskEnqueuer,
	previews PreviewLinker,
	maxRetry int,
	previewTTL time.Duration,
) *ResumeHandler {
	return &ResumeHandler{
		sessions:   sessions,
		adapter:    adapter,
		queue:      queue,
		previews:   previews,
		maxRetry:   maxRetry,
		previewTTL: previewTTL,
	}
}

type saveResumeRequest struct {
	Name string `json:"name"`
}

type savedResumeResponse struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"created_at"`
	PreviewPending bool      `json:"preview_pending"`
}

type resumeListItem struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	PreviewURL string    `json:"preview_url,omitempty"`
}

type resumeResponse struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"created_at"`
	Document  resume.Document `json:"document"`
}

// SaveResume 把会话当前文档保存为一条新记录，然后排队生成预览页。
func (h *ResumeHandler) SaveResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	entry, err := h.sessions.Get(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req saveResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, bindingMessage(err))
		return
	}

	rec, err := h.adapter.Save(c.Request.Context(), userID, req.Name, entry.State.Snapshot())
	if err != nil {
		respondError(c, err)
		return
	}

	log := middleware.LoggerFromContext(c).With(slog.Uint64("resume_id", uint64(rec.ID)))
	log.Info("resume saved", slog.String("session_id", entry.ID))

	c.JSON(http.StatusCreated, savedResumeResponse{
		ID:             rec.ID,
		Name:           rec.Name,
		CreatedAt:      rec.CreatedAt,
		PreviewPending: h.enqueuePreview(c, log, rec),
	})
}

// enqueuePreview 失败只记录日志，保存本身已经成功。
func (h *ResumeHandler) enqueuePreview(c *gin.Context, log *slog.Logger, rec persistence.Record) bool {
	if h.queue == nil {
		return false
	}
	task, err := tasks.NewPreviewRenderTask(rec.ID, rec.OwnerID, middleware.GetCorrelationID(c))
	if err != nil {
		log.Error("create preview task failed", slog.Any("error", err))
		return false
	}
	opts := []asynq.Option{}
	if h.maxRetry > 0 {
		opts = append(opts, asynq.MaxRetry(h.maxRetry))
	}
	info, err := h.queue.Enqueue(task, opts...)
	if err != nil {
		log.Error("enqueue preview task failed", slog.Any("error", err))
		return false
	}
	log.Info("preview task enqueued", slog.String("task_id", info.ID))
	return true
}

// LoadResume 用已保存的快照整体替换会话文档。
func (h *ResumeHandler) LoadResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	entry, err := h.sessions.Get(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resumeID, ok := parseUintParam(c, "resumeID")
	if !ok {
		BadRequest(c, "invalid resume id")
		return
	}

	rec, doc, err := h.adapter.Load(c.Request.Context(), userID, resumeID)
	if err != nil {
		respondError(c, err)
		return
	}

	entry.State.Replace(doc)
	entry.MarkLoaded(rec.ID)
	c.JSON(http.StatusOK, newSessionResponse(entry))
}

// ListResumes 返回当前用户的全部简历，新的在前。
func (h *ResumeHandler) ListResumes(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	records, err := h.adapter.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]resumeListItem, 0, len(records))
	for _, rec := range records {
		items = append(items, resumeListItem{
			ID:         rec.ID,
			Name:       rec.Name,
			CreatedAt:  rec.CreatedAt,
			PreviewURL: h.previewURL(c, rec),
		})
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *ResumeHandler) previewURL(c *gin.Context, rec persistence.Record) string {
	if h.previews == nil {
		return ""
	}
	ctx := c.Request.Context()
	key := tasks.PreviewObjectKey(rec.OwnerID, rec.ID)

	exists, err := h.previews.ObjectExists(ctx, key)
	if err != nil || !exists {
		if err != nil {
			middleware.LoggerFromContext(c).Warn("stat preview failed", slog.String("object_key", key), slog.Any("error", err))
		}
		return ""
	}
	url, err := h.previews.GeneratePresignedURL(ctx, key, h.previewTTL)
	if err != nil {
		middleware.LoggerFromContext(c).Warn("presign preview failed", slog.String("object_key", key), slog.Any("error", err))
		return ""
	}
	return url
}

// GetResume 返回一条记录及其解码后的文档。
func (h *ResumeHandler) GetResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	resumeID, ok := parseUintParam(c, "id")
	if !ok {
		BadRequest(c, "invalid resume id")
		return
	}

	rec, doc, err := h.adapter.Load(c.Request.Context(), userID, resumeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resumeResponse{
		ID:        rec.ID,
		Name:      rec.Name,
		CreatedAt: rec.CreatedAt,
		Document:  doc,
	})
}
