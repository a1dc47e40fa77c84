package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/preview"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/session"
	"resumeBuilder/internal/style"
)

// SessionHandler 负责编辑会话的创建与所有字段编辑操作。
type SessionHandler struct {
	sessions *session.Registry
	logger   *slog.Logger
}

// NewSessionHandler 构造 SessionHandler。
func NewSessionHandler(sessions *session.Registry, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

type sessionResponse struct {
	ID         string          `json:"id"`
	Revision   uint64          `json:"revision"`
	LoadedFrom uint            `json:"loaded_from,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	Document   resume.Document `json:"document"`
}

type valueRequest struct {
	Value json.RawMessage `json:"value" binding:"required"`
}

type itemRequest struct {
	Value *string `json:"value" binding:"required"`
}

type profileRequest struct {
	Value *string `json:"value" binding:"required"`
}

type addCategoryRequest struct {
	Name string `json:"name"`
}

type addSkillRequest struct {
	Skill string `json:"skill"`
}

func newSessionResponse(entry *session.Entry) sessionResponse {
	doc, revision := entry.State.SnapshotWithRevision()
	return sessionResponse{
		ID:         entry.ID,
		Revision:   revision,
		LoadedFrom: entry.LoadedFrom(),
		CreatedAt:  entry.CreatedAt(),
		Document:   doc,
	}
}

// entry 取出当前用户的会话；失败时已经写好响应。
func (h *SessionHandler) entry(c *gin.Context) (*session.Entry, bool) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return nil, false
	}
	entry, err := h.sessions.Get(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return entry, true
}

// apply 执行一次编辑并返回最新状态。
func (h *SessionHandler) apply(c *gin.Context, entry *session.Entry, fn func(*resume.Document) error) {
	if err := entry.State.Apply(fn); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(entry))
}

// CreateSession 以空白文档开启一个编辑会话。
func (h *SessionHandler) CreateSession(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	entry, err := h.sessions.Create(userID, resume.NewDocument())
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.LoggerFromContext(c).Info("editing session created", slog.String("session_id", entry.ID))
	c.JSON(http.StatusCreated, newSessionResponse(entry))
}

// GetSession 返回会话中的完整文档。
func (h *SessionHandler) GetSession(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(entry))
}

// DeleteSession 结束会话，未保存的修改会丢失。
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	if err := h.sessions.Delete(userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateField 通用的顶层字段写入：PUT /sessions/:id/fields/:field {"value": ...}
func (h *SessionHandler) UpdateField(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}

	field, err := resume.ParseField(c.Param("field"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, bindingMessage(err))
		return
	}

	value, err := resume.DecodeFieldValue(field, req.Value)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := entry.State.Update(field, value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(entry))
}

// UpdateProfile 修改姓名、邮箱、电话或头像引用。
func (h *SessionHandler) UpdateProfile(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}

	field, err := resume.ParseProfileField(c.Param("field"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, bindingMessage(err))
		return
	}

	h.apply(c, entry, func(d *resume.Document) error {
		return d.UpdateProfile(field, *req.Value)
	})
}

// AppendItem 在列表末尾追加一个空条目。
func (h *SessionHandler) AppendItem(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}
	path, err := resume.ParseListPath(c.Param("list"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := entry.State.Apply(func(d *resume.Document) error { return d.Append(path) }); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSessionResponse(entry))
}

// UpdateItem 替换列表中的一个条目，不做裁剪。
func (h *SessionHandler) UpdateItem(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}
	path, err := resume.ParseListPath(c.Param("list"))
	if err != nil {
		respondError(c, err)
		return
	}
	index, ok := parseIndexParam(c, "index")
	if !ok {
		BadRequest(c, "invalid index")
		return
	}

	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, bindingMessage(err))
		return
	}

	h.apply(c, entry, func(d *resume.Document) error {
		return d.UpdateAt(path, index, *req.Value)
	})
}

// RemoveItem 删除列表中的一个条目，后续条目前移。
func (h *SessionHandler) RemoveItem(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}
	path, err := resume.ParseListPath(c.Param("list"))
	if err != nil {
		respondError(c, err)
		return
	}
	index, ok := parseIndexParam(c, "index")
	if !ok {
		BadRequest(c, "invalid index")
		return
	}

	h.apply(c, entry, func(d *resume.Document) error {
		return d.RemoveAt(path, index)
	})
}

// AddCategory 新增技能分类；名称为空白时静默忽略。
func (h *SessionHandler) AddCategory(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}

	var req addCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, bindingMessage(err))
		return
	}

	h.apply(c, entry, func(d *resume.Document) error {
		d.AddCategory(req.Name)
		return nil
	})
}

// RemoveCategory 删除整个技能分类。
func (h *SessionHandler) RemoveCategory(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}
	category, ok := parseIndexParam(c, "category")
	if !ok {
		BadRequest(c, "invalid category index")
		return
	}

	h.apply(c, entry, func(d *resume.Document) error {
		return d.RemoveCategory(category)
	})
}

// AddSkill 向分类追加技能；技能为空白时静默忽略。
func (h *SessionHandler) AddSkill(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}
	category, ok := parseIndexParam(c, "category")
	if !ok {
		BadRequest(c, "invalid category index")
		return
	}

	var req addSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, bindingMessage(err))
		return
	}

	h.apply(c, entry, func(d *resume.Document) error {
		return d.AddSkillToCategory(category, req.Skill)
	})
}

// RemoveSkill 删除分类中的一个技能。
func (h *SessionHandler) RemoveSkill(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}
	category, ok := parseIndexParam(c, "category")
	if !ok {
		BadRequest(c, "invalid category index")
		return
	}
	skill, ok := parseIndexParam(c, "skill")
	if !ok {
		BadRequest(c, "invalid skill index")
		return
	}

	h.apply(c, entry, func(d *resume.Document) error {
		return d.RemoveSkill(category, skill)
	})
}

// Preview 返回渲染后的预览；?format=html 时直接返回页面。
func (h *SessionHandler) Preview(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}

	doc := entry.State.Snapshot()
	display := preview.Render(doc, style.ForDocument(doc))

	if c.Query("format") != "html" {
		c.JSON(http.StatusOK, display)
		return
	}

	var buf bytes.Buffer
	if err := preview.RenderHTML(&buf, display); err != nil {
		middleware.LoggerFromContext(c).Error("render preview html failed", slog.Any("error", err))
		Internal(c, "failed to render preview")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
