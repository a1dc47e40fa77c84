// Package session 管理进程内的编辑会话。每个会话独占一份文档。
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"resumeBuilder/internal/metrics"
	"resumeBuilder/internal/resume"
)

// ErrNotFound 表示会话不存在、已过期或属于其他用户。
var ErrNotFound = errors.New("editing session not found")

// Entry 是注册表中的一个会话。
type Entry struct {
	ID      string
	OwnerID uint
	State   *resume.Session

	mu        sync.Mutex
	createdAt time.Time
	touchedAt time.Time
	// loadedFrom 记录最近一次加载的保存记录 id，0 表示新建。
	loadedFrom uint
}

// CreatedAt 返回会话创建时间。
func (e *Entry) CreatedAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.createdAt
}

// LoadedFrom 返回最近一次加载的保存记录 id。
func (e *Entry) LoadedFrom() uint {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadedFrom
}

// MarkLoaded 记录会话内容来自哪条保存记录。
func (e *Entry) MarkLoaded(resumeID uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loadedFrom = resumeID
}

func (e *Entry) touch(now time.Time) {
	e.mu.Lock()
	e.touchedAt = now
	e.mu.Unlock()
}

func (e *Entry) idleSince() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.touchedAt
}

// Registry 以 uuid 为键保存会话，空闲超过 ttl 的会话会被清理。
type Registry struct {
	mu       sync.RWMutex
	entries  map[string]*Entry
	ttl      time.Duration
	maxTotal int
	now      func() time.Time
	logger   *slog.Logger
}

// ErrTooManySessions 表示注册表已满。
var ErrTooManySessions = errors.New("too many editing sessions")

// NewRegistry 创建注册表。ttl<=0 表示不过期，maxTotal<=0 表示不限数量。
func NewRegistry(ttl time.Duration, maxTotal int, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		entries:  make(map[string]*Entry),
		ttl:      ttl,
		maxTotal: maxTotal,
		now:      time.Now,
		logger:   logger,
	}
}

// Create 以给定文档开启新会话。
func (r *Registry) Create(ownerID uint, doc resume.Document) (*Entry, error) {
	now := r.now()
	entry := &Entry{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		State:     resume.NewSessionFrom(doc),
		createdAt: now,
		touchedAt: now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.maxTotal > 0 && len(r.entries) >= r.maxTotal {
		return nil, ErrTooManySessions
	}
	r.entries[entry.ID] = entry
	metrics.SetEditingSessions(len(r.entries))
	return entry, nil
}

// Get 返回属于 ownerID 的会话，并刷新其空闲时间。
func (r *Registry) Get(ownerID uint, id string) (*Entry, error) {
	r.mu.RLock()
	entry, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok || entry.OwnerID != ownerID {
		return nil, ErrNotFound
	}

	now := r.now()
	if r.expired(entry, now) {
		r.remove(id)
		metrics.ObserveExpiredSessions(1)
		return nil, ErrNotFound
	}
	entry.touch(now)
	return entry, nil
}

// Delete 结束会话。
func (r *Registry) Delete(ownerID uint, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok || entry.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(r.entries, id)
	metrics.SetEditingSessions(len(r.entries))
	return nil
}

// Len 返回当前会话数。
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Sweep 清理过期会话并返回清理数量。
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, entry := range r.entries {
		if r.expired(entry, now) {
			delete(r.entries, id)
			removed++
		}
	}
	metrics.SetEditingSessions(len(r.entries))
	metrics.ObserveExpiredSessions(removed)
	return removed
}

// Run 按 interval 周期清理，直到 ctx 结束。
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("swept idle editing sessions", slog.Int("count", n))
			}
		}
	}
}

func (r *Registry) expired(entry *Entry, now time.Time) bool {
	return r.ttl > 0 && now.Sub(entry.idleSince()) > r.ttl
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	delete(r.entries, id)
	metrics.SetEditingSessions(len(r.entries))
	r.mu.Unlock()
}
