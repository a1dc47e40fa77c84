package persistence

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"resumeBuilder/internal/resume"
)

// Adapter 在 Store 之上实现保存、列表与加载。
type Adapter struct {
	store Store
}

func NewAdapter(store Store) *Adapter {
	return &Adapter{store: store}
}

// Save 把文档序列化后插入一条新记录。
// 未登录或名称为空时直接返回，不会触达存储。
func (a *Adapter) Save(ctx context.Context, ownerID uint, name string, doc resume.Document) (Record, error) {
	if ownerID == 0 {
		return Record{}, ErrAuthRequired
	}
	if strings.TrimSpace(name) == "" {
		return Record{}, &resume.ValidationError{Field: "name", Message: "resume name is required"}
	}

	data, err := resume.EncodeSnapshot(doc.Normalized())
	if err != nil {
		return Record{}, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := resume.ValidateSnapshot(data); err != nil {
		return Record{}, err
	}

	rec, err := a.store.Insert(ctx, Record{OwnerID: ownerID, Name: name, Data: data})
	if err != nil {
		return Record{}, remote("insert resume", err)
	}
	return rec, nil
}

// List 返回用户的全部保存记录，最新的在前。
func (a *Adapter) List(ctx context.Context, ownerID uint) ([]Record, error) {
	if ownerID == 0 {
		return nil, ErrAuthRequired
	}
	records, err := a.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, remote("list resumes", err)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// Get 按 id 读取一条属于该用户的记录。
func (a *Adapter) Get(ctx context.Context, ownerID, id uint) (Record, error) {
	if ownerID == 0 {
		return Record{}, ErrAuthRequired
	}
	rec, err := a.store.Get(ctx, ownerID, id)
	if err != nil {
		return Record{}, remote("get resume", err)
	}
	return rec, nil
}

// LoadOne 是唯一的解码入口：要么得到完整文档，要么得到 *resume.DecodeError。
func LoadOne(rec Record) (resume.Document, error) {
	doc, err := resume.DecodeSnapshot(rec.Data)
	if err != nil {
		return resume.Document{}, fmt.Errorf("load resume %d: %w", rec.ID, err)
	}
	return doc, nil
}

// Load 读取并解码一条记录。
func (a *Adapter) Load(ctx context.Context, ownerID, id uint) (Record, resume.Document, error) {
	rec, err := a.Get(ctx, ownerID, id)
	if err != nil {
		return Record{}, resume.Document{}, err
	}
	doc, err := LoadOne(rec)
	if err != nil {
		return rec, resume.Document{}, err
	}
	return rec, doc, nil
}
