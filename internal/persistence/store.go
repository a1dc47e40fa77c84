// Package persistence 负责保存与读取简历快照。
package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound 表示记录不存在或不属于当前用户。
	ErrNotFound = errors.New("saved resume not found")
	// ErrAuthRequired 表示未登录用户尝试保存或读取，提示其先登录。
	ErrAuthRequired = errors.New("please sign in to save your resume")
	// ErrRemote 是所有存储层失败的统一归类。
	ErrRemote = errors.New("remote store error")
)

// RemoteError 包装来自存储协作方的失败。
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() []error {
	return []error{ErrRemote, e.Err}
}

func remote(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return &RemoteError{Op: op, Err: err}
}

// Record 是存储中的一行。Data 是序列化后的文档快照，
// 历史数据中它可能是 JSON 对象，也可能是包着 JSON 的字符串。
type Record struct {
	ID        uint
	OwnerID   uint
	Name      string
	Data      []byte
	CreatedAt time.Time
}

// Store 是行存储协作方。实现只需插入与按用户读取。
type Store interface {
	Insert(ctx context.Context, rec Record) (Record, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]Record, error)
	Get(ctx context.Context, ownerID, id uint) (Record, error)
}
