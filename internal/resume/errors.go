package resume

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange 表示编辑操作拿到了过期或非法的下标，属于调用方错误。
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrValidation 表示用户输入不合法，操作被放弃且状态不变。
	ErrValidation = errors.New("validation failed")
	// ErrUnknownField 表示字段名不在文档结构中。
	ErrUnknownField = errors.New("unknown field")
)

// IndexError 描述一次越界访问。
type IndexError struct {
	Path  string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s[%d]: index out of range (len %d)", e.Path, e.Index, e.Len)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

// ValidationError 描述一次被拒绝的用户输入。
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func checkIndex(path string, index, length int) error {
	if index < 0 || index >= length {
		return &IndexError{Path: path, Index: index, Len: length}
	}
	return nil
}
