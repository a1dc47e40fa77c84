// Package enhance 负责把简历中的一段文本交给 AI 润色并写回会话。
package enhance

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind 是润色的内容类型，同时作为提示词中的 type。
type Kind string

const (
	KindSummary    Kind = "summary"
	KindExperience Kind = "experience"
	KindSkills     Kind = "skills"
)

// ParseKind 解析请求中的内容类型。
func ParseKind(raw string) (Kind, error) {
	switch k := Kind(strings.TrimSpace(raw)); k {
	case KindSummary, KindExperience, KindSkills:
		return k, nil
	default:
		return "", fmt.Errorf("unknown enhance kind %q", raw)
	}
}

var (
	// ErrEnhanceFailed 表示协作方出错、传输失败或返回了空结果。
	ErrEnhanceFailed = errors.New("enhance failed")
	// ErrStaleResult 表示调用期间目标文本已被用户修改，结果被丢弃。
	ErrStaleResult = errors.New("enhance result is stale")
)

// Enhancer 是 AI 文本改写协作方。
type Enhancer interface {
	Enhance(ctx context.Context, text string, kind Kind) (string, error)
}

// EnhancerFunc 让普通函数满足 Enhancer。
type EnhancerFunc func(ctx context.Context, text string, kind Kind) (string, error)

func (f EnhancerFunc) Enhance(ctx context.Context, text string, kind Kind) (string, error) {
	return f(ctx, text, kind)
}

// promptTemplate 与 enhance-content 端点保持一致。
const promptTemplate = "Improve this %s for a professional resume: %s"

// BuildPrompt 生成发送给模型的提示词。
func BuildPrompt(text string, kind Kind) string {
	return fmt.Sprintf(promptTemplate, kind, text)
}
