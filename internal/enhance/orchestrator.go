package enhance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"resumeBuilder/internal/metrics"
	"resumeBuilder/internal/resume"
)

// Target 指定要润色的文本位置。
// summary 忽略索引；experience 使用 Index；skills 使用 Index 作为分类下标、SkillIndex 作为技能下标。
type Target struct {
	Kind       Kind `json:"kind"`
	Index      int  `json:"index"`
	SkillIndex int  `json:"skill_index"`
}

// Outcome 是一次成功润色的结果。
type Outcome struct {
	Target   Target `json:"target"`
	Original string `json:"original"`
	Improved string `json:"improved"`
}

// Orchestrator 读取会话中的文本，调用 Enhancer，并在文本未被改动时写回。
// 不做重试，超时由调用方的 context 控制。
type Orchestrator struct {
	enhancer Enhancer
	logger   *slog.Logger
}

func NewOrchestrator(enhancer Enhancer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{enhancer: enhancer, logger: logger}
}

// Enhance 执行一次润色。失败时会话状态保持不变。
func (o *Orchestrator) Enhance(ctx context.Context, session *resume.Session, target Target) (Outcome, error) {
	original, err := readTarget(session.Snapshot(), target)
	if err != nil {
		o.observe(target.Kind, err)
		return Outcome{}, err
	}

	improved, err := o.enhancer.Enhance(ctx, original, target.Kind)
	if err != nil {
		o.logger.Warn("enhance request failed",
			slog.String("kind", string(target.Kind)),
			slog.Any("error", err),
		)
		err = fmt.Errorf("%w: %v", ErrEnhanceFailed, err)
		o.observe(target.Kind, err)
		return Outcome{}, err
	}
	if strings.TrimSpace(improved) == "" {
		err = fmt.Errorf("%w: empty result", ErrEnhanceFailed)
		o.observe(target.Kind, err)
		return Outcome{}, err
	}

	err = session.Apply(func(d *resume.Document) error {
		current, err := readTarget(*d, target)
		if err != nil {
			return err
		}
		if current != original {
			return ErrStaleResult
		}
		return writeTarget(d, target, improved)
	})
	o.observe(target.Kind, err)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{Target: target, Original: original, Improved: improved}, nil
}

func (o *Orchestrator) observe(kind Kind, err error) {
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, ErrStaleResult):
		outcome = "stale"
	case errors.Is(err, resume.ErrIndexOutOfRange):
		outcome = "invalid_target"
	case errors.Is(err, ErrEnhanceFailed):
		outcome = "failed"
	default:
		outcome = "error"
	}
	metrics.ObserveEnhance(string(kind), outcome)
}

func readTarget(doc resume.Document, target Target) (string, error) {
	switch target.Kind {
	case KindSummary:
		return doc.Summary, nil
	case KindExperience:
		if err := boundsCheck("experience", target.Index, len(doc.Experience)); err != nil {
			return "", err
		}
		return doc.Experience[target.Index], nil
	case KindSkills:
		if err := boundsCheck("skillCategories", target.Index, len(doc.SkillCategories)); err != nil {
			return "", err
		}
		skills := doc.SkillCategories[target.Index].Skills
		path := fmt.Sprintf("skillCategories[%d].skills", target.Index)
		if err := boundsCheck(path, target.SkillIndex, len(skills)); err != nil {
			return "", err
		}
		return skills[target.SkillIndex], nil
	default:
		return "", &resume.ValidationError{Field: "kind", Message: fmt.Sprintf("unknown enhance kind %q", target.Kind)}
	}
}

func writeTarget(d *resume.Document, target Target, text string) error {
	switch target.Kind {
	case KindSummary:
		d.Summary = text
		return nil
	case KindExperience:
		return d.UpdateAt(resume.ListExperience, target.Index, text)
	case KindSkills:
		d.SkillCategories[target.Index].Skills[target.SkillIndex] = text
		return nil
	default:
		return &resume.ValidationError{Field: "kind", Message: fmt.Sprintf("unknown enhance kind %q", target.Kind)}
	}
}

func boundsCheck(path string, index, length int) error {
	if index < 0 || index >= length {
		return &resume.IndexError{Path: path, Index: index, Len: length}
	}
	return nil
}
