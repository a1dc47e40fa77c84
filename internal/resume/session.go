package resume

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Field 是文档的顶层字段名，与快照 JSON 的键一致。
type Field string

const (
	FieldFullName        Field = "fullName"
	FieldEmail           Field = "email"
	FieldPhone           Field = "phone"
	FieldProfileImageRef Field = "profileImageRef"
	FieldSummary         Field = "summary"
	FieldExperience      Field = "experience"
	FieldEducation       Field = "education"
	FieldSkillCategories Field = "skillCategories"
	FieldAchievements    Field = "achievements"
	FieldTemplate        Field = "template"
	FieldTheme           Field = "theme"
)

// ParseField 将路由参数解析为顶层字段。
func ParseField(raw string) (Field, error) {
	switch field := Field(raw); field {
	case FieldFullName, FieldEmail, FieldPhone, FieldProfileImageRef, FieldSummary,
		FieldExperience, FieldEducation, FieldSkillCategories, FieldAchievements,
		FieldTemplate, FieldTheme:
		return field, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, raw)
	}
}

// Session 是一个编辑会话持有的文档状态容器。
// 所有修改都经过它，并递增 revision。
type Session struct {
	mu       sync.Mutex
	doc      Document
	revision uint64
}

// NewSession 以空白文档创建会话。
func NewSession() *Session {
	return &Session{doc: NewDocument()}
}

// NewSessionFrom 以给定文档的副本创建会话。
func NewSessionFrom(doc Document) *Session {
	return &Session{doc: doc.Clone()}
}

// Snapshot 返回当前文档的深拷贝。
func (s *Session) Snapshot() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Revision 返回已提交的修改次数。
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// SnapshotWithRevision 在同一把锁内返回文档副本及其对应的 revision。
func (s *Session) SnapshotWithRevision() (Document, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone(), s.revision
}

// Apply 在副本上执行一次编辑操作，成功后整体提交；失败时状态不变。
func (s *Session) Apply(fn func(*Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.doc.Clone()
	if err := fn(&working); err != nil {
		return err
	}
	s.doc = working
	s.revision++
	return nil
}

// Replace 用加载的快照整体覆盖当前文档。
func (s *Session) Replace(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc.Clone()
	s.revision++
}

// Update 是所有编辑器共用的通用字段写入入口。
func (s *Session) Update(field Field, value any) error {
	return s.Apply(func(d *Document) error {
		return setField(d, field, value)
	})
}

func setField(d *Document, field Field, value any) error {
	switch field {
	case FieldFullName, FieldEmail, FieldPhone, FieldSummary:
		str, ok := value.(string)
		if !ok {
			return typeError(field, "string", value)
		}
		switch field {
		case FieldFullName:
			d.FullName = str
		case FieldEmail:
			d.Email = str
		case FieldPhone:
			d.Phone = str
		default:
			d.Summary = str
		}
	case FieldProfileImageRef:
		switch v := value.(type) {
		case nil:
			d.ProfileImageRef = nil
		case string:
			return d.UpdateProfile(ProfileImageRef, v)
		case *string:
			if v == nil {
				d.ProfileImageRef = nil
				return nil
			}
			return d.UpdateProfile(ProfileImageRef, *v)
		default:
			return typeError(field, "string", value)
		}
	case FieldExperience, FieldEducation, FieldAchievements:
		list, ok := value.([]string)
		if !ok {
			return typeError(field, "list of strings", value)
		}
		if list == nil {
			list = []string{}
		}
		l, _ := d.list(ListPath(field))
		*l = cloneStrings(list)
	case FieldSkillCategories:
		categories, ok := value.([]SkillCategory)
		if !ok {
			return typeError(field, "list of skill categories", value)
		}
		next := make([]SkillCategory, 0, len(categories))
		for i, category := range categories {
			if strings.TrimSpace(category.Name) == "" {
				return &ValidationError{
					Field:   fmt.Sprintf("skillCategories[%d].name", i),
					Message: "category name is required",
				}
			}
			skills := cloneStrings(category.Skills)
			if skills == nil {
				skills = []string{}
			}
			next = append(next, SkillCategory{Name: category.Name, Skills: skills})
		}
		d.SkillCategories = next
	case FieldTemplate:
		switch v := value.(type) {
		case Template:
			d.Template = v
		case string:
			d.Template = Template(v)
		default:
			return typeError(field, "string", value)
		}
	case FieldTheme:
		switch v := value.(type) {
		case Theme:
			d.Theme = v
		case string:
			d.Theme = Theme(v)
		default:
			return typeError(field, "string", value)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// DecodeFieldValue 将 JSON 值解码为 Update 期望的 Go 类型。
func DecodeFieldValue(field Field, raw json.RawMessage) (any, error) {
	var (
		target any
		err    error
	)
	switch field {
	case FieldFullName, FieldEmail, FieldPhone, FieldSummary:
		var v string
		err = json.Unmarshal(raw, &v)
		target = v
	case FieldProfileImageRef:
		var v *string
		err = json.Unmarshal(raw, &v)
		target = v
	case FieldExperience, FieldEducation, FieldAchievements:
		var v []string
		err = json.Unmarshal(raw, &v)
		target = v
	case FieldSkillCategories:
		var v []SkillCategory
		err = json.Unmarshal(raw, &v)
		target = v
	case FieldTemplate:
		var v string
		err = json.Unmarshal(raw, &v)
		target = Template(v)
	case FieldTheme:
		var v string
		err = json.Unmarshal(raw, &v)
		target = Theme(v)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if err != nil {
		return nil, &ValidationError{Field: string(field), Message: "invalid value: " + err.Error()}
	}
	return target, nil
}

func typeError(field Field, want string, got any) error {
	return &ValidationError{
		Field:   string(field),
		Message: fmt.Sprintf("expected %s, got %T", want, got),
	}
}
