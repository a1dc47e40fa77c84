package resume

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// DecodeError 表示保存的快照无法还原为文档。
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode snapshot: %s: %v", e.Reason, e.Err)
	}
	return "decode snapshot: " + e.Reason
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeSnapshot 将文档（含 template 与 theme）序列化为同一个 JSON 对象。
func EncodeSnapshot(doc Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// wireDocument 用指针/nil 区分“缺失”与“空值”。
// design 是早期版本对 template 的叫法。
type wireDocument struct {
	FullName        *string             `json:"fullName"`
	Email           *string             `json:"email"`
	Phone           *string             `json:"phone"`
	ProfileImageRef *string             `json:"profileImageRef"`
	Summary         *string             `json:"summary"`
	Experience      []string            `json:"experience"`
	Education       []string            `json:"education"`
	SkillCategories []wireSkillCategory `json:"skillCategories"`
	Achievements    []string            `json:"achievements"`
	Template        *string             `json:"template"`
	Design          *string             `json:"design"`
	Theme           *string             `json:"theme"`
}

type wireSkillCategory struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

// DecodeSnapshot 是唯一的快照解码入口。
// 存储层可能给出 JSON 对象，也可能给出内容为 JSON 的字符串（旧记录），两者统一处理；
// 缺失字段按空值补齐。
func DecodeSnapshot(raw []byte) (Document, error) {
	payload := bytes.TrimSpace(raw)
	if len(payload) == 0 {
		return Document{}, &DecodeError{Reason: "empty payload"}
	}

	if payload[0] == '"' {
		var encoded string
		if err := json.Unmarshal(payload, &encoded); err != nil {
			return Document{}, &DecodeError{Reason: "invalid string payload", Err: err}
		}
		payload = bytes.TrimSpace([]byte(encoded))
		if len(payload) == 0 {
			return Document{}, &DecodeError{Reason: "empty string payload"}
		}
	}

	if payload[0] != '{' {
		return Document{}, &DecodeError{Reason: "payload is not a JSON object"}
	}

	var wire wireDocument
	if err := json.Unmarshal(payload, &wire); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return Document{}, &DecodeError{Reason: "unexpected type for " + typeErr.Field, Err: err}
		}
		return Document{}, &DecodeError{Reason: "invalid JSON object", Err: err}
	}

	return wire.document(), nil
}

func (w wireDocument) document() Document {
	doc := NewDocument()
	doc.FullName = deref(w.FullName)
	doc.Email = deref(w.Email)
	doc.Phone = deref(w.Phone)
	doc.Summary = deref(w.Summary)
	if w.ProfileImageRef != nil && *w.ProfileImageRef != "" {
		ref := *w.ProfileImageRef
		doc.ProfileImageRef = &ref
	}
	if w.Experience != nil {
		doc.Experience = w.Experience
	}
	if w.Education != nil {
		doc.Education = w.Education
	}
	if w.Achievements != nil {
		doc.Achievements = w.Achievements
	}
	if w.SkillCategories != nil {
		doc.SkillCategories = make([]SkillCategory, 0, len(w.SkillCategories))
		for _, category := range w.SkillCategories {
			skills := category.Skills
			if skills == nil {
				skills = []string{}
			}
			doc.SkillCategories = append(doc.SkillCategories, SkillCategory{Name: category.Name, Skills: skills})
		}
	}

	switch {
	case deref(w.Template) != "":
		doc.Template = Template(*w.Template)
	case deref(w.Design) != "":
		doc.Template = Template(*w.Design)
	}
	if theme := deref(w.Theme); theme != "" {
		doc.Theme = Theme(theme)
	}
	return doc
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
