// Package preview 把简历文档投影为可直接展示的结构。
//
// Render 是纯函数，不修改输入；同一 (文档, 样式) 总得到相同结果。
package preview

import (
	"strings"

	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/style"
)

// SectionKind 标识预览中的区块类型。
type SectionKind string

const (
	SectionSummary      SectionKind = "summary"
	SectionExperience   SectionKind = "experience"
	SectionEducation    SectionKind = "education"
	SectionSkills       SectionKind = "skills"
	SectionAchievements SectionKind = "achievements"
)

var sectionTitles = map[SectionKind]string{
	SectionSummary:      "Professional Summary",
	SectionExperience:   "Professional Experience",
	SectionEducation:    "Education",
	SectionSkills:       "Skills",
	SectionAchievements: "Key Achievements",
}

const contactSeparator = " • "

// Header 是页眉：姓名、联系方式与可选头像。
type Header struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Contact  string `json:"contact"`
	ImageRef string `json:"image_ref,omitempty"`
}

// Tag 是一个带强调色的技能标签。
type Tag struct {
	Text       string `json:"text"`
	Color      string `json:"color"`
	Background string `json:"background"`
}

// SkillGroup 对应一个技能分类。
type SkillGroup struct {
	Name string `json:"name"`
	Tags []Tag  `json:"tags"`
}

// Section 是一个可见区块。技能区块使用 Groups，其他区块使用 Items。
type Section struct {
	Kind   SectionKind  `json:"kind"`
	Title  string       `json:"title"`
	Items  []string     `json:"items,omitempty"`
	Groups []SkillGroup `json:"groups,omitempty"`
}

// DisplayDocument 是渲染结果。
type DisplayDocument struct {
	Style    style.Descriptor `json:"style"`
	Header   Header           `json:"header"`
	Sections []Section        `json:"sections"`
}

// Section 按类型查找可见区块。
func (d DisplayDocument) Section(kind SectionKind) (Section, bool) {
	for _, s := range d.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return Section{}, false
}

// Render 生成预览。区块的可见性只由内容推导：
// 摘要非空、列表非空时才出现对应区块，顺序与文档一致。
func Render(doc resume.Document, desc style.Descriptor) DisplayDocument {
	out := DisplayDocument{
		Style:    desc,
		Header:   renderHeader(doc),
		Sections: []Section{},
	}

	if doc.Summary != "" {
		out.Sections = append(out.Sections, textSection(SectionSummary, []string{doc.Summary}))
	}
	if len(doc.Experience) > 0 {
		out.Sections = append(out.Sections, textSection(SectionExperience, doc.Experience))
	}
	if len(doc.Education) > 0 {
		out.Sections = append(out.Sections, textSection(SectionEducation, doc.Education))
	}
	if len(doc.SkillCategories) > 0 {
		groups := make([]SkillGroup, 0, len(doc.SkillCategories))
		for _, category := range doc.SkillCategories {
			tags := make([]Tag, 0, len(category.Skills))
			for _, skill := range category.Skills {
				tags = append(tags, Tag{
					Text:       skill,
					Color:      desc.AccentColor,
					Background: desc.TagBackground,
				})
			}
			groups = append(groups, SkillGroup{Name: category.Name, Tags: tags})
		}
		out.Sections = append(out.Sections, Section{
			Kind:   SectionSkills,
			Title:  sectionTitles[SectionSkills],
			Groups: groups,
		})
	}
	if len(doc.Achievements) > 0 {
		out.Sections = append(out.Sections, textSection(SectionAchievements, doc.Achievements))
	}
	return out
}

// RenderDocument 按文档自身的版式与主题色渲染。
func RenderDocument(doc resume.Document) DisplayDocument {
	return Render(doc, style.ForDocument(doc))
}

func renderHeader(doc resume.Document) Header {
	parts := make([]string, 0, 2)
	if doc.Email != "" {
		parts = append(parts, doc.Email)
	}
	if doc.Phone != "" {
		parts = append(parts, doc.Phone)
	}
	return Header{
		FullName: doc.FullName,
		Email:    doc.Email,
		Phone:    doc.Phone,
		Contact:  strings.Join(parts, contactSeparator),
		ImageRef: doc.ImageRef(),
	}
}

func textSection(kind SectionKind, items []string) Section {
	copied := make([]string, len(items))
	copy(copied, items)
	return Section{Kind: kind, Title: sectionTitles[kind], Items: copied}
}
