// Package style 将 (版式, 主题色) 解析为预览渲染使用的样式描述。
package style

import (
	"strings"

	"resumeBuilder/internal/resume"
)

// Descriptor 是版式布局与主题色的组合结果。
type Descriptor struct {
	Template      resume.Template `json:"template"`
	Theme         resume.Theme    `json:"theme"`
	Container     string          `json:"container"`
	Header        string          `json:"header"`
	SectionTitle  string          `json:"section_title"`
	Decoration    string          `json:"decoration"`
	AccentColor   string          `json:"accent_color"`
	TagBackground string          `json:"tag_background"`
}

// layout 中的 {theme} 会被替换为解析后的主题色名称。
type layout struct {
	container    string
	header       string
	sectionTitle string
	decoration   string
}

var layouts = map[resume.Template]layout{
	resume.TemplateModern: {
		container:    "min-h-screen p-8 bg-gradient-to-r from-{theme}-50/10 to-white",
		header:       "mt-32",
		sectionTitle: "text-xl font-semibold mb-2",
		decoration:   "absolute top-0 right-0 w-2/3 h-2/3 bg-gradient-to-bl from-{theme}-100/20 via-transparent to-transparent rounded-full blur-3xl",
	},
	resume.TemplateClassic: {
		container:    "min-h-screen bg-white p-10 font-serif",
		header:       "text-center border-b-2 border-{theme}-200 pb-6",
		sectionTitle: "text-lg font-bold uppercase tracking-wide border-b mb-2",
		decoration:   "hidden",
	},
	resume.TemplateCreative: {
		container:    "min-h-screen bg-gradient-to-br from-{theme}-50/20 to-white p-8",
		header:       "relative z-10 mt-32",
		sectionTitle: "text-2xl font-bold italic mb-3",
		decoration:   "absolute inset-0 bg-gradient-to-br from-{theme}-100/10 via-transparent to-transparent",
	},
	resume.TemplateMinimal: {
		container:    "min-h-screen bg-white p-8",
		header:       "mt-32 border-l-4 pl-6",
		sectionTitle: "text-base font-medium uppercase text-gray-500 mb-2",
		decoration:   "hidden",
	},
	resume.TemplateProfessional: {
		container:    "min-h-screen bg-gray-50 p-8",
		header:       "mt-32 bg-white p-8 shadow-lg rounded-lg",
		sectionTitle: "text-xl font-semibold border-b pb-1 mb-2",
		decoration:   "hidden",
	},
}

var accentColors = map[resume.Theme]string{
	resume.ThemeRed:    "#ea384c",
	resume.ThemeBlue:   "#0EA5E9",
	resume.ThemePurple: "#9b87f5",
	resume.ThemeGreen:  "#10B981",
	resume.ThemeOrange: "#F97316",
	resume.ThemePink:   "#D946EF",
}

// tagAlpha 追加在强调色后面作为技能标签的半透明背景。
const tagAlpha = "20"

// ResolveTemplate 未知版式回落到 modern。
func ResolveTemplate(t resume.Template) resume.Template {
	if t.Known() {
		return t
	}
	return resume.DefaultTemplate
}

// ResolveTheme 未知主题色回落到 purple。
func ResolveTheme(t resume.Theme) resume.Theme {
	if t.Known() {
		return t
	}
	return resume.DefaultTheme
}

// AccentColor 返回主题色对应的十六进制颜色。
func AccentColor(t resume.Theme) string {
	return accentColors[ResolveTheme(t)]
}

// Resolve 是纯函数：相同输入总得到相同的描述。
func Resolve(template resume.Template, theme resume.Theme) Descriptor {
	tpl := ResolveTemplate(template)
	th := ResolveTheme(theme)
	l := layouts[tpl]
	accent := accentColors[th]

	expand := func(s string) string {
		return strings.ReplaceAll(s, "{theme}", string(th))
	}

	return Descriptor{
		Template:      tpl,
		Theme:         th,
		Container:     expand(l.container),
		Header:        expand(l.header),
		SectionTitle:  expand(l.sectionTitle),
		Decoration:    expand(l.decoration),
		AccentColor:   accent,
		TagBackground: accent + tagAlpha,
	}
}

// ForDocument 按文档当前的选择解析样式。
func ForDocument(doc resume.Document) Descriptor {
	return Resolve(doc.Template, doc.Theme)
}
