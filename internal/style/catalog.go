package style

import "resumeBuilder/internal/resume"

// TemplateOption 是版式选择器中的一项。
type TemplateOption struct {
	ID   resume.Template `json:"id"`
	Name string          `json:"name"`
}

// ThemeOption 是主题色选择器中的一项。
type ThemeOption struct {
	ID    resume.Theme `json:"id"`
	Color string       `json:"color"`
}

// Catalog 汇总全部可选项及默认值。
type Catalog struct {
	Templates       []TemplateOption `json:"templates"`
	Themes          []ThemeOption    `json:"themes"`
	DefaultTemplate resume.Template  `json:"default_template"`
	DefaultTheme    resume.Theme     `json:"default_theme"`
}

var templateNames = map[resume.Template]string{
	resume.TemplateModern:       "Modern",
	resume.TemplateClassic:      "Classic",
	resume.TemplateCreative:     "Creative",
	resume.TemplateMinimal:      "Minimal",
	resume.TemplateProfessional: "Professional",
}

func NewCatalog() Catalog {
	c := Catalog{
		Templates:       make([]TemplateOption, 0, len(resume.Templates)),
		Themes:          make([]ThemeOption, 0, len(resume.Themes)),
		DefaultTemplate: resume.DefaultTemplate,
		DefaultTheme:    resume.DefaultTheme,
	}
	for _, t := range resume.Templates {
		c.Templates = append(c.Templates, TemplateOption{ID: t, Name: templateNames[t]})
	}
	for _, th := range resume.Themes {
		c.Themes = append(c.Themes, ThemeOption{ID: th, Color: accentColors[th]})
	}
	return c
}
