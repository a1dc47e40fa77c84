package resume

// Template 表示预览的版式选择。
type Template string

const (
	TemplateModern       Template = "modern"
	TemplateClassic      Template = "classic"
	TemplateCreative     Template = "creative"
	TemplateMinimal      Template = "minimal"
	TemplateProfessional Template = "professional"
)

// Templates 按选择器中的展示顺序列出全部版式。
var Templates = []Template{
	TemplateModern,
	TemplateClassic,
	TemplateCreative,
	TemplateMinimal,
	TemplateProfessional,
}

// Known 判断版式是否为已知取值。
func (t Template) Known() bool {
	for _, known := range Templates {
		if t == known {
			return true
		}
	}
	return false
}

// Theme 表示强调色选择，与版式相互独立。
type Theme string

const (
	ThemeRed    Theme = "red"
	ThemeBlue   Theme = "blue"
	ThemePurple Theme = "purple"
	ThemeGreen  Theme = "green"
	ThemeOrange Theme = "orange"
	ThemePink   Theme = "pink"
)

// Themes 按选择器中的展示顺序列出全部主题色。
var Themes = []Theme{
	ThemeRed,
	ThemeBlue,
	ThemePurple,
	ThemeGreen,
	ThemeOrange,
	ThemePink,
}

// Known 判断主题色是否为已知取值。
func (t Theme) Known() bool {
	for _, known := range Themes {
		if t == known {
			return true
		}
	}
	return false
}

const (
	DefaultTemplate = TemplateModern
	DefaultTheme    = ThemePurple
)

// SkillCategory 是一组有名称的技能，只通过其在列表中的位置来定位。
type SkillCategory struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

// Document 是正在编辑的完整简历。
// 同一时刻只归属于一个编辑会话。
type Document struct {
	FullName        string          `json:"fullName"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	ProfileImageRef *string         `json:"profileImageRef,omitempty"`
	Summary         string          `json:"summary"`
	Experience      []string        `json:"experience"`
	Education       []string        `json:"education"`
	SkillCategories []SkillCategory `json:"skillCategories"`
	Achievements    []string        `json:"achievements"`
	Template        Template        `json:"template"`
	Theme           Theme           `json:"theme"`
}

// NewDocument 返回一份空白简历：经历与教育各带一个空条目。
func NewDocument() Document {
	return Document{
		Experience:      []string{""},
		Education:       []string{""},
		SkillCategories: []SkillCategory{},
		Achievements:    []string{},
		Template:        DefaultTemplate,
		Theme:           DefaultTheme,
	}
}

// Clone 返回深拷贝，调用方可以随意修改而不影响原文档。
func (d Document) Clone() Document {
	out := d
	if d.ProfileImageRef != nil {
		ref := *d.ProfileImageRef
		out.ProfileImageRef = &ref
	}
	out.Experience = cloneStrings(d.Experience)
	out.Education = cloneStrings(d.Education)
	out.Achievements = cloneStrings(d.Achievements)
	if d.SkillCategories != nil {
		out.SkillCategories = make([]SkillCategory, len(d.SkillCategories))
		for i, category := range d.SkillCategories {
			out.SkillCategories[i] = SkillCategory{
				Name:   category.Name,
				Skills: cloneStrings(category.Skills),
			}
		}
	}
	return out
}

// Normalized 返回把 nil 列表替换为空列表后的副本，用于序列化。
func (d Document) Normalized() Document {
	out := d.Clone()
	if out.Experience == nil {
		out.Experience = []string{}
	}
	if out.Education == nil {
		out.Education = []string{}
	}
	if out.Achievements == nil {
		out.Achievements = []string{}
	}
	if out.SkillCategories == nil {
		out.SkillCategories = []SkillCategory{}
	}
	for i := range out.SkillCategories {
		if out.SkillCategories[i].Skills == nil {
			out.SkillCategories[i].Skills = []string{}
		}
	}
	return out
}

// ImageRef 返回头像引用，未设置时为空串。
func (d Document) ImageRef() string {
	if d.ProfileImageRef == nil {
		return ""
	}
	return *d.ProfileImageRef
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
