package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeBuilder/internal/resume"
)

func TestResolve_IsDeterministic(t *testing.T) {
	for _, tpl := range resume.Templates {
		for _, th := range resume.Themes {
			assert.Equal(t, Resolve(tpl, th), Resolve(tpl, th))
		}
	}
}

func TestResolve_AccentColors(t *testing.T) {
	want := map[resume.Theme]string{
		resume.ThemeRed:    "#ea384c",
		resume.ThemeBlue:   "#0EA5E9",
		resume.ThemePurple: "#9b87f5",
		resume.ThemeGreen:  "#10B981",
		resume.ThemeOrange: "#F97316",
		resume.ThemePink:   "#D946EF",
	}
	for theme, color := range want {
		d := Resolve(resume.TemplateModern, theme)
		assert.Equal(t, color, d.AccentColor, theme)
		assert.Equal(t, color+"20", d.TagBackground, theme)
	}
}

func TestResolve_UnknownThemeFallsBackToPurple(t *testing.T) {
	d := Resolve(resume.TemplateClassic, resume.Theme("teal"))

	assert.Equal(t, "#9b87f5", d.AccentColor)
	assert.Equal(t, resume.ThemePurple, d.Theme)
	assert.Equal(t, resume.TemplateClassic, d.Template)
}

func TestResolve_UnknownTemplateFallsBackToModern(t *testing.T) {
	got := Resolve(resume.Template("brutalist"), resume.ThemeBlue)
	want := Resolve(resume.TemplateModern, resume.ThemeBlue)

	assert.Equal(t, want, got)
	assert.Equal(t, resume.TemplateModern, got.Template)
}

func TestResolve_TemplatesHaveDistinctLayouts(t *testing.T) {
	seen := map[string]resume.Template{}
	for _, tpl := range resume.Templates {
		d := Resolve(tpl, resume.ThemeGreen)
		key := d.Container + "|" + d.Header + "|" + d.SectionTitle
		prev, dup := seen[key]
		require.False(t, dup, "%s duplicates %s", tpl, prev)
		seen[key] = tpl
		assert.NotContains(t, d.Container+d.Header+d.Decoration, "{theme}")
	}
}

func TestResolve_ExpandsThemeIntoClasses(t *testing.T) {
	d := Resolve(resume.TemplateModern, resume.ThemeOrange)
	assert.Contains(t, d.Container, "from-orange-50/10")

	d = Resolve(resume.TemplateCreative, resume.Theme("unknown"))
	assert.Contains(t, d.Container, "from-purple-50/20")
}

func TestNewCatalog(t *testing.T) {
	c := NewCatalog()

	require.Len(t, c.Templates, 5)
	require.Len(t, c.Themes, 6)
	assert.Equal(t, resume.TemplateModern, c.Templates[0].ID)
	assert.Equal(t, "Professional", c.Templates[4].Name)
	assert.Equal(t, "#0EA5E9", c.Themes[1].Color)
	assert.Equal(t, resume.ThemePurple, c.DefaultTheme)
}

func TestResolve_KnownValuesResolveToThemselves(t *testing.T) {
	for _, tpl := range resume.Templates {
		assert.True(t, tpl.Known())
		assert.Equal(t, tpl, ResolveTemplate(tpl))
	}
	for _, th := range resume.Themes {
		assert.True(t, th.Known())
		assert.Equal(t, th, ResolveTheme(th))
	}
	assert.False(t, resume.Template("").Known())
	assert.False(t, resume.Theme("teal").Known())
}
