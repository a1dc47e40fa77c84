package preview

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/style"
)

func fullDocument() resume.Document {
	doc := resume.NewDocument()
	doc.FullName = "Ada Lovelace"
	doc.Email = "ada@example.com"
	doc.Phone = "555-0100"
	doc.Summary = "Mathematician"
	doc.Experience = []string{"Analytical Engine notes", "Translator"}
	doc.Education = []string{"Home tutoring"}
	doc.SkillCategories = []resume.SkillCategory{
		{Name: "Languages", Skills: []string{"Go", "Rust"}},
		{Name: "Tools", Skills: []string{"Git"}},
	}
	doc.Achievements = []string{"First published algorithm"}
	doc.Theme = resume.ThemeBlue
	return doc
}

func TestRender_SkillGroupsUseAccent(t *testing.T) {
	doc := resume.NewDocument()
	doc.SkillCategories = []resume.SkillCategory{
		{Name: "Languages", Skills: []string{"Go", "Rust"}},
		{Name: "Tools", Skills: []string{"Git"}},
	}
	desc := style.Resolve(resume.TemplateModern, resume.ThemeBlue)

	out := Render(doc, desc)

	skills, ok := out.Section(SectionSkills)
	require.True(t, ok)
	assert.Equal(t, "Skills", skills.Title)
	require.Len(t, skills.Groups, 2)
	assert.Equal(t, "Languages", skills.Groups[0].Name)
	assert.Equal(t, "Tools", skills.Groups[1].Name)

	var tags []Tag
	for _, g := range skills.Groups {
		tags = append(tags, g.Tags...)
	}
	require.Len(t, tags, 3)
	assert.Equal(t, []string{"Go", "Rust", "Git"}, []string{tags[0].Text, tags[1].Text, tags[2].Text})
	for _, tag := range tags {
		assert.Equal(t, "#0EA5E9", tag.Color)
		assert.Equal(t, "#0EA5E920", tag.Background)
	}
}

func TestRender_OmitsEmptySections(t *testing.T) {
	doc := resume.NewDocument()
	doc.Experience = []string{}
	doc.Education = []string{}

	out := Render(doc, style.ForDocument(doc))

	assert.Empty(t, out.Sections)
	assert.Equal(t, "", out.Header.Contact)
}

func TestRender_BlankEntriesStillShowSection(t *testing.T) {
	out := RenderDocument(resume.NewDocument())

	require.Len(t, out.Sections, 2)
	assert.Equal(t, SectionExperience, out.Sections[0].Kind)
	assert.Equal(t, []string{""}, out.Sections[0].Items)
	assert.Equal(t, SectionEducation, out.Sections[1].Kind)
}

func TestRender_SectionOrderAndTitles(t *testing.T) {
	out := RenderDocument(fullDocument())

	var kinds []SectionKind
	var titles []string
	for _, s := range out.Sections {
		kinds = append(kinds, s.Kind)
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []SectionKind{
		SectionSummary, SectionExperience, SectionEducation, SectionSkills, SectionAchievements,
	}, kinds)
	assert.Equal(t, []string{
		"Professional Summary", "Professional Experience", "Education", "Skills", "Key Achievements",
	}, titles)

	exp, _ := out.Section(SectionExperience)
	assert.Equal(t, []string{"Analytical Engine notes", "Translator"}, exp.Items)
}

func TestRender_Header(t *testing.T) {
	doc := fullDocument()
	ref := "https://cdn.example.com/ada.png"
	doc.ProfileImageRef = &ref

	out := RenderDocument(doc)
	assert.Equal(t, "Ada Lovelace", out.Header.FullName)
	assert.Equal(t, "ada@example.com • 555-0100", out.Header.Contact)
	assert.Equal(t, ref, out.Header.ImageRef)

	doc.Email = ""
	assert.Equal(t, "555-0100", RenderDocument(doc).Header.Contact)
}

func TestRender_IsIdempotentAndDoesNotAlias(t *testing.T) {
	doc := fullDocument()
	desc := style.ForDocument(doc)

	first := Render(doc, desc)
	second := Render(doc, desc)
	assert.Equal(t, first, second)

	doc.Experience[0] = "changed"
	exp, _ := first.Section(SectionExperience)
	assert.Equal(t, "Analytical Engine notes", exp.Items[0])
}

func TestRenderHTML(t *testing.T) {
	doc := fullDocument()
	doc.Summary = "<script>alert(1)</script>"
	display := RenderDocument(doc)

	var first, second bytes.Buffer
	require.NoError(t, RenderHTML(&first, display))
	require.NoError(t, RenderHTML(&second, display))
	assert.Equal(t, first.String(), second.String())

	page := first.String()
	assert.Contains(t, page, "Ada Lovelace")
	assert.Contains(t, page, "Key Achievements")
	assert.Contains(t, page, "ada@example.com • 555-0100")
	assert.Contains(t, page, `data-section="skills"`)
	assert.NotContains(t, page, "<script>alert(1)</script>")
	assert.Contains(t, page, "&lt;script&gt;")
}
