package resume

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	doc := sampleDocument()
	doc.FullName = "Ada Lovelace"
	doc.Email = "ada@example.com"
	doc.Phone = "+44 1"
	doc.Summary = "Analyst"
	doc.Template = TemplateCreative
	doc.Theme = ThemeOrange
	ref := "https://cdn.example.com/ada.png"
	doc.ProfileImageRef = &ref

	data, err := EncodeSnapshot(doc)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, "creative", flat["template"])
	assert.Equal(t, "orange", flat["theme"])

	got, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestDecodeSnapshot_AcceptsStringPayload(t *testing.T) {
	doc := sampleDocument()
	data, err := EncodeSnapshot(doc)
	require.NoError(t, err)

	wrapped, err := json.Marshal(string(data))
	require.NoError(t, err)

	got, err := DecodeSnapshot(wrapped)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestDecodeSnapshot_DefaultsMissingFields(t *testing.T) {
	got, err := DecodeSnapshot([]byte(`{"fullName":"Only Name"}`))
	require.NoError(t, err)

	assert.Equal(t, "Only Name", got.FullName)
	assert.Equal(t, "", got.Email)
	assert.Equal(t, []string{""}, got.Experience)
	assert.Equal(t, []string{""}, got.Education)
	assert.Equal(t, []SkillCategory{}, got.SkillCategories)
	assert.Equal(t, []string{}, got.Achievements)
	assert.Equal(t, TemplateModern, got.Template)
	assert.Equal(t, ThemePurple, got.Theme)
	assert.Nil(t, got.ProfileImageRef)
}

func TestDecodeSnapshot_KeepsExplicitEmptyLists(t *testing.T) {
	got, err := DecodeSnapshot([]byte(`{"experience":[],"education":null}`))
	require.NoError(t, err)

	assert.Equal(t, []string{}, got.Experience)
	assert.Equal(t, []string{""}, got.Education)
}

func TestDecodeSnapshot_LegacyDesignKey(t *testing.T) {
	got, err := DecodeSnapshot([]byte(`{"design":"professional","theme":"red","skillCategories":[{"name":"Go"}]}`))
	require.NoError(t, err)

	assert.Equal(t, TemplateProfessional, got.Template)
	assert.Equal(t, ThemeRed, got.Theme)
	require.Len(t, got.SkillCategories, 1)
	assert.Equal(t, []string{}, got.SkillCategories[0].Skills)

	got, err = DecodeSnapshot([]byte(`{"design":"creative","template":"minimal"}`))
	require.NoError(t, err)
	assert.Equal(t, TemplateMinimal, got.Template)
}

func TestDecodeSnapshot_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":          ``,
		"blank string":   `"   "`,
		"array":          `[1,2]`,
		"number":         `12`,
		"broken object":  `{"fullName":`,
		"wrong type":     `{"experience":"not a list"}`,
		"string garbage": `"not json at all"`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeSnapshot([]byte(raw))
			var decodeErr *DecodeError
			require.ErrorAs(t, err, &decodeErr)
		})
	}
}

func TestValidateSnapshot(t *testing.T) {
	data, err := EncodeSnapshot(NewDocument())
	require.NoError(t, err)
	require.NoError(t, ValidateSnapshot(data))

	err = ValidateSnapshot([]byte(`{"experience":[1],"education":[],"skillCategories":[],"achievements":[],"template":"modern","theme":"purple"}`))
	require.ErrorIs(t, err, ErrValidation)

	err = ValidateSnapshot([]byte(`{"experience":[],"education":[],"skillCategories":[{"name":"","skills":[]}],"achievements":[],"template":"modern","theme":"purple"}`))
	require.ErrorIs(t, err, ErrValidation)

	var zero Document
	data, err = EncodeSnapshot(zero.Normalized())
	require.NoError(t, err)
	assert.NoError(t, ValidateSnapshot(data))
}
