package wiki

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/wikirag/core"
)

func TestRenderText_Article(t *testing.T) {
	meta := core.Metadata{}
	meta.Set("Articletitle", "Protein Folding")
	meta.Set("Abstract", "A study of folding.")
	meta.Set("Author", "Jane Doe")
	meta.Set("CitedByCount", "42")

	text := RenderText(core.EntityArticle, meta, "Page Title")
	lines := strings.Split(text, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Research Article: Protein Folding", lines[0])
	assert.Equal(t, "Abstract: A study of folding.", lines[1])
	assert.Equal(t, "Authors: Jane Doe", lines[2])
	assert.Equal(t, "Cited By: 42 papers", lines[3])
}

func TestRenderText_ArticleFallsBackToPageTitle(t *testing.T) {
	text := RenderText(core.EntityArticle, core.Metadata{}, "Fallback Title")
	assert.Equal(t, "Research Article: Fallback Title", text)
}

func TestRenderText_Author(t *testing.T) {
	meta := core.Metadata{}
	meta.Set("FullName", "Jane Doe")
	meta.Set("institution", "MIT, Stanford")
	meta.Set("h_index", "35")
	meta.Set("orcid", "0000-0001-2345-6789")

	text := RenderText(core.EntityAuthor, meta, "Jane_Doe")
	lines := strings.Split(text, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Researcher: Jane Doe", lines[0])
	assert.Equal(t, "Affiliated Institutions: MIT, Stanford", lines[1])
	assert.Equal(t, "h-index: 35", lines[2])
	assert.Equal(t, "ORCID: 0000-0001-2345-6789", lines[3])
}

func TestRenderText_Institution(t *testing.T) {
	meta := core.Metadata{}
	meta.Set("InstitutionName", "MIT")
	meta.Set("InstitutionCountry", "US")
	meta.Set("InstitutionType", "education")

	text := RenderText(core.EntityInstitution, meta, "MIT")
	assert.Equal(t, "Institution: MIT\nCountry: US\nType: education", text)
}

func TestRenderText_Keyword(t *testing.T) {
	meta := core.Metadata{}
	meta.Set("name", "quantum computing")

	text := RenderText(core.EntityKeyword, meta, "Quantum computing")
	assert.Equal(t, "Keyword: quantum computing. This is a research keyword/topic used in the knowledge base.", text)

	text = RenderText(core.EntityKeyword, core.Metadata{}, "Quantum computing")
	assert.Contains(t, text, "Keyword: Quantum computing.", "falls back to the page title")
}

func TestRenderText_Unknown(t *testing.T) {
	meta := core.Metadata{}
	meta.Set("raw", "Free-form page body.")
	assert.Equal(t, "Free-form page body.", RenderText(core.EntityUnknown, meta, "T"))

	assert.Equal(t, "T", RenderText(core.EntityUnknown, core.Metadata{}, "T"),
		"empty raw falls back to the page title")
}

func TestRenderText_SkipsAbsentFields(t *testing.T) {
	meta := core.Metadata{}
	meta.Set("FullName", "Jane Doe")

	text := RenderText(core.EntityAuthor, meta, "Jane")
	assert.Equal(t, "Researcher: Jane Doe", text)
}
