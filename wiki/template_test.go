package wiki

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/wikirag/core"
)

const articleWikitext = `{{Article
|Articletitle=Deep Learning for Protein Folding
|Abstract=We present a method for predicting protein structure.
|Author=[[Jane Doe]], [[John Smith]]
|PublicationDate=2021-03-15
|PublishedIn=Nature
|Keyword=protein folding, deep learning
|DOI=10.1000/example
|CitedByCount=412
|FWCI=none
}}`

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		wikitext string
		want     core.EntityType
	}{
		{"article", "{{Article|Articletitle=X}}", core.EntityArticle},
		{"author", "{{Author|FullName=Jane}}", core.EntityAuthor},
		{"author with space", "{{ Author|FullName=Jane}}", core.EntityAuthor},
		{"institution", "{{Institution|InstitutionName=MIT}}", core.EntityInstitution},
		{"keyword", "{{Keyword|name=physics}}", core.EntityKeyword},
		{"case insensitive", "{{ARTICLE|Articletitle=X}}", core.EntityArticle},
		{"no template", "Just some free text.", core.EntityUnknown},
		{"empty", "", core.EntityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.wikitext))
		})
	}
}

func TestClassify_PrecedenceOrder(t *testing.T) {
	// A page mentioning several markers takes the highest-precedence one.
	text := "{{Article|Author=[[Jane]]}} see also {{Keyword|name=x}}"
	assert.Equal(t, core.EntityArticle, Classify(text))
}

func TestParseTemplate_Article(t *testing.T) {
	entity, meta := ParseTemplate(articleWikitext)
	require.Equal(t, core.EntityArticle, entity)

	title, ok := meta.Get("Articletitle")
	require.True(t, ok)
	assert.Equal(t, "Deep Learning for Protein Folding", title)

	authors, ok := meta.Get("Author")
	require.True(t, ok)
	assert.Equal(t, "[[Jane Doe]], [[John Smith]]", authors,
		"pipes inside [[...]] must not split fields")

	_, ok = meta.Get("FWCI")
	assert.False(t, ok, `values equal to "none" are dropped`)
}

func TestParseTemplate_DropsEmptyValues(t *testing.T) {
	_, meta := ParseTemplate("{{Article|Abstract=   |DOI=10.1/x}}")
	_, ok := meta.Get("Abstract")
	assert.False(t, ok)
	doi, ok := meta.Get("DOI")
	require.True(t, ok)
	assert.Equal(t, "10.1/x", doi)
}

func TestParseTemplate_MultilineValue(t *testing.T) {
	text := "{{Article\n|Abstract=First line.\nSecond line.\n|DOI=10.1/x\n}}"
	_, meta := ParseTemplate(text)
	abstract, ok := meta.Get("Abstract")
	require.True(t, ok)
	assert.Equal(t, "First line.\nSecond line.", abstract)
}

func TestParseTemplate_NestedTemplate(t *testing.T) {
	text := "{{Article|Topic={{Tag|name=ml|weight=1}}|DOI=10.1/x}}"
	_, meta := ParseTemplate(text)
	topic, ok := meta.Get("Topic")
	require.True(t, ok)
	assert.Equal(t, "{{Tag|name=ml|weight=1}}", topic,
		"pipes inside nested templates must not split fields")
}

func TestParseTemplate_Keyword(t *testing.T) {
	entity, meta := ParseTemplate("{{Keyword|name=quantum computing|count=12}}")
	require.Equal(t, core.EntityKeyword, entity)

	name, ok := meta.Get("name")
	require.True(t, ok)
	assert.Equal(t, "quantum computing", name)

	_, ok = meta.Get("count")
	assert.False(t, ok, "keyword pages keep only the name field")
}

func TestParseTemplate_Unknown(t *testing.T) {
	entity, meta := ParseTemplate("  Plain page body.  ")
	require.Equal(t, core.EntityUnknown, entity)

	raw, ok := meta.Get("raw")
	require.True(t, ok)
	assert.Equal(t, "Plain page body.", raw)
}

func TestExtractFields_NoTemplate(t *testing.T) {
	meta := extractFields("no braces here")
	assert.Empty(t, meta)
}

func TestExtractFields_KeyWithSpaces(t *testing.T) {
	_, meta := ParseTemplate("{{Author|Current affiliation=MIT}}")
	v, ok := meta.Get("Current affiliation")
	require.True(t, ok)
	assert.Equal(t, "MIT", v)
}
