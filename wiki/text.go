package wiki

import (
	"fmt"
	"strings"

	"github.com/poiesic/wikirag/core"
)

// RenderText builds the natural-language representation of a page that gets
// chunked and embedded. Only fields present in the metadata are emitted, in
// a fixed order per entity type.
func RenderText(entity core.EntityType, meta core.Metadata, title string) string {
	switch entity {
	case core.EntityArticle:
		return renderArticle(meta, title)
	case core.EntityAuthor:
		return renderAuthor(meta, title)
	case core.EntityInstitution:
		return renderInstitution(meta, title)
	case core.EntityKeyword:
		name, ok := meta.Get("name")
		if !ok || name == "" {
			name = title
		}
		return fmt.Sprintf("Keyword: %s. This is a research keyword/topic used in the knowledge base.", name)
	default:
		if raw, ok := meta.Get("raw"); ok && raw != "" {
			return raw
		}
		return title
	}
}

func renderArticle(meta core.Metadata, title string) string {
	var parts []string

	articleTitle, ok := meta.Get("Articletitle")
	if !ok {
		articleTitle = title
	}
	parts = append(parts, "Research Article: "+articleTitle)

	appendField(&parts, meta, "Abstract", "Abstract: %s")
	appendField(&parts, meta, "Author", "Authors: %s")
	appendField(&parts, meta, "PublicationDate", "Publication Date: %s")
	appendField(&parts, meta, "PublishedIn", "Published In: %s")
	appendField(&parts, meta, "Keyword", "Keywords: %s")
	appendField(&parts, meta, "Field", "Field: %s")
	appendField(&parts, meta, "Subfield", "Subfield: %s")
	appendField(&parts, meta, "DOI", "DOI: %s")
	appendField(&parts, meta, "CitedByCount", "Cited By: %s papers")
	appendField(&parts, meta, "FWCI", "Field-Weighted Citation Impact (FWCI): %s")
	appendField(&parts, meta, "Topic", "Topic: %s")

	return strings.Join(parts, "\n")
}

func renderAuthor(meta core.Metadata, title string) string {
	var parts []string

	name, ok := meta.Get("FullName")
	if !ok {
		name = title
	}
	parts = append(parts, "Researcher: "+name)

	appendField(&parts, meta, "institution", "Affiliated Institutions: %s")
	appendField(&parts, meta, "Current affiliation", "Current Affiliation: %s")
	appendField(&parts, meta, "h_index", "h-index: %s")
	appendField(&parts, meta, "i10_index", "i10-index: %s")
	appendField(&parts, meta, "WorkCount", "Number of Works: %s")
	appendField(&parts, meta, "orcid", "ORCID: %s")

	return strings.Join(parts, "\n")
}

func renderInstitution(meta core.Metadata, title string) string {
	var parts []string

	name, ok := meta.Get("InstitutionName")
	if !ok {
		name = title
	}
	parts = append(parts, "Institution: "+name)

	appendField(&parts, meta, "InstitutionCountry", "Country: %s")
	appendField(&parts, meta, "InstitutionType", "Type: %s")

	return strings.Join(parts, "\n")
}

func appendField(parts *[]string, meta core.Metadata, key, format string) {
	if v, ok := meta.Get(key); ok && v != "" {
		*parts = append(*parts, fmt.Sprintf(format, v))
	}
}
