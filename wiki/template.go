package wiki

import (
	"regexp"
	"strings"

	"github.com/poiesic/wikirag/core"
)

// templateMarkers maps each recognized template marker to its entity type,
// in fixed precedence order. The `{{ author` variant appears in older pages.
var templateMarkers = []struct {
	markers []string
	entity  core.EntityType
}{
	{[]string{"{{article"}, core.EntityArticle},
	{[]string{"{{author", "{{ author"}, core.EntityAuthor},
	{[]string{"{{institution"}, core.EntityInstitution},
	{[]string{"{{keyword"}, core.EntityKeyword},
}

// keyRe validates a template field key: a word sequence, possibly with
// embedded spaces (e.g. "Current affiliation").
var keyRe = regexp.MustCompile(`^\w[\w ]*$`)

// Classify determines the entity type of a page by scanning its wikitext
// for the first recognized template marker, case-insensitively. Text that
// matches no marker is classified unknown.
func Classify(wikitext string) core.EntityType {
	lower := strings.ToLower(wikitext)
	for _, tm := range templateMarkers {
		for _, marker := range tm.markers {
			if strings.Contains(lower, marker) {
				return tm.entity
			}
		}
	}
	return core.EntityUnknown
}

// ParseTemplate classifies the wikitext and extracts its structured fields.
// Unknown pages yield a single "raw" field carrying the full trimmed text.
func ParseTemplate(wikitext string) (core.EntityType, core.Metadata) {
	entity := Classify(wikitext)
	switch entity {
	case core.EntityUnknown:
		return entity, core.Metadata{{Key: "raw", Value: strings.TrimSpace(wikitext)}}
	case core.EntityKeyword:
		return entity, extractKeyword(wikitext)
	default:
		return entity, extractFields(wikitext)
	}
}

// extractFields pulls |Key=Value pairs out of the first template in the
// wikitext. A field starts at a top-level pipe (not nested inside {{...}} or
// [[...]]); its key runs to the first '='; its value runs to the next
// top-level pipe, the closing braces, or end of text, and may span lines.
// Values that trim to nothing or to the literal token "none" are dropped.
func extractFields(wikitext string) core.Metadata {
	var meta core.Metadata

	open := strings.Index(wikitext, "{{")
	if open < 0 {
		return meta
	}

	var fieldStarts []int
	end := len(wikitext)
	depth := 1
	bracket := 0

	i := open + 2
scan:
	for i < len(wikitext) {
		switch {
		case strings.HasPrefix(wikitext[i:], "{{"):
			depth++
			i += 2
		case strings.HasPrefix(wikitext[i:], "}}"):
			depth--
			if depth == 0 {
				end = i
				break scan
			}
			i += 2
		case strings.HasPrefix(wikitext[i:], "[["):
			bracket++
			i += 2
		case strings.HasPrefix(wikitext[i:], "]]"):
			if bracket > 0 {
				bracket--
			}
			i += 2
		case wikitext[i] == '|' && depth == 1 && bracket == 0:
			fieldStarts = append(fieldStarts, i)
			i++
		default:
			i++
		}
	}

	for j, start := range fieldStarts {
		stop := end
		if j+1 < len(fieldStarts) {
			stop = fieldStarts[j+1]
		}
		segment := wikitext[start+1 : stop]

		eq := strings.Index(segment, "=")
		if eq < 0 {
			continue // positional parameter, not a field
		}

		key := strings.TrimSpace(segment[:eq])
		if !keyRe.MatchString(key) {
			continue
		}

		value := strings.TrimSpace(segment[eq+1:])
		if value == "" || strings.EqualFold(value, "none") {
			continue
		}
		meta.Set(key, value)
	}

	return meta
}

// extractKeyword keeps only the name field of a {{keyword|name=...}} template.
func extractKeyword(wikitext string) core.Metadata {
	fields := extractFields(wikitext)
	if name, ok := fields.Get("name"); ok {
		return core.Metadata{{Key: "name", Value: name}}
	}
	return core.Metadata{}
}
