// Package wiki connects to a MediaWiki knowledge source. It lists and
// fetches pages through the api.php endpoint, classifies each page by its
// template marker, extracts the template's structured fields, and renders
// them into the natural-language text that gets chunked and embedded.
package wiki
