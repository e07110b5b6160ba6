package core

import "strconv"

// EntityType is the structural category of a source page, inferred from the
// wiki template it carries. It is never user-supplied.
type EntityType int

const (
	// EntityUnknown marks pages whose text matched no known template.
	EntityUnknown EntityType = iota
	// EntityArticle represents a research article page.
	EntityArticle
	// EntityAuthor represents a researcher page.
	EntityAuthor
	// EntityInstitution represents an institution page.
	EntityInstitution
	// EntityKeyword represents a research keyword/topic page.
	EntityKeyword
)

// String returns the wire name of the entity type.
func (t EntityType) String() string {
	switch t {
	case EntityArticle:
		return "article"
	case EntityAuthor:
		return "author"
	case EntityInstitution:
		return "institution"
	case EntityKeyword:
		return "keyword"
	default:
		return "unknown"
	}
}

// ParseEntityType maps a wire name back to an EntityType.
// Returns ErrInvalidEntityType for names outside the closed set.
func ParseEntityType(s string) (EntityType, error) {
	switch s {
	case "article":
		return EntityArticle, nil
	case "author":
		return EntityAuthor, nil
	case "institution":
		return EntityInstitution, nil
	case "keyword":
		return EntityKeyword, nil
	case "unknown":
		return EntityUnknown, nil
	default:
		return EntityUnknown, ErrInvalidEntityType
	}
}

// Field is a single template field. Fields keep the order in which they
// appeared in the source template.
type Field struct {
	Key   string
	Value string
}

// Metadata is an ordered list of template fields extracted from a page.
type Metadata []Field

// Get returns the value for key and whether it was present.
func (m Metadata) Get(key string) (string, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Set replaces the value for key, appending when the key is new.
func (m *Metadata) Set(key, value string) {
	for i, f := range *m {
		if f.Key == key {
			(*m)[i].Value = value
			return
		}
	}
	*m = append(*m, Field{Key: key, Value: value})
}

// Document is one parsed knowledge-base page. Created by the ingester and
// immutable thereafter; consumed only by the chunker.
type Document struct {
	PageID     int
	PageTitle  string
	EntityType EntityType
	Metadata   Metadata
	Text       string
	SourceURL  string
}

// Chunk is a bounded, overlapping substring of a Document's text.
// It is the unit actually indexed and retrieved.
type Chunk struct {
	ChunkID    string
	Text       string
	PageTitle  string
	EntityType EntityType
	SourceURL  string
	ChunkIndex int
}

// IndexedChunk is a Chunk together with its embedding vector. Once added to
// the vector index, the index owns it exclusively.
type IndexedChunk struct {
	Chunk
	Vector []float32
}

// RetrievalResult is one ranked hit for a query. Ephemeral, recomputed per
// query.
type RetrievalResult struct {
	ChunkID         string
	Text            string
	PageTitle       string
	EntityType      EntityType
	SourceURL       string
	SimilarityScore float32
}

// ChunkID derives the deterministic id for a chunk: pageID and ordinal joined
// by an underscore. Re-chunking the same document with the same parameters
// yields identical ids, which is what makes re-ingestion idempotent.
func ChunkID(pageID, ordinal int) string {
	return strconv.Itoa(pageID) + "_" + strconv.Itoa(ordinal)
}
