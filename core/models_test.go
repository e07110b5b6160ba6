package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityTypeRoundTrip(t *testing.T) {
	for _, et := range []EntityType{EntityUnknown, EntityArticle, EntityAuthor, EntityInstitution, EntityKeyword} {
		parsed, err := ParseEntityType(et.String())
		require.NoError(t, err)
		assert.Equal(t, et, parsed)
	}
}

func TestParseEntityType_Invalid(t *testing.T) {
	_, err := ParseEntityType("journal")
	assert.ErrorIs(t, err, ErrInvalidEntityType)
}

func TestChunkID(t *testing.T) {
	assert.Equal(t, "42_0", ChunkID(42, 0))
	assert.Equal(t, "42_7", ChunkID(42, 7))

	// Deterministic: same inputs, same id.
	assert.Equal(t, ChunkID(101, 3), ChunkID(101, 3))
}

func TestMetadataOrder(t *testing.T) {
	var m Metadata
	m.Set("Abstract", "a")
	m.Set("Author", "b")
	m.Set("DOI", "c")

	require.Len(t, m, 3)
	assert.Equal(t, "Abstract", m[0].Key)
	assert.Equal(t, "Author", m[1].Key)
	assert.Equal(t, "DOI", m[2].Key)

	// Set on an existing key updates in place, keeping order.
	m.Set("Author", "b2")
	require.Len(t, m, 3)
	assert.Equal(t, "Author", m[1].Key)
	assert.Equal(t, "b2", m[1].Value)

	v, ok := m.Get("DOI")
	assert.True(t, ok)
	assert.Equal(t, "c", v)

	_, ok = m.Get("missing")
	assert.False(t, ok)
}
