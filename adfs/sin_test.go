package adfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveSINAlignedOffsetLeavesExtentsUnchanged(t *testing.T) {
	fragments := FragmentMap{
		5: {{Start: 100, End: 200}, {Start: 300, End: 400}},
	}

	// offset == 0 in the low byte means "aligned": no adjustment.
	value := uint32(5)<<8 | 0
	extents, ok := ResolveSIN(value, 1024, fragments)
	require := assert.New(t)
	require.True(ok)
	require.Equal([]Extent{{Start: 100, End: 200}, {Start: 300, End: 400}}, extents)
}

func TestResolveSINAppliesSectorOffsetToFirstExtent(t *testing.T) {
	fragments := FragmentMap{
		5: {{Start: 100, End: 1000}},
	}

	// offset byte = 3 means "2 sectors in" (offset-1).
	value := uint32(5)<<8 | 3
	extents, ok := ResolveSIN(value, 256, fragments)
	assert.True(t, ok)
	assert.Equal(t, []Extent{{Start: 100 + 2*256, End: 1000}}, extents)
}

func TestResolveSINMissingFileNumber(t *testing.T) {
	fragments := FragmentMap{}
	_, ok := ResolveSIN(uint32(99)<<8, 1024, fragments)
	assert.False(t, ok)
}

func TestResolveSINReturnsACopyNotAnAlias(t *testing.T) {
	fragments := FragmentMap{
		5: {{Start: 100, End: 1000}},
	}

	extents, ok := ResolveSIN(uint32(5)<<8|3, 256, fragments)
	assert.True(t, ok)

	// Mutating the returned slice must not corrupt the map's own copy.
	extents[0].Start = 0
	assert.Equal(t, 100, fragments[5][0].Start)
}
