package adfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOldEntry(sectors []byte, p int, name string, load, exec_, length uint32, addr uint32, olddirobseq byte) {
	copy(sectors[p:p+10], name)
	putLE32(sectors[p+10:], load)
	putLE32(sectors[p+14:], exec_)
	putLE32(sectors[p+18:], length)
	putLE24(sectors[p+22:], addr)
	sectors[p+25] = olddirobseq
}

func writeOldTailAdD(sectors []byte, tail int, sectorSize int, dirName, dirTitle string, parent int, endSeq byte) {
	end := tail + sectorSize
	copy(sectors[end-16:end-6], dirName)
	putLE24(sectors[end-38:], uint32(parent/256))
	copy(sectors[end-35:end-16], dirTitle)
	sectors[end-6] = endSeq
	copy(sectors[end-5:end], "Hugo\x00")
}

func TestWalkOldCatalogueReadsFileAndSubdirectory(t *testing.T) {
	const sectorSize = 64
	sectors := make([]byte, 700)

	// Root-level Hugo frame at 0.
	sectors[0] = 1 // dirSeq
	copy(sectors[1:5], "Hugo")

	writeOldEntry(sectors, 5, "FILE", 0, 0, 4, 1 /* ->256 */, 0x00)
	writeOldEntry(sectors, 31, "SUBDIR", 0, 0, 0, 2 /* ->512 */, 0x08)

	copy(sectors[256:260], "abcd")

	writeOldTailAdD(sectors, 64, sectorSize, "ROOT", "MYDIR", 256 /* != head(0) */, 1)

	// Nested empty subdirectory at 512.
	sectors[512] = 2
	copy(sectors[513:517], "Hugo")
	writeOldTailAdD(sectors, 576, sectorSize, "SUBNAME", "SUBTITLE", 0 /* != head(512) */, 2)

	dirName, nodes := WalkOldCatalogue(sectors, 0, sectorSize, true, nil)

	require.Equal(t, "ROOT", dirName)
	require.Len(t, nodes, 2)

	assert.Equal(t, "FILE", nodes[0].Name)
	require.NotNil(t, nodes[0].File)
	assert.Equal(t, []byte("abcd"), nodes[0].File.Data)
	assert.Equal(t, uint32(4), nodes[0].File.Length)

	assert.Equal(t, "SUBDIR", nodes[1].Name)
	require.NotNil(t, nodes[1].Dir)
	assert.Empty(t, nodes[1].Dir.Entries)
}

func TestWalkOldCatalogueRejectsMissingSignature(t *testing.T) {
	sectors := make([]byte, 128)
	dirName, nodes := WalkOldCatalogue(sectors, 0, 64, true, nil)
	assert.Equal(t, "", dirName)
	assert.Nil(t, nodes)
}

func TestOldSafeNameAndTopSetTracksHighBit(t *testing.T) {
	raw := []byte{'F', 'O', 'O' | 0x80, 0, 0, 0, 0, 0, 0, 0}
	name, topSet := oldSafeNameAndTopSet(raw)
	assert.Equal(t, "FOO", name)
	assert.Equal(t, 3, topSet)
}
