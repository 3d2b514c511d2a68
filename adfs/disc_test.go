package adfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adfsio/storage"
)

// buildSampleAdEImage constructs a minimal, internally-consistent 819200-byte
// AdE image: a disc record whose checklist scores 4/4, a one-entry root
// directory, and a fragment map entry resolving that entry's SIN to the
// file's data.
func buildSampleAdEImage(t *testing.T) []byte {
	t.Helper()
	sectors := make([]byte, geometries[AdD].Length())

	// Disc record at offset 4.
	rec := 4
	sectors[rec+0] = 10 // log2SectorSize -> 1024
	sectors[rec+1] = 10 // nsectors
	sectors[rec+2] = 1  // heads
	sectors[rec+3] = 2  // density: double
	sectors[rec+9] = 1  // zones
	putLE24(sectors[rec+13:], 2)          // root_dir SIN = 2 -> sig at 2*1024+1 = 0x801
	putLE32(sectors[rec+16:], uint32(len(sectors)))
	copy(sectors[rec+22:rec+32], "TESTDISC")

	// Fragment map entry: immediate extent for file 50 at map offset 68,
	// the first byte after the zone header (the idle scan steps one byte at
	// a time, so an entry preceded by a zero byte would be read misaligned).
	sectors[68] = 0x32 // low byte of 0x8032
	sectors[69] = 0x80 // high byte: bit15 set + fileNo high byte

	// README's data, at the address the map entry resolves to:
	// (68-64)*1024 = 4096.
	copy(sectors[4096:4096+17], "ABCDEFGHIJKLMNOPQ")

	// Root directory ("Nick" frame) at 0x800.
	const root = 0x800
	sectors[root] = 7
	copy(sectors[root+1:root+5], "Nick")

	writeNewEntry(sectors, root+5, "README", 0xFFFFFF00, 0xFFFFFFAA, 17, uint32(50)<<8, 0x00)

	writeNewTail(sectors, root+1024, 1024, "IGNORED", "IGNORED TITLE", 7)

	return sectors
}

func TestOpenParsesSampleAdEImage(t *testing.T) {
	image := buildSampleAdEImage(t)
	reader := storage.NewReaderFromBytes(image)

	disc, err := Open(reader, false)
	require.NoError(t, err)

	assert.Equal(t, AdE, disc.Variant())
	assert.Equal(t, "TESTDISC", disc.DiscName())
	assert.Equal(t, "$", disc.RootName())

	require.Len(t, disc.Files(), 1)
	f := disc.Files()[0]
	assert.Equal(t, "README", f.Name)
	require.NotNil(t, f.File)
	assert.Equal(t, "ABCDEFGHIJKLMNOPQ"[:17], string(f.File.Data))
	assert.Equal(t, uint32(0xFFFFFF00), f.File.Load)
	assert.Equal(t, uint32(0xFFFFFFAA), f.File.Exec)
	assert.Equal(t, uint32(17), f.File.Length)

	catalogue := PrintCatalogue(disc.Files(), "$", false)
	assert.Contains(t, catalogue, "$.README")
	assert.Contains(t, catalogue, "FFFFFF00")
	assert.Contains(t, catalogue, "FFFFFFAA")
}

func TestOpenEmptyAdfMImageHasNoFiles(t *testing.T) {
	const sectorSize = 256
	const head = 2 * sectorSize
	sectors := make([]byte, geometries[AdfM].Length())
	sectors[head] = 1
	copy(sectors[head+1:head+5], "Hugo")

	tail := head + 4*sectorSize
	end := tail + sectorSize
	copy(sectors[end-52:end-42], "ROOT")
	copy(sectors[end-39:end-20], "MY DISC")
	putLE24(sectors[end-42:], uint32(head)/sectorSize) // parent == head: this is the root
	sectors[end-6] = 1
	copy(sectors[end-5:end], "Hugo\x00")

	reader := storage.NewReaderFromBytes(sectors)
	disc, err := Open(reader, false)
	require.NoError(t, err)

	assert.Equal(t, AdfM, disc.Variant())
	assert.Empty(t, disc.Files())
	assert.Equal(t, "MY DISC", disc.DiscName())
}
