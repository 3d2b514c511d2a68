package adfs

// ResolveSIN decodes a 24-bit System Internal Number and resolves it
// against disc_map: the low 8 bits are a sector offset (+1, 0 meaning
// "aligned") into the file's first fragment, the high 16 bits are the
// file number. It returns the file's extents with the first extent's
// start adjusted by the offset, or ok=false if the file number isn't in
// the map.
func ResolveSIN(value uint32, sectorSize int, fragments FragmentMap) (extents []Extent, ok bool) {
	offset := value & 0xff
	fileNo := uint16(value >> 8)

	stored, found := fragments[fileNo]
	if !found {
		return nil, false
	}

	extents = make([]Extent, len(stored))
	copy(extents, stored)

	if offset != 0 && len(extents) > 0 {
		extents[0].Start += int(offset-1) * sectorSize
	}

	return extents, true
}
