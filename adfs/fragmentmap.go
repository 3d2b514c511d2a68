package adfs

import (
	"adfsio/adfs/diagnostic"
)

// Extent is a half-open byte range [Start, End) within the sector buffer.
type Extent struct {
	Start, End int
}

// FragmentMap maps a file number to its ordered list of extents, as
// discovered by DecodeFragmentMap.
type FragmentMap map[uint16][]Extent

// freeSpaceEntry is one linked-list node of a zone's free-space chain.
type freeSpaceEntry struct {
	start, end int
}

// decoderState is the fragment-decoding state machine's mode.
type decoderState int

const (
	stateIdle decoderState = iota
	stateInBlock
)

// DecodeFragmentMap walks the zoned allocation map [mapStart, mapEnd) of
// sectors and returns the fragment extents for every file number it finds.
// log receives a diagnostic entry for every corruption event encountered;
// it may be nil.
func DecodeFragmentMap(sectors []byte, mapStart, mapEnd, sectorSize int, variant Variant, log *diagnostic.Log) FragmentMap {
	freeSpace := scanFreeSpace(sectors, mapStart, mapEnd, sectorSize)

	result := FragmentMap{}

	state := stateIdle
	var ownerFileNo uint16
	var blockStart int

	// Defensive bound: a well-formed map visits each byte a small constant
	// number of times; this caps total loop iterations well above any
	// legitimate walk so a pathological image can't hang.
	maxIterations := 4*(mapEnd-mapStart) + 64
	iterations := 0

	a := mapStart
	for a < mapEnd {
		iterations++
		if iterations > maxIterations {
			log.Append(diagnostic.Error, "fragment map decoder aborted: exceeded iteration bound at offset %#x", a)
			break
		}

		zoneStart := zoneStartOf(a, mapStart, sectorSize)
		if a < zoneStart+4 {
			a = zoneStart + 4
			continue
		}

		if entry, ok := freeSpaceEntryStartingAt(freeSpace, a); ok {
			a = entry.end
			state = stateIdle
			continue
		}

		nextZoneBoundary := zoneStart + sectorSize

		switch state {
		case stateIdle:
			if nextZoneBoundary-a < 2 {
				a++
				continue
			}

			value := uint16(sectors[a]) | uint16(sectors[a+1])<<8
			fileNo := value & 0x7fff

			if fileNo == 0 {
				a++
				continue
			}

			if fileNo >= 2 {
				if _, exists := result[fileNo]; !exists {
					result[fileNo] = nil
				}
			}

			if value&0x8000 != 0 {
				// Immediately-terminated fragment.
				start := addressOf(a, fileNo, mapStart, sectorSize, variant)
				end := addressOf(a+2, fileNo, mapStart, sectorSize, variant)
				result[fileNo] = appendExtentDedup(result[fileNo], Extent{start, end})
				recordIfDefect(log, fileNo, start, end)
				a += 2
				continue
			}

			ownerFileNo = fileNo
			blockStart = a
			state = stateInBlock
			a += 2

		case stateInBlock:
			b := sectors[a]
			switch b {
			case 0x00:
				a++
			case 0x80:
				start := addressOf(blockStart, ownerFileNo, mapStart, sectorSize, variant)
				end := addressOf(a+1, ownerFileNo, mapStart, sectorSize, variant)
				result[ownerFileNo] = appendExtentDedup(result[ownerFileNo], Extent{start, end})
				recordIfDefect(log, ownerFileNo, start, end)
				state = stateIdle
				a++
			default:
				log.Append(diagnostic.Warning, "corrupt fragment block for file %#x at offset %#x, restarting scan", ownerFileNo, a)
				a = blockStart + 1
				state = stateIdle
			}
		}
	}

	return result
}

// defectFileNo is the fragment map's reserved file number for sectors
// mapped out as bad; extents recorded against it are disc defects, not a
// real file's data.
const defectFileNo = 1

// recordIfDefect logs a mapped-out bad sector extent found against
// defectFileNo, so Log.DefectCount and its pluralised summary line reflect
// what the decoder actually found.
func recordIfDefect(log *diagnostic.Log, fileNo uint16, start, end int) {
	if fileNo != defectFileNo {
		return
	}
	log.RecordDefect("bad sector mapped out at offset %#x-%#x", start, end)
}

func appendExtentDedup(extents []Extent, e Extent) []Extent {
	for _, existing := range extents {
		if existing == e {
			return extents
		}
	}
	return append(extents, e)
}

// zoneStartOf returns the start of the sectorSize-byte zone containing a.
func zoneStartOf(a, mapStart, sectorSize int) int {
	offset := a - mapStart
	return mapStart + (offset/sectorSize)*sectorSize
}

// addressOf implements the map-offset -> sector-buffer address mapping,
// which differs between AdE and AdEBig.
func addressOf(mapOffset int, fileNo uint16, mapStart, sectorSize int, variant Variant) int {
	switch variant {
	case AdEBig:
		upper := (int(fileNo) & 0x7f00) >> 8
		if upper > 1 {
			upper--
		}
		if upper > 3 {
			upper = 3
		}
		return ((mapOffset - mapStart) - upper*0xc8) * 0x200
	default: // AdE
		return (mapOffset - mapStart) * sectorSize
	}
}

// scanFreeSpace runs the preliminary free-space pass over each zone of
// [mapStart, mapEnd), returning the entries found ordered by absolute
// address.
func scanFreeSpace(sectors []byte, mapStart, mapEnd, sectorSize int) []freeSpaceEntry {
	var entries []freeSpaceEntry

	for z := mapStart; z < mapEnd; z += sectorSize {
		offsetBytes := decodeChainOffset(sectors, z)
		if offsetBytes == 0 {
			continue
		}

		cur := z + offsetBytes
		seen := map[int]bool{}
		for cur+3 <= mapEnd && !seen[cur] {
			seen[cur] = true

			nextOffset := decodeChainOffset(sectors, cur)

			scanPos := cur + 3
			for scanPos < mapEnd && sectors[scanPos]&0x80 == 0 {
				scanPos++
			}
			if scanPos >= mapEnd {
				break
			}
			entryEnd := scanPos + 1
			if entryEnd > z+sectorSize {
				entryEnd = z + sectorSize
			}

			entries = append(entries, freeSpaceEntry{start: cur, end: entryEnd})

			if nextOffset == 0 {
				break
			}
			cur = z + nextOffset
		}
	}

	return entries
}

// decodeChainOffset reads the 15-bit, shift-by-3 encoded offset field
// starting one byte after pos, per the free-space chain's encoding.
func decodeChainOffset(sectors []byte, pos int) int {
	if pos+3 > len(sectors) {
		return 0
	}
	raw := uint16(sectors[pos+1]) | uint16(sectors[pos+2])<<8
	return int((raw &^ 0x8000) >> 3)
}

func freeSpaceEntryStartingAt(entries []freeSpaceEntry, a int) (freeSpaceEntry, bool) {
	for _, e := range entries {
		if e.start == a {
			return e, true
		}
	}
	return freeSpaceEntry{}, false
}
