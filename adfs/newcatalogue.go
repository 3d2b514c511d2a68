package adfs

import (
	"adfsio/adfs/diagnostic"
	"adfsio/storage"
)

// WalkNewCatalogue decodes an E / E-big ("Nick"-framed) directory at head,
// resolving each entry's SIN through fragments, and recurses into
// subdirectories. See WalkOldCatalogue for the general shape; the
// difference is indirection through the fragment map instead of a direct
// disc address.
//
// When a directory entry's SIN resolves to more than one extent, one
// catalogue entry is produced per extent under the same name. This is
// deliberate, not a bug, and is logged under verify.
func WalkNewCatalogue(sectors []byte, head, sectorSize int, variant Variant, fragments FragmentMap, rootAddr int, log *diagnostic.Log) (string, []*Node) {
	if head+5 > len(sectors) || string(sectors[head+1:head+5]) != "Nick" {
		log.Append(diagnostic.Warning, "not a directory: %#x", head)
		return "", nil
	}
	dirSeq := sectors[head]

	var nodes []*Node
	p := head + 5
	for p < len(sectors) && sectors[p] != 0 {
		entry := sectors[p : p+26]

		name := storage.SafeBytes(entry[0:10])
		load := le32(entry[10:14])
		exec_ := le32(entry[14:18])
		length := le32(entry[18:22])
		sinValue := le24(entry[22:25])
		newDirAtts := entry[25]
		isDir := newDirAtts&0x8 != 0

		extents, ok := ResolveSIN(sinValue, sectorSize, fragments)

		switch {
		case !ok && isDir:
			log.Append(diagnostic.Warning, "Couldn't find directory: %s", name)
		case !ok && length != 0:
			log.Append(diagnostic.Warning, "Couldn't find file: %s", name)
		case !ok:
			// Zero-length file with an unresolved SIN: standard behaviour
			// is to record it as an empty file.
			nodes = append(nodes, &Node{Name: name, File: &FileNode{Load: load, Exec: exec_, Length: 0}})
		case isDir:
			if len(extents) > 1 {
				log.Append(diagnostic.Inform, "directory %s resolves to %d extents: one entry per extent", name, len(extents))
			}
			for _, extent := range extents {
				_, children := WalkNewCatalogue(sectors, extent.Start, sectorSize, variant, fragments, rootAddr, log)
				nodes = append(nodes, &Node{Name: name, Dir: &DirNode{Entries: children}})
			}
		default:
			data := concatClamped(sectors, extents, int(length))
			nodes = append(nodes, &Node{Name: name, File: &FileNode{Load: load, Exec: exec_, Length: length, Data: data}})
		}

		p += 26
	}

	tail := head + sectorSize
	dirName, dirTitle, endSeq, ok := readNewTail(sectors, tail, sectorSize)
	if !ok {
		log.Append(diagnostic.Warning, "discrepancy in directory structure: [%#x, %#x]", head, tail)
		return "", nodes
	}

	if head == rootAddr {
		dirName = "$"
	}

	if endSeq != dirSeq {
		log.Append(diagnostic.Warning, "broken directory: %s at [%#x, %#x]", dirTitle, head, tail)
		return dirName, nodes
	}

	return dirName, nodes
}

func readNewTail(sectors []byte, tail, sectorSize int) (dirName, dirTitle string, endSeq byte, ok bool) {
	end := tail + sectorSize
	if end > len(sectors) || end-5 < 0 {
		return "", "", 0, false
	}
	if string(sectors[end-5:end]) != "Nick\x00" {
		return "", "", 0, false
	}

	dirName = storage.SafeBytes(sectors[end-16 : end-6])
	dirTitle = storage.SafeBytes(sectors[end-35 : end-16])
	endSeq = sectors[end-6]
	return dirName, dirTitle, endSeq, true
}

// concatClamped concatenates bytes from each extent, stopping once length
// bytes have been collected.
func concatClamped(sectors []byte, extents []Extent, length int) []byte {
	out := make([]byte, 0, length)
	remaining := length

	for _, e := range extents {
		if remaining <= 0 {
			break
		}
		amount := e.End - e.Start
		if amount > remaining {
			amount = remaining
		}
		chunk := sliceClamped(sectors, e.Start, e.Start+amount)
		out = append(out, chunk...)
		remaining -= len(chunk)
	}

	return out
}
