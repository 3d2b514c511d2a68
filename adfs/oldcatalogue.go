package adfs

import (
	"adfsio/adfs/diagnostic"
	"adfsio/storage"
)

// WalkOldCatalogue decodes a D / pre-D ("Hugo"-framed) directory at head
// and recursively walks its subdirectories. It returns the directory's own
// name (from the tail record) and its entries. Structural problems are
// recorded to log (which may be nil) and produce a best-effort partial
// result rather than an error, per the recoverable BrokenStructure policy.
func WalkOldCatalogue(sectors []byte, head, sectorSize int, isAdD bool, log *diagnostic.Log) (string, []*Node) {
	if head+5 > len(sectors) || string(sectors[head+1:head+5]) != "Hugo" {
		log.Append(diagnostic.Warning, "not a directory: %#x", head)
		return "", nil
	}
	dirSeq := sectors[head]

	var nodes []*Node
	p := head + 5
	for p < len(sectors) && sectors[p] != 0 {
		entry := sectors[p : p+26]

		name, topSet := oldSafeNameAndTopSet(entry[0:10])
		load := le32(entry[10:14])
		exec_ := le32(entry[14:18])
		length := le32(entry[18:22])
		rawAddr := le24(entry[22:25])
		olddirobseq := entry[25]

		var inddiscadd int
		if isAdD {
			inddiscadd = int(rawAddr) * 256
		} else {
			inddiscadd = int(rawAddr) * sectorSize
		}

		isDir := oldEntryIsDirectory(isAdD, olddirobseq, load, exec_, length, topSet, sectorSize)

		if isDir {
			_, children := WalkOldCatalogue(sectors, inddiscadd, sectorSize, isAdD, log)
			nodes = append(nodes, &Node{Name: name, Dir: &DirNode{Entries: children}})
		} else {
			data := sliceClamped(sectors, inddiscadd, inddiscadd+int(length))
			nodes = append(nodes, &Node{Name: name, File: &FileNode{Load: load, Exec: exec_, Length: length, Data: data}})
		}

		p += 26
	}

	var tail int
	if isAdD {
		tail = head + sectorSize
	} else {
		tail = head + 4*sectorSize
	}

	dirName, parent, dirTitle, endSeq, ok := readOldTail(sectors, tail, sectorSize, isAdD)
	if !ok {
		log.Append(diagnostic.Warning, "discrepancy in directory structure: [%#x, %#x]", head, tail)
		return "", nodes
	}

	if parent == head {
		// This is the root directory: its title is returned in place of
		// its name, and the Disc facade takes it as the disc name.
		dirName = dirTitle
	}

	if endSeq != dirSeq {
		log.Append(diagnostic.Warning, "broken directory: %s at [%#x, %#x]", dirTitle, head, tail)
		return dirName, nodes
	}

	return dirName, nodes
}

func oldEntryIsDirectory(isAdD bool, olddirobseq byte, load, exec_, length uint32, topSet, sectorSize int) bool {
	if isAdD {
		return olddirobseq&0x8 == 0x8
	}
	return (load == 0 && exec_ == 0 && topSet > 2) ||
		(topSet > 0 && int(length) == 5*sectorSize)
}

// readOldTail parses the Hugo-framed tail record at tail, returning
// (dirName, parent offset, dirTitle, endSeq, ok).
func readOldTail(sectors []byte, tail, sectorSize int, isAdD bool) (string, int, string, byte, bool) {
	end := tail + sectorSize
	if end > len(sectors) || end-5 < 0 {
		return "", 0, "", 0, false
	}
	if string(sectors[end-5:end]) != "Hugo\x00" {
		return "", 0, "", 0, false
	}

	var dirName string
	var rawTitle []byte
	var parent int

	if isAdD {
		dirName = storage.SafeBytes(sectors[end-16 : end-6])
		parent = int(le24(sectors[end-38:end-35])) * 256
		rawTitle = sectors[end-35 : end-16]
	} else {
		dirName = storage.SafeBytes(sectors[end-52 : end-42])
		parent = int(le24(sectors[end-42:end-39])) * sectorSize
		rawTitle = sectors[end-39 : end-20]
	}

	// The title keeps embedded spaces: top bits are stripped and it ends at
	// the first control byte below 0x20.
	title := make([]byte, 0, len(rawTitle))
	for _, c := range rawTitle {
		if c >= 0x80 {
			c ^= 0x80
			if c < 0x20 {
				continue
			}
		} else if c < 0x20 {
			break
		}
		title = append(title, c)
	}
	dirTitle := string(title)

	endSeq := sectors[end-6]
	return dirName, parent, dirTitle, endSeq, true
}

// oldSafeNameAndTopSet returns the safe-converted name along with the
// largest 1-based index at which the raw name byte had its top bit set.
func oldSafeNameAndTopSet(raw []byte) (string, int) {
	topSet := 0
	for i, b := range raw {
		if b&0x80 != 0 {
			topSet = i + 1
		}
	}
	return storage.SafeBytes(raw), topSet
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func le24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

func sliceClamped(sectors []byte, start, end int) []byte {
	if start < 0 || start > len(sectors) {
		return nil
	}
	if end > len(sectors) {
		end = len(sectors)
	}
	if end < start {
		return nil
	}
	out := make([]byte, end-start)
	copy(out, sectors[start:end])
	return out
}
