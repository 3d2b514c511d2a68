// Package catalog renders an alphabetised, CAT-style summary of a decoded
// ADFS directory: CP/M-style allocation blocks become simple byte lengths,
// since ADFS's new-map fragments aren't exposed as a fixed block size the
// way CP/M directory extents are.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"adfsio/adfs"
)

// Record is one summarised entry: either a file (with its length) or a
// directory (with its immediate child count).
type Record struct {
	Name     string
	IsDir    bool
	Length   uint32
	NumFiles int
}

// Summarize walks files (a single directory's entries, not recursively)
// and returns a summary sorted case-insensitively by name. The order of
// names that differ only in case is not defined.
func Summarize(files []*adfs.Node) []Record {
	records := make([]Record, 0, len(files))

	for _, n := range files {
		switch {
		case n.File != nil:
			records = append(records, Record{Name: n.Name, Length: n.File.Length})
		case n.Dir != nil:
			records = append(records, Record{Name: n.Name, IsDir: true, NumFiles: len(n.Dir.Entries)})
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return strings.ToLower(records[i].Name) < strings.ToLower(records[j].Name)
	})

	return records
}

// String renders records the way a CAT listing would: one line per entry,
// directories marked, files sized to the nearest higher kilobyte.
func String(records []Record) string {
	var b strings.Builder
	for _, r := range records {
		if r.IsDir {
			fmt.Fprintf(&b, "%-10s  <dir>  %d entries\n", r.Name, r.NumFiles)
		} else {
			kb := (r.Length + 1023) / 1024
			fmt.Fprintf(&b, "%-10s  %4dK\n", r.Name, kb)
		}
	}
	return b.String()
}
