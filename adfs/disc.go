package adfs

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"adfsio/adfs/diagnostic"
	"adfsio/storage"
)

// E-format fixed offsets: disc record position, fragment map bounds, and
// root directory address. AdE and AdEBig differ in every one of these.
const (
	adEDiscRecordOffset = 4
	adEMapStart         = 0x40
	adEMapEnd           = 0x400
	adERoot             = 0x800

	adEBigDiscRecordOffset = 0xc6804
	adEBigMapStart         = 0xc6840
	adEBigMapEnd           = 0xc7800
	adEBigRoot             = 0xc8800

	adDRoot = 0x400
)

// Disc is the fully-parsed ADFS image: geometry, disc record (if any),
// fragment map (if any), directory tree and diagnostic log. It is built
// once by Open and is immutable and safe for concurrent reads thereafter.
type Disc struct {
	geometry  Geometry
	record    *DiscRecord // nil for old-catalogue formats
	fragments FragmentMap // nil for old-catalogue formats

	sectors []byte

	discName string
	rootName string
	root     []*Node

	log *diagnostic.Log
}

// Open identifies, assembles and parses image into a Disc. Only
// UnsupportedImage and TruncatedImage abort the parse; every other
// structural problem is recorded to the diagnostic log and the parse
// produces a best-effort tree.
//
// When verify is true, a diagnostic Log is built and also streamed
// through a logrus.Logger at its default level; pass false to skip
// bookkeeping in a hot path.
func Open(reader *storage.Reader, verify bool) (*Disc, error) {
	geometry, err := IdentifyFormat(reader)
	if err != nil {
		return nil, err
	}

	sectors, err := AssembleSectorBuffer(reader, geometry)
	if err != nil {
		return nil, err
	}

	d := &Disc{geometry: geometry, sectors: sectors, discName: "Untitled"}
	if verify {
		d.log = diagnostic.New(logrus.StandardLogger())
	}

	d.parse()

	return d, nil
}

func (d *Disc) parse() {
	image := storage.NewReaderFromBytes(d.sectors)

	switch d.geometry.Variant {
	case AdD:
		d.rootName, d.root = WalkOldCatalogue(d.sectors, adDRoot, d.geometry.SectorSize, true, d.log)

	case AdE:
		record, err := ReadDiscRecord(image, adEDiscRecordOffset)
		if err == nil {
			d.record = &record
			d.discName = record.DiscName
			d.fragments = DecodeFragmentMap(d.sectors, adEMapStart, adEMapEnd, record.SectorSize, AdE, d.log)
		}
		d.rootName, d.root = WalkNewCatalogue(d.sectors, adERoot, d.geometry.SectorSize, AdE, d.fragments, adERoot, d.log)

	case AdEBig:
		record, err := ReadDiscRecord(image, adEBigDiscRecordOffset)
		if err == nil {
			d.record = &record
			d.discName = record.DiscName
			d.fragments = DecodeFragmentMap(d.sectors, adEBigMapStart, adEBigMapEnd, record.SectorSize, AdEBig, d.log)
		}
		d.rootName, d.root = WalkNewCatalogue(d.sectors, adEBigRoot, d.geometry.SectorSize, AdEBig, d.fragments, adEBigRoot, d.log)

	default: // AdfS, AdfM, Adl: old catalogue at 2 sectors in.
		d.rootName, d.root = WalkOldCatalogue(d.sectors, 2*d.geometry.SectorSize, d.geometry.SectorSize, false, d.log)
	}

	// Old-catalogue images carry no disc record, so the root directory's
	// own title (returned as rootName when it's also the disc root) is the
	// only source for the disc name. New-catalogue images name the disc
	// in the disc record itself; rootName there is just "$".
	if d.geometry.Dialect == DialectOld && d.rootName != "" {
		d.discName = d.rootName
	}
}

// Variant returns the identified image format.
func (d *Disc) Variant() Variant { return d.geometry.Variant }

// DiscName returns the disc's title, defaulting to "Untitled".
func (d *Disc) DiscName() string { return d.discName }

// RootName returns the root directory's name: "$" for new-catalogue images,
// and for old-catalogue images the root's title from its tail record (empty
// if the tail could not be read).
func (d *Disc) RootName() string { return d.rootName }

// Files returns the root directory's entries.
func (d *Disc) Files() []*Node { return d.root }

// Log returns the diagnostic log built during parsing (nil if verify was
// false at Open time).
func (d *Disc) Log() *diagnostic.Log { return d.log }

// String renders the decoded geometry and disc record, for display before
// the diagnostic log in verify mode.
func (d *Disc) String() string {
	s := fmt.Sprintf("Variant:     %s\nTracks:      %d\nSectors/trk: %d\nSector size: %d\n",
		d.geometry.Variant, d.geometry.Tracks, d.geometry.Sectors, d.geometry.SectorSize)

	if d.record != nil {
		s += fmt.Sprintf("Disc name:   %s\nDisc ID:     %#x\nDisc size:   %d\nZones:       %d\nDensity:     %s\n",
			d.record.DiscName, d.record.DiscID, d.record.DiscSize, d.record.Zones, d.record.Density)
	}

	return s
}

// PrintCatalogue renders a preorder, tab-separated listing of files, one
// line per file.
func PrintCatalogue(files []*Node, path string, filetypes bool) string {
	var out string
	for _, n := range files {
		if n.File != nil {
			if !filetypes {
				out += fmt.Sprintf("%s.%s\t%X\t%X\t%X\n", path, n.Name, n.File.Load, n.File.Exec, n.File.Length)
			} else {
				out += fmt.Sprintf("%s.%s\t%X\t%X\n", path, n.Name, (n.File.Load>>8)&0xfff, n.File.Length)
			}
		} else if n.Dir != nil {
			out += PrintCatalogue(n.Dir.Entries, path+"."+n.Name, filetypes)
		}
	}
	return out
}
