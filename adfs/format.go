// Package adfs implements a reader for Acorn Disc Filing System (ADFS) disc
// images: format identification, fragment-map decoding and directory-tree
// reconstruction for the "old" (D / pre-D) and "new" (E / E-big) catalogue
// layouts.
package adfs

import (
	"github.com/pkg/errors"

	"adfsio/storage"
)

// Variant identifies one of the six recognised ADFS image layouts.
type Variant int

const (
	// VariantUnknown is the zero value; never returned on success.
	VariantUnknown Variant = iota
	AdfS           // 40-track small floppy
	AdfM           // 80-track floppy
	Adl            // double-sided interleaved floppy
	AdD            // 800K D-format (old catalogue)
	AdE            // 800K E-format (new catalogue)
	AdEBig         // 1.6MB E-format (new catalogue)
)

func (v Variant) String() string {
	switch v {
	case AdfS:
		return "adf-S"
	case AdfM:
		return "adf-M"
	case Adl:
		return "adl"
	case AdD:
		return "adD"
	case AdE:
		return "adE"
	case AdEBig:
		return "adE-big"
	default:
		return "unknown"
	}
}

// Dialect reports which directory catalogue layout a variant uses.
type Dialect int

const (
	DialectOld Dialect = iota
	DialectNew
)

// Geometry fixes the track layout for a Variant.
type Geometry struct {
	Variant     Variant
	Tracks      int
	Sectors     int // sectors per track
	SectorSize  int
	Interleaved bool
	Dialect     Dialect
}

var geometries = map[Variant]Geometry{
	AdfS:   {Variant: AdfS, Tracks: 40, Sectors: 16, SectorSize: 256, Dialect: DialectOld},
	AdfM:   {Variant: AdfM, Tracks: 80, Sectors: 16, SectorSize: 256, Dialect: DialectOld},
	Adl:    {Variant: Adl, Tracks: 160, Sectors: 16, SectorSize: 256, Interleaved: true, Dialect: DialectOld},
	AdD:    {Variant: AdD, Tracks: 80, Sectors: 10, SectorSize: 1024, Dialect: DialectOld},
	AdE:    {Variant: AdE, Tracks: 80, Sectors: 10, SectorSize: 1024, Dialect: DialectNew},
	AdEBig: {Variant: AdEBig, Tracks: 80, Sectors: 20, SectorSize: 1024, Dialect: DialectNew},
}

// Length returns the total byte length a Geometry's image must have.
func (g Geometry) Length() int {
	return g.Tracks * g.Sectors * g.SectorSize
}

// ErrUnsupportedImage is returned (wrapped) when an image's length isn't
// recognised, or an 819200-byte image fails both the D and E probes.
var ErrUnsupportedImage = errors.New("unsupported ADFS image")

// ErrTruncatedImage is returned (wrapped) when fewer bytes are available
// than the identified variant requires.
var ErrTruncatedImage = errors.New("truncated ADFS image")

// IdentifyFormat classifies image by its length and, for the ambiguous
// 819200-byte case, its disc-record / legacy-signature checklist.
func IdentifyFormat(image *storage.Reader) (Geometry, error) {
	length := image.Len()

	switch length {
	case geometries[AdfS].Length():
		return geometries[AdfS], nil
	case geometries[AdfM].Length():
		return geometries[AdfM], nil
	case geometries[Adl].Length():
		return geometries[Adl], nil
	case geometries[AdEBig].Length():
		return geometries[AdEBig], nil
	case geometries[AdD].Length(): // == geometries[AdE].Length()
		return identifyDorE(image)
	default:
		return Geometry{}, errors.Wrapf(ErrUnsupportedImage, "unrecognised image length %d", length)
	}
}

// identifyDorE disambiguates the 819200-byte case between AdD and AdE per
// spec: prefer the disc-record checklist, fall back to legacy signatures.
func identifyDorE(image *storage.Reader) (Geometry, error) {
	if looksLikeE(image) {
		return geometries[AdE], nil
	}

	if sig, err := image.SliceAt(0x401, 0x405); err == nil && string(sig) == "Hugo" {
		return geometries[AdD], nil
	}
	if sig, err := image.SliceAt(0x801, 0x805); err == nil && string(sig) == "Nick" {
		return geometries[AdE], nil
	}

	return Geometry{}, errors.Wrapf(ErrUnsupportedImage, "819200-byte image matches neither D nor E signature")
}

// looksLikeE evaluates the 4-point disc-record checklist at offset 4.
func looksLikeE(image *storage.Reader) bool {
	record, err := ReadDiscRecord(image, 4)
	if err != nil {
		return false
	}

	if int(record.DiscSize) != image.Len() {
		return false
	}
	if record.SectorSize != 1024 {
		return false
	}
	if record.Density != DensityDouble {
		return false
	}

	sigOffset := int(record.RootDir)*record.SectorSize + 1
	sig, err := image.SliceAt(sigOffset, sigOffset+4)
	if err != nil {
		return false
	}
	s := string(sig)
	return s == "Hugo" || s == "Nick"
}
