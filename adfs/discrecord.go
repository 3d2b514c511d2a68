package adfs

import (
	"strings"

	"github.com/pkg/errors"

	"adfsio/storage"
)

// Density is the recording density recorded in a DiscRecord.
type Density int

const (
	DensityUnknown Density = iota
	DensitySingle
	DensityDouble
	DensityQuad
)

func (d Density) String() string {
	switch d {
	case DensitySingle:
		return "single"
	case DensityDouble:
		return "double"
	case DensityQuad:
		return "quad"
	default:
		return "unknown"
	}
}

// DiscRecord is the 32-byte structure describing an E-format disc's
// physical and logical layout.
type DiscRecord struct {
	Log2SectorSize int
	SectorSize     int
	NumSectors     int
	Heads          int
	Density        Density
	IDLen          int
	BytesPerBit    int
	Zones          int
	RootDir        uint32 // SIN of the root directory
	DiscSize       uint32
	DiscID         uint16
	DiscName       string
}

// ReadDiscRecord parses the 32-byte disc record at offset within image.
func ReadDiscRecord(image *storage.Reader, offset int) (DiscRecord, error) {
	raw, err := image.SliceAt(offset, offset+32)
	if err != nil {
		return DiscRecord{}, errors.Wrap(err, "disc record out of range")
	}

	log2SectorSize := int(raw[0])
	densityCode := raw[3]

	var density Density
	switch densityCode {
	case 1:
		density = DensitySingle
	case 2:
		density = DensityDouble
	case 3:
		density = DensityQuad
	default:
		density = DensityUnknown
	}

	rootDir, err := image.Uint24At(offset + 13)
	if err != nil {
		return DiscRecord{}, err
	}
	discSize, err := image.Uint32At(offset + 16)
	if err != nil {
		return DiscRecord{}, err
	}
	discID, err := image.Uint16At(offset + 20)
	if err != nil {
		return DiscRecord{}, err
	}

	return DiscRecord{
		Log2SectorSize: log2SectorSize,
		SectorSize:     1 << uint(log2SectorSize),
		NumSectors:     int(raw[1]),
		Heads:          int(raw[2]),
		Density:        density,
		IDLen:          int(raw[4]),
		BytesPerBit:    1 << uint(raw[5]),
		Zones:          int(raw[9]),
		RootDir:        rootDir,
		DiscSize:       discSize,
		DiscID:         discID,
		DiscName:       strings.TrimSpace(storage.SafeBytes(raw[22:32])),
	}, nil
}
