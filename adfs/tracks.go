package adfs

import (
	"github.com/pkg/errors"

	"adfsio/storage"
)

// AssembleSectorBuffer produces the contiguous, de-interleaved sector
// buffer for geo from the raw image bytes. Double-sided images store
// tracks as (side0,side1,side0,side1,...); this reorders them into flat
// side-0 tracks followed by flat side-1 tracks.
func AssembleSectorBuffer(image *storage.Reader, geo Geometry) ([]byte, error) {
	trackSize := geo.Sectors * geo.SectorSize
	required := geo.Length()

	if image.Len() < required {
		return nil, errors.Wrapf(ErrTruncatedImage, "need %d bytes for %s, have %d", required, geo.Variant, image.Len())
	}

	buf := make([]byte, 0, required)

	if !geo.Interleaved {
		track, err := image.SliceAt(0, required)
		if err != nil {
			return nil, errors.Wrap(err, "error reading tracks")
		}
		buf = append(buf, track...)
		return buf, nil
	}

	half := geo.Tracks / 2
	for i := 0; i < geo.Tracks; i++ {
		var physical int
		if i < half {
			physical = 2 * i
		} else {
			physical = 2*(i-half) + 1
		}

		start := physical * trackSize
		track, err := image.SliceAt(start, start+trackSize)
		if err != nil {
			return nil, errors.Wrapf(ErrTruncatedImage, "missing physical track %d while assembling logical track %d", physical, i)
		}
		buf = append(buf, track...)
	}

	return buf, nil
}
