package photoflow

import (
	"bytes"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/jung602/roro/internal/shared/geo"
)

// ExtractGPS reads the EXIF GPS block of one image and converts the
// degrees/minutes/seconds triplets plus hemisphere references into
// signed decimal degrees. Images without usable GPS tags return
// ok=false, never an error: a GPS-less photo is a normal input.
func ExtractGPS(data []byte) (lat, lng float64, ok bool) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, 0, false
	}

	lat, ok = dmsField(x, exif.GPSLatitude, exif.GPSLatitudeRef)
	if !ok {
		return 0, 0, false
	}
	lng, ok = dmsField(x, exif.GPSLongitude, exif.GPSLongitudeRef)
	if !ok {
		return 0, 0, false
	}
	return lat, lng, true
}

func dmsField(x *exif.Exif, valueTag, refTag exif.FieldName) (float64, bool) {
	tag, err := x.Get(valueTag)
	if err != nil || tag.Count < 3 {
		return 0, false
	}
	var dms [3]float64
	for i := range dms {
		num, den, err := tag.Rat2(i)
		if err != nil || den == 0 {
			return 0, false
		}
		dms[i] = float64(num) / float64(den)
	}
	refField, err := x.Get(refTag)
	if err != nil {
		return 0, false
	}
	ref, err := refField.StringVal()
	if err != nil {
		return 0, false
	}
	return geo.DMSToDecimal(dms[0], dms[1], dms[2], ref), true
}
