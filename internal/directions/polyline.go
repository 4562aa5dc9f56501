package directions

import (
	"math"
	"strings"
)

// DecodePolyline decodes a Google encoded polyline into points.
// Malformed trailing data is dropped rather than erroring: providers
// occasionally truncate overview polylines.
func DecodePolyline(encoded string) []Point {
	var points []Point
	var lat, lng int64
	i := 0

	next := func() (int64, bool) {
		var result int64
		var shift uint
		for {
			if i >= len(encoded) {
				return 0, false
			}
			b := int64(encoded[i]) - 63
			i++
			result |= (b & 0x1f) << shift
			shift += 5
			if b < 0x20 {
				break
			}
		}
		if result&1 != 0 {
			return ^(result >> 1), true
		}
		return result >> 1, true
	}

	for i < len(encoded) {
		dLat, ok := next()
		if !ok {
			break
		}
		dLng, ok := next()
		if !ok {
			break
		}
		lat += dLat
		lng += dLng
		points = append(points, Point{Lat: float64(lat) / 1e5, Lng: float64(lng) / 1e5})
	}
	return points
}

// EncodePolyline is the inverse of DecodePolyline.
func EncodePolyline(points []Point) string {
	var b strings.Builder
	var prevLat, prevLng int64

	write := func(value int64) {
		v := value << 1
		if value < 0 {
			v = ^v
		}
		for v >= 0x20 {
			b.WriteByte(byte((0x20 | (v & 0x1f)) + 63))
			v >>= 5
		}
		b.WriteByte(byte(v + 63))
	}

	for _, p := range points {
		lat := int64(math.Round(p.Lat * 1e5))
		lng := int64(math.Round(p.Lng * 1e5))
		write(lat - prevLat)
		write(lng - prevLng)
		prevLat, prevLng = lat, lng
	}
	return b.String()
}
