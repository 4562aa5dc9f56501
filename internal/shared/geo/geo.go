package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by every projection here.
const EarthRadiusKm = 6371.0

// Vec3 is a point in local Cartesian space, in kilometers.
// Y is up and stays zero for ground-level routes.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// LocalTangentPlane projects a geographic coordinate onto a flat plane
// centered on (centerLat, centerLng). Equirectangular approximation:
// fine at walking-route scale, increasingly distorted far from the center.
// NaN input propagates; callers guard before invoking.
func LocalTangentPlane(lat, lng, centerLat, centerLng float64) Vec3 {
	dLat := (lat - centerLat) * math.Pi / 180
	dLng := (lng - centerLng) * math.Pi / 180
	return Vec3{
		X: EarthRadiusKm * dLng * math.Cos(centerLat*math.Pi/180),
		Y: 0,
		Z: -EarthRadiusKm * dLat,
	}
}

// Path3D projects an ordered lat/lng polyline into local tangent space
// centered on (centerLat, centerLng).
func Path3D(path [][2]float64, centerLat, centerLng float64) []Vec3 {
	if len(path) == 0 {
		return nil
	}
	out := make([]Vec3, len(path))
	for i, p := range path {
		out[i] = LocalTangentPlane(p[0], p[1], centerLat, centerLng)
	}
	return out
}

// DMSToDecimal converts EXIF degrees/minutes/seconds plus a hemisphere
// reference ("N", "S", "E", "W") to signed decimal degrees.
func DMSToDecimal(deg, min, sec float64, ref string) float64 {
	dd := deg + min/60 + sec/3600
	if ref == "S" || ref == "W" {
		dd = -dd
	}
	return dd
}
