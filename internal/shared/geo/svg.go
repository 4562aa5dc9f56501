package geo

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// SVGPath maps geographic points onto a w×h canvas, preserving aspect
// ratio by scaling to the binding axis and centering the other, then
// emits a straight-segment SVG path ("M x,y L x,y ..."). A bound with
// zero width or height falls back to an identity scale so a single
// repeated point still yields a valid degenerate path.
func SVGPath(points []orb.Point, bound orb.Bound, w, h, padding float64) string {
	if len(points) == 0 {
		return ""
	}

	lngRange := bound.Max[0] - bound.Min[0]
	latRange := bound.Max[1] - bound.Min[1]

	scale := 1.0
	offsetX := 0.0
	offsetY := 0.0

	switch {
	case lngRange == 0 || latRange == 0:
		// degenerate bound: identity scale, center whatever extent exists
		offsetX = (w - padding*2 - lngRange) / 2
		offsetY = (h - padding*2 - latRange) / 2
	case lngRange/latRange > w/h:
		scale = (w - padding*2) / lngRange
		offsetY = (h - latRange*scale) / 2
	default:
		scale = (h - padding*2) / latRange
		offsetX = (w - lngRange*scale) / 2
	}

	var b strings.Builder
	b.WriteString("M ")
	for i, p := range points {
		if i > 0 {
			b.WriteString(" L ")
		}
		x := (p[0]-bound.Min[0])*scale + padding + offsetX
		y := (p[1]-bound.Min[1])*scale + padding + offsetY
		b.WriteString(strconv.FormatFloat(x, 'f', 2, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(y, 'f', 2, 64))
	}
	return b.String()
}
