package pdf

import "github.com/corvid-labs/pdfread/primitive"

// Rectangle is a PDF rectangle ([llx lly urx ury]), used for /MediaBox,
// /CropBox and a form XObject's /BBox.
type Rectangle struct {
	LLx, LLy, URx, URy float64
}

// Width and Height report the rectangle's extent, normalizing for a
// rectangle whose corners were written in the "wrong" order (PDF does not
// require llx<urx or lly<ury).
func (r Rectangle) Width() float64  { return absf(r.URx - r.LLx) }
func (r Rectangle) Height() float64 { return absf(r.URy - r.LLy) }

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func rectangleFromObject(o primitive.Object) (Rectangle, bool) {
	arr, ok := primitive.AsArray(o)
	if !ok || len(arr) != 4 {
		return Rectangle{}, false
	}
	vals := make([]float64, 4)
	for i, e := range arr {
		v, ok := primitive.AsNumber(e)
		if !ok {
			return Rectangle{}, false
		}
		vals[i] = v
	}
	return Rectangle{LLx: vals[0], LLy: vals[1], URx: vals[2], URy: vals[3]}, true
}

// Rotation is a page's /Rotate value, always a multiple of 90.
type Rotation int

func rotationFromObject(o primitive.Object) (Rotation, bool) {
	n, ok := primitive.AsInt(o)
	if !ok {
		return 0, false
	}
	n %= 360
	if n < 0 {
		n += 360
	}
	if n%90 != 0 {
		return 0, false
	}
	return Rotation(n), true
}
