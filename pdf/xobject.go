package pdf

import (
	"fmt"

	"github.com/corvid-labs/pdfread/object"
	"github.com/corvid-labs/pdfread/primitive"
)

// XObject is an image or form external object. Its compressed sample (or
// content stream) data is left undecoded in Stream.Raw; the filter package
// decodes it on demand once a caller knows it actually wants the bytes.
type XObject struct {
	Subtype primitive.Name // "Image" or "Form"
	Stream  primitive.Stream

	// Image-only fields.
	Width            int
	Height           int
	BitsPerComponent int
	ColorSpace       primitive.Object

	// Form-only field.
	BBox Rectangle
}

func (x *XObject) FromPrimitive(o primitive.Object, ctx *object.Context) error {
	s, ok := primitive.AsStream(o)
	if !ok {
		return fmt.Errorf("pdf: XObject is not a stream")
	}
	x.Stream = s
	if v, ok := s.Dict.Get("Subtype"); ok {
		x.Subtype, _ = primitive.AsName(v)
	}
	switch x.Subtype {
	case "Image":
		if v, ok := s.Dict.Get("Width"); ok {
			x.Width, _ = primitive.AsInt(v)
		}
		if v, ok := s.Dict.Get("Height"); ok {
			x.Height, _ = primitive.AsInt(v)
		}
		if v, ok := s.Dict.Get("BitsPerComponent"); ok {
			x.BitsPerComponent, _ = primitive.AsInt(v)
		}
		if v, ok := s.Dict.Get("ColorSpace"); ok {
			resolved, err := ctx.Resolve(v)
			if err != nil {
				return err
			}
			x.ColorSpace = resolved
		}
	case "Form":
		if v, ok := s.Dict.Get("BBox"); ok {
			resolved, err := ctx.Resolve(v)
			if err != nil {
				return err
			}
			x.BBox, _ = rectangleFromObject(resolved)
		}
	}
	return nil
}
