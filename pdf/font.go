package pdf

import (
	"fmt"

	"github.com/corvid-labs/pdfread/object"
	"github.com/corvid-labs/pdfread/primitive"
)

// Font is a simple or composite font dictionary. Glyph-program parsing
// (embedded Type1/TrueType/CFF font files) is out of scope; this decodes
// only the metadata a text-extraction or layout pass needs.
type Font struct {
	Subtype    primitive.Name
	BaseFont   primitive.Name
	FirstChar  int
	LastChar   int
	Widths     []float64
	Encoding   primitive.Object // a Name, a Dict, or absent (nil)
	Descriptor *FontDescriptor  // nil for the standard 14 fonts and Type0
}

func (f *Font) FromPrimitive(o primitive.Object, ctx *object.Context) error {
	d, ok := primitive.AsDict(o)
	if !ok {
		return fmt.Errorf("pdf: font object is not a dictionary")
	}
	if v, ok := d.Get("Subtype"); ok {
		f.Subtype, _ = primitive.AsName(v)
	}
	if v, ok := d.Get("BaseFont"); ok {
		f.BaseFont, _ = primitive.AsName(v)
	}
	if v, ok := d.Get("FirstChar"); ok {
		f.FirstChar, _ = primitive.AsInt(v)
	}
	if v, ok := d.Get("LastChar"); ok {
		f.LastChar, _ = primitive.AsInt(v)
	}
	if v, ok := d.Get("Widths"); ok {
		resolved, err := ctx.Resolve(v)
		if err != nil {
			return err
		}
		if arr, ok := primitive.AsArray(resolved); ok {
			for _, e := range arr {
				ev, err := ctx.Resolve(e)
				if err != nil {
					return err
				}
				n, ok := primitive.AsNumber(ev)
				if !ok {
					return fmt.Errorf("pdf: /Widths entry is not a number")
				}
				f.Widths = append(f.Widths, n)
			}
		}
	}
	if v, ok := d.Get("Encoding"); ok {
		resolved, err := ctx.Resolve(v)
		if err != nil {
			return err
		}
		f.Encoding = resolved
	}
	if v, ok := d.Get("FontDescriptor"); ok {
		var desc *FontDescriptor
		var err error
		if ref, ok := primitive.AsReference(v); ok {
			desc, err = object.Deref[FontDescriptor](ctx, ref)
		} else {
			var resolved primitive.Object
			resolved, err = ctx.Resolve(v)
			if err == nil {
				desc, err = object.DecodeInPlace[FontDescriptor](ctx, resolved)
			}
		}
		if err != nil {
			return err
		}
		f.Descriptor = desc
	}
	return nil
}

// FontDescriptor carries a font's metrics, independent of whether its
// program is embedded.
type FontDescriptor struct {
	FontName     primitive.Name
	Flags        int
	FontBBox     Rectangle
	ItalicAngle  float64
	Ascent       float64
	Descent      float64
	CapHeight    float64
	StemV        float64
	MissingWidth float64
}

func (fd *FontDescriptor) FromPrimitive(o primitive.Object, ctx *object.Context) error {
	d, ok := primitive.AsDict(o)
	if !ok {
		return fmt.Errorf("pdf: font descriptor object is not a dictionary")
	}
	if v, ok := d.Get("FontName"); ok {
		fd.FontName, _ = primitive.AsName(v)
	}
	if v, ok := d.Get("Flags"); ok {
		fd.Flags, _ = primitive.AsInt(v)
	}
	if v, ok := d.Get("FontBBox"); ok {
		resolved, _ := ctx.Resolve(v)
		fd.FontBBox, _ = rectangleFromObject(resolved)
	}
	readFloat := func(key primitive.Name) float64 {
		v, ok := d.Get(key)
		if !ok {
			return 0
		}
		resolved, err := ctx.Resolve(v)
		if err != nil {
			return 0
		}
		n, _ := primitive.AsNumber(resolved)
		return n
	}
	fd.ItalicAngle = readFloat("ItalicAngle")
	fd.Ascent = readFloat("Ascent")
	fd.Descent = readFloat("Descent")
	fd.CapHeight = readFloat("CapHeight")
	fd.StemV = readFloat("StemV")
	fd.MissingWidth = readFloat("MissingWidth")
	return nil
}
