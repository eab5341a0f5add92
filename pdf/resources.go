package pdf

import (
	"fmt"

	"github.com/corvid-labs/pdfread/object"
	"github.com/corvid-labs/pdfread/primitive"
)

// Resources wraps a page or form XObject's /Resources dictionary. Its
// sub-dictionaries (/Font, /XObject, /ColorSpace, ...) are looked up lazily
// by name rather than decoded eagerly, since a typical page only ever
// touches a handful of the fonts or images its resources dictionary lists.
type Resources struct {
	Dict primitive.Dict
}

func (r *Resources) FromPrimitive(o primitive.Object, ctx *object.Context) error {
	d, ok := primitive.AsDict(o)
	if !ok {
		return fmt.Errorf("pdf: /Resources value is not a dictionary")
	}
	r.Dict = d
	return nil
}

func (r *Resources) subDict(ctx *object.Context, category primitive.Name) (primitive.Dict, bool, error) {
	v, ok := r.Dict.Get(category)
	if !ok {
		return primitive.Dict{}, false, nil
	}
	resolved, err := ctx.Resolve(v)
	if err != nil {
		return primitive.Dict{}, false, err
	}
	d, ok := primitive.AsDict(resolved)
	return d, ok, nil
}

// Font looks up and decodes the font resource registered under name in
// this resources dictionary's /Font sub-dictionary.
func (r *Resources) Font(ctx *object.Context, name primitive.Name) (*Font, error) {
	fonts, ok, err := r.subDict(ctx, "Font")
	if err != nil || !ok {
		return nil, err
	}
	v, ok := fonts.Get(name)
	if !ok {
		return nil, fmt.Errorf("pdf: no font named %q in resources", name)
	}
	if ref, ok := primitive.AsReference(v); ok {
		return object.Deref[Font](ctx, ref)
	}
	resolved, err := ctx.Resolve(v)
	if err != nil {
		return nil, err
	}
	return object.DecodeInPlace[Font](ctx, resolved)
}

// FontNames lists the keys of the /Font sub-dictionary, in the order the
// dictionary declared them.
func (r *Resources) FontNames(ctx *object.Context) ([]primitive.Name, error) {
	fonts, ok, err := r.subDict(ctx, "Font")
	if err != nil || !ok {
		return nil, err
	}
	return fonts.Keys(), nil
}

// XObject looks up and decodes the XObject resource (an image or a form)
// registered under name in this resources dictionary's /XObject
// sub-dictionary.
func (r *Resources) XObject(ctx *object.Context, name primitive.Name) (*XObject, error) {
	xobjs, ok, err := r.subDict(ctx, "XObject")
	if err != nil || !ok {
		return nil, err
	}
	v, ok := xobjs.Get(name)
	if !ok {
		return nil, fmt.Errorf("pdf: no XObject named %q in resources", name)
	}
	if ref, ok := primitive.AsReference(v); ok {
		return object.Deref[XObject](ctx, ref)
	}
	resolved, err := ctx.Resolve(v)
	if err != nil {
		return nil, err
	}
	return object.DecodeInPlace[XObject](ctx, resolved)
}
