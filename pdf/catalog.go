package pdf

import (
	"fmt"

	"github.com/corvid-labs/pdfread/object"
	"github.com/corvid-labs/pdfread/primitive"
)

// Catalog is the document catalog a trailer's /Root entry points to.
type Catalog struct {
	PagesRef    primitive.Reference
	HasPagesRef bool
	// PagesInline holds the raw /Pages value when a (non-conformant, but
	// seen in the wild) producer wrote the page tree root as a direct
	// dictionary rather than an indirect reference.
	PagesInline primitive.Object
}

func (c *Catalog) FromPrimitive(o primitive.Object, ctx *object.Context) error {
	d, ok := primitive.AsDict(o)
	if !ok {
		return fmt.Errorf("pdf: catalog object is not a dictionary")
	}
	v, ok := d.Get("Pages")
	if !ok {
		return fmt.Errorf("pdf: catalog is missing /Pages")
	}
	if ref, ok := primitive.AsReference(v); ok {
		c.PagesRef = ref
		c.HasPagesRef = true
		return nil
	}
	resolved, err := ctx.Resolve(v)
	if err != nil {
		return err
	}
	c.PagesInline = resolved
	return nil
}
