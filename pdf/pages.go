package pdf

import (
	"fmt"

	"github.com/corvid-labs/pdfread/object"
	"github.com/corvid-labs/pdfread/pdf/pdferr"
	"github.com/corvid-labs/pdfread/primitive"
)

// Page is one leaf of the page tree, with every inheritable attribute
// (/MediaBox, /CropBox, /Resources, /Rotate) already resolved to its
// effective value from the page's ancestors, per PDF 1.7 §7.7.3.4 -- a caller
// never has to chase /Parent itself.
type Page struct {
	MediaBox    Rectangle
	HasMediaBox bool
	CropBox     Rectangle
	HasCropBox  bool
	Rotate      Rotation
	HasRotate   bool
	Resources   *Resources
	Contents    []primitive.Stream
	Annots      primitive.Array
}

func (p *Page) FromPrimitive(o primitive.Object, ctx *object.Context) error {
	d, ok := primitive.AsDict(o)
	if !ok {
		return fmt.Errorf("pdf: page object is not a dictionary")
	}
	if v, ok := d.Get("MediaBox"); ok {
		resolved, err := ctx.Resolve(v)
		if err != nil {
			return err
		}
		if r, ok := rectangleFromObject(resolved); ok {
			p.MediaBox, p.HasMediaBox = r, true
		}
	}
	if v, ok := d.Get("CropBox"); ok {
		resolved, err := ctx.Resolve(v)
		if err != nil {
			return err
		}
		if r, ok := rectangleFromObject(resolved); ok {
			p.CropBox, p.HasCropBox = r, true
		}
	}
	if v, ok := d.Get("Rotate"); ok {
		resolved, err := ctx.Resolve(v)
		if err != nil {
			return err
		}
		if r, ok := rotationFromObject(resolved); ok {
			p.Rotate, p.HasRotate = r, true
		}
	}
	if v, ok := d.Get("Resources"); ok {
		res, err := derefResources(ctx, v)
		if err != nil {
			return err
		}
		p.Resources = res
	}
	if v, ok := d.Get("Contents"); ok {
		resolved, err := ctx.Resolve(v)
		if err != nil {
			return err
		}
		for _, item := range object.OneOrMany(resolved) {
			itemResolved, err := ctx.Resolve(item)
			if err != nil {
				return err
			}
			if s, ok := primitive.AsStream(itemResolved); ok {
				p.Contents = append(p.Contents, s)
			}
		}
	}
	if v, ok := d.Get("Annots"); ok {
		resolved, err := ctx.Resolve(v)
		if err != nil {
			return err
		}
		if arr, ok := primitive.AsArray(resolved); ok {
			p.Annots = arr
		}
	}
	return nil
}

func derefResources(ctx *object.Context, v primitive.Object) (*Resources, error) {
	if ref, ok := primitive.AsReference(v); ok {
		return object.Deref[Resources](ctx, ref)
	}
	resolved, err := ctx.Resolve(v)
	if err != nil {
		return nil, err
	}
	return object.DecodeInPlace[Resources](ctx, resolved)
}

// pagesNode decodes the inheritable attributes and /Kids of an
// intermediate page-tree node (a /Type /Pages dictionary); it is never
// returned to a caller, only used internally by the walk that builds the
// flattened, fully-inherited []*Page list.
type pagesNode struct {
	Kids        []primitive.Reference
	MediaBox    Rectangle
	HasMediaBox bool
	CropBox     Rectangle
	HasCropBox  bool
	Rotate      Rotation
	HasRotate   bool
	Resources   *Resources
}

func (n *pagesNode) FromPrimitive(o primitive.Object, ctx *object.Context) error {
	d, ok := primitive.AsDict(o)
	if !ok {
		return fmt.Errorf("pdf: page-tree node is not a dictionary")
	}
	if v, ok := d.Get("Kids"); ok {
		resolved, err := ctx.Resolve(v)
		if err != nil {
			return err
		}
		arr, ok := primitive.AsArray(resolved)
		if !ok {
			return fmt.Errorf("pdf: /Kids is not an array")
		}
		for _, k := range arr {
			ref, ok := primitive.AsReference(k)
			if !ok {
				continue // malformed direct-dict kid; best-effort skip
			}
			n.Kids = append(n.Kids, ref)
		}
	}
	if v, ok := d.Get("MediaBox"); ok {
		resolved, err := ctx.Resolve(v)
		if err != nil {
			return err
		}
		if r, ok := rectangleFromObject(resolved); ok {
			n.MediaBox, n.HasMediaBox = r, true
		}
	}
	if v, ok := d.Get("CropBox"); ok {
		resolved, err := ctx.Resolve(v)
		if err != nil {
			return err
		}
		if r, ok := rectangleFromObject(resolved); ok {
			n.CropBox, n.HasCropBox = r, true
		}
	}
	if v, ok := d.Get("Rotate"); ok {
		resolved, err := ctx.Resolve(v)
		if err != nil {
			return err
		}
		if r, ok := rotationFromObject(resolved); ok {
			n.Rotate, n.HasRotate = r, true
		}
	}
	if v, ok := d.Get("Resources"); ok {
		res, err := derefResources(ctx, v)
		if err != nil {
			return err
		}
		n.Resources = res
	}
	return nil
}

// walkPages performs the top-down traversal PDF 1.7 §7.7.3.4 describes as
// a chain of /Parent lookups from the leaf: here it is done once, from the
// root down, threading each node's inherited attributes into its
// children, so a leaf's effective attributes are known by the time it is
// reached instead of being resolved lazily per page.
func (f *File) walkPages(ref primitive.Reference, inh pagesNode, out *[]*Page, visited map[int]bool) error {
	if visited[ref.Number] {
		return fmt.Errorf("pdf: cycle in page tree at object %d", ref.Number)
	}
	visited[ref.Number] = true

	raw, err := f.resolver.Resolve(ref)
	if err != nil {
		return err
	}
	d, ok := primitive.AsDict(raw)
	if !ok {
		return fmt.Errorf("pdf: page-tree node %d is not a dictionary", ref.Number)
	}
	_, hasKids := d.Get("Kids")

	node, err := object.DecodeInPlace[pagesNode](f.ctx, raw)
	if err != nil {
		return err
	}
	merged := mergeInherited(inh, node)

	if hasKids {
		for _, kid := range node.Kids {
			if err := f.walkPages(kid, merged, out, visited); err != nil {
				return err
			}
		}
		return nil
	}

	page, err := object.Deref[Page](f.ctx, ref)
	if err != nil {
		return err
	}
	applyInherited(page, merged)
	if !page.HasMediaBox {
		// PDF 1.7 §7.7.3.4: /MediaBox is the one inheritable page
		// attribute every page must end up with, from itself or an
		// ancestor /Pages node; the others (/CropBox, /Resources,
		// /Rotate) have well-defined defaults or may legitimately be
		// absent.
		return fmt.Errorf("object %d: %w", ref.Number, pdferr.MissingEntry("Page", "MediaBox"))
	}
	*out = append(*out, page)
	return nil
}

func mergeInherited(parent pagesNode, node *pagesNode) pagesNode {
	merged := parent
	if node.HasMediaBox {
		merged.MediaBox, merged.HasMediaBox = node.MediaBox, true
	}
	if node.HasCropBox {
		merged.CropBox, merged.HasCropBox = node.CropBox, true
	}
	if node.HasRotate {
		merged.Rotate, merged.HasRotate = node.Rotate, true
	}
	if node.Resources != nil {
		merged.Resources = node.Resources
	}
	return merged
}

func applyInherited(page *Page, inh pagesNode) {
	if !page.HasMediaBox && inh.HasMediaBox {
		page.MediaBox, page.HasMediaBox = inh.MediaBox, true
	}
	if !page.HasCropBox && inh.HasCropBox {
		page.CropBox, page.HasCropBox = inh.CropBox, true
	}
	if !page.HasRotate && inh.HasRotate {
		page.Rotate, page.HasRotate = inh.Rotate, true
	}
	if page.Resources == nil {
		page.Resources = inh.Resources
	}
}
