package pdf

import (
	"fmt"
	"io"
	"os"

	"github.com/corvid-labs/pdfread/backend"
	"github.com/corvid-labs/pdfread/object"
	"github.com/corvid-labs/pdfread/pdf/pdferr"
	"github.com/corvid-labs/pdfread/primitive"
	"github.com/corvid-labs/pdfread/xref"
)

// File is an opened PDF document: its cross-reference table has been
// loaded, its encryption (if any) has been unlocked with the supplied
// password, and its catalog and page tree are reachable from it.
type File struct {
	backend  *backend.Backend
	table    *xref.Table
	resolver *xref.Resolver
	ctx      *object.Context

	Options   Options
	Encrypted bool
}

// Open opens the file at path and loads it with opts.
func Open(path string, opts Options) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pdferr.New(pdferr.KindIO, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, pdferr.New(pdferr.KindIO, err)
	}
	file, err := Load(f, info.Size(), opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	return file, nil
}

// Load loads a PDF document from ra, a random-access view of size bytes --
// typically an *os.File (see Open) or a bytes.Reader over an in-memory
// file.
func Load(ra io.ReaderAt, size int64, opts Options) (*File, error) {
	if err := opts.Validate(); err != nil {
		return nil, pdferr.New(pdferr.KindOther, fmt.Errorf("invalid options: %w", err))
	}
	b := backend.New(ra, size)

	table, err := xref.Load(b, xref.LoadOptions{
		MaxChainLength: opts.MaxXRefChainLength,
		BestEffort:     opts.Mode == BestEffort,
	})
	if err != nil {
		return nil, pdferr.WrapDefault(pdferr.KindOther, err)
	}

	enc, err := setupEncryption(b, table, opts.Password)
	if err != nil {
		return nil, err
	}

	resolver := xref.NewResolver(b, table, enc, xref.ResolverOptions{
		MaxObjectStreamObjects: opts.MaxObjectStreamObjects,
		BestEffort:             opts.Mode == BestEffort,
	})
	return &File{
		backend:   b,
		table:     table,
		resolver:  resolver,
		ctx:       object.NewContext(resolver),
		Options:   opts,
		Encrypted: enc != nil,
	}, nil
}

// HeaderVersion returns the "%PDF-x.y" version string found at the start
// of the file.
func (f *File) HeaderVersion() string { return f.table.HeaderVersion }

// Trailer returns the (possibly merged, across incremental updates)
// trailer dictionary.
func (f *File) Trailer() primitive.Dict { return f.table.Trailer }

// Resolve resolves o if it is an indirect reference, and returns it
// unchanged otherwise.
func (f *File) Resolve(o primitive.Object) (primitive.Object, error) {
	return f.resolver.ResolveAny(o)
}

// Context returns the typed-object decode context backing this file, for
// callers that need to resolve a resource (a Font, an XObject) looked up
// from a Page's Resources.
func (f *File) Context() *object.Context { return f.ctx }

// Catalog decodes and returns the document catalog.
func (f *File) Catalog() (*Catalog, error) {
	v, ok := f.table.Trailer.Get("Root")
	if !ok {
		return nil, pdferr.MissingEntry("trailer", "Root")
	}
	if ref, ok := primitive.AsReference(v); ok {
		return object.Deref[Catalog](f.ctx, ref)
	}
	resolved, err := f.ctx.Resolve(v)
	if err != nil {
		return nil, err
	}
	return object.DecodeInPlace[Catalog](f.ctx, resolved)
}

// Info decodes and returns the document information dictionary, or nil if
// the trailer has no /Info entry.
func (f *File) Info() (*Info, error) {
	v, ok := f.table.Trailer.Get("Info")
	if !ok {
		return nil, nil
	}
	if ref, ok := primitive.AsReference(v); ok {
		return object.Deref[Info](f.ctx, ref)
	}
	resolved, err := f.ctx.Resolve(v)
	if err != nil {
		return nil, err
	}
	return object.DecodeInPlace[Info](f.ctx, resolved)
}

// Pages walks the page tree and returns every leaf page, in document
// order, with inherited attributes already resolved.
func (f *File) Pages() ([]*Page, error) {
	cat, err := f.Catalog()
	if err != nil {
		return nil, err
	}
	if !cat.HasPagesRef {
		return nil, pdferr.Other("catalog's /Pages is a direct dictionary, not an indirect reference")
	}
	var out []*Page
	visited := map[int]bool{}
	if err := f.walkPages(cat.PagesRef, pagesNode{}, &out, visited); err != nil {
		return nil, pdferr.WrapDefault(pdferr.KindOther, err)
	}
	return out, nil
}

// GetPage returns the page at the given zero-based index in document
// order.
func (f *File) GetPage(index int) (*Page, error) {
	pages, err := f.Pages()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(pages) {
		return nil, pdferr.PageOutOfBounds(index, len(pages))
	}
	return pages[index], nil
}
