// Package object implements the typed object-mapping layer: the
// FromPrimitive contract a record type implements to build itself out of
// a resolved primitive.Object, and a generic Deref helper that resolves an
// indirect reference and materializes it as a given record type, caching
// the result by (reference, type) so the same page or font is only ever
// decoded once.
//
// This generalizes the teacher's own pattern of one hand-written
// map[ObjIndirectRef]*T cache per record type (found in its reader/read.go
// resolver struct) into a single cache keyed by both the reference and a
// runtime type tag, made possible by targeting a modern Go toolchain with
// generics rather than the teacher's pinned go 1.16.
package object

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/corvid-labs/pdfread/primitive"
	"github.com/corvid-labs/pdfread/xref"
)

// FromPrimitive is implemented by a record type on a pointer receiver to
// populate itself from a resolved primitive.Object (almost always a
// Dict or Stream, occasionally an Array or a scalar for the few PDF
// constructs that aren't dictionary-shaped).
type FromPrimitive interface {
	FromPrimitive(o primitive.Object, ctx *Context) error
}

// Context threads the resolver (for dereferencing nested indirect
// references while decoding a record) and the typed-object cache through
// a decode call.
type Context struct {
	Resolver *xref.Resolver

	mu    sync.Mutex
	cache map[cacheKey]interface{}
}

type cacheKey struct {
	typ reflect.Type
	ref primitive.Reference
}

// NewContext returns a Context backed by r.
func NewContext(r *xref.Resolver) *Context {
	return &Context{Resolver: r, cache: map[cacheKey]interface{}{}}
}

// Resolve resolves o if it is an indirect reference, returning it
// unchanged otherwise.
func (c *Context) Resolve(o primitive.Object) (primitive.Object, error) {
	return c.Resolver.ResolveAny(o)
}

// Deref resolves ref and decodes it as *T, caching the result so a later
// Deref of the same reference to the same type T returns the identical
// pointer instead of re-decoding. PT is T's pointer type, constrained to
// implement FromPrimitive -- the standard Go idiom for "a generic function
// over a type whose methods live on its pointer receiver".
func Deref[T any, PT interface {
	*T
	FromPrimitive(primitive.Object, *Context) error
}](ctx *Context, ref primitive.Reference) (*T, error) {
	key := cacheKey{typ: reflect.TypeOf((*T)(nil)).Elem(), ref: ref}

	ctx.mu.Lock()
	if cached, ok := ctx.cache[key]; ok {
		ctx.mu.Unlock()
		return cached.(*T), nil
	}
	ctx.mu.Unlock()

	raw, err := ctx.Resolver.Resolve(ref)
	if err != nil {
		return nil, err
	}
	var value T
	pt := PT(&value)
	if err := pt.FromPrimitive(raw, ctx); err != nil {
		return nil, fmt.Errorf("object: decoding %T from %v: %w", value, ref, err)
	}

	ctx.mu.Lock()
	ctx.cache[key] = &value
	ctx.mu.Unlock()
	return &value, nil
}

// DecodeInPlace decodes a resolved (not necessarily indirect) object
// directly into *T, without involving the reference cache -- used for
// values that are frequently inline rather than indirect, such as a
// page's /MediaBox.
func DecodeInPlace[T any, PT interface {
	*T
	FromPrimitive(primitive.Object, *Context) error
}](ctx *Context, o primitive.Object) (*T, error) {
	resolved, err := ctx.Resolve(o)
	if err != nil {
		return nil, err
	}
	var value T
	pt := PT(&value)
	if err := pt.FromPrimitive(resolved, ctx); err != nil {
		return nil, err
	}
	return &value, nil
}

// Optional represents a PDF dictionary entry that may be absent, as an
// alternative to a nil pointer: safer to pass by value, and self-
// documenting at call sites ("this really can be absent") the way a bare
// pointer is not.
type Optional[T any] struct {
	Value   T
	Present bool
}

// Some returns a present Optional wrapping v.
func Some[T any](v T) Optional[T] { return Optional[T]{Value: v, Present: true} }

// Get returns the wrapped value and whether it was present.
func (o Optional[T]) Get() (T, bool) { return o.Value, o.Present }

// OrElse returns the wrapped value if present, or fallback otherwise.
func (o Optional[T]) OrElse(fallback T) T {
	if o.Present {
		return o.Value
	}
	return fallback
}

// OneOrMany decodes a dictionary entry that PDF allows to be written
// either as a single value or as an array of values -- a recurring idiom
// (e.g. /Filter, /Kids in malformed files, /Contents on a page) -- into a
// slice either way.
func OneOrMany(o primitive.Object) primitive.Array {
	if arr, ok := primitive.AsArray(o); ok {
		return arr
	}
	if primitive.IsNull(o) {
		return nil
	}
	return primitive.Array{o}
}
