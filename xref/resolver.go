package xref

import (
	"bytes"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/corvid-labs/pdfread/backend"
	"github.com/corvid-labs/pdfread/crypt"
	"github.com/corvid-labs/pdfread/filter"
	"github.com/corvid-labs/pdfread/lexer"
	"github.com/corvid-labs/pdfread/parser"
	"github.com/corvid-labs/pdfread/pdf/pdferr"
	"github.com/corvid-labs/pdfread/primitive"
)

// Resolver turns indirect references into objects, lazily reading and
// parsing them from the backing file on first access and caching the
// result by (object number, generation) for every later lookup.
//
// A single Resolver is safe for concurrent use: the cache is guarded by a
// mutex, and concurrent Resolve calls for the same reference are
// collapsed with singleflight so only one of them actually does the
// parsing work.
type Resolver struct {
	b     *backend.Backend
	table *Table
	enc   *crypt.Handler // nil if the file is not encrypted
	opts  ResolverOptions

	mu    sync.Mutex
	cache map[primitive.Reference]primitive.Object

	objStreamMu    sync.Mutex
	objStreamCache map[int][]primitive.Object

	group singleflight.Group
}

// NewResolver returns a Resolver over table, reading object bytes from b
// and, if enc is non-nil, decrypting strings and stream bodies as they are
// parsed.
func NewResolver(b *backend.Backend, table *Table, enc *crypt.Handler, opts ResolverOptions) *Resolver {
	return &Resolver{
		b:              b,
		table:          table,
		enc:            enc,
		opts:           opts,
		cache:          map[primitive.Reference]primitive.Object{},
		objStreamCache: map[int][]primitive.Object{},
	}
}

// Resolve returns the object that ref points to. A reference to an object
// number absent from the table resolves to primitive.Null{} rather than an
// error, per PDF 1.7 §7.3.10; a reference whose entry is marked free fails
// with a KindFreeObject error.
func (r *Resolver) Resolve(ref primitive.Reference) (primitive.Object, error) {
	r.mu.Lock()
	if o, ok := r.cache[ref]; ok {
		r.mu.Unlock()
		return o, nil
	}
	r.mu.Unlock()

	key := fmt.Sprintf("%d:%d", ref.Number, ref.Generation)
	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		return r.resolveUncached(ref)
	})
	if err != nil {
		return nil, err
	}
	return v.(primitive.Object), nil
}

// ResolveAny resolves o if it is a Reference, and returns it unchanged
// otherwise -- the common "give me the value, I don't care whether it was
// indirect" convenience used throughout the object-mapping layer.
func (r *Resolver) ResolveAny(o primitive.Object) (primitive.Object, error) {
	ref, ok := primitive.AsReference(o)
	if !ok {
		return o, nil
	}
	return r.Resolve(ref)
}

func (r *Resolver) resolveUncached(ref primitive.Reference) (primitive.Object, error) {
	entry, ok := r.table.Entries[ref.Number]
	if !ok {
		// Genuinely absent object number: PDF 1.7 §7.3.10 says this
		// resolves to the null object, not an error.
		r.storeCache(ref, primitive.Null{})
		return primitive.Null{}, nil
	}
	if entry.Type == Free {
		// An entry explicitly marked free is a distinct condition from
		// "never existed" -- surface it rather than silently returning
		// null, so a caller that dereferences a deleted object notices.
		return nil, pdferr.FreeObject(ref.Number)
	}

	var obj primitive.Object
	var err error
	switch entry.Type {
	case InUse:
		obj, err = r.parseAtOffset(ref.Number, ref.Generation, entry.Offset)
	case Compressed:
		obj, err = r.resolveCompressed(entry.StreamObjectNumber, entry.StreamIndex)
	default:
		err = pdferr.UnspecifiedXRefEntry(ref.Number)
	}
	if err != nil {
		return nil, err
	}
	r.storeCache(ref, obj)
	return obj, nil
}

func (r *Resolver) storeCache(ref primitive.Reference, obj primitive.Object) {
	r.mu.Lock()
	r.cache[ref] = obj
	r.mu.Unlock()
}

// parseAtOffset parses the "num gen obj ... endobj" declaration at offset,
// extracting a stream body (left filter-encoded) if present, and decrypting
// strings/stream bytes belonging directly to this object (not to objects
// nested inside an object stream, which PDF 1.7 forbids individually
// encrypting).
func (r *Resolver) parseAtOffset(number, generation int, offset int64) (primitive.Object, error) {
	// An object's stream body length is unbounded at the lexer level
	// (binary stream content must never be tokenized), so read from offset
	// to the end of the file, parse only as far as where "stream" begins
	// and the object's dictionary ends, then compute the exact stream range
	// separately once /Length is known.
	buf, err := r.b.ReadFrom(offset)
	if err != nil {
		return nil, pdferr.At(pdferr.KindIO, offset, fmt.Errorf("object %d %d: %w", number, generation, err))
	}
	p := parser.New(buf)
	gotNum, gotGen, obj, streamOff, isStream, err := p.ParseIndirectObject()
	if err != nil {
		return nil, pdferr.At(pdferr.KindParse, offset, fmt.Errorf("object %d %d: %w", number, generation, err))
	}
	if gotNum != number {
		return nil, pdferr.At(pdferr.KindUnexpectedLexeme, offset, fmt.Errorf("expected object number %d, found %d", number, gotNum))
	}
	_ = gotGen

	if !isStream {
		if r.enc != nil {
			return decryptObject(r.enc, number, generation, obj)
		}
		return obj, nil
	}

	s := obj.(primitive.Stream)
	streamStart := offset + int64(streamOff)
	raw, err := r.readStreamBody(s.Dict, streamStart)
	if err != nil {
		if !r.opts.BestEffort {
			return nil, fmt.Errorf("xref: object %d %d: %w", number, generation, err)
		}
		raw, err = scanForEndstream(r.b, streamStart)
		if err != nil {
			return nil, fmt.Errorf("xref: object %d %d: recovering stream body: %w", number, generation, err)
		}
	}
	s.Raw = raw

	if r.enc != nil && !bypassesCrypt(s.Dict) {
		dec, err := r.enc.Decrypt(number, generation, s.Raw)
		if err != nil {
			return nil, err
		}
		s.Raw = dec
	}
	if r.enc != nil {
		decDict, err := decryptObject(r.enc, number, generation, s.Dict)
		if err != nil {
			return nil, err
		}
		s.Dict = decDict.(primitive.Dict)
	}
	return s, nil
}

// readStreamBody resolves a stream dictionary's /Length -- following one
// level of indirection if it is itself a reference, the one place a
// regular (non-xref) stream's own dictionary is allowed to point outside
// itself -- and reads exactly that many bytes starting at streamStart.
func (r *Resolver) readStreamBody(d primitive.Dict, streamStart int64) ([]byte, error) {
	v, ok := d.Get("Length")
	if !ok {
		return nil, fmt.Errorf("missing /Length")
	}
	if ref, ok := primitive.AsReference(v); ok {
		resolved, err := r.Resolve(ref)
		if err != nil {
			return nil, fmt.Errorf("resolving /Length: %w", err)
		}
		v = resolved
	}
	n, ok := primitive.AsInt(v)
	if !ok || n < 0 {
		return nil, fmt.Errorf("/Length did not resolve to a non-negative integer")
	}
	return r.b.ReadAt(streamStart, int64(n))
}

// scanForEndstream recovers a stream's raw bytes when its /Length can't
// be trusted, by reading from streamStart to the first literal
// "endstream" keyword and trimming the single EOL PDF 1.7 §7.3.8.1
// requires before it. Grounded on the teacher's readStreamBlindly, which
// applies the same "weak heuristic" for the same reason: a producer's
// declared /Length is occasionally wrong, but "endstream" itself is not
// a byte sequence a well-formed stream's own content is allowed to emit
// unescaped, since it would otherwise end the stream early.
func scanForEndstream(b *backend.Backend, streamStart int64) ([]byte, error) {
	rest, err := b.ReadFrom(streamStart)
	if err != nil {
		return nil, err
	}
	idx := bytes.Index(rest, []byte("endstream"))
	if idx < 0 {
		return nil, fmt.Errorf("no endstream keyword found after offset %d", streamStart)
	}
	body := rest[:idx]
	switch {
	case bytes.HasSuffix(body, []byte("\r\n")):
		body = body[:len(body)-2]
	case bytes.HasSuffix(body, []byte("\n")), bytes.HasSuffix(body, []byte("\r")):
		body = body[:len(body)-1]
	}
	return body, nil
}

func bypassesCrypt(d primitive.Dict) bool {
	v, ok := d.Get("Filter")
	if !ok {
		return false
	}
	if n, ok := primitive.AsName(v); ok {
		return n == "Crypt"
	}
	if arr, ok := primitive.AsArray(v); ok {
		return len(arr) >= 1 && arr[0] == primitive.Name("Crypt")
	}
	return false
}

func decryptObject(h *crypt.Handler, number, generation int, o primitive.Object) (primitive.Object, error) {
	switch t := o.(type) {
	case primitive.String:
		dec, err := h.Decrypt(number, generation, t.Value)
		if err != nil {
			return nil, err
		}
		return primitive.String{Value: dec, Hex: t.Hex}, nil
	case primitive.Array:
		out := make(primitive.Array, len(t))
		for i, e := range t {
			d, err := decryptObject(h, number, generation, e)
			if err != nil {
				return nil, err
			}
			out[i] = d
		}
		return out, nil
	case primitive.Dict:
		out := primitive.NewDict()
		var walkErr error
		t.Range(func(k primitive.Name, v primitive.Object) {
			if walkErr != nil {
				return
			}
			d, err := decryptObject(h, number, generation, v)
			if err != nil {
				walkErr = err
				return
			}
			out.Set(k, d)
		})
		if walkErr != nil {
			return nil, walkErr
		}
		return out, nil
	default:
		return o, nil
	}
}

// resolveCompressed decodes (and caches) the object stream streamObjNum,
// then returns the element at index within it, per PDF 1.7 §7.5.7.
func (r *Resolver) resolveCompressed(streamObjNum, index int) (primitive.Object, error) {
	r.objStreamMu.Lock()
	objs, cached := r.objStreamCache[streamObjNum]
	r.objStreamMu.Unlock()
	if !cached {
		var err error
		objs, err = r.decodeObjectStream(streamObjNum)
		if err != nil {
			return nil, err
		}
		r.objStreamMu.Lock()
		r.objStreamCache[streamObjNum] = objs
		r.objStreamMu.Unlock()
	}
	if index < 0 || index >= len(objs) {
		return nil, pdferr.ObjStmOutOfBounds(index, len(objs))
	}
	return objs[index], nil
}

func (r *Resolver) decodeObjectStream(streamObjNum int) ([]primitive.Object, error) {
	entry, ok := r.table.Entries[streamObjNum]
	if !ok || entry.Type != InUse {
		return nil, fmt.Errorf("xref: object stream %d is not a regular in-use object", streamObjNum)
	}
	obj, err := r.parseAtOffset(streamObjNum, entry.Generation, entry.Offset)
	if err != nil {
		return nil, fmt.Errorf("xref: object stream %d: %w", streamObjNum, err)
	}
	s, ok := obj.(primitive.Stream)
	if !ok {
		return nil, fmt.Errorf("xref: object %d is not a stream", streamObjNum)
	}
	if _, ok := s.Dict.Get("Extends"); ok {
		return nil, fmt.Errorf("xref: chained object streams (/Extends) are not supported")
	}
	n, ok := getInt(s.Dict, "N")
	if !ok {
		return nil, pdferr.MissingEntry("ObjStm", "N")
	}
	if max := int64(r.opts.maxObjectStreamObjects()); n > max {
		return nil, pdferr.New(pdferr.KindOther, fmt.Errorf("object stream %d declares /N=%d, exceeding the configured limit of %d", streamObjNum, n, max))
	}
	first, ok := getInt(s.Dict, "First")
	if !ok {
		return nil, pdferr.MissingEntry("ObjStm", "First")
	}

	names, params, err := filterChain(s.Dict)
	if err != nil {
		return nil, err
	}
	decoded := s.Raw
	if len(names) > 0 {
		decoded, err = filter.DecodeChain(names, params, s.Raw)
		if err != nil {
			return nil, fmt.Errorf("xref: object stream %d: %w", streamObjNum, err)
		}
	}

	// The prolog is a flat sequence of "objNum offset" integer pairs, not
	// a PDF object in its own right; lex it directly rather than through
	// ParseObject.
	type pair struct{ objNum, offset int }
	pairs := make([]pair, 0, n)
	lx := lexer.New(decoded[:first])
	for i := int64(0); i < n; i++ {
		numTok, err := lx.Expect(lexer.Integer)
		if err != nil {
			return nil, fmt.Errorf("xref: object stream %d: prolog: %w", streamObjNum, err)
		}
		offTok, err := lx.Expect(lexer.Integer)
		if err != nil {
			return nil, fmt.Errorf("xref: object stream %d: prolog: %w", streamObjNum, err)
		}
		num, _ := numTok.Int()
		off, _ := offTok.Int()
		pairs = append(pairs, pair{int(num), int(off)})
	}

	out := make([]primitive.Object, len(pairs))
	for i, pr := range pairs {
		start := int(first) + pr.offset
		end := len(decoded)
		if i+1 < len(pairs) {
			end = int(first) + pairs[i+1].offset
		}
		if start < 0 || start > len(decoded) || end < start || end > len(decoded) {
			return nil, fmt.Errorf("xref: object stream %d: entry %d out of bounds", streamObjNum, i)
		}
		objParser := parser.New(decoded[start:end])
		o, err := objParser.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("xref: object stream %d: decoding entry %d (object %d): %w", streamObjNum, i, pr.objNum, err)
		}
		out[i] = o
	}
	return out, nil
}
