// Package xref implements the cross-reference index: loading a classic
// xref table or a cross-reference stream (following the /Prev chain back
// through a file's incremental updates), and resolving an indirect
// reference to the byte offset (or owning object-stream location) of the
// object it names.
package xref

import (
	"bytes"
	"fmt"

	"github.com/corvid-labs/pdfread/backend"
	"github.com/corvid-labs/pdfread/filter"
	"github.com/corvid-labs/pdfread/lexer"
	"github.com/corvid-labs/pdfread/parser"
	"github.com/corvid-labs/pdfread/pdf/pdferr"
	"github.com/corvid-labs/pdfread/primitive"
)

// decodeXRefStreamContent applies the xref stream's /Filter (almost
// always FlateDecode with a PNG predictor) to its raw bytes. Unlike a
// regular content stream, PDF 1.7 §7.5.8.2 forbids indirect references
// anywhere inside an xref stream's own dictionary, so no cross-reference
// table is needed yet to decode it -- which is exactly what makes it
// usable to bootstrap the table in the first place.
func decodeXRefStreamContent(d primitive.Dict, raw []byte) ([]byte, error) {
	names, paramsList, err := filterChain(d)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return raw, nil
	}
	return filter.DecodeChain(names, paramsList, raw)
}

// filterChain reads a stream dictionary's /Filter and /DecodeParms into
// parallel slices, handling both the single-filter and filter-array forms
// PDF allows interchangeably.
func filterChain(d primitive.Dict) ([]filter.Name, []filter.Params, error) {
	fv, ok := d.Get("Filter")
	if !ok {
		return nil, nil, nil
	}
	var names []filter.Name
	var dictsRaw []primitive.Object
	if arr, ok := primitive.AsArray(fv); ok {
		for _, o := range arr {
			n, ok := primitive.AsName(o)
			if !ok {
				return nil, nil, fmt.Errorf("xref: /Filter array must contain names")
			}
			names = append(names, filter.Name(n))
		}
		if pv, ok := d.Get("DecodeParms"); ok {
			if parr, ok := primitive.AsArray(pv); ok {
				dictsRaw = parr
			}
		}
	} else {
		n, ok := primitive.AsName(fv)
		if !ok {
			return nil, nil, fmt.Errorf("xref: /Filter must be a name or array of names")
		}
		names = append(names, filter.Name(n))
		if pv, ok := d.Get("DecodeParms"); ok {
			dictsRaw = []primitive.Object{pv}
		}
	}
	params := make([]filter.Params, len(names))
	for i := range params {
		params[i] = filter.DefaultParams()
		if i < len(dictsRaw) {
			if pd, ok := primitive.AsDict(dictsRaw[i]); ok {
				p, err := filter.ParamsFromDict(pd)
				if err != nil {
					return nil, nil, err
				}
				params[i] = p
			}
		}
	}
	return names, params, nil
}

// EntryType identifies the three kinds of cross-reference entry defined
// by PDF 1.7 §7.5.4 and §7.5.8.
type EntryType uint8

const (
	// Free marks a deleted object number; resolving a reference to it
	// fails with a KindFreeObject error (an object number with no entry
	// at all resolves to the null object instead, per §7.3.10).
	Free EntryType = iota
	InUse
	Compressed
)

// Entry is one cross-reference table slot.
type Entry struct {
	Type EntryType
	// Offset is the byte offset of the "id gen obj" declaration, valid
	// when Type == InUse.
	Offset int64
	// Generation is the entry's generation number, valid for Free and
	// InUse entries.
	Generation int
	// StreamObjectNumber and StreamIndex locate a compressed object within
	// its owning object stream, valid when Type == Compressed.
	StreamObjectNumber int
	StreamIndex        int
}

// Table is the merged cross-reference index built by following a file's
// xref sections back through its /Prev chain, newest entries winning.
type Table struct {
	Entries       map[int]Entry
	Trailer       primitive.Dict
	HeaderVersion string
	// AdditionalTrailers records every trailer dictionary seen along the
	// chain, newest first, for callers that need more than the merged
	// view (e.g. recovering /ID from an earlier update).
	AdditionalTrailers []primitive.Dict
}

const maxPrevChain = 1024

// Load builds the cross-reference Table for the file backend provides,
// starting from the "startxref" offset at the tail of the file and
// following /Prev (and hybrid-file /XRefStm) links until the chain ends
// or a cycle is detected. With opts.BestEffort set, a failure anywhere in
// that structured walk falls back to rebuildByScanning instead of
// propagating the error.
func Load(b *backend.Backend, opts LoadOptions) (*Table, error) {
	version, err := headerVersion(b)
	if err != nil {
		return nil, err
	}
	start, err := locateStartXRef(b)
	if err != nil {
		if opts.BestEffort {
			return rebuildByScanning(b, version)
		}
		return nil, fmt.Errorf("xref: %w (the file may be corrupt; retry with BestEffort to recover by scanning)", err)
	}

	t := &Table{Entries: map[int]Entry{}, HeaderVersion: version}
	visited := map[int64]bool{}
	offset := start
	maxChain := opts.maxChainLength()
	for i := 0; i < maxChain && offset >= 0 && !visited[offset]; i++ {
		visited[offset] = true
		trailer, prev, xrefStm, err := t.loadSectionAt(b, offset)
		if err != nil {
			if opts.BestEffort {
				return rebuildByScanning(b, version)
			}
			return nil, err
		}
		t.AdditionalTrailers = append(t.AdditionalTrailers, trailer)
		if t.Trailer.Len() == 0 {
			t.Trailer = trailer
		} else {
			mergeTrailer(&t.Trailer, trailer)
		}
		if xrefStm >= 0 && !visited[xrefStm] {
			visited[xrefStm] = true
			if _, _, _, err := t.loadSectionAt(b, xrefStm); err != nil {
				if opts.BestEffort {
					return rebuildByScanning(b, version)
				}
				return nil, err
			}
		}
		offset = prev
	}
	return t, nil
}

// rebuildByScanning recovers a best-effort cross-reference table for a
// file whose xref section is damaged beyond the structured loader's
// ability to parse, the same fallback real-world PDF viewers use: every
// "num gen obj" declaration in the file becomes an InUse entry (later
// declarations overwrite earlier ones, since incremental updates only
// append), and the last "trailer" dictionary encountered supplies /Root
// and /Size. Object 0 is recorded Free since there is no free-list left
// to reconstruct.
func rebuildByScanning(b *backend.Backend, version string) (*Table, error) {
	data, err := b.ReadAt(0, b.Size())
	if err != nil {
		return nil, err
	}
	t := &Table{Entries: map[int]Entry{0: {Type: Free, Generation: 65535}}, HeaderVersion: version}

	l := lexer.New(data)
	var prev1, prev2 lexer.Token
	for {
		cur, nerr := l.Next()
		if nerr != nil {
			break
		}
		switch cur.Kind {
		case lexer.Obj:
			if prev1.Kind == lexer.Integer && prev2.Kind == lexer.Integer {
				if num, ierr := prev2.Int(); ierr == nil {
					t.Entries[int(num)] = Entry{Type: InUse, Offset: int64(prev2.Pos)}
				}
			}
		case lexer.Trailer:
			if d, perr := parser.NewFromLexer(l).ParseDict(); perr == nil {
				t.Trailer = d
			}
		}
		prev2, prev1 = prev1, cur
	}
	if len(t.Entries) <= 1 {
		return nil, pdferr.New(pdferr.KindNotFound, fmt.Errorf("xref: recovery scan found no object declarations"))
	}
	if t.Trailer.Len() == 0 {
		return nil, pdferr.New(pdferr.KindNotFound, fmt.Errorf("xref: recovery scan found no trailer dictionary"))
	}
	return t, nil
}

func mergeTrailer(into *primitive.Dict, from primitive.Dict) {
	from.Range(func(k primitive.Name, v primitive.Object) {
		if _, ok := into.Get(k); !ok {
			into.Set(k, v)
		}
	})
}

// headerVersion reads the "%PDF-X.Y" banner required at (or very near)
// the start of the file.
func headerVersion(b *backend.Backend) (string, error) {
	n := int64(1024)
	if n > b.Size() {
		n = b.Size()
	}
	head, err := b.ReadAt(0, n)
	if err != nil {
		return "", err
	}
	idx := bytes.Index(head, []byte("%PDF-"))
	if idx < 0 {
		return "", fmt.Errorf("xref: missing %%PDF- header")
	}
	rest := head[idx+len("%PDF-"):]
	end := 0
	for end < len(rest) && end < 3 && rest[end] != '\r' && rest[end] != '\n' {
		end++
	}
	return string(rest[:end]), nil
}

// locateStartXRef scans backward from the tail of the file for the
// "startxref" keyword and the offset that follows it, growing the search
// window if the first chunk doesn't contain it (some producers pad the
// file with trailing whitespace or junk after %%EOF).
func locateStartXRef(b *backend.Backend) (int64, error) {
	window := int64(1024)
	for {
		n := window
		if n > b.Size() {
			n = b.Size()
		}
		tail, err := b.Tail(n)
		if err != nil {
			return 0, err
		}
		idx := bytes.LastIndex(tail, []byte("startxref"))
		if idx >= 0 {
			l := lexer.New(tail)
			l.SetPos(idx + len("startxref"))
			tok, err := l.Next()
			if err != nil || tok.Kind != lexer.Integer {
				return 0, fmt.Errorf("xref: malformed startxref offset")
			}
			off, _ := tok.Int()
			return off, nil
		}
		if n == b.Size() {
			break
		}
		window *= 4
	}
	return 0, fmt.Errorf("xref: startxref not found")
}

// loadSectionAt parses one xref section (classic table or stream)
// starting at offset, recording its entries (without overwriting ones
// already present from a newer section) and returns its trailer
// dictionary, the /Prev offset (-1 if absent) and, for a classic section
// with a hybrid-file /XRefStm entry, that stream's offset (-1 if absent).
func (t *Table) loadSectionAt(b *backend.Backend, offset int64) (trailer primitive.Dict, prev int64, xrefStm int64, err error) {
	buf, err := b.ReadFrom(offset)
	if err != nil {
		return primitive.Dict{}, -1, -1, fmt.Errorf("xref: section at %d: %w", offset, err)
	}
	l := lexer.New(buf)
	peek, err := l.Peek()
	if err != nil {
		return primitive.Dict{}, -1, -1, fmt.Errorf("xref: section at %d: %w", offset, err)
	}
	if peek.Kind == lexer.XRef {
		return t.loadClassicSection(l)
	}
	return t.loadStreamSection(l)
}

func getInt(d primitive.Dict, key primitive.Name) (int64, bool) {
	v, ok := d.Get(key)
	if !ok {
		return 0, false
	}
	n, ok := primitive.AsInt(v)
	return int64(n), ok
}

// prevOffset reads /Prev as a direct Integer (the conforming form). Any
// other value, including an indirect Reference (which some buggy
// generators emit), is treated as absent and ends the chain.
func prevOffset(d primitive.Dict) int64 {
	v, ok := d.Get("Prev")
	if !ok {
		return -1
	}
	if n, ok := primitive.AsInt(v); ok {
		return int64(n)
	}
	return -1
}

func (t *Table) loadClassicSection(l *lexer.Lexer) (primitive.Dict, int64, int64, error) {
	if _, err := l.Expect(lexer.XRef); err != nil {
		return primitive.Dict{}, -1, -1, fmt.Errorf("xref: %w", err)
	}
	for {
		peek, err := l.Peek()
		if err != nil {
			return primitive.Dict{}, -1, -1, fmt.Errorf("xref: %w", err)
		}
		if peek.Kind == lexer.Trailer {
			break
		}
		if peek.Kind != lexer.Integer {
			return primitive.Dict{}, -1, -1, fmt.Errorf("xref: unexpected token %q in xref section", peek.Value)
		}
		startTok, _ := l.Next()
		countTok, err := l.Expect(lexer.Integer)
		if err != nil {
			return primitive.Dict{}, -1, -1, fmt.Errorf("xref: subsection header: %w", err)
		}
		start, _ := startTok.Int()
		count, _ := countTok.Int()
		for i := int64(0); i < count; i++ {
			offTok, err := l.Expect(lexer.Integer)
			if err != nil {
				return primitive.Dict{}, -1, -1, fmt.Errorf("xref: entry: %w", err)
			}
			genTok, err := l.Expect(lexer.Integer)
			if err != nil {
				return primitive.Dict{}, -1, -1, fmt.Errorf("xref: entry: %w", err)
			}
			kindTok, err := l.Next()
			if err != nil {
				return primitive.Dict{}, -1, -1, fmt.Errorf("xref: entry: %w", err)
			}
			off, _ := offTok.Int()
			gen, _ := genTok.Int()
			objNum := int(start + i)
			if _, exists := t.Entries[objNum]; exists {
				continue
			}
			switch kindTok.Value {
			case "n":
				t.Entries[objNum] = Entry{Type: InUse, Offset: off, Generation: int(gen)}
			case "f":
				t.Entries[objNum] = Entry{Type: Free, Generation: int(gen)}
			default:
				return primitive.Dict{}, -1, -1, fmt.Errorf("xref: invalid entry kind %q", kindTok.Value)
			}
		}
	}
	if _, err := l.Expect(lexer.Trailer); err != nil {
		return primitive.Dict{}, -1, -1, fmt.Errorf("xref: %w", err)
	}
	p := parser.NewFromLexer(l)
	trailer, err := p.ParseDict()
	if err != nil {
		return primitive.Dict{}, -1, -1, fmt.Errorf("xref: trailer: %w", err)
	}
	prev := prevOffset(trailer)
	xrefStm := int64(-1)
	if n, ok := getInt(trailer, "XRefStm"); ok {
		xrefStm = n
	}
	return trailer, prev, xrefStm, nil
}

// streamDict holds the /W, /Index and /Size fields of a cross-reference
// stream dictionary, parsed directly (not through the xref.Entries table
// itself, since those fields describe the entries, not objects).
type streamDict struct {
	w     [3]int
	index [][2]int
	size  int
}

func parseXRefStreamDict(d primitive.Dict) (streamDict, error) {
	var sd streamDict
	size, ok := getInt(d, "Size")
	if !ok {
		return sd, fmt.Errorf("xref: stream missing /Size")
	}
	sd.size = int(size)

	wArr, ok := d.Get("W")
	if !ok {
		return sd, fmt.Errorf("xref: stream missing /W")
	}
	arr, ok := primitive.AsArray(wArr)
	if !ok || len(arr) < 3 {
		return sd, fmt.Errorf("xref: /W must be an array of (at least) 3 integers")
	}
	for i := 0; i < 3; i++ {
		n, ok := primitive.AsInt(arr[i])
		if !ok || n < 0 {
			return sd, fmt.Errorf("xref: /W entries must be non-negative integers")
		}
		sd.w[i] = n
	}

	if idxV, ok := d.Get("Index"); ok {
		arr, ok := primitive.AsArray(idxV)
		if !ok || len(arr)%2 != 0 {
			return sd, fmt.Errorf("xref: /Index must be an array of integer pairs")
		}
		for i := 0; i < len(arr); i += 2 {
			start, ok1 := primitive.AsInt(arr[i])
			count, ok2 := primitive.AsInt(arr[i+1])
			if !ok1 || !ok2 {
				return sd, fmt.Errorf("xref: /Index entries must be integers")
			}
			sd.index = append(sd.index, [2]int{start, count})
		}
	} else {
		sd.index = [][2]int{{0, sd.size}}
	}
	return sd, nil
}

func (sd streamDict) entrySize() int { return sd.w[0] + sd.w[1] + sd.w[2] }

func bufToInt64(buf []byte) int64 {
	var v int64
	for _, b := range buf {
		v = v<<8 | int64(b)
	}
	return v
}

func (t *Table) loadStreamSection(l *lexer.Lexer) (primitive.Dict, int64, int64, error) {
	p := parser.NewFromLexer(l)
	_, _, obj, streamOff, isStream, err := p.ParseIndirectObject()
	if err != nil {
		return primitive.Dict{}, -1, -1, fmt.Errorf("xref stream: %w", err)
	}
	if !isStream {
		return primitive.Dict{}, -1, -1, fmt.Errorf("xref stream: object is not a stream")
	}
	s := obj.(primitive.Stream)
	length, ok := getInt(s.Dict, "Length")
	if !ok {
		return primitive.Dict{}, -1, -1, fmt.Errorf("xref stream: /Length must be a direct integer (indirect references are not permitted in an xref stream's own dictionary)")
	}
	raw := l.Slice(streamOff, int(length))

	sd, err := parseXRefStreamDict(s.Dict)
	if err != nil {
		return primitive.Dict{}, -1, -1, err
	}

	decoded, err := decodeXRefStreamContent(s.Dict, raw)
	if err != nil {
		return primitive.Dict{}, -1, -1, fmt.Errorf("xref stream: %w", err)
	}

	if err := t.extractEntriesFromStream(decoded, sd); err != nil {
		return primitive.Dict{}, -1, -1, err
	}

	prev := prevOffset(s.Dict)
	return s.Dict, prev, -1, nil
}

func (t *Table) extractEntriesFromStream(buf []byte, sd streamDict) error {
	entrySize := sd.entrySize()
	pos := 0
	for _, sub := range sd.index {
		start, count := sub[0], sub[1]
		for i := 0; i < count; i++ {
			if pos+entrySize > len(buf) {
				return nil
			}
			f0 := buf[pos : pos+sd.w[0]]
			f1 := buf[pos+sd.w[0] : pos+sd.w[0]+sd.w[1]]
			f2 := buf[pos+sd.w[0]+sd.w[1] : pos+entrySize]
			pos += entrySize

			typ := int64(1) // PDF 1.7 §7.5.8.3: /W[0] == 0 means field 1 defaults to 1
			if sd.w[0] > 0 {
				typ = bufToInt64(f0)
			}
			field2 := bufToInt64(f1)
			field3 := bufToInt64(f2)
			objNum := start + i
			if _, exists := t.Entries[objNum]; exists {
				continue
			}
			switch typ {
			case 0:
				t.Entries[objNum] = Entry{Type: Free, Generation: int(field3)}
			case 1:
				t.Entries[objNum] = Entry{Type: InUse, Offset: field2, Generation: int(field3)}
			case 2:
				t.Entries[objNum] = Entry{Type: Compressed, StreamObjectNumber: int(field2), StreamIndex: int(field3)}
			default:
				return pdferr.XRefStreamType(typ)
			}
		}
	}
	return nil
}
