// Package pdferr defines the error taxonomy the file facade and everything
// it calls return, so a caller can distinguish "this entry doesn't exist"
// from "this file is encrypted and needs a password" from "this dictionary
// is missing a required field" with errors.As instead of parsing a message
// string.
package pdferr

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed. The set mirrors the closed set
// of conditions the core parsing and resolution logic can raise; a caller
// that wants to react to one specific condition switches on Kind rather
// than matching error text.
type Kind int

const (
	// KindEOF means the input ran out where a token was expected.
	KindEOF Kind = iota
	// KindParse covers a lexical or syntactic error with no more specific
	// Kind of its own.
	KindParse
	// KindUnexpectedLexeme means a specific lexeme was expected at a
	// position and something else was found there.
	KindUnexpectedLexeme
	// KindUnknownType means a value's leading lexeme didn't match any
	// object type the grammar allows at that point.
	KindUnknownType
	// KindUnknownVariant means a name was recognized as belonging to a
	// closed set (e.g. a filter name, a /Subtype) but didn't match any
	// member.
	KindUnknownVariant
	// KindNotFound means a required keyword or section could not be
	// located.
	KindNotFound
	// KindReference covers a malformed "num gen R" reference.
	KindReference
	// KindXRefStreamType means a cross-reference stream entry's type
	// field (PDF 1.7 §7.5.8.3 field 1) was not 0, 1 or 2.
	KindXRefStreamType
	// KindHexDecode means a hex string or stream contained a non-hex-
	// digit byte outside of whitespace.
	KindHexDecode
	// KindAscii85Tail means an ASCII85 stream ended without its "~>"
	// marker.
	KindAscii85Tail
	// KindIncorrectPredictorType means a /DecodeParms /Predictor value
	// outside the set this library implements (0, 1, 2, 10-15).
	KindIncorrectPredictorType
	// KindFromPrimitive means a typed object's FromPrimitive hook
	// rejected the primitive value it was handed.
	KindFromPrimitive
	// KindMissingEntry means a dictionary lacked a field required either
	// by the PDF spec or by this library's typed decoding of it.
	KindMissingEntry
	// KindKeyValueMismatch means a dictionary key held a value different
	// from the one a caller specifically required (e.g. checking a
	// /Type tag).
	KindKeyValueMismatch
	// KindWrongDictionaryType means a dictionary was found where
	// expected, but its /Type or /Subtype didn't match what the caller
	// needed.
	KindWrongDictionaryType
	// KindFreeObject means a reference resolved to a cross-reference
	// entry explicitly marked Free (as opposed to an object number
	// absent from the table entirely, which the resolver resolves to the
	// null object without an error).
	KindFreeObject
	// KindNullRef means a reference pointed at an object number with no
	// cross-reference entry at all. The resolver does not raise it: such a
	// reference resolves to the null object.
	KindNullRef
	// KindUnexpectedPrimitive means a primitive.Object of the wrong Go
	// type was found where a specific one (dict, array, name, ...) was
	// required.
	KindUnexpectedPrimitive
	// KindObjStmOutOfBounds means a compressed-object index fell outside
	// the range of entries its object stream actually declares.
	KindObjStmOutOfBounds
	// KindPageOutOfBounds means a zero-based page index was outside
	// [0, page count).
	KindPageOutOfBounds
	// KindPageNotFound means a page could not be located by some other
	// criterion (a named destination, a /StructParent back-reference).
	KindPageNotFound
	// KindUnspecifiedXRefEntry means a cross-reference entry carried an
	// EntryType this library does not recognize internally -- a defect
	// in the table-building code, not in the file, since Free/InUse/
	// Compressed is exhaustive for anything Load can produce.
	KindUnspecifiedXRefEntry
	// KindInvalidPassword means the supplied password was rejected by
	// the document's security handler.
	KindInvalidPassword
	// KindOther covers anything not worth a dedicated Kind: an
	// unsupported but well-formed construct (a security handler other
	// than /Standard, a chained /Extends object stream), a resource
	// limit being exceeded, or an options-validation failure.
	KindOther

	// KindIO covers failures reading the backing file itself: os.Open,
	// os.Stat, a short read. These happen before the core ever sees a
	// byte, so they sit outside the spec's closed set of parsing/
	// resolution error kinds; kept here as a practical addition so Open
	// can still report failures through the same Kind-carrying Error
	// type as everything else.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindEOF:
		return "EOF"
	case KindParse:
		return "parse"
	case KindUnexpectedLexeme:
		return "unexpected-lexeme"
	case KindUnknownType:
		return "unknown-type"
	case KindUnknownVariant:
		return "unknown-variant"
	case KindNotFound:
		return "not-found"
	case KindReference:
		return "reference"
	case KindXRefStreamType:
		return "xref-stream-type"
	case KindHexDecode:
		return "hex-decode"
	case KindAscii85Tail:
		return "ascii85-tail"
	case KindIncorrectPredictorType:
		return "incorrect-predictor-type"
	case KindFromPrimitive:
		return "from-primitive"
	case KindMissingEntry:
		return "missing-entry"
	case KindKeyValueMismatch:
		return "key-value-mismatch"
	case KindWrongDictionaryType:
		return "wrong-dictionary-type"
	case KindFreeObject:
		return "free-object"
	case KindNullRef:
		return "null-ref"
	case KindUnexpectedPrimitive:
		return "unexpected-primitive"
	case KindObjStmOutOfBounds:
		return "objstm-out-of-bounds"
	case KindPageOutOfBounds:
		return "page-out-of-bounds"
	case KindPageNotFound:
		return "page-not-found"
	case KindUnspecifiedXRefEntry:
		return "unspecified-xref-entry"
	case KindInvalidPassword:
		return "invalid-password"
	case KindOther:
		return "other"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with a Kind and, where known, the byte
// offset in the file the failure was found at.
type Error struct {
	Kind Kind
	Pos  int64 // -1 if not applicable
	Err  error
}

func (e *Error) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("pdf: %s at offset %d: %v", e.Kind, e.Pos, e.Err)
	}
	return fmt.Sprintf("pdf: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err as a Kind error with no associated file offset.
func New(kind Kind, err error) error {
	return &Error{Kind: kind, Pos: -1, Err: err}
}

// At wraps err as a Kind error found at byte offset pos.
func At(kind Kind, pos int64, err error) error {
	return &Error{Kind: kind, Pos: pos, Err: err}
}

// WrapDefault wraps err under kind unless err already carries a more
// specific Kind somewhere in its chain, in which case err is returned
// unchanged -- an outer layer's generic wrap must never shadow an inner
// call's specific Kind from errors.As's view.
func WrapDefault(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	return New(kind, err)
}

// FreeObject reports that the reference to object id resolved to a
// cross-reference entry explicitly marked free.
func FreeObject(id int) error {
	return &Error{Kind: KindFreeObject, Pos: -1, Err: fmt.Errorf("object %d is marked free", id)}
}

// NullRef reports that object id has no cross-reference entry at all.
func NullRef(id int) error {
	return &Error{Kind: KindNullRef, Pos: -1, Err: fmt.Errorf("object %d does not exist", id)}
}

// XRefStreamType reports a cross-reference stream entry whose type field
// was found to be something other than 0, 1 or 2.
func XRefStreamType(found int64) error {
	return &Error{Kind: KindXRefStreamType, Pos: -1, Err: fmt.Errorf("unknown xref stream entry type %d", found)}
}

// MissingEntry reports that typ's dictionary lacked field, with no
// inherited value available either where inheritance applies.
func MissingEntry(typ, field string) error {
	return &Error{Kind: KindMissingEntry, Pos: -1, Err: fmt.Errorf("%s is missing required field /%s", typ, field)}
}

// KeyValueMismatch reports that key held value where found was required.
func KeyValueMismatch(key, value, found string) error {
	return &Error{Kind: KindKeyValueMismatch, Pos: -1, Err: fmt.Errorf("/%s: expected %q, found %q", key, found, value)}
}

// WrongDictionaryType reports that a dictionary's /Type or /Subtype did
// not match what the caller needed.
func WrongDictionaryType(expected, found string) error {
	return &Error{Kind: KindWrongDictionaryType, Pos: -1, Err: fmt.Errorf("expected dictionary of type %q, found %q", expected, found)}
}

// UnexpectedPrimitive reports that a primitive.Object of the wrong Go
// type was found where expected was required.
func UnexpectedPrimitive(expected, found string) error {
	return &Error{Kind: KindUnexpectedPrimitive, Pos: -1, Err: fmt.Errorf("expected %s, found %s", expected, found)}
}

// ObjStmOutOfBounds reports that index fell outside an object stream's
// declared entries, whose count is max.
func ObjStmOutOfBounds(index, max int) error {
	return &Error{Kind: KindObjStmOutOfBounds, Pos: -1, Err: fmt.Errorf("object stream index %d out of range [0,%d)", index, max)}
}

// PageOutOfBounds reports that pageNr fell outside [0, max).
func PageOutOfBounds(pageNr, max int) error {
	return &Error{Kind: KindPageOutOfBounds, Pos: -1, Err: fmt.Errorf("page index %d out of range [0,%d)", pageNr, max)}
}

// PageNotFound reports that pageNr could not be located.
func PageNotFound(pageNr int) error {
	return &Error{Kind: KindPageNotFound, Pos: -1, Err: fmt.Errorf("page %d not found", pageNr)}
}

// UnspecifiedXRefEntry reports a cross-reference entry of a type this
// library's own EntryType enum does not cover.
func UnspecifiedXRefEntry(id int) error {
	return &Error{Kind: KindUnspecifiedXRefEntry, Pos: -1, Err: fmt.Errorf("object %d has an unrecognized cross-reference entry type", id)}
}

// InvalidPassword reports that the document's security handler rejected
// the supplied password.
func InvalidPassword() error {
	return &Error{Kind: KindInvalidPassword, Pos: -1, Err: fmt.Errorf("supplied password rejected")}
}

// Other wraps a one-off condition that doesn't warrant its own Kind.
func Other(msg string) error {
	return &Error{Kind: KindOther, Pos: -1, Err: errors.New(msg)}
}

// UnexpectedLexeme reports that lexeme was found at pos where expected
// was required.
func UnexpectedLexeme(pos int64, lexeme, expected string) error {
	return &Error{Kind: KindUnexpectedLexeme, Pos: pos, Err: fmt.Errorf("found %q, expected %s", lexeme, expected)}
}
