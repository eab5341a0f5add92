package pdf

import (
	"fmt"

	"github.com/corvid-labs/pdfread/object"
	"github.com/corvid-labs/pdfread/primitive"
)

// FileSpec is a file specification dictionary, either a bare external
// reference or one carrying an embedded file stream under /EF.
type FileSpec struct {
	FileName string
	Embedded *EmbeddedFileStream // nil unless /EF/F is present
}

func (fs *FileSpec) FromPrimitive(o primitive.Object, ctx *object.Context) error {
	d, ok := primitive.AsDict(o)
	if !ok {
		return fmt.Errorf("pdf: file specification is not a dictionary")
	}
	name := d.GetDefault("UF", nil)
	if name == nil {
		name = d.GetDefault("F", nil)
	}
	if name != nil {
		resolved, err := ctx.Resolve(name)
		if err != nil {
			return err
		}
		if b, ok := primitive.AsString(resolved); ok {
			fs.FileName = string(b)
		}
	}

	v, ok := d.Get("EF")
	if !ok {
		return nil
	}
	resolved, err := ctx.Resolve(v)
	if err != nil {
		return err
	}
	efDict, ok := primitive.AsDict(resolved)
	if !ok {
		return nil
	}
	streamVal, ok := efDict.Get("F")
	if !ok {
		return nil
	}
	if ref, ok := primitive.AsReference(streamVal); ok {
		fs.Embedded, err = object.Deref[EmbeddedFileStream](ctx, ref)
		return err
	}
	streamResolved, err := ctx.Resolve(streamVal)
	if err != nil {
		return err
	}
	fs.Embedded, err = object.DecodeInPlace[EmbeddedFileStream](ctx, streamResolved)
	return err
}

// EmbeddedFileStream is a /Type /EmbeddedFile stream, reachable from a
// FileSpec's /EF entry.
type EmbeddedFileStream struct {
	Stream primitive.Stream
	Size   int
}

func (e *EmbeddedFileStream) FromPrimitive(o primitive.Object, ctx *object.Context) error {
	s, ok := primitive.AsStream(o)
	if !ok {
		return fmt.Errorf("pdf: embedded file is not a stream")
	}
	e.Stream = s
	if v, ok := s.Dict.Get("Params"); ok {
		resolved, err := ctx.Resolve(v)
		if err == nil {
			if paramsDict, ok := primitive.AsDict(resolved); ok {
				if sv, ok := paramsDict.Get("Size"); ok {
					e.Size, _ = primitive.AsInt(sv)
				}
			}
		}
	}
	return nil
}
