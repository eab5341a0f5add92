package pdf

import (
	"time"

	"github.com/corvid-labs/pdfread/object"
	"github.com/corvid-labs/pdfread/primitive"
)

// Info is the document information dictionary a trailer's /Info entry
// points to.
type Info struct {
	Title, Author, Subject, Keywords, Creator, Producer string

	CreationDate    time.Time
	HasCreationDate bool
	ModDate         time.Time
	HasModDate      bool
}

func (i *Info) FromPrimitive(o primitive.Object, ctx *object.Context) error {
	d, ok := primitive.AsDict(o)
	if !ok {
		// Some producers leave /Info pointing at a missing object, which
		// resolves to null; treat it as an empty document info rather
		// than failing. (A reference to an entry marked free fails in
		// the resolver with a FreeObject error before reaching here.)
		return nil
	}
	str := func(key primitive.Name) string {
		v, ok := d.Get(key)
		if !ok {
			return ""
		}
		resolved, err := ctx.Resolve(v)
		if err != nil {
			return ""
		}
		b, ok := primitive.AsString(resolved)
		if !ok {
			return ""
		}
		return string(b)
	}
	i.Title = str("Title")
	i.Author = str("Author")
	i.Subject = str("Subject")
	i.Keywords = str("Keywords")
	i.Creator = str("Creator")
	i.Producer = str("Producer")

	if t, ok := parseDateField(d, ctx, "CreationDate"); ok {
		i.CreationDate, i.HasCreationDate = t, true
	}
	if t, ok := parseDateField(d, ctx, "ModDate"); ok {
		i.ModDate, i.HasModDate = t, true
	}
	return nil
}

func parseDateField(d primitive.Dict, ctx *object.Context, key primitive.Name) (time.Time, bool) {
	v, ok := d.Get(key)
	if !ok {
		return time.Time{}, false
	}
	resolved, err := ctx.Resolve(v)
	if err != nil {
		return time.Time{}, false
	}
	b, ok := primitive.AsString(resolved)
	if !ok {
		return time.Time{}, false
	}
	return ParseDate(string(b))
}
