package primitive

import "strings"

// Dict is a PDF dictionary object. Unlike a plain Go map, it preserves the
// key order seen in the source file: some producers rely on dictionary
// order for round-tripping, and §3's data model requires it be kept even
// though lookups are the common operation.
type Dict struct {
	keys   []Name
	values map[Name]Object
}

// NewDict returns an empty, ready-to-use Dict.
func NewDict() Dict {
	return Dict{values: map[Name]Object{}}
}

// Set inserts or overwrites the value for key, appending key to the
// iteration order only the first time it is seen.
func (d *Dict) Set(key Name, value Object) {
	if d.values == nil {
		d.values = map[Name]Object{}
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Get returns the value stored under key, or (nil, false) if absent.
func (d Dict) Get(key Name) (Object, bool) {
	v, ok := d.values[key]
	return v, ok
}

// GetDefault returns the value under key, or fallback if key is absent.
func (d Dict) GetDefault(key Name, fallback Object) Object {
	if v, ok := d.values[key]; ok {
		return v
	}
	return fallback
}

// Len returns the number of entries.
func (d Dict) Len() int { return len(d.keys) }

// Keys returns the dictionary's keys in insertion order. The returned
// slice must not be mutated by the caller.
func (d Dict) Keys() []Name { return d.keys }

// Range calls f for every key/value pair in insertion order.
func (d Dict) Range(f func(key Name, value Object)) {
	for _, k := range d.keys {
		f(k, d.values[k])
	}
}

func (d Dict) String() string {
	var b strings.Builder
	b.WriteString("<<")
	for i, k := range d.keys {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(k.String())
		b.WriteString(" ")
		b.WriteString(d.values[k].String())
	}
	b.WriteString(">>")
	return b.String()
}

// TypeIs reports whether the dictionary's /Type entry equals name. A
// missing /Type entry is not an error: many PDF dictionaries omit it when
// context makes the type unambiguous, per §4.8's dispatch rule.
func (d Dict) TypeIs(name Name) bool {
	v, ok := d.Get("Type")
	if !ok {
		return false
	}
	n, ok := v.(Name)
	return ok && n == name
}
