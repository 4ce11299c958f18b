// Package variables implements the wrapper variable encoder: a generic
// walk over a (string | ordered map | sequence) value tree, driven by a
// 5-operation emitter interface, with one emitter per supported wrapper
// language.
package variables

import (
	"fmt"
	"strings"
)

// Kind tags which alternative of the Value union is populated.
type Kind int

const (
	KindString Kind = iota
	KindMap
	KindSeq
)

// Value is the tagged-union tree node the encoder walks: a string, an
// ordered map, or a sequence.
type Value struct {
	kind Kind
	str  string
	m    *OrderedMap
	seq  []Value
}

// String constructs a scalar Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// MapValue constructs a map Value.
func MapValue(m *OrderedMap) Value { return Value{kind: KindMap, m: m} }

// SeqValue constructs a sequence Value.
func SeqValue(items []Value) Value { return Value{kind: KindSeq, seq: items} }

// Kind reports which alternative this Value holds.
func (v Value) Kind() Kind { return v.kind }

// StringValue returns the scalar payload; valid only when Kind() ==
// KindString.
func (v Value) StringValue() string { return v.str }

// Map returns the map payload; valid only when Kind() == KindMap.
func (v Value) Map() *OrderedMap { return v.m }

// Seq returns the sequence payload; valid only when Kind() == KindSeq.
func (v Value) Seq() []Value { return v.seq }

// OrderedMap is an insertion-ordered string-keyed map.
type OrderedMap struct {
	keys []string
	vals map[string]Value
}

// NewOrderedMap returns an empty ordered map.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{vals: map[string]Value{}}
}

// Set inserts or overwrites key, preserving the key's original insertion
// position on overwrite.
func (m *OrderedMap) Set(key string, v Value) {
	if _, exists := m.vals[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

// Get returns the value stored at key, if any.
func (m *OrderedMap) Get(key string) (Value, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Keys returns the map's keys in insertion order.
func (m *OrderedMap) Keys() []string { return m.keys }

// Len returns the number of entries.
func (m *OrderedMap) Len() int { return len(m.keys) }

// Context carries the walker's current path as a stack of names: a
// string for a map entry, an int for a sequence index.
type Context struct {
	names []any
}

func (c *Context) push(name any) { c.names = append(c.names, name) }
func (c *Context) pop()          { c.names = c.names[:len(c.names)-1] }

// Names returns the full current path, outermost first.
func (c *Context) Names() []any { return c.names }

// LastName returns the innermost (most recently pushed) path element.
func (c *Context) LastName() any { return c.names[len(c.names)-1] }

// IsFirstLevel reports whether the walk is currently at a top-level
// named variable, with no enclosing map or sequence.
func (c *Context) IsFirstLevel() bool { return len(c.names) == 1 }

// PathString renders the current path joined by sep, using fmt's default
// formatting for sequence indices.
func (c *Context) PathString(sep string) string {
	parts := make([]string, len(c.names))
	for i, n := range c.names {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, sep)
}

// Emitter is the 5-operation visitor interface driven by Walk. OpenMap
// and OpenSeq return whether the walker should descend into the
// collection: returning false means the emitter has captured the whole
// subtree itself (FlattenedEmitter does this for sequences); returning
// true lets the walker recurse.
type Emitter interface {
	OpenMap(ctx *Context, v Value) bool
	CloseMap(ctx *Context, v Value)
	OpenSeq(ctx *Context, v Value) bool
	CloseSeq(ctx *Context, v Value)
	EmitString(ctx *Context, v Value)
}

// Walk encodes one named top-level value through e.
func Walk(name string, v Value, e Emitter) {
	ctx := &Context{}
	walk(ctx, name, v, e)
}

// Generate encodes every entry of root, in insertion order, through e —
// the entry point corresponding to generateWrapperVariables.
func Generate(root *OrderedMap, e Emitter) {
	for _, name := range root.Keys() {
		v, _ := root.Get(name)
		Walk(name, v, e)
	}
}

func walk(ctx *Context, name any, v Value, e Emitter) {
	ctx.push(name)
	defer ctx.pop()

	switch v.kind {
	case KindString:
		e.EmitString(ctx, v)
	case KindMap:
		descend := e.OpenMap(ctx, v)
		if descend {
			for _, k := range v.m.Keys() {
				child, _ := v.m.Get(k)
				walk(ctx, k, child, e)
			}
		}
		e.CloseMap(ctx, v)
	case KindSeq:
		descend := e.OpenSeq(ctx, v)
		if descend {
			for i, item := range v.seq {
				walk(ctx, i, item, e)
			}
		}
		e.CloseSeq(ctx, v)
	}
}
