package variables

import "strings"

// FlatEntry is one resolved assignment produced by FlattenedEmitter:
// Path is the dotted/joined variable name, Value is its rendered
// (space-joined, for sequences) payload.
type FlatEntry struct {
	Path  string
	Value string
}

// FlattenedEmitter captures the whole value tree as a flat list of
// path/value pairs, grounded on WrapperVariableFlattener.java: a map
// node additionally produces a "<path><KeysSuffix>" entry listing its
// keys, and a sequence is captured whole (never descended into).
type FlattenedEmitter struct {
	Sep        string
	KeysSuffix string
	Entries    []FlatEntry
}

func (f *FlattenedEmitter) OpenMap(ctx *Context, v Value) bool {
	path := ctx.PathString(f.Sep)
	f.Entries = append(f.Entries, FlatEntry{Path: path + f.KeysSuffix, Value: strings.Join(v.m.Keys(), " ")})
	return true
}

func (f *FlattenedEmitter) CloseMap(ctx *Context, v Value) {}

func (f *FlattenedEmitter) OpenSeq(ctx *Context, v Value) bool {
	path := ctx.PathString(f.Sep)
	parts := make([]string, len(v.seq))
	for i, item := range v.seq {
		parts[i] = item.str
	}
	f.Entries = append(f.Entries, FlatEntry{Path: path, Value: strings.Join(parts, " ")})
	return false
}

func (f *FlattenedEmitter) CloseSeq(ctx *Context, v Value) {}

func (f *FlattenedEmitter) EmitString(ctx *Context, v Value) {
	f.Entries = append(f.Entries, FlatEntry{Path: ctx.PathString(f.Sep), Value: v.str})
}
