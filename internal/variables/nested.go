package variables

import "fmt"

// mapEntry is one rendered key/value pair awaiting inclusion in an
// enclosing map literal.
type mapEntry struct {
	Key string
	Val string
}

type nestedScope struct {
	isMap      bool
	mapEntries []mapEntry
	seqItems   []string
}

// nestedSyntax supplies the language-specific rendering rules driving
// NestedEmitter: how a scalar, a nested collection, and a named
// top-level variable of each kind are spelled in the target language.
type nestedSyntax struct {
	QuoteString     func(s string) string
	NestedMapText   func(entries []mapEntry) string
	NestedSeqText   func(items []string) string
	TopScalar       func(name, quoted string) string
	TopMap          func(name string, entries []mapEntry) string
	TopSeq          func(name string, items []string) string
}

// NestedEmitter renders a structurally recursive (non-flattening)
// literal: Perl, Python, and Ruby all differ only in nestedSyntax.
type NestedEmitter struct {
	syntax nestedSyntax
	Output []string
	stack  []*nestedScope
}

func (e *NestedEmitter) OpenMap(ctx *Context, v Value) bool {
	e.stack = append(e.stack, &nestedScope{isMap: true})
	return true
}

func (e *NestedEmitter) CloseMap(ctx *Context, v Value) {
	top := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	name := fmt.Sprint(ctx.LastName())

	if len(e.stack) == 0 {
		e.Output = append(e.Output, e.syntax.TopMap(name, top.mapEntries))
		return
	}
	e.attach(name, e.syntax.NestedMapText(top.mapEntries))
}

func (e *NestedEmitter) OpenSeq(ctx *Context, v Value) bool {
	e.stack = append(e.stack, &nestedScope{isMap: false})
	return true
}

func (e *NestedEmitter) CloseSeq(ctx *Context, v Value) {
	top := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	name := fmt.Sprint(ctx.LastName())

	if len(e.stack) == 0 {
		e.Output = append(e.Output, e.syntax.TopSeq(name, top.seqItems))
		return
	}
	e.attach(name, e.syntax.NestedSeqText(top.seqItems))
}

func (e *NestedEmitter) EmitString(ctx *Context, v Value) {
	quoted := e.syntax.QuoteString(v.str)
	name := fmt.Sprint(ctx.LastName())
	if len(e.stack) == 0 {
		e.Output = append(e.Output, e.syntax.TopScalar(name, quoted))
		return
	}
	e.attach(name, quoted)
}

// attach places a just-rendered child literal into its enclosing scope:
// keyed, if the parent is a map; positionally, if the parent is a
// sequence.
func (e *NestedEmitter) attach(name, text string) {
	parent := e.stack[len(e.stack)-1]
	if parent.isMap {
		parent.mapEntries = append(parent.mapEntries, mapEntry{Key: name, Val: text})
	} else {
		parent.seqItems = append(parent.seqItems, text)
	}
}
