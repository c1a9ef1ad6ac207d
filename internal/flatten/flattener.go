// Package flatten turns a type-checker's type graph into self-contained
// TypeScript type text.
//
// Flattener walks the graph once, memoizing every distinct type key in a
// VisitTable and producing Exprs whose references point at table records.
// Emit then decides per record whether to inline its body or hoist it into a
// named declaration, and renders the final document.
package flatten

import (
	"slices"
	"strconv"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/tsgonest/tsflatten/internal/logger"
	"github.com/tsgonest/tsflatten/internal/metadata"
)

// Graph is the view of a type graph the flattener needs.
type Graph[N any] interface {
	// Key renders n canonically. Structurally identical types must render
	// identically for memoization to work.
	Key(n N) string
	// Classify returns the structural form of n with its sub-nodes.
	Classify(n N) metadata.Shape[N]
}

// Namer is implemented by graphs that can suggest readable names for nodes
// (alias or interface names). Hoisted declarations use the suggestion.
type Namer[N any] interface {
	NameHint(n N) string
}

// Flattener converts type-graph nodes into Exprs. It is single-use: one
// Flattener, one VisitTable, one run.
type Flattener[N any] struct {
	graph       Graph[N]
	namer       Namer[N]
	opts        Options
	table       *VisitTable
	passThrough map[string]struct{}
	erased      int
}

// New creates a Flattener over g.
func New[N any](g Graph[N], opts Options) *Flattener[N] {
	if opts.ErasedType == "" {
		opts.ErasedType = "any"
	}
	if opts.Cycles == "" {
		opts.Cycles = CycleReference
	}
	pass := make(map[string]struct{}, len(DefaultPassThrough)+len(opts.PassThrough))
	for _, k := range DefaultPassThrough {
		pass[k] = struct{}{}
	}
	for _, k := range opts.PassThrough {
		pass[k] = struct{}{}
	}
	f := &Flattener[N]{
		graph:       g,
		opts:        opts,
		table:       NewVisitTable(),
		passThrough: pass,
	}
	if namer, ok := g.(Namer[N]); ok {
		f.namer = namer
	}
	return f
}

// Table returns the run's visit table.
func (f *Flattener[N]) Table() *VisitTable {
	return f.table
}

// Erased returns how many type references were erased by rules.
func (f *Flattener[N]) Erased() int {
	return f.erased
}

// Verbatim returns the type names the run emits as written: pass-through
// keys, the erased type and rule replacements. Emit must not declare them.
func (f *Flattener[N]) Verbatim() []string {
	names := make([]string, 0, len(f.passThrough)+len(f.opts.Erase)+1)
	for k := range f.passThrough {
		names = append(names, k)
	}
	names = append(names, f.opts.ErasedType)
	for _, r := range f.opts.Erase {
		if r.Replacement != "" {
			names = append(names, r.Replacement)
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Flatten returns the flattened form of n: verbatim text for pass-through
// and erased types, otherwise a reference to n's record.
func (f *Flattener[N]) Flatten(n N) Expr {
	key := f.graph.Key(n)

	if _, ok := f.passThrough[key]; ok {
		return atom(key)
	}
	if repl, ok := f.eraseRule(key); ok {
		f.erased++
		logger.Logger.Debugw("erased type", "key", truncate(key), "as", repl)
		return Text(repl)
	}

	if rec, ok := f.table.Lookup(key); ok {
		rec.Visits++
		if !rec.Done() {
			if !rec.Cyclic {
				logger.Logger.Debugw("cyclic type", "key", truncate(key), "placeholder", rec.Placeholder, "mode", f.opts.Cycles)
			}
			rec.Cyclic = true
			if f.opts.Cycles == CycleErase {
				return Text(f.opts.ErasedType)
			}
		}
		return refTo(rec)
	}

	var hint string
	if f.namer != nil {
		hint = f.namer.NameHint(n)
	}
	rec := f.table.Reserve(key, hint)
	rec.setBody(f.expand(n, key))
	return refTo(rec)
}

func (f *Flattener[N]) eraseRule(key string) (string, bool) {
	for _, r := range f.opts.Erase {
		if r.Matches(key) {
			if r.Replacement != "" {
				return r.Replacement, true
			}
			return f.opts.ErasedType, true
		}
	}
	return "", false
}

// expand computes the body of a freshly reserved record.
func (f *Flattener[N]) expand(n N, key string) Expr {
	shape := f.graph.Classify(n)

	switch shape.Kind {
	case metadata.KindKeyed:
		if len(shape.Args) < 2 {
			return Text(key)
		}
		var b builder
		b.text(shape.Name + "<")
		b.embed(f.Flatten(shape.Args[0]), PrecFunction)
		b.text(", ")
		b.embed(f.Flatten(shape.Args[1]), PrecFunction)
		b.text(">")
		return b.expr(PrecAtom)

	case metadata.KindDeferred:
		if len(shape.Args) < 1 {
			return Text(key)
		}
		var b builder
		b.text(shape.Name + "<")
		b.embed(f.Flatten(shape.Args[0]), PrecFunction)
		b.text(">")
		return b.expr(PrecAtom)

	case metadata.KindUnion:
		return f.join(shape.Extra, shape.Members, " | ", PrecUnion, "never")

	case metadata.KindIntersection:
		return f.join(shape.Extra, shape.Members, " & ", PrecIntersection, "unknown")

	case metadata.KindTuple:
		return f.tuple(shape.Elements)

	case metadata.KindArray:
		var b builder
		b.text("Array<")
		b.embed(f.Flatten(shape.Element), PrecFunction)
		b.text(">")
		return b.expr(PrecAtom)

	case metadata.KindFunction:
		if len(shape.Signatures) == 0 {
			return Text(key)
		}
		return f.function(shape.Signatures)

	case metadata.KindDictionary:
		var b builder
		b.text("{ [key: string]: ")
		b.embed(f.Flatten(shape.Element), PrecFunction)
		b.text(" }")
		return b.expr(PrecAtom)

	case metadata.KindObject:
		obj := f.object(shape.Properties, shape.Index)
		if len(shape.Signatures) == 0 {
			return obj
		}
		var b builder
		b.embed(f.function(shape.Signatures), PrecIntersection)
		b.text(" & ")
		b.embed(obj, PrecIntersection)
		return b.expr(PrecIntersection)

	case metadata.KindLiteral:
		return atom(shape.Literal)

	case metadata.KindAlias:
		return f.Flatten(shape.Target)
	}

	return Text(key)
}

// join flattens members and joins the non-empty results with sep. A single
// survivor is returned as is; none yields empty.
func (f *Flattener[N]) join(extra []string, members []N, sep string, prec Prec, empty string) Expr {
	parts := make([]Expr, 0, len(extra)+len(members))
	for _, s := range extra {
		parts = append(parts, Text(s))
	}
	for _, m := range members {
		e := f.Flatten(m)
		if renderedEmpty(e) {
			continue
		}
		parts = append(parts, e)
	}

	switch len(parts) {
	case 0:
		return atom(empty)
	case 1:
		return parts[0]
	}

	var b builder
	for i, e := range parts {
		if i > 0 {
			b.text(sep)
		}
		b.embed(e, prec)
	}
	return b.expr(prec)
}

func (f *Flattener[N]) tuple(elems []metadata.TupleElement[N]) Expr {
	var b builder
	b.text("[")
	for i, el := range elems {
		if i > 0 {
			b.text(", ")
		}
		e := f.Flatten(el.Type)
		switch {
		case el.Rest:
			b.text("...Array<")
			b.embed(e, PrecFunction)
			b.text(">")
		case el.Variadic:
			b.text("...")
			b.embed(e, PrecAtom)
		case el.Optional:
			b.embed(e, PrecAtom)
			b.text("?")
		default:
			b.embed(e, PrecFunction)
		}
	}
	b.text("]")
	return b.expr(PrecAtom)
}

func (f *Flattener[N]) function(sigs []metadata.Signature[N]) Expr {
	exprs := make([]Expr, 0, len(sigs))
	for _, sig := range sigs {
		var b builder
		b.text("(")
		for i, p := range sig.Params {
			if i > 0 {
				b.text(", ")
			}
			if p.Rest {
				b.text("...")
			}
			b.text(p.Name)
			if p.Optional && !p.Rest {
				b.text("?")
			}
			b.text(": ")
			b.embed(f.Flatten(p.Type), PrecFunction)
		}
		b.text(") => ")
		b.embed(f.Flatten(sig.Return), PrecFunction)
		exprs = append(exprs, b.expr(PrecFunction))
	}

	if len(exprs) == 1 {
		return exprs[0]
	}
	var b builder
	for i, e := range exprs {
		if i > 0 {
			b.text(" & ")
		}
		b.embed(e, PrecIntersection)
	}
	return b.expr(PrecIntersection)
}

func (f *Flattener[N]) object(props []metadata.Property[N], index *N) Expr {
	if len(props) == 0 && index == nil {
		return atom("{}")
	}
	var b builder
	b.text("{ ")
	for i, p := range props {
		if i > 0 {
			b.text("; ")
		}
		b.text(quoteName(p.Name))
		if p.Optional {
			b.text("?")
		}
		b.text(": ")
		b.embed(f.Flatten(p.Type), PrecFunction)
	}
	if index != nil {
		if len(props) > 0 {
			b.text("; ")
		}
		b.text("[key: string]: ")
		b.embed(f.Flatten(*index), PrecFunction)
	}
	b.text(" }")
	return b.expr(PrecAtom)
}

// renderedEmpty reports whether e renders to nothing, looking through a bare
// reference to an already expanded record.
func renderedEmpty(e Expr) bool {
	if r, ok := e.Ref(); ok {
		return r.Done() && r.Body.IsEmpty()
	}
	return e.IsEmpty()
}

// quoteName renders a property name as a double-quoted string literal.
func quoteName(name string) string {
	b, err := jsontext.AppendQuote(nil, name)
	if err != nil {
		return strconv.Quote(name)
	}
	return string(b)
}

func truncate(key string) string {
	const limit = 120
	if len(key) <= limit {
		return key
	}
	return key[:limit] + "..."
}
