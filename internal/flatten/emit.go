package flatten

import (
	"sort"
	"strings"
)

// Default hoisting thresholds.
const (
	DefaultReuseThreshold = 2
	DefaultMinHoistSize   = 150
)

// EmitOptions configures the emission pass.
type EmitOptions struct {
	// ExportName names the exported root declaration.
	ExportName string
	// ReuseThreshold is the visit count a record must exceed to be hoisted.
	ReuseThreshold int
	// MinHoistSize is the type key length a record must exceed to be hoisted.
	MinHoistSize int
	// Reserved names appear verbatim in the output and cannot name a
	// declaration. DefaultPassThrough is always reserved.
	Reserved []string
}

// DefaultEmitOptions returns the default thresholds with exportName.
func DefaultEmitOptions(exportName string) EmitOptions {
	return EmitOptions{
		ExportName:     exportName,
		ReuseThreshold: DefaultReuseThreshold,
		MinHoistSize:   DefaultMinHoistSize,
	}
}

// Hoisted reports whether r becomes a standalone named declaration: cyclic
// records always do, others only when both reused and large.
func (o EmitOptions) Hoisted(r *Record) bool {
	if r.Cyclic {
		return true
	}
	return r.Visits > o.ReuseThreshold && r.OriginalLength > o.MinHoistSize
}

// Declaration is one `type Name = Body;` statement of the output.
type Declaration struct {
	Name     string
	Body     string
	Exported bool
	// Record is nil for a root that is not a visited record.
	Record *Record
}

// String renders the declaration as a single statement.
func (d Declaration) String() string {
	var sb strings.Builder
	if d.Exported {
		sb.WriteString("export ")
	}
	sb.WriteString("type ")
	sb.WriteString(d.Name)
	sb.WriteString(" = ")
	sb.WriteString(d.Body)
	sb.WriteString(";")
	return sb.String()
}

// Document is the emitted output: hoisted declarations in first-visit order,
// then the exported root.
type Document struct {
	Declarations []Declaration
	Root         Declaration
}

// String renders the document, one declaration per line.
func (d *Document) String() string {
	var sb strings.Builder
	for _, decl := range d.Declarations {
		sb.WriteString(decl.String())
		sb.WriteString("\n\n")
	}
	sb.WriteString(d.Root.String())
	sb.WriteString("\n")
	return sb.String()
}

// Emit resolves every reference in root against table and produces the
// output document. Only hoisted records reachable from root are declared.
func Emit(root Expr, table *VisitTable, opts EmitOptions) *Document {
	if opts.ExportName == "" {
		opts.ExportName = "AppRouter"
	}
	e := &emitter{
		opts:     opts,
		inline:   make(map[*Record]string),
		declared: make(map[*Record]bool),
	}

	// The root record is named after the export so self references resolve
	// to the exported declaration instead of a duplicate alias.
	rootRec, isRef := root.Ref()
	if isRef {
		e.root = rootRec
		rootRec.name = opts.ExportName
	}
	e.assignNames(table)

	doc := &Document{
		Root: Declaration{Name: opts.ExportName, Exported: true, Record: e.root},
	}
	if e.root != nil {
		doc.Root.Body = e.body(e.root)
	} else {
		doc.Root.Body = e.render(root)
	}

	// Rendering a declaration can reach further hoisted records.
	for len(e.queue) > 0 {
		r := e.queue[0]
		e.queue = e.queue[1:]
		doc.Declarations = append(doc.Declarations, Declaration{
			Name:   r.name,
			Body:   e.body(r),
			Record: r,
		})
	}
	sort.SliceStable(doc.Declarations, func(i, j int) bool {
		return doc.Declarations[i].Record.ID < doc.Declarations[j].Record.ID
	})
	return doc
}

type emitter struct {
	opts     EmitOptions
	root     *Record
	inline   map[*Record]string
	declared map[*Record]bool
	queue    []*Record
}

// assignNames names every hoisted record up front, in first-visit order, so
// names do not depend on traversal order.
func (e *emitter) assignNames(table *VisitTable) {
	used := map[string]bool{e.opts.ExportName: true}
	for _, name := range DefaultPassThrough {
		used[name] = true
	}
	for _, name := range e.opts.Reserved {
		used[name] = true
	}
	for _, r := range table.Records() {
		if r == e.root {
			continue
		}
		r.name = ""
		if !e.opts.Hoisted(r) {
			continue
		}
		r.name = declName(r.Hint, r.ID, used)
		used[r.name] = true
	}
}

func (e *emitter) render(x Expr) string {
	var sb strings.Builder
	for _, p := range x.Parts {
		if p.Ref == nil {
			sb.WriteString(p.Text)
			continue
		}
		sb.WriteString(e.ref(p.Ref, p.Ctx))
	}
	return sb.String()
}

// ref renders one reference site: a bare name for hoisted records and the
// root, the inlined body otherwise.
func (e *emitter) ref(r *Record, ctx Prec) string {
	if r == e.root {
		return r.name
	}
	if e.opts.Hoisted(r) {
		if !e.declared[r] {
			e.declared[r] = true
			e.queue = append(e.queue, r)
		}
		return r.name
	}
	if r.Body != nil {
		// Aliases and single-member unions forward to another record; the
		// site's context applies to that record.
		if inner, ok := r.Body.Ref(); ok {
			return e.ref(inner, ctx)
		}
	}
	s := e.body(r)
	if r.Body != nil && r.Body.Prec < ctx {
		return "(" + s + ")"
	}
	return s
}

// body renders r's body once. Inlining terminates because every cycle in the
// reference graph runs through a cyclic record, which ref never inlines.
func (e *emitter) body(r *Record) string {
	if s, ok := e.inline[r]; ok {
		return s
	}
	if r.Body == nil {
		return r.Key
	}
	s := e.render(*r.Body)
	e.inline[r] = s
	return s
}
