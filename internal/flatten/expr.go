package flatten

import (
	"strings"
)

// Prec is the binding strength of a rendered type expression. An expression
// embedded where a stronger binding is required gets parenthesized.
type Prec int

const (
	PrecFunction     Prec = iota // (a: A) => R, and raw text that may bind loosely
	PrecUnion                    // A | B
	PrecIntersection             // A & B
	PrecAtom                     // names, literals, Array<T>, { ... }, [ ... ]
)

// Part is one segment of an Expr: literal text or a reference to a visited
// record whose rendering is decided by the emission pass.
type Part struct {
	Text string
	Ref  *Record
	// Ctx is the minimum precedence the referenced record's body needs at
	// this site when it is inlined.
	Ctx Prec
}

// Expr is the intermediate flattened form of a type: text interleaved with
// record references, tagged with its top-level precedence.
type Expr struct {
	Prec  Prec
	Parts []Part
}

// Text returns a text-only expression. Its precedence is derived from the
// text so raw checker output such as conditional types stays parenthesized.
func Text(s string) Expr {
	if s == "" {
		return Expr{Prec: PrecAtom}
	}
	return Expr{Prec: textPrec(s), Parts: []Part{{Text: s}}}
}

func atom(s string) Expr {
	return Expr{Prec: PrecAtom, Parts: []Part{{Text: s}}}
}

func refTo(r *Record) Expr {
	return Expr{Prec: PrecAtom, Parts: []Part{{Ref: r}}}
}

// Ref returns the record when the expression is a single reference.
func (e Expr) Ref() (*Record, bool) {
	if len(e.Parts) == 1 && e.Parts[0].Ref != nil {
		return e.Parts[0].Ref, true
	}
	return nil, false
}

// IsEmpty reports whether the expression renders to nothing.
func (e Expr) IsEmpty() bool {
	for _, p := range e.Parts {
		if p.Ref != nil || p.Text != "" {
			return false
		}
	}
	return true
}

// String renders the expression with references shown as placeholders.
// Debug output only; the emission pass renders real text.
func (e Expr) String() string {
	var sb strings.Builder
	for _, p := range e.Parts {
		if p.Ref != nil {
			sb.WriteString(p.Ref.Placeholder)
			continue
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// builder assembles an Expr from text and embedded sub-expressions.
type builder struct {
	parts []Part
}

func (b *builder) text(s string) {
	if s == "" {
		return
	}
	if n := len(b.parts); n > 0 && b.parts[n-1].Ref == nil {
		b.parts[n-1].Text += s
		return
	}
	b.parts = append(b.parts, Part{Text: s})
}

// embed appends sub at a site requiring at least ctx precedence. A bare
// reference defers the parenthesization decision to emission.
func (b *builder) embed(sub Expr, ctx Prec) {
	if r, ok := sub.Ref(); ok {
		b.parts = append(b.parts, Part{Ref: r, Ctx: ctx})
		return
	}
	wrap := sub.Prec < ctx
	if wrap {
		b.text("(")
	}
	for _, p := range sub.Parts {
		if p.Ref != nil {
			b.parts = append(b.parts, p)
			continue
		}
		b.text(p.Text)
	}
	if wrap {
		b.text(")")
	}
}

func (b *builder) expr(prec Prec) Expr {
	return Expr{Prec: prec, Parts: b.parts}
}

// textPrec classifies raw type text: anything with a space, quote or
// parenthesis at bracket depth zero may bind loosely.
func textPrec(s string) Prec {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			if depth == 0 && i != 0 {
				return PrecFunction
			}
			quote = c
		case '<', '[', '{':
			depth++
		case '>', ']', '}':
			depth--
		case '(':
			if depth == 0 && i == 0 {
				return PrecFunction
			}
			depth++
		case ')':
			depth--
		case ' ', '|', '&', '?':
			if depth == 0 {
				return PrecFunction
			}
		}
	}
	return PrecAtom
}
