package format

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microsoft/typescript-go/shim/ast"
	shimscanner "github.com/microsoft/typescript-go/shim/scanner"
	"github.com/tsgonest/tsflatten/internal/errors"
)

// Builtin lays out type declarations without an external process. It
// tokenizes with the TypeScript scanner, groups tokens by bracket and prints
// each group flat when it fits in PrintWidth, otherwise one member per line.
type Builtin struct {
	opts Options
}

// NewBuiltin returns the in-process formatter.
func NewBuiltin(opts Options) *Builtin {
	def := DefaultOptions()
	if opts.TabWidth <= 0 {
		opts.TabWidth = def.TabWidth
	}
	if opts.PrintWidth <= 0 {
		opts.PrintWidth = def.PrintWidth
	}
	if opts.TrailingComma == "" {
		opts.TrailingComma = def.TrailingComma
	}
	return &Builtin{opts: opts}
}

func (f *Builtin) Format(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	toks, err := tokenize(src)
	if err != nil {
		return "", err
	}
	stmts, err := parseStatements(toks)
	if err != nil {
		return "", err
	}
	if len(stmts) == 0 {
		return "", nil
	}

	p := &printer{opts: f.opts}
	for i, stmt := range stmts {
		if i > 0 {
			p.write("\n\n")
		}
		p.seq(stmt, 0, 1)
		p.write(";")
	}
	p.write("\n")
	return applyEndOfLine(p.b.String(), f.opts.EndOfLine), nil
}

type token struct {
	kind ast.Kind
	text string
}

func tokenize(src string) ([]token, error) {
	s := shimscanner.NewScanner()
	s.SetText(src)

	var toks []token
	for {
		switch kind := s.Scan(); kind {
		case ast.KindEndOfFile:
			return toks, nil
		case ast.KindWhitespaceTrivia, ast.KindNewLineTrivia,
			ast.KindSingleLineCommentTrivia, ast.KindMultiLineCommentTrivia:
		case ast.KindTemplateHead, ast.KindNoSubstitutionTemplateLiteral:
			return nil, errors.Newf("template literal types are not supported (token %d)", len(toks))
		case ast.KindUnknown:
			return nil, errors.Newf("unexpected character %q", s.TokenText())
		case ast.KindStringLiteral:
			toks = append(toks, token{kind: kind, text: s.TokenValue()})
		default:
			toks = append(toks, token{kind: kind, text: s.TokenText()})
		}
	}
}

var closers = map[string]string{"{": "}", "[": "]", "(": ")", "<": ">"}

func isCloser(text string) bool {
	switch text {
	case "}", "]", ")", ">":
		return true
	}
	return false
}

// node is either an atom (tok set) or a bracket group whose items are the
// runs between separators.
type node struct {
	tok *token

	open, close string
	items       [][]*node
	sep         string
	params      bool

	flat    string
	hasFlat bool
}

func (n *node) isAtom(text string) bool {
	return n.tok != nil && n.tok.kind != ast.KindStringLiteral && n.tok.text == text
}

type parser struct {
	toks []token
	pos  int
}

func parseStatements(toks []token) ([][]*node, error) {
	p := &parser{toks: toks}
	var stmts [][]*node
	var cur []*node
	for p.pos < len(p.toks) {
		t := p.toks[p.pos]
		p.pos++
		if t.kind != ast.KindStringLiteral {
			switch {
			case t.text == ";":
				if len(cur) > 0 {
					stmts = append(stmts, cur)
				}
				cur = nil
				continue
			case closers[t.text] != "":
				g, err := p.group(t.text)
				if err != nil {
					return nil, err
				}
				cur = append(cur, g)
				continue
			case isCloser(t.text):
				return nil, errors.Newf("unbalanced %q", t.text)
			}
		}
		cur = append(cur, &node{tok: &t})
	}
	if len(cur) > 0 {
		stmts = append(stmts, cur)
	}
	for _, stmt := range stmts {
		finish(stmt)
	}
	return stmts, nil
}

func (p *parser) group(open string) (*node, error) {
	g := &node{open: open, close: closers[open]}
	var cur []*node
	for p.pos < len(p.toks) {
		t := p.toks[p.pos]
		p.pos++
		if t.kind != ast.KindStringLiteral {
			switch {
			case t.text == g.close:
				if len(cur) > 0 {
					g.items = append(g.items, cur)
				}
				return g, nil
			case t.text == ";" || t.text == ",":
				if g.sep == "" {
					g.sep = t.text
				}
				if len(cur) > 0 {
					g.items = append(g.items, cur)
				}
				cur = nil
				continue
			case closers[t.text] != "":
				child, err := p.group(t.text)
				if err != nil {
					return nil, err
				}
				cur = append(cur, child)
				continue
			case isCloser(t.text):
				return nil, errors.Newf("unbalanced %q inside %q", t.text, open)
			}
		}
		cur = append(cur, &node{tok: &t})
	}
	return nil, errors.Newf("unterminated %q", open)
}

// finish picks a separator for groups that had none and marks parameter
// lists.
func finish(seq []*node) {
	for i, n := range seq {
		if n.tok != nil {
			continue
		}
		if n.open == "(" && i+1 < len(seq) && seq[i+1].isAtom("=>") {
			n.params = true
		}
		if n.sep == "" {
			switch n.open {
			case "{":
				n.sep = ";"
			case "[", "<":
				n.sep = ","
			case "(":
				if n.params {
					n.sep = ","
				}
			}
		}
		for _, item := range n.items {
			finish(item)
		}
	}
}

var typeKeywords = map[string]bool{
	"abstract": true, "as": true, "asserts": true, "const": true, "declare": true,
	"export": true, "extends": true, "in": true, "infer": true, "is": true,
	"keyof": true, "new": true, "out": true, "readonly": true, "type": true,
	"typeof": true, "unique": true,
}

func isWord(n *node) bool {
	if n.tok == nil || n.tok.kind == ast.KindStringLiteral || n.tok.text == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(n.tok.text)
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

// isName reports a word that is not a type operator keyword.
func isName(n *node) bool {
	return isWord(n) && !typeKeywords[n.tok.text]
}

func isLiteral(n *node) bool {
	return n.tok != nil && (n.tok.kind == ast.KindStringLiteral || n.tok.kind == ast.KindNumericLiteral)
}

// spacing reports, for each node of seq, whether a space precedes it.
func spacing(seq []*node) []bool {
	out := make([]bool, len(seq))
	conditional := make([]bool, len(seq))
	open := 0
	for i, n := range seq {
		switch {
		case n.isAtom("?"):
			optional := i+1 == len(seq) || seq[i+1].isAtom(":")
			if !optional {
				conditional[i] = true
				open++
			}
		case n.isAtom(":") && open > 0:
			conditional[i] = true
			open--
		}
	}

	for i := 1; i < len(seq); i++ {
		out[i] = spaceBetween(seq[i-1], seq[i], conditional[i])
	}
	return out
}

func spaceBetween(prev, next *node, conditional bool) bool {
	switch {
	case next.isAtom(":"), next.isAtom("?"):
		return conditional
	case next.isAtom("."), prev.isAtom("."), prev.isAtom("..."):
		return false
	case prev.isAtom("-"), prev.isAtom("+"):
		return false
	}
	if next.tok != nil {
		return true
	}
	switch next.open {
	case "<":
		return !isName(prev)
	case "[":
		return !(prev.tok == nil || isName(prev) || isLiteral(prev))
	case "(":
		if prev.tok == nil {
			return prev.open != "<"
		}
		return !(isName(prev) || prev.tok.kind == ast.KindStringLiteral)
	}
	return true
}

type printer struct {
	opts Options
	b    strings.Builder
	col  int
}

func width(s string) int {
	return utf8.RuneCountInString(s)
}

func (p *printer) write(s string) {
	p.b.WriteString(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		p.col = width(s[i+1:])
	} else {
		p.col += width(s)
	}
}

func (p *printer) atom(n *node) string {
	if n.tok.kind == ast.KindStringLiteral {
		return quoteString(n.tok.text, p.opts.SingleQuote)
	}
	return n.tok.text
}

func (p *printer) flatSeq(seq []*node) string {
	var sb strings.Builder
	for i, sp := range spacing(seq) {
		if sp {
			sb.WriteByte(' ')
		}
		sb.WriteString(p.flatNode(seq[i]))
	}
	return sb.String()
}

func (p *printer) flatNode(n *node) string {
	if n.tok != nil {
		return p.atom(n)
	}
	if n.hasFlat {
		return n.flat
	}
	parts := make([]string, len(n.items))
	for i, item := range n.items {
		parts[i] = p.flatSeq(item)
	}
	inner := strings.Join(parts, n.sep+" ")
	switch {
	case n.open == "{" && inner == "":
		n.flat = "{}"
	case n.open == "{" && p.opts.BracketSpacing:
		n.flat = "{ " + inner + " }"
	default:
		n.flat = n.open + inner + n.close
	}
	n.hasFlat = true
	return n.flat
}

// seq prints a run of nodes at the current column. tail is the width that
// must still fit after the run on its last line.
func (p *printer) seq(seq []*node, indent, tail int) {
	spaces := spacing(seq)
	for i, n := range seq {
		if spaces[i] {
			p.write(" ")
		}
		if n.tok != nil {
			p.write(p.atom(n))
			continue
		}

		rest := 0
		j := i + 1
		for ; j < len(seq) && seq[j].tok != nil; j++ {
			if spaces[j] {
				rest++
			}
			rest += width(p.atom(seq[j]))
		}
		if j == len(seq) {
			rest += tail
		}
		p.group(n, indent, rest)
	}
}

func (p *printer) group(g *node, indent, tail int) {
	flat := p.flatNode(g)
	if len(g.items) == 0 || p.col+width(flat)+tail <= p.opts.PrintWidth {
		p.write(flat)
		return
	}

	inner := indent + p.opts.TabWidth
	pad := strings.Repeat(" ", inner)
	p.write(g.open)
	for i, item := range g.items {
		p.write("\n" + pad)
		p.seq(item, inner, width(g.sep))
		last := i == len(g.items)-1
		switch g.sep {
		case ";":
			p.write(";")
		case ",":
			if !last || p.trailingComma(g) {
				p.write(",")
			}
		}
	}
	p.write("\n" + strings.Repeat(" ", indent) + g.close)
}

func (p *printer) trailingComma(g *node) bool {
	switch p.opts.TrailingComma {
	case TrailingCommaNone:
		return false
	case TrailingCommaES5:
		return g.open == "[" || g.open == "{"
	}
	if g.params {
		last := g.items[len(g.items)-1]
		return len(last) == 0 || !last[0].isAtom("...")
	}
	return true
}
