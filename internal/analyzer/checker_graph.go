// Package analyzer adapts the tsgo type checker to the flattener's type graph.
package analyzer

import (
	"fmt"

	"github.com/go-json-experiment/json/jsontext"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/microsoft/typescript-go/shim/ast"
	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	"github.com/tsgonest/tsflatten/internal/errors"
	"github.com/tsgonest/tsflatten/internal/flatten"
	"github.com/tsgonest/tsflatten/internal/metadata"
)

// DefaultKeyCacheSize bounds the TypeId to key cache.
const DefaultKeyCacheSize = 4096

// keyFormat renders types at full fidelity: no truncation, fully qualified
// names and instantiated type arguments, so distinct types get distinct keys.
const keyFormat = shimchecker.TypeFormatFlagsNoTruncation |
	shimchecker.TypeFormatFlagsUseFullyQualifiedType |
	shimchecker.TypeFormatFlagsWriteTypeArgumentsOfSignature |
	shimchecker.TypeFormatFlagsOmitParameterModifiers |
	shimchecker.TypeFormatFlagsUseAliasDefinedOutsideCurrentScope |
	shimchecker.TypeFormatFlagsAllowUniqueESSymbolType

// DefaultKeyedGenerics are rendered as Name<K, V>.
var DefaultKeyedGenerics = []string{"Map", "ReadonlyMap", "WeakMap", "Record"}

// DefaultDeferredWrappers are rendered as Name<T>.
var DefaultDeferredWrappers = []string{"Promise", "PromiseLike"}

// GraphOptions configures a CheckerGraph.
type GraphOptions struct {
	KeyedGenerics    []string
	DeferredWrappers []string
	KeyCacheSize     int
}

// CheckerGraph exposes a tsgo checker as a flatten.Graph over *Type.
type CheckerGraph struct {
	checker  *shimchecker.Checker
	keys     *lru.Cache[shimchecker.TypeId, string]
	keyed    map[string]bool
	deferred map[string]bool
}

var (
	_ flatten.Graph[*shimchecker.Type] = (*CheckerGraph)(nil)
	_ flatten.Namer[*shimchecker.Type] = (*CheckerGraph)(nil)
)

// NewCheckerGraph wraps c. Empty wrapper lists fall back to the defaults.
func NewCheckerGraph(c *shimchecker.Checker, opts GraphOptions) (*CheckerGraph, error) {
	if c == nil {
		return nil, errors.New("nil type checker")
	}
	size := opts.KeyCacheSize
	if size <= 0 {
		size = DefaultKeyCacheSize
	}
	cache, err := lru.New[shimchecker.TypeId, string](size)
	if err != nil {
		return nil, errors.Wrap(err, "creating type key cache")
	}
	keyed := opts.KeyedGenerics
	if len(keyed) == 0 {
		keyed = DefaultKeyedGenerics
	}
	deferred := opts.DeferredWrappers
	if len(deferred) == 0 {
		deferred = DefaultDeferredWrappers
	}
	return &CheckerGraph{
		checker:  c,
		keys:     cache,
		keyed:    toSet(keyed),
		deferred: toSet(deferred),
	}, nil
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// Checker returns the wrapped checker.
func (g *CheckerGraph) Checker() *shimchecker.Checker {
	return g.checker
}

// TypeOfDeclaration returns the type of a named declaration, such as the
// router variable.
func (g *CheckerGraph) TypeOfDeclaration(decl *ast.Node) (*shimchecker.Type, error) {
	name := decl.Name()
	if name == nil {
		return nil, errors.New("declaration has no name")
	}
	sym := g.checker.GetSymbolAtLocation(name)
	if sym == nil {
		return nil, errors.Newf("no symbol for %q", name.Text())
	}
	t := shimchecker.Checker_getTypeOfSymbol(g.checker, sym)
	if t == nil {
		return nil, errors.Newf("no type for %q", name.Text())
	}
	return t, nil
}

// Key renders t with the checker's full-fidelity type printer.
func (g *CheckerGraph) Key(t *shimchecker.Type) string {
	if t == nil {
		return "any"
	}
	if k, ok := g.keys.Get(t.Id()); ok {
		return k
	}
	k := g.checker.TypeToStringEx(t, nil, keyFormat)
	g.keys.Add(t.Id(), k)
	return k
}

// Classify decides the structural form of t. Checks run in a fixed order:
// unions and intersections, configured wrappers, tuples, arrays, object
// forms, literals, then alias indirection.
func (g *CheckerGraph) Classify(t *shimchecker.Type) metadata.Shape[*shimchecker.Type] {
	type shape = metadata.Shape[*shimchecker.Type]
	if t == nil {
		return shape{Kind: metadata.KindOpaque}
	}
	flags := t.Flags()

	if flags&shimchecker.TypeFlagsUnion != 0 {
		return g.classifyUnion(t)
	}
	if flags&shimchecker.TypeFlagsIntersection != 0 {
		return shape{Kind: metadata.KindIntersection, Members: t.Types()}
	}

	if name, args, ok := g.wrapper(t); ok {
		kind := metadata.KindDeferred
		if g.keyed[name] {
			kind = metadata.KindKeyed
		}
		return shape{Kind: kind, Name: name, Args: args}
	}

	if flags&shimchecker.TypeFlagsObject != 0 {
		if shimchecker.IsTupleType(t) {
			return g.classifyTuple(t)
		}
		if shimchecker.Checker_isArrayType(g.checker, t) {
			s := shape{Kind: metadata.KindArray}
			if args := shimchecker.Checker_getTypeArguments(g.checker, t); len(args) > 0 {
				s.Element = args[0]
			}
			return s
		}
		return g.classifyObject(t)
	}

	if lit, ok := g.literal(t); ok {
		return shape{Kind: metadata.KindLiteral, Literal: lit}
	}

	if target := g.aliasTarget(t); target != nil {
		return shape{Kind: metadata.KindAlias, Target: target}
	}

	return shape{Kind: metadata.KindOpaque}
}

// classifyUnion collapses a true | false pair into boolean.
func (g *CheckerGraph) classifyUnion(t *shimchecker.Type) metadata.Shape[*shimchecker.Type] {
	types := t.Types()
	var boolLits int
	for _, m := range types {
		if m.Flags()&shimchecker.TypeFlagsBooleanLiteral != 0 {
			boolLits++
		}
	}
	s := metadata.Shape[*shimchecker.Type]{Kind: metadata.KindUnion}
	if boolLits < 2 {
		s.Members = types
		return s
	}
	s.Extra = []string{"boolean"}
	s.Members = make([]*shimchecker.Type, 0, len(types)-boolLits)
	for _, m := range types {
		if m.Flags()&shimchecker.TypeFlagsBooleanLiteral == 0 {
			s.Members = append(s.Members, m)
		}
	}
	return s
}

// wrapper matches configured generic wrappers by symbol or alias name.
func (g *CheckerGraph) wrapper(t *shimchecker.Type) (string, []*shimchecker.Type, bool) {
	if alias := shimchecker.Type_alias(t); alias != nil && alias.Symbol() != nil {
		name := alias.Symbol().Name
		if g.keyed[name] || g.deferred[name] {
			return name, alias.TypeArguments(), true
		}
	}
	if t.Flags()&shimchecker.TypeFlagsObject == 0 {
		return "", nil, false
	}
	sym := t.Symbol()
	if sym == nil || !(g.keyed[sym.Name] || g.deferred[sym.Name]) {
		return "", nil, false
	}
	return sym.Name, shimchecker.Checker_getTypeArguments(g.checker, t), true
}

func (g *CheckerGraph) classifyTuple(t *shimchecker.Type) metadata.Shape[*shimchecker.Type] {
	args := shimchecker.Checker_getTypeArguments(g.checker, t)
	var infos []shimchecker.TupleElementInfo
	if target := t.TargetTupleType(); target != nil {
		infos = shimchecker.TupleType_elementInfos(target)
	}
	if len(infos) > 0 && len(args) > len(infos) {
		args = args[:len(infos)]
	}
	elems := make([]metadata.TupleElement[*shimchecker.Type], 0, len(args))
	for i, arg := range args {
		el := metadata.TupleElement[*shimchecker.Type]{Type: arg}
		if i < len(infos) {
			ef := infos[i].TupleElementFlags()
			el.Optional = ef&shimchecker.ElementFlagsOptional != 0
			el.Rest = ef&shimchecker.ElementFlagsRest != 0
			el.Variadic = ef&shimchecker.ElementFlagsVariadic != 0
		}
		elems = append(elems, el)
	}
	return metadata.Shape[*shimchecker.Type]{Kind: metadata.KindTuple, Elements: elems}
}

// classifyObject distinguishes callables, dictionaries and plain objects.
// An object with both call signatures and properties keeps both.
func (g *CheckerGraph) classifyObject(t *shimchecker.Type) metadata.Shape[*shimchecker.Type] {
	props := shimchecker.Checker_getPropertiesOfType(g.checker, t)
	index := g.stringIndex(t)

	sigs := shimchecker.Checker_getSignaturesOfType(g.checker, t, shimchecker.SignatureKindCall)

	if len(props) == 0 && index == nil && len(sigs) > 0 {
		return metadata.Shape[*shimchecker.Type]{Kind: metadata.KindFunction, Signatures: g.signatures(sigs)}
	}
	if len(props) == 0 && index != nil && len(sigs) == 0 {
		return metadata.Shape[*shimchecker.Type]{Kind: metadata.KindDictionary, Element: index}
	}

	s := metadata.Shape[*shimchecker.Type]{Kind: metadata.KindObject}
	if len(sigs) > 0 {
		s.Signatures = g.signatures(sigs)
	}
	if index != nil {
		s.Index = &index
	}
	for _, p := range props {
		s.Properties = append(s.Properties, metadata.Property[*shimchecker.Type]{
			Name:     p.Name,
			Type:     shimchecker.Checker_getTypeOfSymbol(g.checker, p),
			Optional: p.Flags&ast.SymbolFlagsOptional != 0,
		})
	}
	return s
}

func (g *CheckerGraph) stringIndex(t *shimchecker.Type) *shimchecker.Type {
	for _, info := range shimchecker.Checker_getIndexInfosOfType(g.checker, t) {
		key := shimchecker.IndexInfo_keyType(info)
		if key != nil && key.Flags()&shimchecker.TypeFlagsString != 0 {
			return shimchecker.IndexInfo_valueType(info)
		}
	}
	return nil
}

func (g *CheckerGraph) signatures(sigs []*shimchecker.Signature) []metadata.Signature[*shimchecker.Type] {
	out := make([]metadata.Signature[*shimchecker.Type], 0, len(sigs))
	for _, sig := range sigs {
		params := sig.Parameters()
		s := metadata.Signature[*shimchecker.Type]{
			Return: shimchecker.Checker_getReturnTypeOfSignature(g.checker, sig),
		}
		for i, p := range params {
			param := metadata.Param[*shimchecker.Type]{
				Name:     p.Name,
				Type:     shimchecker.Checker_getTypeOfSymbol(g.checker, p),
				Optional: p.Flags&ast.SymbolFlagsOptional != 0,
			}
			if decl := p.ValueDeclaration; decl != nil && decl.Kind == ast.KindParameter {
				pd := decl.AsParameterDeclaration()
				param.Rest = i == len(params)-1 && pd.DotDotDotToken != nil
				if pd.QuestionToken != nil || pd.Initializer != nil {
					param.Optional = true
				}
			}
			s.Params = append(s.Params, param)
		}
		out = append(out, s)
	}
	return out
}

// literal renders string, number, bigint and boolean literal types. String
// literals are JSON-quoted.
func (g *CheckerGraph) literal(t *shimchecker.Type) (string, bool) {
	flags := t.Flags()
	switch {
	case flags&shimchecker.TypeFlagsStringLiteral != 0:
		lit := t.AsLiteralType()
		s, _ := lit.Value().(string)
		b, err := jsontext.AppendQuote(nil, s)
		if err != nil {
			return g.Key(t), true
		}
		return string(b), true
	case flags&shimchecker.TypeFlagsNumberLiteral != 0:
		return fmt.Sprint(t.AsLiteralType().Value()), true
	case flags&(shimchecker.TypeFlagsBigIntLiteral|shimchecker.TypeFlagsBooleanLiteral) != 0:
		return g.Key(t), true
	}
	return "", false
}

// aliasTarget returns the declared type behind a type alias or interface
// symbol, or nil when it would resolve back to t.
func (g *CheckerGraph) aliasTarget(t *shimchecker.Type) *shimchecker.Type {
	sym := t.Symbol()
	if alias := shimchecker.Type_alias(t); alias != nil && alias.Symbol() != nil {
		sym = alias.Symbol()
	}
	if sym == nil || len(sym.Declarations) == 0 {
		return nil
	}
	decl := sym.Declarations[0]
	if decl.Kind != ast.KindTypeAliasDeclaration && decl.Kind != ast.KindInterfaceDeclaration {
		return nil
	}
	var target *shimchecker.Type
	if decl.Kind == ast.KindTypeAliasDeclaration {
		target = shimchecker.Checker_getTypeFromTypeNode(g.checker, decl.AsTypeAliasDeclaration().Type)
	} else {
		target = shimchecker.Checker_getDeclaredTypeOfSymbol(g.checker, sym)
	}
	if target == nil || target.Id() == t.Id() || g.Key(target) == g.Key(t) {
		return nil
	}
	return target
}

// NameHint suggests a declaration name from the alias or interface symbol.
func (g *CheckerGraph) NameHint(t *shimchecker.Type) string {
	if t == nil {
		return ""
	}
	if alias := shimchecker.Type_alias(t); alias != nil && alias.Symbol() != nil {
		if name := alias.Symbol().Name; usableName(name) {
			return name
		}
	}
	if shimchecker.Type_objectFlags(t)&shimchecker.ObjectFlagsAnonymous != 0 {
		return ""
	}
	if sym := t.Symbol(); sym != nil && usableName(sym.Name) {
		return sym.Name
	}
	return ""
}

// usableName filters the checker's synthetic symbol names.
func usableName(name string) bool {
	switch name {
	case "", "__type", "__object", "__function":
		return false
	}
	return name[0] != '\xfe'
}
