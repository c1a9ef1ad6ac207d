// Package metadata defines the structural classification of type-graph
// nodes. A type checker adapter classifies each node exactly once into a
// Shape; the flattener consumes the Shape with a single switch on Kind.
//
// Shape is generic over the node handle so the same schema serves the
// typescript-go checker (*checker.Type) and in-memory graphs in tests.
package metadata

// Kind identifies the structural form of a type.
type Kind string

const (
	KindOpaque       Kind = "opaque"       // emitted as its raw type text
	KindKeyed        Kind = "keyed"        // Map<K, V>, Record<K, V>
	KindDeferred     Kind = "deferred"     // Promise<T>
	KindUnion        Kind = "union"        // A | B
	KindIntersection Kind = "intersection" // A & B
	KindTuple        Kind = "tuple"        // [A, B?, ...C]
	KindArray        Kind = "array"        // T[]
	KindFunction     Kind = "function"     // object with call signatures
	KindDictionary   Kind = "dictionary"   // { [key: string]: T }
	KindObject       Kind = "object"       // object with properties, possibly callable
	KindLiteral      Kind = "literal"      // "a", 1, true
	KindAlias        Kind = "alias"        // name whose declaration is an alias or interface
)

// Shape is the classification of one node plus the sub-nodes its kind needs.
// Only the fields documented for the Kind are set.
type Shape[N any] struct {
	Kind Kind

	// Name is the wrapper name for KindKeyed and KindDeferred.
	Name string

	// Args holds generic arguments for KindKeyed (key, value) and
	// KindDeferred (inner). Fewer than expected means the wrapper
	// degrades to its raw text.
	Args []N

	// Members holds union and intersection members.
	Members []N

	// Extra holds members already rendered by the classifier, such as
	// "boolean" for a collapsed true | false pair. Emitted before Members.
	Extra []string

	// Elements holds tuple elements.
	Elements []TupleElement[N]

	// Element is the array element type or the dictionary value type.
	Element N

	// Properties holds object properties in declaration order.
	Properties []Property[N]

	// Index is the string index signature value of an object that also has
	// properties.
	Index *N

	// Signatures holds call signatures for KindFunction, and for a KindObject
	// that is also callable.
	Signatures []Signature[N]

	// Literal is the exact literal text for KindLiteral.
	Literal string

	// Target is the aliased declaration's own type for KindAlias.
	Target N
}

// Property is a named member of an object type.
type Property[N any] struct {
	Name     string
	Type     N
	Optional bool
}

// TupleElement is a positional tuple member.
type TupleElement[N any] struct {
	Type     N
	Optional bool
	// Rest marks ...T[]; Type is the element type T.
	Rest bool
	// Variadic marks ...T where T is itself array-like.
	Variadic bool
}

// Signature is one call signature of a function type.
type Signature[N any] struct {
	Params []Param[N]
	Return N
}

// Param is a call signature parameter.
type Param[N any] struct {
	Name     string
	Type     N
	Optional bool
	// Rest is true for a trailing parameter declared with "...".
	Rest bool
}
