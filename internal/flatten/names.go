package flatten

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und, cases.NoLower)

// reservedTypeNames cannot name a declaration.
var reservedTypeNames = map[string]bool{
	"any": true, "unknown": true, "never": true, "void": true, "object": true,
	"string": true, "number": true, "boolean": true, "bigint": true, "symbol": true,
	"undefined": true, "null": true, "this": true, "type": true, "interface": true,
	"infer": true, "keyof": true, "typeof": true, "readonly": true, "unique": true,
	"asserts": true, "is": true, "extends": true, "import": true, "export": true,
	"default": true, "function": true, "class": true, "enum": true, "const": true,
	"let": true, "var": true, "new": true, "in": true, "of": true, "as": true,
	"Array": true, "Promise": true, "Record": true, "Map": true, "Date": true,
	"String": true, "Number": true, "Boolean": true, "Object": true, "Symbol": true,
	"BigInt": true, "Function": true, "Partial": true, "Readonly": true,
	"ReadonlyMap": true, "WeakMap": true, "PromiseLike": true,
}

// PascalCase upper-cases the first letter of every word in s and drops the
// characters that cannot appear in an identifier.
func PascalCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !isIdentRune(r)
	})
	var sb strings.Builder
	for _, w := range words {
		sb.WriteString(titleCaser.String(w))
	}
	return sb.String()
}

// ExportNameFor derives the exported type name from a root declaration name:
// appRouter becomes AppRouter.
func ExportNameFor(rootName string) string {
	name := PascalCase(rootName)
	if !validTypeName(name) {
		return "AppRouter"
	}
	return name
}

// declName picks the declared name of a hoisted record.
func declName(hint string, id int, used map[string]bool) string {
	if base := PascalCase(hint); validTypeName(base) {
		if !used[base] {
			return base
		}
		if name := base + strconv.Itoa(id); !used[name] {
			return name
		}
	}
	name := "T" + strconv.Itoa(id)
	for used[name] {
		name = "_" + name
	}
	return name
}

func validTypeName(s string) bool {
	if s == "" || reservedTypeNames[s] {
		return false
	}
	for i, r := range s {
		if !isIdentRune(r) || (i == 0 && unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsValidTypeName reports whether s can name a declared type.
func IsValidTypeName(s string) bool {
	return validTypeName(s)
}
