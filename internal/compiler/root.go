package compiler

import (
	"strings"

	"github.com/microsoft/typescript-go/shim/ast"
	"github.com/tsgonest/tsflatten/internal/errors"
)

// DefaultRootNames are the router variable names looked up when none are
// configured.
var DefaultRootNames = []string{"appRouter", "api"}

// Root is the router declaration found in the router file.
type Root struct {
	Name string
	Decl *ast.Node
}

// FindRoot returns the top-level variable declaration whose name comes first
// in names. Exported and non-exported declarations are both considered.
func FindRoot(sf *ast.SourceFile, names []string) (*Root, error) {
	if len(names) == 0 {
		names = DefaultRootNames
	}
	decls := topLevelVariables(sf)
	for _, name := range names {
		if decl, ok := decls[name]; ok {
			return &Root{Name: name, Decl: decl}, nil
		}
	}
	return nil, errors.WithHintf(
		errors.Wrapf(errors.ErrRootNotFound, "%s", sf.FileName()),
		"looked for top-level variables named %s; use --root to choose another", strings.Join(names, ", "))
}

// topLevelVariables indexes the identifier-named variable declarations of
// sf. The first declaration of a name wins.
func topLevelVariables(sf *ast.SourceFile) map[string]*ast.Node {
	out := make(map[string]*ast.Node)
	for _, stmt := range sf.Statements.Nodes {
		if stmt.Kind != ast.KindVariableStatement {
			continue
		}
		list := stmt.AsVariableStatement().DeclarationList.AsVariableDeclarationList()
		for _, decl := range list.Declarations.Nodes {
			name := decl.Name()
			if name == nil || name.Kind != ast.KindIdentifier {
				continue
			}
			if _, seen := out[name.Text()]; !seen {
				out[name.Text()] = decl
			}
		}
	}
	return out
}
