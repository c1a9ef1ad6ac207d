package analyzer_test

import (
	"testing"

	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsgonest/tsflatten/internal/analyzer"
	"github.com/tsgonest/tsflatten/internal/compiler"
	"github.com/tsgonest/tsflatten/internal/flatten"
	"github.com/tsgonest/tsflatten/internal/metadata"
	"github.com/tsgonest/tsflatten/internal/testutil"
)

const routerPrelude = `
declare function t<T>(): T;
`

// flattenRouter loads src as router.ts, flattens its appRouter and returns
// the emitted document text.
func flattenRouter(t *testing.T, src string) (string, *analyzer.CheckerGraph, *shimchecker.Type) {
	t.Helper()
	env := testutil.LoadRouter(t, map[string]string{"router.ts": routerPrelude + src}, "router.ts")

	root, err := compiler.FindRoot(env.Project.RouterFile, nil)
	require.NoError(t, err)

	g, err := analyzer.NewCheckerGraph(env.Checker, analyzer.GraphOptions{})
	require.NoError(t, err)
	rootType, err := g.TypeOfDeclaration(root.Decl)
	require.NoError(t, err)

	f := flatten.New[*shimchecker.Type](g, flatten.DefaultOptions())
	expr := f.Flatten(rootType)
	doc := flatten.Emit(expr, f.Table(), flatten.DefaultEmitOptions("AppRouter"))
	return doc.String(), g, rootType
}

func TestCheckerGraph_StructuralForms(t *testing.T) {
	out, _, _ := flattenRouter(t, `
interface User { id: string; tags: string[] }
type Status = "active" | "disabled";

export const appRouter = {
  user: t<User>(),
  status: t<Status>(),
  flag: t<boolean | number>(),
  pair: t<[string, ...boolean[]]>(),
  fn: t<(a: string, ...rest: number[]) => void>(),
  dict: t<{ [k: string]: number }>(),
  map: t<Map<string, User>>(),
  later: t<Promise<number>>(),
  when: t<Date>(),
  callable: t<{ (x: string): number; version: string }>(),
};
`)

	assert.Contains(t, out, `"user": { "id": string; "tags": Array<string> }`)
	assert.Contains(t, out, `"status": "active" | "disabled"`)
	assert.Contains(t, out, `"flag": boolean | number`)
	assert.Contains(t, out, `"pair": [string, ...Array<boolean>]`)
	assert.Contains(t, out, `"fn": (a: string, ...rest: Array<number>) => void`)
	assert.Contains(t, out, `"dict": { [key: string]: number }`)
	assert.Contains(t, out, `"map": Map<string, { "id": string; "tags": Array<string> }>`)
	assert.Contains(t, out, `"later": Promise<number>`)
	assert.Contains(t, out, `"when": Date`)
	assert.Contains(t, out, `"callable": ((x: string) => number) & { "version": string }`)
	assert.NotContains(t, out, "$$$")
}

func TestCheckerGraph_RecursiveInterface(t *testing.T) {
	out, _, _ := flattenRouter(t, `
interface Tree { value: string; children: Tree[] }
export const appRouter = { tree: t<Tree>() };
`)
	assert.Equal(t,
		"type Tree = { \"value\": string; \"children\": Array<Tree> };\n\n"+
			"export type AppRouter = { \"tree\": Tree };\n", out)
}

func TestCheckerGraph_ErasesRouterLayers(t *testing.T) {
	out, _, _ := flattenRouter(t, `
interface RouterILayer { secret: string }
interface Response<T> { body: T }
export const appRouter = { layer: t<RouterILayer>(), res: t<Response<number>>() };
`)
	assert.Equal(t, "export type AppRouter = { \"layer\": any; \"res\": any };\n", out)
}

func TestCheckerGraph_KeyIsCached(t *testing.T) {
	_, g, rootType := flattenRouter(t, `export const appRouter = { a: t<string>() };`)
	first := g.Key(rootType)
	assert.Equal(t, first, g.Key(rootType))
	assert.Contains(t, first, "a: string")
	assert.Equal(t, "any", g.Key(nil))
}

func TestCheckerGraph_ClassifyNil(t *testing.T) {
	_, g, _ := flattenRouter(t, `export const appRouter = {};`)
	assert.Equal(t, metadata.KindOpaque, g.Classify(nil).Kind)
}

func TestCheckerGraph_NameHint(t *testing.T) {
	env := testutil.LoadRouter(t, map[string]string{"router.ts": routerPrelude + `
interface Account { id: number }
export const appRouter = { account: t<Account>(), anon: t<{ x: number }>() };
`}, "router.ts")
	root, err := compiler.FindRoot(env.Project.RouterFile, nil)
	require.NoError(t, err)
	g, err := analyzer.NewCheckerGraph(env.Checker, analyzer.GraphOptions{})
	require.NoError(t, err)
	rootType, err := g.TypeOfDeclaration(root.Decl)
	require.NoError(t, err)

	shape := g.Classify(rootType)
	require.Equal(t, metadata.KindObject, shape.Kind)
	require.Len(t, shape.Properties, 2)
	assert.Equal(t, "account", shape.Properties[0].Name)
	assert.Equal(t, "Account", g.NameHint(shape.Properties[0].Type))
	assert.Equal(t, "", g.NameHint(shape.Properties[1].Type))
	assert.Equal(t, "", g.NameHint(rootType))
}
