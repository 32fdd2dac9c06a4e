package lang

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// javascriptSupport implements the module/package language variant.
type javascriptSupport struct{}

// javascriptExtensions is also the extension-inference probe order used by
// the resolver: TypeScript before JavaScript so mixed trees prefer the
// typed source.
var javascriptExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}

func (javascriptSupport) Name() Language { return LangJavaScript }

func (javascriptSupport) Extensions() []string { return javascriptExtensions }

func (javascriptSupport) IsSourceFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range javascriptExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ExtractImports returns the module specifiers declared in src:
// import/export-from statements, require() calls, and dynamic import()
// calls. Parse failures yield an empty list.
func (javascriptSupport) ExtractImports(path string, src []byte) []string {
	grammar := grammarForPath(path)
	if grammar == nil {
		return nil
	}

	root := parseSource(src, grammar)
	if root == nil {
		return nil
	}

	var specs []string
	walkNodes(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "import_statement", "export_statement":
			// export_statement only carries a source for re-exports
			if spec := stringContent(n.ChildByFieldName("source"), src); spec != "" {
				specs = append(specs, spec)
			}
		case "call_expression":
			if spec := callImportSpecifier(n, src); spec != "" {
				specs = append(specs, spec)
			}
		}
		return true
	})
	return specs
}

// callImportSpecifier extracts the module path from require('x') and
// dynamic import('x') call expressions. Non-literal arguments are skipped.
func callImportSpecifier(call *sitter.Node, src []byte) string {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return ""
	}

	// Dynamic import() parses with an "import" function node; require is a
	// plain identifier.
	isImportCall := fn.Type() == "import"
	isRequireCall := fn.Type() == "identifier" && nodeText(fn, src) == "require"
	if !isImportCall && !isRequireCall {
		return ""
	}

	args := call.ChildByFieldName("arguments")
	if args == nil {
		return ""
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Type() == "string" {
			return stringContent(arg, src)
		}
	}
	return ""
}

func (javascriptSupport) NewResolver() Resolver {
	return newJSResolver()
}
