package lang

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// parseSource parses src with the given grammar and returns the AST root,
// or nil when parsing fails. A fresh sitter.Parser per call keeps
// extraction safe under the parallel repository walk.
func parseSource(src []byte, grammar *sitter.Language) *sitter.Node {
	if grammar == nil {
		return nil
	}
	p := sitter.NewParser()
	p.SetLanguage(grammar)

	tree, err := p.ParseCtx(context.Background(), nil, src)
	if err != nil || tree == nil {
		return nil
	}
	return tree.RootNode()
}

// grammarForPath picks the tree-sitter grammar matching the file extension.
func grammarForPath(path string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts":
		return typescript.GetLanguage()
	case ".tsx":
		return tsx.GetLanguage()
	case ".js", ".jsx", ".mjs", ".cjs":
		return javascript.GetLanguage()
	case ".rs":
		return rust.GetLanguage()
	default:
		return nil
	}
}

// nodeText returns the source text spanned by a node.
func nodeText(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if int(end) > len(src) || start > end {
		return ""
	}
	return string(src[start:end])
}

// stringContent strips the quotes from a string literal node. Template
// strings with substitutions are returned raw and will simply fail to
// resolve downstream.
func stringContent(n *sitter.Node, src []byte) string {
	text := nodeText(n, src)
	if len(text) < 2 {
		return ""
	}
	switch text[0] {
	case '\'', '"', '`':
		if text[len(text)-1] == text[0] {
			return text[1 : len(text)-1]
		}
	}
	return ""
}

// walkNodes visits every node in the tree, depth first. The visitor
// returns false to skip a node's subtree.
func walkNodes(root *sitter.Node, visit func(*sitter.Node) bool) {
	if root == nil {
		return
	}
	if !visit(root) {
		return
	}
	for i := 0; i < int(root.ChildCount()); i++ {
		walkNodes(root.Child(i), visit)
	}
}
