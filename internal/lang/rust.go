package lang

import (
	"path/filepath"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

type rustSupport struct{}

func (rustSupport) Name() Language { return LangRust }

func (rustSupport) Extensions() []string { return []string{".rs"} }

func (rustSupport) IsSourceFile(path string) bool {
	return filepath.Ext(path) == ".rs"
}

// pathAttributeRe matches the #[path = "..."] attribute that redirects a
// module declaration to an explicit file.
var pathAttributeRe = regexp.MustCompile(`#\s*\[\s*path\s*=\s*"([^"]+)"\s*\]`)

// ExtractImports collects use declarations (with use trees flattened to one
// specifier per leaf) and file-less mod declarations. A mod declaration
// preceded by a #[path] attribute is emitted as a "path:" specifier carrying
// the attribute's file path.
func (rustSupport) ExtractImports(path string, src []byte) []string {
	root := parseSource(src, grammarForPath(path))
	if root == nil {
		return nil
	}

	var specifiers []string
	walkNodes(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "use_declaration":
			if arg := n.ChildByFieldName("argument"); arg != nil {
				specifiers = append(specifiers, flattenUseTree(arg, "", src)...)
			}
			return false
		case "mod_item":
			if n.ChildByFieldName("body") != nil {
				return true // inline module, declarations inside still count
			}
			name := n.ChildByFieldName("name")
			if name == nil {
				return false
			}
			if attr := pathAttributeFor(n, src); attr != "" {
				specifiers = append(specifiers, "path:"+attr)
			} else {
				specifiers = append(specifiers, nodeText(name, src))
			}
			return false
		}
		return true
	})
	return specifiers
}

// pathAttributeFor scans the named siblings immediately preceding a mod_item
// for a #[path = "..."] attribute.
func pathAttributeFor(mod *sitter.Node, src []byte) string {
	parent := mod.Parent()
	if parent == nil {
		return ""
	}
	count := int(parent.NamedChildCount())
	index := -1
	for i := 0; i < count; i++ {
		if parent.NamedChild(i).StartByte() == mod.StartByte() {
			index = i
			break
		}
	}
	for i := index - 1; i >= 0; i-- {
		sibling := parent.NamedChild(i)
		if sibling.Type() != "attribute_item" {
			break
		}
		if m := pathAttributeRe.FindStringSubmatch(nodeText(sibling, src)); m != nil {
			return m[1]
		}
	}
	return ""
}

// flattenUseTree expands a use tree into one specifier per imported path.
// Grouped lists recurse with the group's path as prefix, as-clauses emit the
// original target, and wildcards emit the path they glob under.
func flattenUseTree(node *sitter.Node, prefix string, src []byte) []string {
	switch node.Type() {
	case "identifier", "crate", "self", "super", "metavariable", "scoped_identifier":
		return []string{prefix + nodeText(node, src)}
	case "scoped_use_list":
		groupPrefix := prefix
		if p := node.ChildByFieldName("path"); p != nil {
			groupPrefix = prefix + nodeText(p, src) + "::"
		}
		list := node.ChildByFieldName("list")
		if list == nil {
			return nil
		}
		return flattenUseTree(list, groupPrefix, src)
	case "use_list":
		var out []string
		for i := 0; i < int(node.NamedChildCount()); i++ {
			out = append(out, flattenUseTree(node.NamedChild(i), prefix, src)...)
		}
		return out
	case "use_as_clause":
		if target := node.ChildByFieldName("path"); target != nil {
			return flattenUseTree(target, prefix, src)
		}
		return nil
	case "use_wildcard":
		// `use a::b::*` globs under a::b; a bare `*` inside a group globs
		// under the group prefix.
		for i := 0; i < int(node.NamedChildCount()); i++ {
			return flattenUseTree(node.NamedChild(i), prefix, src)
		}
		if prefix != "" {
			return []string{strings.TrimSuffix(prefix, "::")}
		}
		return nil
	}
	return nil
}

func (rustSupport) NewResolver() Resolver { return newRustResolver() }
