// Package routes discovers HTTP route registrations and mounts, composes
// full route paths along mount chains, and matches request paths through a
// segment trie.
package routes

import (
	"sort"
	"strings"
)

// WildcardMethod registers a handler for every HTTP method.
const WildcardMethod = "*"

// Route is one registered handler: a method, the fully mount-composed
// path, and the file that registered it.
type Route struct {
	Method string
	Path   string
	File   string
}

type segmentKind int

const (
	segLiteral segmentKind = iota
	segParam
	segSplat
)

type segment struct {
	kind    segmentKind
	literal string
}

func parseSegments(path string) []segment {
	var segs []segment
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if part == "" {
			continue
		}
		switch {
		case part == "*" || strings.HasPrefix(part, "*"):
			segs = append(segs, segment{kind: segSplat})
		case strings.HasPrefix(part, ":"):
			segs = append(segs, segment{kind: segParam, literal: part[1:]})
		default:
			segs = append(segs, segment{kind: segLiteral, literal: part})
		}
	}
	return segs
}

type trieNode struct {
	segment  segment
	children []*trieNode
	// handlers maps an upper-case method (or WildcardMethod) to the routes
	// terminating at this node.
	handlers map[string][]Route
}

func newTrieNode(seg segment) *trieNode {
	return &trieNode{segment: seg, handlers: make(map[string][]Route)}
}

// Trie indexes routes by path segment for request-path matching.
type Trie struct {
	root *trieNode
}

func NewTrie() *Trie {
	return &Trie{root: newTrieNode(segment{})}
}

// Insert adds a route, creating trie nodes as needed. Children stay
// ordered Literal before Param before Splat, literals alphabetically.
func (t *Trie) Insert(r Route) {
	node := t.root
	for _, seg := range parseSegments(r.Path) {
		node = node.child(seg)
	}
	method := strings.ToUpper(r.Method)
	if r.Method == WildcardMethod {
		method = WildcardMethod
	}
	node.handlers[method] = append(node.handlers[method], r)
}

func (n *trieNode) child(seg segment) *trieNode {
	for _, c := range n.children {
		if c.segment.kind == seg.kind && (seg.kind != segLiteral || c.segment.literal == seg.literal) {
			return c
		}
	}
	c := newTrieNode(seg)
	n.children = append(n.children, c)
	sort.SliceStable(n.children, func(i, j int) bool {
		a, b := n.children[i].segment, n.children[j].segment
		if a.kind != b.kind {
			return a.kind < b.kind
		}
		return a.literal < b.literal
	})
	return c
}

// match carries one candidate terminal node during lookup.
type match struct {
	routes    []Route
	consumed  int
	wildcards int
}

// Match returns the routes handling the given method and request path.
// Literal children are preferred over Param over Splat; among candidate
// terminals the one consuming the most input segments wins, ties broken by
// fewer Param/Splat segments on the branch.
func (t *Trie) Match(method string, path string) []Route {
	method = strings.ToUpper(method)
	input := parseSegments(path)
	for i := range input {
		// A request path has no pattern segments; everything is literal.
		input[i] = segment{kind: segLiteral, literal: input[i].literal}
	}

	var best *match
	consider := func(m match) {
		if len(m.routes) == 0 {
			return
		}
		if best == nil || m.consumed > best.consumed ||
			(m.consumed == best.consumed && m.wildcards < best.wildcards) {
			m := m
			best = &m
		}
	}
	walkTrie(t.root, input, method, 0, 0, consider)

	if best == nil {
		return nil
	}
	return best.routes
}

func walkTrie(node *trieNode, input []segment, method string, consumed int, wildcards int, consider func(match)) {
	// Every visited node with a handler is a candidate; deeper branches
	// outrank it only by consuming more input.
	consider(match{routes: handlersFor(node, method), consumed: consumed, wildcards: wildcards})
	if len(input) == 0 {
		return
	}
	for _, c := range node.children {
		switch c.segment.kind {
		case segLiteral:
			if c.segment.literal == input[0].literal {
				walkTrie(c, input[1:], method, consumed+1, wildcards, consider)
			}
		case segParam:
			walkTrie(c, input[1:], method, consumed+1, wildcards+1, consider)
		case segSplat:
			// A splat claims all remaining input and terminates.
			consider(match{
				routes:    handlersFor(c, method),
				consumed:  consumed + len(input),
				wildcards: wildcards + 1,
			})
		}
	}
}

func handlersFor(node *trieNode, method string) []Route {
	routes := append([]Route(nil), node.handlers[method]...)
	return append(routes, node.handlers[WildcardMethod]...)
}
