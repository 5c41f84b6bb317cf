package tinyxpath

import (
	"errors"
	"sort"

	"github.com/tinyxpath/tinyxpath/tree"
)

// axisKind identifies one of the thirteen axes a step can walk.
type axisKind int

const (
	axisAncestor axisKind = iota
	axisAncestorOrSelf
	axisAttribute
	axisChild
	axisDescendant
	axisDescendantOrSelf
	axisFollowing
	axisFollowingSibling
	axisNamespace
	axisParent
	axisPreceding
	axisPrecedingSibling
	axisSelf
)

// axisNames is sorted to match the axisKind iota order above, so a
// "name::" override can be resolved with a binary search instead of a
// chain of string comparisons.
var axisNames = []string{
	"ancestor",
	"ancestor-or-self",
	"attribute",
	"child",
	"descendant",
	"descendant-or-self",
	"following",
	"following-sibling",
	"namespace",
	"parent",
	"preceding",
	"preceding-sibling",
	"self",
}

func lookupAxisName(token string) (axisKind, bool) {
	i := sort.SearchStrings(axisNames, token)
	if i < len(axisNames) && axisNames[i] == token {
		return axisKind(i), true
	}
	return 0, false
}

// Query evaluates expr against ctx and returns the matching node set.
// ctx is typically a document's meta-root, but any element or
// attribute node may be used as the starting context.
//
// Predicate brackets ("[...]") are recognized only well enough to be
// skipped over correctly (including nested brackets); their contents
// are never evaluated, matching the supported expression subset.
//
// Query sets and clears a transient touched mark on the document's
// nodes while it runs, so concurrent calls against the same document
// must be serialized by the caller.
func Query(ctx tree.Node, expr string) ([]tree.Node, error) {
	if ctx == nil {
		return nil, errors.New("tinyxpath: nil context node")
	}

	working, remainder := initialSet(ctx, expr)

	for len(remainder) > 0 {
		axis := axisChild
		switch remainder[0] {
		case '/':
			remainder = remainder[1:]
			axis = axisDescendantOrSelf
		case '@':
			remainder = remainder[1:]
			axis = axisAttribute
		case '.':
			if len(remainder) > 1 && remainder[1] == '.' {
				remainder = remainder[2:]
				axis = axisParent
			} else {
				remainder = remainder[1:]
				axis = axisSelf
			}
		}

		override, hasOverride, test, rest := scanStep(remainder)
		if hasOverride {
			axis = override
		}
		working = applyAxis(axis, working, test)
		remainder = rest
	}

	return working, nil
}

// initialSet computes the starting node set and the unconsumed
// remainder of expr, per the leading-slash rules: a bare name (no
// leading '/') starts from all descendants of ctx; a single leading
// '/' starts from ctx itself; a leading "//" starts from ctx's first
// child alone, letting the first step's descendant-or-self axis (the
// second '/') expand it to "every descendant" on the next iteration.
func initialSet(ctx tree.Node, expr string) ([]tree.Node, string) {
	if len(expr) == 0 || expr[0] != '/' {
		e := &evalState{}
		defer e.clearAll()
		return descendantAxis(e, []tree.Node{ctx}, "*"), expr
	}
	if len(expr) > 1 && expr[1] == '/' {
		var working []tree.Node
		if fc := firstChildNode(ctx); fc != nil {
			working = []tree.Node{fc}
		}
		return working, expr[1:]
	}
	return []tree.Node{ctx}, expr[1:]
}

// scanStep consumes one step's name test from remainder, resolving
// any "axis-name::" prefix it finds along the way, and returns the
// unconsumed rest of the expression (after the test, any predicate
// brackets that followed it, and the '/' that ends the step).
func scanStep(remainder string) (override axisKind, hasOverride bool, test string, rest string) {
	pos := 0
	start := 0
	for {
		if pos+1 < len(remainder) && remainder[pos] == ':' && remainder[pos+1] == ':' {
			if a, ok := lookupAxisName(remainder[start:pos]); ok {
				override = a
				hasOverride = true
			}
			pos += 2
			start = pos
			continue
		}
		if pos >= len(remainder) {
			return override, hasOverride, remainder[start:pos], remainder[pos:]
		}
		switch remainder[pos] {
		case '/':
			return override, hasOverride, remainder[start:pos], remainder[pos+1:]
		case '[':
			test = remainder[start:pos]
			i := pos
			for i < len(remainder) && remainder[i] == '[' {
				depth := 1
				i++
				for depth > 0 && i < len(remainder) {
					switch remainder[i] {
					case '[':
						depth++
					case ']':
						depth--
					}
					i++
				}
			}
			if i < len(remainder) && remainder[i] == '/' {
				i++
			}
			return override, hasOverride, test, remainder[i:]
		}
		pos++
	}
}

// applyAxis dispatches one step to its axis handler. Each call gets
// its own evalState and clears every touched mark it made before
// returning, the same way every xml_get_* handler in the original
// clears its own marks before handing the result to the next step —
// the touched bit is purely a within-step dedup device and must never
// leak state from one step into the next.
func applyAxis(axis axisKind, working []tree.Node, test string) []tree.Node {
	e := &evalState{}
	defer e.clearAll()

	switch axis {
	case axisAncestor:
		return ancestorAxis(e, working, test, false)
	case axisAncestorOrSelf:
		return ancestorAxis(e, working, test, true)
	case axisAttribute:
		return attributeAxis(working, test)
	case axisChild:
		return childAxis(working, test)
	case axisDescendant:
		return descendantAxis(e, working, test)
	case axisDescendantOrSelf:
		return descendantOrSelfAxis(e, working, test)
	case axisFollowing:
		return followingAxis(e, working, test)
	case axisFollowingSibling:
		return followingSiblingAxis(e, working, test)
	case axisNamespace:
		return nil
	case axisParent:
		return parentAxis(e, working, test)
	case axisPreceding:
		return precedingAxis(e, working, test)
	case axisPrecedingSibling:
		return precedingSiblingAxis(e, working, test)
	case axisSelf:
		return selfAxis(working, test)
	default:
		return nil
	}
}

// evalState tracks every node a single axis application has marked
// touched, so they can all be cleared in one pass once that step is
// done. The C original clears piecemeal inside each xml_get_* handler
// to survive mid-walk allocation failures; Go has no such failure mode
// mid-traversal, so a single per-step clear list is both simpler and
// sufficient to uphold the same invariant.
type evalState struct {
	touched []tree.Node
}

// markIfUnset marks n touched and records it for later clearing,
// returning true the first time it is called for n and false on every
// later call within the same axis application — the axis functions use this to
// dedup nodes reachable from more than one input.
func (e *evalState) markIfUnset(n tree.Node) bool {
	if isTouched(n) {
		return false
	}
	setTouched(n, true)
	e.touched = append(e.touched, n)
	return true
}

func (e *evalState) clearAll() {
	for _, n := range e.touched {
		setTouched(n, false)
	}
	e.touched = nil
}

func isTouched(n tree.Node) bool {
	switch v := n.(type) {
	case *tree.Element:
		return v.Touched()
	case *tree.Attribute:
		return v.Touched()
	default:
		return false
	}
}

func setTouched(n tree.Node, val bool) {
	switch v := n.(type) {
	case *tree.Element:
		v.SetTouched(val)
	case *tree.Attribute:
		v.SetTouched(val)
	}
}

// nameMatches implements the name test shared by every axis. The C
// original gets this "for free" across both element and attribute
// node lists via a struct-layout trick (xml_element and xml_attribute
// share a name/value prefix, so the same function reads either one
// through a single pointer type); here the equivalent is an explicit
// Kind check, which is the honest Go way to express the same
// polymorphism.
func nameMatches(n tree.Node, test string) bool {
	if n == nil || n.Kind() == tree.KindDocument {
		return false
	}
	if test == "*" {
		return true
	}
	return n.Name() == test
}

func parentOf(n tree.Node) tree.Node {
	switch v := n.(type) {
	case *tree.Element:
		return v.Parent()
	case *tree.Attribute:
		p := v.Parent()
		if p == nil {
			return nil
		}
		return p
	default:
		return nil
	}
}

func firstChildNode(n tree.Node) tree.Node {
	switch v := n.(type) {
	case *tree.Element:
		if c := v.FirstChild(); c != nil {
			return c
		}
	case *tree.Document:
		if c := v.FirstChild(); c != nil {
			return c
		}
	}
	return nil
}

func childrenOf(n tree.Node) []tree.Node {
	switch v := n.(type) {
	case *tree.Element:
		var out []tree.Node
		for c := v.FirstChild(); c != nil; c = c.NextSibling() {
			out = append(out, c)
		}
		return out
	case *tree.Document:
		var out []tree.Node
		for c := v.FirstChild(); c != nil; c = c.NextSibling() {
			out = append(out, c)
		}
		return out
	default:
		return nil
	}
}

func selfAxis(working []tree.Node, test string) []tree.Node {
	var out []tree.Node
	for _, n := range working {
		if nameMatches(n, test) {
			out = append(out, n)
		}
	}
	return out
}

func parentAxis(e *evalState, working []tree.Node, test string) []tree.Node {
	var out []tree.Node
	for _, n := range working {
		p := parentOf(n)
		if p == nil {
			continue
		}
		if e.markIfUnset(p) && nameMatches(p, test) {
			out = append(out, p)
		}
	}
	return out
}

// ancestorAxis walks father* upward for every input, emitting
// name-matching ancestors root-first (the walk recurses all the way
// up before testing and appending on the way back down). Shared
// ancestor chains are only walked and emitted once per step.
func ancestorAxis(e *evalState, working []tree.Node, test string, includeSelf bool) []tree.Node {
	var out []tree.Node
	for _, n := range working {
		start := n
		if !includeSelf {
			start = parentOf(n)
		}
		visitAncestor(e, start, test, &out)
	}
	return out
}

func visitAncestor(e *evalState, n tree.Node, test string, out *[]tree.Node) {
	if n == nil || n.Kind() == tree.KindDocument {
		return
	}
	if !e.markIfUnset(n) {
		return
	}
	visitAncestor(e, parentOf(n), test, out)
	if nameMatches(n, test) {
		*out = append(*out, n)
	}
}

func childAxis(working []tree.Node, test string) []tree.Node {
	var out []tree.Node
	for _, n := range working {
		switch v := n.(type) {
		case *tree.Element:
			if test == "*" {
				for c := v.FirstChild(); c != nil; c = c.NextSibling() {
					out = append(out, c)
				}
			} else if t := v.ChildrenTrie(); t != nil {
				out = append(out, t.Lookup(test)...)
			}
		case *tree.Document:
			// The meta-root has no trie of its own; its children are
			// few enough (the document's top-level elements) that a
			// linear scan is simpler than indexing it too.
			for c := v.FirstChild(); c != nil; c = c.NextSibling() {
				if nameMatches(c, test) {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

func attributeAxis(working []tree.Node, test string) []tree.Node {
	var out []tree.Node
	for _, n := range working {
		elem, ok := n.(*tree.Element)
		if !ok {
			continue
		}
		if test == "*" {
			for a := elem.FirstAttr(); a != nil; a = a.Next() {
				out = append(out, a)
			}
		} else if t := elem.AttrTrie(); t != nil {
			out = append(out, t.Lookup(test)...)
		}
	}
	return out
}

func descendantAxis(e *evalState, working []tree.Node, test string) []tree.Node {
	var out []tree.Node
	for _, n := range working {
		if isTouched(n) {
			continue
		}
		for _, c := range childrenOf(n) {
			visitDescendantOrSelf(e, c, test, &out)
		}
	}
	return out
}

func descendantOrSelfAxis(e *evalState, working []tree.Node, test string) []tree.Node {
	var out []tree.Node
	for _, n := range working {
		if !isTouched(n) {
			visitDescendantOrSelf(e, n, test, &out)
		}
	}
	return out
}

func visitDescendantOrSelf(e *evalState, n tree.Node, test string, out *[]tree.Node) {
	if !e.markIfUnset(n) {
		return
	}
	if nameMatches(n, test) {
		*out = append(*out, n)
	}
	for _, c := range childrenOf(n) {
		visitDescendantOrSelf(e, c, test, out)
	}
}

func followingSiblingAxis(e *evalState, working []tree.Node, test string) []tree.Node {
	var out []tree.Node
	for _, n := range working {
		elem, ok := n.(*tree.Element)
		if !ok {
			continue
		}
		for s := elem.NextSibling(); s != nil; s = s.NextSibling() {
			if isTouched(s) {
				break
			}
			if nameMatches(s, test) {
				e.markIfUnset(s)
				out = append(out, s)
			}
		}
	}
	return out
}

func precedingSiblingAxis(e *evalState, working []tree.Node, test string) []tree.Node {
	var out []tree.Node
	for _, n := range working {
		elem, ok := n.(*tree.Element)
		if !ok {
			continue
		}
		start := elem
		for start.PrevSibling() != nil && !isTouched(start.PrevSibling()) {
			start = start.PrevSibling()
		}
		for s := start; s != elem; s = s.NextSibling() {
			if nameMatches(s, test) {
				e.markIfUnset(s)
				out = append(out, s)
			}
		}
	}
	return out
}

// followingAxis gathers every sibling after each input (across every
// ancestor level is not part of this axis — only the direct sibling
// chain), then applies descendant-or-self over that scratch set so
// each one's own subtree is included too.
func followingAxis(e *evalState, working []tree.Node, test string) []tree.Node {
	var scratch []tree.Node
	for _, n := range working {
		elem, ok := n.(*tree.Element)
		if !ok {
			continue
		}
		for s := elem.NextSibling(); s != nil; s = s.NextSibling() {
			scratch = append(scratch, s)
		}
	}
	return descendantOrSelfAxis(e, scratch, test)
}

func precedingAxis(e *evalState, working []tree.Node, test string) []tree.Node {
	var scratch []tree.Node
	for _, n := range working {
		elem, ok := n.(*tree.Element)
		if !ok {
			continue
		}
		head := elem
		for head.PrevSibling() != nil {
			head = head.PrevSibling()
		}
		for s := head; s != elem; s = s.NextSibling() {
			scratch = append(scratch, s)
		}
	}
	return descendantOrSelfAxis(e, scratch, test)
}
