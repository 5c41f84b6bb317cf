package tree

// Finalize walks the whole document once, building the children and
// attribute tries for every element. The loader calls this after a
// successful parse; it is the Go analog of the post-processing pass
// in spec.md §4.3 (build_trie in xml.c), kept as a distinct step even
// though this port's tail-pointer append during parsing already
// leaves siblings in document order and needs no reversal pass.
func Finalize(doc *Document) {
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		finalizeElement(c)
	}
}

func finalizeElement(e *Element) {
	if attrs := e.Attributes(); len(attrs) > 0 {
		nodes := make([]Node, len(attrs))
		for i, a := range attrs {
			nodes[i] = a
		}
		e.setAttrTrie(BuildTrie(nodes))
	}

	children := e.Children()
	if len(children) > 0 {
		nodes := make([]Node, len(children))
		for i, c := range children {
			nodes[i] = c
			finalizeElement(c)
		}
		e.setChildrenTrie(BuildTrie(nodes))
	}
}

// stack is a slice-backed LIFO used for iterative tree traversal,
// adapted from the teacher's xtree.Stack (there backing Prepare's
// hash/signature walk; here backing Close's teardown walk).
type stack struct {
	items []*Element
}

func (s *stack) push(e *Element) { s.items = append(s.items, e) }

func (s *stack) pop() (*Element, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	last := len(s.items) - 1
	e := s.items[last]
	s.items = s.items[:last]
	return e, true
}

// Close severs the document's internal links, letting the garbage
// collector reclaim the tree even if a caller still holds a reference
// to some inner element. It is always safe to call, including on a
// nil Document, and is idempotent.
func (d *Document) Close() error {
	if d == nil {
		return nil
	}
	var s stack
	for c := d.firstChild; c != nil; c = c.next {
		s.push(c)
	}
	d.firstChild = nil
	d.lastChild = nil

	for {
		e, ok := s.pop()
		if !ok {
			break
		}
		for c := e.firstChild; c != nil; c = c.next {
			s.push(c)
		}
		e.parent = nil
		e.next = nil
		e.prev = nil
		e.firstChild = nil
		e.lastChild = nil
		e.firstAttr = nil
		e.lastAttr = nil
		e.childrenTrie = nil
		e.attrTrie = nil
		e.touched = false
	}
	return nil
}
