package tree

import "sort"

// Trie is a compressed trie over a set of Nodes keyed by Name(). It is
// built once per element (over its children, or over its attributes)
// during post-processing and answers exact-name lookups without a
// linear scan.
//
// Ported from xml.c's build_trie_node/xml_trie_check: the head node
// always branches (it carries no letter of its own), and any node
// beyond depth zero whose subrange shares one full name collapses
// into a leaf. Go gives us the whole name string in every node's
// payload, so leaf matching here is a plain string comparison instead
// of the byte-position bookkeeping cmp_trie needed in C.
type Trie struct {
	root *trieNode
}

type trieNode struct {
	letter byte // branch byte this child was selected by; unused on the root

	isLeaf bool
	leaf   []Node // present only when isLeaf; all share one Name()

	children []*trieNode // present only when !isLeaf; sorted by letter
}

// BuildTrie indexes entries by Name(). Entries sharing a name are
// collected into the same leaf, in the order given.
func BuildTrie(entries []Node) *Trie {
	if len(entries) == 0 {
		return nil
	}
	sorted := make([]Node, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })

	root := &trieNode{}
	buildTrieNode(root, sorted, 0)
	return &Trie{root: root}
}

func buildTrieNode(node *trieNode, entries []Node, level int) {
	if level > 0 && entries[0].Name() == entries[len(entries)-1].Name() {
		node.isLeaf = true
		node.leaf = entries
		return
	}

	var groupStart int
	var groupLetter byte
	first := true
	flush := func(end int) {
		child := &trieNode{letter: groupLetter}
		buildTrieNode(child, entries[groupStart:end], level+1)
		node.children = append(node.children, child)
	}
	for i, e := range entries {
		letter := byteAt(e.Name(), level)
		if first {
			groupLetter = letter
			groupStart = i
			first = false
			continue
		}
		if letter != groupLetter {
			flush(i)
			groupLetter = letter
			groupStart = i
		}
	}
	flush(len(entries))
}

// byteAt returns the byte of name at position i, or 0 once i reaches
// the end of the string. Since entries are sorted lexicographically, a
// name that is a strict prefix of another always sorts first, so 0
// used as an end-of-string sentinel here never collides with a real
// continuation and never misorders a group.
func byteAt(name string, i int) byte {
	if i >= len(name) {
		return 0
	}
	return name[i]
}

// Lookup returns every entry whose Name() equals name exactly, or nil
// if none match. A nil receiver (an un-indexed, childless element)
// behaves as an empty trie.
func (t *Trie) Lookup(name string) []Node {
	if t == nil || t.root == nil {
		return nil
	}
	return lookupNode(t.root, name, 0)
}

func lookupNode(node *trieNode, name string, level int) []Node {
	if node.isLeaf {
		if node.leaf[0].Name() == name {
			return node.leaf
		}
		return nil
	}
	key := byteAt(name, level)
	i := sort.Search(len(node.children), func(i int) bool {
		return node.children[i].letter >= key
	})
	if i >= len(node.children) || node.children[i].letter != key {
		return nil
	}
	return lookupNode(node.children[i], name, level+1)
}
