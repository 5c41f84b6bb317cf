package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSample() (*Document, *Element, *Element) {
	doc := NewDocument()
	a := NewElement("a")
	doc.AppendChild(a)

	b1 := NewElement("b")
	b1.AppendAttr(NewAttribute("id", "1"))
	b1.AppendChild(NewElement("c"))
	a.AppendChild(b1)

	b2 := NewElement("b")
	b2.AppendAttr(NewAttribute("id", "2"))
	b2.AppendChild(NewElement("c"))
	b2.AppendChild(NewElement("c"))
	a.AppendChild(b2)

	return doc, a, b2
}

func TestFinalizeBuildsTriesAtEveryLevel(t *testing.T) {
	doc, a, b2 := buildSample()
	Finalize(doc)

	require.NotNil(t, a.ChildrenTrie())
	matches := a.ChildrenTrie().Lookup("b")
	assert.Len(t, matches, 2)

	require.NotNil(t, b2.ChildrenTrie())
	assert.Len(t, b2.ChildrenTrie().Lookup("c"), 2)

	require.NotNil(t, b2.AttrTrie())
	idMatches := b2.AttrTrie().Lookup("id")
	require.Len(t, idMatches, 1)
	assert.Equal(t, "2", idMatches[0].Value())
}

func TestFinalizeLeavesChildlessElementsUnindexed(t *testing.T) {
	doc := NewDocument()
	leaf := NewElement("leaf")
	doc.AppendChild(leaf)
	Finalize(doc)

	assert.Nil(t, leaf.ChildrenTrie())
	assert.Nil(t, leaf.AttrTrie())
	assert.Nil(t, leaf.ChildrenTrie().Lookup("anything"))
}

func TestDocumentCloseSeversLinks(t *testing.T) {
	doc, a, b2 := buildSample()
	Finalize(doc)

	require.NoError(t, doc.Close())

	assert.Nil(t, doc.FirstChild())
	assert.Nil(t, a.Parent())
	assert.Nil(t, a.FirstChild())
	assert.Nil(t, b2.Parent())
	assert.Nil(t, b2.FirstAttr())
	assert.Nil(t, b2.ChildrenTrie())
}

func TestDocumentCloseNilIsNoop(t *testing.T) {
	var doc *Document
	assert.NoError(t, doc.Close())
}
