package tinyxpath

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyxpath/tinyxpath/tree"
)

func names(nodes []tree.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name()
	}
	return out
}

// assertNames compares a query's name sequence against want, by document
// position, with cmp.Diff so a mismatched axis result set (wrong order,
// missing duplicate, stray dedup) reports exactly where it diverges.
func assertNames(t *testing.T, want []string, got []tree.Node) {
	t.Helper()
	if diff := cmp.Diff(want, names(got)); diff != "" {
		t.Errorf("node names mismatch (-want +got):\n%s", diff)
	}
}

func sample(t *testing.T) *tree.Document {
	t.Helper()
	doc, err := Load(strings.NewReader(`<a><b id="1"><c/></b><b id="2"><c/><c/></b></a>`))
	require.NoError(t, err)
	return doc
}

func TestQueryChildAxisFromDocument(t *testing.T) {
	doc := sample(t)
	got, err := Query(doc, "/a")
	require.NoError(t, err)
	assertNames(t, []string{"a"}, got)
}

func TestQueryChildAxisTrieBacked(t *testing.T) {
	doc := sample(t)
	got, err := Query(doc, "/a/b")
	require.NoError(t, err)
	assertNames(t, []string{"b", "b"}, got)
}

func TestQueryChildWildcard(t *testing.T) {
	doc := sample(t)
	got, err := Query(doc, "/a/*")
	require.NoError(t, err)
	assertNames(t, []string{"b", "b"}, got)
}

func TestQueryAttributeAxis(t *testing.T) {
	doc := sample(t)
	got, err := Query(doc, "/a/b/@id")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Value())
	assert.Equal(t, "2", got[1].Value())
}

func TestQueryDescendantOrSelfFindsEveryMatchInDocumentOrder(t *testing.T) {
	doc := sample(t)
	got, err := Query(doc, "//c")
	require.NoError(t, err)
	assertNames(t, []string{"c", "c", "c"}, got)
}

func TestQueryParentAxisDedupsSharedParent(t *testing.T) {
	doc := sample(t)
	// Three c elements total, two of them sharing the second b as their
	// parent; the shared parent must collapse to a single result
	// instead of being emitted twice.
	got, err := Query(doc, "/a/b/c/..*")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assertNames(t, []string{"b", "b"}, got)
}

func TestQueryAncestorAxisEmitsRootFirst(t *testing.T) {
	doc := sample(t)
	roots, err := Query(doc, "/a")
	require.NoError(t, err)
	require.Len(t, roots, 1)
	bNodes, err := Query(roots[0], "/b[2]/c")
	require.NoError(t, err)
	require.NotEmpty(t, bNodes)

	got, err := Query(bNodes[0], "/ancestor::*")
	require.NoError(t, err)
	assertNames(t, []string{"a", "b"}, got)
}

func TestQueryAncestorOrSelfIncludesContextNode(t *testing.T) {
	doc := sample(t)
	roots, err := Query(doc, "/a")
	require.NoError(t, err)
	bNodes, err := Query(roots[0], "/b[2]/c")
	require.NoError(t, err)
	require.NotEmpty(t, bNodes)

	got, err := Query(bNodes[0], "/ancestor-or-self::*")
	require.NoError(t, err)
	assertNames(t, []string{"a", "b", "c"}, got)
}

func TestQueryFollowingSiblingAndPrecedingSibling(t *testing.T) {
	doc := sample(t)
	bs, err := Query(doc, "/a/b")
	require.NoError(t, err)
	require.Len(t, bs, 2)

	following, err := Query(bs[0], "/following-sibling::*")
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "2", following[0].(*tree.Element).FirstAttr().Value())

	preceding, err := Query(bs[1], "/preceding-sibling::*")
	require.NoError(t, err)
	require.Len(t, preceding, 1)
	assert.Equal(t, "1", preceding[0].(*tree.Element).FirstAttr().Value())
}

func TestQueryFollowingAndPreceding(t *testing.T) {
	doc := sample(t)
	bs, err := Query(doc, "/a/b")
	require.NoError(t, err)
	require.Len(t, bs, 2)

	following, err := Query(bs[0], "/following::*")
	require.NoError(t, err)
	// second b plus its two c children.
	assertNames(t, []string{"b", "c", "c"}, following)

	preceding, err := Query(bs[1], "/preceding::*")
	require.NoError(t, err)
	// first b and its one c child.
	assertNames(t, []string{"b", "c"}, preceding)
}

func TestQueryNamespaceAxisIsAlwaysEmpty(t *testing.T) {
	doc := sample(t)
	got, err := Query(doc, "/a/namespace::*")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQuerySelfAxis(t *testing.T) {
	doc := sample(t)
	roots, err := Query(doc, "/a")
	require.NoError(t, err)
	got, err := Query(roots[0], "/.a")
	require.NoError(t, err)
	assertNames(t, []string{"a"}, got)
}

func TestQueryNilContextErrors(t *testing.T) {
	_, err := Query(nil, "/a")
	assert.Error(t, err)
}

func TestQueryPredicateBracketsAreSkipped(t *testing.T) {
	doc := sample(t)
	got, err := Query(doc, "/a/b[@id='2']/c")
	require.NoError(t, err)
	// predicates aren't evaluated, so both b elements' c children match.
	assertNames(t, []string{"c", "c", "c"}, got)
}

func TestQueryChainedAbbreviatedSteps(t *testing.T) {
	doc := sample(t)
	// Mirrors the shape of the original reference query: abbreviated
	// steps always carry an explicit name or wildcard, never a bare
	// ".." or "//" with nothing after it.
	got, err := Query(doc, "//c/..*/..*")
	require.NoError(t, err)
	assertNames(t, []string{"a"}, got)
}
