package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/tinyxpath/tinyxpath/tree"
)

var (
	elementColor   = color.New(color.FgGreen, color.Bold)
	attributeColor = color.New(color.FgYellow)
)

// printDocument walks doc's top-level elements and prints the whole
// tree using the same box-drawing shape as xtree's TextEncoder,
// adapted for a tree whose nodes carry attributes as a second,
// parallel child list rather than as ordinary children.
func printDocument(w io.Writer, doc *tree.Document) {
	children := doc.Children()
	for i, c := range children {
		printElement(w, "", c, i == len(children)-1)
	}
}

func printElement(w io.Writer, prefix string, e *tree.Element, last bool) {
	fmt.Fprintf(w, "%s%s%s\n", prefix, branch(last, hasContent(e)), elementLabel(e))

	childPrefix := prefix + indent(last)

	attrs := e.Attributes()
	children := e.Children()
	for i, a := range attrs {
		isLast := i == len(attrs)-1 && len(children) == 0
		fmt.Fprintf(w, "%s%s%s\n", childPrefix, branch(isLast, false), attributeLabel(a))
	}
	for i, c := range children {
		printElement(w, childPrefix, c, i == len(children)-1)
	}
}

func hasContent(e *tree.Element) bool {
	return e.FirstAttr() != nil || e.FirstChild() != nil
}

func branch(last, opensChildren bool) string {
	var b string
	if last {
		b = "└──"
	} else {
		b = "├──"
	}
	if opensChildren {
		return b + "┐"
	}
	return b + "─"
}

func indent(last bool) string {
	if last {
		return "   "
	}
	return "│  "
}

func elementLabel(e *tree.Element) string {
	name := elementColor.Sprint(e.Name())
	if v := e.Value(); v != "" {
		return fmt.Sprintf("%s %q", name, v)
	}
	return name
}

func attributeLabel(a *tree.Attribute) string {
	return fmt.Sprintf("@%s=%q", attributeColor.Sprint(a.Name()), a.Value())
}

// printMatches prints one line per node in a query's result set: the
// full element or attribute name, and its text value when it has one.
func printMatches(w io.Writer, matches []tree.Node) {
	for _, n := range matches {
		switch v := n.(type) {
		case *tree.Element:
			fmt.Fprintln(w, elementLabel(v))
		case *tree.Attribute:
			fmt.Fprintln(w, attributeLabel(v))
		default:
			fmt.Fprintln(w, n.Name())
		}
	}
}
