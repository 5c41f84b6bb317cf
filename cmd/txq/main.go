// Command txq is a small command-line front end for loading an XML
// document and either printing its parsed tree or running a path
// query against it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyxpath/tinyxpath"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "txq",
		Short:         "Load and query XML documents with a small XPath subset",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newTreeCmd(), newQueryCmd())
	return root
}

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <file>",
		Short: "Print the parsed document tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := tinyxpath.LoadFile(args[0])
			if err != nil {
				return fmt.Errorf("txq: %w", err)
			}
			defer doc.Close()
			printDocument(cmd.OutOrStdout(), doc)
			return nil
		},
	}
}

func newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <file> <xpath-expr>",
		Short: "Evaluate a path expression against a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := tinyxpath.LoadFile(args[0])
			if err != nil {
				return fmt.Errorf("txq: %w", err)
			}
			defer doc.Close()

			matches, err := tinyxpath.Query(doc, args[1])
			if err != nil {
				return fmt.Errorf("txq: %w", err)
			}
			printMatches(cmd.OutOrStdout(), matches)
			return nil
		},
	}
}
