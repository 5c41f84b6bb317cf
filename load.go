// Package tinyxpath loads XML documents into an in-memory tree
// indexed by a compressed trie at every element, and evaluates a
// small subset of XPath path expressions against it.
package tinyxpath

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"go.uber.org/multierr"

	"github.com/tinyxpath/tinyxpath/parser"
	"github.com/tinyxpath/tinyxpath/tree"
)

// loadConfig holds the options a Load call can be tuned with.
type loadConfig struct {
	logger hclog.Logger
}

// LoadOption customizes a Load or LoadFile call.
type LoadOption func(*loadConfig)

// WithLogger directs parse tracing to l instead of discarding it.
func WithLogger(l hclog.Logger) LoadOption {
	return func(c *loadConfig) { c.logger = l }
}

// Load parses an XML document from r and indexes it for querying.
func Load(r io.Reader, opts ...LoadOption) (*tree.Document, error) {
	cfg := &loadConfig{logger: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(cfg)
	}
	return parser.Parse(r, cfg.logger)
}

// LoadFile opens path and parses it as XML.
func LoadFile(path string, opts ...LoadOption) (doc *tree.Document, err error) {
	f, openErr := os.Open(path)
	if openErr != nil {
		return nil, openErr
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	return Load(f, opts...)
}
