// Package parser implements a hand-rolled, recursive-descent XML
// reader over reader.Reader, building a tree.Document. It deliberately
// does not use encoding/xml: the data model and the trie index built
// on top of it need full control over node identity and ordering, the
// same way the teacher's own parser bypasses encoding/xml in favor of
// a parser tied directly to its tree type.
package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/tinyxpath/tinyxpath/reader"
	"github.com/tinyxpath/tinyxpath/tree"
)

// tagState is the outcome of reading one tag header, mirroring the
// OPEN_TAG/CLOSE_TAG/ISOLATED_TAG/OTHER_TAG states of the original
// read_tag state machine.
type tagState int

const (
	tagOpen tagState = iota
	tagClose
	tagIsolated
	tagOther
)

// Parser reads XML from a byte stream and builds a tree.Document.
// Comments, DOCTYPE declarations and processing instructions are
// skipped opaquely by counting '<'/'>' nesting depth rather than being
// properly tokenized; a literal '>' inside a comment (e.g.
// "<!-- a > b -->") closes it early, and a literal '<' makes the skip
// run past the comment's real end. This mirrors a known
// shortcut in the reference implementation rather than fixing it.
type Parser struct {
	rd     *reader.Reader
	pos    int
	recent []byte
	log    hclog.Logger
}

// New wraps r in a Parser. A nil logger falls back to a no-op logger,
// so callers that don't care about tracing never pay for it.
func New(r io.Reader, logger hclog.Logger) *Parser {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Parser{rd: reader.New(r), log: logger}
}

// Parse reads a complete document from r and post-processes it
// (building the per-element tries) before returning.
func Parse(r io.Reader, logger hclog.Logger) (*tree.Document, error) {
	p := New(r, logger)
	doc := tree.NewDocument()
	if err := p.readXML(doc, "", true); err != nil {
		return nil, p.wrapError(err)
	}
	tree.Finalize(doc)
	p.log.Debug("parsed document", "bytes", p.pos)
	return doc, nil
}

func (p *Parser) next() int {
	c := p.rd.Next()
	if c != reader.EOF {
		p.pos++
		p.recent = append(p.recent, byte(c))
		if len(p.recent) > 40 {
			p.recent = p.recent[1:]
		}
	}
	return c
}

func (p *Parser) pushback(c int) {
	if c == reader.EOF {
		return
	}
	p.rd.Pushback(c)
	p.pos--
	if len(p.recent) > 0 {
		p.recent = p.recent[:len(p.recent)-1]
	}
}

func (p *Parser) skipSpace() {
	for {
		c := p.next()
		if c == reader.EOF {
			return
		}
		if !isSpaceByte(c) {
			p.pushback(c)
			return
		}
	}
}

func isSpaceByte(c int) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

// readXML parses the contents of into (an already-opened element, or
// the document at the top level) until it hits a matching close tag
// or, at the root, end of input.
func (p *Parser) readXML(into tree.Container, containerName string, root bool) error {
	for {
		p.skipSpace()
		c := p.next()
		if c == reader.EOF {
			if root {
				return nil
			}
			return fmt.Errorf("unexpected end of input, expected closing tag for %q", containerName)
		}
		if c != '<' {
			p.pushback(c)
			val, err := p.readValue()
			if err != nil {
				return err
			}
			if elem, ok := into.(*tree.Element); ok {
				elem.SetValue(elem.Value() + val)
			}
			continue
		}

		state, son, err := p.readTag(containerName)
		if err != nil {
			return err
		}
		switch state {
		case tagOpen:
			into.AppendChild(son)
			p.log.Debug("opened tag", "name", son.Name(), "bytes", p.pos)
			if err := p.readXML(son, son.Name(), false); err != nil {
				return err
			}
		case tagClose:
			p.log.Debug("closed tag", "name", containerName, "bytes", p.pos)
			if root {
				return fmt.Errorf("unexpected closing tag at document level")
			}
			return nil
		case tagIsolated:
			into.AppendChild(son)
			p.log.Debug("isolated tag", "name", son.Name(), "bytes", p.pos)
		case tagOther:
			// comment, DOCTYPE or processing instruction: discarded
		}
	}
}

// readTag parses everything between an already-consumed '<' and the
// end of the tag header (its closing '>' or "/>"), for either an
// opening, closing or self-closing element tag, or a special tag
// (comment/DOCTYPE/PI) which is skipped whole.
func (p *Parser) readTag(expectedCloseName string) (tagState, *tree.Element, error) {
	c := p.next()
	if c == reader.EOF {
		return 0, nil, fmt.Errorf("unexpected end of input after '<'")
	}

	if c == '?' || c == '!' {
		if err := p.skipSpecialTag(); err != nil {
			return 0, nil, err
		}
		return tagOther, nil, nil
	}

	closeTag := false
	if c == '/' {
		closeTag = true
	} else {
		p.pushback(c)
	}

	p.skipSpace()
	c = p.next()
	if c == '>' {
		return 0, nil, fmt.Errorf("empty tag name")
	}

	var b strings.Builder
	for c != '>' && c != '/' && !isSpaceByte(c) {
		if c == reader.EOF {
			return 0, nil, fmt.Errorf("unexpected end of input in tag name")
		}
		b.WriteByte(byte(c))
		c = p.next()
	}
	name := b.String()

	if closeTag {
		if c == '/' || name != expectedCloseName {
			return 0, nil, fmt.Errorf("mismatched closing tag %q, expected %q", name, expectedCloseName)
		}
		if c != '>' {
			p.skipSpace()
			if p.next() != '>' {
				return 0, nil, fmt.Errorf("expected '>' after closing tag %q", name)
			}
		}
		return tagClose, nil, nil
	}

	p.pushback(c)
	elem := tree.NewElement(name)
	state, err := p.readAttrs(elem)
	if err != nil {
		return 0, nil, err
	}
	return state, elem, nil
}

// readAttrs parses zero or more name="value" pairs up to the tag's
// closing '>' or "/>".
func (p *Parser) readAttrs(elem *tree.Element) (tagState, error) {
	for {
		p.skipSpace()
		c := p.next()
		if c == reader.EOF || c == '=' {
			return 0, fmt.Errorf("unexpected %q while reading attributes of %q", rune(c), elem.Name())
		}
		if c == '/' {
			p.skipSpace()
			if p.next() != '>' {
				return 0, fmt.Errorf("expected '>' after '/' in tag %q", elem.Name())
			}
			return tagIsolated, nil
		}
		if c == '>' {
			return tagOpen, nil
		}
		p.pushback(c)

		name, err := p.readAttrName()
		if err != nil {
			return 0, err
		}
		c = p.next()
		if c != '=' {
			return 0, fmt.Errorf("expected '=' after attribute name %q", name)
		}
		p.skipSpace()
		value, err := p.readAttrValue()
		if err != nil {
			return 0, err
		}
		elem.AppendAttr(tree.NewAttribute(name, value))
	}
}

func (p *Parser) readAttrName() (string, error) {
	var b strings.Builder
	for {
		c := p.next()
		if c == reader.EOF {
			return "", fmt.Errorf("unexpected end of input in attribute name")
		}
		if c == '=' || isSpaceByte(c) {
			p.pushback(c)
			break
		}
		b.WriteByte(byte(c))
	}
	p.skipSpace()
	return b.String(), nil
}

// readAttrValue reads a single- or double-quoted attribute value. No
// entity decoding is performed; "&amp;" is stored verbatim.
func (p *Parser) readAttrValue() (string, error) {
	q := p.next()
	if q != '\'' && q != '"' {
		return "", fmt.Errorf("expected a quote to start attribute value, got %q", rune(q))
	}
	var b strings.Builder
	for {
		c := p.next()
		if c == reader.EOF {
			return "", fmt.Errorf("unexpected end of input in attribute value")
		}
		if c == q {
			break
		}
		b.WriteByte(byte(c))
	}
	return strings.TrimRight(b.String(), " \t\n\r\v\f"), nil
}

// readValue reads element text content up to (not including) the next
// '<'. No entity decoding is performed.
func (p *Parser) readValue() (string, error) {
	var b strings.Builder
	for {
		c := p.next()
		if c == reader.EOF {
			return "", fmt.Errorf("unexpected end of input in element text")
		}
		if c == '<' {
			p.pushback(c)
			break
		}
		b.WriteByte(byte(c))
	}
	return strings.TrimRight(b.String(), " \t\n\r\v\f"), nil
}

// skipSpecialTag consumes a comment, DOCTYPE declaration or processing
// instruction body by counting '<'/'>' nesting, starting from just
// after the leading "<!" or "<?". It does not understand quoted
// strings or CDATA sections, so a stray '>' inside one closes the tag
// early and a stray '<' makes the skip continue past the tag's real
// end; this is a known, intentionally unfixed limitation.
func (p *Parser) skipSpecialTag() error {
	start := p.pos
	open := 1
	for open > 0 {
		c := p.next()
		switch c {
		case '<':
			open++
		case '>':
			open--
		case reader.EOF:
			return fmt.Errorf("unexpected end of input inside comment, DOCTYPE or processing instruction")
		}
	}
	p.log.Warn("skipped special tag", "start", start, "bytes", p.pos)
	return nil
}

func (p *Parser) wrapError(err error) error {
	return fmt.Errorf("parser: %w near byte %d: %q", err, p.pos, string(p.recent))
}
