// Package reader provides a byte-at-a-time reader with single-byte
// pushback, used by the parser to implement its hand-rolled state
// machines without needing to buffer the whole document up front.
package reader

import (
	"bufio"
	"io"
)

// EOF is the sentinel value returned by Next and Peek once the
// underlying stream is exhausted. It is distinct from every valid
// byte value, so callers never confuse it with real input.
const EOF = -1

// Reader is a peekable byte stream with one byte of pushback.
//
// Only one character of pushback is ever available at a time; a
// second Pushback before an intervening Next panics, since no parser
// state machine in the parser package needs more than that.
type Reader struct {
	br      *bufio.Reader
	pending int // pushed-back byte, or -2 when empty
	eof     bool
}

const noPending = -2

// New wraps r in a Reader.
func New(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r), pending: noPending}
}

// Next consumes and returns the next byte, or EOF at end of stream.
func (rd *Reader) Next() int {
	if rd.pending != noPending {
		c := rd.pending
		rd.pending = noPending
		return c
	}
	if rd.eof {
		return EOF
	}
	b, err := rd.br.ReadByte()
	if err != nil {
		rd.eof = true
		return EOF
	}
	return int(b)
}

// Peek returns the next byte without consuming it, or EOF.
func (rd *Reader) Peek() int {
	c := rd.Next()
	if c != EOF {
		rd.Pushback(c)
	}
	return c
}

// Pushback returns c to the stream so the next Next/Peek call sees it
// again. Pushback of EOF is a no-op, matching the contract that
// end-of-stream is not a byte that can be replayed.
func (rd *Reader) Pushback(c int) {
	if c == EOF {
		return
	}
	if rd.pending != noPending {
		panic("reader: pushback slot already occupied")
	}
	rd.pending = c
}

// SkipWhitespace advances past a run of ASCII whitespace, leaving the
// next non-space byte (or EOF) available via Peek.
func (rd *Reader) SkipWhitespace() {
	for {
		c := rd.Next()
		if c == EOF {
			return
		}
		if !isSpace(byte(c)) {
			rd.Pushback(c)
			return
		}
	}
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}
