// Package der walks DER-encoded tag-length-value elements.
//
// It only decodes framing: callers enter constructed elements explicitly and
// interpret primitive contents themselves. Elements carry offsets into the
// caller's buffer; nothing is copied.
package der

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/cryptobyte/asn1"
)

var (
	ErrTruncatedBuffer  = errors.New("der: truncated buffer")
	ErrMalformedLength  = errors.New("der: malformed length")
	ErrUnsupportedTag   = errors.New("der: unsupported tag")
	ErrMalformedInteger = errors.New("der: malformed integer")
)

const (
	classMask       = 0xC0
	constructedMask = 0x20
	tagMask         = 0x1F

	// maxTagBytes bounds high-tag-number continuation bytes.
	maxTagBytes = 4
	// maxLengthBytes keeps long-form lengths within an int.
	maxLengthBytes = 8
)

// Element is one decoded TLV header. Start and Length locate the content
// bytes in the buffer the element was read from.
type Element struct {
	// Identifier is the first tag byte: class, constructed bit and the low
	// tag bits.
	Identifier byte
	Tag        int
	Start      int
	Length     int
}

func (e Element) Class() byte {
	return e.Identifier & classMask
}

func (e Element) Constructed() bool {
	return e.Identifier&constructedMask != 0
}

// End returns the offset of the next sibling.
func (e Element) End() int {
	return e.Start + e.Length
}

// Is reports whether the element carries the given identifier. Only
// low-tag-number identifiers can match.
func (e Element) Is(tag asn1.Tag) bool {
	return e.Tag < tagMask && e.Identifier == byte(tag)
}

// Content returns the content bytes of e within buf.
func (e Element) Content(buf []byte) []byte {
	return buf[e.Start:e.End()]
}

func (e Element) String() string {
	class := "U"
	switch e.Class() {
	case 0x40:
		class = "A"
	case 0x80:
		class = "C"
	case 0xC0:
		class = "P"
	}
	form := "p"
	if e.Constructed() {
		form = "c"
	}
	return fmt.Sprintf("[%s %d]/%s:%d", class, e.Tag, form, e.Length)
}

// Read decodes the element at offset and returns it together with the offset
// of its next sibling.
func Read(buf []byte, offset int) (Element, int, error) {
	return readBounded(buf, offset, len(buf))
}

type parser struct {
	b   []byte
	pos int
}

func readBounded(buf []byte, offset, limit int) (Element, int, error) {
	if limit > len(buf) || offset < 0 || offset >= limit {
		return Element{}, offset, fmt.Errorf("%w: no element at offset %d", ErrTruncatedBuffer, offset)
	}
	p := &parser{b: buf[:limit], pos: offset}

	id, number, err := p.readTag()
	if err != nil {
		return Element{}, offset, err
	}
	length, err := p.readLength()
	if err != nil {
		return Element{}, offset, fmt.Errorf("element at offset %d: %w", offset, err)
	}

	e := Element{Identifier: id, Tag: number, Start: p.pos, Length: length}
	return e, e.End(), nil
}

func (p *parser) readTag() (byte, int, error) {
	if p.remaining() < 1 {
		return 0, 0, fmt.Errorf("%w: missing tag", ErrTruncatedBuffer)
	}
	first := p.b[p.pos]
	p.pos++

	if first&tagMask != tagMask {
		return first, int(first & tagMask), nil
	}

	// High-tag-number form: base-128, high bit marks continuation.
	number := 0
	for i := 0; ; i++ {
		if i == maxTagBytes {
			return 0, 0, fmt.Errorf("%w: tag number too large", ErrUnsupportedTag)
		}
		if p.remaining() < 1 {
			return 0, 0, fmt.Errorf("%w: truncated long-form tag", ErrTruncatedBuffer)
		}
		b := p.b[p.pos]
		p.pos++
		number = number<<7 | int(b&0x7F)
		if b&0x80 == 0 {
			break
		}
	}
	return first, number, nil
}

func (p *parser) readLength() (int, error) {
	if p.remaining() < 1 {
		return 0, fmt.Errorf("%w: missing length", ErrTruncatedBuffer)
	}
	first := p.b[p.pos]
	p.pos++

	if first < 0x80 {
		if int(first) > p.remaining() {
			return 0, fmt.Errorf("%w: declared length %d, %d remain", ErrTruncatedBuffer, first, p.remaining())
		}
		return int(first), nil
	}

	n := int(first & 0x7F)
	if n == 0 {
		return 0, fmt.Errorf("%w: indefinite length", ErrMalformedLength)
	}
	if n > p.remaining() {
		return 0, fmt.Errorf("%w: %d length bytes, %d remain", ErrMalformedLength, n, p.remaining())
	}
	if n > maxLengthBytes {
		return 0, fmt.Errorf("%w: %d length bytes", ErrMalformedLength, n)
	}

	var length uint64
	for i := 0; i < n; i++ {
		length = length<<8 | uint64(p.b[p.pos])
		p.pos++
	}
	if length > uint64(p.remaining()) {
		return 0, fmt.Errorf("%w: declared length %d, %d remain", ErrTruncatedBuffer, length, p.remaining())
	}
	return int(length), nil
}

func (p *parser) remaining() int {
	return len(p.b) - p.pos
}
