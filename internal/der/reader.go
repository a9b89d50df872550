package der

import (
	"fmt"
	"math/big"

	"golang.org/x/crypto/cryptobyte/asn1"
)

// Reader walks the sibling elements of buf[pos:end].
type Reader struct {
	buf []byte
	pos int
	end int
}

// NewReader returns a Reader over every top-level element of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf, end: len(buf)}
}

// Enter returns a Reader over the children of a constructed element.
func Enter(buf []byte, parent Element) (*Reader, error) {
	if !parent.Constructed() {
		return nil, fmt.Errorf("%w: cannot enter primitive element %s", ErrUnsupportedTag, parent)
	}
	if parent.Start < 0 || parent.End() > len(buf) {
		return nil, fmt.Errorf("%w: element %s exceeds %d byte buffer", ErrTruncatedBuffer, parent, len(buf))
	}
	return &Reader{buf: buf, pos: parent.Start, end: parent.End()}, nil
}

// More reports whether unread elements remain.
func (r *Reader) More() bool {
	return r.pos < r.end
}

// Offset returns the offset of the next unread element.
func (r *Reader) Offset() int {
	return r.pos
}

// Next decodes the next sibling. Elements may not extend past the bounds of
// the enclosing element.
func (r *Reader) Next() (Element, error) {
	e, next, err := readBounded(r.buf, r.pos, r.end)
	if err != nil {
		return Element{}, err
	}
	r.pos = next
	return e, nil
}

// Expect decodes the next sibling and requires it to carry tag. The reader
// does not advance when the tag does not match.
func (r *Reader) Expect(tag asn1.Tag) (Element, error) {
	e, next, err := readBounded(r.buf, r.pos, r.end)
	if err != nil {
		return Element{}, err
	}
	if !e.Is(tag) {
		return Element{}, fmt.Errorf("%w: want identifier %#02x, got %s", ErrUnsupportedTag, byte(tag), e)
	}
	r.pos = next
	return e, nil
}

// Children decodes every child of a constructed element in order.
func Children(buf []byte, parent Element) ([]Element, error) {
	r, err := Enter(buf, parent)
	if err != nil {
		return nil, err
	}
	var out []Element
	for r.More() {
		e, err := r.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// ParseInteger decodes INTEGER content as a two's-complement big-endian
// number.
func ParseInteger(content []byte) (*big.Int, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty content", ErrMalformedInteger)
	}
	n := new(big.Int).SetBytes(content)
	if content[0]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(len(content))*8))
	}
	return n, nil
}

// ParseInt64 is ParseInteger restricted to values that fit an int64.
func ParseInt64(content []byte) (int64, error) {
	n, err := ParseInteger(content)
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() {
		return 0, fmt.Errorf("%w: %d bytes overflow int64", ErrMalformedInteger, len(content))
	}
	return n.Int64(), nil
}
