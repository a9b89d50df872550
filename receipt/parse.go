package receipt

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/vocdoni/gofirma/appreceipt/internal/der"
	"github.com/vocdoni/gofirma/appreceipt/log"
)

// ErrMalformedAttribute marks an attribute record that could not be decoded.
// Such records are skipped; the rest of the set is still returned.
var ErrMalformedAttribute = errors.New("malformed attribute")

// Option configures decoding.
type Option func(*options)

type options struct {
	logger log.Logger
}

// WithLogger reports skipped records and unknown attributes to logger.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{logger: log.Discard}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ParseAttributes decodes a DER SET of attribute SEQUENCEs. Framing errors in
// the SET itself abort the decode. A SEQUENCE whose fields cannot be decoded
// is skipped and decoding continues with its next sibling.
func ParseAttributes(data []byte, opts ...Option) ([]Attribute, error) {
	return parseAttributes(data, newOptions(opts))
}

func parseAttributes(data []byte, o *options) ([]Attribute, error) {
	r := der.NewReader(data)
	set, err := r.Expect(asn1.SET)
	if err != nil {
		return nil, fmt.Errorf("failed to read attribute set: %w", err)
	}
	if r.More() {
		o.logger.Debugf("ignoring %d bytes after attribute set", len(data)-r.Offset())
	}

	records, err := der.Enter(data, set)
	if err != nil {
		return nil, fmt.Errorf("failed to enter attribute set: %w", err)
	}

	var attrs []Attribute
	for records.More() {
		e, err := records.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to read attribute record: %w", err)
		}
		if !e.Is(asn1.SEQUENCE) {
			o.logger.Debugf("skipping non-sequence element %s at offset %d", e, e.Start)
			continue
		}
		attr, err := decodeAttribute(data, e)
		if err != nil {
			o.logger.Warnf("skipping attribute at offset %d: %v", e.Start, err)
			continue
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func decodeAttribute(data []byte, seq der.Element) (Attribute, error) {
	fields, err := der.Enter(data, seq)
	if err != nil {
		return Attribute{}, fmt.Errorf("%w: %w", ErrMalformedAttribute, err)
	}

	typeElem, err := fields.Expect(asn1.INTEGER)
	if err != nil {
		return Attribute{}, fmt.Errorf("%w: type: %w", ErrMalformedAttribute, err)
	}
	typ, err := der.ParseInt64(typeElem.Content(data))
	if err != nil {
		return Attribute{}, fmt.Errorf("%w: type: %w", ErrMalformedAttribute, err)
	}

	versionElem, err := fields.Expect(asn1.INTEGER)
	if err != nil {
		return Attribute{}, fmt.Errorf("%w: version: %w", ErrMalformedAttribute, err)
	}
	version, err := der.ParseInt64(versionElem.Content(data))
	if err != nil {
		return Attribute{}, fmt.Errorf("%w: version: %w", ErrMalformedAttribute, err)
	}

	value, err := fields.Expect(asn1.OCTET_STRING)
	if err != nil {
		return Attribute{}, fmt.Errorf("%w: value: %w", ErrMalformedAttribute, err)
	}

	return NewAttribute(AttributeType(typ), int(version), value.Content(data)), nil
}
