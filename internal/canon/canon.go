// Package canon encodes decode reports deterministically so equal receipts
// produce equal bytes.
package canon

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var cborMode cbor.EncMode

func init() {
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339
	mode, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("canon: invalid CBOR options: %v", err))
	}
	cborMode = mode
}

// Encode returns the canonical JSON encoding of v: struct field order, sorted
// map keys, no HTML escaping and no trailing newline.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("canonical encoding failed: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// EncodeCBOR returns the core deterministic CBOR encoding of v (RFC 8949
// section 4.2.1), with times as RFC 3339 text.
func EncodeCBOR(v any) ([]byte, error) {
	out, err := cborMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical CBOR encoding failed: %w", err)
	}
	return out, nil
}

// DecodeCBOR decodes data produced by EncodeCBOR.
func DecodeCBOR(data []byte, v any) error {
	if err := cbor.Unmarshal(data, v); err != nil {
		return fmt.Errorf("CBOR decoding failed: %w", err)
	}
	return nil
}
