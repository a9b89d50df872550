package receipt

import (
	"bytes"
	"crypto/sha1"
	"fmt"

	"github.com/google/uuid"
)

// ParseDeviceIdentifier converts a device identifier such as the value of
// identifierForVendor into the 16 bytes the receipt hash is computed over.
func ParseDeviceIdentifier(s string) ([]byte, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid device identifier: %w", err)
	}
	return id[:], nil
}

// ComputeHash returns SHA-1(deviceID || opaque value || bundle id), where the
// last two are the raw attribute values. It reports false when the receipt
// lacks either attribute.
func (r *Receipt) ComputeHash(deviceID []byte) ([]byte, bool) {
	if r.opaqueValue == nil || r.bundleID == nil {
		return nil, false
	}
	h := sha1.New()
	h.Write(deviceID)
	h.Write(r.opaqueValue.Bytes())
	h.Write(r.bundleID.Bytes())
	return h.Sum(nil), true
}

// VerifyHash reports whether the receipt's SHA-1 hash attribute was issued
// for deviceID.
func (r *Receipt) VerifyHash(deviceID []byte) bool {
	want, ok := r.SHA1Hash()
	if !ok {
		return false
	}
	got, ok := r.ComputeHash(deviceID)
	return ok && bytes.Equal(got, want)
}
