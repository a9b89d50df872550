package receipt_test

import (
	"crypto/sha1"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocdoni/gofirma/appreceipt/internal/receipttest"
	"github.com/vocdoni/gofirma/appreceipt/receipt"
)

func TestVerifyHash(t *testing.T) {
	deviceID, err := receipt.ParseDeviceIdentifier("6F1A33C8-0C3A-4D5E-9A4B-5F0D4A3C2B1E")
	require.NoError(t, err)
	require.Len(t, deviceID, 16)

	opaque := []byte{0x10, 0x20, 0x30, 0x40}
	bundleValue := receipttest.UTF8("com.example.app")

	h := sha1.New()
	h.Write(deviceID)
	h.Write(opaque)
	h.Write(bundleValue)
	fixture := receipttest.Receipt{
		BundleID:    "com.example.app",
		OpaqueValue: opaque,
		SHA1Hash:    h.Sum(nil),
	}

	r, err := receipt.Parse(fixture.Bytes())
	require.NoError(t, err)
	assert.True(t, r.VerifyHash(deviceID))

	other, err := receipt.ParseDeviceIdentifier("00000000-0000-0000-0000-000000000001")
	require.NoError(t, err)
	assert.False(t, r.VerifyHash(other))
}

func TestVerifyHashMissingAttributes(t *testing.T) {
	deviceID := make([]byte, 16)

	r, err := receipt.Parse(receipttest.Receipt{BundleID: "com.example.app", SHA1Hash: make([]byte, 20)}.Bytes())
	require.NoError(t, err)
	_, ok := r.ComputeHash(deviceID)
	assert.False(t, ok)
	assert.False(t, r.VerifyHash(deviceID))

	r, err = receipt.Parse(receipttest.Receipt{BundleID: "com.example.app", OpaqueValue: []byte{1}}.Bytes())
	require.NoError(t, err)
	_, ok = r.ComputeHash(deviceID)
	assert.True(t, ok)
	assert.False(t, r.VerifyHash(deviceID))
}

func TestParseDeviceIdentifierInvalid(t *testing.T) {
	_, err := receipt.ParseDeviceIdentifier("not-a-uuid")
	require.Error(t, err)
}
