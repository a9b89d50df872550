package envelope

import (
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocdoni/gofirma/appreceipt/internal/receipttest"
	"github.com/vocdoni/gofirma/appreceipt/receipt"
)

func signedFixture(t *testing.T) ([]byte, []byte, *x509.Certificate) {
	t.Helper()
	payload := receipttest.Receipt{
		BundleID:  "com.example.app",
		Purchases: []receipttest.Purchase{{ProductID: "sku1", Quantity: 1}},
	}.Bytes()
	cert, key, err := receipttest.SelfSigned("Receipt Test Signer")
	require.NoError(t, err)
	signed, err := receipttest.Sign(payload, cert, key)
	require.NoError(t, err)
	return signed, payload, cert
}

func TestOpen(t *testing.T) {
	signed, payload, cert := signedFixture(t)
	roots := x509.NewCertPool()
	roots.AddCert(cert)

	content, err := Open(signed, roots)
	require.NoError(t, err)
	assert.Equal(t, payload, content)

	r, err := receipt.Parse(content)
	require.NoError(t, err)
	assert.NotNil(t, r.ReceiptForProductID("sku1"))
}

func TestOpenUntrustedSigner(t *testing.T) {
	signed, _, _ := signedFixture(t)
	other, _, err := receipttest.SelfSigned("Someone Else")
	require.NoError(t, err)
	roots := x509.NewCertPool()
	roots.AddCert(other)

	_, err = Open(signed, roots)
	require.ErrorIs(t, err, ErrVerification)

	_, err = Open(signed, nil)
	require.ErrorIs(t, err, ErrNoRoots)
}

func TestOpenUnverified(t *testing.T) {
	signed, payload, _ := signedFixture(t)
	content, err := OpenUnverified(signed)
	require.NoError(t, err)
	assert.Equal(t, payload, content)

	_, err = OpenUnverified(payload)
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	signed, _, cert := signedFixture(t)
	dir := t.TempDir()

	receiptPath := filepath.Join(dir, "receipt")
	require.NoError(t, os.WriteFile(receiptPath, signed, 0600))
	data, err := Load(receiptPath)
	require.NoError(t, err)
	assert.Equal(t, signed, data)

	_, err = Load(filepath.Join(dir, "missing"))
	require.Error(t, err)

	rootsPath := filepath.Join(dir, "roots.pem")
	require.NoError(t, os.WriteFile(rootsPath, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw}), 0600))
	roots, err := LoadRoots(rootsPath)
	require.NoError(t, err)
	_, err = Open(data, roots)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(rootsPath, []byte("garbage"), 0600))
	_, err = LoadRoots(rootsPath)
	require.Error(t, err)
}
