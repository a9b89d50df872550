package receipt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/vocdoni/gofirma/appreceipt/internal/receipttest"
	"github.com/vocdoni/gofirma/appreceipt/receipt"
)

func TestAttributeInteger(t *testing.T) {
	tests := []struct {
		name  string
		value []byte
		want  int64
		ok    bool
	}{
		{name: "one", value: []byte{0x02, 0x01, 0x01}, want: 1, ok: true},
		{name: "minus one", value: []byte{0x02, 0x01, 0xFF}, want: -1, ok: true},
		{name: "two bytes", value: receipttest.Int(1702), want: 1702, ok: true},
		{name: "negative", value: receipttest.Int(-300), want: -300, ok: true},
		{name: "empty integer", value: []byte{0x02, 0x00}},
		{name: "string", value: receipttest.UTF8("1")},
		{name: "trailing bytes", value: []byte{0x02, 0x01, 0x01, 0x00}},
		{name: "truncated", value: []byte{0x02, 0x02, 0x01}},
		{name: "empty", value: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := receipt.NewAttribute(receipt.TypeQuantity, 1, tt.value).Int()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAttributeBigInteger(t *testing.T) {
	value := receipttest.Element(asn1.INTEGER, []byte{0x01, 0, 0, 0, 0, 0, 0, 0, 0})
	a := receipt.NewAttribute(receipt.TypeWebOrderLineItemID, 1, value)

	n, ok := a.Integer()
	require.True(t, ok)
	assert.Equal(t, "18446744073709551616", n.String())

	_, ok = a.Int()
	assert.False(t, ok)
}

func TestAttributeText(t *testing.T) {
	utf8, ok := receipt.NewAttribute(receipt.TypeBundleID, 1, receipttest.UTF8("com.example.äpp")).Text()
	require.True(t, ok)
	assert.Equal(t, "com.example.äpp", utf8)

	ia5, ok := receipt.NewAttribute(receipt.TypeBundleID, 1, receipttest.IA5("1.0")).Text()
	require.True(t, ok)
	assert.Equal(t, "1.0", ia5)

	_, ok = receipt.NewAttribute(receipt.TypeBundleID, 1, receipttest.Int(3)).Text()
	assert.False(t, ok)

	_, ok = receipt.NewAttribute(receipt.TypeBundleID, 1, []byte("plain")).Text()
	assert.False(t, ok)
}

func TestAttributeDate(t *testing.T) {
	want := time.Date(2013, 8, 1, 7, 0, 0, 0, time.UTC)

	got, ok := receipt.NewAttribute(receipt.TypePurchaseDate, 1, receipttest.Date(want)).Date()
	require.True(t, ok)
	assert.True(t, want.Equal(got))

	got, ok = receipt.NewAttribute(receipt.TypePurchaseDate, 1, receipttest.IA5("2013-08-01T07:00:00.250-05:00")).Date()
	require.True(t, ok)
	assert.Equal(t, 250*time.Millisecond, got.Sub(want.Add(5*time.Hour)))

	tests := map[string][]byte{
		"utf8 string": receipttest.UTF8("2013-08-01T07:00:00Z"),
		"unparseable": receipttest.IA5("yesterday"),
		"empty":       receipttest.IA5(""),
		"integer":     receipttest.Int(1375340400),
		"no element":  nil,
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			_, ok := receipt.NewAttribute(receipt.TypePurchaseDate, 1, value).Date()
			assert.False(t, ok)
		})
	}
}

func TestAttributeBytesAreCopied(t *testing.T) {
	value := []byte{0xDE, 0xAD}
	a := receipt.NewAttribute(receipt.TypeOpaqueValue, 2, value)
	value[0] = 0x00

	assert.Equal(t, []byte{0xDE, 0xAD}, a.Bytes())
	assert.Equal(t, receipt.TypeOpaqueValue, a.Type())
	assert.Equal(t, 2, a.Version())
	assert.Equal(t, "opaque_value(v2, 2 bytes)", a.String())
}

func TestAttributeTypeString(t *testing.T) {
	assert.Equal(t, "product_id", receipt.TypeProductID.String())
	assert.Equal(t, "type_1234", receipt.AttributeType(1234).String())
}
