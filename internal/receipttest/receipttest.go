// Package receipttest builds DER receipt payloads and signed PKCS#7 receipts
// for tests and sample tooling.
package receipttest

import (
	"time"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/vocdoni/gofirma/appreceipt/receipt"
)

// Attr is one attribute record. Value is the OCTET STRING content.
type Attr struct {
	Type    receipt.AttributeType
	Version int
	Value   []byte
}

// Set encodes attrs as a SET of SEQUENCE{INTEGER, INTEGER, OCTET STRING},
// keeping the given order.
func Set(attrs ...Attr) []byte {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(asn1.SET, func(b *cryptobyte.Builder) {
		for _, a := range attrs {
			b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
				b.AddASN1Int64(int64(a.Type))
				b.AddASN1Int64(int64(a.Version))
				b.AddASN1OctetString(a.Value)
			})
		}
	})
	return b.BytesOrPanic()
}

// Element encodes a single element with the given tag and content.
func Element(tag asn1.Tag, content []byte) []byte {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(tag, func(b *cryptobyte.Builder) {
		b.AddBytes(content)
	})
	return b.BytesOrPanic()
}

func UTF8(s string) []byte {
	return Element(asn1.UTF8String, []byte(s))
}

func IA5(s string) []byte {
	return Element(asn1.IA5String, []byte(s))
}

func Int(n int64) []byte {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1Int64(n)
	return b.BytesOrPanic()
}

// Date encodes t the way receipts carry dates: an IA5String in RFC 3339.
func Date(t time.Time) []byte {
	return IA5(t.UTC().Format(time.RFC3339))
}

// Purchase describes one in-app purchase record. Zero fields are omitted.
type Purchase struct {
	Quantity              int64
	ProductID             string
	TransactionID         string
	OriginalTransactionID string
	PurchaseDate          time.Time
	OriginalPurchaseDate  time.Time
	ExpiresDate           time.Time
	CancellationDate      time.Time
	WebOrderLineItemID    int64
}

func (p Purchase) Attrs() []Attr {
	var attrs []Attr
	add := func(typ receipt.AttributeType, value []byte) {
		attrs = append(attrs, Attr{Type: typ, Version: 1, Value: value})
	}
	if p.Quantity != 0 {
		add(receipt.TypeQuantity, Int(p.Quantity))
	}
	if p.ProductID != "" {
		add(receipt.TypeProductID, UTF8(p.ProductID))
	}
	if p.TransactionID != "" {
		add(receipt.TypeTransactionID, UTF8(p.TransactionID))
	}
	if p.OriginalTransactionID != "" {
		add(receipt.TypeOriginalTransactionID, UTF8(p.OriginalTransactionID))
	}
	if !p.PurchaseDate.IsZero() {
		add(receipt.TypePurchaseDate, Date(p.PurchaseDate))
	}
	if !p.OriginalPurchaseDate.IsZero() {
		add(receipt.TypeOriginalPurchaseDate, Date(p.OriginalPurchaseDate))
	}
	if !p.ExpiresDate.IsZero() {
		add(receipt.TypeSubscriptionExpirationDate, Date(p.ExpiresDate))
	}
	if !p.CancellationDate.IsZero() {
		add(receipt.TypeCancellationDate, Date(p.CancellationDate))
	}
	if p.WebOrderLineItemID != 0 {
		add(receipt.TypeWebOrderLineItemID, Int(p.WebOrderLineItemID))
	}
	return attrs
}

func (p Purchase) Bytes() []byte {
	return Set(p.Attrs()...)
}

// Receipt describes a top-level receipt payload. Empty fields are omitted.
type Receipt struct {
	BundleID                   string
	ApplicationVersion         string
	OriginalApplicationVersion string
	OpaqueValue                []byte
	SHA1Hash                   []byte
	Purchases                  []Purchase
	// Extra is appended after the known attributes.
	Extra []Attr
}

func (r Receipt) Attrs() []Attr {
	var attrs []Attr
	add := func(typ receipt.AttributeType, value []byte) {
		attrs = append(attrs, Attr{Type: typ, Version: 1, Value: value})
	}
	if r.BundleID != "" {
		add(receipt.TypeBundleID, UTF8(r.BundleID))
	}
	if r.ApplicationVersion != "" {
		add(receipt.TypeApplicationVersion, UTF8(r.ApplicationVersion))
	}
	if r.OpaqueValue != nil {
		add(receipt.TypeOpaqueValue, r.OpaqueValue)
	}
	if r.SHA1Hash != nil {
		add(receipt.TypeSHA1Hash, r.SHA1Hash)
	}
	for _, p := range r.Purchases {
		add(receipt.TypeInAppReceipt, p.Bytes())
	}
	if r.OriginalApplicationVersion != "" {
		add(receipt.TypeOriginalApplicationVersion, UTF8(r.OriginalApplicationVersion))
	}
	return append(attrs, r.Extra...)
}

func (r Receipt) Bytes() []byte {
	return Set(r.Attrs()...)
}
