package receipt

import (
	"bytes"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/vocdoni/gofirma/appreceipt/internal/der"
)

// AttributeType identifies the meaning of an attribute value.
type AttributeType int

const (
	TypeBundleID                   AttributeType = 2
	TypeApplicationVersion         AttributeType = 3
	TypeOpaqueValue                AttributeType = 4
	TypeSHA1Hash                   AttributeType = 5
	TypeInAppReceipt               AttributeType = 17
	TypeOriginalApplicationVersion AttributeType = 19

	TypeQuantity                   AttributeType = 1701
	TypeProductID                  AttributeType = 1702
	TypeTransactionID              AttributeType = 1703
	TypePurchaseDate               AttributeType = 1704
	TypeOriginalTransactionID      AttributeType = 1705
	TypeOriginalPurchaseDate       AttributeType = 1706
	TypeSubscriptionExpirationDate AttributeType = 1708
	TypeWebOrderLineItemID         AttributeType = 1711
	TypeCancellationDate           AttributeType = 1712
)

var typeNames = map[AttributeType]string{
	TypeBundleID:                   "bundle_id",
	TypeApplicationVersion:         "application_version",
	TypeOpaqueValue:                "opaque_value",
	TypeSHA1Hash:                   "sha1_hash",
	TypeInAppReceipt:               "in_app",
	TypeOriginalApplicationVersion: "original_application_version",
	TypeQuantity:                   "quantity",
	TypeProductID:                  "product_id",
	TypeTransactionID:              "transaction_id",
	TypePurchaseDate:               "purchase_date",
	TypeOriginalTransactionID:      "original_transaction_id",
	TypeOriginalPurchaseDate:       "original_purchase_date",
	TypeSubscriptionExpirationDate: "expires_date",
	TypeWebOrderLineItemID:         "web_order_line_item_id",
	TypeCancellationDate:           "cancellation_date",
}

func (t AttributeType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "type_" + strconv.Itoa(int(t))
}

// Attribute is one (type, version, value) record. The value is kept
// undecoded; the typed accessors interpret it on every call and report
// false when it does not hold the expected inner encoding.
type Attribute struct {
	typ     AttributeType
	version int
	value   []byte
}

// NewAttribute returns an Attribute holding a copy of value.
func NewAttribute(typ AttributeType, version int, value []byte) Attribute {
	return Attribute{
		typ:     typ,
		version: version,
		value:   bytes.Clone(value),
	}
}

func (a Attribute) Type() AttributeType {
	return a.typ
}

func (a Attribute) Version() int {
	return a.version
}

// Bytes returns the raw OCTET STRING content. The slice must not be modified.
func (a Attribute) Bytes() []byte {
	return a.value
}

// Text decodes the value as a UTF8String or IA5String.
func (a Attribute) Text() (string, bool) {
	e, ok := a.inner()
	if !ok || !(e.Is(asn1.UTF8String) || e.Is(asn1.IA5String)) {
		return "", false
	}
	return string(e.Content(a.value)), true
}

// Date decodes the value as an IA5String holding an RFC 3339 timestamp.
func (a Attribute) Date() (time.Time, bool) {
	e, ok := a.inner()
	if !ok || !e.Is(asn1.IA5String) || e.Length == 0 {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, string(e.Content(a.value)))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Integer decodes the value as an INTEGER of any size.
func (a Attribute) Integer() (*big.Int, bool) {
	e, ok := a.inner()
	if !ok || !e.Is(asn1.INTEGER) {
		return nil, false
	}
	n, err := der.ParseInteger(e.Content(a.value))
	if err != nil {
		return nil, false
	}
	return n, true
}

// Int is Integer for values that fit an int64.
func (a Attribute) Int() (int64, bool) {
	n, ok := a.Integer()
	if !ok || !n.IsInt64() {
		return 0, false
	}
	return n.Int64(), true
}

func (a Attribute) String() string {
	return fmt.Sprintf("%s(v%d, %d bytes)", a.typ, a.version, len(a.value))
}

// inner decodes the single element the value is expected to hold. Trailing
// bytes after it mean the value is not a plain typed element.
func (a Attribute) inner() (der.Element, bool) {
	e, next, err := der.Read(a.value, 0)
	if err != nil || next != len(a.value) {
		return der.Element{}, false
	}
	return e, true
}
