package receipt

import (
	"bytes"
	"time"
)

// InAppReceipt is one in-app purchase record. A product purchased several
// times, such as a consumable, appears once per purchase.
type InAppReceipt struct {
	raw   []byte
	attrs []Attribute

	quantity                   *int64
	productID                  *string
	transactionID              *string
	originalTransactionID      *string
	purchaseDate               *time.Time
	originalPurchaseDate       *time.Time
	subscriptionExpirationDate *time.Time
	cancellationDate           *time.Time
	webOrderLineItemID         *int64
}

type inAppField func(r *InAppReceipt, a *Attribute)

var inAppFields = map[AttributeType]inAppField{
	TypeQuantity: func(r *InAppReceipt, a *Attribute) {
		r.quantity = intField(a)
	},
	TypeProductID: func(r *InAppReceipt, a *Attribute) {
		r.productID = textField(a)
	},
	TypeTransactionID: func(r *InAppReceipt, a *Attribute) {
		r.transactionID = textField(a)
	},
	TypeOriginalTransactionID: func(r *InAppReceipt, a *Attribute) {
		r.originalTransactionID = textField(a)
	},
	TypePurchaseDate: func(r *InAppReceipt, a *Attribute) {
		r.purchaseDate = dateField(a)
	},
	TypeOriginalPurchaseDate: func(r *InAppReceipt, a *Attribute) {
		r.originalPurchaseDate = dateField(a)
	},
	TypeSubscriptionExpirationDate: func(r *InAppReceipt, a *Attribute) {
		r.subscriptionExpirationDate = dateField(a)
	},
	TypeCancellationDate: func(r *InAppReceipt, a *Attribute) {
		r.cancellationDate = dateField(a)
	},
	TypeWebOrderLineItemID: func(r *InAppReceipt, a *Attribute) {
		r.webOrderLineItemID = intField(a)
	},
}

// ParseInAppReceipt decodes the payload of an in-app receipt attribute.
func ParseInAppReceipt(data []byte, opts ...Option) (*InAppReceipt, error) {
	return newInAppReceipt(data, newOptions(opts))
}

func newInAppReceipt(data []byte, o *options) (*InAppReceipt, error) {
	attrs, err := parseAttributes(data, o)
	if err != nil {
		return nil, err
	}
	r := &InAppReceipt{raw: bytes.Clone(data), attrs: attrs}
	for i := range r.attrs {
		a := &r.attrs[i]
		field, ok := inAppFields[a.Type()]
		if !ok {
			o.logger.Debugf("ignoring in-app attribute %s", a)
			continue
		}
		field(r, a)
	}
	return r, nil
}

func (r *InAppReceipt) Quantity() (int64, bool) {
	return deref(r.quantity)
}

func (r *InAppReceipt) ProductID() (string, bool) {
	return deref(r.productID)
}

func (r *InAppReceipt) TransactionID() (string, bool) {
	return deref(r.transactionID)
}

func (r *InAppReceipt) OriginalTransactionID() (string, bool) {
	return deref(r.originalTransactionID)
}

func (r *InAppReceipt) PurchaseDate() (time.Time, bool) {
	return deref(r.purchaseDate)
}

func (r *InAppReceipt) OriginalPurchaseDate() (time.Time, bool) {
	return deref(r.originalPurchaseDate)
}

// SubscriptionExpirationDate is only present for auto-renewable subscriptions.
func (r *InAppReceipt) SubscriptionExpirationDate() (time.Time, bool) {
	return deref(r.subscriptionExpirationDate)
}

// CancellationDate is only present for refunded or revoked purchases.
func (r *InAppReceipt) CancellationDate() (time.Time, bool) {
	return deref(r.cancellationDate)
}

func (r *InAppReceipt) WebOrderLineItemID() (int64, bool) {
	return deref(r.webOrderLineItemID)
}

// Raw returns the undecoded attribute set of this purchase record.
func (r *InAppReceipt) Raw() []byte {
	return r.raw
}

func (r *InAppReceipt) Attributes() []Attribute {
	return append([]Attribute(nil), r.attrs...)
}

func intField(a *Attribute) *int64 {
	n, ok := a.Int()
	if !ok {
		return nil
	}
	return &n
}

func dateField(a *Attribute) *time.Time {
	t, ok := a.Date()
	if !ok {
		return nil
	}
	return &t
}
