// Package receipt decodes App Store receipt payloads.
//
// The payload is the content of the receipt's PKCS#7 envelope: a DER SET of
// (type, version, value) attribute records. Parse resolves the known top-level
// attributes into a Receipt and decodes every embedded in-app purchase record
// into an InAppReceipt. The signature is not checked here; see the envelope
// package.
//
// Decoding is a pure function of its input, so distinct payloads can be
// decoded from any number of goroutines.
package receipt

import (
	"fmt"
)

// Receipt is a read-only view of a decoded receipt payload. Accessors report
// false when the receipt carries no attribute of the requested type.
type Receipt struct {
	attrs []Attribute

	bundleID                   *Attribute
	applicationVersion         *string
	opaqueValue                *Attribute
	sha1Hash                   *Attribute
	originalApplicationVersion *string

	inApp []*InAppReceipt
}

type receiptField func(r *Receipt, a *Attribute, o *options)

var receiptFields = map[AttributeType]receiptField{
	TypeBundleID: func(r *Receipt, a *Attribute, _ *options) {
		r.bundleID = a
	},
	TypeApplicationVersion: func(r *Receipt, a *Attribute, _ *options) {
		r.applicationVersion = textField(a)
	},
	TypeOpaqueValue: func(r *Receipt, a *Attribute, _ *options) {
		r.opaqueValue = a
	},
	TypeSHA1Hash: func(r *Receipt, a *Attribute, _ *options) {
		r.sha1Hash = a
	},
	TypeOriginalApplicationVersion: func(r *Receipt, a *Attribute, _ *options) {
		r.originalApplicationVersion = textField(a)
	},
	TypeInAppReceipt: func(r *Receipt, a *Attribute, o *options) {
		iap, err := newInAppReceipt(a.Bytes(), o)
		if err != nil {
			o.logger.Warnf("skipping in-app receipt %d: %v", len(r.inApp), err)
			return
		}
		r.inApp = append(r.inApp, iap)
	},
}

// Parse decodes a receipt payload. It fails only when the attribute set
// itself cannot be framed; missing or undecodable fields are reported as
// absent by the accessors.
func Parse(data []byte, opts ...Option) (*Receipt, error) {
	o := newOptions(opts)
	attrs, err := parseAttributes(data, o)
	if err != nil {
		return nil, fmt.Errorf("failed to parse receipt: %w", err)
	}
	return newReceipt(attrs, o), nil
}

// FromAttributes builds a Receipt from an already decoded attribute list.
func FromAttributes(attrs []Attribute, opts ...Option) *Receipt {
	return newReceipt(append([]Attribute(nil), attrs...), newOptions(opts))
}

func newReceipt(attrs []Attribute, o *options) *Receipt {
	r := &Receipt{attrs: attrs}
	for i := range r.attrs {
		a := &r.attrs[i]
		field, ok := receiptFields[a.Type()]
		if !ok {
			o.logger.Debugf("ignoring receipt attribute %s", a)
			continue
		}
		field(r, a, o)
	}
	o.logger.Debugf("decoded receipt: %d attributes, %d in-app receipts", len(r.attrs), len(r.inApp))
	return r
}

func (r *Receipt) BundleID() (string, bool) {
	if r.bundleID == nil {
		return "", false
	}
	return r.bundleID.Text()
}

func (r *Receipt) ApplicationVersion() (string, bool) {
	return deref(r.applicationVersion)
}

func (r *Receipt) OpaqueValue() ([]byte, bool) {
	if r.opaqueValue == nil {
		return nil, false
	}
	return r.opaqueValue.Bytes(), true
}

func (r *Receipt) SHA1Hash() ([]byte, bool) {
	if r.sha1Hash == nil {
		return nil, false
	}
	return r.sha1Hash.Bytes(), true
}

func (r *Receipt) OriginalApplicationVersion() (string, bool) {
	return deref(r.originalApplicationVersion)
}

// InAppReceipts returns the in-app purchase records in payload order.
func (r *Receipt) InAppReceipts() []*InAppReceipt {
	return append([]*InAppReceipt(nil), r.inApp...)
}

// Attributes returns every decoded top-level attribute, including the ones
// the Receipt does not interpret.
func (r *Receipt) Attributes() []Attribute {
	return append([]Attribute(nil), r.attrs...)
}

// ReceiptForProductID returns the first in-app receipt for productID in
// payload order, or nil. Payload order is not purchase order; callers that
// need the latest purchase should use InAppReceiptsForProductID.
func (r *Receipt) ReceiptForProductID(productID string) *InAppReceipt {
	for _, iap := range r.inApp {
		if id, ok := iap.ProductID(); ok && id == productID {
			return iap
		}
	}
	return nil
}

// InAppReceiptsForProductID returns every in-app receipt for productID in
// payload order.
func (r *Receipt) InAppReceiptsForProductID(productID string) []*InAppReceipt {
	var out []*InAppReceipt
	for _, iap := range r.inApp {
		if id, ok := iap.ProductID(); ok && id == productID {
			out = append(out, iap)
		}
	}
	return out
}

func textField(a *Attribute) *string {
	s, ok := a.Text()
	if !ok {
		return nil
	}
	return &s
}

func deref[T any](v *T) (T, bool) {
	if v == nil {
		var zero T
		return zero, false
	}
	return *v, true
}
