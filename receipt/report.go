package receipt

import (
	"bytes"
	"time"
)

// Report is a serializable snapshot of a Receipt. Absent fields are nil.
type Report struct {
	BundleID                   *string       `json:"bundleId,omitempty" cbor:"bundleId,omitempty"`
	ApplicationVersion         *string       `json:"applicationVersion,omitempty" cbor:"applicationVersion,omitempty"`
	OriginalApplicationVersion *string       `json:"originalApplicationVersion,omitempty" cbor:"originalApplicationVersion,omitempty"`
	OpaqueValue                []byte        `json:"opaqueValue,omitempty" cbor:"opaqueValue,omitempty"`
	SHA1Hash                   []byte        `json:"sha1Hash,omitempty" cbor:"sha1Hash,omitempty"`
	InApp                      []InAppReport `json:"inApp" cbor:"inApp"`
}

type InAppReport struct {
	Quantity                   *int64     `json:"quantity,omitempty" cbor:"quantity,omitempty"`
	ProductID                  *string    `json:"productId,omitempty" cbor:"productId,omitempty"`
	TransactionID              *string    `json:"transactionId,omitempty" cbor:"transactionId,omitempty"`
	OriginalTransactionID      *string    `json:"originalTransactionId,omitempty" cbor:"originalTransactionId,omitempty"`
	PurchaseDate               *time.Time `json:"purchaseDate,omitempty" cbor:"purchaseDate,omitempty"`
	OriginalPurchaseDate       *time.Time `json:"originalPurchaseDate,omitempty" cbor:"originalPurchaseDate,omitempty"`
	SubscriptionExpirationDate *time.Time `json:"expiresDate,omitempty" cbor:"expiresDate,omitempty"`
	CancellationDate           *time.Time `json:"cancellationDate,omitempty" cbor:"cancellationDate,omitempty"`
	WebOrderLineItemID         *int64     `json:"webOrderLineItemId,omitempty" cbor:"webOrderLineItemId,omitempty"`
}

func (r *Receipt) Report() Report {
	rep := Report{
		BundleID:                   ptr(r.BundleID()),
		ApplicationVersion:         ptr(r.ApplicationVersion()),
		OriginalApplicationVersion: ptr(r.OriginalApplicationVersion()),
		InApp:                      make([]InAppReport, 0, len(r.inApp)),
	}
	if v, ok := r.OpaqueValue(); ok {
		rep.OpaqueValue = bytes.Clone(v)
	}
	if v, ok := r.SHA1Hash(); ok {
		rep.SHA1Hash = bytes.Clone(v)
	}
	for _, iap := range r.inApp {
		rep.InApp = append(rep.InApp, iap.Report())
	}
	return rep
}

func (r *InAppReceipt) Report() InAppReport {
	return InAppReport{
		Quantity:                   ptr(r.Quantity()),
		ProductID:                  ptr(r.ProductID()),
		TransactionID:              ptr(r.TransactionID()),
		OriginalTransactionID:      ptr(r.OriginalTransactionID()),
		PurchaseDate:               ptr(r.PurchaseDate()),
		OriginalPurchaseDate:       ptr(r.OriginalPurchaseDate()),
		SubscriptionExpirationDate: ptr(r.SubscriptionExpirationDate()),
		CancellationDate:           ptr(r.CancellationDate()),
		WebOrderLineItemID:         ptr(r.WebOrderLineItemID()),
	}
}

func ptr[T any](v T, ok bool) *T {
	if !ok {
		return nil
	}
	return &v
}
