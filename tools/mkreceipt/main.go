// mkreceipt writes a self-signed sample receipt and the certificate that
// verifies it, for exercising receiptdump.
package main

import (
	"crypto/sha1"
	"encoding/pem"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vocdoni/gofirma/appreceipt/internal/receipttest"
	"github.com/vocdoni/gofirma/appreceipt/receipt"
)

func main() {
	out := flag.String("out", "sample.receipt", "Receipt output path")
	certOut := flag.String("cert-out", "sample-roots.pem", "Signing certificate output path")
	bundleID := flag.String("bundle", "com.example.app", "Bundle identifier")
	appVersion := flag.String("version", "1.0", "Application version")
	products := flag.String("product", "com.example.coins", "Comma-separated product ids, one purchase each")
	device := flag.String("device", "", "Device identifier the hash is issued for (random if empty)")
	flag.Parse()

	deviceID := uuid.New()
	if *device != "" {
		var err error
		if deviceID, err = uuid.Parse(*device); err != nil {
			log.Fatalf("Invalid device identifier: %v", err)
		}
	}

	opaque := []byte(uuid.New().String())
	h := sha1.New()
	h.Write(deviceID[:])
	h.Write(opaque)
	h.Write(receipttest.UTF8(*bundleID))

	fixture := receipttest.Receipt{
		BundleID:                   *bundleID,
		ApplicationVersion:         *appVersion,
		OriginalApplicationVersion: *appVersion,
		OpaqueValue:                opaque,
		SHA1Hash:                   h.Sum(nil),
	}
	now := time.Now().UTC().Truncate(time.Second)
	for i, id := range strings.Split(*products, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		txID := fmt.Sprintf("%d", 1000000000000000+i)
		fixture.Purchases = append(fixture.Purchases, receipttest.Purchase{
			Quantity:              1,
			ProductID:             id,
			TransactionID:         txID,
			OriginalTransactionID: txID,
			PurchaseDate:          now.Add(-time.Duration(i) * time.Minute),
			OriginalPurchaseDate:  now.Add(-time.Duration(i) * time.Minute),
		})
	}

	payload := fixture.Bytes()
	if _, err := receipt.Parse(payload); err != nil {
		log.Fatalf("Generated payload does not decode: %v", err)
	}

	cert, key, err := receipttest.SelfSigned("mkreceipt")
	if err != nil {
		log.Fatalf("Failed to create signer: %v", err)
	}
	signed, err := receipttest.Sign(payload, cert, key)
	if err != nil {
		log.Fatalf("Failed to sign receipt: %v", err)
	}

	if err := os.WriteFile(*out, signed, 0644); err != nil {
		log.Fatalf("Failed to write receipt: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
	if err := os.WriteFile(*certOut, certPEM, 0644); err != nil {
		log.Fatalf("Failed to write certificate: %v", err)
	}
	log.Printf("Wrote %s (%d purchases, device %s) and %s", *out, len(fixture.Purchases), deviceID, *certOut)
}
