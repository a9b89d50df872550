package main

import (
	"crypto/x509"
	"errors"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/vocdoni/gofirma/appreceipt/envelope"
	"github.com/vocdoni/gofirma/appreceipt/internal/canon"
	"github.com/vocdoni/gofirma/appreceipt/internal/storage"
	"github.com/vocdoni/gofirma/appreceipt/internal/version"
	"github.com/vocdoni/gofirma/appreceipt/log"
	"github.com/vocdoni/gofirma/appreceipt/receipt"
)

type config struct {
	roots      *x509.CertPool
	insecure   bool
	raw        bool
	format     string
	product    string
	deviceID   []byte
	minVersion string
	audit      *storage.AuditLogger
	logger     log.Logger
}

// result is one line of output.
type result struct {
	Source      string               `json:"source" cbor:"source"`
	Verified    bool                 `json:"verified" cbor:"verified"`
	Receipt     *receipt.Report      `json:"receipt,omitempty" cbor:"receipt,omitempty"`
	Purchase    *receipt.InAppReport `json:"purchase,omitempty" cbor:"purchase,omitempty"`
	HashMatches *bool                `json:"hashMatches,omitempty" cbor:"hashMatches,omitempty"`
	Outdated    bool                 `json:"outdated,omitempty" cbor:"outdated,omitempty"`
	Error       string               `json:"error,omitempty" cbor:"error,omitempty"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("receiptdump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	rootsPath := fs.String("roots", "", "PEM file with trusted signing roots")
	insecure := fs.Bool("insecure", false, "Skip signature verification")
	raw := fs.Bool("raw", false, "Inputs are unwrapped attribute payloads")
	format := fs.String("format", "json", "Output format: json or cbor")
	product := fs.String("product", "", "Print only the first in-app receipt for this product id")
	device := fs.String("device", "", "Device identifier (UUID) to check the receipt hash against")
	minVersion := fs.String("min-version", "", "Flag receipts whose application version is older")
	auditDir := fs.String("audit", "", "Directory for the JSONL audit log")
	workers := fs.Int("workers", 4, "Files decoded in parallel")
	verbose := fs.Bool("v", false, "Debug logging")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: receiptdump [flags] receipt...\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	logger := log.NewStd(stdlog.New(stderr, "", stdlog.LstdFlags), *verbose)
	cfg := &config{
		insecure:   *insecure,
		raw:        *raw,
		format:     *format,
		product:    *product,
		minVersion: *minVersion,
		logger:     logger,
	}

	if cfg.format != "json" && cfg.format != "cbor" {
		logger.Errorf("unknown format %q", cfg.format)
		return 2
	}
	if !cfg.raw && !cfg.insecure {
		if *rootsPath == "" {
			logger.Error("either -roots, -insecure or -raw is required")
			return 2
		}
		roots, err := envelope.LoadRoots(*rootsPath)
		if err != nil {
			logger.Errorf("%v", err)
			return 1
		}
		cfg.roots = roots
	}
	if *device != "" {
		id, err := receipt.ParseDeviceIdentifier(*device)
		if err != nil {
			logger.Errorf("%v", err)
			return 2
		}
		cfg.deviceID = id
	}
	if *auditDir != "" {
		audit, err := storage.NewAuditLogger(*auditDir, logger)
		if err != nil {
			logger.Errorf("%v", err)
			return 1
		}
		logger.Debugf("audit run %s", audit.RunID())
		cfg.audit = audit
	}

	paths := fs.Args()
	results := make([]result, len(paths))
	var g errgroup.Group
	g.SetLimit(max(*workers, 1))
	for i, path := range paths {
		g.Go(func() error {
			results[i] = decodeFile(path, cfg)
			return nil
		})
	}
	_ = g.Wait()

	status := 0
	for _, res := range results {
		if res.Error != "" {
			status = 1
		}
		if err := write(stdout, cfg.format, res); err != nil {
			logger.Errorf("failed to write output: %v", err)
			return 1
		}
	}
	return status
}

func decodeFile(path string, cfg *config) result {
	res := result{Source: path}
	r, err := decode(path, cfg, &res)
	if err != nil {
		res.Error = err.Error()
		cfg.logger.Warnf("%s: %v", path, err)
	}
	if cfg.audit != nil {
		if err := cfg.audit.Log(auditEntry(res, r)); err != nil {
			cfg.logger.Errorf("audit: %v", err)
		}
	}
	return res
}

func decode(path string, cfg *config, res *result) (*receipt.Receipt, error) {
	data, err := envelope.Load(path)
	if err != nil {
		return nil, err
	}

	payload := data
	switch {
	case cfg.raw:
	case cfg.insecure:
		payload, err = envelope.OpenUnverified(data)
	default:
		payload, err = envelope.Open(data, cfg.roots)
		res.Verified = err == nil
	}
	if err != nil {
		return nil, err
	}

	r, err := receipt.Parse(payload, receipt.WithLogger(cfg.logger))
	if err != nil {
		return nil, err
	}

	if cfg.deviceID != nil {
		matches := r.VerifyHash(cfg.deviceID)
		res.HashMatches = &matches
	}
	if cfg.minVersion != "" {
		if v, ok := r.ApplicationVersion(); ok {
			res.Outdated = version.IsOutdated(v, cfg.minVersion)
		}
	}

	if cfg.product != "" {
		iap := r.ReceiptForProductID(cfg.product)
		if iap == nil {
			return r, fmt.Errorf("no in-app receipt for product %q", cfg.product)
		}
		rep := iap.Report()
		res.Purchase = &rep
		return r, nil
	}
	rep := r.Report()
	res.Receipt = &rep
	return r, nil
}

func auditEntry(res result, r *receipt.Receipt) storage.AuditEntry {
	entry := storage.AuditEntry{
		Source:      res.Source,
		Status:      storage.StatusDecoded,
		Verified:    res.Verified,
		HashMatches: res.HashMatches,
		Outdated:    res.Outdated,
		Error:       res.Error,
	}
	if r == nil {
		entry.Status = storage.StatusFailed
		return entry
	}
	entry.BundleID, _ = r.BundleID()
	entry.AppVersion, _ = r.ApplicationVersion()
	entry.InAppCount = len(r.InAppReceipts())
	return entry
}

func write(w io.Writer, format string, res result) error {
	var (
		out []byte
		err error
	)
	switch format {
	case "cbor":
		out, err = canon.EncodeCBOR(res)
	case "json":
		out, err = canon.Encode(res)
		out = append(out, '\n')
	default:
		err = errors.New("unknown format " + format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
