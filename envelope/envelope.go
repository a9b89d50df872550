// Package envelope unwraps the PKCS#7 SignedData container around a receipt
// payload.
package envelope

import (
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"github.com/smallstep/pkcs7"
)

var (
	ErrNoContent    = errors.New("receipt envelope has no content")
	ErrVerification = errors.New("receipt signature verification failed")
	ErrNoRoots      = errors.New("no trust roots configured")
)

// Open parses a PKCS#7 receipt, verifies its signer chain against roots and
// returns the attribute payload.
func Open(data []byte, roots *x509.CertPool) ([]byte, error) {
	if roots == nil {
		return nil, ErrNoRoots
	}
	p7, err := parse(data)
	if err != nil {
		return nil, err
	}
	if err := p7.VerifyWithChain(roots); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVerification, err)
	}
	return p7.Content, nil
}

// OpenUnverified returns the attribute payload without checking the
// signature. The result must not be used for trust decisions.
func OpenUnverified(data []byte) ([]byte, error) {
	p7, err := parse(data)
	if err != nil {
		return nil, err
	}
	return p7.Content, nil
}

func parse(data []byte) (*pkcs7.PKCS7, error) {
	p7, err := pkcs7.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PKCS#7: %w", err)
	}
	if len(p7.Content) == 0 {
		return nil, ErrNoContent
	}
	return p7, nil
}

// Load reads a receipt file.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt: %w", err)
	}
	return data, nil
}

// LoadRoots reads PEM certificates into a pool.
func LoadRoots(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trust roots: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	return pool, nil
}
