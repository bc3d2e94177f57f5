// Package signing computes the integrity signature carried by every WEB-SRM
// submission. The algorithm is pluggable: HMAC-SHA256 for shared-secret
// deployments, ECDSA P-256 where the certification authority issued a key
// pair, and a non-cryptographic placeholder for development only.
package signing

import (
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"log"
	"sync"

	"github.com/restoflow/websrm-adapter/pkg/apperror"
)

// Signer produces a signature over a canonical payload.
type Signer interface {
	// Sign returns the signature for the canonical payload string.
	Sign(canonicalPayload string) (string, error)
	// Algorithm names the scheme, for logging and the X-Signature audit trail.
	Algorithm() string
}

const (
	AlgorithmHMACSHA256  = "hmac-sha256"
	AlgorithmECDSAP256   = "ecdsa-p256"
	AlgorithmPlaceholder = "placeholder"
)

// New builds the Signer for the configured algorithm. The secret is required
// for HMAC, keyPEM (a PEM-encoded EC private key) for ECDSA. An empty
// algorithm is a configuration error, never a silent default.
func New(algorithm, secret, keyPEM string) (Signer, error) {
	switch algorithm {
	case "":
		return nil, fmt.Errorf("%w: signing algorithm not set", apperror.ErrConfiguration)
	case AlgorithmHMACSHA256:
		if secret == "" {
			return nil, fmt.Errorf("%w: HMAC signing requires a shared secret", apperror.ErrConfiguration)
		}
		return &HMACSigner{secret: []byte(secret)}, nil
	case AlgorithmECDSAP256:
		key, err := parseECPrivateKey(keyPEM)
		if err != nil {
			return nil, err
		}
		return &ECDSASigner{key: key}, nil
	case AlgorithmPlaceholder:
		return &PlaceholderSigner{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown signing algorithm %q", apperror.ErrConfiguration, algorithm)
	}
}

// HMACSigner signs with HMAC-SHA256 over a shared secret.
type HMACSigner struct {
	secret []byte
}

func (s *HMACSigner) Sign(canonicalPayload string) (string, error) {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(canonicalPayload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

func (s *HMACSigner) Algorithm() string { return AlgorithmHMACSHA256 }

// ECDSASigner signs the SHA-256 digest of the payload with an EC private key,
// emitting an ASN.1 DER signature in base64.
type ECDSASigner struct {
	key *ecdsa.PrivateKey
}

func (s *ECDSASigner) Sign(canonicalPayload string) (string, error) {
	digest := sha256.Sum256([]byte(canonicalPayload))
	sig, err := ecdsa.SignASN1(rand.Reader, s.key, digest[:])
	if err != nil {
		return "", fmt.Errorf("ecdsa sign: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

func (s *ECDSASigner) Algorithm() string { return AlgorithmECDSAP256 }

// PlaceholderSigner computes a bare SHA-256 digest. It carries no key
// material and proves nothing; it exists so development environments can run
// without certification credentials. The first use logs a warning.
type PlaceholderSigner struct {
	warnOnce sync.Once
}

func (s *PlaceholderSigner) Sign(canonicalPayload string) (string, error) {
	s.warnOnce.Do(func() {
		log.Printf("WARNING: placeholder signer in use, transactions are NOT cryptographically signed")
	})
	digest := sha256.Sum256([]byte(canonicalPayload))
	return base64.StdEncoding.EncodeToString(digest[:]), nil
}

func (s *PlaceholderSigner) Algorithm() string { return AlgorithmPlaceholder }

func parseECPrivateKey(keyPEM string) (*ecdsa.PrivateKey, error) {
	if keyPEM == "" {
		return nil, fmt.Errorf("%w: ECDSA signing requires a private key", apperror.ErrConfiguration)
	}
	block, _ := pem.Decode([]byte(keyPEM))
	if block == nil {
		return nil, fmt.Errorf("%w: signing key is not valid PEM", apperror.ErrConfiguration)
	}
	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot parse signing key: %v", apperror.ErrConfiguration, err)
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: signing key is not an EC key", apperror.ErrConfiguration)
	}
	return key, nil
}
