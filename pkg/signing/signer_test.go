package signing

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"testing"

	"github.com/restoflow/websrm-adapter/pkg/apperror"
)

func TestNewConfigurationErrors(t *testing.T) {
	tests := []struct {
		name      string
		algorithm string
		secret    string
		keyPEM    string
	}{
		{name: "empty algorithm"},
		{name: "hmac without secret", algorithm: AlgorithmHMACSHA256},
		{name: "ecdsa without key", algorithm: AlgorithmECDSAP256},
		{name: "ecdsa with garbage key", algorithm: AlgorithmECDSAP256, keyPEM: "not pem"},
		{name: "unknown algorithm", algorithm: "rot13"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.algorithm, tt.secret, tt.keyPEM)
			if !errors.Is(err, apperror.ErrConfiguration) {
				t.Errorf("New(%q) error = %v, want ErrConfiguration", tt.algorithm, err)
			}
		})
	}
}

func TestHMACSignerDeterministic(t *testing.T) {
	s, err := New(AlgorithmHMACSHA256, "topsecret", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	first, err := s.Sign(`{"idTrans":"abc"}`)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	again, err := s.Sign(`{"idTrans":"abc"}`)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if first != again {
		t.Errorf("HMAC signature not deterministic: %q vs %q", first, again)
	}

	other, _ := s.Sign(`{"idTrans":"abd"}`)
	if other == first {
		t.Error("different payloads produced the same signature")
	}

	keyed, _ := New(AlgorithmHMACSHA256, "othersecret", "")
	cross, _ := keyed.Sign(`{"idTrans":"abc"}`)
	if cross == first {
		t.Error("different secrets produced the same signature")
	}
}

func TestECDSASignerVerifies(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	keyPEM := string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}))

	s, err := New(AlgorithmECDSAP256, "", keyPEM)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	payload := `{"montTot":2300}`
	sig, err := s.Sign(payload)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		t.Fatalf("signature is not base64: %v", err)
	}
	digest := sha256.Sum256([]byte(payload))
	if !ecdsa.VerifyASN1(&key.PublicKey, digest[:], raw) {
		t.Error("signature does not verify against the public key")
	}
}

func TestPlaceholderSigner(t *testing.T) {
	s, err := New(AlgorithmPlaceholder, "", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Algorithm() != AlgorithmPlaceholder {
		t.Errorf("Algorithm = %q", s.Algorithm())
	}
	sig, err := s.Sign("payload")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if sig == "" {
		t.Error("placeholder produced an empty signature")
	}
}
