package websrm

import (
	"errors"
	"testing"

	"github.com/restoflow/websrm-adapter/pkg/apperror"
)

func validHeaderInput() HeaderInput {
	return HeaderInput{
		CertificationCode: "CERT-123",
		DeviceID:          "SRS-0001",
		SoftwareVersion:   "1.4.2",
		Signature:         "c2lnbmF0dXJl",
		RequestID:         "req-42",
	}
}

func TestBuildHeaders(t *testing.T) {
	h, err := BuildHeaders(validHeaderInput())
	if err != nil {
		t.Fatalf("BuildHeaders: %v", err)
	}
	if got := h.Get("Authorization"); got != "Bearer CERT-123" {
		t.Errorf("Authorization = %q", got)
	}
	if got := h.Get("X-Device-ID"); got != "SRS-0001" {
		t.Errorf("X-Device-ID = %q", got)
	}
	if got := h.Get("X-Software-Version"); got != "1.4.2" {
		t.Errorf("X-Software-Version = %q", got)
	}
	if got := h.Get("X-Signature"); got != "c2lnbmF0dXJl" {
		t.Errorf("X-Signature = %q", got)
	}
	if got := h.Get("X-Request-ID"); got != "req-42" {
		t.Errorf("X-Request-ID = %q", got)
	}
}

func TestBuildHeadersOptionalRequestID(t *testing.T) {
	in := validHeaderInput()
	in.RequestID = ""
	h, err := BuildHeaders(in)
	if err != nil {
		t.Fatalf("BuildHeaders: %v", err)
	}
	if _, ok := h["X-Request-Id"]; ok {
		t.Error("X-Request-ID set despite empty correlation id")
	}
}

func TestBuildHeadersValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*HeaderInput)
	}{
		{"missing certification code", func(in *HeaderInput) { in.CertificationCode = "" }},
		{"missing device id", func(in *HeaderInput) { in.DeviceID = "" }},
		{"missing signature", func(in *HeaderInput) { in.Signature = "" }},
		{"empty version", func(in *HeaderInput) { in.SoftwareVersion = "" }},
		{"two-part version", func(in *HeaderInput) { in.SoftwareVersion = "1.4" }},
		{"version with suffix", func(in *HeaderInput) { in.SoftwareVersion = "1.4.2-beta" }},
		{"version with prefix", func(in *HeaderInput) { in.SoftwareVersion = "v1.4.2" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validHeaderInput()
			tt.mutate(&in)
			if _, err := BuildHeaders(in); !errors.Is(err, apperror.ErrConfiguration) {
				t.Errorf("got %v, want ErrConfiguration", err)
			}
		})
	}
}
