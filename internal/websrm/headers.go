package websrm

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/restoflow/websrm-adapter/pkg/apperror"
)

// semverPattern is the strict major.minor.patch form the endpoint accepts.
var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// HeaderInput carries everything needed to authenticate and identify one
// submission to the protocol endpoint.
type HeaderInput struct {
	CertificationCode string
	DeviceID          string
	SoftwareVersion   string
	Signature         string
	RequestID         string // optional correlation id
}

// BuildHeaders assembles the transport headers for a submission. Pure
// function: missing required fields or a malformed software version fail with
// a configuration error.
func BuildHeaders(in HeaderInput) (http.Header, error) {
	if in.CertificationCode == "" {
		return nil, fmt.Errorf("%w: certification code is required", apperror.ErrConfiguration)
	}
	if in.DeviceID == "" {
		return nil, fmt.Errorf("%w: device id is required", apperror.ErrConfiguration)
	}
	if in.Signature == "" {
		return nil, fmt.Errorf("%w: signature is required", apperror.ErrConfiguration)
	}
	if !semverPattern.MatchString(in.SoftwareVersion) {
		return nil, fmt.Errorf("%w: software version %q is not major.minor.patch", apperror.ErrConfiguration, in.SoftwareVersion)
	}

	h := http.Header{}
	h.Set("Authorization", "Bearer "+in.CertificationCode)
	h.Set("X-Device-ID", in.DeviceID)
	h.Set("X-Software-Version", in.SoftwareVersion)
	h.Set("X-Signature", in.Signature)
	h.Set("Content-Type", "application/json")
	if in.RequestID != "" {
		h.Set("X-Request-ID", in.RequestID)
	}
	return h, nil
}
