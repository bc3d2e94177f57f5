package websrm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/restoflow/websrm-adapter/internal/domain/entity"
)

// Client submits signed transactions to the WEB-SRM endpoint.
type Client struct {
	httpClient        *http.Client
	endpoint          string
	certificationCode string
	deviceID          string
	softwareVersion   string
}

// ClientConfig configures the protocol client.
type ClientConfig struct {
	Endpoint          string
	CertificationCode string
	DeviceID          string
	SoftwareVersion   string
	RequestTimeout    time.Duration
}

// NewClient creates a protocol client. Header validity (certification code,
// device id, version format) is checked on every submission through
// BuildHeaders, so a misconfigured client fails on first use rather than
// sending unauthenticated requests.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Client{
		httpClient:        &http.Client{Timeout: timeout},
		endpoint:          cfg.Endpoint,
		certificationCode: cfg.CertificationCode,
		deviceID:          cfg.DeviceID,
		softwareVersion:   cfg.SoftwareVersion,
	}
}

// Submit sends one signed transaction. A non-nil Response means the endpoint
// answered, whatever the code; an error means the request never completed
// (network failure or timeout) and the caller must classify it as transient.
func (c *Client) Submit(ctx context.Context, tx *entity.FiscalTransaction, requestID string) (*Response, error) {
	headers, err := BuildHeaders(HeaderInput{
		CertificationCode: c.certificationCode,
		DeviceID:          c.deviceID,
		SoftwareVersion:   c.softwareVersion,
		Signature:         tx.Signature,
		RequestID:         requestID,
	})
	if err != nil {
		return nil, err
	}

	payload := tx.Payload()
	payload["signature"] = tx.Signature
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal transaction %s: %w", tx.IDTrans, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", tx.IDTrans, err)
	}
	req.Header = headers

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit transaction %s: %w", tx.IDTrans, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response for %s: %w", tx.IDTrans, err)
	}
	return ParseResponse(respBody), nil
}

// IsTimeout reports whether a submission error was a client-observed timeout
// rather than a refused or failed connection.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
