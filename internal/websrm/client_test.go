package websrm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/restoflow/websrm-adapter/internal/domain/entity"
	"github.com/restoflow/websrm-adapter/internal/domain/enum"
)

func testTransaction() *entity.FiscalTransaction {
	return &entity.FiscalTransaction{
		IDTrans:   "id-trans-77",
		MontST:    2000,
		MontTPS:   100,
		MontTVQ:   200,
		MontTot:   2300,
		DtTrans:   "20240315133045",
		RefTrans:  "ORD-1042",
		Signature: "dGVzdC1zaWduYXR1cmU=",
		Lines: []entity.TransactionLine{
			{Descr: "Poutine", PrixUnit: 1250, Qte: 1, MontLigne: 1250},
		},
	}
}

func testClient(endpoint string) *Client {
	return NewClient(ClientConfig{
		Endpoint:          endpoint,
		CertificationCode: "CERT-123",
		DeviceID:          "SRS-0001",
		SoftwareVersion:   "1.0.0",
		RequestTimeout:    2 * time.Second,
	})
}

func TestClientSubmitSendsHeadersAndBody(t *testing.T) {
	var gotHeaders http.Header
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"codRetour":      "00",
			"idTransSrm":     "SRM-1",
			"dtConfirmation": "20240315133050",
		})
	}))
	defer srv.Close()

	resp, err := testClient(srv.URL).Submit(context.Background(), testTransaction(), "req-9")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !resp.CodeRetour.IsSuccess() {
		t.Errorf("codRetour = %s, want success", resp.CodeRetour)
	}
	if resp.IDTransSrm != "SRM-1" {
		t.Errorf("idTransSrm = %q", resp.IDTransSrm)
	}

	if got := gotHeaders.Get("Authorization"); got != "Bearer CERT-123" {
		t.Errorf("Authorization = %q", got)
	}
	if got := gotHeaders.Get("X-Signature"); got != "dGVzdC1zaWduYXR1cmU=" {
		t.Errorf("X-Signature = %q", got)
	}
	if got := gotHeaders.Get("X-Request-ID"); got != "req-9" {
		t.Errorf("X-Request-ID = %q", got)
	}
	if gotBody["idTrans"] != "id-trans-77" {
		t.Errorf("body idTrans = %v", gotBody["idTrans"])
	}
	if gotBody["signature"] != "dGVzdC1zaWduYXR1cmU=" {
		t.Errorf("body signature = %v", gotBody["signature"])
	}
	if gotBody["montTot"] != float64(2300) {
		t.Errorf("body montTot = %v", gotBody["montTot"])
	}
}

func TestClientSubmitErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"codRetour": "01",
			"listErr": []map[string]string{
				{"champ": "signature", "cod": "01", "mess": "signature invalide"},
			},
		})
	}))
	defer srv.Close()

	resp, err := testClient(srv.URL).Submit(context.Background(), testTransaction(), "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.CodeRetour != enum.CodeInvalidSignature {
		t.Errorf("codRetour = %s, want 01", resp.CodeRetour)
	}
	if resp.CodeRetour.IsRetryable() {
		t.Error("invalid signature must not be retryable")
	}
	if summary := resp.ErrorSummary(); summary == "" {
		t.Error("empty error summary for a response with errors")
	}
}

func TestClientSubmitGarbageBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	resp, err := testClient(srv.URL).Submit(context.Background(), testTransaction(), "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.CodeRetour != enum.CodeGenericError {
		t.Errorf("codRetour = %s, want generic error", resp.CodeRetour)
	}
}

func TestClientSubmitTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{
		Endpoint:          srv.URL,
		CertificationCode: "CERT-123",
		DeviceID:          "SRS-0001",
		SoftwareVersion:   "1.0.0",
		RequestTimeout:    20 * time.Millisecond,
	})
	_, err := c.Submit(context.Background(), testTransaction(), "")
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if !IsTimeout(err) {
		t.Errorf("IsTimeout(%v) = false, want true", err)
	}
}

func TestClientMisconfiguredFailsBeforeSending(t *testing.T) {
	c := NewClient(ClientConfig{
		Endpoint:          "http://127.0.0.1:1",
		CertificationCode: "",
		DeviceID:          "SRS-0001",
		SoftwareVersion:   "1.0.0",
	})
	if _, err := c.Submit(context.Background(), testTransaction(), ""); err == nil {
		t.Fatal("expected configuration error for missing certification code")
	}
}
