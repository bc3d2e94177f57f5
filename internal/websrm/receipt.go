package websrm

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/restoflow/websrm-adapter/internal/domain/entity"
	"github.com/restoflow/websrm-adapter/pkg/apperror"
)

// Receipt reference formats.
const (
	ReceiptFormatURL     = "url"
	ReceiptFormatJSON    = "json"
	ReceiptFormatCompact = "compact"
)

// ReceiptReference is the customer-facing verification artifact derived from
// a confirmed transaction.
type ReceiptReference struct {
	Format  string `json:"format"`
	Content string `json:"content"`
}

// receiptDescriptor is the structured JSON form.
type receiptDescriptor struct {
	IDTrans        string `json:"idTrans"`
	IDTransSrm     string `json:"idTransSrm"`
	DtConfirmation string `json:"dtConfirmation,omitempty"`
	MontTot        int64  `json:"montTot"`
	VerifyURL      string `json:"verifyUrl"`
}

// ReceiptBuilder derives verification artifacts from confirmed entries.
type ReceiptBuilder struct {
	baseURL string
}

// NewReceiptBuilder creates a builder. baseURL is the verification site used
// when the protocol response did not supply its own URL.
func NewReceiptBuilder(baseURL string) *ReceiptBuilder {
	return &ReceiptBuilder{baseURL: strings.TrimRight(baseURL, "/")}
}

// Build produces the artifact for a sent entry in the requested format.
func (b *ReceiptBuilder) Build(entry *entity.QueueEntry, format string) (*ReceiptReference, error) {
	if entry.IDTransSrm == "" {
		return nil, fmt.Errorf("%w: entry %s has no server transaction id", apperror.ErrIncompleteResponse, entry.ID)
	}

	verifyURL := b.verifyURL(entry)
	switch format {
	case ReceiptFormatURL:
		return &ReceiptReference{Format: format, Content: verifyURL}, nil
	case ReceiptFormatJSON:
		desc := receiptDescriptor{
			IDTrans:        entry.Transaction.IDTrans,
			IDTransSrm:     entry.IDTransSrm,
			DtConfirmation: entry.DtConfirmation,
			MontTot:        entry.Transaction.MontTot,
			VerifyURL:      verifyURL,
		}
		content, err := json.Marshal(desc)
		if err != nil {
			return nil, err
		}
		return &ReceiptReference{Format: format, Content: string(content)}, nil
	case ReceiptFormatCompact:
		content := strings.Join([]string{
			entry.Transaction.IDTrans,
			entry.IDTransSrm,
			entry.DtConfirmation,
			fmt.Sprintf("%d", entry.Transaction.MontTot),
		}, "|")
		return &ReceiptReference{Format: format, Content: content}, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnsupportedFormat, format)
	}
}

// verifyURL reuses the protocol-supplied URL when the response carried one,
// otherwise builds one from the configured verification base.
func (b *ReceiptBuilder) verifyURL(entry *entity.QueueEntry) string {
	if strings.HasPrefix(entry.CodeQR, "http://") || strings.HasPrefix(entry.CodeQR, "https://") {
		return entry.CodeQR
	}
	return b.baseURL + "/verify?id=" + url.QueryEscape(entry.IDTransSrm)
}
