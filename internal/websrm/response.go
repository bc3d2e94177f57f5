package websrm

import (
	"encoding/json"
	"fmt"

	"github.com/restoflow/websrm-adapter/internal/domain/enum"
)

// Response is the protocol's reply to a submission.
type Response struct {
	CodeRetour     enum.ResponseCode `json:"codRetour"`
	IDTransSrm     string            `json:"idTransSrm,omitempty"`
	CodeQR         string            `json:"codeQR,omitempty"`
	DtConfirmation string            `json:"dtConfirmation,omitempty"`
	Errors         []ResponseError   `json:"listErr,omitempty"`
}

// ResponseError is one per-field error reported by the endpoint.
type ResponseError struct {
	Field   string `json:"champ,omitempty"`
	Code    string `json:"cod"`
	Message string `json:"mess,omitempty"`
}

// ParseResponse decodes a reply body. A body that does not decode, or that
// carries no return code, is treated as the generic error code rather than a
// transport failure: the endpoint did answer, it just answered badly.
func ParseResponse(body []byte) *Response {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil || resp.CodeRetour == "" {
		return &Response{
			CodeRetour: enum.CodeGenericError,
			Errors: []ResponseError{{
				Code:    string(enum.CodeGenericError),
				Message: fmt.Sprintf("unparseable response body (%d bytes)", len(body)),
			}},
		}
	}
	return &resp
}

// ErrorSummary flattens the error list for storage in last_error_message.
func (r *Response) ErrorSummary() string {
	if len(r.Errors) == 0 {
		return ""
	}
	s := ""
	for i, e := range r.Errors {
		if i > 0 {
			s += "; "
		}
		if e.Field != "" {
			s += e.Field + ": "
		}
		s += e.Code
		if e.Message != "" {
			s += " " + e.Message
		}
	}
	return s
}
