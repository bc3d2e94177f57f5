package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/restoflow/websrm-adapter/internal/application/service"
	"github.com/restoflow/websrm-adapter/internal/presentation/http/dto/request"
	"github.com/restoflow/websrm-adapter/internal/presentation/http/dto/response"
)

// TransactionHandler handles order submission requests
type TransactionHandler struct {
	submissionService *service.SubmissionService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(submissionService *service.SubmissionService) *TransactionHandler {
	return &TransactionHandler{submissionService: submissionService}
}

// Submit handles converting and enqueueing an order for fiscal reporting.
// Submitting the same order twice returns the stored entry with a 200 instead
// of creating a duplicate.
func (h *TransactionHandler) Submit(c *gin.Context) {
	var req request.SubmitTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if fieldErrors := bindingFieldErrors(err); fieldErrors != nil {
			response.ValidationError(c, fieldErrors)
			return
		}
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.submissionService.Enqueue(c.Request.Context(), req.ToOrder())
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Existing {
		response.OK(c, "Transaction already enqueued", result)
		return
	}
	response.Created(c, "Transaction enqueued", result)
}
