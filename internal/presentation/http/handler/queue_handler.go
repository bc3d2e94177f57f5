package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/restoflow/websrm-adapter/internal/application/service"
	"github.com/restoflow/websrm-adapter/internal/domain/enum"
	"github.com/restoflow/websrm-adapter/internal/domain/repository"
	"github.com/restoflow/websrm-adapter/internal/presentation/http/dto/request"
	"github.com/restoflow/websrm-adapter/internal/presentation/http/dto/response"
	"github.com/restoflow/websrm-adapter/internal/websrm"
	"github.com/restoflow/websrm-adapter/pkg/pagination"
)

// QueueHandler handles queue inspection and operator actions
type QueueHandler struct {
	submissionService *service.SubmissionService
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(submissionService *service.SubmissionService) *QueueHandler {
	return &QueueHandler{submissionService: submissionService}
}

// List handles listing queue entries
func (h *QueueHandler) List(c *gin.Context) {
	var req request.QueueFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.QueueFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    req.Page,
			PerPage: req.PerPage,
		},
		DeviceID: req.DeviceID,
	}
	if req.Status != "" {
		status, ok := enum.ParseQueueStatus(req.Status)
		if !ok {
			response.BadRequest(c, "Unknown queue status")
			return
		}
		params.Status = &status
	}

	result, err := h.submissionService.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Queue entries retrieved successfully", result)
}

// Stats handles the per-status entry counts
func (h *QueueHandler) Stats(c *gin.Context) {
	counts, err := h.submissionService.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Queue statistics retrieved successfully", counts)
}

// Get handles getting a single queue entry with its transition history
func (h *QueueHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid queue entry ID")
		return
	}

	entry, err := h.submissionService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Queue entry retrieved successfully", entry)
}

// Requeue handles putting a failed_permanent entry back in line
func (h *QueueHandler) Requeue(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid queue entry ID")
		return
	}

	operator := GetOperator(c)
	if operator == "" {
		response.Unauthorized(c, "Operator not authenticated")
		return
	}

	entry, err := h.submissionService.Requeue(c.Request.Context(), id, operator)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Queue entry requeued successfully", entry)
}

// Cancel handles cancelling a still-pending entry
func (h *QueueHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid queue entry ID")
		return
	}

	if err := h.submissionService.Cancel(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Queue entry cancelled successfully", nil)
}

// Receipt handles building the customer verification artifact
func (h *QueueHandler) Receipt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid queue entry ID")
		return
	}

	format := c.DefaultQuery("format", websrm.ReceiptFormatURL)

	ref, err := h.submissionService.Receipt(c.Request.Context(), id, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt reference built successfully", ref)
}
