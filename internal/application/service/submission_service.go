package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/restoflow/websrm-adapter/internal/domain/entity"
	"github.com/restoflow/websrm-adapter/internal/domain/enum"
	"github.com/restoflow/websrm-adapter/internal/domain/repository"
	"github.com/restoflow/websrm-adapter/internal/websrm"
	"github.com/restoflow/websrm-adapter/pkg/apperror"
	"github.com/restoflow/websrm-adapter/pkg/canonical"
	"github.com/restoflow/websrm-adapter/pkg/pagination"
	"github.com/restoflow/websrm-adapter/pkg/signing"
)

// idTransNamespace seeds deterministic v5 UUIDs so the same originating order
// always yields the same idTrans. Retries and duplicate enqueue calls can
// therefore never mint a second logical transaction.
var idTransNamespace = uuid.MustParse("7b7fca43-8a2d-4e6f-9c41-d1f0a85c2f10")

// SubmissionService turns orders into signed queue entries and answers
// operational queries about them. Enqueue is synchronous and fast; delivery
// belongs to the Dispatcher.
type SubmissionService struct {
	queueRepo repository.QueueRepository
	mapper    *websrm.Mapper
	signer    signing.Signer
	receipts  *websrm.ReceiptBuilder
	deviceID  string
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(
	queueRepo repository.QueueRepository,
	mapper *websrm.Mapper,
	signer signing.Signer,
	receipts *websrm.ReceiptBuilder,
	deviceID string,
) *SubmissionService {
	return &SubmissionService{
		queueRepo: queueRepo,
		mapper:    mapper,
		signer:    signer,
		receipts:  receipts,
		deviceID:  deviceID,
	}
}

// EnqueueResult is what an enqueue call hands back to the API layer.
type EnqueueResult struct {
	Entry    *entity.QueueEntry      `json:"entry"`
	Warnings []websrm.MappingWarning `json:"warnings,omitempty"`
	// Existing is true when the order was already enqueued and the stored
	// entry is returned instead of a new one.
	Existing bool `json:"existing"`
}

// Enqueue validates, maps and signs an order, then persists it as a pending
// queue entry. Validation failures surface synchronously and nothing is
// queued. Re-enqueueing an already-known order is a no-op returning the
// existing entry.
func (s *SubmissionService) Enqueue(ctx context.Context, order *websrm.Order) (*EnqueueResult, error) {
	if order == nil || order.ID == "" {
		return nil, apperror.ErrIncompleteOrder
	}
	idTrans := uuid.NewSHA1(idTransNamespace, []byte(order.ID)).String()

	if existing, err := s.queueRepo.GetByIDTrans(ctx, idTrans); err != nil {
		return nil, err
	} else if existing != nil {
		return &EnqueueResult{Entry: existing, Existing: true}, nil
	}

	tx, warnings, err := s.mapper.Build(order, idTrans)
	if err != nil {
		return nil, err
	}

	payload, err := canonical.Marshal(tx.Payload())
	if err != nil {
		return nil, err
	}
	signature, err := s.signer.Sign(payload)
	if err != nil {
		return nil, err
	}
	tx.Signature = signature
	tx.SignatureAlgo = s.signer.Algorithm()

	entry := &entity.QueueEntry{
		Transaction: *tx,
		DeviceID:    s.deviceID,
		Status:      enum.QueuePending,
	}
	if err := s.queueRepo.Create(ctx, entry); err != nil {
		// Two concurrent enqueues of the same order can both pass the lookup
		// above; the loser hits the unique index on id_trans. That race is
		// still an idempotent duplicate, not a failure.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if existing, getErr := s.queueRepo.GetByIDTrans(ctx, idTrans); getErr == nil && existing != nil {
				return &EnqueueResult{Entry: existing, Existing: true}, nil
			}
		}
		return nil, err
	}
	entry.TransactionID = entry.Transaction.ID
	log.Printf("enqueued fiscal transaction %s for order %s (%d warnings)", idTrans, order.ID, len(warnings))
	return &EnqueueResult{Entry: entry, Warnings: warnings}, nil
}

// Get returns one entry with its transaction and full transition history.
func (s *SubmissionService) Get(ctx context.Context, id uuid.UUID) (*entity.QueueEntry, error) {
	entry, err := s.queueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, apperror.NewNotFoundError("Queue entry")
	}
	return entry, nil
}

// List returns entries matching the filter.
func (s *SubmissionService) List(ctx context.Context, params *repository.QueueFilterParams) (*pagination.PaginatedResult[entity.QueueEntry], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	entries, total, err := s.queueRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(entries, pag), nil
}

// Stats returns entry counts per status for operational dashboards.
// failed_permanent is reported on its own so it can never hide behind plain
// failed counts.
func (s *SubmissionService) Stats(ctx context.Context) (map[enum.QueueStatus]int64, error) {
	return s.queueRepo.CountByStatus(ctx)
}

// Cancel marks a pending entry cancelled. Once dispatch has begun the remote
// side may already hold the transaction, so cancellation is refused.
func (s *SubmissionService) Cancel(ctx context.Context, id uuid.UUID) error {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if entry.Status != enum.QueuePending {
		return apperror.NewConflictError("only pending entries can be cancelled")
	}
	return s.queueRepo.Cancel(ctx, id)
}

// Requeue resets a failed_permanent entry to pending after an operator has
// remediated the underlying cause. The attempt counter restarts at zero; the
// idTrans is untouched. This is the only exit from failed_permanent.
func (s *SubmissionService) Requeue(ctx context.Context, id uuid.UUID, operator string) (*entity.QueueEntry, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Status != enum.QueueFailedPermanent {
		return nil, apperror.NewConflictError("only failed_permanent entries can be requeued")
	}

	from := entry.Status
	entry.Status = enum.QueuePending
	entry.AttemptCount = 0
	entry.NextAttemptAt = nil
	entry.LastErrorCode = ""
	entry.LastErrorMessage = ""
	entry.LeaseOwner = nil
	entry.LeaseExpiresAt = nil

	err = s.queueRepo.Transition(ctx, entry, from, &entity.QueueTransition{
		Note: "operator requeue by " + operator,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("entry %s requeued by %s", entry.ID, operator)
	return entry, nil
}

// Receipt builds the customer verification artifact for a sent entry.
func (s *SubmissionService) Receipt(ctx context.Context, id uuid.UUID, format string) (*websrm.ReceiptReference, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Status != enum.QueueSent {
		return nil, apperror.NewConflictError("receipt references require a sent entry")
	}
	return s.receipts.Build(entry, format)
}
