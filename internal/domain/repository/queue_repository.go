package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/restoflow/websrm-adapter/internal/domain/entity"
	"github.com/restoflow/websrm-adapter/internal/domain/enum"
	"github.com/restoflow/websrm-adapter/pkg/pagination"
)

// QueueFilterParams narrows queue listings.
type QueueFilterParams struct {
	Pagination *pagination.PaginationParams
	Status     *enum.QueueStatus
	DeviceID   string
}

// QueueRepository defines the persistence contract for the fiscal submission
// queue. Entries are insert-and-update only; nothing is ever deleted.
type QueueRepository interface {
	// Create persists a new entry together with its transaction and the
	// initial pending transition, atomically.
	Create(ctx context.Context, entry *entity.QueueEntry) error

	GetByID(ctx context.Context, id uuid.UUID) (*entity.QueueEntry, error)

	// GetByIDTrans finds the entry owning the given logical transaction id.
	// Used to keep enqueue idempotent per originating order.
	GetByIDTrans(ctx context.Context, idTrans string) (*entity.QueueEntry, error)

	List(ctx context.Context, params *QueueFilterParams) ([]entity.QueueEntry, int64, error)

	// CountByStatus returns entry counts keyed by status, for the stats
	// endpoint and dashboards.
	CountByStatus(ctx context.Context) (map[enum.QueueStatus]int64, error)

	// ClaimDue atomically moves up to limit due entries (pending, failed with
	// an elapsed next_attempt_at, or sending with an expired lease from a
	// crashed dispatcher) into sending, stamping the lease so no other
	// dispatcher may touch them until it expires. Cancelled entries are never
	// claimed.
	ClaimDue(ctx context.Context, owner string, lease time.Duration, limit int) ([]entity.QueueEntry, error)

	// ReleaseLease expires the lease on a claimed entry that was never sent,
	// making it immediately reclaimable. The status column is untouched.
	ReleaseLease(ctx context.Context, id uuid.UUID) error

	// Transition saves the entry's mutated delivery state and appends the
	// matching audit record in a single database transaction. Illegal status
	// moves are rejected.
	Transition(ctx context.Context, entry *entity.QueueEntry, from enum.QueueStatus, tr *entity.QueueTransition) error

	// Cancel marks a still-pending entry as cancelled. Entries past pending
	// cannot be cancelled because the remote side may already hold them.
	Cancel(ctx context.Context, id uuid.UUID) error
}
