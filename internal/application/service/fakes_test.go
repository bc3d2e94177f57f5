package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/restoflow/websrm-adapter/internal/domain/entity"
	"github.com/restoflow/websrm-adapter/internal/domain/enum"
	domainRepo "github.com/restoflow/websrm-adapter/internal/domain/repository"
	"github.com/restoflow/websrm-adapter/internal/websrm"
)

// fakeQueueRepo is an in-memory QueueRepository for service tests.
type fakeQueueRepo struct {
	mu          sync.Mutex
	entries     map[uuid.UUID]*entity.QueueEntry
	transitions []entity.QueueTransition
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{entries: make(map[uuid.UUID]*entity.QueueEntry)}
}

func (r *fakeQueueRepo) Create(ctx context.Context, entry *entity.QueueEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Mirrors the unique index on id_trans.
	for _, e := range r.entries {
		if e.Transaction.IDTrans == entry.Transaction.IDTrans {
			return gorm.ErrDuplicatedKey
		}
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Transaction.ID == uuid.Nil {
		entry.Transaction.ID = uuid.New()
	}
	entry.TransactionID = entry.Transaction.ID
	entry.CreatedAt = time.Now().UTC()
	cp := *entry
	r.entries[entry.ID] = &cp
	r.transitions = append(r.transitions, entity.QueueTransition{
		EntryID: entry.ID, FromStatus: enum.QueuePending, ToStatus: enum.QueuePending, Note: "enqueued",
	})
	return nil
}

func (r *fakeQueueRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	for _, tr := range r.transitions {
		if tr.EntryID == id {
			cp.Transitions = append(cp.Transitions, tr)
		}
	}
	return &cp, nil
}

func (r *fakeQueueRepo) GetByIDTrans(ctx context.Context, idTrans string) (*entity.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.Transaction.IDTrans == idTrans {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeQueueRepo) List(ctx context.Context, params *domainRepo.QueueFilterParams) ([]entity.QueueEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.QueueEntry
	for _, e := range r.entries {
		if params.Status != nil && e.Status != *params.Status {
			continue
		}
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *fakeQueueRepo) CountByStatus(ctx context.Context) (map[enum.QueueStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[enum.QueueStatus]int64)
	for _, s := range enum.AllQueueStatuses {
		counts[s] = 0
	}
	for _, e := range r.entries {
		counts[e.Status]++
	}
	return counts, nil
}

func (r *fakeQueueRepo) ClaimDue(ctx context.Context, owner string, lease time.Duration, limit int) ([]entity.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	leaseUntil := now.Add(lease)
	var claimed []entity.QueueEntry
	for _, e := range r.entries {
		if len(claimed) >= limit {
			break
		}
		if e.CancelledAt != nil {
			continue
		}
		if e.LeaseExpiresAt != nil && e.LeaseExpiresAt.After(now) {
			continue
		}
		due := e.Status == enum.QueuePending ||
			(e.Status == enum.QueueFailed && e.NextAttemptAt != nil && !now.Before(*e.NextAttemptAt))
		if !due {
			continue
		}
		from := e.Status
		e.Status = enum.QueueSending
		e.LeaseOwner = &owner
		e.LeaseExpiresAt = &leaseUntil
		r.transitions = append(r.transitions, entity.QueueTransition{
			EntryID: e.ID, FromStatus: from, ToStatus: enum.QueueSending, AttemptCount: e.AttemptCount,
		})
		claimed = append(claimed, *e)
	}
	return claimed, nil
}

func (r *fakeQueueRepo) Transition(ctx context.Context, entry *entity.QueueEntry, from enum.QueueStatus, tr *entity.QueueTransition) error {
	if !from.CanTransitionTo(entry.Status) {
		return fmt.Errorf("illegal queue transition %s -> %s", from, entry.Status)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.entries[entry.ID]
	if !ok {
		return fmt.Errorf("entry %s not found", entry.ID)
	}
	if stored.Status != from {
		return fmt.Errorf("entry %s is %s, not %s", entry.ID, stored.Status, from)
	}
	cp := *entry
	cp.Transaction = stored.Transaction
	r.entries[entry.ID] = &cp
	r.transitions = append(r.transitions, entity.QueueTransition{
		EntryID: entry.ID, FromStatus: from, ToStatus: entry.Status,
		AttemptCount: entry.AttemptCount, ErrorCode: tr.ErrorCode, ErrorMessage: tr.ErrorMessage, Note: tr.Note,
	})
	return nil
}

func (r *fakeQueueRepo) ReleaseLease(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		expired := time.Now().UTC().Add(-time.Second)
		e.LeaseOwner = nil
		e.LeaseExpiresAt = &expired
	}
	return nil
}

func (r *fakeQueueRepo) Cancel(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.Status != enum.QueuePending {
		return fmt.Errorf("only pending entries can be cancelled")
	}
	now := time.Now().UTC()
	e.CancelledAt = &now
	return nil
}

// scriptedClient returns canned results per call, in order. Once the script
// runs out, the last result repeats.
type scriptedClient struct {
	mu      sync.Mutex
	script  []scriptedResult
	calls   int
	lastIDs []string
}

type scriptedResult struct {
	resp *websrm.Response
	err  error
}

func (c *scriptedClient) Submit(ctx context.Context, tx *entity.FiscalTransaction, requestID string) (*websrm.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastIDs = append(c.lastIDs, tx.IDTrans)
	i := c.calls
	if i >= len(c.script) {
		i = len(c.script) - 1
	}
	c.calls++
	return c.script[i].resp, c.script[i].err
}
