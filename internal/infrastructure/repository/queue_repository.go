package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/restoflow/websrm-adapter/internal/domain/entity"
	"github.com/restoflow/websrm-adapter/internal/domain/enum"
	domainRepo "github.com/restoflow/websrm-adapter/internal/domain/repository"
	"github.com/restoflow/websrm-adapter/pkg/apperror"
	"github.com/restoflow/websrm-adapter/pkg/pagination"
)

type queueRepository struct {
	db *gorm.DB
}

// NewQueueRepository creates a new queue repository
func NewQueueRepository(db *gorm.DB) domainRepo.QueueRepository {
	return &queueRepository{db: db}
}

func (r *queueRepository) Create(ctx context.Context, entry *entity.QueueEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return tx.Create(&entity.QueueTransition{
			EntryID:      entry.ID,
			FromStatus:   enum.QueuePending,
			ToStatus:     enum.QueuePending,
			AttemptCount: 0,
			Note:         "enqueued",
		}).Error
	})
}

func (r *queueRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.QueueEntry, error) {
	var entry entity.QueueEntry
	err := r.db.WithContext(ctx).
		Preload("Transaction").
		Preload("Transaction.Lines").
		Preload("Transitions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&entry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &entry, err
}

func (r *queueRepository) GetByIDTrans(ctx context.Context, idTrans string) (*entity.QueueEntry, error) {
	var entry entity.QueueEntry
	err := r.db.WithContext(ctx).
		Joins("JOIN fiscal_transactions ON fiscal_transactions.id = fiscal_queue_entries.transaction_id").
		Where("fiscal_transactions.id_trans = ?", idTrans).
		Preload("Transaction").
		Preload("Transaction.Lines").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &entry, err
}

func (r *queueRepository) List(ctx context.Context, params *domainRepo.QueueFilterParams) ([]entity.QueueEntry, int64, error) {
	var entries []entity.QueueEntry
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.QueueEntry{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.DeviceID != "" {
		query = query.Where("device_id = ?", params.DeviceID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	p := params.Pagination
	if p == nil {
		p = pagination.DefaultPagination()
	}
	p.Validate()

	err := query.
		Preload("Transaction").
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.PerPage).
		Find(&entries).Error
	return entries, total, err
}

func (r *queueRepository) CountByStatus(ctx context.Context) (map[enum.QueueStatus]int64, error) {
	type row struct {
		Status enum.QueueStatus
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&entity.QueueEntry{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enum.QueueStatus]int64, len(enum.AllQueueStatuses))
	for _, s := range enum.AllQueueStatuses {
		counts[s] = 0
	}
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}

// ClaimDue selects due entries with FOR UPDATE SKIP LOCKED so concurrent
// dispatchers never claim the same entry, then stamps them sending with a
// lease in the same transaction.
func (r *queueRepository) ClaimDue(ctx context.Context, owner string, lease time.Duration, limit int) ([]entity.QueueEntry, error) {
	var claimed []entity.QueueEntry
	now := time.Now().UTC()
	leaseUntil := now.Add(lease)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var due []entity.QueueEntry
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("cancelled_at IS NULL").
			Where("lease_expires_at IS NULL OR lease_expires_at < ?", now).
			Where(
				tx.Where("status = ?", enum.QueuePending).
					Or("status = ? AND next_attempt_at <= ?", enum.QueueFailed, now).
					Or("status = ? AND lease_expires_at < ?", enum.QueueSending, now),
			).
			Order("created_at ASC").
			Limit(limit).
			Find(&due).Error
		if err != nil {
			return err
		}

		for i := range due {
			e := &due[i]
			from := e.Status
			e.Status = enum.QueueSending
			e.LeaseOwner = &owner
			e.LeaseExpiresAt = &leaseUntil
			if err := tx.Model(&entity.QueueEntry{}).
				Where("id = ?", e.ID).
				Updates(map[string]interface{}{
					"status":           enum.QueueSending,
					"lease_owner":      owner,
					"lease_expires_at": leaseUntil,
				}).Error; err != nil {
				return err
			}
			if err := tx.Create(&entity.QueueTransition{
				EntryID:      e.ID,
				FromStatus:   from,
				ToStatus:     enum.QueueSending,
				AttemptCount: e.AttemptCount,
				Note:         "claimed by " + owner,
			}).Error; err != nil {
				return err
			}
		}
		claimed = due
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Transactions are loaded outside the row locks; the lease already
	// protects the claimed entries.
	for i := range claimed {
		if err := r.db.WithContext(ctx).
			Preload("Lines").
			First(&claimed[i].Transaction, "id = ?", claimed[i].TransactionID).Error; err != nil {
			return nil, err
		}
	}
	return claimed, nil
}

func (r *queueRepository) Transition(ctx context.Context, entry *entity.QueueEntry, from enum.QueueStatus, tr *entity.QueueTransition) error {
	if !from.CanTransitionTo(entry.Status) {
		return fmt.Errorf("illegal queue transition %s -> %s for entry %s", from, entry.Status, entry.ID)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.QueueEntry{}).
			Where("id = ? AND status = ?", entry.ID, from).
			Updates(map[string]interface{}{
				"status":             entry.Status,
				"attempt_count":      entry.AttemptCount,
				"next_attempt_at":    entry.NextAttemptAt,
				"last_error_code":    entry.LastErrorCode,
				"last_error_message": entry.LastErrorMessage,
				"lease_owner":        entry.LeaseOwner,
				"lease_expires_at":   entry.LeaseExpiresAt,
				"id_trans_srm":       entry.IDTransSrm,
				"code_qr":            entry.CodeQR,
				"dt_confirmation":    entry.DtConfirmation,
			}).Error; err != nil {
			return err
		}
		tr.EntryID = entry.ID
		tr.FromStatus = from
		tr.ToStatus = entry.Status
		tr.AttemptCount = entry.AttemptCount
		return tx.Create(tr).Error
	})
}

func (r *queueRepository) ReleaseLease(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.QueueEntry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"lease_owner":      nil,
			"lease_expires_at": time.Now().UTC().Add(-time.Second),
		}).Error
}

func (r *queueRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.QueueEntry{}).
			Where("id = ? AND status = ? AND cancelled_at IS NULL", id, enum.QueuePending).
			Update("cancelled_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.NewConflictError("only pending entries can be cancelled")
		}
		return tx.Create(&entity.QueueTransition{
			EntryID:    id,
			FromStatus: enum.QueuePending,
			ToStatus:   enum.QueuePending,
			Note:       "cancelled before dispatch",
		}).Error
	})
}
