package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/restoflow/websrm-adapter/internal/domain/enum"
)

// QueueEntry wraps a FiscalTransaction with delivery state. Entries are never
// deleted: fiscal compliance requires a provable attempt history, so every
// status change appends a QueueTransition instead of overwriting the past.
type QueueEntry struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TransactionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"transaction_id"`
	DeviceID      string    `gorm:"size:64;not null;index" json:"device_id"`

	Status        enum.QueueStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	AttemptCount  int              `gorm:"not null;default:0" json:"attempt_count"`
	NextAttemptAt *time.Time       `gorm:"index" json:"next_attempt_at,omitempty"`

	LastErrorCode    string `gorm:"size:16" json:"last_error_code,omitempty"`
	LastErrorMessage string `gorm:"type:text" json:"last_error_message,omitempty"`

	// Lease fields give the dispatcher exclusive ownership while sending.
	LeaseOwner     *string    `gorm:"size:64" json:"-"`
	LeaseExpiresAt *time.Time `json:"-"`

	// Confirmation identifiers persisted from a successful response.
	IDTransSrm     string `gorm:"size:64" json:"idTransSrm,omitempty"`
	CodeQR         string `gorm:"type:text" json:"codeQR,omitempty"`
	DtConfirmation string `gorm:"size:14" json:"dtConfirmation,omitempty"`

	// CancelledAt marks a pending entry whose originating order was cancelled
	// before dispatch ever began. The status column keeps its closed
	// vocabulary; cancelled entries are simply never picked up.
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Transaction FiscalTransaction `gorm:"foreignKey:TransactionID" json:"transaction,omitempty"`
	Transitions []QueueTransition `gorm:"foreignKey:EntryID" json:"transitions,omitempty"`
}

// BeforeCreate generates a UUID before creating a queue entry
func (e *QueueEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the QueueEntry model
func (QueueEntry) TableName() string {
	return "fiscal_queue_entries"
}

// IsDue reports whether the entry should be dispatched at the given instant.
func (e *QueueEntry) IsDue(now time.Time) bool {
	if e.CancelledAt != nil {
		return false
	}
	switch e.Status {
	case enum.QueuePending:
		return true
	case enum.QueueFailed:
		return e.NextAttemptAt != nil && !now.Before(*e.NextAttemptAt)
	default:
		return false
	}
}

// QueueTransition is one appended record of a queue entry status change.
// Rows are insert-only; together they form the audit trail.
type QueueTransition struct {
	ID           uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	EntryID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"entry_id"`
	FromStatus   enum.QueueStatus `gorm:"size:20;not null" json:"from_status"`
	ToStatus     enum.QueueStatus `gorm:"size:20;not null" json:"to_status"`
	AttemptCount int              `gorm:"not null" json:"attempt_count"`
	ErrorCode    string           `gorm:"size:16" json:"error_code,omitempty"`
	ErrorMessage string           `gorm:"type:text" json:"error_message,omitempty"`
	Note         string           `gorm:"size:255" json:"note,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a transition record
func (t *QueueTransition) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the QueueTransition model
func (QueueTransition) TableName() string {
	return "fiscal_queue_transitions"
}
