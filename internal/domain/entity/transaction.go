package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/restoflow/websrm-adapter/internal/domain/enum"
	"github.com/restoflow/websrm-adapter/pkg/apperror"
)

// FiscalTransaction is the signed WEB-SRM payload built from an internal
// order. Once a signature is set the record is immutable: a content change
// requires a new signature and a new logical transaction.
type FiscalTransaction struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	IDTrans string    `gorm:"size:64;uniqueIndex;not null" json:"idTrans"` // stable across retries

	Acti     enum.ActionType      `gorm:"default:0" json:"acti"`
	TypServ  enum.ServiceType     `gorm:"default:0" json:"typServ"`
	TypTrans enum.TransactionType `gorm:"default:0" json:"typTrans"`
	ModImpr  enum.PrintMode       `gorm:"default:0" json:"modImpr"`
	FormImpr enum.PrintFormat     `gorm:"default:0" json:"formImpr"`
	ModPai   enum.PaymentMode     `gorm:"default:1" json:"modPai"`

	// Monetary fields in integer cents.
	MontST     int64  `gorm:"not null" json:"montST"`
	MontTPS    int64  `gorm:"not null" json:"montTPS"`
	MontTVQ    int64  `gorm:"not null" json:"montTVQ"`
	MontTot    int64  `gorm:"not null" json:"montTot"`
	PourcTip   *int   `json:"pourcTip,omitempty"`
	MontRabais *int64 `json:"montRabais,omitempty"`

	DtTrans   string  `gorm:"size:14;not null" json:"dtTrans"` // YYYYMMDDHHMMSS, local time
	RefTrans  string  `gorm:"size:64;not null" json:"refTrans"`
	RefEmpl   *string `gorm:"size:64" json:"refEmpl,omitempty"`
	RefCli    *string `gorm:"size:64" json:"refCli,omitempty"`
	ECommerce bool    `gorm:"default:false" json:"eCommerce"`

	Signature     string `gorm:"type:text" json:"signature"`
	SignatureAlgo string `gorm:"size:32" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Lines []TransactionLine `gorm:"foreignKey:TransactionID" json:"desc"`
}

// BeforeCreate generates a UUID before creating a transaction
func (t *FiscalTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the FiscalTransaction model
func (FiscalTransaction) TableName() string {
	return "fiscal_transactions"
}

// Validate enforces the record invariants before signing or enqueueing.
func (t *FiscalTransaction) Validate() error {
	if t.IDTrans == "" {
		return fmt.Errorf("%w: missing idTrans", apperror.ErrIncompleteOrder)
	}
	if len(t.Lines) == 0 {
		return fmt.Errorf("%w: transaction has no line items", apperror.ErrIncompleteOrder)
	}
	for name, v := range map[string]int64{
		"montST":  t.MontST,
		"montTPS": t.MontTPS,
		"montTVQ": t.MontTVQ,
		"montTot": t.MontTot,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s is negative", apperror.ErrInvalidAmount, name)
		}
	}
	if t.MontRabais != nil && *t.MontRabais < 0 {
		return fmt.Errorf("%w: montRabais is negative", apperror.ErrInvalidAmount)
	}
	for i, line := range t.Lines {
		if line.PrixUnit < 0 || line.MontLigne < 0 {
			return fmt.Errorf("%w: line %d has a negative amount", apperror.ErrInvalidAmount, i)
		}
	}
	return nil
}

// Payload returns the wire representation that gets canonicalized, signed and
// submitted. Map form rather than direct struct marshaling so the canonical
// serialization is independent of Go field layout.
func (t *FiscalTransaction) Payload() map[string]interface{} {
	lines := make([]interface{}, len(t.Lines))
	for i, l := range t.Lines {
		lines[i] = map[string]interface{}{
			"descr":     l.Descr,
			"prixUnit":  l.PrixUnit,
			"qte":       l.Qte,
			"montLigne": l.MontLigne,
		}
	}
	p := map[string]interface{}{
		"idTrans":   t.IDTrans,
		"acti":      t.Acti.Code(),
		"typServ":   t.TypServ.Code(),
		"typTrans":  t.TypTrans.Code(),
		"modImpr":   t.ModImpr.Code(),
		"formImpr":  t.FormImpr.Code(),
		"modPai":    t.ModPai.Code(),
		"montST":    t.MontST,
		"montTPS":   t.MontTPS,
		"montTVQ":   t.MontTVQ,
		"montTot":   t.MontTot,
		"dtTrans":   t.DtTrans,
		"refTrans":  t.RefTrans,
		"eCommerce": t.ECommerce,
		"desc":      lines,
	}
	if t.PourcTip != nil {
		p["pourcTip"] = *t.PourcTip
	}
	if t.MontRabais != nil {
		p["montRabais"] = *t.MontRabais
	}
	if t.RefEmpl != nil {
		p["refEmpl"] = *t.RefEmpl
	}
	if t.RefCli != nil {
		p["refCli"] = *t.RefCli
	}
	return p
}

// TransactionLine is one sanitized line item of a fiscal transaction.
type TransactionLine struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Descr         string    `gorm:"size:128;not null" json:"descr"`
	PrixUnit      int64     `gorm:"not null" json:"prixUnit"` // cents
	Qte           int       `gorm:"not null" json:"qte"`
	MontLigne     int64     `gorm:"not null" json:"montLigne"` // cents

	CreatedAt time.Time `json:"-"`
}

// BeforeCreate generates a UUID before creating a transaction line
func (l *TransactionLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the TransactionLine model
func (TransactionLine) TableName() string {
	return "fiscal_transaction_lines"
}
