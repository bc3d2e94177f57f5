package websrm

import (
	"fmt"
	"log"

	"github.com/restoflow/websrm-adapter/internal/domain/entity"
	"github.com/restoflow/websrm-adapter/internal/domain/enum"
	"github.com/restoflow/websrm-adapter/pkg/apperror"
	"github.com/restoflow/websrm-adapter/pkg/fiscalfmt"
)

// MappingWarning records one default substitution made while translating a
// raw order value to protocol vocabulary. Substitutions are deliberate
// forward compatibility, but every one must be auditable.
type MappingWarning struct {
	Field       string `json:"field"`
	Raw         string `json:"raw"`
	Substituted string `json:"substituted"`
}

func (w MappingWarning) String() string {
	return fmt.Sprintf("field %s: unknown value %q substituted with %q", w.Field, w.Raw, w.Substituted)
}

// Mapping tables from the order system's vocabulary to protocol enums.
// Unlisted raw values fall back to the documented default with a warning.
var (
	actionByStatus = map[string]enum.ActionType{
		"completed": enum.ActionRegister,
		"paid":      enum.ActionRegister,
		"cancelled": enum.ActionCancel,
		"modified":  enum.ActionModify,
		"closing":   enum.ActionClosing,
	}
	serviceByChannel = map[string]enum.ServiceType{
		"dine_in":  enum.ServiceRestaurant,
		"takeout":  enum.ServiceRestaurant,
		"counter":  enum.ServiceRestaurant,
		"delivery": enum.ServiceDelivery,
		"courier":  enum.ServiceDelivery,
	}
	transactionByKind = map[string]enum.TransactionType{
		"sale":   enum.TransactionSale,
		"refund": enum.TransactionRefund,
	}
	paymentByMethod = map[string]enum.PaymentMode{
		"cash":       enum.PaymentCash,
		"card":       enum.PaymentCard,
		"credit":     enum.PaymentCard,
		"visa":       enum.PaymentCard,
		"mastercard": enum.PaymentCard,
		"debit":      enum.PaymentDebit,
		"interac":    enum.PaymentDebit,
		"gift_card":  enum.PaymentOther,
		"mixed":      enum.PaymentOther,
	}
	printModeByName = map[string]enum.PrintMode{
		"paper":      enum.PrintPaper,
		"electronic": enum.PrintElectronic,
		"email":      enum.PrintElectronic,
		"none":       enum.PrintNone,
	}
	printFormatByName = map[string]enum.PrintFormat{
		"detailed": enum.FormatDetailed,
		"compact":  enum.FormatCompact,
	}
)

// Mapper builds FiscalTransaction records from internal orders.
type Mapper struct {
	serviceDefault enum.ServiceType
}

// NewMapper creates a mapper. serviceDefault is used when the order carries
// an unknown service channel.
func NewMapper(serviceDefault enum.ServiceType) *Mapper {
	return &Mapper{serviceDefault: serviceDefault}
}

// Build translates an order into a transaction record under the given stable
// logical id. It returns the record together with every default substitution
// made along the way; callers decide whether warnings matter, the mapper only
// guarantees they are complete and logged.
func (m *Mapper) Build(order *Order, idTrans string) (*entity.FiscalTransaction, []MappingWarning, error) {
	if order == nil || order.ID == "" {
		return nil, nil, fmt.Errorf("%w: order has no identifier", apperror.ErrIncompleteOrder)
	}
	if len(order.Items) == 0 {
		return nil, nil, fmt.Errorf("%w: order %s has no line items", apperror.ErrIncompleteOrder, order.ID)
	}

	var warnings []mappingResult
	acti := lookup(&warnings, "acti", order.Status, actionByStatus, enum.ActionRegister)
	typServ := lookup(&warnings, "typServ", order.Channel, serviceByChannel, m.serviceDefault)
	typTrans := lookup(&warnings, "typTrans", order.Kind, transactionByKind, enum.TransactionSale)
	modPai := lookup(&warnings, "modPai", order.PaymentMethod, paymentByMethod, enum.PaymentCard)
	modImpr := lookup(&warnings, "modImpr", order.PrintMode, printModeByName, enum.PrintPaper)
	formImpr := lookup(&warnings, "formImpr", order.PrintFormat, printFormatByName, enum.FormatDetailed)

	montST, err := fiscalfmt.AmountCents(order.Subtotal)
	if err != nil {
		return nil, nil, err
	}
	montTPS, err := fiscalfmt.AmountCents(order.FederalTax)
	if err != nil {
		return nil, nil, err
	}
	montTVQ, err := fiscalfmt.AmountCents(order.ProvincialTax)
	if err != nil {
		return nil, nil, err
	}
	montTot, err := fiscalfmt.AmountCents(order.Total)
	if err != nil {
		return nil, nil, err
	}
	dtTrans, err := fiscalfmt.LocalCompactTimestamp(order.PlacedAt)
	if err != nil {
		return nil, nil, err
	}
	refTrans, err := fiscalfmt.SanitizeText(order.ID, MaxTextLength)
	if err != nil {
		return nil, nil, err
	}

	lines := make([]entity.TransactionLine, 0, len(order.Items))
	for i, item := range order.Items {
		descr, err := fiscalfmt.SanitizeText(item.Description, MaxTextLength)
		if err != nil {
			return nil, nil, err
		}
		prixUnit, err := fiscalfmt.AmountCents(item.UnitPrice)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", i, err)
		}
		montLigne, err := fiscalfmt.AmountCents(item.UnitPrice * float64(item.Quantity))
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", i, err)
		}
		lines = append(lines, entity.TransactionLine{
			Descr:     descr,
			PrixUnit:  prixUnit,
			Qte:       item.Quantity,
			MontLigne: montLigne,
		})
	}

	tx := &entity.FiscalTransaction{
		IDTrans:   idTrans,
		Acti:      acti,
		TypServ:   typServ,
		TypTrans:  typTrans,
		ModImpr:   modImpr,
		FormImpr:  formImpr,
		ModPai:    modPai,
		MontST:    montST,
		MontTPS:   montTPS,
		MontTVQ:   montTVQ,
		MontTot:   montTot,
		DtTrans:   dtTrans,
		RefTrans:  refTrans,
		ECommerce: order.ECommerce,
		Lines:     lines,
	}
	if order.TipPercent != nil {
		tip := *order.TipPercent
		tx.PourcTip = &tip
	}
	if order.Discount != nil {
		rabais, err := fiscalfmt.AmountCents(*order.Discount)
		if err != nil {
			return nil, nil, err
		}
		tx.MontRabais = &rabais
	}
	if order.EmployeeRef != "" {
		ref, err := fiscalfmt.SanitizeText(order.EmployeeRef, MaxTextLength)
		if err != nil {
			return nil, nil, err
		}
		tx.RefEmpl = &ref
	}
	if order.CustomerRef != "" {
		ref, err := fiscalfmt.SanitizeText(order.CustomerRef, MaxTextLength)
		if err != nil {
			return nil, nil, err
		}
		tx.RefCli = &ref
	}

	if err := tx.Validate(); err != nil {
		return nil, nil, err
	}

	out := make([]MappingWarning, len(warnings))
	for i, w := range warnings {
		out[i] = MappingWarning(w)
		log.Printf("order %s: %s", order.ID, out[i])
	}
	return tx, out, nil
}

// mappingResult mirrors MappingWarning so lookup can stay generic over the
// enum value types without pulling the warning type into the signature.
type mappingResult struct {
	Field       string
	Raw         string
	Substituted string
}

type protocolCode interface {
	Code() string
}

func lookup[T protocolCode](warnings *[]mappingResult, field, raw string, table map[string]T, fallback T) T {
	if v, ok := table[raw]; ok {
		return v
	}
	*warnings = append(*warnings, mappingResult{
		Field:       field,
		Raw:         raw,
		Substituted: fallback.Code(),
	})
	return fallback
}
