package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PaymentMode represents the WEB-SRM payment mode (modPai field)
type PaymentMode int

const (
	PaymentCash  PaymentMode = 0
	PaymentCard  PaymentMode = 1
	PaymentDebit PaymentMode = 2
	PaymentOther PaymentMode = 3
)

var paymentCodes = [...]string{"ESP", "CRE", "DEB", "AUT"}

func (m PaymentMode) String() string {
	names := [...]string{"Cash", "Card", "Debit", "Other"}
	if int(m) < 0 || int(m) >= len(names) {
		return "Card"
	}
	return names[m]
}

// Code returns the wire code sent in the transaction payload.
func (m PaymentMode) Code() string {
	if int(m) < 0 || int(m) >= len(paymentCodes) {
		return paymentCodes[PaymentCard]
	}
	return paymentCodes[m]
}

func (m PaymentMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Code())
}

func (m *PaymentMode) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*m = PaymentMode(i)
		return nil
	}
	switch str {
	case "ESP", "Cash":
		*m = PaymentCash
	case "CRE", "Card":
		*m = PaymentCard
	case "DEB", "Debit":
		*m = PaymentDebit
	case "AUT", "Other":
		*m = PaymentOther
	}
	return nil
}

func (m PaymentMode) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *PaymentMode) Scan(value interface{}) error {
	if value == nil {
		*m = PaymentCard
		return nil
	}
	switch v := value.(type) {
	case int64:
		*m = PaymentMode(v)
	case int:
		*m = PaymentMode(v)
	}
	return nil
}
