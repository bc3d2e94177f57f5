package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// TransactionType represents sale vs refund (typTrans field)
type TransactionType int

const (
	TransactionSale   TransactionType = 0
	TransactionRefund TransactionType = 1
)

var transactionCodes = [...]string{"VEN", "REM"}

func (t TransactionType) String() string {
	names := [...]string{"Sale", "Refund"}
	if int(t) < 0 || int(t) >= len(names) {
		return "Sale"
	}
	return names[t]
}

// Code returns the wire code sent in the transaction payload.
func (t TransactionType) Code() string {
	if int(t) < 0 || int(t) >= len(transactionCodes) {
		return transactionCodes[TransactionSale]
	}
	return transactionCodes[t]
}

func (t TransactionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Code())
}

func (t *TransactionType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = TransactionType(i)
		return nil
	}
	switch str {
	case "VEN", "Sale":
		*t = TransactionSale
	case "REM", "Refund":
		*t = TransactionRefund
	}
	return nil
}

func (t TransactionType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *TransactionType) Scan(value interface{}) error {
	if value == nil {
		*t = TransactionSale
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = TransactionType(v)
	case int:
		*t = TransactionType(v)
	}
	return nil
}
