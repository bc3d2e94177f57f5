package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// ActionType represents the WEB-SRM transaction action (acti field)
type ActionType int

const (
	ActionRegister ActionType = 0
	ActionCancel   ActionType = 1
	ActionModify   ActionType = 2
	ActionClosing  ActionType = 3
)

// actionCodes are the wire codes the protocol accepts for acti.
var actionCodes = [...]string{"ENR", "ANN", "MOD", "FER"}

func (a ActionType) String() string {
	names := [...]string{"Register", "Cancel", "Modify", "Closing"}
	if int(a) < 0 || int(a) >= len(names) {
		return "Register"
	}
	return names[a]
}

// Code returns the wire code sent in the transaction payload.
func (a ActionType) Code() string {
	if int(a) < 0 || int(a) >= len(actionCodes) {
		return actionCodes[ActionRegister]
	}
	return actionCodes[a]
}

func (a ActionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Code())
}

func (a *ActionType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*a = ActionType(i)
		return nil
	}
	switch str {
	case "ENR", "Register":
		*a = ActionRegister
	case "ANN", "Cancel":
		*a = ActionCancel
	case "MOD", "Modify":
		*a = ActionModify
	case "FER", "Closing":
		*a = ActionClosing
	}
	return nil
}

func (a ActionType) Value() (driver.Value, error) {
	return int64(a), nil
}

func (a *ActionType) Scan(value interface{}) error {
	if value == nil {
		*a = ActionRegister
		return nil
	}
	switch v := value.(type) {
	case int64:
		*a = ActionType(v)
	case int:
		*a = ActionType(v)
	}
	return nil
}
