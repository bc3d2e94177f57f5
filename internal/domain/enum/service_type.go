package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// ServiceType represents the WEB-SRM service category (typServ field)
type ServiceType int

const (
	ServiceRestaurant ServiceType = 0
	ServiceDelivery   ServiceType = 1
)

var serviceCodes = [...]string{"RES", "LIV"}

func (t ServiceType) String() string {
	names := [...]string{"Restaurant", "Delivery"}
	if int(t) < 0 || int(t) >= len(names) {
		return "Restaurant"
	}
	return names[t]
}

// Code returns the wire code sent in the transaction payload.
func (t ServiceType) Code() string {
	if int(t) < 0 || int(t) >= len(serviceCodes) {
		return serviceCodes[ServiceRestaurant]
	}
	return serviceCodes[t]
}

func (t ServiceType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Code())
}

func (t *ServiceType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = ServiceType(i)
		return nil
	}
	switch str {
	case "RES", "Restaurant":
		*t = ServiceRestaurant
	case "LIV", "Delivery":
		*t = ServiceDelivery
	}
	return nil
}

func (t ServiceType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *ServiceType) Scan(value interface{}) error {
	if value == nil {
		*t = ServiceRestaurant
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = ServiceType(v)
	case int:
		*t = ServiceType(v)
	}
	return nil
}
