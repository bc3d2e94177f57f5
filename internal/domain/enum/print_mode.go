package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PrintMode represents how the bill is delivered to the customer (modImpr field)
type PrintMode int

const (
	PrintPaper      PrintMode = 0
	PrintElectronic PrintMode = 1
	PrintNone       PrintMode = 2
)

var printModeCodes = [...]string{"PAP", "ELE", "NON"}

func (m PrintMode) String() string {
	names := [...]string{"Paper", "Electronic", "None"}
	if int(m) < 0 || int(m) >= len(names) {
		return "Paper"
	}
	return names[m]
}

// Code returns the wire code sent in the transaction payload.
func (m PrintMode) Code() string {
	if int(m) < 0 || int(m) >= len(printModeCodes) {
		return printModeCodes[PrintPaper]
	}
	return printModeCodes[m]
}

func (m PrintMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Code())
}

func (m *PrintMode) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*m = PrintMode(i)
		return nil
	}
	switch str {
	case "PAP", "Paper":
		*m = PrintPaper
	case "ELE", "Electronic":
		*m = PrintElectronic
	case "NON", "None":
		*m = PrintNone
	}
	return nil
}

func (m PrintMode) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *PrintMode) Scan(value interface{}) error {
	if value == nil {
		*m = PrintPaper
		return nil
	}
	switch v := value.(type) {
	case int64:
		*m = PrintMode(v)
	case int:
		*m = PrintMode(v)
	}
	return nil
}

// PrintFormat represents the bill layout (formImpr field)
type PrintFormat int

const (
	FormatDetailed PrintFormat = 0
	FormatCompact  PrintFormat = 1
)

var printFormatCodes = [...]string{"DET", "ABR"}

func (f PrintFormat) String() string {
	names := [...]string{"Detailed", "Compact"}
	if int(f) < 0 || int(f) >= len(names) {
		return "Detailed"
	}
	return names[f]
}

// Code returns the wire code sent in the transaction payload.
func (f PrintFormat) Code() string {
	if int(f) < 0 || int(f) >= len(printFormatCodes) {
		return printFormatCodes[FormatDetailed]
	}
	return printFormatCodes[f]
}

func (f PrintFormat) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Code())
}

func (f *PrintFormat) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*f = PrintFormat(i)
		return nil
	}
	switch str {
	case "DET", "Detailed":
		*f = FormatDetailed
	case "ABR", "Compact":
		*f = FormatCompact
	}
	return nil
}

func (f PrintFormat) Value() (driver.Value, error) {
	return int64(f), nil
}

func (f *PrintFormat) Scan(value interface{}) error {
	if value == nil {
		*f = FormatDetailed
		return nil
	}
	switch v := value.(type) {
	case int64:
		*f = PrintFormat(v)
	case int:
		*f = PrintFormat(v)
	}
	return nil
}
