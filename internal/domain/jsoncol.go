package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SlabList is a slab slice stored as a JSON column.
type SlabList []Slab

// TOURateList is a time-of-use slice stored as a JSON column.
type TOURateList []TOURate

func scanJSON(src, dest interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

func valueJSON(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s SystemSpecs) Value() (driver.Value, error)     { return valueJSON(s) }
func (s *SystemSpecs) Scan(src interface{}) error      { return scanJSON(src, s) }
func (r RateSchedule) Value() (driver.Value, error)    { return valueJSON(r) }
func (r *RateSchedule) Scan(src interface{}) error     { return scanJSON(src, r) }
func (d DynamicTariff) Value() (driver.Value, error)   { return valueJSON(d) }
func (d *DynamicTariff) Scan(src interface{}) error    { return scanJSON(src, d) }
func (b ChargeBreakdown) Value() (driver.Value, error) { return valueJSON(b) }
func (b *ChargeBreakdown) Scan(src interface{}) error  { return scanJSON(src, b) }
func (l SlabList) Value() (driver.Value, error)        { return valueJSON(l) }
func (l *SlabList) Scan(src interface{}) error         { return scanJSON(src, l) }
func (l TOURateList) Value() (driver.Value, error)     { return valueJSON(l) }
func (l *TOURateList) Scan(src interface{}) error      { return scanJSON(src, l) }
