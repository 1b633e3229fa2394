package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap хранится в jsonb-колонке как объект
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil || data == nil {
		*m = JSONMap{}
		return err
	}
	out := JSONMap{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("scan json object: %w", err)
	}
	*m = out
	return nil
}

// StringList хранится в jsonb-колонке как массив строк
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

func (l *StringList) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil || data == nil {
		*l = StringList{}
		return err
	}
	out := []string{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("scan json array: %w", err)
	}
	*l = out
	return nil
}

// Contains проверяет наличие значения в списке
func (l StringList) Contains(v string) bool {
	for _, s := range l {
		if s == v {
			return true
		}
	}
	return false
}

// Capacity заполненность пункта сбора
type Capacity struct {
	Used       int `json:"used"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Normalize пересчитывает процент заполненности
func (c Capacity) Normalize() Capacity {
	switch {
	case c.Total <= 0:
		c.Percentage = 0
	case c.Used >= c.Total:
		c.Percentage = 100
	case c.Used <= 0:
		c.Percentage = 0
	default:
		c.Percentage = c.Used * 100 / c.Total
	}
	return c
}

func (c Capacity) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *Capacity) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil || data == nil {
		*c = Capacity{}
		return err
	}
	return json.Unmarshal(data, c)
}

// GeoPoint координаты адреса
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p GeoPoint) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *GeoPoint) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil || data == nil {
		return err
	}
	return json.Unmarshal(data, p)
}

func jsonBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported json source %T", src)
	}
}
