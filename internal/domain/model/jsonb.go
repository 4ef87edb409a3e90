package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// jsonbカラム共通のScan/Value。
// NULLや空は空リスト扱いにする。
func jsonbValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonbScan(dst interface{}, src interface{}) error {
	if src == nil {
		return nil
	}
	switch s := src.(type) {
	case []byte:
		if len(s) == 0 {
			return nil
		}
		return json.Unmarshal(s, dst)
	case string:
		if s == "" {
			return nil
		}
		return json.Unmarshal([]byte(s), dst)
	default:
		return errors.New("unsupported jsonb source")
	}
}
