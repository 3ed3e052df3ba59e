package dto

import (
	"bytes"
	"encoding/json"
)

// EncodeIndent сериализует значение с отступом в 2 пробела,
// без экранирования HTML и без завершающего перевода строки
func EncodeIndent(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
