package valueobject

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"
)

// errInvalidUTF8 запись с невалидным UTF-8 не сериализуется (без замены на U+FFFD)
var errInvalidUTF8 = errors.New("record contains invalid UTF-8")

// RecordKind тег варианта записи
type RecordKind string

const (
	KindScalar         RecordKind = "scalar"
	KindText           RecordKind = "text"
	KindRow            RecordKind = "row"
	KindTable          RecordKind = "table"
	KindNotImplemented RecordKind = "not_implemented"
)

// Record представляет разобранный результат метрики (Value Object)
// Tagged variant: Scalar | Text | Row | Table | NotImplemented
type Record struct {
	kind   RecordKind
	scalar int64
	text   string
	row    []string
	table  [][]string
}

// NewScalar создает целочисленную запись
func NewScalar(v int64) Record {
	return Record{kind: KindScalar, scalar: v}
}

// NewText создает строковую запись (без разбора)
func NewText(v string) Record {
	return Record{kind: KindText, text: v}
}

// NewRow создает запись из одной строки полей
func NewRow(fields []string) Record {
	return Record{kind: KindRow, row: cloneRow(fields)}
}

// NewTable создает запись из последовательности строк
func NewTable(rows [][]string) Record {
	table := make([][]string, len(rows))
	for i, row := range rows {
		table[i] = cloneRow(row)
	}
	return Record{kind: KindTable, table: table}
}

// NotImplemented создает запись-заглушку для метрики без реализации
func NotImplemented() Record {
	return Record{kind: KindNotImplemented}
}

// Kind возвращает тег варианта
func (r Record) Kind() RecordKind {
	if r.kind == "" {
		return KindNotImplemented
	}
	return r.kind
}

func (r Record) Scalar() int64 {
	return r.scalar
}

func (r Record) Text() string {
	return r.text
}

// Row возвращает копию строки
func (r Record) Row() []string {
	return cloneRow(r.row)
}

// Table возвращает копию таблицы
func (r Record) Table() [][]string {
	table := make([][]string, len(r.table))
	for i, row := range r.table {
		table[i] = cloneRow(row)
	}
	return table
}

// Equals сравнивает две записи структурно
func (r Record) Equals(other Record) bool {
	if r.Kind() != other.Kind() {
		return false
	}

	switch r.Kind() {
	case KindScalar:
		return r.scalar == other.scalar
	case KindText:
		return r.text == other.text
	case KindRow:
		return slices.Equal(r.row, other.row)
	case KindTable:
		return slices.EqualFunc(r.table, other.table, func(a, b []string) bool {
			return slices.Equal(a, b)
		})
	default:
		return true
	}
}

// MarshalJSON кодирует запись в форму выходного документа
func (r Record) MarshalJSON() ([]byte, error) {
	if !r.validUTF8() {
		return nil, errInvalidUTF8
	}

	switch r.Kind() {
	case KindScalar:
		return json.Marshal(r.scalar)
	case KindText:
		return marshalNoEscape(r.text)
	case KindRow:
		return marshalNoEscape(r.Row())
	case KindTable:
		return marshalNoEscape(r.Table())
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON восстанавливает запись из документа
// Пустой массив восстанавливается как пустая таблица
func (r *Record) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return errors.New("empty record document")
	}

	switch trimmed[0] {
	case 'n':
		*r = NotImplemented()
		return nil
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*r = NewText(text)
		return nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		if len(items) == 0 {
			*r = NewTable(nil)
			return nil
		}
		if first := bytes.TrimSpace(items[0]); len(first) > 0 && first[0] == '[' {
			var table [][]string
			if err := json.Unmarshal(trimmed, &table); err != nil {
				return err
			}
			*r = NewTable(table)
			return nil
		}
		var row []string
		if err := json.Unmarshal(trimmed, &row); err != nil {
			return err
		}
		*r = NewRow(row)
		return nil
	default:
		var scalar int64
		if err := json.Unmarshal(trimmed, &scalar); err != nil {
			return fmt.Errorf("unsupported record document: %w", err)
		}
		*r = NewScalar(scalar)
		return nil
	}
}

func (r Record) validUTF8() bool {
	switch r.Kind() {
	case KindText:
		return utf8.ValidString(r.text)
	case KindRow:
		return validFields(r.row)
	case KindTable:
		for _, row := range r.table {
			if !validFields(row) {
				return false
			}
		}
	}
	return true
}

func validFields(fields []string) bool {
	for _, field := range fields {
		if !utf8.ValidString(field) {
			return false
		}
	}
	return true
}

func cloneRow(row []string) []string {
	if row == nil {
		return []string{}
	}
	return append([]string(nil), row...)
}

func marshalNoEscape(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
