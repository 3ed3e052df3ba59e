package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dreschagin/hostinfo/internal/domain/valueobject"
)

// ErrParse вывод команды не соответствует ожидаемому формату
var ErrParse = errors.New("unexpected command output")

// OutputParser разбирает текстовый вывод утилит в записи (Domain Service)
// Все правила однопроходные: разбиение на строки и по разделителю
type OutputParser struct{}

// NewOutputParser создает новый parser
func NewOutputParser() *OutputParser {
	return &OutputParser{}
}

// CheckEncoding требует корректный UTF-8: JSON документ должен восстанавливать запись без потерь
func (p *OutputParser) CheckEncoding(output string) error {
	if utf8.ValidString(output) {
		return nil
	}
	for i := 0; i < len(output); {
		r, size := utf8.DecodeRuneInString(output[i:])
		if r == utf8.RuneError && size == 1 {
			return fmt.Errorf("%w: invalid UTF-8 at byte %d", ErrParse, i)
		}
		i += size
	}
	return fmt.Errorf("%w: invalid UTF-8", ErrParse)
}

// SplitRows разбивает вывод на строки, а строки на поля по точному разделителю.
// Пустой вывод дает ноль строк, завершающий перевод строки не создает пустую строку,
// подряд идущие разделители дают пустые поля.
func SplitRows(output, delim string) [][]string {
	lines := splitLines(output)
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, strings.Split(line, delim))
	}
	return rows
}

func splitLines(output string) []string {
	if output == "" {
		return nil
	}

	output = strings.TrimSuffix(output, "\n")
	output = strings.TrimSuffix(output, "\r")
	lines := strings.Split(output, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// ParsePS разбирает листинг процессов, удаляя ":" из полей заголовка
func (p *OutputParser) ParsePS(output string) (valueobject.Record, error) {
	rows := SplitRows(output, " ")
	if len(rows) == 0 {
		return valueobject.Record{}, fmt.Errorf("%w: empty process listing", ErrParse)
	}

	for i, col := range rows[0] {
		rows[0][i] = strings.ReplaceAll(col, ":", "")
	}

	return valueobject.NewTable(rows), nil
}

// ParseUptime переводит секунды работы системы в целые часы
func (p *OutputParser) ParseUptime(output string) (valueobject.Record, error) {
	fields := strings.Fields(output)
	if len(fields) != 2 {
		return valueobject.Record{}, fmt.Errorf("%w: expected 2 uptime fields, got %d", ErrParse, len(fields))
	}

	seconds, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return valueobject.Record{}, fmt.Errorf("%w: uptime seconds: %v", ErrParse, err)
	}
	if _, err := strconv.ParseFloat(fields[1], 64); err != nil {
		return valueobject.Record{}, fmt.Errorf("%w: idle seconds: %v", ErrParse, err)
	}

	return valueobject.NewScalar(int64(seconds / 3600)), nil
}

// ParseUptimeMillis переводит миллисекунды работы системы в целые часы
func (p *OutputParser) ParseUptimeMillis(output string) (valueobject.Record, error) {
	raw := strings.TrimSpace(output)
	millis, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return valueobject.Record{}, fmt.Errorf("%w: uptime millis %q", ErrParse, raw)
	}

	return valueobject.NewScalar(int64(millis) / (1000 * 60 * 60)), nil
}

// ParseWhereis разбирает строки вида "name,path"
func (p *OutputParser) ParseWhereis(output string) (valueobject.Record, error) {
	return valueobject.NewTable(SplitRows(output, ",")), nil
}

// ParseUsers разбирает строки вида "system|user name home"
func (p *OutputParser) ParseUsers(output string) (valueobject.Record, error) {
	return valueobject.NewTable(SplitRows(output, " ")), nil
}

// ParseIP разбирает строки вида "iface family address"
func (p *OutputParser) ParseIP(output string) (valueobject.Record, error) {
	return valueobject.NewTable(SplitRows(output, " ")), nil
}

// ParseMem оставляет только вторую строку (строку после заголовка)
func (p *OutputParser) ParseMem(output string) (valueobject.Record, error) {
	rows := SplitRows(output, " ")
	if len(rows) < 2 {
		return valueobject.Record{}, fmt.Errorf("%w: expected at least 2 memory rows, got %d", ErrParse, len(rows))
	}

	return valueobject.NewRow(rows[1]), nil
}

// ParseDF отбрасывает первую строку (заголовок)
func (p *OutputParser) ParseDF(output string) (valueobject.Record, error) {
	rows := SplitRows(output, " ")
	if len(rows) == 0 {
		return valueobject.NewTable(nil), nil
	}

	return valueobject.NewTable(rows[1:]), nil
}
