package valueobject

import (
	"errors"
	"fmt"
	"strings"
)

// MetricName представляет имя метрики (Value Object)
// Используется как ключ для имени выходного документа
type MetricName string

const (
	PS       MetricName = "ps"
	Uptime   MetricName = "uptime"
	Whereis  MetricName = "whereis"
	Users    MetricName = "users"
	IP       MetricName = "ip"
	Issue    MetricName = "issue"
	Mem      MetricName = "mem"
	Top      MetricName = "top"
	DF       MetricName = "df"
	Hostname MetricName = "hostname"

	// Test диагностическая метрика, не входит в RunOrder
	Test MetricName = "test"
)

var errInvalidMetricName = errors.New("invalid metric name")

// Validate проверяет валидность имени метрики
func (n MetricName) Validate() error {
	switch n {
	case PS, Uptime, Whereis, Users, IP, Issue, Mem, Top, DF, Hostname, Test:
		return nil
	default:
		return fmt.Errorf("%w: %q", errInvalidMetricName, string(n))
	}
}

// String возвращает строковое представление имени метрики
func (n MetricName) String() string {
	return string(n)
}

// FileName возвращает имя выходного документа
func (n MetricName) FileName() string {
	return string(n) + ".json"
}

// Shape возвращает объявленную форму записи для метрики
func (n MetricName) Shape() RecordKind {
	switch n {
	case Uptime, Test:
		return KindScalar
	case Issue, Hostname:
		return KindText
	case Mem:
		return KindRow
	case PS, Whereis, Users, IP, Top, DF:
		return KindTable
	default:
		return KindNotImplemented
	}
}

// RunOrder возвращает фиксированный порядок сбора метрик
func RunOrder() []MetricName {
	return []MetricName{PS, Uptime, Whereis, Users, IP, Issue, Mem, Top, DF, Hostname}
}

// ParseMetricNames разбирает список имен через запятую
func ParseMetricNames(raw string) ([]MetricName, error) {
	names := make([]MetricName, 0)
	seen := make(map[MetricName]struct{})

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name := MetricName(part)
		if err := name.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: empty selection", errInvalidMetricName)
	}

	return names, nil
}
