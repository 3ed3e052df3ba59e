package collector

import (
	"context"

	"github.com/dreschagin/hostinfo/internal/application/port"
)

// Mem собирает итоговую строку памяти в MB (только строка после заголовка)
func (c *HostCollector) Mem(ctx context.Context) (port.Reading, error) {
	return c.collect(ctx,
		port.NewCommand("free", "-t", "-m"),
		filterCmd("awk", "{print $1,$2,$3,$4}"),
		c.parser.ParseMem,
	)
}

// DF собирает использование дисков без строки заголовка
func (c *HostCollector) DF(ctx context.Context) (port.Reading, error) {
	return c.collect(ctx,
		port.NewCommand("df", "-h"),
		filterCmd("awk", "{print $1,$2,$3,$4,$5,$6}"),
		c.parser.ParseDF,
	)
}
