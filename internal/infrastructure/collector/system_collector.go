package collector

import (
	"context"

	"github.com/dreschagin/hostinfo/internal/application/port"
)

// Uptime собирает время работы системы в целых часах
func (c *HostCollector) Uptime(ctx context.Context) (port.Reading, error) {
	return c.collect(ctx,
		port.NewCommand("cat", c.config.ProcUptimePath),
		nil,
		c.parser.ParseUptime,
	)
}

// Test диагностическая метрика: uptime через awk в миллисекундах
func (c *HostCollector) Test(ctx context.Context) (port.Reading, error) {
	return c.collect(ctx,
		port.NewCommand("awk", "{print $1*1000}", c.config.ProcUptimePath),
		nil,
		c.parser.ParseUptimeMillis,
	)
}

// Issue возвращает баннер ОС без разбора
func (c *HostCollector) Issue(ctx context.Context) (port.Reading, error) {
	return c.collect(ctx, port.NewCommand("cat", c.config.IssuePath), nil, rawText)
}

// Hostname возвращает имя хоста без разбора
func (c *HostCollector) Hostname(ctx context.Context) (port.Reading, error) {
	return c.collect(ctx, port.NewCommand("hostname"), nil, rawText)
}
