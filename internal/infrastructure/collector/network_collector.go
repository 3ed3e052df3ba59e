package collector

import (
	"context"

	"github.com/dreschagin/hostinfo/internal/application/port"
)

// IP собирает адреса интерфейсов: интерфейс, семейство, адрес/префикс
func (c *HostCollector) IP(ctx context.Context) (port.Reading, error) {
	return c.collect(ctx,
		port.NewCommand("ip", "-o", "addr", "show"),
		filterCmd("awk", "{print $2,$3,$4}"),
		c.parser.ParseIP,
	)
}
