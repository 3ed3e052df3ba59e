package collector

import (
	"context"

	"github.com/dreschagin/hostinfo/internal/application/port"
)

const whereisProgram = `{ split($1, a, ":"); if (length($2)==0) print a[1]",Not Installed"; else print a[1]","$2; }`

// Whereis ищет распространенные серверные пакеты
func (c *HostCollector) Whereis(ctx context.Context) (port.Reading, error) {
	return c.collect(ctx,
		port.NewCommand("whereis", c.config.WhereisPackages...),
		filterCmd("awk", whereisProgram),
		c.parser.ParseWhereis,
	)
}
