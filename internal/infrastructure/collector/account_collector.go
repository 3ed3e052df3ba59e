package collector

import (
	"context"
	"fmt"

	"github.com/dreschagin/hostinfo/internal/application/port"
)

// Users классифицирует учетные записи: system (UID <= SystemUIDMax) или user
func (c *HostCollector) Users(ctx context.Context) (port.Reading, error) {
	program := fmt.Sprintf(
		`{ if ($3<=%d) print "system",$1,$6; else print "user",$1,$6; }`,
		c.config.SystemUIDMax,
	)

	return c.collect(ctx,
		port.NewCommand("cat", c.config.PasswdPath),
		filterCmd("awk", "-F:", program),
		c.parser.ParseUsers,
	)
}
