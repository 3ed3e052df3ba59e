package collector

import (
	"context"

	"github.com/dreschagin/hostinfo/internal/application/port"
	"github.com/dreschagin/hostinfo/internal/domain/valueobject"
)

// PS собирает листинг процессов всех пользователей (11 колонок)
func (c *HostCollector) PS(ctx context.Context) (port.Reading, error) {
	return c.collect(ctx,
		port.NewCommand("ps", "aux"),
		filterCmd("awk", "{print $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11}"),
		c.parser.ParsePS,
	)
}

// Top заглушка: метрика явно помечена как нереализованная,
// команда не запускается
func (c *HostCollector) Top(_ context.Context) (port.Reading, error) {
	return port.Reading{Record: valueobject.NotImplemented()}, nil
}
