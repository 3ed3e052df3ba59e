package port

import (
	"context"

	"github.com/dreschagin/hostinfo/internal/domain/entity"
	"github.com/dreschagin/hostinfo/internal/domain/valueobject"
)

// Reading результат сбора одной метрики
type Reading struct {
	Record   valueobject.Record
	Warnings []string
}

// HostCollector определяет интерфейс сбора метрик хоста (Port)
type HostCollector interface {
	// Collect собирает указанную метрику
	Collect(ctx context.Context, metric valueobject.MetricName) (Reading, error)
}

// HostInspector описывает хост, на котором выполняется сбор
type HostInspector interface {
	Describe(ctx context.Context) (entity.HostInfo, error)
}
