package hostmeta

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/dreschagin/hostinfo/internal/domain/entity"
)

// infoFunc совпадает с host.InfoWithContext
type infoFunc func(ctx context.Context) (*host.InfoStat, error)

// Inspector описывает текущий хост через gopsutil
// Реализует интерфейс port.HostInspector
type Inspector struct {
	info     infoFunc
	hostname func() (string, error)
}

// NewInspector создает новый inspector
func NewInspector() *Inspector {
	return &Inspector{
		info:     host.InfoWithContext,
		hostname: os.Hostname,
	}
}

// Describe возвращает имя хоста, платформу и время загрузки.
// При ошибке gopsutil имя берется из os.Hostname, ошибка возвращается вместе с частичным результатом
func (i *Inspector) Describe(ctx context.Context) (entity.HostInfo, error) {
	stat, err := i.info(ctx)
	if err == nil && stat == nil {
		err = errors.New("empty host info")
	}
	if err != nil {
		hostname, hostErr := i.hostname()
		if hostErr != nil {
			return entity.HostInfo{}, fmt.Errorf("failed to get host info: %v; hostname: %w", err, hostErr)
		}
		return entity.HostInfo{Hostname: hostname}, fmt.Errorf("failed to get host info: %w", err)
	}

	info := entity.HostInfo{
		Hostname:        stat.Hostname,
		Platform:        stat.Platform,
		PlatformVersion: stat.PlatformVersion,
		KernelVersion:   stat.KernelVersion,
	}
	if stat.BootTime > 0 {
		info.BootTime = time.Unix(int64(stat.BootTime), 0).UTC()
	}

	if info.Hostname == "" {
		if hostname, hostErr := i.hostname(); hostErr == nil {
			info.Hostname = hostname
		}
	}

	return info, nil
}
