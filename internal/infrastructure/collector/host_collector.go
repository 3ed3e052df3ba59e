package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/dreschagin/hostinfo/internal/application/port"
	"github.com/dreschagin/hostinfo/internal/domain/service"
	"github.com/dreschagin/hostinfo/internal/domain/valueobject"
	"github.com/dreschagin/hostinfo/pkg/logger"
)

// DefaultWhereisPackages список серверных пакетов для метрики whereis
var DefaultWhereisPackages = []string{
	"php", "mysql", "vim", "python", "ruby", "java", "apache2",
	"nginx", "openssl", "vsftpd", "make", "postgresql",
}

// DefaultSystemUIDMax верхняя граница UID системных учетных записей
const DefaultSystemUIDMax = 499

// Config пути и параметры, зависящие от окружения
type Config struct {
	ProcUptimePath  string
	IssuePath       string
	PasswdPath      string
	WhereisPackages []string
	// SystemUIDMax < 0 означает значение по умолчанию; 0 допустим (system только root)
	SystemUIDMax    int
}

func (c Config) withDefaults() Config {
	if c.ProcUptimePath == "" {
		c.ProcUptimePath = "/proc/uptime"
	}
	if c.IssuePath == "" {
		c.IssuePath = "/etc/issue"
	}
	if c.PasswdPath == "" {
		c.PasswdPath = "/etc/passwd"
	}
	if len(c.WhereisPackages) == 0 {
		c.WhereisPackages = DefaultWhereisPackages
	}
	if c.SystemUIDMax < 0 {
		c.SystemUIDMax = DefaultSystemUIDMax
	}
	return c
}

type collectFunc func(ctx context.Context) (port.Reading, error)

// HostCollector собирает метрики хоста через внешние утилиты
// Реализует интерфейс port.HostCollector
type HostCollector struct {
	runner  port.CommandRunner
	parser  *service.OutputParser
	config  Config
	logger  *logger.Logger
	methods map[valueobject.MetricName]collectFunc
}

// NewHostCollector создает новый collector
func NewHostCollector(runner port.CommandRunner, cfg Config, log *logger.Logger) *HostCollector {
	c := &HostCollector{
		runner: runner,
		parser: service.NewOutputParser(),
		config: cfg.withDefaults(),
		logger: log,
	}

	c.methods = map[valueobject.MetricName]collectFunc{
		valueobject.PS:       c.PS,
		valueobject.Uptime:   c.Uptime,
		valueobject.Whereis:  c.Whereis,
		valueobject.Users:    c.Users,
		valueobject.IP:       c.IP,
		valueobject.Issue:    c.Issue,
		valueobject.Mem:      c.Mem,
		valueobject.Top:      c.Top,
		valueobject.DF:       c.DF,
		valueobject.Hostname: c.Hostname,
		valueobject.Test:     c.Test,
	}

	return c
}

// Collect собирает одну метрику по имени
func (c *HostCollector) Collect(ctx context.Context, metric valueobject.MetricName) (port.Reading, error) {
	method, ok := c.methods[metric]
	if !ok {
		return port.Reading{}, fmt.Errorf("no collector for metric %q", metric)
	}
	return method(ctx)
}

// exec запускает команду; ненулевой код выхода становится предупреждением,
// stdout при этом разбирается как обычно
func (c *HostCollector) exec(ctx context.Context, primary port.Command, filter *port.Command) (string, []string, error) {
	out, err := c.runner.Run(ctx, primary, filter)
	if err == nil {
		return string(out), nil, nil
	}

	var execErr *port.ExecutionError
	if errors.As(err, &execErr) {
		c.logger.Warn("Command exited with non-zero status",
			"command", execErr.Command,
			"exit_code", execErr.ExitCode,
			"stderr", execErr.Stderr,
		)
		return string(out), []string{execErr.Error()}, nil
	}

	return "", nil, err
}

// collect общий шаблон: запуск, разбор, упаковка в Reading
func (c *HostCollector) collect(
	ctx context.Context,
	primary port.Command,
	filter *port.Command,
	parse func(string) (valueobject.Record, error),
) (port.Reading, error) {
	out, warnings, err := c.exec(ctx, primary, filter)
	if err != nil {
		return port.Reading{}, err
	}

	if err := c.parser.CheckEncoding(out); err != nil {
		return port.Reading{Warnings: warnings}, err
	}

	record, err := parse(out)
	if err != nil {
		return port.Reading{Warnings: warnings}, err
	}

	return port.Reading{Record: record, Warnings: warnings}, nil
}

func filterCmd(name string, args ...string) *port.Command {
	cmd := port.NewCommand(name, args...)
	return &cmd
}

func rawText(out string) (valueobject.Record, error) {
	return valueobject.NewText(out), nil
}
