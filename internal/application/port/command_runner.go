package port

import (
	"context"
	"strings"
)

// Command описывает запуск внешней утилиты без участия shell
type Command struct {
	Name string
	Args []string
}

// NewCommand создает команду
func NewCommand(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// String возвращает командную строку для логов
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// CommandRunner определяет интерфейс запуска внешних команд (Port)
// Реализация будет в Infrastructure слое
type CommandRunner interface {
	// Run запускает primary, при наличии filter передает ему stdout primary
	// и возвращает stdout последней команды в цепочке.
	// При ненулевом коде выхода возвращает stdout вместе с *ExecutionError.
	Run(ctx context.Context, primary Command, filter *Command) ([]byte, error)
}
