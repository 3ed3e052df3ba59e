package port

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dreschagin/hostinfo/internal/domain/service"
)

// Классы ошибок сбора и записи метрик
var (
	ErrProcessLaunch    = errors.New("process launch failed")
	ErrProcessExecution = errors.New("process exited with non-zero status")
	ErrProcessTimeout   = errors.New("process timed out")
	ErrParse            = service.ErrParse
	ErrWrite            = errors.New("output write failed")
	ErrShapeMismatch    = errors.New("record shape mismatch")
)

// ExecutionError описывает ненулевой код выхода внешней команды
// Stdout команды остается валидным и возвращается вызывающему
type ExecutionError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *ExecutionError) Unwrap() error {
	return ErrProcessExecution
}
