package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/dreschagin/hostinfo/internal/application/port"
	"github.com/dreschagin/hostinfo/pkg/logger"
)

// waitDelay ограничивает ожидание вывода после отмены: потомки команды
// могут держать stdout открытым после завершения самой команды
const waitDelay = time.Second

// ProcessRunner запускает внешние команды через os/exec
// Реализует интерфейс port.CommandRunner
type ProcessRunner struct {
	timeout time.Duration
	logger  *logger.Logger
}

// NewProcessRunner создает новый runner; timeout <= 0 отключает ограничение времени
func NewProcessRunner(timeout time.Duration, log *logger.Logger) *ProcessRunner {
	return &ProcessRunner{
		timeout: timeout,
		logger:  log,
	}
}

// Run запускает primary и, при наличии, filter, соединенные pipe
func (r *ProcessRunner) Run(ctx context.Context, primary port.Command, filter *port.Command) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	if filter == nil {
		return r.runSingle(ctx, primary)
	}
	return r.runPipeline(ctx, primary, *filter)
}

func (r *ProcessRunner) runSingle(ctx context.Context, command port.Command) ([]byte, error) {
	cmd := exec.CommandContext(ctx, command.Name, command.Args...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("Running command", "command", command.String())

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", port.ErrProcessLaunch, command.Name, err)
	}

	waitErr := cmd.Wait()
	if err := r.classify(ctx, command, waitErr, stderr.String()); err != nil {
		return stdout.Bytes(), err
	}

	return stdout.Bytes(), nil
}

func (r *ProcessRunner) runPipeline(ctx context.Context, primary, filter port.Command) ([]byte, error) {
	src := exec.CommandContext(ctx, primary.Name, primary.Args...)
	dst := exec.CommandContext(ctx, filter.Name, filter.Args...)
	src.WaitDelay = waitDelay
	dst.WaitDelay = waitDelay

	reader, writer, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("%w: pipe: %v", port.ErrProcessLaunch, err)
	}

	var stdout, srcStderr, dstStderr bytes.Buffer
	src.Stdout = writer
	src.Stderr = &srcStderr
	dst.Stdin = reader
	dst.Stdout = &stdout
	dst.Stderr = &dstStderr

	r.logger.Debug("Running pipeline", "command", primary.String(), "filter", filter.String())

	if err := src.Start(); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		return nil, fmt.Errorf("%w: %s: %v", port.ErrProcessLaunch, primary.Name, err)
	}

	if err := dst.Start(); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		_ = src.Process.Kill()
		_ = src.Wait()
		return nil, fmt.Errorf("%w: %s: %v", port.ErrProcessLaunch, filter.Name, err)
	}

	// Дочерние процессы держат свои копии дескрипторов
	_ = reader.Close()
	_ = writer.Close()

	dstErr := dst.Wait()
	srcErr := src.Wait()

	if err := r.classify(ctx, primary, srcErr, srcStderr.String()); err != nil {
		return stdout.Bytes(), err
	}
	if err := r.classify(ctx, filter, dstErr, dstStderr.String()); err != nil {
		return stdout.Bytes(), err
	}

	return stdout.Bytes(), nil
}

// classify переводит ошибку ожидания процесса в классы port
func (r *ProcessRunner) classify(ctx context.Context, command port.Command, waitErr error, stderr string) error {
	if waitErr == nil {
		return nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %s", port.ErrProcessTimeout, command.Name, r.timeout)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s interrupted: %w", command.Name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return &port.ExecutionError{
			Command:  command.String(),
			ExitCode: exitErr.ExitCode(),
			Stderr:   stderr,
		}
	}

	return fmt.Errorf("%s: %w", command.Name, waitErr)
}
