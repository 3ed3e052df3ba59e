package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// exitError несет код завершения процесса; err == nil означает, что причина уже записана в лог
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// usageError ошибка конфигурации или аргументов (код 2)
func usageError(format string, args ...interface{}) error {
	return &exitError{code: 2, err: fmt.Errorf(format, args...)}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hostinfo",
		Short: "Collect host information into per-metric JSON documents",
		Long: `hostinfo runs a fixed set of shell commands on this host and writes
one JSON document per metric into the output directory.

Without a subcommand it performs a collection run.

Commands:
  show   Print the latest archived document of a metric
  runs   List recent collection runs of a host`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runCollect,
	}

	root.Flags().StringVar(&collectOutputDir, "output", "", "directory for metric documents (overrides OUTPUT_DIR)")
	root.Flags().StringVar(&collectOnly, "only", "", "comma-separated metric subset (overrides METRICS)")

	root.AddCommand(
		newShowCmd(),
		newRunsCmd(),
	)

	return root
}

func main() {
	os.Exit(exitCode(newRootCmd().Execute()))
}

// exitCode переводит ошибку команды в код завершения: 0 успех, 1 ошибки метрик, 2 запуск невозможен
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(os.Stderr, "Error:", ee.err)
		}
		return ee.code
	}

	// Ошибки разбора флагов cobra
	fmt.Fprintln(os.Stderr, "Error:", err)
	return 2
}
