package main

import (
	"bytes"
	"errors"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: 0},
		{name: "metric failures", err: &exitError{code: 1}, want: 1},
		{name: "usage", err: usageError("bad flag %q", "x"), want: 2},
		{name: "wrapped", err: errors.Join(errors.New("ctx"), &exitError{code: 1}), want: 1},
		{name: "cobra parse error", err: errors.New("unknown flag: --nope"), want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRootCmd_UsageErrors(t *testing.T) {
	t.Setenv("OUTPUT_DIR", t.TempDir())
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("DB_ENABLED", "false")
	t.Setenv("DYNAMODB_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")

	tests := []struct {
		name string
		args []string
	}{
		{name: "positional argument", args: []string{"extra"}},
		{name: "unknown metric", args: []string{"--only", "ps,bogus"}},
		{name: "show without backend", args: []string{"show", "df"}},
		{name: "show without metric", args: []string{"show"}},
		{name: "runs without index", args: []string{"runs"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd()
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs(tt.args)

			if got := exitCode(cmd.Execute()); got != 2 {
				t.Errorf("exit code = %d, want 2", got)
			}
			if out.Len() != 0 {
				t.Errorf("unexpected stdout: %q", out.String())
			}
		})
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"show", "runs"} {
		sub, _, err := cmd.Find([]string{name})
		if err != nil || sub.Name() != name {
			t.Errorf("subcommand %q not registered: %v", name, err)
		}
	}
	if cmd.Flags().Lookup("output") == nil || cmd.Flags().Lookup("only") == nil {
		t.Error("root command must accept --output and --only")
	}
}
