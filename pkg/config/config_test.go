package config

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OUTPUT_DIR", "")
	t.Setenv("COMMAND_TIMEOUT", "")
	t.Setenv("WHEREIS_PACKAGES", "")
	t.Setenv("S3_ENABLED", "")
	t.Setenv("FAIL_FAST", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Output.Dir != "/var/lib/hostinfo/api" {
		t.Errorf("Output.Dir = %s", cfg.Output.Dir)
	}
	if !cfg.Output.WriteSummary {
		t.Error("WriteSummary should default to true")
	}
	if cfg.Collector.CommandTimeout != 30*time.Second {
		t.Errorf("CommandTimeout = %s", cfg.Collector.CommandTimeout)
	}
	if cfg.Collector.FailFast {
		t.Error("FailFast should default to false")
	}
	if len(cfg.Collector.WhereisPackages) != 0 {
		t.Errorf("WhereisPackages = %v, want empty (collector default)", cfg.Collector.WhereisPackages)
	}
	if cfg.S3.Enabled {
		t.Error("S3 mirror should be disabled by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OUTPUT_DIR", dir)
	t.Setenv("COMMAND_TIMEOUT", "5s")
	t.Setenv("WHEREIS_PACKAGES", "php, nginx ,,vim")
	t.Setenv("SYSTEM_UID_MAX", "999")
	t.Setenv("FAIL_FAST", "true")
	t.Setenv("CLOUDWATCH_METRICS_DIMENSIONS", "Env=prod, Team=infra,broken")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Output.Dir != dir {
		t.Errorf("Output.Dir = %s, want %s", cfg.Output.Dir, dir)
	}
	if cfg.Collector.CommandTimeout != 5*time.Second {
		t.Errorf("CommandTimeout = %s", cfg.Collector.CommandTimeout)
	}
	if !reflect.DeepEqual(cfg.Collector.WhereisPackages, []string{"php", "nginx", "vim"}) {
		t.Errorf("WhereisPackages = %v", cfg.Collector.WhereisPackages)
	}
	if cfg.Collector.SystemUIDMax != 999 || !cfg.Collector.FailFast {
		t.Errorf("collector config = %+v", cfg.Collector)
	}
	want := map[string]string{"Env": "prod", "Team": "infra"}
	if !reflect.DeepEqual(cfg.CloudWatch.MetricsDimensions, want) {
		t.Errorf("MetricsDimensions = %v, want %v", cfg.CloudWatch.MetricsDimensions, want)
	}
}

func TestLoad_RelativeOutputDirIsResolved(t *testing.T) {
	t.Setenv("OUTPUT_DIR", "api")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !filepath.IsAbs(cfg.Output.Dir) || filepath.Base(cfg.Output.Dir) != "api" {
		t.Errorf("Output.Dir = %s, want absolute path ending in api", cfg.Output.Dir)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad timeout", map[string]string{"COMMAND_TIMEOUT": "soon"}, "COMMAND_TIMEOUT"},
		{"bad uid", map[string]string{"SYSTEM_UID_MAX": "many"}, "SYSTEM_UID_MAX"},
		{"s3 without bucket", map[string]string{"S3_ENABLED": "true", "S3_BUCKET": ""}, "S3_BUCKET"},
		{"bad redis ttl", map[string]string{"REDIS_TTL": "forever"}, "REDIS_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Load() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_ZeroValuesAccepted(t *testing.T) {
	t.Setenv("OUTPUT_DIR", t.TempDir())
	t.Setenv("S3_ENABLED", "false")
	t.Setenv("S3_RATE_LIMIT_PER_SECOND", "0")
	t.Setenv("SYSTEM_UID_MAX", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.S3.RateLimitPerSecond != 0 {
		t.Errorf("RateLimitPerSecond = %v, want 0 (throttling disabled)", cfg.S3.RateLimitPerSecond)
	}
	if cfg.Collector.SystemUIDMax != 0 {
		t.Errorf("SystemUIDMax = %d, want 0", cfg.Collector.SystemUIDMax)
	}
}
