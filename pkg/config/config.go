package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Log        LogConfig
	Output     OutputConfig
	Collector  CollectorConfig
	S3         S3Config
	Redis      RedisConfig
	NATS       NATSConfig
	Database   DatabaseConfig
	Dynamo     DynamoConfig
	CloudWatch CloudWatchConfig
}

type LogConfig struct {
	Level string
}

type OutputConfig struct {
	Dir          string
	WriteSummary bool
}

type CollectorConfig struct {
	Metrics         string
	FailFast        bool
	CommandTimeout  time.Duration
	ProcUptimePath  string
	IssuePath       string
	PasswdPath      string
	WhereisPackages []string
	SystemUIDMax    int
}

type S3Config struct {
	Enabled            bool
	Bucket             string
	Region             string
	Endpoint           string
	AccessKeyID        string
	SecretAccessKey    string
	UsePathStyle       bool
	KeyPrefix          string
	RateLimitPerSecond float64
	RateLimitBurst     int
}

type RedisConfig struct {
	Enabled   bool
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

type NATSConfig struct {
	Enabled       bool
	URL           string
	Stream        string
	SubjectPrefix string
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type DynamoConfig struct {
	Enabled         bool
	TableRuns       string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	TTLDays         int
}

type CloudWatchConfig struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string

	MetricsEnabled    bool
	MetricsNamespace  string
	MetricsDimensions map[string]string

	LogsEnabled       bool
	LogGroupName      string
	LogStreamName     string
	LogsBufferSize    int
	LogsFlushInterval time.Duration
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	commandTimeout, err := parseDuration(getEnv("COMMAND_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid COMMAND_TIMEOUT: %w", err)
	}

	systemUIDMax, err := getEnvInt("SYSTEM_UID_MAX", 499)
	if err != nil {
		return nil, err
	}

	rateLimit, err := strconv.ParseFloat(getEnv("S3_RATE_LIMIT_PER_SECOND", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid S3_RATE_LIMIT_PER_SECOND: %w", err)
	}

	rateBurst, err := getEnvInt("S3_RATE_LIMIT_BURST", 5)
	if err != nil {
		return nil, err
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	redisTTL, err := parseDuration(getEnv("REDIS_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_TTL: %w", err)
	}

	dynamoTTLDays, err := getEnvInt("DYNAMODB_TTL_DAYS", 30)
	if err != nil {
		return nil, err
	}

	logsBufferSize, err := getEnvInt("CLOUDWATCH_LOGS_BUFFER_SIZE", 50)
	if err != nil {
		return nil, err
	}

	logsFlushInterval, err := parseDuration(getEnv("CLOUDWATCH_LOGS_FLUSH_INTERVAL", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLOUDWATCH_LOGS_FLUSH_INTERVAL: %w", err)
	}

	hostname, _ := os.Hostname()

	cfg := &Config{
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Output: OutputConfig{
			Dir:          getEnv("OUTPUT_DIR", "/var/lib/hostinfo/api"),
			WriteSummary: getEnvBool("WRITE_RUN_SUMMARY", true),
		},
		Collector: CollectorConfig{
			Metrics:         getEnv("METRICS", ""),
			FailFast:        getEnvBool("FAIL_FAST", false),
			CommandTimeout:  commandTimeout,
			ProcUptimePath:  getEnv("PROC_UPTIME_PATH", "/proc/uptime"),
			IssuePath:       getEnv("ISSUE_PATH", "/etc/issue"),
			PasswdPath:      getEnv("PASSWD_PATH", "/etc/passwd"),
			WhereisPackages: splitCSV(getEnv("WHEREIS_PACKAGES", "")),
			SystemUIDMax:    systemUIDMax,
		},
		S3: S3Config{
			Enabled:            getEnvBool("S3_ENABLED", false),
			Bucket:             getEnv("S3_BUCKET", ""),
			Region:             getEnv("S3_REGION", "ru-central1"),
			Endpoint:           getEnv("S3_ENDPOINT", "https://storage.yandexcloud.net"),
			AccessKeyID:        getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey:    getEnv("S3_SECRET_ACCESS_KEY", ""),
			UsePathStyle:       getEnvBool("S3_USE_PATH_STYLE", true),
			KeyPrefix:          getEnv("S3_KEY_PREFIX", "hostinfo"),
			RateLimitPerSecond: rateLimit,
			RateLimitBurst:     rateBurst,
		},
		Redis: RedisConfig{
			Enabled:   getEnvBool("REDIS_ENABLED", false),
			Addr:      getEnv("REDIS_ADDR", "localhost:6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        redisDB,
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "hostinfo"),
			TTL:       redisTTL,
		},
		NATS: NATSConfig{
			Enabled:       getEnvBool("NATS_ENABLED", false),
			URL:           getEnv("NATS_URL", "nats://localhost:4222"),
			Stream:        getEnv("NATS_STREAM", "HOSTINFO"),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "hostinfo"),
		},
		Database: DatabaseConfig{
			Enabled:         getEnvBool("DB_ENABLED", false),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Database:        getEnv("DB_NAME", "hostinfo"),
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Dynamo: DynamoConfig{
			Enabled:         getEnvBool("DYNAMODB_ENABLED", false),
			TableRuns:       getEnv("DYNAMODB_TABLE_RUNS", "hostinfo_runs"),
			Region:          getEnv("DYNAMODB_REGION", "us-east-1"),
			Endpoint:        getEnv("DYNAMODB_ENDPOINT", ""),
			AccessKeyID:     getEnv("DYNAMODB_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("DYNAMODB_SECRET_ACCESS_KEY", ""),
			TTLDays:         dynamoTTLDays,
		},
		CloudWatch: CloudWatchConfig{
			Region:            getEnv("CLOUDWATCH_REGION", "us-east-1"),
			Endpoint:          getEnv("CLOUDWATCH_ENDPOINT", ""),
			AccessKeyID:       getEnv("CLOUDWATCH_ACCESS_KEY_ID", ""),
			SecretAccessKey:   getEnv("CLOUDWATCH_SECRET_ACCESS_KEY", ""),
			MetricsEnabled:    getEnvBool("CLOUDWATCH_METRICS_ENABLED", false),
			MetricsNamespace:  getEnv("CLOUDWATCH_METRICS_NAMESPACE", "HostInfo"),
			MetricsDimensions: parseDimensions(getEnv("CLOUDWATCH_METRICS_DIMENSIONS", "")),
			LogsEnabled:       getEnvBool("CLOUDWATCH_LOGS_ENABLED", false),
			LogGroupName:      getEnv("CLOUDWATCH_LOG_GROUP", "/hostinfo"),
			LogStreamName:     getEnv("CLOUDWATCH_LOG_STREAM", hostname),
			LogsBufferSize:    logsBufferSize,
			LogsFlushInterval: logsFlushInterval,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет согласованность конфигурации и приводит OUTPUT_DIR к абсолютному пути
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output.Dir) == "" {
		return fmt.Errorf("OUTPUT_DIR cannot be empty")
	}
	dir, err := filepath.Abs(c.Output.Dir)
	if err != nil {
		return fmt.Errorf("invalid OUTPUT_DIR: %w", err)
	}
	c.Output.Dir = dir

	if c.Collector.SystemUIDMax < 0 {
		return fmt.Errorf("SYSTEM_UID_MAX must be non-negative")
	}
	if c.S3.Enabled && c.S3.Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required when S3_ENABLED=true")
	}
	if c.Dynamo.Enabled && c.Dynamo.TableRuns == "" {
		return fmt.Errorf("DYNAMODB_TABLE_RUNS is required when DYNAMODB_ENABLED=true")
	}
	if c.CloudWatch.LogsEnabled && (c.CloudWatch.LogGroupName == "" || c.CloudWatch.LogStreamName == "") {
		return fmt.Errorf("CLOUDWATCH_LOG_GROUP and CLOUDWATCH_LOG_STREAM are required when CLOUDWATCH_LOGS_ENABLED=true")
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Database)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return parsed, nil
}

func splitCSV(raw string) []string {
	items := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// parseDimensions разбирает "Key=Value,Key2=Value2"
func parseDimensions(raw string) map[string]string {
	dims := make(map[string]string)
	for _, pair := range splitCSV(raw) {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			continue
		}
		dims[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return dims
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
