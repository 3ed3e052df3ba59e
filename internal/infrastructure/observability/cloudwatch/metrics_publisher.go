package cloudwatch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/dreschagin/hostinfo/internal/domain/entity"
)

const (
	// CloudWatch limits
	maxMetricsPerRequest = 1000
	maxRetries           = 3
	initialBackoff       = 100 * time.Millisecond
)

// Run-level metric names.
const (
	MetricCollected      = "MetricsCollected"
	MetricFailed         = "MetricsFailed"
	MetricSkipped        = "MetricsSkipped"
	MetricRunDuration    = "RunDuration"
	MetricMetricDuration = "MetricDuration"
)

// MetricsPublisherConfig holds configuration for CloudWatch metrics publishing.
type MetricsPublisherConfig struct {
	Namespace         string            // CloudWatch namespace (e.g., "HostInfo")
	Region            string            // AWS region (e.g., "us-east-1")
	Endpoint          string            // Optional endpoint override (for LocalStack)
	AccessKeyID       string            // AWS access key
	SecretAccessKey   string            // AWS secret key
	DefaultDimensions map[string]string // Default dimensions added to all metrics
}

// metricDataAPI is the subset of *cloudwatch.Client used by MetricsPublisher.
type metricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// MetricsPublisher publishes run statistics to AWS CloudWatch.
// Implements port.RunRecorder.
type MetricsPublisher struct {
	client            metricDataAPI
	namespace         string
	defaultDimensions map[string]string
}

// NewMetricsPublisher creates a new CloudWatch metrics publisher.
func NewMetricsPublisher(ctx context.Context, cfg MetricsPublisherConfig) (*MetricsPublisher, error) {
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("namespace is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("region is required")
	}

	awsCfg, err := buildAWSConfig(ctx, cfg.Region, cfg.Endpoint, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	return &MetricsPublisher{
		client:            cloudwatch.NewFromConfig(awsCfg),
		namespace:         cfg.Namespace,
		defaultDimensions: cfg.DefaultDimensions,
	}, nil
}

func (p *MetricsPublisher) Name() string {
	return "cloudwatch"
}

// RecordRun publishes run counters, the run duration and per-metric durations.
func (p *MetricsPublisher) RecordRun(ctx context.Context, summary *entity.RunSummary) error {
	data := p.buildData(summary)

	// Publish in chunks (CloudWatch limit: 1000 metrics/request)
	for i := 0; i < len(data); i += maxMetricsPerRequest {
		end := i + maxMetricsPerRequest
		if end > len(data) {
			end = len(data)
		}

		if err := p.publishBatchWithRetry(ctx, data[i:end]); err != nil {
			return fmt.Errorf("failed to publish chunk: %w", err)
		}
	}

	return nil
}

// buildData converts a run summary to CloudWatch datums.
func (p *MetricsPublisher) buildData(summary *entity.RunSummary) []types.MetricDatum {
	timestamp := summary.FinishedAt
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	hostDims := p.dimensions("Host", summary.Host.Hostname)
	collected := summary.Count(entity.StatusOK) + summary.Count(entity.StatusNotImplemented)

	data := []types.MetricDatum{
		p.datum(MetricCollected, float64(collected), types.StandardUnitCount, timestamp, hostDims),
		p.datum(MetricFailed, float64(summary.Count(entity.StatusFailed)), types.StandardUnitCount, timestamp, hostDims),
		p.datum(MetricSkipped, float64(summary.Count(entity.StatusSkipped)), types.StandardUnitCount, timestamp, hostDims),
		p.datum(MetricRunDuration, float64(summary.Duration().Milliseconds()), types.StandardUnitMilliseconds, timestamp, hostDims),
	}

	for _, outcome := range summary.Outcomes {
		if outcome.Status == entity.StatusSkipped {
			continue
		}
		dims := append(p.dimensions("Host", summary.Host.Hostname), types.Dimension{
			Name:  aws.String("Metric"),
			Value: aws.String(outcome.Metric.String()),
		})
		data = append(data, p.datum(MetricMetricDuration, float64(outcome.DurationMS), types.StandardUnitMilliseconds, timestamp, dims))
	}

	return data
}

func (p *MetricsPublisher) datum(name string, value float64, unit types.StandardUnit, ts time.Time, dims []types.Dimension) types.MetricDatum {
	return types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(ts),
		Dimensions: dims,
	}
}

// dimensions returns default dimensions (sorted by name) followed by the given pair.
func (p *MetricsPublisher) dimensions(name, value string) []types.Dimension {
	keys := make([]string, 0, len(p.defaultDimensions))
	for key := range p.defaultDimensions {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	dims := make([]types.Dimension, 0, len(keys)+2)
	for _, key := range keys {
		dims = append(dims, types.Dimension{
			Name:  aws.String(key),
			Value: aws.String(p.defaultDimensions[key]),
		})
	}

	return append(dims, types.Dimension{
		Name:  aws.String(name),
		Value: aws.String(value),
	})
}

// publishBatchWithRetry publishes a batch of metrics with exponential backoff retry.
func (p *MetricsPublisher) publishBatchWithRetry(ctx context.Context, data []types.MetricDatum) error {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(p.namespace),
			MetricData: data,
		})
		if err == nil {
			return nil
		}

		lastErr = err

		// Exponential backoff before retry
		if attempt < maxRetries-1 {
			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

// buildAWSConfig creates an AWS config with credentials.
func buildAWSConfig(ctx context.Context, region, endpoint, accessKeyID, secretAccessKey string) (aws.Config, error) {
	optFns := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}

	// Add static credentials if provided
	if accessKeyID != "" && secretAccessKey != "" {
		optFns = append(optFns, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return aws.Config{}, err
	}

	// Override endpoint if specified (for LocalStack testing)
	if endpoint != "" {
		cfg.BaseEndpoint = aws.String(endpoint)
	}

	return cfg, nil
}
