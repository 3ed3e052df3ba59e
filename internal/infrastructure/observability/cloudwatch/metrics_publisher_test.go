package cloudwatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/dreschagin/hostinfo/internal/domain/entity"
	"github.com/dreschagin/hostinfo/internal/domain/valueobject"
)

type mockMetricDataClient struct {
	inputs []*cloudwatch.PutMetricDataInput
	errs   []error
}

func (m *mockMetricDataClient) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.inputs = append(m.inputs, params)
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return nil, err
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func testSummary() *entity.RunSummary {
	summary := entity.NewRunSummary(entity.HostInfo{Hostname: "web-01"})
	summary.StartedAt = time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)
	summary.Add(entity.MetricOutcome{Metric: valueobject.PS, Status: entity.StatusOK, DurationMS: 12})
	summary.Add(entity.MetricOutcome{Metric: valueobject.Top, Status: entity.StatusNotImplemented})
	summary.Add(entity.MetricOutcome{Metric: valueobject.Whereis, Status: entity.StatusFailed, DurationMS: 3})
	summary.Add(entity.MetricOutcome{Metric: valueobject.DF, Status: entity.StatusSkipped})
	summary.FinishedAt = summary.StartedAt.Add(1500 * time.Millisecond)
	return summary
}

func datumValues(data []types.MetricDatum) map[string]float64 {
	values := make(map[string]float64)
	for _, d := range data {
		if *d.MetricName == MetricMetricDuration {
			continue
		}
		values[*d.MetricName] = *d.Value
	}
	return values
}

func TestBuildData(t *testing.T) {
	p := &MetricsPublisher{
		namespace:         "HostInfo",
		defaultDimensions: map[string]string{"Environment": "test"},
	}

	data := p.buildData(testSummary())

	values := datumValues(data)
	want := map[string]float64{
		MetricCollected:   2,
		MetricFailed:      1,
		MetricSkipped:     1,
		MetricRunDuration: 1500,
	}
	for name, value := range want {
		if values[name] != value {
			t.Errorf("%s = %v, want %v", name, values[name], value)
		}
	}

	// 4 run-level datums + 3 non-skipped metric durations
	if len(data) != 7 {
		t.Fatalf("expected 7 datums, got %d", len(data))
	}

	first := data[0]
	if len(first.Dimensions) != 2 || *first.Dimensions[0].Name != "Environment" || *first.Dimensions[1].Name != "Host" {
		t.Errorf("unexpected dimensions: %+v", first.Dimensions)
	}
	if first.Unit != types.StandardUnitCount {
		t.Errorf("unit = %s", first.Unit)
	}

	last := data[len(data)-1]
	if *last.MetricName != MetricMetricDuration || *last.Dimensions[2].Value != "whereis" || *last.Value != 3 {
		t.Errorf("unexpected per-metric datum: %s %v", *last.MetricName, *last.Value)
	}
}

func TestRecordRun_RetriesThenSucceeds(t *testing.T) {
	client := &mockMetricDataClient{errs: []error{errors.New("throttled")}}
	p := &MetricsPublisher{client: client, namespace: "HostInfo"}

	if err := p.RecordRun(context.Background(), testSummary()); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if len(client.inputs) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(client.inputs))
	}
	if *client.inputs[1].Namespace != "HostInfo" {
		t.Errorf("namespace = %s", *client.inputs[1].Namespace)
	}
}

func TestRecordRun_GivesUp(t *testing.T) {
	failure := errors.New("access denied")
	client := &mockMetricDataClient{errs: []error{failure, failure, failure}}
	p := &MetricsPublisher{client: client, namespace: "HostInfo"}

	err := p.RecordRun(context.Background(), testSummary())
	if !errors.Is(err, failure) {
		t.Fatalf("expected wrapped failure, got %v", err)
	}
	if len(client.inputs) != maxRetries {
		t.Errorf("expected %d attempts, got %d", maxRetries, len(client.inputs))
	}
}
