package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dreschagin/hostinfo/internal/application/port"
	"github.com/dreschagin/hostinfo/internal/domain/entity"
	"github.com/dreschagin/hostinfo/internal/domain/valueobject"
	"github.com/dreschagin/hostinfo/pkg/logger"
)

type mockHostCollector struct {
	readings map[valueobject.MetricName]port.Reading
	errs     map[valueobject.MetricName]error
	calls    []valueobject.MetricName
}

func (m *mockHostCollector) Collect(_ context.Context, metric valueobject.MetricName) (port.Reading, error) {
	m.calls = append(m.calls, metric)
	if err, ok := m.errs[metric]; ok {
		return port.Reading{}, err
	}
	if reading, ok := m.readings[metric]; ok {
		return reading, nil
	}
	return port.Reading{Record: defaultRecord(metric)}, nil
}

func defaultRecord(metric valueobject.MetricName) valueobject.Record {
	switch metric.Shape() {
	case valueobject.KindScalar:
		return valueobject.NewScalar(1)
	case valueobject.KindText:
		return valueobject.NewText("text\n")
	case valueobject.KindRow:
		return valueobject.NewRow([]string{"Mem:", "1"})
	default:
		return valueobject.NewTable([][]string{{"a", "b"}})
	}
}

type mockOutputSink struct {
	writes    []valueobject.MetricName
	records   map[valueobject.MetricName]valueobject.Record
	errAt     map[valueobject.MetricName]error
	summaries []*entity.RunSummary
}

func newMockOutputSink() *mockOutputSink {
	return &mockOutputSink{records: make(map[valueobject.MetricName]valueobject.Record)}
}

func (m *mockOutputSink) Write(_ context.Context, metric valueobject.MetricName, record valueobject.Record) error {
	if err, ok := m.errAt[metric]; ok {
		return err
	}
	m.writes = append(m.writes, metric)
	m.records[metric] = record
	return nil
}

func (m *mockOutputSink) WriteSummary(_ context.Context, summary *entity.RunSummary) error {
	m.summaries = append(m.summaries, summary)
	return nil
}

type mockInspector struct{}

func (mockInspector) Describe(context.Context) (entity.HostInfo, error) {
	return entity.HostInfo{Hostname: "web-01", Platform: "debian"}, nil
}

type mockPublisher struct {
	docs []*entity.Document
	err  error
}

func (m *mockPublisher) Name() string { return "mock" }

func (m *mockPublisher) PublishDocument(_ context.Context, doc *entity.Document) error {
	m.docs = append(m.docs, doc)
	return m.err
}

func (m *mockPublisher) Close() error { return nil }

type mockRecorder struct {
	runs []*entity.RunSummary
}

func (m *mockRecorder) Name() string { return "mock" }

func (m *mockRecorder) RecordRun(_ context.Context, summary *entity.RunSummary) error {
	m.runs = append(m.runs, summary)
	return nil
}

func newTestUseCase(collector port.HostCollector, sink port.OutputSink, cfg CollectHostInfoConfig) *CollectHostInfoUseCase {
	return NewCollectHostInfoUseCase(collector, sink, mockInspector{}, cfg, logger.New("error"))
}

func TestCollectHostInfo_RunOrder(t *testing.T) {
	collector := &mockHostCollector{
		readings: map[valueobject.MetricName]port.Reading{
			valueobject.Top: {Record: valueobject.NotImplemented()},
		},
	}
	sink := newMockOutputSink()
	uc := newTestUseCase(collector, sink, CollectHostInfoConfig{WriteSummary: true})

	summary, err := uc.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	order := valueobject.RunOrder()
	if len(sink.writes) != len(order) {
		t.Fatalf("expected %d writes, got %d", len(order), len(sink.writes))
	}
	for i, metric := range order {
		if sink.writes[i] != metric {
			t.Errorf("write %d = %s, want %s", i, sink.writes[i], metric)
		}
	}

	if summary.Host.Hostname != "web-01" {
		t.Errorf("host = %s, want web-01", summary.Host.Hostname)
	}
	if summary.Count(entity.StatusOK) != len(order)-1 || summary.Count(entity.StatusNotImplemented) != 1 {
		t.Errorf("unexpected outcome counts: %+v", summary.Outcomes)
	}
	if len(sink.summaries) != 1 {
		t.Errorf("expected run summary to be written once, got %d", len(sink.summaries))
	}
	if sink.records[valueobject.Top].Kind() != valueobject.KindNotImplemented {
		t.Errorf("top should be written as not implemented")
	}
}

func TestCollectHostInfo_IsolatesFailures(t *testing.T) {
	collector := &mockHostCollector{
		errs: map[valueobject.MetricName]error{
			valueobject.Uptime: port.ErrParse,
		},
	}
	sink := newMockOutputSink()
	uc := newTestUseCase(collector, sink, CollectHostInfoConfig{})

	summary, err := uc.Execute(context.Background(), nil)
	if !errors.Is(err, port.ErrParse) {
		t.Fatalf("expected ErrParse in joined error, got %v", err)
	}

	if len(sink.writes) != len(valueobject.RunOrder())-1 {
		t.Errorf("expected every other metric to be written, got %v", sink.writes)
	}
	if summary.Count(entity.StatusFailed) != 1 || summary.Count(entity.StatusSkipped) != 0 {
		t.Errorf("unexpected outcomes: %+v", summary.Outcomes)
	}
}

func TestCollectHostInfo_FailFast(t *testing.T) {
	collector := &mockHostCollector{
		errs: map[valueobject.MetricName]error{
			valueobject.Whereis: port.ErrProcessLaunch,
		},
	}
	sink := newMockOutputSink()
	uc := newTestUseCase(collector, sink, CollectHostInfoConfig{FailFast: true})

	summary, err := uc.Execute(context.Background(), nil)
	if !errors.Is(err, port.ErrProcessLaunch) {
		t.Fatalf("expected ErrProcessLaunch, got %v", err)
	}

	if len(sink.writes) != 2 {
		t.Fatalf("expected ps and uptime written, got %v", sink.writes)
	}
	if len(collector.calls) != 3 {
		t.Errorf("expected collection to stop after whereis, got %v", collector.calls)
	}

	order := valueobject.RunOrder()
	if len(summary.Outcomes) != len(order) {
		t.Fatalf("expected an outcome for every metric, got %d", len(summary.Outcomes))
	}
	if summary.Count(entity.StatusSkipped) != len(order)-3 {
		t.Errorf("skipped = %d, want %d", summary.Count(entity.StatusSkipped), len(order)-3)
	}
}

func TestCollectHostInfo_ShapeMismatch(t *testing.T) {
	collector := &mockHostCollector{
		readings: map[valueobject.MetricName]port.Reading{
			valueobject.Uptime: {Record: valueobject.NewText("7200")},
		},
	}
	sink := newMockOutputSink()
	uc := newTestUseCase(collector, sink, CollectHostInfoConfig{})

	_, err := uc.CollectMetric(context.Background(), valueobject.Uptime)
	if !errors.Is(err, port.ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
	if len(sink.writes) != 0 {
		t.Errorf("mismatched record should not be written")
	}
}

func TestCollectHostInfo_CollectMetricWritesOnce(t *testing.T) {
	collector := &mockHostCollector{}
	sink := newMockOutputSink()
	uc := newTestUseCase(collector, sink, CollectHostInfoConfig{})

	if _, err := uc.CollectMetric(context.Background(), valueobject.DF); err != nil {
		t.Fatalf("CollectMetric() error = %v", err)
	}
	if len(sink.writes) != 1 || sink.writes[0] != valueobject.DF {
		t.Errorf("writes = %v, want [df]", sink.writes)
	}
}

func TestCollectHostInfo_WriteFailure(t *testing.T) {
	collector := &mockHostCollector{}
	sink := newMockOutputSink()
	sink.errAt = map[valueobject.MetricName]error{valueobject.Mem: port.ErrWrite}
	uc := newTestUseCase(collector, sink, CollectHostInfoConfig{})

	summary, err := uc.Execute(context.Background(), []valueobject.MetricName{valueobject.Mem, valueobject.DF})
	if !errors.Is(err, port.ErrWrite) {
		t.Fatalf("expected ErrWrite, got %v", err)
	}
	if summary.Outcomes[0].Status != entity.StatusFailed || summary.Outcomes[1].Status != entity.StatusOK {
		t.Errorf("unexpected outcomes: %+v", summary.Outcomes)
	}
}

func TestCollectHostInfo_Subset(t *testing.T) {
	collector := &mockHostCollector{}
	sink := newMockOutputSink()
	uc := newTestUseCase(collector, sink, CollectHostInfoConfig{})

	if _, err := uc.Execute(context.Background(), []valueobject.MetricName{valueobject.Test}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(sink.writes) != 1 || sink.writes[0] != valueobject.Test {
		t.Errorf("writes = %v, want [test]", sink.writes)
	}

	if _, err := uc.Execute(context.Background(), []valueobject.MetricName{"cpu"}); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestCollectHostInfo_MirrorsAndRecorders(t *testing.T) {
	collector := &mockHostCollector{}
	sink := newMockOutputSink()
	uc := newTestUseCase(collector, sink, CollectHostInfoConfig{})

	healthy := &mockPublisher{}
	broken := &mockPublisher{err: errors.New("connection refused")}
	recorder := &mockRecorder{}
	uc.AddPublisher(broken)
	uc.AddPublisher(healthy)
	uc.AddRecorder(recorder)

	summary, err := uc.Execute(context.Background(), []valueobject.MetricName{valueobject.Hostname, valueobject.DF})
	if err != nil {
		t.Fatalf("mirror failure must not fail the run: %v", err)
	}

	if len(healthy.docs) != 2 {
		t.Fatalf("expected 2 mirrored documents, got %d", len(healthy.docs))
	}
	doc := healthy.docs[0]
	if doc.RunID() != summary.RunID || doc.Host() != "web-01" || doc.Metric() != valueobject.Hostname {
		t.Errorf("unexpected document: run=%s host=%s metric=%s", doc.RunID(), doc.Host(), doc.Metric())
	}
	if len(recorder.runs) != 1 || recorder.runs[0] != summary {
		t.Errorf("recorder should receive the run summary once")
	}
}

func TestCollectHostInfo_CancelledContextSkipsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	collector := &mockHostCollector{}
	sink := newMockOutputSink()
	uc := newTestUseCase(collector, sink, CollectHostInfoConfig{})

	summary, err := uc.Execute(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(collector.calls) != 0 {
		t.Errorf("no metric should be collected, got %v", collector.calls)
	}
	if summary.Count(entity.StatusSkipped) != len(valueobject.RunOrder()) {
		t.Errorf("all metrics should be skipped: %+v", summary.Outcomes)
	}
}

func TestCollectHostInfo_LogsCompletionOnce(t *testing.T) {
	var buf bytes.Buffer
	uc := NewCollectHostInfoUseCase(
		&mockHostCollector{},
		newMockOutputSink(),
		mockInspector{},
		CollectHostInfoConfig{},
		logger.NewWithWriter("info", &buf),
	)

	summary, err := uc.Execute(context.Background(), []valueobject.MetricName{valueobject.Uptime, valueobject.DF})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := buf.String()
	if n := strings.Count(out, "Collection finished"); n != 1 {
		t.Fatalf("completion logged %d times, want 1:\n%s", n, out)
	}
	if !strings.Contains(out, "run_id="+summary.RunID) || !strings.Contains(out, "ok=2") {
		t.Errorf("completion line lacks run_id or counts:\n%s", out)
	}
}
