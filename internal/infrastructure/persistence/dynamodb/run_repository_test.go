package dynamodb

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dreschagin/hostinfo/internal/domain/entity"
	"github.com/dreschagin/hostinfo/internal/domain/valueobject"
)

type mockDynamo struct {
	puts    []*dynamodb.PutItemInput
	queries []*dynamodb.QueryInput
}

func (m *mockDynamo) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.puts = append(m.puts, params)
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDynamo) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.queries = append(m.queries, params)

	items := make([]map[string]types.AttributeValue, 0, len(m.puts))
	for i := len(m.puts) - 1; i >= 0; i-- {
		items = append(items, m.puts[i].Item)
	}
	return &dynamodb.QueryOutput{Items: items}, nil
}

func newSummary(host string) *entity.RunSummary {
	summary := entity.NewRunSummary(entity.HostInfo{Hostname: host})
	summary.StartedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	summary.Add(entity.MetricOutcome{Metric: valueobject.PS, Status: entity.StatusOK})
	summary.Add(entity.MetricOutcome{Metric: valueobject.Top, Status: entity.StatusNotImplemented})
	summary.Add(entity.MetricOutcome{Metric: valueobject.DF, Status: entity.StatusFailed})
	summary.FinishedAt = summary.StartedAt.Add(2 * time.Second)
	return summary
}

func TestRunRepository_RecordRun(t *testing.T) {
	client := &mockDynamo{}
	repo := newRunRepository(client, Config{TableName: "hostinfo_runs", TTLDays: 30})

	summary := newSummary("web-01")
	if err := repo.RecordRun(context.Background(), summary); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	if len(client.puts) != 1 {
		t.Fatalf("expected 1 put, got %d", len(client.puts))
	}
	put := client.puts[0]
	if *put.TableName != "hostinfo_runs" {
		t.Errorf("table = %s", *put.TableName)
	}

	pk := put.Item[attrPK].(*types.AttributeValueMemberS).Value
	sk := put.Item[attrSK].(*types.AttributeValueMemberS).Value
	if pk != "HOST#web-01" {
		t.Errorf("PK = %s", pk)
	}
	wantSK := "RUN#" + "1772359200000" + "#" + summary.RunID
	if sk != wantSK {
		t.Errorf("SK = %s, want %s", sk, wantSK)
	}

	expires := put.Item[attrExpiresAt].(*types.AttributeValueMemberN).Value
	if expires != "1774951200" {
		t.Errorf("expires_at = %s", expires)
	}
}

func TestRunRepository_ListRecent(t *testing.T) {
	client := &mockDynamo{}
	repo := newRunRepository(client, Config{TableName: "hostinfo_runs"})

	first := newSummary("web-01")
	second := newSummary("web-01")
	for _, s := range []*entity.RunSummary{first, second} {
		if err := repo.RecordRun(context.Background(), s); err != nil {
			t.Fatalf("RecordRun() error = %v", err)
		}
	}

	records, err := repo.ListRecent(context.Background(), "web-01", 500)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}

	if *client.queries[0].Limit != maxListLimit {
		t.Errorf("limit = %d, want %d", *client.queries[0].Limit, maxListLimit)
	}
	if len(records) != 2 || records[0].RunID != second.RunID {
		t.Fatalf("unexpected records: %+v", records)
	}

	record := records[0]
	if record.Collected != 2 || record.Failed != 1 || record.DurationMS != 2000 {
		t.Errorf("unexpected counters: %+v", record)
	}
	if !record.StartedAt.Equal(second.StartedAt) {
		t.Errorf("StartedAt = %s", record.StartedAt)
	}
	if !strings.Contains(record.Summary, second.RunID) {
		t.Errorf("summary JSON missing run id")
	}
	if _, ok := client.puts[0].Item[attrExpiresAt]; ok {
		t.Errorf("expires_at should be omitted without TTL")
	}
}

func TestRunRepository_Validation(t *testing.T) {
	repo := newRunRepository(&mockDynamo{}, Config{TableName: "t"})

	if err := repo.RecordRun(context.Background(), newSummary("")); err == nil {
		t.Error("expected error for empty host")
	}
	if _, err := repo.ListRecent(context.Background(), " ", 10); err == nil {
		t.Error("expected error for empty host")
	}
}
