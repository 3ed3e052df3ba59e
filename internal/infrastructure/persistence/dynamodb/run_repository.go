package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dreschagin/hostinfo/internal/application/dto"
	"github.com/dreschagin/hostinfo/internal/application/port"
	"github.com/dreschagin/hostinfo/internal/domain/entity"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100

	attrPK         = "PK"
	attrSK         = "SK"
	attrRunID      = "run_id"
	attrHost       = "host"
	attrStartedAt  = "started_at"
	attrFinishedAt = "finished_at"
	attrDurationMS = "duration_ms"
	attrCollected  = "collected"
	attrFailed     = "failed"
	attrSkipped    = "skipped"
	attrSummary    = "summary"
	attrExpiresAt  = "expires_at"
)

type Config struct {
	TableName       string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	TTLDays         int
}

// dynamoAPI is the subset of *dynamodb.Client used by RunRepository.
type dynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

var (
	_ port.RunRecorder = (*RunRepository)(nil)
	_ port.RunHistory  = (*RunRepository)(nil)
)

// RunRepository indexes run summaries per host in DynamoDB.
// Implements port.RunRecorder and port.RunHistory.
type RunRepository struct {
	client    dynamoAPI
	tableName string
	ttl       time.Duration
}

func NewRunRepository(ctx context.Context, cfg Config) (*RunRepository, error) {
	if strings.TrimSpace(cfg.TableName) == "" {
		return nil, fmt.Errorf("dynamodb table name is required")
	}

	if strings.TrimSpace(cfg.Region) == "" {
		cfg.Region = "us-east-1"
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	accessKeyID := strings.TrimSpace(cfg.AccessKeyID)
	secretAccessKey := strings.TrimSpace(cfg.SecretAccessKey)
	if accessKeyID != "" || secretAccessKey != "" {
		if accessKeyID == "" || secretAccessKey == "" {
			return nil, fmt.Errorf("both dynamodb access key id and secret access key are required for static credentials")
		}
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws config for dynamodb: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(options *dynamodb.Options) {
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			options.BaseEndpoint = &endpoint
		}
	})

	return newRunRepository(client, cfg), nil
}

func newRunRepository(client dynamoAPI, cfg Config) *RunRepository {
	var ttl time.Duration
	if cfg.TTLDays > 0 {
		ttl = time.Duration(cfg.TTLDays) * 24 * time.Hour
	}
	return &RunRepository{
		client:    client,
		tableName: strings.TrimSpace(cfg.TableName),
		ttl:       ttl,
	}
}

func (r *RunRepository) Name() string {
	return "dynamodb"
}

// RecordRun puts one item per run under PK=HOST#<host>.
func (r *RunRepository) RecordRun(ctx context.Context, summary *entity.RunSummary) error {
	item, err := r.toItem(summary)
	if err != nil {
		return err
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &r.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("dynamodb put item failed: %w", err)
	}

	return nil
}

// ListRecent returns the newest runs of a host first.
func (r *RunRepository) ListRecent(ctx context.Context, host string, limit int) ([]port.RunRecord, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	keyCondition := "#pk = :pk"
	output, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                &r.tableName,
		KeyConditionExpression:   &keyCondition,
		ExpressionAttributeNames: map[string]string{"#pk": attrPK},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: buildPK(host)},
		},
		ScanIndexForward: boolPointer(false),
		Limit:            int32Pointer(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb query failed: %w", err)
	}

	records := make([]port.RunRecord, 0, len(output.Items))
	for _, raw := range output.Items {
		record, err := fromItem(raw)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

func (r *RunRepository) toItem(summary *entity.RunSummary) (map[string]types.AttributeValue, error) {
	view := dto.FromRunSummary(summary)
	host := strings.TrimSpace(view.Host.Hostname)
	if host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if strings.TrimSpace(view.RunID) == "" {
		return nil, fmt.Errorf("run_id is required")
	}

	serialized, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run summary: %w", err)
	}

	startedAtMS := view.StartedAt.UTC().UnixMilli()
	finishedAtMS := view.FinishedAt.UTC().UnixMilli()

	item := map[string]types.AttributeValue{
		attrPK:         &types.AttributeValueMemberS{Value: buildPK(host)},
		attrSK:         &types.AttributeValueMemberS{Value: buildSK(startedAtMS, view.RunID)},
		attrRunID:      &types.AttributeValueMemberS{Value: view.RunID},
		attrHost:       &types.AttributeValueMemberS{Value: host},
		attrStartedAt:  &types.AttributeValueMemberN{Value: strconv.FormatInt(startedAtMS, 10)},
		attrFinishedAt: &types.AttributeValueMemberN{Value: strconv.FormatInt(finishedAtMS, 10)},
		attrDurationMS: &types.AttributeValueMemberN{Value: strconv.FormatInt(view.DurationMS, 10)},
		attrCollected:  &types.AttributeValueMemberN{Value: strconv.Itoa(view.Collected)},
		attrFailed:     &types.AttributeValueMemberN{Value: strconv.Itoa(view.Failed)},
		attrSkipped:    &types.AttributeValueMemberN{Value: strconv.Itoa(view.Skipped)},
		attrSummary:    &types.AttributeValueMemberS{Value: string(serialized)},
	}

	if r.ttl > 0 {
		expiresAt := view.StartedAt.UTC().Add(r.ttl).Unix()
		item[attrExpiresAt] = &types.AttributeValueMemberN{Value: strconv.FormatInt(expiresAt, 10)}
	}

	return item, nil
}

func fromItem(item map[string]types.AttributeValue) (port.RunRecord, error) {
	runID, err := attrString(item, attrRunID)
	if err != nil {
		return port.RunRecord{}, err
	}
	host, err := attrString(item, attrHost)
	if err != nil {
		return port.RunRecord{}, err
	}
	startedAtMS, err := attrInt64(item, attrStartedAt)
	if err != nil {
		return port.RunRecord{}, err
	}
	finishedAtMS, err := attrInt64(item, attrFinishedAt)
	if err != nil {
		return port.RunRecord{}, err
	}

	return port.RunRecord{
		RunID:      runID,
		Host:       host,
		StartedAt:  time.UnixMilli(startedAtMS).UTC(),
		FinishedAt: time.UnixMilli(finishedAtMS).UTC(),
		DurationMS: optionalInt64(item, attrDurationMS),
		Collected:  int(optionalInt64(item, attrCollected)),
		Failed:     int(optionalInt64(item, attrFailed)),
		Skipped:    int(optionalInt64(item, attrSkipped)),
		Summary:    optionalString(item, attrSummary),
	}, nil
}

func buildPK(host string) string {
	return "HOST#" + host
}

func buildSK(startedAtMS int64, runID string) string {
	return fmt.Sprintf("RUN#%013d#%s", startedAtMS, runID)
}

func attrString(item map[string]types.AttributeValue, name string) (string, error) {
	raw, ok := item[name]
	if !ok {
		return "", fmt.Errorf("missing attribute %s", name)
	}
	value, ok := raw.(*types.AttributeValueMemberS)
	if !ok || strings.TrimSpace(value.Value) == "" {
		return "", fmt.Errorf("invalid attribute %s", name)
	}
	return value.Value, nil
}

func optionalString(item map[string]types.AttributeValue, name string) string {
	raw, ok := item[name]
	if !ok {
		return ""
	}
	value, ok := raw.(*types.AttributeValueMemberS)
	if !ok {
		return ""
	}
	return value.Value
}

func attrInt64(item map[string]types.AttributeValue, name string) (int64, error) {
	raw, ok := item[name]
	if !ok {
		return 0, fmt.Errorf("missing attribute %s", name)
	}
	value, ok := raw.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("invalid attribute %s", name)
	}
	parsed, err := strconv.ParseInt(value.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid attribute %s: %w", name, err)
	}
	return parsed, nil
}

func optionalInt64(item map[string]types.AttributeValue, name string) int64 {
	raw, ok := item[name]
	if !ok {
		return 0
	}
	value, ok := raw.(*types.AttributeValueMemberN)
	if !ok {
		return 0
	}
	parsed, err := strconv.ParseInt(value.Value, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func boolPointer(v bool) *bool {
	return &v
}

func int32Pointer(v int32) *int32 {
	return &v
}
