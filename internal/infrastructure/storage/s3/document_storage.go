package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/time/rate"

	"github.com/dreschagin/hostinfo/internal/application/dto"
	"github.com/dreschagin/hostinfo/internal/domain/entity"
)

const contentTypeJSON = "application/json"

type Config struct {
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

// objectPutter is the subset of *s3.Client used by DocumentStorage.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// DocumentStorage mirrors metric documents into an S3 bucket.
// Implements port.DocumentPublisher.
type DocumentStorage struct {
	client    objectPutter
	bucket    string
	keyPrefix string
	limiter   *rate.Limiter
}

func NewDocumentStorage(ctx context.Context, cfg Config) (*DocumentStorage, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	if strings.TrimSpace(cfg.AccessKeyID) == "" || strings.TrimSpace(cfg.SecretAccessKey) == "" {
		return nil, fmt.Errorf("s3 access key id and secret are required")
	}
	if strings.TrimSpace(cfg.Region) == "" {
		cfg.Region = "ru-central1"
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = "https://storage.yandexcloud.net"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(options *s3.Options) {
		options.BaseEndpoint = &cfg.Endpoint
		options.UsePathStyle = cfg.UsePathStyle
	})

	return newDocumentStorage(client, cfg), nil
}

func newDocumentStorage(client objectPutter, cfg Config) *DocumentStorage {
	limit := rate.Limit(cfg.RateLimitPerSecond)
	if cfg.RateLimitPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}

	return &DocumentStorage{
		client:    client,
		bucket:    strings.TrimSpace(cfg.Bucket),
		keyPrefix: strings.Trim(strings.TrimSpace(cfg.KeyPrefix), "/"),
		limiter:   rate.NewLimiter(limit, burst),
	}
}

func (s *DocumentStorage) Name() string {
	return "s3"
}

// PublishDocument uploads the same bytes the file sink writes.
func (s *DocumentStorage) PublishDocument(ctx context.Context, doc *entity.Document) error {
	body, err := dto.EncodeIndent(doc.Record())
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	key := s.ObjectKey(doc)
	contentType := contentTypeJSON
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("put object failed: %w", err)
	}

	return nil
}

// ObjectKey returns <prefix>/<host>/<metric>.json.
func (s *DocumentStorage) ObjectKey(doc *entity.Document) string {
	return path.Join(s.keyPrefix, sanitizeSegment(doc.Host()), doc.Metric().FileName())
}

func (s *DocumentStorage) Close() error {
	return nil
}

func sanitizeSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	segment = strings.ReplaceAll(segment, "/", "_")
	if segment == "" || segment == "." || segment == ".." {
		return "unknown"
	}
	return segment
}
