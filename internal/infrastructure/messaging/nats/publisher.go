package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/dreschagin/hostinfo/internal/application/dto"
	"github.com/dreschagin/hostinfo/internal/domain/entity"
	"github.com/dreschagin/hostinfo/pkg/logger"
)

const publishAckTimeout = 5 * time.Second

// asyncPublisher is the subset of nats.JetStreamContext used by NATSPublisher.
type asyncPublisher interface {
	PublishAsync(subj string, data []byte, opts ...nats.PubOpt) (nats.PubAckFuture, error)
	PublishAsyncComplete() <-chan struct{}
}

// NATSPublisher emits document and run events to NATS JetStream.
// Implements port.DocumentPublisher and port.RunRecorder.
type NATSPublisher struct {
	nc            *nats.Conn
	js            asyncPublisher
	subjectPrefix string
	logger        *logger.Logger

	// nacked counts events rejected by JetStream after PublishAsync returned
	nacked atomic.Int64
}

// NewNATSPublisher creates a new NATS publisher
func NewNATSPublisher(natsURL, stream, subjectPrefix string, log *logger.Logger) (*NATSPublisher, error) {
	// Connect to NATS with retry
	nc, err := nats.Connect(natsURL,
		nats.Name("hostinfo"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", "error", err.Error())
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	// Get JetStream context; async publish failures are reported through the handler
	var p *NATSPublisher
	js, err := nc.JetStream(nats.PublishAsyncErrHandler(func(_ nats.JetStream, msg *nats.Msg, err error) {
		p.onAsyncError(msg, err)
	}))
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	p = newNATSPublisher(js, subjectPrefix, log)
	p.nc = nc

	if stream != "" {
		if err := p.ensureStream(js, stream); err != nil {
			nc.Close()
			return nil, err
		}
	}

	log.Info("Connected to NATS", "url", natsURL)
	return p, nil
}

func newNATSPublisher(js asyncPublisher, subjectPrefix string, log *logger.Logger) *NATSPublisher {
	if subjectPrefix == "" {
		subjectPrefix = "hostinfo"
	}
	return &NATSPublisher{
		js:            js,
		subjectPrefix: subjectPrefix,
		logger:        log,
	}
}

// ensureStream creates the stream capturing <prefix>.> when it does not exist yet.
func (p *NATSPublisher) ensureStream(js nats.JetStreamContext, stream string) error {
	if _, err := js.StreamInfo(stream); err == nil {
		return nil
	}

	_, err := js.AddStream(&nats.StreamConfig{
		Name:     stream,
		Subjects: []string{p.subjectPrefix + ".>"},
		Storage:  nats.FileStorage,
		MaxAge:   7 * 24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", stream, err)
	}

	p.logger.Info("NATS stream created", "stream", stream, "subjects", p.subjectPrefix+".>")
	return nil
}

func (p *NATSPublisher) Name() string {
	return "nats"
}

// PublishDocument publishes to <prefix>.<host>.<metric>
func (p *NATSPublisher) PublishDocument(ctx context.Context, doc *entity.Document) error {
	return p.publish(ctx, p.DocumentSubject(doc), dto.FromDocument(doc))
}

// RecordRun publishes to <prefix>.<host>.run
func (p *NATSPublisher) RecordRun(ctx context.Context, summary *entity.RunSummary) error {
	return p.publish(ctx, p.RunSubject(summary.Host.Hostname), dto.FromRunSummary(summary))
}

func (p *NATSPublisher) publish(_ context.Context, subject string, event interface{}) error {
	// Marshal event to JSON
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Async publish, acknowledgements are awaited in Close
	if _, err := p.js.PublishAsync(subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("Event published",
		"subject", subject,
		"size", len(data),
	)

	return nil
}

// onAsyncError logs an event JetStream did not acknowledge
func (p *NATSPublisher) onAsyncError(msg *nats.Msg, err error) {
	p.nacked.Add(1)

	subject := ""
	if msg != nil {
		subject = msg.Subject
	}
	p.logger.Warn("NATS event not acknowledged", "subject", subject, "error", err.Error())
}

func (p *NATSPublisher) DocumentSubject(doc *entity.Document) string {
	return p.subjectPrefix + "." + subjectToken(doc.Host()) + "." + doc.Metric().String()
}

func (p *NATSPublisher) RunSubject(host string) string {
	return p.subjectPrefix + "." + subjectToken(host) + ".run"
}

// subjectToken replaces characters that split or wildcard NATS subjects
func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(s)
}

// Close waits for pending acknowledgements and closes the NATS connection
func (p *NATSPublisher) Close() error {
	select {
	case <-p.js.PublishAsyncComplete():
	case <-time.After(publishAckTimeout):
		p.logger.Warn("Timed out waiting for NATS acknowledgements")
	}

	if p.nc != nil {
		p.logger.Info("Closing NATS connection")
		p.nc.Close()
	}

	if n := p.nacked.Load(); n > 0 {
		return fmt.Errorf("%d NATS events not acknowledged", n)
	}
	return nil
}
