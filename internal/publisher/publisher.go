package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/ecomlens/reviewradar/internal/metrics"
	"github.com/ecomlens/reviewradar/pkg/model"
)

// jetStream is the slice of nats.JetStreamContext the publisher needs.
// Narrowing the dependency keeps tests to a two-method mock.
type jetStream interface {
	PublishMsg(msg *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Publisher emits batch lifecycle events to the bus. A nil *Publisher is a
// no-op, so callers do not special-case the bus being disabled.
type Publisher struct {
	nc      *nats.Conn
	js      jetStream
	subject string
	service string
	logger  *zap.Logger
}

// New creates a Publisher with JetStream enabled if available.
func New(nc *nats.Conn, subject, service string, logger *zap.Logger) (*Publisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		nc:      nc,
		js:      js,
		subject: subject,
		service: service,
		logger:  logger,
	}, nil
}

// PublishBatchCompleted emits a summary event for a finished scrape batch.
func (p *Publisher) PublishBatchCompleted(ctx context.Context, evt model.BatchEvent) error {
	if p == nil {
		return nil
	}

	data, err := json.Marshal(evt)
	if err != nil {
		metrics.IncEventPublish("error")
		return err
	}

	msg := &nats.Msg{
		Subject: p.subject,
		Data:    data,
		Header: nats.Header{
			"event_type":   []string{"scrape.batch.completed"},
			"batch_id":     []string{evt.BatchID.String()},
			"service":      []string{p.service},
			"content_type": []string{"application/json"},
		},
	}

	start := time.Now()
	if _, err := p.js.PublishMsg(msg); err != nil {
		p.logger.Error("publisher.publish_failed",
			zap.String("subject", p.subject),
			zap.String("batch_id", evt.BatchID.String()),
			zap.Error(err))
		metrics.IncEventPublish("error")
		return err
	}

	p.logger.Info("publisher.publish_success",
		zap.String("subject", p.subject),
		zap.String("batch_id", evt.BatchID.String()),
		zap.Duration("elapsed", time.Since(start)))
	metrics.IncEventPublish("ok")
	return nil
}

// Close drains the underlying connection.
func (p *Publisher) Close() {
	if p != nil && p.nc != nil && p.nc.IsConnected() {
		p.nc.Close()
	}
}
