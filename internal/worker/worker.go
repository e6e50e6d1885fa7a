// Package worker consumes analysis requests from an AMQP queue and publishes reports.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/nity4jain/skillbridge-mvp/internal/analysis"
	"github.com/nity4jain/skillbridge-mvp/internal/logger"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Config struct {
	URL      string `mapstructure:"url"`
	Queue    string `mapstructure:"queue"`
	Workers  int    `mapstructure:"workers"`
	Prefetch int    `mapstructure:"prefetch"`
	// ResultsExchange and ResultsKey are used when a request has no reply-to queue.
	ResultsExchange string `mapstructure:"results-exchange"`
	ResultsKey      string `mapstructure:"results-key"`
}

// Request is the message body accepted on the queue.
type Request struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Response is published for every well-formed request.
type Response struct {
	ID        string           `json:"id"`
	Status    string           `json:"status"`
	Report    *analysis.Report `json:"report,omitempty"`
	Error     string           `json:"error,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

type Analyzer interface {
	AnalyzeText(ctx context.Context, content string) (*analysis.Report, error)
}

// Publisher is the subset of *amqp.Channel used to send responses.
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Pool struct {
	cfg      Config
	analyzer Analyzer
	logger   *zap.Logger
}

func NewPool(cfg Config, analyzer Analyzer, l *zap.Logger) *Pool {
	if cfg.Queue == "" {
		cfg.Queue = "skillbridge.analyze"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}
	return &Pool{cfg: cfg, analyzer: analyzer, logger: logger.WithFields(l, zap.String("queue", cfg.Queue))}
}

// Run dials the broker and consumes with cfg.Workers channels until ctx is
// done or the connection drops.
func (p *Pool) Run(ctx context.Context) error {
	if strings.TrimSpace(p.cfg.URL) == "" {
		return errors.New("amqp url is required")
	}

	conn, err := amqp.Dial(p.cfg.URL)
	if err != nil {
		return fmt.Errorf("dialling rabbitmq: %w", err)
	}
	defer conn.Close()

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, p.cfg.Workers)
	for i := range p.cfg.Workers {
		ch, err := p.openChannel(conn)
		if err != nil {
			cancel()
			wg.Wait()
			return err
		}

		wg.Add(1)
		go func(id int, ch *amqp.Channel) {
			defer wg.Done()
			defer ch.Close()
			if err := p.consume(ctx, id, ch); err != nil {
				errCh <- err
			}
		}(i+1, ch)
	}

	p.logger.Info("worker pool started", zap.Int("workers", p.cfg.Workers), zap.Int("prefetch", p.cfg.Prefetch))

	var runErr error
	select {
	case <-ctx.Done():
	case amqpErr := <-closed:
		if amqpErr != nil {
			runErr = fmt.Errorf("rabbitmq connection closed: %w", amqpErr)
		}
	case runErr = <-errCh:
	}

	cancel()
	wg.Wait()
	p.logger.Info("worker pool stopped")
	return runErr
}

func (p *Pool) openChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	if _, err := ch.QueueDeclare(p.cfg.Queue, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declaring queue %q: %w", p.cfg.Queue, err)
	}

	if err := ch.Qos(p.cfg.Prefetch, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("setting qos: %w", err)
	}
	return ch, nil
}

func (p *Pool) consume(ctx context.Context, id int, ch *amqp.Channel) error {
	msgs, err := ch.Consume(p.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consuming %q: %w", p.cfg.Queue, err)
	}

	l := p.logger.With(zap.Int("worker", id))
	l.Debug("worker started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			p.Process(ctx, msg, ch, l)
		}
	}
}

// Process handles one delivery: malformed bodies are rejected without
// requeue, everything else is answered and acked.
func (p *Pool) Process(ctx context.Context, msg amqp.Delivery, pub Publisher, l *zap.Logger) {
	l = logger.OrNop(l)

	var req Request
	if err := json.Unmarshal(msg.Body, &req); err != nil || strings.TrimSpace(req.ID) == "" {
		if err == nil {
			err = errors.New("missing id")
		}
		l.Warn("dropping malformed message", zap.String("message_id", msg.MessageId), zap.Error(err))
		if err := msg.Nack(false, false); err != nil {
			l.Error("nack failed", zap.Error(err))
		}
		return
	}

	l = l.With(zap.String(logger.FieldRequestID, req.ID))
	l.Info("processing analysis request")

	resp := Handle(ctx, p.analyzer, req)
	if resp.Status == StatusFailed {
		l.Warn("analysis failed", zap.String("error", resp.Error))
	}

	if err := p.publish(pub, msg, resp); err != nil {
		l.Error("publishing response failed", zap.Error(err))
		if err := msg.Nack(false, true); err != nil {
			l.Error("nack failed", zap.Error(err))
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		l.Error("ack failed", zap.Error(err))
	}
}

// Handle runs the analysis for req and wraps the outcome.
func Handle(ctx context.Context, analyzer Analyzer, req Request) Response {
	resp := Response{ID: req.ID, Timestamp: time.Now().UTC()}

	report, err := analyzer.AnalyzeText(ctx, req.Content)
	if err != nil {
		resp.Status = StatusFailed
		resp.Error = err.Error()
		return resp
	}

	resp.Status = StatusCompleted
	resp.Report = report
	return resp
}

func (p *Pool) publish(pub Publisher, msg amqp.Delivery, resp Response) error {
	exchange, key := p.cfg.ResultsExchange, p.cfg.ResultsKey
	if msg.ReplyTo != "" {
		exchange, key = "", msg.ReplyTo
	}
	if exchange == "" && key == "" {
		return nil
	}

	body, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}

	correlationID := msg.CorrelationId
	if correlationID == "" {
		correlationID = resp.ID
	}

	return pub.Publish(exchange, key, false, false, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: correlationID,
		Timestamp:     resp.Timestamp,
		Body:          body,
	})
}
