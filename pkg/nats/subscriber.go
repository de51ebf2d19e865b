package nats

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/abgdnv/catalog/pkg/config"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/sync/errgroup"
)

// Handler processes one delivered event. The context carries the trace of the request that
// produced the event. Returning an error naks the message so it is redelivered.
type Handler func(ctx context.Context, subject string, data []byte) error

// ackableMsg is the part of jetstream.Msg the subscriber uses.
type ackableMsg interface {
	Subject() string
	Data() []byte
	Ack() error
	Nak() error
}

// Subscribe creates a pull consumer on stream and runs cfg.Workers workers feeding handle
// until ctx is done.
func Subscribe(ctx context.Context, js jetstream.JetStream, stream string, cfg config.SubscriberConfig, handle Handler, logger *slog.Logger) error {
	consumerCfg := jetstream.ConsumerConfig{
		FilterSubject: cfg.Subject,
		Durable:       cfg.Consumer,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverNewPolicy,
	}
	if cfg.FromStart {
		consumerCfg.DeliverPolicy = jetstream.DeliverAllPolicy
	}
	consumer, err := js.CreateOrUpdateConsumer(ctx, stream, consumerCfg)
	if err != nil {
		return err
	}
	logger.Debug("subscribed", slog.String("stream", stream), slog.String("subject", cfg.Subject))

	g, gCtx := errgroup.WithContext(ctx)
	for range cfg.Workers {
		g.Go(func() error {
			return runWorker(gCtx, consumer, cfg, handle, logger)
		})
	}
	return g.Wait()
}

func runWorker(ctx context.Context, consumer jetstream.Consumer, cfg config.SubscriberConfig, handle Handler, logger *slog.Logger) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch, err := consumer.Fetch(cfg.Batch, jetstream.FetchMaxWait(cfg.Timeout))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) {
				continue
			}
			logger.Error("failed to fetch messages", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Interval):
			}
			continue
		}
		for msg := range batch.Messages() {
			handleMessage(ctx, msg, handle, logger)
		}
	}
}

func handleMessage(ctx context.Context, msg ackableMsg, handle Handler, logger *slog.Logger) {
	if msg == nil {
		logger.Error("received nil message")
		return
	}
	subject, data := msg.Subject(), msg.Data()

	var envelope struct {
		Carrier map[string]string `json:"carrier"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		logger.Error("failed to unmarshal message", "error", err, "subject", subject)
		nak(msg, logger)
		return
	}
	ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(envelope.Carrier))

	if err := handle(ctx, subject, data); err != nil {
		logger.ErrorContext(ctx, "failed to handle message", "error", err, "subject", subject)
		nak(msg, logger)
		return
	}
	if err := msg.Ack(); err != nil {
		logger.Error("failed to ack message", "error", err)
	}
}

func nak(msg ackableMsg, logger *slog.Logger) {
	if err := msg.Nak(); err != nil {
		logger.Error("failed to nack message", "error", err)
	}
}
