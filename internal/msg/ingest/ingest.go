package ingest

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"admissions-back/internal/model"
	"admissions-back/pkg/kafka"
)

const messagePipeBuffer = 1000

type Dispatcher interface {
	Dispatch(ctx context.Context, envelope *model.EventEnvelope) error
}

type Config struct {
	Name        string
	WorkerCount int
}

// Ingestor pulls envelopes off the broker and feeds them to the dispatcher.
// Offsets are marked only after a successful dispatch, so a crashed worker
// replays its claim and the inbox absorbs the duplicates.
type Ingestor struct {
	l          *zap.Logger
	cfg        Config
	consumer   kafka.ConsumerGroupRunner
	dispatcher Dispatcher
}

func NewIngestor(l *zap.Logger, cfg Config, consumer kafka.ConsumerGroupRunner, dispatcher Dispatcher) *Ingestor {
	return &Ingestor{
		l:          l,
		cfg:        cfg,
		consumer:   consumer,
		dispatcher: dispatcher,
	}
}

func (s *Ingestor) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		s.consumer.Run()
	}()

	messagePipe := make(chan *kafka.MessageWithMarkFunc, messagePipeBuffer)

	for i := 0; i < s.cfg.WorkerCount; i++ {
		go s.worker(ctx, i, messagePipe)
	}

	for {
		select {
		case <-ctx.Done():
			s.l.Info("Context canceled, stopping ingestor")

			close(messagePipe)

			return
		case msg, ok := <-s.consumer.Messages():
			if !ok {
				s.l.Info("Consumer messages channel closed")

				close(messagePipe)

				return
			}

			messagePipe <- msg
		}
	}
}

func (s *Ingestor) worker(ctx context.Context, id int, messagePipe <-chan *kafka.MessageWithMarkFunc) {
	s.l.Info("Ingest worker started", zap.Int("worker_id", id))

	for {
		select {
		case <-ctx.Done():
			s.l.Info("Ingest worker stopping", zap.Int("worker_id", id))

			return
		case msg, ok := <-messagePipe:
			if !ok {
				s.l.Info("Message channel closed", zap.Int("worker_id", id))

				return
			}

			if err := s.process(ctx, msg); err != nil {
				s.l.Error("Error processing message", zap.Int("worker_id", id), zap.Error(err))

				// Left unmarked: the claim is redelivered after rebalance.
				continue
			}

			msg.Mark()
		}
	}
}

func (s *Ingestor) process(ctx context.Context, message *kafka.MessageWithMarkFunc) error {
	var envelope model.EventEnvelope
	if err := json.Unmarshal(message.Message.Value, &envelope); err != nil {
		// Undecodable payloads would loop forever; log, mark, move on.
		s.l.Error("Dropping undecodable message",
			zap.String("topic", message.Message.Topic),
			zap.Int64("offset", message.Message.Offset),
			zap.Error(err),
		)

		return nil
	}

	if model.IsValidationEvent(envelope.EventType) {
		return nil
	}

	if err := s.dispatcher.Dispatch(ctx, &envelope); err != nil {
		return err
	}

	s.l.Debug("Message ingested",
		zap.String("event_id", envelope.EventID.String()),
		zap.String("event_type", envelope.EventType),
	)

	return nil
}
