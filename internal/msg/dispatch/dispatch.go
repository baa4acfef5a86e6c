package dispatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"admissions-back/internal/model"
)

// Consumer is one delivery target for incoming events.
type Consumer interface {
	Name() string
	Handle(ctx context.Context, envelope *model.EventEnvelope) error
}

type registration struct {
	consumer   Consumer
	bestEffort bool
}

// Dispatcher fans one envelope out to the registered consumers in
// registration order. A critical consumer's error aborts the dispatch so the
// delivery is retried by the sender; best-effort consumers only log.
type Dispatcher struct {
	l         *zap.Logger
	consumers []registration
}

func NewDispatcher(l *zap.Logger) *Dispatcher {
	return &Dispatcher{l: l}
}

func (d *Dispatcher) Register(c Consumer) {
	d.consumers = append(d.consumers, registration{consumer: c})
}

func (d *Dispatcher) RegisterBestEffort(c Consumer) {
	d.consumers = append(d.consumers, registration{consumer: c, bestEffort: true})
}

func (d *Dispatcher) Dispatch(ctx context.Context, envelope *model.EventEnvelope) error {
	for _, reg := range d.consumers {
		err := reg.consumer.Handle(ctx, envelope)
		if err == nil {
			continue
		}

		if reg.bestEffort {
			d.l.Warn("Best-effort consumer failed",
				zap.String("consumer", reg.consumer.Name()),
				zap.String("event_id", envelope.EventID.String()),
				zap.Error(err),
			)

			continue
		}

		return fmt.Errorf("consumer %s: %w", reg.consumer.Name(), err)
	}

	return nil
}
