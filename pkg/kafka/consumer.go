package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
)

type BalanceStrategy int

const (
	RoundrobinBalanceStrategy BalanceStrategy = iota
	RangeBalanceStrategy
	StickyBalanceStrategy
)

// MessageWithMarkFunc couples a consumed message with the offset commit for
// exactly that message. Mark only after the message has been handled.
type MessageWithMarkFunc struct {
	Message *sarama.ConsumerMessage
	Mark    func()
}

type ConsumerGroupRunner interface {
	Run()
	Messages() <-chan *MessageWithMarkFunc
	Info() <-chan string
	Close() error
}

type ConsumerOption func(cfg *sarama.Config)

func WithBalancerConsumer(strategy BalanceStrategy) ConsumerOption {
	return func(cfg *sarama.Config) {
		switch strategy {
		case RangeBalanceStrategy:
			cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRange()}
		case StickyBalanceStrategy:
			cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategySticky()}
		default:
			cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
		}
	}
}

type consumerGroupRunner struct {
	group    sarama.ConsumerGroup
	topics   []string
	messages chan *MessageWithMarkFunc
	info     chan string
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewConsumerGroupRunner(
	brokers []string,
	groupID string,
	topics []string,
	bufferSize int,
	opts ...ConsumerOption,
) (ConsumerGroupRunner, error) {
	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true

	for _, opt := range opts {
		opt(cfg)
	}

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &consumerGroupRunner{
		group:    group,
		topics:   topics,
		messages: make(chan *MessageWithMarkFunc, bufferSize),
		info:     make(chan string, 1),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

func (r *consumerGroupRunner) Run() {
	r.info <- fmt.Sprintf("consumer group started on topics %v", r.topics)

	handler := &groupHandler{out: r.messages, done: r.ctx.Done()}

	for {
		if err := r.group.Consume(r.ctx, r.topics, handler); err != nil {
			if r.ctx.Err() != nil {
				break
			}
		}

		if r.ctx.Err() != nil {
			break
		}
	}

	close(r.messages)
}

func (r *consumerGroupRunner) Messages() <-chan *MessageWithMarkFunc {
	return r.messages
}

func (r *consumerGroupRunner) Info() <-chan string {
	return r.info
}

func (r *consumerGroupRunner) Close() error {
	r.cancel()

	return r.group.Close()
}

type groupHandler struct {
	out  chan<- *MessageWithMarkFunc
	done <-chan struct{}
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case <-h.done:
			return nil
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			m := msg

			h.out <- &MessageWithMarkFunc{
				Message: m,
				Mark: func() {
					session.MarkMessage(m, "")
				},
			}
		}
	}
}
