package events_test

import (
	"context"
	"sync"

	"everypoll/src/domain"
	"everypoll/src/infra/kafka"
)

type recordingProducer struct {
	mu      sync.Mutex
	batches [][]kafka.Message
	topics  []string
	err     error
}

func (p *recordingProducer) Producer(messages []kafka.Message, topic string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.batches = append(p.batches, messages)
	p.topics = append(p.topics, topic)
	return nil
}

func (p *recordingProducer) messages() []kafka.Message {
	p.mu.Lock()
	defer p.mu.Unlock()

	var all []kafka.Message
	for _, batch := range p.batches {
		all = append(all, batch...)
	}
	return all
}

// memoryOutbox mimics OutboxRepository: a batch is marked only when publish succeeds.
type memoryOutbox struct {
	mu      sync.Mutex
	pending []domain.PollEvent
	sent    []domain.PollEvent
}

func (o *memoryOutbox) PublishPending(ctx context.Context, limit int, publish func([]domain.PollEvent) error) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	n := min(limit, len(o.pending))
	if n == 0 {
		return 0, nil
	}

	batch := o.pending[:n]
	if err := publish(batch); err != nil {
		return 0, err
	}

	o.sent = append(o.sent, batch...)
	o.pending = o.pending[n:]
	return n, nil
}

func (o *memoryOutbox) PendingCount(ctx context.Context) (int64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return int64(len(o.pending)), nil
}

func (o *memoryOutbox) counts() (int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending), len(o.sent)
}
