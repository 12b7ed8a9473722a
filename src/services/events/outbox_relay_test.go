package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"everypoll/src/domain"
	"everypoll/src/services/events"
)

var _ = Describe("OutboxRelay", func() {
	var (
		producer *recordingProducer
		outbox   *memoryOutbox
		relay    *events.OutboxRelay
		ctx      context.Context
	)

	pendingEvents := func(n int) []domain.PollEvent {
		result := make([]domain.PollEvent, n)
		for i := range result {
			result[i] = domain.PollEvent{
				ID:         fmt.Sprintf("event-%d", i),
				Type:       domain.EventPollCreated,
				PollID:     fmt.Sprintf("poll-%d", i),
				Payload:    json.RawMessage(`{}`),
				OccurredAt: time.Now().UTC(),
			}
		}
		return result
	}

	BeforeEach(func() {
		ctx = context.Background()
		logger := slog.New(slog.NewTextHandler(GinkgoWriter, nil))
		producer = &recordingProducer{}
		outbox = &memoryOutbox{}
		publisher := events.NewDomainEventPublisher(logger, producer, "poll-events")
		relay = events.NewOutboxRelay(logger, outbox, publisher, 10*time.Millisecond, 2)
	})

	It("should drain every pending event in batches", func() {
		outbox.pending = pendingEvents(5)

		published, err := relay.Drain(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(published).To(Equal(5))
		Expect(producer.batches).To(HaveLen(3))

		pending, sent := outbox.counts()
		Expect(pending).To(BeZero())
		Expect(sent).To(Equal(5))
	})

	It("should keep events pending when publishing fails", func() {
		outbox.pending = pendingEvents(3)
		producer.err = errors.New("broker unavailable")

		published, err := relay.Drain(ctx)

		Expect(err).To(HaveOccurred())
		Expect(published).To(BeZero())

		pending, sent := outbox.counts()
		Expect(pending).To(Equal(3))
		Expect(sent).To(BeZero())
	})

	It("should keep relaying until the context is cancelled", func() {
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			done <- relay.Run(runCtx)
		}()

		outbox.mu.Lock()
		outbox.pending = pendingEvents(3)
		outbox.mu.Unlock()

		Eventually(func() int {
			_, sent := outbox.counts()
			return sent
		}).Should(Equal(3))

		cancel()
		Eventually(done).Should(Receive(BeNil()))
	})
})
