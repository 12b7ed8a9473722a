package consumers_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"everypoll/src/adapters/kafka/consumers"
	"everypoll/src/domain"
	"everypoll/src/infra/kafka"
)

type recordingInvalidator struct {
	pollIDs     [][]string
	allLists    int
	failWithErr error
}

func (r *recordingInvalidator) InvalidateByPollIDs(ctx context.Context, pollIDs []string) error {
	if r.failWithErr != nil {
		return r.failWithErr
	}
	r.pollIDs = append(r.pollIDs, pollIDs)
	return nil
}

func (r *recordingInvalidator) InvalidateAllLists(ctx context.Context) error {
	if r.failWithErr != nil {
		return r.failWithErr
	}
	r.allLists++
	return nil
}

func eventMessage(eventType string, pollID string) kafka.Message {
	value, err := json.Marshal(domain.PollEvent{ID: "event-" + pollID, Type: eventType, PollID: pollID, Payload: json.RawMessage(`{}`)})
	Expect(err).NotTo(HaveOccurred())

	return kafka.Message{
		Key:     pollID,
		Value:   value,
		Headers: map[string]string{"event_type": eventType},
	}
}

var _ = Describe("CacheInvalidationConsumer", func() {
	var (
		invalidator *recordingInvalidator
		consumer    *consumers.CacheInvalidationConsumer
		ctx         context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		invalidator = &recordingInvalidator{}
		consumer = consumers.NewCacheInvalidationConsumer(slog.New(slog.NewTextHandler(GinkgoWriter, nil)), invalidator)
	})

	It("should drop the pages of voted polls once per poll", func() {
		err := consumer.HandleMessages(ctx, []kafka.Message{
			eventMessage(domain.EventVoteCast, "poll-1"),
			eventMessage(domain.EventVoteCast, "poll-1"),
			eventMessage(domain.EventTallyReconciled, "poll-2"),
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(invalidator.allLists).To(BeZero())
		Expect(invalidator.pollIDs).To(HaveLen(1))
		Expect(invalidator.pollIDs[0]).To(ConsistOf("poll-1", "poll-2"))
	})

	It("should drop every list page when a poll is created", func() {
		err := consumer.HandleMessages(ctx, []kafka.Message{
			eventMessage(domain.EventVoteCast, "poll-1"),
			eventMessage(domain.EventPollCreated, "poll-3"),
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(invalidator.allLists).To(Equal(1))
		Expect(invalidator.pollIDs).To(BeEmpty())
	})

	It("should ignore relationship events", func() {
		err := consumer.HandleMessages(ctx, []kafka.Message{
			eventMessage(domain.EventRelationshipAttached, "poll-1"),
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(invalidator.allLists).To(BeZero())
		Expect(invalidator.pollIDs).To(BeEmpty())
	})

	It("should skip undecodable messages", func() {
		err := consumer.HandleMessages(ctx, []kafka.Message{
			{Key: "poll-1", Value: []byte("not json")},
			eventMessage(domain.EventVoteCast, "poll-2"),
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(invalidator.pollIDs).To(Equal([][]string{{"poll-2"}}))
	})

	It("should fall back to the body type when the header is missing", func() {
		message := eventMessage(domain.EventPollCreated, "poll-1")
		message.Headers = nil

		Expect(consumer.HandleMessages(ctx, []kafka.Message{message})).To(Succeed())
		Expect(invalidator.allLists).To(Equal(1))
	})

	It("should fail the batch when the cache is unreachable", func() {
		invalidator.failWithErr = errors.New("redis: connection refused")

		err := consumer.HandleMessages(ctx, []kafka.Message{eventMessage(domain.EventVoteCast, "poll-1")})

		Expect(err).To(MatchError(ContainSubstring("connection refused")))
	})
})
