package repositories_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"everypoll/src/domain"
	"everypoll/src/repositories"
	"everypoll/src/test_artefacts/stubs"
)

var _ = Describe("OutboxRepository", func() {
	var (
		ctx                 context.Context
		outboxRepository    *repositories.OutboxRepository
		pollWriteRepository *repositories.PollWriteRepository
		voteLedger          *repositories.VoteLedgerRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		readWriteClient, _ := connectTestDatabase(ctx)
		outboxRepository = repositories.NewOutboxRepository(readWriteClient.GetWritePool())
		pollWriteRepository = repositories.NewPollWriteRepository(readWriteClient.GetWritePool())
		voteLedger = repositories.NewVoteLedgerRepository(readWriteClient.GetWritePool())
	})

	It("should hand events over in occurrence order and mark them published", func() {
		// ARRANGE
		poll, err := pollWriteRepository.CreatePoll(ctx, stubs.NewPollStub().CreateRequest())
		Expect(err).NotTo(HaveOccurred())
		_, err = voteLedger.CastVote(ctx, domain.CastVoteRequest{PollID: poll.ID, VoterID: "user-a", SelectedOption: 0})
		Expect(err).NotTo(HaveOccurred())

		var published []domain.PollEvent

		// ACT
		count, err := outboxRepository.PublishPending(ctx, 10, func(events []domain.PollEvent) error {
			published = append(published, events...)
			return nil
		})

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(2))
		Expect(published).To(HaveLen(2))
		Expect(published[0].Type).To(Equal(domain.EventPollCreated))
		Expect(published[1].Type).To(Equal(domain.EventVoteCast))
		Expect(published[1].PollID).To(Equal(poll.ID))

		pending, err := outboxRepository.PendingCount(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(BeZero())
	})

	It("should respect the batch limit", func() {
		for i := 0; i < 3; i++ {
			_, err := pollWriteRepository.CreatePoll(ctx, stubs.NewPollStub().CreateRequest())
			Expect(err).NotTo(HaveOccurred())
		}

		count, err := outboxRepository.PublishPending(ctx, 2, func([]domain.PollEvent) error { return nil })
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(2))

		pending, err := outboxRepository.PendingCount(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(Equal(int64(1)))
	})

	It("should keep events pending when publishing fails", func() {
		_, err := pollWriteRepository.CreatePoll(ctx, stubs.NewPollStub().CreateRequest())
		Expect(err).NotTo(HaveOccurred())
		brokerDown := errors.New("broker down")

		count, err := outboxRepository.PublishPending(ctx, 10, func([]domain.PollEvent) error { return brokerDown })

		Expect(err).To(MatchError(brokerDown))
		Expect(count).To(BeZero())

		pending, err := outboxRepository.PendingCount(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(Equal(int64(1)))
	})

	It("should not call publish when nothing is pending", func() {
		called := false

		count, err := outboxRepository.PublishPending(ctx, 10, func([]domain.PollEvent) error {
			called = true
			return nil
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(BeZero())
		Expect(called).To(BeFalse())
	})
})
