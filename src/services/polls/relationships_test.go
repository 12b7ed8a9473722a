package polls_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"everypoll/src/domain"
	"everypoll/src/domain/entities"
	"everypoll/src/services/polls"
	"everypoll/src/test_artefacts/stubs"
)

var _ = Describe("AttachRelationship", func() {
	var (
		pollService *polls.PollService
		ctx         context.Context
		pollX       entities.Poll
		pollY       entities.Poll
	)

	BeforeEach(func() {
		ctx = context.Background()
		pollService, _ = newTestService()

		var err error
		pollX, err = pollService.CreatePoll(ctx, stubs.NewPollStub().WithCreatorID("creator").CreateRequest())
		Expect(err).NotTo(HaveOccurred())
		pollY, err = pollService.CreatePoll(ctx, stubs.NewPollStub().WithCreatorID("creator").CreateRequest())
		Expect(err).NotTo(HaveOccurred())
	})

	It("should reject a self reference", func() {
		_, err := pollService.AttachRelationship(ctx, domain.AttachRelationshipRequest{
			RequesterID:  "creator",
			SourcePollID: pollX.ID,
			TargetPollID: pollX.ID,
			Kind:         entities.RelationshipRelated,
		})

		Expect(err).To(MatchError(domain.ErrSelfReference))
	})

	It("should create a directed edge", func() {
		edge, err := pollService.AttachRelationship(ctx, domain.AttachRelationshipRequest{
			RequesterID:  "creator",
			SourcePollID: pollX.ID,
			TargetPollID: pollY.ID,
			Kind:         entities.RelationshipFollowUp,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(edge.SourcePollID).To(Equal(pollX.ID))
		Expect(edge.TargetPollID).To(Equal(pollY.ID))

		fromX, err := pollService.GetRelationships(ctx, pollX.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(fromX.Outgoing).To(Equal([]domain.RelatedPoll{{
			EdgeID:   edge.ID,
			Kind:     entities.RelationshipFollowUp,
			PollID:   pollY.ID,
			Question: pollY.Question,
		}}))
		Expect(fromX.Incoming).To(BeEmpty())

		fromY, err := pollService.GetRelationships(ctx, pollY.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(fromY.Outgoing).To(BeEmpty())
		Expect(fromY.Incoming).To(HaveLen(1))
		Expect(fromY.Incoming[0].PollID).To(Equal(pollX.ID))
	})

	It("should keep duplicate edges", func() {
		request := domain.AttachRelationshipRequest{
			RequesterID:  "creator",
			SourcePollID: pollX.ID,
			TargetPollID: pollY.ID,
			Kind:         entities.RelationshipRelated,
		}

		first, err := pollService.AttachRelationship(ctx, request)
		Expect(err).NotTo(HaveOccurred())
		second, err := pollService.AttachRelationship(ctx, request)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.ID).NotTo(Equal(first.ID))

		relationships, err := pollService.GetRelationships(ctx, pollX.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(relationships.Outgoing).To(HaveLen(2))
	})

	It("should return poll not found for a missing endpoint", func() {
		_, err := pollService.AttachRelationship(ctx, domain.AttachRelationshipRequest{
			RequesterID:  "creator",
			SourcePollID: pollX.ID,
			TargetPollID: "missing",
			Kind:         entities.RelationshipOpposing,
		})

		Expect(err).To(MatchError(domain.ErrPollNotFound))
	})

	It("should only let the source poll's creator attach edges", func() {
		_, err := pollService.AttachRelationship(ctx, domain.AttachRelationshipRequest{
			RequesterID:  "intruder",
			SourcePollID: pollX.ID,
			TargetPollID: pollY.ID,
			Kind:         entities.RelationshipOpposing,
		})

		Expect(err).To(MatchError(domain.ErrNotPollCreator))
		Expect(err).To(MatchError(domain.ErrForbidden))
	})

	It("should return poll not found when listing edges of an unknown poll", func() {
		_, err := pollService.GetRelationships(ctx, "missing")

		Expect(err).To(MatchError(domain.ErrPollNotFound))
	})
})
