package domain_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"everypoll/src/domain"
	"everypoll/src/domain/entities"
)

var _ = Describe("NormalizeCreatePoll", func() {
	var request domain.CreatePollRequest

	BeforeEach(func() {
		request = domain.CreatePollRequest{
			CreatorID: "user-a",
			Question:  "  Tea or coffee?  ",
			Options:   []string{" Tea ", "Coffee"},
			IsPublic:  true,
		}
	})

	It("trims the question and the option labels", func() {
		normalized, err := domain.NormalizeCreatePoll(request)

		Expect(err).NotTo(HaveOccurred())
		Expect(normalized.Question).To(Equal("Tea or coffee?"))
		Expect(normalized.Options).To(Equal([]string{"Tea", "Coffee"}))
		Expect(normalized.IsPublic).To(BeTrue())
	})

	It("rejects an anonymous creator", func() {
		request.CreatorID = " "

		_, err := domain.NormalizeCreatePoll(request)

		Expect(err).To(MatchError(domain.ErrUnauthenticated))
	})

	It("rejects a blank question", func() {
		request.Question = "   "

		_, err := domain.NormalizeCreatePoll(request)

		Expect(err).To(MatchError(domain.ErrInvalidQuestion))
		Expect(err).To(MatchError(domain.ErrValidation))
	})

	It("rejects a blank option label", func() {
		request.Options = []string{"Tea", "  "}

		_, err := domain.NormalizeCreatePoll(request)

		Expect(err).To(MatchError(domain.ErrInvalidOptionLabel))
	})

	DescribeTable("rejects text that cannot be stored",
		func(mutate func(*domain.CreatePollRequest), expectedErr error) {
			mutate(&request)

			_, err := domain.NormalizeCreatePoll(request)

			Expect(err).To(MatchError(expectedErr))
			Expect(err).To(MatchError(domain.ErrValidation))
		},
		Entry("NUL in the question", func(r *domain.CreatePollRequest) { r.Question = "Tea\x00 or coffee?" }, domain.ErrInvalidQuestion),
		Entry("invalid UTF-8 in the question", func(r *domain.CreatePollRequest) { r.Question = "Tea \xff?" }, domain.ErrInvalidQuestion),
		Entry("NUL in an option", func(r *domain.CreatePollRequest) { r.Options = []string{"Tea", "Cof\x00fee"} }, domain.ErrInvalidOptionLabel),
		Entry("invalid UTF-8 in an option", func(r *domain.CreatePollRequest) { r.Options = []string{"\xc3\x28", "Coffee"} }, domain.ErrInvalidOptionLabel),
		Entry("NUL in the description", func(r *domain.CreatePollRequest) { r.Description = "\x00" }, domain.ErrInvalidDescription),
	)

	DescribeTable("option count boundaries",
		func(count int, expectedErr error) {
			request.Options = make([]string, count)
			for i := range request.Options {
				request.Options[i] = "option"
			}

			_, err := domain.NormalizeCreatePoll(request)

			if expectedErr == nil {
				Expect(err).NotTo(HaveOccurred())
				return
			}
			Expect(err).To(MatchError(expectedErr))
			Expect(err).To(MatchError(domain.ErrValidation))
		},
		Entry("no options", 0, domain.ErrInvalidOptionCount),
		Entry("one option", 1, domain.ErrInvalidOptionCount),
		Entry("two options", entities.MinPollOptions, nil),
		Entry("ten options", entities.MaxPollOptions, nil),
		Entry("eleven options", 11, domain.ErrInvalidOptionCount),
	)
})

var _ = Describe("NormalizeListPolls", func() {
	It("applies the default page and limit", func() {
		query, err := domain.NormalizeListPolls(domain.ListPollsQuery{})

		Expect(err).NotTo(HaveOccurred())
		Expect(query.Page).To(Equal(1))
		Expect(query.Limit).To(Equal(domain.DefaultPageLimit))
		Expect(query.Visibility).To(Equal(domain.VisibilityPublic))
		Expect(query.Offset()).To(Equal(0))
	})

	It("caps the limit", func() {
		query, err := domain.NormalizeListPolls(domain.ListPollsQuery{Page: 3, Limit: 500})

		Expect(err).NotTo(HaveOccurred())
		Expect(query.Limit).To(Equal(domain.MaxPageLimit))
		Expect(query.Offset()).To(Equal(2 * domain.MaxPageLimit))
	})

	DescribeTable("rejects pages whose offset overflows",
		func(page int, limit int) {
			_, err := domain.NormalizeListPolls(domain.ListPollsQuery{Page: page, Limit: limit})

			Expect(err).To(MatchError(domain.ErrInvalidPagination))
			Expect(err).To(MatchError(domain.ErrValidation))
		},
		Entry("max page, default limit", math.MaxInt, 0),
		Entry("max page, max limit", math.MaxInt, domain.MaxPageLimit),
		Entry("just past the boundary", math.MaxInt/domain.MaxPageLimit+2, domain.MaxPageLimit),
	)

	It("accepts the largest page whose offset fits", func() {
		page := math.MaxInt/domain.MaxPageLimit + 1

		query, err := domain.NormalizeListPolls(domain.ListPollsQuery{Page: page, Limit: domain.MaxPageLimit})

		Expect(err).NotTo(HaveOccurred())
		Expect(query.Offset()).To(BeNumerically(">=", 0))
	})

	It("rejects negative values", func() {
		_, err := domain.NormalizeListPolls(domain.ListPollsQuery{Page: -1})
		Expect(err).To(MatchError(domain.ErrInvalidPagination))

		_, err = domain.NormalizeListPolls(domain.ListPollsQuery{Limit: -5})
		Expect(err).To(MatchError(domain.ErrInvalidPagination))
	})

	It("falls back to public polls when the viewer is unknown", func() {
		query, err := domain.NormalizeListPolls(domain.ListPollsQuery{Visibility: domain.VisibilityPublicOrOwn})

		Expect(err).NotTo(HaveOccurred())
		Expect(query.Visibility).To(Equal(domain.VisibilityPublic))
	})

	It("keeps public_or_own for an identified viewer", func() {
		query, err := domain.NormalizeListPolls(domain.ListPollsQuery{Visibility: domain.VisibilityPublicOrOwn, ViewerID: "user-a"})

		Expect(err).NotTo(HaveOccurred())
		Expect(query.Visibility).To(Equal(domain.VisibilityPublicOrOwn))
	})
})

var _ = Describe("ValidateAttachRelationship", func() {
	It("rejects a self reference", func() {
		err := domain.ValidateAttachRelationship(domain.AttachRelationshipRequest{
			RequesterID:  "user-a",
			SourcePollID: "poll-x",
			TargetPollID: "poll-x",
			Kind:         entities.RelationshipRelated,
		})

		Expect(err).To(MatchError(domain.ErrSelfReference))
		Expect(err).To(MatchError(domain.ErrValidation))
	})

	It("rejects an unknown kind", func() {
		err := domain.ValidateAttachRelationship(domain.AttachRelationshipRequest{
			RequesterID:  "user-a",
			SourcePollID: "poll-x",
			TargetPollID: "poll-y",
			Kind:         "sequel",
		})

		Expect(err).To(MatchError(domain.ErrInvalidRelationshipKind))
	})

	It("accepts every known kind", func() {
		for _, kind := range []entities.RelationshipKind{
			entities.RelationshipRelated,
			entities.RelationshipFollowUp,
			entities.RelationshipOpposing,
			entities.RelationshipPrerequisite,
			entities.RelationshipCustom,
		} {
			err := domain.ValidateAttachRelationship(domain.AttachRelationshipRequest{
				RequesterID:  "user-a",
				SourcePollID: "poll-x",
				TargetPollID: "poll-y",
				Kind:         kind,
			})
			Expect(err).NotTo(HaveOccurred(), string(kind))
		}
	})
})
