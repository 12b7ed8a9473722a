package entities_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"everypoll/src/domain/entities"
)

var _ = Describe("Tally", func() {
	It("starts at zero with a key per option", func() {
		tally := entities.NewTally(2)

		Expect(tally.Total).To(BeZero())
		Expect(tally.PerOption).To(Equal(map[int]int64{0: 0, 1: 0}))
		Expect(tally.Consistent()).To(BeTrue())
	})

	It("counts a vote in the option and the total together", func() {
		tally := entities.NewTally(2)

		next, err := tally.Apply(1)

		Expect(err).NotTo(HaveOccurred())
		Expect(next.Total).To(Equal(int64(1)))
		Expect(next.PerOption).To(Equal(map[int]int64{0: 0, 1: 1}))
		Expect(next.Consistent()).To(BeTrue())
		Expect(tally.Total).To(BeZero(), "the receiver must not change")
	})

	It("rejects an option outside the poll", func() {
		_, err := entities.NewTally(2).Apply(2)

		Expect(err).To(HaveOccurred())
	})

	It("round trips through the stored counters", func() {
		tally, err := entities.TallyFromCounts(5, []int64{2, 0, 3})

		Expect(err).NotTo(HaveOccurred())
		Expect(tally.Counts()).To(Equal([]int64{2, 0, 3}))
		Expect(tally.Sum()).To(Equal(int64(5)))
	})

	It("rejects counters that do not add up", func() {
		_, err := entities.TallyFromCounts(4, []int64{2, 3})
		Expect(err).To(HaveOccurred())

		_, err = entities.TallyFromCounts(0, []int64{1, -1})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Poll", func() {
	It("assigns dense option indices by position", func() {
		poll := entities.Poll{Options: entities.OptionsFromLabels([]string{"Tea", "Coffee"})}

		Expect(poll.Options).To(Equal([]entities.Option{{Index: 0, Label: "Tea"}, {Index: 1, Label: "Coffee"}}))
		Expect(poll.Labels()).To(Equal([]string{"Tea", "Coffee"}))
		Expect(poll.HasOption(1)).To(BeTrue())
		Expect(poll.HasOption(2)).To(BeFalse())
		Expect(poll.HasOption(-1)).To(BeFalse())
	})
})
