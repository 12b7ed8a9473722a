package repositories_test

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"everypoll/src/domain"
	"everypoll/src/domain/entities"
	"everypoll/src/infra/redis"
	"everypoll/src/repositories"
	"everypoll/src/test_artefacts/stubs"
	"everypoll/src/test_artefacts/test_seeder"
)

var _ = Describe("CachedPollQueryRepository", func() {
	var (
		ctx                       context.Context
		seeder                    test_seeder.TestSeeder
		pollQueryRepository       *repositories.PollQueryRepository
		cachedPollQueryRepository *repositories.CachedPollQueryRepository
		redisClient               *redis.RedisClient
		query                     domain.ListPollsQuery
		base                      time.Time
	)

	registryMembers := func(registryKey string) func() []string {
		return func() []string {
			members, err := redisClient.GetMultipleSetMembers(ctx, []string{registryKey})
			Expect(err).NotTo(HaveOccurred())
			return members[registryKey]
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		readWriteClient, s := connectTestDatabase(ctx)
		seeder = s

		redisClient = connectTestRedis(ctx)
		if redisClient == nil {
			Skip("TEST_REDIS_HOSTS not set")
		}

		pollQueryRepository = repositories.NewPollQueryRepository(readWriteClient.GetWritePool(), readWriteClient.GetWritePool())
		cachedPollQueryRepository = repositories.NewCachedPollQueryRepository(pollQueryRepository, redisClient)
		Expect(cachedPollQueryRepository.InvalidateAllLists(ctx)).To(Succeed())

		query = domain.ListPollsQuery{Page: 1, Limit: 10, Visibility: domain.VisibilityPublic}
		base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	})

	It("should serve a cached page until every list is invalidated", func() {
		// ARRANGE
		first := stubs.NewPollStub().WithCreatedAt(base).Get()
		seeder.InsertPoll(ctx, &first)

		polls, _, err := cachedPollQueryRepository.ListPolls(ctx, query)
		Expect(err).NotTo(HaveOccurred())
		Expect(pollIDs(polls)).To(Equal([]string{first.ID}))
		Eventually(registryMembers("registry:polls:lists")).Should(HaveLen(1))

		second := stubs.NewPollStub().WithCreatedAt(base.Add(time.Minute)).Get()
		seeder.InsertPoll(ctx, &second)

		// ACT
		stale, _, err := cachedPollQueryRepository.ListPolls(ctx, query)
		Expect(err).NotTo(HaveOccurred())

		Expect(cachedPollQueryRepository.InvalidateAllLists(ctx)).To(Succeed())
		fresh, _, err := cachedPollQueryRepository.ListPolls(ctx, query)

		// ASSERT
		Expect(pollIDs(stale)).To(Equal([]string{first.ID}))
		Expect(err).NotTo(HaveOccurred())
		Expect(pollIDs(fresh)).To(Equal([]string{second.ID, first.ID}))
	})

	It("should drop only the pages that show an invalidated poll", func() {
		shown := stubs.NewPollStub().WithQuestion("Cats or dogs?").WithCreatedAt(base).Get()
		other := stubs.NewPollStub().WithQuestion("Tabs or spaces?").WithCreatedAt(base).Get()
		seeder.InsertPoll(ctx, &shown)
		seeder.InsertPoll(ctx, &other)

		catsQuery := query
		catsQuery.Search = "cats"
		tabsQuery := query
		tabsQuery.Search = "tabs"

		_, _, err := cachedPollQueryRepository.ListPolls(ctx, catsQuery)
		Expect(err).NotTo(HaveOccurred())
		_, _, err = cachedPollQueryRepository.ListPolls(ctx, tabsQuery)
		Expect(err).NotTo(HaveOccurred())
		Eventually(registryMembers("registry:polls:lists")).Should(HaveLen(2))

		Expect(cachedPollQueryRepository.InvalidateByPollIDs(ctx, []string{shown.ID})).To(Succeed())

		Expect(registryMembers(fmt.Sprintf("registry:poll:%s", shown.ID))()).To(BeEmpty())
		Expect(registryMembers(fmt.Sprintf("registry:poll:%s", other.ID))()).To(HaveLen(1))
	})

	It("should return the cached tally without touching PostgreSQL", func() {
		poll := stubs.NewPollStub().WithOptions("Tea", "Coffee").WithCreatedAt(base).Get()
		seeder.InsertPoll(ctx, &poll)

		_, _, err := cachedPollQueryRepository.ListPolls(ctx, query)
		Expect(err).NotTo(HaveOccurred())
		Eventually(registryMembers("registry:polls:lists")).Should(HaveLen(1))

		seeder.TruncateTables(ctx)

		polls, _, err := cachedPollQueryRepository.ListPolls(ctx, query)
		Expect(err).NotTo(HaveOccurred())
		Expect(polls).To(HaveLen(1))
		Expect(polls[0].Tally).To(Equal(entities.Tally{Total: 0, PerOption: map[int]int64{0: 0, 1: 0}}))
	})

	It("should not write back a page read before an invalidation", func() {
		poll := stubs.NewPollStub().WithCreatedAt(base).Get()
		seeder.InsertPoll(ctx, &poll)

		generation, err := redisClient.GetCounter(ctx, "registry:polls:generation")
		Expect(err).NotTo(HaveOccurred())

		Expect(cachedPollQueryRepository.InvalidateByPollIDs(ctx, []string{poll.ID})).To(Succeed())
		cachedPollQueryRepository.FillCache(ctx, "polls:list:stale", []entities.Poll{poll}, false, generation)

		Expect(registryMembers("registry:polls:lists")()).To(BeEmpty())
		_, found, err := redisClient.GetKey(ctx, "polls:list:stale")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())

		current, err := redisClient.GetCounter(ctx, "registry:polls:generation")
		Expect(err).NotTo(HaveOccurred())
		cachedPollQueryRepository.FillCache(ctx, "polls:list:fresh", []entities.Poll{poll}, false, current)

		Expect(registryMembers("registry:polls:lists")()).To(ConsistOf("polls:list:fresh"))
	})
})
