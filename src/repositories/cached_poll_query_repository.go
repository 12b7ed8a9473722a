package repositories

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"everypoll/src/domain"
	"everypoll/src/domain/entities"
	"everypoll/src/infra/redis"
)

const (
	listRegistryKey      = "registry:polls:lists"
	pollRegistryKeyShape = "registry:poll:%s"
	cacheGenerationKey   = "registry:polls:generation"
)

// CachedPollQueryRepository caches list pages in Redis. Each page is
// registered under the list registry and under every poll it shows, so a
// vote on one poll drops only the pages that contain it while a new poll
// drops every page. Detail reads are never cached.
//
// Every invalidation bumps a generation counter. A page read before the bump
// is not written back, so an in-flight fill cannot undo an invalidation.
// Pages read from a lagging replica can still be cached until their TTL.
type CachedPollQueryRepository struct {
	pollQueryRepository *PollQueryRepository
	redisClient         *redis.RedisClient
}

type CacheablePage struct {
	Polls   []entities.Poll `json:"polls"`
	HasMore bool            `json:"has_more"`
}

// NewCachedPollQueryRepository accepts a nil redisClient, in which case every
// call goes straight to PostgreSQL.
func NewCachedPollQueryRepository(
	pollQueryRepository *PollQueryRepository,
	redisClient *redis.RedisClient,
) *CachedPollQueryRepository {
	return &CachedPollQueryRepository{
		pollQueryRepository: pollQueryRepository,
		redisClient:         redisClient,
	}
}

func (r *CachedPollQueryRepository) GetPoll(ctx context.Context, pollID string) (entities.Poll, error) {
	return r.pollQueryRepository.GetPoll(ctx, pollID)
}

func (r *CachedPollQueryRepository) ListPolls(ctx context.Context, query domain.ListPollsQuery) ([]entities.Poll, bool, error) {
	if r.redisClient == nil {
		return r.pollQueryRepository.ListPolls(ctx, query)
	}

	cacheKey := r.generateCacheKey(query)

	cachedPage, found, err := r.getFromCache(ctx, cacheKey)
	if found && err == nil {
		return cachedPage.Polls, cachedPage.HasMore, nil
	}

	if err != nil {
		log.Printf("Cache error for key %s: %v", cacheKey, err)
	}

	generation, genErr := r.redisClient.GetCounter(ctx, cacheGenerationKey)
	if genErr != nil {
		log.Printf("Failed to read cache generation: %v", genErr)
	}

	polls, hasMore, err := r.pollQueryRepository.ListPolls(ctx, query)
	if err != nil {
		return nil, false, err
	}

	if genErr == nil {
		go func() {
			ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			r.setInCache(ctxWithTimeout, cacheKey, polls, hasMore, generation)
		}()
	}

	return polls, hasMore, nil
}

func (r *CachedPollQueryRepository) generateCacheKey(query domain.ListPollsQuery) string {
	keyData := fmt.Sprintf("page:%d:limit:%d:search:%s:visibility:%s:viewer:%s",
		query.Page,
		query.Limit,
		query.Search,
		query.Visibility,
		query.ViewerID,
	)

	hash := md5.Sum([]byte(keyData))
	return fmt.Sprintf("polls:list:%x", hash)
}

func (r *CachedPollQueryRepository) getFromCache(ctx context.Context, cacheKey string) (*CacheablePage, bool, error) {
	cachedJSON, found, err := r.redisClient.GetKey(ctx, cacheKey)
	if !found || err != nil {
		return nil, found, err
	}

	var page CacheablePage
	if err := json.Unmarshal([]byte(cachedJSON), &page); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached page: %w", err)
	}

	return &page, true, nil
}

func (r *CachedPollQueryRepository) setInCache(ctx context.Context, cacheKey string, polls []entities.Poll, hasMore bool, generation int64) {
	current, err := r.redisClient.GetCounter(ctx, cacheGenerationKey)
	if err != nil {
		log.Printf("Failed to read cache generation for key %s: %v", cacheKey, err)
		return
	}
	if current != generation {
		return
	}

	dataJSON, err := json.Marshal(CacheablePage{Polls: polls, HasMore: hasMore})
	if err != nil {
		log.Printf("Failed to marshal cache data for key %s: %v", cacheKey, err)
		return
	}

	registryKeys := make([]string, 0, len(polls)+1)
	registryKeys = append(registryKeys, listRegistryKey)
	for _, poll := range polls {
		registryKeys = append(registryKeys, fmt.Sprintf(pollRegistryKeyShape, poll.ID))
	}

	if err := r.redisClient.SetWithRegistry(ctx, cacheKey, string(dataJSON), registryKeys); err != nil {
		log.Printf("Failed to set cache with registry for key %s: %v", cacheKey, err)
	}
}

// InvalidateByPollIDs drops every cached page that shows one of the polls.
func (r *CachedPollQueryRepository) InvalidateByPollIDs(ctx context.Context, pollIDs []string) error {
	if len(pollIDs) == 0 {
		return nil
	}

	registryKeys := make([]string, len(pollIDs))
	for i, pollID := range pollIDs {
		registryKeys[i] = fmt.Sprintf(pollRegistryKeyShape, pollID)
	}

	return r.invalidateRegistries(ctx, registryKeys)
}

// InvalidateAllLists drops every cached page. A new poll can shift any page.
func (r *CachedPollQueryRepository) InvalidateAllLists(ctx context.Context) error {
	return r.invalidateRegistries(ctx, []string{listRegistryKey})
}

func (r *CachedPollQueryRepository) invalidateRegistries(ctx context.Context, registryKeys []string) error {
	if r.redisClient == nil {
		return nil
	}

	if err := r.redisClient.IncrCounter(ctx, cacheGenerationKey); err != nil {
		return fmt.Errorf("failed to bump cache generation: %w", err)
	}

	registryResults, err := r.redisClient.GetMultipleSetMembers(ctx, registryKeys)
	if err != nil {
		return fmt.Errorf("failed to get registry data: %w", err)
	}

	allKeysToDelete := make(map[string]bool)
	for registryKey, relatedKeys := range registryResults {
		allKeysToDelete[registryKey] = true
		for _, relatedKey := range relatedKeys {
			allKeysToDelete[relatedKey] = true
		}
	}

	keysToDelete := make([]string, 0, len(allKeysToDelete))
	for key := range allKeysToDelete {
		keysToDelete = append(keysToDelete, key)
	}

	if len(keysToDelete) > 0 {
		log.Printf("Invalidating %d cache keys for %d registries", len(keysToDelete), len(registryKeys))
		return r.redisClient.DeleteKeys(ctx, keysToDelete)
	}

	return nil
}
