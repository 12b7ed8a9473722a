package repositories

import (
	"context"
	"fmt"
	"strings"

	"everypoll/src/domain"
	"everypoll/src/domain/entities"
	"everypoll/src/infra/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pollColumns = `id, question, description, options, option_votes, total_votes, creator_id, is_public, created_at, updated_at`

// PollQueryRepository reads polls. Detail reads go to the primary pool so a
// client always sees its own vote; list pages are served by the read pool.
type PollQueryRepository struct {
	readPool    *pgxpool.Pool
	primaryPool *pgxpool.Pool
}

func NewPollQueryRepository(readPool *pgxpool.Pool, primaryPool *pgxpool.Pool) *PollQueryRepository {
	return &PollQueryRepository{readPool: readPool, primaryPool: primaryPool}
}

func (pqr *PollQueryRepository) GetPoll(ctx context.Context, pollID string) (entities.Poll, error) {
	row := pqr.primaryPool.QueryRow(ctx, `SELECT `+pollColumns+` FROM polls WHERE id = $1`, pollID)

	poll, err := scanPoll(row)
	if postgres.IsNoRows(err) {
		return entities.Poll{}, domain.ErrPollNotFound
	}
	if err != nil {
		return entities.Poll{}, storageError("PollQueryRepository.GetPoll - failed to scan poll", err)
	}

	return poll, nil
}

// ListPolls returns one page, newest first with ties broken by id, and whether
// more matching polls exist after it. The query must be normalized.
func (pqr *PollQueryRepository) ListPolls(ctx context.Context, query domain.ListPollsQuery) ([]entities.Poll, bool, error) {
	conditions := make([]string, 0, 2)
	args := make([]interface{}, 0, 4)

	if query.Search != "" {
		args = append(args, "%"+postgres.EscapeLike(query.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("question ILIKE $%d", len(args)))
	}

	switch query.Visibility {
	case domain.VisibilityAll:
	case domain.VisibilityPublicOrOwn:
		args = append(args, query.ViewerID)
		conditions = append(conditions, fmt.Sprintf("(is_public = TRUE OR creator_id = $%d)", len(args)))
	default:
		conditions = append(conditions, "is_public = TRUE")
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	// one extra row tells us whether another page exists
	args = append(args, query.Limit+1, query.Offset())
	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM polls
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		pollColumns, where, len(args)-1, len(args),
	)

	rows, err := pqr.readPool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, false, storageError("PollQueryRepository.ListPolls - list query failed", err)
	}
	defer rows.Close()

	polls := make([]entities.Poll, 0, query.Limit+1)
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			return nil, false, fmt.Errorf("PollQueryRepository.ListPolls - failed to scan poll: %w", err)
		}
		polls = append(polls, poll)
	}

	if err := rows.Err(); err != nil {
		return nil, false, storageError("PollQueryRepository.ListPolls - error iterating poll rows", err)
	}

	hasMore := len(polls) > query.Limit
	if hasMore {
		polls = polls[:query.Limit]
	}

	return polls, hasMore, nil
}

func scanPoll(row pgx.Row) (entities.Poll, error) {
	var poll entities.Poll
	var description *string
	var labels []string
	var counts []int64
	var total int64

	err := row.Scan(
		&poll.ID,
		&poll.Question,
		&description,
		&labels,
		&counts,
		&total,
		&poll.CreatorID,
		&poll.IsPublic,
		&poll.CreatedAt,
		&poll.UpdatedAt,
	)
	if err != nil {
		return entities.Poll{}, err
	}

	if description != nil {
		poll.Description = *description
	}
	poll.Options = entities.OptionsFromLabels(labels)

	poll.Tally, err = entities.TallyFromCounts(total, counts)
	if err != nil {
		return entities.Poll{}, fmt.Errorf("poll %s: %w", poll.ID, err)
	}

	return poll, nil
}
