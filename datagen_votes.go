//go:build datagen_votes
// +build datagen_votes

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"everypoll/src/domain"
	"everypoll/src/domain/entities"
	"everypoll/src/helper/env"
	"everypoll/src/infra/postgres"
	"everypoll/src/repositories"

	"github.com/go-faker/faker/v4"
	"github.com/jackc/pgx/v5/pgxpool"
)

var relationshipKinds = []entities.RelationshipKind{
	entities.RelationshipRelated,
	entities.RelationshipFollowUp,
	entities.RelationshipOpposing,
	entities.RelationshipPrerequisite,
	entities.RelationshipCustom,
}

type voteCounters struct {
	accepted  int64
	duplicate int64
	errors    int64
}

func newSQLClient(maxConnections int) (*pgxpool.Pool, error) {
	dbHost := env.MustGetString("DB_WRITE_HOST")
	dbPort := env.GetString("DB_WRITE_PORT", "5432")
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	return postgres.NewPostgresClient(dbHost, dbPort, dbname, dbUser, dbPassword, maxConnections)
}

func main() {
	numPolls := flag.Int("polls", 20, "Número de enquetes criadas antes da carga")
	numVoters := flag.Int("voters", 500, "Número de eleitores distintos")
	numWorkers := flag.Int("workers", 32, "Goroutines votando em paralelo")
	duplicateRatio := flag.Float64("duplicate-ratio", 0.1, "Fração de votos repetidos (devem ser rejeitados)")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := newSQLClient(*numWorkers + 4)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	if err := postgres.CreateSchema(ctx, db); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	pollWriter := repositories.NewPollWriteRepository(db)
	voteLedger := repositories.NewVoteLedgerRepository(db)

	polls, err := seedPolls(ctx, pollWriter, *numPolls)
	if err != nil {
		log.Fatalf("Failed to seed polls: %v", err)
	}
	fmt.Printf("🗳️  Created %d polls\n", len(polls))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n🛑 Shutdown signal received, stopping...")
		cancel()
	}()

	requests := make(chan domain.CastVoteRequest, *numWorkers*4)
	counters := &voteCounters{}
	startTime := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < *numWorkers; i++ {
		wg.Add(1)
		go voteWorker(ctx, &wg, voteLedger, requests, counters)
	}

	go produceVotes(ctx, requests, polls, *numVoters, *duplicateRatio)

	wg.Wait()

	elapsed := time.Since(startTime)
	accepted := atomic.LoadInt64(&counters.accepted)
	fmt.Printf("\n🏁 Load finished in %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("✅ Accepted: %d\n", accepted)
	fmt.Printf("🔁 Rejected duplicates: %d\n", atomic.LoadInt64(&counters.duplicate))
	fmt.Printf("❌ Errors: %d\n", atomic.LoadInt64(&counters.errors))
	fmt.Printf("🚀 Rate: %.1f votes/s\n", float64(accepted)/elapsed.Seconds())

	verifyTallies(context.Background(), voteLedger, polls)
}

// seedPolls creates the polls and links consecutive ones so relationship
// reads have something to return.
func seedPolls(ctx context.Context, pollWriter *repositories.PollWriteRepository, count int) ([]entities.Poll, error) {
	polls := make([]entities.Poll, 0, count)

	for i := 0; i < count; i++ {
		optionCount := entities.MinPollOptions + rand.Intn(entities.MaxPollOptions-entities.MinPollOptions+1)
		options := make([]string, optionCount)
		for j := range options {
			options[j] = fmt.Sprintf("%s %d", faker.Word(), j+1)
		}

		request, err := domain.NormalizeCreatePoll(domain.CreatePollRequest{
			CreatorID:   faker.UUIDHyphenated(),
			Question:    strings.TrimSuffix(faker.Sentence(), ".") + "?",
			Description: faker.Paragraph(),
			Options:     options,
			IsPublic:    rand.Float64() < 0.8,
		})
		if err != nil {
			return nil, err
		}

		poll, err := pollWriter.CreatePoll(ctx, request)
		if err != nil {
			return nil, err
		}

		if len(polls) > 0 {
			_, err = pollWriter.AttachRelationship(ctx, domain.AttachRelationshipRequest{
				RequesterID:  poll.CreatorID,
				SourcePollID: poll.ID,
				TargetPollID: polls[len(polls)-1].ID,
				Kind:         relationshipKinds[rand.Intn(len(relationshipKinds))],
			})
			if err != nil {
				return nil, err
			}
		}

		polls = append(polls, poll)
	}

	return polls, nil
}

func produceVotes(ctx context.Context, requests chan<- domain.CastVoteRequest, polls []entities.Poll, numVoters int, duplicateRatio float64) {
	defer close(requests)

	for v := 0; v < numVoters; v++ {
		voterID := faker.Username() + "-" + faker.UUIDHyphenated()

		for _, poll := range polls {
			// not every voter answers every poll
			if rand.Float64() < 0.3 {
				continue
			}

			request := domain.CastVoteRequest{
				PollID:         poll.ID,
				VoterID:        voterID,
				SelectedOption: rand.Intn(len(poll.Options)),
			}

			sends := 1
			if rand.Float64() < duplicateRatio {
				sends = 2
			}

			for i := 0; i < sends; i++ {
				select {
				case requests <- request:
				case <-ctx.Done():
					fmt.Println("Producer stopping.")
					return
				}
			}
		}
	}
}

func voteWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	voteLedger *repositories.VoteLedgerRepository,
	requests <-chan domain.CastVoteRequest,
	counters *voteCounters,
) {
	defer wg.Done()

	for request := range requests {
		_, err := voteLedger.CastVote(ctx, request)
		switch {
		case err == nil:
			atomic.AddInt64(&counters.accepted, 1)
		case errors.Is(err, domain.ErrAlreadyVoted):
			atomic.AddInt64(&counters.duplicate, 1)
		case errors.Is(err, context.Canceled):
			return
		default:
			if atomic.AddInt64(&counters.errors, 1) <= 10 {
				log.Printf("vote failed: %v", err)
			}
		}
	}
}

// verifyTallies recounts every poll. Any drift means votes and counters
// went out of step under load.
func verifyTallies(ctx context.Context, voteLedger *repositories.VoteLedgerRepository, polls []entities.Poll) {
	drifted := 0
	for _, poll := range polls {
		reconciliation, err := voteLedger.RecountTallies(ctx, poll.ID)
		if err != nil {
			log.Printf("recount of %s failed: %v", poll.ID, err)
			continue
		}
		if reconciliation.Drift {
			drifted++
			fmt.Printf("⚠️  Poll %s drifted, repaired to %d votes\n", poll.ID, reconciliation.Tally.Total)
		}
	}

	if drifted == 0 {
		fmt.Printf("🔍 All %d tallies match their votes\n", len(polls))
	}
}
