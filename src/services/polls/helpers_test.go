package polls_test

import (
	"log/slog"

	. "github.com/onsi/ginkgo/v2"

	"everypoll/src/services/polls"
	"everypoll/src/test_artefacts/fakes"
)

func newTestService() (*polls.PollService, *fakes.PollStore) {
	store := fakes.NewPollStore()
	logger := slog.New(slog.NewTextHandler(GinkgoWriter, &slog.HandlerOptions{Level: slog.LevelDebug}))

	return polls.NewPollService(logger, store, store, store, store), store
}
