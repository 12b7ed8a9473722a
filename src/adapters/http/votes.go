package http

import (
	"encoding/json"
	"net/http"

	"everypoll/src/domain"
)

func (s *Server) CastVote(w http.ResponseWriter, r *http.Request) {
	voterID, err := s.identity(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var request CastVoteRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if request.OptionID == nil {
		s.writeError(w, r, domain.ErrInvalidOption)
		return
	}

	state, err := s.pollService.CastVote(r.Context(), domain.CastVoteRequest{
		PollID:         r.PathValue("id"),
		VoterID:        voterID,
		SelectedOption: *request.OptionID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, VoteStateDTO{
		PollID:         state.PollID,
		OptionID:       state.OptionID,
		TotalVotes:     state.TotalVotes,
		PerOptionVotes: state.PerOptionVotes,
	})
}

func (s *Server) ReconcileTallies(w http.ResponseWriter, r *http.Request) {
	requesterID, err := s.identity(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	reconciliation, err := s.pollService.ReconcileTallies(r.Context(), r.PathValue("id"), requesterID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ReconciliationDTO{
		PollID:         reconciliation.PollID,
		TotalVotes:     reconciliation.Tally.Total,
		PerOptionVotes: reconciliation.Tally.PerOption,
		Drift:          reconciliation.Drift,
	})
}
