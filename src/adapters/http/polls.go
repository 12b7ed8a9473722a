package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"everypoll/src/domain"
)

func (s *Server) CreatePoll(w http.ResponseWriter, r *http.Request) {
	creatorID, err := s.identity(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var request CreatePollRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	isPublic := true
	if request.IsPublic != nil {
		isPublic = *request.IsPublic
	}

	poll, err := s.pollService.CreatePoll(r.Context(), domain.CreatePollRequest{
		CreatorID:   creatorID,
		Question:    request.Question,
		Description: request.Description,
		Options:     request.Options,
		IsPublic:    isPublic,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, MapPollToResponse(poll))
}

func (s *Server) ListPolls(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		s.writeError(w, r, domain.ErrInvalidPagination)
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, domain.ErrInvalidPagination)
		return
	}

	query := domain.ListPollsQuery{
		Page:       page,
		Limit:      limit,
		Search:     r.URL.Query().Get("search"),
		Visibility: domain.VisibilityPublic,
	}

	if viewerID := s.optionalViewer(r); viewerID != "" {
		query.Visibility = domain.VisibilityPublicOrOwn
		query.ViewerID = viewerID
	}

	result, err := s.pollService.ListPolls(r.Context(), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MapPollPageToResponse(result))
}

func (s *Server) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		http.Error(w, "Poll ID is required", http.StatusBadRequest)
		return
	}

	view, err := s.pollService.GetPoll(r.Context(), pollID, s.optionalViewer(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MapPollViewToResponse(view))
}

// queryInt returns 0 for a missing parameter so the service applies defaults.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
