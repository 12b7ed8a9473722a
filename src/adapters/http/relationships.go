package http

import (
	"encoding/json"
	"net/http"

	"everypoll/src/domain"
	"everypoll/src/domain/entities"
)

func (s *Server) AttachRelationship(w http.ResponseWriter, r *http.Request) {
	requesterID, err := s.identity(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var request AttachRelationshipRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	edge, err := s.pollService.AttachRelationship(r.Context(), domain.AttachRelationshipRequest{
		RequesterID:  requesterID,
		SourcePollID: r.PathValue("id"),
		TargetPollID: request.TargetPollID,
		Kind:         entities.RelationshipKind(request.Kind),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, MapEdgeToResponse(edge))
}

func (s *Server) GetRelationships(w http.ResponseWriter, r *http.Request) {
	relationships, err := s.pollService.GetRelationships(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MapRelationshipsToResponse(relationships))
}
