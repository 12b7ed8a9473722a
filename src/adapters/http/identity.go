package http

import (
	"net/http"
	"strings"

	"everypoll/src/domain"
)

const DefaultIdentityHeader = "X-User-ID"

// IdentityResolver returns the caller's user id or domain.ErrUnauthenticated.
// Authentication itself happens upstream; the resolver only reads its result.
type IdentityResolver func(r *http.Request) (string, error)

// HeaderIdentityResolver trusts a header set by the gateway in front of the API.
func HeaderIdentityResolver(header string) IdentityResolver {
	if header == "" {
		header = DefaultIdentityHeader
	}

	return func(r *http.Request) (string, error) {
		userID := strings.TrimSpace(r.Header.Get(header))
		if userID == "" {
			return "", domain.ErrUnauthenticated
		}
		return userID, nil
	}
}

// optionalViewer is used by read routes, which also serve anonymous callers.
func (s *Server) optionalViewer(r *http.Request) string {
	userID, err := s.identity(r)
	if err != nil {
		return ""
	}
	return userID
}
