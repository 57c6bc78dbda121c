package auth

import (
	"net/http"
	"strings"

	"artbid-api/internal/entity"
)

// Sessions resolves the caller of a request from its bearer token. A missing
// or invalid token yields no identity; handlers decide whether that matters.
type Sessions struct {
	tokens *TokenManager
}

func NewSessions(tokens *TokenManager) *Sessions {
	return &Sessions{tokens: tokens}
}

func (s *Sessions) CurrentUser(r *http.Request) (*entity.Identity, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, false
	}

	identity, err := s.tokens.Parse(parts[1])
	if err != nil {
		return nil, false
	}

	return identity, true
}
