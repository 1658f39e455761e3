package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/nhle/taskboard/internal/credential"
	"github.com/nhle/taskboard/internal/model"
)

type principalKey struct{}

// authenticate verifies the bearer token and rejects roles that are not
// entitled to the task board.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing or malformed bearer token")
			return
		}

		claims, err := credential.VerifyToken(s.secret, token)
		if err != nil {
			s.log.WithError(err).Debug("rejected token")
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		p := claims.Principal()
		if !p.Role.CanUseTasks() {
			writeError(w, http.StatusForbidden, "role not permitted")
			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func principalFrom(ctx context.Context) model.Principal {
	p, _ := ctx.Value(principalKey{}).(model.Principal)
	return p
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
