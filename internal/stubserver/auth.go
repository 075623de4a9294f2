package stubserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTTL = 24 * time.Hour

type tokenService struct {
	secret []byte
}

func (t tokenService) generate(username string) (string, error) {
	claims := jwt.MapClaims{
		"sub": username,
		"jti": uuid.NewString(),
		"exp": time.Now().Add(tokenTTL).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t tokenService) parse(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}

		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	username, ok := claims["sub"].(string)
	if !ok || username == "" {
		return "", errors.New("invalid token claims")
	}

	return username, nil
}

type ctxKey string

const userKey ctxKey = "user"

// requireAuth guards the transaction endpoints. Failures use the auth error
// body shape ({"detail": "..."}), matching what the real API serves.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		username, err := s.tokens.parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		s.mu.Lock()
		u, ok := s.users[username]
		s.mu.Unlock()

		if !ok {
			writeDetail(w, http.StatusUnauthorized, "User not found")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}

func currentUser(r *http.Request) *user {
	u, _ := r.Context().Value(userKey).(*user)
	return u
}
