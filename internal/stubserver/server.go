// Package stubserver is an in-memory implementation of the budget tracker
// REST API for local development and hermetic tests. It mirrors the external
// API's wire contract, including its two error body shapes, but persists
// nothing.
package stubserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/crypto/bcrypt"

	"budgetbook/internal/budget"
)

type user struct {
	id       int64
	username string
	email    string
	hash     []byte
}

type storedTx struct {
	budget.Transaction
	userID int64
}

// Server holds all state behind the stub API.
type Server struct {
	tokens tokenService

	mu     sync.Mutex
	users  map[string]*user
	emails map[string]bool
	txs    []*storedTx
	nextID int64
}

func New(jwtSecret string) *Server {
	return &Server{
		tokens: tokenService{secret: []byte(jwtSecret)},
		users:  make(map[string]*user),
		emails: make(map[string]bool),
	}
}

// Handler builds the router for the full REST surface.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	router.Post("/register", s.register)
	router.Post("/login", s.login)

	router.Route("/transactions", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/", s.createTransaction)
		r.Get("/", s.listTransactions)
		r.Get("/summary", s.summary)
		r.Get("/{id}", s.getTransaction)
		r.Put("/{id}", s.updateTransaction)
		r.Delete("/{id}", s.deleteTransaction)
	})

	return router
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.users[req.Username]; taken {
		writeDetail(w, http.StatusBadRequest, "Username already taken")
		return
	}

	if s.emails[req.Email] {
		writeDetail(w, http.StatusBadRequest, "Email already taken")
		return
	}

	s.nextID++
	s.users[req.Username] = &user{
		id:       s.nextID,
		username: req.Username,
		email:    req.Email,
		hash:     hash,
	}
	s.emails[req.Email] = true

	writeJSON(w, http.StatusOK, map[string]string{"message": "User registered"})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	u, ok := s.users[req.Username]
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(req.Password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := s.tokens.generate(u.username)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeDetail writes the auth-style error body: {"detail": "message"}.
func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// writeValidation writes the transaction-endpoint error body:
// {"detail": [{"msg": "message"}]}.
func writeValidation(w http.ResponseWriter, status int, msgs ...string) {
	type item struct {
		Msg string `json:"msg"`
	}

	items := make([]item, len(msgs))
	for i, m := range msgs {
		items[i] = item{Msg: m}
	}

	writeJSON(w, status, map[string]any{"detail": items})
}
