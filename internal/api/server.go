// Package api exposes the library operations over HTTP. Handlers decode the
// request, call into logic, and map the error taxonomy onto status codes.
package api

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"library-server/internal/auth"
	"library-server/internal/liberr"
	"library-server/internal/logic"
	"library-server/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Server handles the REST API requests.
type Server struct {
	logic  *logic.Service
	tokens *auth.Manager
	logger *zap.Logger
}

// NewServer creates an API server over the given service.
func NewServer(svc *logic.Service, tokens *auth.Manager, logger *zap.Logger) *Server {
	return &Server{
		logic:  svc,
		tokens: tokens,
		logger: logger,
	}
}

// RegisterRoutes registers all API routes on the provided mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/users", s.handleRegister)
	mux.HandleFunc("POST /api/auth", s.handleAuthenticate)
	mux.HandleFunc("GET /api/users", s.withSession("", s.handleRetrieveUser))

	mux.HandleFunc("GET /api/books", s.handleListBooks)
	mux.HandleFunc("POST /api/books", s.withSession(models.RoleAdmin, s.handleAddBook))
	mux.HandleFunc("PUT /api/books", s.withSession(models.RoleAdmin, s.handleUpdateBook))
	mux.HandleFunc("DELETE /api/books/{isbn}", s.withSession(models.RoleAdmin, s.handleRemoveBook))

	mux.HandleFunc("POST /api/books/{isbn}/request", s.withSession(models.RoleMember, s.handleRequestBook))
	mux.HandleFunc("POST /api/books/{isbn}/borrow", s.withSession(models.RoleMember, s.handleBorrowBook))
	mux.HandleFunc("POST /api/books/{isbn}/return", s.withSession(models.RoleMember, s.handleReturnBook))
	mux.HandleFunc("POST /api/books/{isbn}/wishlist", s.withSession(models.RoleMember, s.handleToggleWishlist))
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, session auth.Session)

// withSession verifies the bearer token and hands the session to the
// handler. An empty role admits any authenticated user.
func (s *Server) withSession(role models.Role, next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.FromHeader(r.Header.Get("Authorization"))
		if err != nil {
			s.logger.Warn("Rejected unauthenticated request",
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}

		session, err := s.tokens.Verify(token)
		if err != nil {
			s.logger.Warn("Rejected invalid token",
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}

		if role != "" && session.Role != role {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "wrong role"})
			return
		}

		next(w, r, session)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError maps the error taxonomy onto HTTP status codes and emits the
// {"error": message} body the clients expect.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case liberr.IsValidation(err), liberr.IsContent(err):
		status = http.StatusBadRequest
	case liberr.IsNotFound(err):
		status = http.StatusNotFound
	case liberr.IsNotAllowed(err):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		s.writeJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}

	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
