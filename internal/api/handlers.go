package api

import (
	"net/http"

	"go.uber.org/zap"

	"library-server/internal/auth"
	"library-server/internal/liberr"
	"library-server/internal/models"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type bookRequest struct {
	Title             string `json:"title"`
	ISBN              string `json:"isbn"`
	Description       string `json:"description"`
	Author            string `json:"author"`
	YearOfPublication int    `json:"yearOfPublication"`
	Stock             int    `json:"stock"`
}

func (r bookRequest) book() models.Book {
	return models.Book{
		Title:             r.Title,
		ISBN:              r.ISBN,
		Description:       r.Description,
		Author:            r.Author,
		YearOfPublication: r.YearOfPublication,
		Stock:             r.Stock,
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, r, liberr.NewValidation("request body is not valid JSON"))
		return false
	}
	return true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decode(w, r, &req) {
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.logic.RegisterUser(r.Context(), req.Email, req.Password, role); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("User registered",
		zap.String("email", req.Email),
		zap.String("role", req.Role),
	)
	s.writeJSON(w, http.StatusCreated, map[string]string{"status": "success"})
}

func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decode(w, r, &req) {
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := s.logic.AuthenticateUser(r.Context(), req.Email, req.Password, role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	token, err := s.tokens.Issue(id, role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleRetrieveUser(w http.ResponseWriter, r *http.Request, session auth.Session) {
	profile, err := s.logic.RetrieveUser(r.Context(), session.UserID, session.Role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.logic.RetrieveBooks(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if books == nil {
		books = []models.Book{}
	}
	s.writeJSON(w, http.StatusOK, books)
}

func (s *Server) handleAddBook(w http.ResponseWriter, r *http.Request, session auth.Session) {
	var req bookRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.logic.AddBook(r.Context(), session.UserID, req.book(), req.Stock); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("Book added",
		zap.String("isbn", req.ISBN),
		zap.String("title", req.Title),
		zap.Int("stock", req.Stock),
	)
	s.writeJSON(w, http.StatusCreated, map[string]string{"status": "success"})
}

func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request, session auth.Session) {
	var req bookRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.logic.UpdateBook(r.Context(), session.UserID, req.book()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleRemoveBook(w http.ResponseWriter, r *http.Request, session auth.Session) {
	isbn := r.PathValue("isbn")
	if err := s.logic.RemoveBook(r.Context(), session.UserID, isbn); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("Book removed", zap.String("isbn", isbn))
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleRequestBook(w http.ResponseWriter, r *http.Request, session auth.Session) {
	if err := s.logic.RequestBook(r.Context(), session.UserID, r.PathValue("isbn")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"status": "success"})
}

func (s *Server) handleBorrowBook(w http.ResponseWriter, r *http.Request, session auth.Session) {
	isbn := r.PathValue("isbn")
	if err := s.logic.BorrowBook(r.Context(), session.UserID, isbn); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("Book borrowed",
		zap.String("isbn", isbn),
		zap.String("member_id", session.UserID),
	)
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleReturnBook(w http.ResponseWriter, r *http.Request, session auth.Session) {
	isbn := r.PathValue("isbn")
	if err := s.logic.ReturnBorrowedBook(r.Context(), session.UserID, isbn); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("Book returned",
		zap.String("isbn", isbn),
		zap.String("member_id", session.UserID),
	)
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleToggleWishlist(w http.ResponseWriter, r *http.Request, session auth.Session) {
	if err := s.logic.ToggleWishlist(r.Context(), session.UserID, r.PathValue("isbn")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
