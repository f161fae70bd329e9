// Package logic implements the library's business operations: user
// registration and authentication, catalog maintenance, borrowing and
// returning, and book requests and wishlists. Every operation validates its
// arguments before touching storage and surfaces failures through the
// liberr taxonomy.
package logic

import (
	"time"

	"library-server/internal/models"
	"library-server/internal/storage"
)

// Service carries the business operations over a Storage backend.
type Service struct {
	store storage.Storage
	now   func() time.Time
}

// New creates a Service backed by the given store.
func New(store storage.Storage) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// Profile is the sanitized view of a user returned by RetrieveUser. Role
// decides which of the optional sections are populated; the password hash
// never leaves the storage layer.
type Profile struct {
	ID            string      `json:"id"`
	Email         string      `json:"email"`
	Role          models.Role `json:"role"`
	Created       time.Time   `json:"created"`
	Authenticated *time.Time  `json:"authenticated,omitempty"`

	// Member view
	BorrowLimit     int              `json:"borrowLimit,omitempty"`
	OverdueDays     float64          `json:"overdueDays,omitempty"`
	RequestedBooks  []models.Request `json:"requestedBooks,omitempty"`
	BorrowedBooks   []models.Loan    `json:"borrowedBooks,omitempty"`
	WishlistedBooks []string         `json:"wishlistedBooks,omitempty"`

	// Admin view
	AddedBooks  []string         `json:"addedBooks,omitempty"`
	Requests    []models.Request `json:"requests,omitempty"`
	RentedBooks []models.Loan    `json:"rentedBooks,omitempty"`
}
