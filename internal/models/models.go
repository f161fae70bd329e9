package models

import (
	"time"

	"github.com/google/uuid"

	"library-server/internal/liberr"
)

// Role identifies which kind of user a session belongs to.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// ParseRole validates a raw role string once, at the edge. Everything past
// this point works with the typed value.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin, RoleMember:
		return Role(raw), nil
	default:
		return "", liberr.NewValidation("role %v is not a valid role", raw)
	}
}

// Book availability states. Status is derived from stock, never set directly.
const (
	StatusAvailable   = "available"
	StatusUnavailable = "unavailable"
)

// StatusFor returns the availability status matching a stock count.
func StatusFor(stock int) string {
	if stock > 0 {
		return StatusAvailable
	}
	return StatusUnavailable
}

// NewID generates a fresh entity identifier.
func NewID() string {
	return uuid.NewString()
}

// Book is a catalog entry. Stock counts physical units; status mirrors it.
type Book struct {
	ID                string    `json:"id" db:"id"`
	ISBN              string    `json:"isbn" db:"isbn"`
	Title             string    `json:"title" db:"title"`
	Description       string    `json:"description,omitempty" db:"description"`
	Author            string    `json:"author,omitempty" db:"author"`
	YearOfPublication int       `json:"yearOfPublication,omitempty" db:"year_of_publication"`
	Stock             int       `json:"stock" db:"stock"`
	Status            string    `json:"status" db:"status"`
	Added             time.Time `json:"added" db:"added"`
}

// Member is a library user who can borrow, request and wishlist books.
// The password field holds a bcrypt hash and is never serialized.
type Member struct {
	ID            string     `json:"id" db:"id"`
	Email         string     `json:"email" db:"email"`
	Password      string     `json:"-" db:"password"`
	Role          Role       `json:"role" db:"role"`
	Created       time.Time  `json:"created" db:"created"`
	Authenticated *time.Time `json:"authenticated,omitempty" db:"authenticated"`
	BorrowLimit   int        `json:"borrowLimit" db:"borrow_limit"`
	OverdueDays   float64    `json:"overdueDays" db:"overdue_days"`
	Wishlist      []string   `json:"wishlistedBooks,omitempty" db:"-"`
}

// Admin manages the catalog. Requests and rentals are not stored on the
// admin record; they are projections over the request and loan collections.
type Admin struct {
	ID            string     `json:"id" db:"id"`
	Email         string     `json:"email" db:"email"`
	Password      string     `json:"-" db:"password"`
	Role          Role       `json:"role" db:"role"`
	Created       time.Time  `json:"created" db:"created"`
	Authenticated *time.Time `json:"authenticated,omitempty" db:"authenticated"`
	AddedBooks    []string   `json:"addedBooks,omitempty" db:"-"`
}

// Request is a member's petition for a title the library does not stock.
type Request struct {
	Requester string `json:"requester" db:"requester"`
	ISBN      string `json:"isbn" db:"isbn"`
}

// Loan is an active rental. DaysCount is the loan window granted at borrow
// time; the expiry date is the borrow instant plus that window.
type Loan struct {
	MemberID   string    `json:"memberId" db:"member_id"`
	BookID     string    `json:"bookId" db:"book_id"`
	DaysCount  float64   `json:"daysCount" db:"days_count"`
	ExpiryDate time.Time `json:"expiracyDate" db:"expiry_date"`
}
