package storage

import (
	"context"
	"time"

	"library-server/internal/models"
)

// Storage defines the interface for data storage operations.
//
// Requests and loans are top-level collections keyed by (member, ISBN/book);
// admin and member views of them are assembled by queries, not replicated
// writes. Conditional operations (DecrementStock, CreateLoan) apply their
// guard and the mutation in one step and report whether they took effect,
// so concurrent callers cannot race a separate check against the write.
type Storage interface {
	// Admin operations
	CreateAdmin(ctx context.Context, admin models.Admin) (string, error)
	GetAdminByID(ctx context.Context, id string) (*models.Admin, error)
	GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
	TouchAdminAuthenticated(ctx context.Context, id string, at time.Time) error
	AddAddedBook(ctx context.Context, adminID, bookID string) error
	// StripAddedBook removes a book reference from every admin's added list.
	StripAddedBook(ctx context.Context, bookID string) error

	// Member operations
	CreateMember(ctx context.Context, member models.Member) (string, error)
	GetMemberByID(ctx context.Context, id string) (*models.Member, error)
	GetMemberByEmail(ctx context.Context, email string) (*models.Member, error)
	TouchMemberAuthenticated(ctx context.Context, id string, at time.Time) error
	SetBorrowLimit(ctx context.Context, memberID string, limit int) error
	AddOverdueDays(ctx context.Context, memberID string, days float64) error
	AddWishlistedBook(ctx context.Context, memberID, bookID string) error
	RemoveWishlistedBook(ctx context.Context, memberID, bookID string) error
	// StripWishlistedBook removes a book reference from every wishlist.
	StripWishlistedBook(ctx context.Context, bookID string) error

	// Book operations
	CreateBook(ctx context.Context, book models.Book) (string, error)
	GetBookByID(ctx context.Context, id string) (*models.Book, error)
	GetBookByISBN(ctx context.Context, isbn string) (*models.Book, error)
	ListBooks(ctx context.Context) ([]models.Book, error)
	// AddStock adds units to an existing book and keeps status in sync.
	AddStock(ctx context.Context, isbn string, amount int) error
	// UpdateBook overwrites the mutable fields of the book with the given ISBN.
	UpdateBook(ctx context.Context, book models.Book) error
	DeleteBook(ctx context.Context, id string) error
	// DecrementStock removes one unit if any remain. It reports whether the
	// decrement was applied.
	DecrementStock(ctx context.Context, isbn string) (bool, error)
	IncrementStock(ctx context.Context, isbn string) error

	// Loan operations (active rentals)
	// CreateLoan inserts the loan only while the member holds fewer loans
	// than limit and does not already hold this book. It reports whether
	// the insert was applied.
	CreateLoan(ctx context.Context, loan models.Loan, limit int) (bool, error)
	GetLoan(ctx context.Context, memberID, bookID string) (*models.Loan, error)
	ListLoansByMember(ctx context.Context, memberID string) ([]models.Loan, error)
	ListLoans(ctx context.Context) ([]models.Loan, error)
	DeleteLoan(ctx context.Context, memberID, bookID string) error
	DeleteLoansForBook(ctx context.Context, bookID string) error

	// Request operations (pending title requests)
	CreateRequest(ctx context.Context, req models.Request) error
	HasRequest(ctx context.Context, memberID, isbn string) (bool, error)
	ListRequestsByMember(ctx context.Context, memberID string) ([]models.Request, error)
	ListRequests(ctx context.Context) ([]models.Request, error)
	// DeleteRequestsByISBN clears every pending request for the ISBN and
	// returns the removed requests so callers can reward the requesters.
	DeleteRequestsByISBN(ctx context.Context, isbn string) ([]models.Request, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}
