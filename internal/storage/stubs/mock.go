package stubs

import (
	"context"
	"sort"
	"sync"
	"time"

	"library-server/internal/models"
)

// MockDB is an in-memory implementation of the Storage interface for testing
// and local development (USE_MOCK_DB mode).
type MockDB struct {
	mu       sync.RWMutex
	admins   map[string]models.Admin
	members  map[string]models.Member
	books    map[string]models.Book
	loans    []models.Loan
	requests []models.Request
}

// NewMockDB creates a new mock database.
func NewMockDB() *MockDB {
	return &MockDB{
		admins:  make(map[string]models.Admin),
		members: make(map[string]models.Member),
		books:   make(map[string]models.Book),
	}
}

// Admin operations

func (m *MockDB) CreateAdmin(ctx context.Context, admin models.Admin) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.admins[admin.ID] = admin
	return admin.ID, nil
}

func (m *MockDB) GetAdminByID(ctx context.Context, id string) (*models.Admin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	admin, ok := m.admins[id]
	if !ok {
		return nil, nil
	}
	admin.AddedBooks = append([]string(nil), admin.AddedBooks...)
	return &admin, nil
}

func (m *MockDB) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, admin := range m.admins {
		if admin.Email == email {
			admin.AddedBooks = append([]string(nil), admin.AddedBooks...)
			return &admin, nil
		}
	}
	return nil, nil
}

func (m *MockDB) TouchAdminAuthenticated(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if admin, ok := m.admins[id]; ok {
		admin.Authenticated = &at
		m.admins[id] = admin
	}
	return nil
}

func (m *MockDB) AddAddedBook(ctx context.Context, adminID, bookID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	admin, ok := m.admins[adminID]
	if !ok {
		return nil
	}
	for _, id := range admin.AddedBooks {
		if id == bookID {
			return nil
		}
	}
	admin.AddedBooks = append(admin.AddedBooks, bookID)
	m.admins[adminID] = admin
	return nil
}

func (m *MockDB) StripAddedBook(ctx context.Context, bookID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, admin := range m.admins {
		kept := admin.AddedBooks[:0]
		for _, b := range admin.AddedBooks {
			if b != bookID {
				kept = append(kept, b)
			}
		}
		admin.AddedBooks = kept
		m.admins[id] = admin
	}
	return nil
}

// Member operations

func (m *MockDB) CreateMember(ctx context.Context, member models.Member) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.members[member.ID] = member
	return member.ID, nil
}

func (m *MockDB) GetMemberByID(ctx context.Context, id string) (*models.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	member, ok := m.members[id]
	if !ok {
		return nil, nil
	}
	member.Wishlist = append([]string(nil), member.Wishlist...)
	return &member, nil
}

func (m *MockDB) GetMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, member := range m.members {
		if member.Email == email {
			member.Wishlist = append([]string(nil), member.Wishlist...)
			return &member, nil
		}
	}
	return nil, nil
}

func (m *MockDB) TouchMemberAuthenticated(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if member, ok := m.members[id]; ok {
		member.Authenticated = &at
		m.members[id] = member
	}
	return nil
}

func (m *MockDB) SetBorrowLimit(ctx context.Context, memberID string, limit int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if member, ok := m.members[memberID]; ok {
		member.BorrowLimit = limit
		m.members[memberID] = member
	}
	return nil
}

func (m *MockDB) AddOverdueDays(ctx context.Context, memberID string, days float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if member, ok := m.members[memberID]; ok {
		member.OverdueDays += days
		m.members[memberID] = member
	}
	return nil
}

func (m *MockDB) AddWishlistedBook(ctx context.Context, memberID, bookID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	member, ok := m.members[memberID]
	if !ok {
		return nil
	}
	for _, id := range member.Wishlist {
		if id == bookID {
			return nil
		}
	}
	member.Wishlist = append(member.Wishlist, bookID)
	m.members[memberID] = member
	return nil
}

func (m *MockDB) RemoveWishlistedBook(ctx context.Context, memberID, bookID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	member, ok := m.members[memberID]
	if !ok {
		return nil
	}
	kept := member.Wishlist[:0]
	for _, id := range member.Wishlist {
		if id != bookID {
			kept = append(kept, id)
		}
	}
	member.Wishlist = kept
	m.members[memberID] = member
	return nil
}

func (m *MockDB) StripWishlistedBook(ctx context.Context, bookID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, member := range m.members {
		kept := member.Wishlist[:0]
		for _, b := range member.Wishlist {
			if b != bookID {
				kept = append(kept, b)
			}
		}
		member.Wishlist = kept
		m.members[id] = member
	}
	return nil
}

// Book operations

func (m *MockDB) CreateBook(ctx context.Context, book models.Book) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.books[book.ID] = book
	return book.ID, nil
}

func (m *MockDB) GetBookByID(ctx context.Context, id string) (*models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	book, ok := m.books[id]
	if !ok {
		return nil, nil
	}
	return &book, nil
}

func (m *MockDB) GetBookByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, book := range m.books {
		if book.ISBN == isbn {
			return &book, nil
		}
	}
	return nil, nil
}

func (m *MockDB) ListBooks(ctx context.Context) ([]models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	books := make([]models.Book, 0, len(m.books))
	for _, book := range m.books {
		books = append(books, book)
	}

	// Sort by title for stable output
	sort.Slice(books, func(i, j int) bool {
		return books[i].Title < books[j].Title
	})

	return books, nil
}

func (m *MockDB) AddStock(ctx context.Context, isbn string, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, book := range m.books {
		if book.ISBN == isbn {
			book.Stock += amount
			book.Status = models.StatusFor(book.Stock)
			m.books[id] = book
			return nil
		}
	}
	return nil
}

func (m *MockDB) UpdateBook(ctx context.Context, book models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, existing := range m.books {
		if existing.ISBN == book.ISBN {
			book.ID = existing.ID
			book.Added = existing.Added
			m.books[id] = book
			return nil
		}
	}
	return nil
}

func (m *MockDB) DeleteBook(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.books, id)
	return nil
}

func (m *MockDB) DecrementStock(ctx context.Context, isbn string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, book := range m.books {
		if book.ISBN == isbn {
			if book.Stock == 0 {
				return false, nil
			}
			book.Stock--
			book.Status = models.StatusFor(book.Stock)
			m.books[id] = book
			return true, nil
		}
	}
	return false, nil
}

func (m *MockDB) IncrementStock(ctx context.Context, isbn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, book := range m.books {
		if book.ISBN == isbn {
			book.Stock++
			book.Status = models.StatusFor(book.Stock)
			m.books[id] = book
			return nil
		}
	}
	return nil
}

// Loan operations

func (m *MockDB) CreateLoan(ctx context.Context, loan models.Loan, limit int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	held := 0
	for _, l := range m.loans {
		if l.MemberID == loan.MemberID {
			if l.BookID == loan.BookID {
				return false, nil
			}
			held++
		}
	}
	if held >= limit {
		return false, nil
	}
	m.loans = append(m.loans, loan)
	return true, nil
}

func (m *MockDB) GetLoan(ctx context.Context, memberID, bookID string) (*models.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, l := range m.loans {
		if l.MemberID == memberID && l.BookID == bookID {
			return &l, nil
		}
	}
	return nil, nil
}

func (m *MockDB) ListLoansByMember(ctx context.Context, memberID string) ([]models.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var loans []models.Loan
	for _, l := range m.loans {
		if l.MemberID == memberID {
			loans = append(loans, l)
		}
	}
	return loans, nil
}

func (m *MockDB) ListLoans(ctx context.Context) ([]models.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]models.Loan(nil), m.loans...), nil
}

func (m *MockDB) DeleteLoan(ctx context.Context, memberID, bookID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.loans[:0]
	for _, l := range m.loans {
		if !(l.MemberID == memberID && l.BookID == bookID) {
			kept = append(kept, l)
		}
	}
	m.loans = kept
	return nil
}

func (m *MockDB) DeleteLoansForBook(ctx context.Context, bookID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.loans[:0]
	for _, l := range m.loans {
		if l.BookID != bookID {
			kept = append(kept, l)
		}
	}
	m.loans = kept
	return nil
}

// Request operations

func (m *MockDB) CreateRequest(ctx context.Context, req models.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.requests {
		if r.Requester == req.Requester && r.ISBN == req.ISBN {
			return nil
		}
	}
	m.requests = append(m.requests, req)
	return nil
}

func (m *MockDB) HasRequest(ctx context.Context, memberID, isbn string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.requests {
		if r.Requester == memberID && r.ISBN == isbn {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockDB) ListRequestsByMember(ctx context.Context, memberID string) ([]models.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var requests []models.Request
	for _, r := range m.requests {
		if r.Requester == memberID {
			requests = append(requests, r)
		}
	}
	return requests, nil
}

func (m *MockDB) ListRequests(ctx context.Context) ([]models.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]models.Request(nil), m.requests...), nil
}

func (m *MockDB) DeleteRequestsByISBN(ctx context.Context, isbn string) ([]models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []models.Request
	kept := m.requests[:0]
	for _, r := range m.requests {
		if r.ISBN == isbn {
			removed = append(removed, r)
		} else {
			kept = append(kept, r)
		}
	}
	m.requests = kept
	return removed, nil
}

// Ping does nothing for mock DB.
func (m *MockDB) Ping(ctx context.Context) error {
	return nil
}

// Close does nothing for mock DB.
func (m *MockDB) Close() error {
	return nil
}
