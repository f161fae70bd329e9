package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"library-server/internal/models"
)

const (
	maxOpenConns    = 8
	maxIdleConns    = 2
	connMaxLifetime = time.Hour
	connMaxIdleTime = 5 * time.Minute
)

// PostgresDB implements the Storage interface on top of PostgreSQL.
type PostgresDB struct {
	db *sqlx.DB
}

// NewPostgresDB opens a connection pool against the given DSN and verifies it.
func NewPostgresDB(dsn string) (*PostgresDB, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresDB{db: db}, nil
}

// Admin operations

func (p *PostgresDB) CreateAdmin(ctx context.Context, admin models.Admin) (string, error) {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO admins (id, email, password, role, created) VALUES ($1, $2, $3, $4, $5)`,
		admin.ID, admin.Email, admin.Password, admin.Role, admin.Created)
	if err != nil {
		return "", fmt.Errorf("failed to create admin: %w", err)
	}
	return admin.ID, nil
}

func (p *PostgresDB) GetAdminByID(ctx context.Context, id string) (*models.Admin, error) {
	return p.getAdmin(ctx, `SELECT id, email, password, role, created, authenticated FROM admins WHERE id = $1`, id)
}

func (p *PostgresDB) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return p.getAdmin(ctx, `SELECT id, email, password, role, created, authenticated FROM admins WHERE email = $1`, email)
}

func (p *PostgresDB) getAdmin(ctx context.Context, query, arg string) (*models.Admin, error) {
	var admin models.Admin
	if err := p.db.GetContext(ctx, &admin, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}

	if err := p.db.SelectContext(ctx, &admin.AddedBooks,
		`SELECT book_id FROM admin_added_books WHERE admin_id = $1 ORDER BY book_id`, admin.ID); err != nil {
		return nil, fmt.Errorf("failed to get added books: %w", err)
	}
	return &admin, nil
}

func (p *PostgresDB) TouchAdminAuthenticated(ctx context.Context, id string, at time.Time) error {
	_, err := p.db.ExecContext(ctx, `UPDATE admins SET authenticated = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to touch admin authentication: %w", err)
	}
	return nil
}

func (p *PostgresDB) AddAddedBook(ctx context.Context, adminID, bookID string) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO admin_added_books (admin_id, book_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		adminID, bookID)
	if err != nil {
		return fmt.Errorf("failed to register added book: %w", err)
	}
	return nil
}

func (p *PostgresDB) StripAddedBook(ctx context.Context, bookID string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM admin_added_books WHERE book_id = $1`, bookID)
	if err != nil {
		return fmt.Errorf("failed to strip added book: %w", err)
	}
	return nil
}

// Member operations

func (p *PostgresDB) CreateMember(ctx context.Context, member models.Member) (string, error) {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO members (id, email, password, role, created, borrow_limit, overdue_days)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		member.ID, member.Email, member.Password, member.Role, member.Created,
		member.BorrowLimit, member.OverdueDays)
	if err != nil {
		return "", fmt.Errorf("failed to create member: %w", err)
	}
	return member.ID, nil
}

func (p *PostgresDB) GetMemberByID(ctx context.Context, id string) (*models.Member, error) {
	return p.getMember(ctx, `SELECT id, email, password, role, created, authenticated, borrow_limit, overdue_days FROM members WHERE id = $1`, id)
}

func (p *PostgresDB) GetMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	return p.getMember(ctx, `SELECT id, email, password, role, created, authenticated, borrow_limit, overdue_days FROM members WHERE email = $1`, email)
}

func (p *PostgresDB) getMember(ctx context.Context, query, arg string) (*models.Member, error) {
	var member models.Member
	if err := p.db.GetContext(ctx, &member, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	if err := p.db.SelectContext(ctx, &member.Wishlist,
		`SELECT book_id FROM member_wishlist WHERE member_id = $1 ORDER BY book_id`, member.ID); err != nil {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}
	return &member, nil
}

func (p *PostgresDB) TouchMemberAuthenticated(ctx context.Context, id string, at time.Time) error {
	_, err := p.db.ExecContext(ctx, `UPDATE members SET authenticated = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to touch member authentication: %w", err)
	}
	return nil
}

func (p *PostgresDB) SetBorrowLimit(ctx context.Context, memberID string, limit int) error {
	_, err := p.db.ExecContext(ctx, `UPDATE members SET borrow_limit = $2 WHERE id = $1`, memberID, limit)
	if err != nil {
		return fmt.Errorf("failed to set borrow limit: %w", err)
	}
	return nil
}

func (p *PostgresDB) AddOverdueDays(ctx context.Context, memberID string, days float64) error {
	_, err := p.db.ExecContext(ctx, `UPDATE members SET overdue_days = overdue_days + $2 WHERE id = $1`, memberID, days)
	if err != nil {
		return fmt.Errorf("failed to add overdue days: %w", err)
	}
	return nil
}

func (p *PostgresDB) AddWishlistedBook(ctx context.Context, memberID, bookID string) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO member_wishlist (member_id, book_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		memberID, bookID)
	if err != nil {
		return fmt.Errorf("failed to wishlist book: %w", err)
	}
	return nil
}

func (p *PostgresDB) RemoveWishlistedBook(ctx context.Context, memberID, bookID string) error {
	_, err := p.db.ExecContext(ctx,
		`DELETE FROM member_wishlist WHERE member_id = $1 AND book_id = $2`, memberID, bookID)
	if err != nil {
		return fmt.Errorf("failed to unwishlist book: %w", err)
	}
	return nil
}

func (p *PostgresDB) StripWishlistedBook(ctx context.Context, bookID string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM member_wishlist WHERE book_id = $1`, bookID)
	if err != nil {
		return fmt.Errorf("failed to strip wishlisted book: %w", err)
	}
	return nil
}

// Book operations

func (p *PostgresDB) CreateBook(ctx context.Context, book models.Book) (string, error) {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO books (id, isbn, title, description, author, year_of_publication, stock, status, added)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		book.ID, book.ISBN, book.Title, book.Description, book.Author,
		book.YearOfPublication, book.Stock, book.Status, book.Added)
	if err != nil {
		return "", fmt.Errorf("failed to create book: %w", err)
	}
	return book.ID, nil
}

func (p *PostgresDB) GetBookByID(ctx context.Context, id string) (*models.Book, error) {
	return p.getBook(ctx, `SELECT * FROM books WHERE id = $1`, id)
}

func (p *PostgresDB) GetBookByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	return p.getBook(ctx, `SELECT * FROM books WHERE isbn = $1`, isbn)
}

func (p *PostgresDB) getBook(ctx context.Context, query, arg string) (*models.Book, error) {
	var book models.Book
	if err := p.db.GetContext(ctx, &book, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return &book, nil
}

func (p *PostgresDB) ListBooks(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	if err := p.db.SelectContext(ctx, &books, `SELECT * FROM books ORDER BY title`); err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

func (p *PostgresDB) AddStock(ctx context.Context, isbn string, amount int) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE books
		 SET stock = stock + $2,
		     status = CASE WHEN stock + $2 > 0 THEN 'available' ELSE 'unavailable' END
		 WHERE isbn = $1`, isbn, amount)
	if err != nil {
		return fmt.Errorf("failed to add stock: %w", err)
	}
	return nil
}

func (p *PostgresDB) UpdateBook(ctx context.Context, book models.Book) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE books
		 SET title = $2, description = $3, author = $4, year_of_publication = $5,
		     stock = $6, status = $7
		 WHERE isbn = $1`,
		book.ISBN, book.Title, book.Description, book.Author,
		book.YearOfPublication, book.Stock, book.Status)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	return nil
}

func (p *PostgresDB) DeleteBook(ctx context.Context, id string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return nil
}

func (p *PostgresDB) DecrementStock(ctx context.Context, isbn string) (bool, error) {
	// Single conditional statement: the guard and the decrement cannot be
	// separated by a concurrent writer.
	res, err := p.db.ExecContext(ctx,
		`UPDATE books
		 SET stock = stock - 1,
		     status = CASE WHEN stock - 1 > 0 THEN 'available' ELSE 'unavailable' END
		 WHERE isbn = $1 AND stock > 0`, isbn)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read decrement result: %w", err)
	}
	return affected > 0, nil
}

func (p *PostgresDB) IncrementStock(ctx context.Context, isbn string) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE books SET stock = stock + 1, status = 'available' WHERE isbn = $1`, isbn)
	if err != nil {
		return fmt.Errorf("failed to increment stock: %w", err)
	}
	return nil
}

// Loan operations

func (p *PostgresDB) CreateLoan(ctx context.Context, loan models.Loan, limit int) (bool, error) {
	// Conditional insert: applies only while the member holds fewer loans
	// than the limit. The duplicate-loan guard is the primary key.
	res, err := p.db.ExecContext(ctx,
		`INSERT INTO loans (member_id, book_id, days_count, expiry_date)
		 SELECT $1, $2, $3, $4
		 WHERE (SELECT count(*) FROM loans WHERE member_id = $1) < $5
		 ON CONFLICT DO NOTHING`,
		loan.MemberID, loan.BookID, loan.DaysCount, loan.ExpiryDate, limit)
	if err != nil {
		return false, fmt.Errorf("failed to create loan: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read loan result: %w", err)
	}
	return affected > 0, nil
}

func (p *PostgresDB) GetLoan(ctx context.Context, memberID, bookID string) (*models.Loan, error) {
	var loan models.Loan
	err := p.db.GetContext(ctx, &loan,
		`SELECT member_id, book_id, days_count, expiry_date FROM loans WHERE member_id = $1 AND book_id = $2`,
		memberID, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return &loan, nil
}

func (p *PostgresDB) ListLoansByMember(ctx context.Context, memberID string) ([]models.Loan, error) {
	var loans []models.Loan
	err := p.db.SelectContext(ctx, &loans,
		`SELECT member_id, book_id, days_count, expiry_date FROM loans WHERE member_id = $1 ORDER BY expiry_date`,
		memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list member loans: %w", err)
	}
	return loans, nil
}

func (p *PostgresDB) ListLoans(ctx context.Context) ([]models.Loan, error) {
	var loans []models.Loan
	err := p.db.SelectContext(ctx, &loans,
		`SELECT member_id, book_id, days_count, expiry_date FROM loans ORDER BY expiry_date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	return loans, nil
}

func (p *PostgresDB) DeleteLoan(ctx context.Context, memberID, bookID string) error {
	_, err := p.db.ExecContext(ctx,
		`DELETE FROM loans WHERE member_id = $1 AND book_id = $2`, memberID, bookID)
	if err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}
	return nil
}

func (p *PostgresDB) DeleteLoansForBook(ctx context.Context, bookID string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM loans WHERE book_id = $1`, bookID)
	if err != nil {
		return fmt.Errorf("failed to delete loans for book: %w", err)
	}
	return nil
}

// Request operations

func (p *PostgresDB) CreateRequest(ctx context.Context, req models.Request) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO requests (requester, isbn) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		req.Requester, req.ISBN)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

func (p *PostgresDB) HasRequest(ctx context.Context, memberID, isbn string) (bool, error) {
	var exists bool
	err := p.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM requests WHERE requester = $1 AND isbn = $2)`, memberID, isbn)
	if err != nil {
		return false, fmt.Errorf("failed to check request: %w", err)
	}
	return exists, nil
}

func (p *PostgresDB) ListRequestsByMember(ctx context.Context, memberID string) ([]models.Request, error) {
	var requests []models.Request
	err := p.db.SelectContext(ctx, &requests,
		`SELECT requester, isbn FROM requests WHERE requester = $1 ORDER BY isbn`, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list member requests: %w", err)
	}
	return requests, nil
}

func (p *PostgresDB) ListRequests(ctx context.Context) ([]models.Request, error) {
	var requests []models.Request
	err := p.db.SelectContext(ctx, &requests,
		`SELECT requester, isbn FROM requests ORDER BY requester, isbn`)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return requests, nil
}

func (p *PostgresDB) DeleteRequestsByISBN(ctx context.Context, isbn string) ([]models.Request, error) {
	rows, err := p.db.QueryxContext(ctx,
		`DELETE FROM requests WHERE isbn = $1 RETURNING requester, isbn`, isbn)
	if err != nil {
		return nil, fmt.Errorf("failed to delete requests: %w", err)
	}
	defer rows.Close()

	var removed []models.Request
	for rows.Next() {
		var req models.Request
		if err := rows.StructScan(&req); err != nil {
			return nil, fmt.Errorf("failed to scan removed request: %w", err)
		}
		removed = append(removed, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read removed requests: %w", err)
	}
	return removed, nil
}

// Ping verifies the connection is still alive.
func (p *PostgresDB) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the database connection.
func (p *PostgresDB) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}
