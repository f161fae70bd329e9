package logic

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"library-server/internal/models"
	"library-server/internal/storage/stubs"
)

// testService returns a service over a fresh mock store with a controllable
// clock. Tests move the clock by reassigning *now.
func testService(t *testing.T) (*Service, *stubs.MockDB, *time.Time) {
	t.Helper()

	db := stubs.NewMockDB()
	svc := New(db)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return svc, db, &now
}

func seedAdmin(t *testing.T, db *stubs.MockDB, email string) string {
	t.Helper()

	id := models.NewID()
	_, err := db.CreateAdmin(context.Background(), models.Admin{
		ID:      id,
		Email:   email,
		Role:    models.RoleAdmin,
		Created: time.Now(),
	})
	if err != nil {
		t.Fatalf("Failed to seed admin: %v", err)
	}
	return id
}

func seedMember(t *testing.T, db *stubs.MockDB, email string) string {
	t.Helper()

	id := models.NewID()
	_, err := db.CreateMember(context.Background(), models.Member{
		ID:          id,
		Email:       email,
		Role:        models.RoleMember,
		Created:     time.Now(),
		BorrowLimit: 2,
	})
	if err != nil {
		t.Fatalf("Failed to seed member: %v", err)
	}
	return id
}

func seedMemberWithPassword(t *testing.T, db *stubs.MockDB, email, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	id := models.NewID()
	_, err = db.CreateMember(context.Background(), models.Member{
		ID:          id,
		Email:       email,
		Password:    string(hash),
		Role:        models.RoleMember,
		Created:     time.Now(),
		BorrowLimit: 2,
	})
	if err != nil {
		t.Fatalf("Failed to seed member: %v", err)
	}
	return id
}

func seedBook(t *testing.T, db *stubs.MockDB, isbn, title string, stock int) string {
	t.Helper()

	id := models.NewID()
	_, err := db.CreateBook(context.Background(), models.Book{
		ID:     id,
		ISBN:   isbn,
		Title:  title,
		Stock:  stock,
		Status: models.StatusFor(stock),
		Added:  time.Now(),
	})
	if err != nil {
		t.Fatalf("Failed to seed book: %v", err)
	}
	return id
}
