package logic

import (
	"context"

	"library-server/internal/liberr"
	"library-server/internal/models"
	"library-server/internal/validate"
)

// maxBorrowLimit caps the bonus a member can earn from fulfilled requests.
const maxBorrowLimit = 4

func validateBookData(book models.Book) error {
	if err := validate.String(book.Title, "title"); err != nil {
		return err
	}
	if err := validate.String(book.ISBN, "ISBN"); err != nil {
		return err
	}
	if book.Description != "" {
		if err := validate.String(book.Description, "description"); err != nil {
			return err
		}
	}
	if book.Author != "" {
		if err := validate.String(book.Author, "author"); err != nil {
			return err
		}
	}
	if book.YearOfPublication != 0 {
		if err := validate.NonNegativeInt(book.YearOfPublication, "yearOfPublication"); err != nil {
			return err
		}
	}
	return nil
}

// AddBook creates a new catalog entry or restocks an existing one.
//
// A brand-new title also settles any pending requests for its ISBN: the
// requests are cleared and each requester earns a +1 borrow limit bonus,
// capped at maxBorrowLimit.
func (s *Service) AddBook(ctx context.Context, adminID string, book models.Book, stock int) error {
	if err := validate.String(adminID, "adminId"); err != nil {
		return err
	}
	if err := validateBookData(book); err != nil {
		return err
	}
	if err := validate.NonNegativeInt(stock, "stock"); err != nil {
		return err
	}

	admin, err := s.store.GetAdminByID(ctx, adminID)
	if err != nil {
		return err
	}
	if admin == nil {
		return liberr.NewNotFound("admin with id %s does not exist", adminID)
	}

	existing, err := s.store.GetBookByISBN(ctx, book.ISBN)
	if err != nil {
		return err
	}
	if existing != nil {
		// ISBN is the stable key; a different title under the same ISBN
		// signals operator error.
		if existing.Title != book.Title {
			return liberr.NewNotAllowed("book with title %s has a different ISBN", book.Title)
		}
		return s.store.AddStock(ctx, book.ISBN, stock)
	}

	book.ID = models.NewID()
	book.Stock = stock
	book.Status = models.StatusFor(stock)
	book.Added = s.now()

	if _, err := s.store.CreateBook(ctx, book); err != nil {
		return err
	}
	if err := s.store.AddAddedBook(ctx, adminID, book.ID); err != nil {
		return err
	}

	return s.settleRequests(ctx, book.ISBN)
}

// settleRequests clears pending requests for a now-available ISBN and grants
// each requester a thank-you borrow limit bonus.
func (s *Service) settleRequests(ctx context.Context, isbn string) error {
	settled, err := s.store.DeleteRequestsByISBN(ctx, isbn)
	if err != nil {
		return err
	}

	for _, req := range settled {
		member, err := s.store.GetMemberByID(ctx, req.Requester)
		if err != nil {
			return err
		}
		if member == nil || member.BorrowLimit >= maxBorrowLimit {
			continue
		}
		if err := s.store.SetBorrowLimit(ctx, member.ID, member.BorrowLimit+1); err != nil {
			return err
		}
	}
	return nil
}

// UpdateBook overwrites the fields of an existing book. Unlike AddBook the
// stock is a direct overwrite, not an additive restock.
func (s *Service) UpdateBook(ctx context.Context, adminID string, book models.Book) error {
	if err := validate.String(adminID, "adminId"); err != nil {
		return err
	}
	if err := validateBookData(book); err != nil {
		return err
	}
	if err := validate.NonNegativeInt(book.Stock, "stock"); err != nil {
		return err
	}

	admin, err := s.store.GetAdminByID(ctx, adminID)
	if err != nil {
		return err
	}
	if admin == nil {
		return liberr.NewNotFound("admin with id %s does not exist", adminID)
	}

	existing, err := s.store.GetBookByISBN(ctx, book.ISBN)
	if err != nil {
		return err
	}
	if existing == nil {
		return liberr.NewNotFound("book with ISBN %s does not exist", book.ISBN)
	}

	book.Status = models.StatusFor(book.Stock)
	return s.store.UpdateBook(ctx, book)
}

// RemoveBook deletes a book and cascades the cleanup: active loans, wishlist
// entries and added-book references go first, so an interruption cannot leave
// references to a book that no longer exists.
func (s *Service) RemoveBook(ctx context.Context, adminID, isbn string) error {
	if err := validate.String(adminID, "adminId"); err != nil {
		return err
	}
	if err := validate.String(isbn, "ISBN"); err != nil {
		return err
	}

	admin, err := s.store.GetAdminByID(ctx, adminID)
	if err != nil {
		return err
	}
	if admin == nil {
		return liberr.NewNotFound("admin with id %s does not exist", adminID)
	}

	book, err := s.store.GetBookByISBN(ctx, isbn)
	if err != nil {
		return err
	}
	if book == nil {
		return liberr.NewNotFound("book with ISBN %s does not exist", isbn)
	}

	if err := s.store.DeleteLoansForBook(ctx, book.ID); err != nil {
		return err
	}
	if err := s.store.StripWishlistedBook(ctx, book.ID); err != nil {
		return err
	}
	if err := s.store.StripAddedBook(ctx, book.ID); err != nil {
		return err
	}
	return s.store.DeleteBook(ctx, book.ID)
}

// RetrieveBooks lists the whole catalog.
func (s *Service) RetrieveBooks(ctx context.Context) ([]models.Book, error) {
	return s.store.ListBooks(ctx)
}
