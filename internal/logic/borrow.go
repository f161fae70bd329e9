package logic

import (
	"context"
	"math"
	"time"

	"library-server/internal/liberr"
	"library-server/internal/models"
	"library-server/internal/validate"
)

// loanWindow computes the number of days a loan lasts. The window grows with
// each concurrently held book and shrinks with accumulated overdue debt,
// floored at zero.
func loanWindow(borrowedCount int, overdueDays float64) float64 {
	return math.Max(0, 0.7+3*float64(borrowedCount)-overdueDays)
}

// round2 rounds to two decimals, matching the overdue bookkeeping precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// BorrowBook lends one unit of the given ISBN to the member. The loan insert
// and the stock decrement are both conditional storage operations, so two
// simultaneous borrows cannot overdraw the stock or the member's limit; the
// loser of either race gets a NotAllowedError and may retry.
func (s *Service) BorrowBook(ctx context.Context, memberID, isbn string) error {
	if err := validate.String(memberID, "memberId"); err != nil {
		return err
	}
	if err := validate.String(isbn, "ISBN"); err != nil {
		return err
	}

	member, err := s.store.GetMemberByID(ctx, memberID)
	if err != nil {
		return err
	}
	if member == nil {
		return liberr.NewNotFound("member with id %s does not exist", memberID)
	}

	book, err := s.store.GetBookByISBN(ctx, isbn)
	if err != nil {
		return err
	}
	if book == nil {
		return liberr.NewNotFound("book with ISBN %s does not exist", isbn)
	}

	borrowed, err := s.store.ListLoansByMember(ctx, memberID)
	if err != nil {
		return err
	}
	if len(borrowed) >= member.BorrowLimit {
		return liberr.NewNotAllowed("member with id %s already has the maximum amount of books borrowed", memberID)
	}
	for _, loan := range borrowed {
		if loan.BookID == book.ID {
			return liberr.NewNotAllowed("book with ISBN %s was already borrowed by member with id %s", isbn, memberID)
		}
	}
	if book.Stock == 0 {
		return liberr.NewNotAllowed("book with ISBN %s is out of stock", isbn)
	}

	daysCount := loanWindow(len(borrowed), member.OverdueDays)
	now := s.now()
	loan := models.Loan{
		MemberID:   memberID,
		BookID:     book.ID,
		DaysCount:  daysCount,
		ExpiryDate: now.Add(time.Duration(daysCount * 24 * float64(time.Hour))),
	}

	applied, err := s.store.CreateLoan(ctx, loan, member.BorrowLimit)
	if err != nil {
		return err
	}
	if !applied {
		return liberr.NewNotAllowed("member with id %s already has the maximum amount of books borrowed", memberID)
	}

	applied, err = s.store.DecrementStock(ctx, isbn)
	if err != nil {
		return err
	}
	if !applied {
		// Lost the stock race after the loan insert; undo it.
		if err := s.store.DeleteLoan(ctx, memberID, book.ID); err != nil {
			return err
		}
		return liberr.NewNotAllowed("book with ISBN %s is out of stock", isbn)
	}

	return nil
}

// ReturnBorrowedBook takes back a borrowed book, restores the stock and, if
// the return is past due, adds the overdue days to the member's debt.
// Returning on time does not reduce existing debt.
func (s *Service) ReturnBorrowedBook(ctx context.Context, memberID, isbn string) error {
	if err := validate.String(memberID, "memberId"); err != nil {
		return err
	}
	if err := validate.String(isbn, "ISBN"); err != nil {
		return err
	}

	member, err := s.store.GetMemberByID(ctx, memberID)
	if err != nil {
		return err
	}
	if member == nil {
		return liberr.NewNotFound("member with id %s does not exist", memberID)
	}

	book, err := s.store.GetBookByISBN(ctx, isbn)
	if err != nil {
		return err
	}
	if book == nil {
		return liberr.NewNotFound("book with ISBN %s does not exist", isbn)
	}

	loan, err := s.store.GetLoan(ctx, memberID, book.ID)
	if err != nil {
		return err
	}
	if loan == nil {
		return liberr.NewNotFound("book with ISBN %s was not found on the borrowed books from member with id %s", isbn, memberID)
	}

	remaining := round2(loan.ExpiryDate.Sub(s.now()).Hours() / 24)
	if remaining < 0 {
		if err := s.store.AddOverdueDays(ctx, memberID, -remaining); err != nil {
			return err
		}
	}

	if err := s.store.DeleteLoan(ctx, memberID, book.ID); err != nil {
		return err
	}
	return s.store.IncrementStock(ctx, isbn)
}
