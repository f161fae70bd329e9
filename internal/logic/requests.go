package logic

import (
	"context"

	"library-server/internal/liberr"
	"library-server/internal/models"
	"library-server/internal/validate"
)

// RequestBook records a member's petition for a title. The request becomes
// visible to every admin and is settled when the title is added.
func (s *Service) RequestBook(ctx context.Context, memberID, isbn string) error {
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

	requested, err := s.store.HasRequest(ctx, memberID, isbn)
	if err != nil {
		return err
	}
	if requested {
		return liberr.NewNotAllowed("book with ISBN %s was already requested by member with id %s", isbn, memberID)
	}

	return s.store.CreateRequest(ctx, models.Request{Requester: memberID, ISBN: isbn})
}

// ToggleWishlist adds the book to the member's wishlist, or removes it if
// already present. Wishlists are private to the member.
func (s *Service) ToggleWishlist(ctx context.Context, memberID, isbn string) error {
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

	for _, id := range member.Wishlist {
		if id == book.ID {
			return s.store.RemoveWishlistedBook(ctx, memberID, book.ID)
		}
	}
	return s.store.AddWishlistedBook(ctx, memberID, book.ID)
}
