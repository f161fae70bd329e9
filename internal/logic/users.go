package logic

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"library-server/internal/liberr"
	"library-server/internal/models"
	"library-server/internal/validate"
)

const (
	bcryptCost         = 10
	defaultBorrowLimit = 2
)

// RegisterUser creates a new admin or member with a bcrypt-hashed password.
func (s *Service) RegisterUser(ctx context.Context, email, password string, role models.Role) error {
	if err := validate.String(email, "email"); err != nil {
		return err
	}
	if err := validate.Email(email); err != nil {
		return err
	}
	if err := validate.String(password, "password"); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	switch role {
	case models.RoleAdmin:
		existing, err := s.store.GetAdminByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return liberr.NewNotAllowed("an admin with email %s already exists", email)
		}

		_, err = s.store.CreateAdmin(ctx, models.Admin{
			ID:       models.NewID(),
			Email:    email,
			Password: string(hash),
			Role:     models.RoleAdmin,
			Created:  s.now(),
		})
		return err

	default:
		existing, err := s.store.GetMemberByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return liberr.NewNotAllowed("a member with email %s already exists", email)
		}

		_, err = s.store.CreateMember(ctx, models.Member{
			ID:          models.NewID(),
			Email:       email,
			Password:    string(hash),
			Role:        models.RoleMember,
			Created:     s.now(),
			BorrowLimit: defaultBorrowLimit,
		})
		return err
	}
}

// AuthenticateUser checks the credentials for the given role and returns the
// user's id, stamping the login time.
func (s *Service) AuthenticateUser(ctx context.Context, email, password string, role models.Role) (string, error) {
	if err := validate.String(email, "email"); err != nil {
		return "", err
	}
	if err := validate.Email(email); err != nil {
		return "", err
	}
	if err := validate.String(password, "password"); err != nil {
		return "", err
	}

	switch role {
	case models.RoleAdmin:
		admin, err := s.store.GetAdminByEmail(ctx, email)
		if err != nil {
			return "", err
		}
		if admin == nil {
			return "", liberr.NewNotFound("admin with email %s does not exist", email)
		}
		if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)) != nil {
			return "", liberr.NewNotAllowed("wrong credentials")
		}
		if err := s.store.TouchAdminAuthenticated(ctx, admin.ID, s.now()); err != nil {
			return "", err
		}
		return admin.ID, nil

	default:
		member, err := s.store.GetMemberByEmail(ctx, email)
		if err != nil {
			return "", err
		}
		if member == nil {
			return "", liberr.NewNotFound("member with email %s does not exist", email)
		}
		if bcrypt.CompareHashAndPassword([]byte(member.Password), []byte(password)) != nil {
			return "", liberr.NewNotAllowed("wrong credentials")
		}
		if err := s.store.TouchMemberAuthenticated(ctx, member.ID, s.now()); err != nil {
			return "", err
		}
		return member.ID, nil
	}
}

// RetrieveUser returns the sanitized profile for the given id and role. The
// admin view carries the global pending requests and active rentals; the
// member view carries only that member's own activity.
func (s *Service) RetrieveUser(ctx context.Context, id string, role models.Role) (*Profile, error) {
	if err := validate.String(id, "id"); err != nil {
		return nil, err
	}

	switch role {
	case models.RoleAdmin:
		admin, err := s.store.GetAdminByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if admin == nil {
			return nil, liberr.NewNotFound("admin with id %s does not exist", id)
		}

		requests, err := s.store.ListRequests(ctx)
		if err != nil {
			return nil, err
		}
		rented, err := s.store.ListLoans(ctx)
		if err != nil {
			return nil, err
		}

		return &Profile{
			ID:            admin.ID,
			Email:         admin.Email,
			Role:          admin.Role,
			Created:       admin.Created,
			Authenticated: admin.Authenticated,
			AddedBooks:    admin.AddedBooks,
			Requests:      requests,
			RentedBooks:   rented,
		}, nil

	default:
		member, err := s.store.GetMemberByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if member == nil {
			return nil, liberr.NewNotFound("member with id %s does not exist", id)
		}

		requested, err := s.store.ListRequestsByMember(ctx, member.ID)
		if err != nil {
			return nil, err
		}
		borrowed, err := s.store.ListLoansByMember(ctx, member.ID)
		if err != nil {
			return nil, err
		}

		return &Profile{
			ID:              member.ID,
			Email:           member.Email,
			Role:            member.Role,
			Created:         member.Created,
			Authenticated:   member.Authenticated,
			BorrowLimit:     member.BorrowLimit,
			OverdueDays:     member.OverdueDays,
			RequestedBooks:  requested,
			BorrowedBooks:   borrowed,
			WishlistedBooks: member.Wishlist,
		}, nil
	}
}
