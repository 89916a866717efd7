package usecase

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/pingme/pingme-server"
	"github.com/pingme/pingme-server/internal/domain"
)

const bcryptCost = 10

type UserUsecase struct {
	users UserRepository
}

func NewUserUsecase(users UserRepository) *UserUsecase {
	return &UserUsecase{users: users}
}

// Register creates an account with a bcrypt-hashed password. Duplicate
// emails are rejected without any state change.
func (uc *UserUsecase) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	if username == "" {
		return domain.User{}, domain.ValidationError{Field: "username"}
	}
	if email == "" {
		return domain.User{}, domain.ValidationError{Field: "email"}
	}
	if password == "" {
		return domain.User{}, domain.ValidationError{Field: "password"}
	}

	_, err := uc.users.GetByEmail(ctx, email)
	if err == nil {
		return domain.User{}, domain.ErrAlreadyExists
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return domain.User{}, err
	}

	return uc.users.Create(ctx, domain.User{
		Username: username,
		Email:    email,
		Password: string(hash),
	})
}

// Authenticate resolves an account by email and verifies the password.
// Both unknown email and wrong password come back as ErrNotFound so
// the caller cannot distinguish the two.
func (uc *UserUsecase) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	if email == "" {
		return domain.User{}, domain.ValidationError{Field: "email"}
	}
	if password == "" {
		return domain.User{}, domain.ValidationError{Field: "password"}
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}

	return user, nil
}

// Get returns an account by id.
func (uc *UserUsecase) Get(ctx context.Context, id string) (domain.User, error) {
	return uc.users.Get(ctx, id)
}

// List returns all accounts, reduced to public fields.
func (uc *UserUsecase) List(ctx context.Context) ([]pingme.PublicUser, error) {
	users, err := uc.users.List(ctx)
	if err != nil {
		return nil, err
	}

	public := make([]pingme.PublicUser, 0, len(users))
	for _, user := range users {
		public = append(public, pingme.PublicUser{
			ID:       user.ID,
			Email:    user.Email,
			Username: user.Username,
		})
	}
	return public, nil
}
