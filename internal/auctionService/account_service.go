package auction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"auction-market/internal/auctionerrors"
	"auction-market/internal/auth"
	"auction-market/internal/models"
	"auction-market/internal/repository"
	"auction-market/internal/validation"
)

// Registration is the input for Register
type Registration struct {
	Username     string
	Email        string
	Password     string
	Confirmation string
}

// AccountService registers users, issues login tokens and resolves them back to users
type AccountService struct {
	repo   repository.AuctionDB
	tokens *auth.TokenManager
}

// NewAccountService creates a new AccountService instance
func NewAccountService(repo repository.AuctionDB, tokens *auth.TokenManager) *AccountService {
	return &AccountService{repo: repo, tokens: tokens}
}

// Register creates a user with a hashed password
func (s *AccountService) Register(ctx context.Context, in Registration) (models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	verr := auctionerrors.NewValidationError()
	verr.Add("username", validation.ValidateText(in.Username, validation.MaxUsernameLength))
	verr.Add("password", validation.ValidateRequired(in.Password))
	if in.Password != in.Confirmation {
		verr.Add("confirmation", auctionerrors.ErrPasswordMismatch)
	}
	if err := verr.OrNil(); err != nil {
		return models.User{}, fmt.Errorf("service: register: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("service: register %s: %w", in.Username, err)
	}

	user := models.User{Username: in.Username, Email: in.Email, PasswordHash: hash}
	err = s.repo.Atomic(ctx, func(store repository.AuctionDB) error {
		_, err := store.GetUserByUsername(ctx, in.Username)
		switch {
		case err == nil:
			return auctionerrors.ErrUsernameTaken
		case !errors.Is(err, auctionerrors.ErrNotFound):
			return err
		}
		return store.CreateUser(ctx, &user)
	})
	if err != nil {
		return models.User{}, fmt.Errorf("service: register %s: %w", in.Username, err)
	}
	return user, nil
}

// Login checks the credentials and returns a bearer token for the user
func (s *AccountService) Login(ctx context.Context, username, password string) (string, models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, auctionerrors.ErrNotFound) {
			return "", models.User{}, fmt.Errorf("service: login %s: %w", username, auctionerrors.ErrInvalidCredentials)
		}
		return "", models.User{}, fmt.Errorf("service: login %s: %w", username, err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", models.User{}, fmt.Errorf("service: login %s: %w", username, auctionerrors.ErrInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", models.User{}, fmt.Errorf("service: login %s: %w", username, err)
	}
	return token, user, nil
}

// Authenticate resolves a bearer token to its user
func (s *AccountService) Authenticate(ctx context.Context, token string) (models.User, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return models.User{}, fmt.Errorf("service: authenticate: %w", auctionerrors.ErrInvalidCredentials)
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrNotFound) {
			return models.User{}, fmt.Errorf("service: authenticate user %d: %w", userID, auctionerrors.ErrInvalidCredentials)
		}
		return models.User{}, fmt.Errorf("service: authenticate user %d: %w", userID, err)
	}
	return user, nil
}

// DeleteUser removes a user and everything they own, unless bids still reference them
func (s *AccountService) DeleteUser(ctx context.Context, userID uint) error {
	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("service: delete user %d: %w", userID, err)
	}
	return nil
}
