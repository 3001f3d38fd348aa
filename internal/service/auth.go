package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/documents_api/internal/hash"
	"github.com/Skotchmaster/documents_api/internal/models"
	"github.com/Skotchmaster/documents_api/internal/mykafka"
	"github.com/Skotchmaster/documents_api/internal/repo"
	"github.com/Skotchmaster/documents_api/internal/tokens"
	"github.com/Skotchmaster/documents_api/internal/transport"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService struct {
	Users     repo.UserRepo
	Passwords hash.Policy
	Secret    []byte
	TTL       time.Duration
	Events    EventPublisher
	Now       func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Register stores a new user. The caller has already checked that the email
// is free; nothing here prevents two concurrent registrations of one email.
func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	stored, err := s.Passwords.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.Users.Create(ctx, &models.User{Email: req.Email, Password: stored})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, mykafka.UserEventsTopic, user.ID, UserEvent{
		Type:   EventUserRegistered,
		UserID: user.ID,
		Email:  user.Email,
		At:     s.now(),
	})
	return user, nil
}

// Login checks the credentials and returns a signed bearer token together
// with the claims it carries.
func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (string, *tokens.AuthClaims, error) {
	user, err := s.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		return "", nil, err
	}
	if user == nil || !s.Passwords.Compare(user.Password, req.Password) {
		return "", nil, ErrInvalidCredentials
	}

	claims := tokens.NewAuthClaims(user.ID, user.Email, s.now(), s.TTL)
	token, err := tokens.SignAuthToken(claims, s.Secret)
	if err != nil {
		return "", nil, err
	}

	publish(ctx, s.Events, mykafka.UserEventsTopic, user.ID, UserEvent{
		Type:   EventUserLoggedIn,
		UserID: user.ID,
		Email:  user.Email,
		At:     s.now(),
	})
	return token, claims, nil
}
