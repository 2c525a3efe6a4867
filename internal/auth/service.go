package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"citizenpulse/backend/internal/apperr"
	"citizenpulse/backend/internal/models"
	"citizenpulse/backend/internal/storage"
	"citizenpulse/backend/internal/validation"
)

// RegisterInput is the sign-up request.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"max=200"`
}

// LoginInput is the sign-in request.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Profile   *models.Profile `json:"profile"`
}

// Service manages local accounts.
type Service struct {
	store  storage.Storage
	tokens *TokenService
}

func NewService(store storage.Storage, tokens *TokenService) *Service {
	return &Service{store: store, tokens: tokens}
}

// Register creates a citizen profile. A taken username yields apperr.ErrConflict.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.Profile, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		Username:     in.Username,
		FullName:     in.FullName,
		Role:         models.RoleCitizen,
		PasswordHash: hash,
	}
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}

	slog.Info("Profile registered", "user_id", profile.ID, "username", profile.Username)
	return profile, nil
}

// Login checks credentials and issues a token. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	profile, err := s.store.GetProfileByUsername(ctx, strings.TrimSpace(in.Username))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(profile.PasswordHash, in.Password) {
		slog.Warn("Failed login attempt", "username", profile.Username)
		return nil, apperr.ErrUnauthenticated
	}

	token, exp, err := s.tokens.Issue(profile)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: exp, Profile: profile}, nil
}

// Resolve turns a bearer token into an actor. The role is read from the profile store,
// not from the token, so role changes apply on the next request.
func (s *Service) Resolve(ctx context.Context, raw string) (*Actor, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	profile, err := s.store.GetProfile(ctx, claims.Subject)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	return &Actor{UserID: profile.ID, Role: profile.Role}, nil
}

// Profile returns the actor's own profile.
func (s *Service) Profile(ctx context.Context, actor *Actor) (*models.Profile, error) {
	if err := RequireUser(actor); err != nil {
		return nil, err
	}
	return s.store.GetProfile(ctx, actor.UserID)
}
