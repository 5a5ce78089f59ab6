package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/logger"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/validation"
)

type UserStore interface {
	Create(ctx context.Context, u *domain.User, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (*domain.User, string, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type Session struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type Service struct {
	users  UserStore
	tokens *Tokens
	// compared against when the email is unknown so both paths cost one bcrypt run
	dummyHash string
}

func NewService(users UserStore, tokens *Tokens) *Service {
	dummy, _ := HashPassword("taskhub-unknown-user")
	return &Service{users: users, tokens: tokens, dummyHash: dummy}
}

func (s *Service) Register(ctx context.Context, cmd validation.Register) (*Session, error) {
	cmd.Normalize()
	if err := validation.Validate(&cmd); err != nil {
		return nil, err
	}

	hash, err := HashPassword(cmd.Password)
	if err != nil {
		return nil, err
	}

	u := &domain.User{Name: cmd.Name, Email: cmd.Email}
	if err := s.users.Create(ctx, u, hash); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			ve := domain.NewValidationError()
			ve.Add("email", "has already been taken")
			return nil, ve
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	logger.FromContext(ctx).WithField("user_id", u.ID).Info("user registered")
	return s.session(u)
}

func (s *Service) Login(ctx context.Context, cmd validation.Login) (*Session, error) {
	if err := validation.Validate(&cmd); err != nil {
		return nil, err
	}

	u, hash, err := s.users.GetByEmail(ctx, cmd.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			CheckPassword(s.dummyHash, cmd.Password)
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if hash == "" || !CheckPassword(hash, cmd.Password) {
		return nil, domain.ErrUnauthorized
	}

	return s.session(u)
}

func (s *Service) Me(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	return s.users.GetByID(ctx, actor.ID)
}

func (s *Service) session(u *domain.User) (*Session, error) {
	token, exp, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: token, ExpiresAt: exp}, nil
}
