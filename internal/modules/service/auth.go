package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/amansoomro062/codesign/internal/modules/model"
	"github.com/amansoomro062/codesign/internal/modules/repo"
	"github.com/amansoomro062/codesign/internal/pkg/utils/secrets"
	"github.com/amansoomro062/codesign/internal/pkg/utils/tokens"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Authenticate resolves a raw bearer token to a user id.
	Authenticate(raw string) (uuid.UUID, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type AuthOptions struct {
	Secret string
	Pepper string
	TTL    time.Duration
}

type authService struct {
	r   repo.UserRepo
	opt AuthOptions
	now func() time.Time
}

func NewAuthService(r repo.UserRepo, opt AuthOptions) AuthService {
	return &authService{r: r, opt: opt, now: time.Now}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := repo.NormalizeEmail(in.Email)
	switch {
	case name == "":
		return nil, validationErr("name is required")
	case email == "":
		return nil, validationErr("email is required")
	case len(in.Password) < minPasswordLength:
		return nil, validationErr("password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.r.GetByEmail(ctx, email); err == nil {
		return nil, validationErr("user already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	phc, err := secrets.HashPassword(in.Password, s.opt.Pepper)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: phc,
		Preferences:  model.DefaultPreferences(),
	}
	if err := s.r.Create(ctx, u); err != nil {
		return nil, translate(err, "user")
	}
	return s.issue(u)
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.r.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	ok, err := secrets.VerifyPassword(password, s.opt.Pepper, u.PasswordHash)
	if err != nil || !ok {
		return nil, ErrUnauthenticated
	}
	return s.issue(u)
}

func (s *authService) Authenticate(raw string) (uuid.UUID, error) {
	id, err := tokens.Parse(s.opt.Secret, raw)
	if err != nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return id, nil
}

func (s *authService) issue(u *model.User) (*AuthResult, error) {
	tok, err := tokens.Issue(s.opt.Secret, u.ID, s.opt.TTL, s.now())
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: tok, User: u}, nil
}
