package service

import (
	"context"
	"strings"

	"github.com/amansoomro062/codesign/internal/modules/model"
	"github.com/amansoomro062/codesign/internal/modules/repo"
	"github.com/amansoomro062/codesign/internal/pkg/utils/secrets"
	"github.com/google/uuid"
)

const (
	searchLimit       = 10
	minPasswordLength = 6
)

type UserService interface {
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetPublic(ctx context.Context, id uuid.UUID) (*model.PublicUser, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (*model.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, caller uuid.UUID, query string) ([]model.PublicUser, error)
}

type userService struct {
	r      repo.UserRepo
	pepper string
}

func NewUserService(r repo.UserRepo, pepper string) UserService {
	return &userService{r: r, pepper: pepper}
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.r.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "user")
	}
	return u, nil
}

func (s *userService) GetPublic(ctx context.Context, id uuid.UUID) (*model.PublicUser, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	pub := u.Public()
	return &pub, nil
}

type UpdateProfileInput struct {
	Name        *string
	Email       *string
	Avatar      *string
	Preferences *model.UserPreferences
}

func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (*model.User, error) {
	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, validationErr("name must not be empty")
		}
		updates["name"] = name
	}
	if in.Email != nil {
		if strings.TrimSpace(*in.Email) == "" {
			return nil, validationErr("email must not be empty")
		}
		updates["email"] = *in.Email
	}
	if in.Avatar != nil {
		updates["avatar"] = *in.Avatar
	}
	if in.Preferences != nil {
		if err := in.Preferences.Validate(); err != nil {
			return nil, translate(err, "preferences")
		}
		updates["preferences"] = *in.Preferences
	}

	if len(updates) > 0 {
		if err := s.r.Update(ctx, id, updates); err != nil {
			return nil, translate(err, "user")
		}
	}
	return s.Get(ctx, id)
}

func (s *userService) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	if len(next) < minPasswordLength {
		return validationErr("new password must be at least %d characters", minPasswordLength)
	}
	u, err := s.r.GetByID(ctx, id)
	if err != nil {
		return translate(err, "user")
	}
	ok, err := secrets.VerifyPassword(current, s.pepper, u.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return validationErr("current password is incorrect")
	}
	phc, err := secrets.HashPassword(next, s.pepper)
	if err != nil {
		return err
	}
	return translate(s.r.Update(ctx, id, map[string]any{"password_hash": phc}), "user")
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(s.r.Delete(ctx, id), "user")
}

func (s *userService) Search(ctx context.Context, caller uuid.UUID, query string) ([]model.PublicUser, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validationErr("search query is empty")
	}
	users, err := s.r.Search(ctx, query, caller, searchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}
