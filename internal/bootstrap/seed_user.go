package bootstrap

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/amansoomro062/codesign/internal/config"
	"github.com/amansoomro062/codesign/internal/modules/model"
	"github.com/amansoomro062/codesign/internal/modules/repo"
	"github.com/amansoomro062/codesign/internal/pkg/utils/secrets"
)

// EnsureSeedUser creates the configured root account, or realigns its
// password with the configuration when it already exists.
func EnsureSeedUser(ctx context.Context, users repo.UserRepo, cfg *config.Config, log *zap.Logger) error {
	email := strings.ToLower(strings.TrimSpace(cfg.Root.Email))
	if email == "" || cfg.Root.Password == "" {
		return nil
	}

	phc, err := secrets.HashPassword(cfg.Root.Password, cfg.Auth.SecretPepper)
	if err != nil {
		return err
	}

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if ok, _ := secrets.VerifyPassword(cfg.Root.Password, cfg.Auth.SecretPepper, existing.PasswordHash); ok {
			log.Sugar().Infow("seed user exists", "user", existing.ID)
			return nil
		}
		if uErr := users.Update(ctx, existing.ID, map[string]any{"password_hash": phc}); uErr != nil {
			return uErr
		}
		log.Sugar().Infow("seed user password realigned", "user", existing.ID)
		return nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		name := cfg.Root.Name
		if name == "" {
			name = "Admin"
		}
		u := &model.User{
			Name:         name,
			Email:        email,
			PasswordHash: phc,
			Preferences:  model.DefaultPreferences(),
		}
		if cErr := users.Create(ctx, u); cErr != nil {
			return cErr
		}
		log.Sugar().Infow("seed user created", "user", u.ID)
		return nil

	default:
		return err
	}
}
