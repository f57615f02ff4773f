package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Elmamis69/jatrack/internal/config"
	"github.com/Elmamis69/jatrack/internal/domain"
	"github.com/Elmamis69/jatrack/internal/password"
	"github.com/Elmamis69/jatrack/internal/repository"
)

// EnsureAdmin creates a default admin account for dev/e2e setups when
// ADMIN_EMAIL and ADMIN_PASSWORD are configured. It is a no-op
// otherwise, and idempotent when the account already exists.
func EnsureAdmin(lc fx.Lifecycle, cfg config.Config, users repository.UserRepository, node *snowflake.Node, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return ensureAdmin(ctx, cfg, users, node, logger)
		},
	})
}

func ensureAdmin(ctx context.Context, cfg config.Config, users repository.UserRepository, node *snowflake.Node, logger *zap.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	if _, err := users.GetByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("bootstrap lookup admin: %w", err)
	}

	hashed, err := password.Hash(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap hash password: %w", err)
	}

	admin := domain.User{
		ID:           node.Generate().Int64(),
		Name:         "Administrator",
		Email:        cfg.AdminEmail,
		PasswordHash: hashed,
		Role:         domain.RoleAdmin,
	}

	created, err := users.Create(ctx, admin)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil
		}
		return fmt.Errorf("bootstrap create admin: %w", err)
	}

	logger.Info("admin account ensured", zap.Int64("user_id", created.ID))
	return nil
}
