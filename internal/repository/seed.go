package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/client-portal/internal/model"
)

// Seed creates one demo user per role when the store holds no users
// at all, so a fresh install is exercisable without an external
// provisioning step. hashFn is the credential store's password hasher,
// injected to keep this package free of crypto concerns.
func Seed(ctx context.Context, store Store, hashFn func(plain string) (string, error)) error {
	n, err := store.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("seed: count users: %w", err)
	}
	if n > 0 {
		return nil
	}
	seeds := []struct {
		email    string
		password string
		role     string
		name     string
	}{
		{"admin@portal.test", "admin123", model.RoleAdmin, "Portal Admin"},
		{"manager@portal.test", "manager123", model.RoleManager, "Project Manager"},
		{"client@portal.test", "client123", model.RoleClient, "Demo Client"},
	}
	for _, sd := range seeds {
		hash, err := hashFn(sd.password)
		if err != nil {
			return fmt.Errorf("seed: hash password: %w", err)
		}
		u := &model.User{
			Email:          sd.email,
			PasswordHash:   hash,
			Role:           sd.role,
			Name:           sd.name,
			AvatarInitials: model.Initials(sd.name),
		}
		if err := store.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("seed: create %s: %w", sd.email, err)
		}
	}
	return nil
}
